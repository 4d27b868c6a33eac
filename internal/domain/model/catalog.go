//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	maxCategoryNameLen = 100
	maxProductNameLen  = 255
	maxSizeLabelLen    = 10
	// LowStockThreshold is the total stock below which a product counts as low on stock.
	LowStockThreshold = 10
	// MaxImageBytes caps product image uploads.
	MaxImageBytes = 5 << 20
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// AllowedImageTypes lists the accepted product image content types.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Category groups products, e.g. "Home Kits".
type Category struct {
	ID        string    `json:"id"         db:"id"`
	Name      string    `json:"name"       db:"name"`
	Slug      string    `json:"slug"       db:"slug"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CategoryWithCount is a category annotated with its product count.
type CategoryWithCount struct {
	ID           string    `json:"id"            db:"id"`
	Name         string    `json:"name"          db:"name"`
	Slug         string    `json:"slug"          db:"slug"`
	CreatedAt    time.Time `json:"created_at"    db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"    db:"updated_at"`
	ProductCount int       `json:"product_count" db:"product_count"`
}

// CreateCategoryRequest represents parameters to create a Category.
type CreateCategoryRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Validate normalizes and validates the request in place.
func (r *CreateCategoryRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Slug = strings.ToLower(strings.TrimSpace(r.Slug))
	if r.Name == "" {
		return errors.New("name is required")
	}
	if utf8.RuneCountInString(r.Name) > maxCategoryNameLen {
		return errors.New("name cannot exceed 100 characters")
	}
	if r.Slug == "" {
		r.Slug = Slugify(r.Name)
	}
	if !slugPattern.MatchString(r.Slug) {
		return errors.New("slug must contain only lowercase letters, digits and single hyphens")
	}
	return nil
}

// Slugify derives a URL slug from a display name.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Product is a jersey offered in the catalog. Sizes is filled by listings and
// creation; single-row lookups leave it nil.
type Product struct {
	ID          string        `json:"id"           db:"id"`
	Name        string        `json:"name"         db:"name"`
	Club        string        `json:"club"         db:"club"`
	Description string        `json:"description"  db:"description"`
	PriceCents  int64         `json:"price_cents"  db:"price_cents"`
	CategoryID  *string       `json:"category_id"  db:"category_id"`
	IsAvailable bool          `json:"is_available" db:"is_available"`
	CreatedAt   time.Time     `json:"created_at"   db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"   db:"updated_at"`
	Sizes       []ProductSize `json:"sizes"        db:"-"`
}

// ProductSize is the stock held for one size of a product.
type ProductSize struct {
	ID        string    `json:"id"         db:"id"`
	ProductID string    `json:"product_id" db:"product_id"`
	Size      string    `json:"size"       db:"size"`
	Stock     int       `json:"stock"      db:"stock"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TotalStock sums the stock of every size.
func (p Product) TotalStock() int {
	total := 0
	for _, s := range p.Sizes {
		total += s.Stock
	}
	return total
}

// ProductListItem is a product with its category and primary image for storefront listings.
type ProductListItem struct {
	Product
	Category     *Category     `json:"category,omitempty"`
	PrimaryImage *ProductImage `json:"primary_image,omitempty"`
}

// ProductListOptions filters the public product listing.
// Search matches name, club and description case-insensitively.
// CategorySlug matches exactly.
type ProductListOptions struct {
	Search       string
	CategorySlug string
	Limit        int
	Offset       int
	// IncludeUnavailable lists hidden products too (admin views).
	IncludeUnavailable bool
}

// SizeStock is one size line of a CreateProductRequest.
type SizeStock struct {
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

// CreateProductRequest represents parameters to create a Product.
type CreateProductRequest struct {
	Name        string      `json:"name"`
	Club        string      `json:"club"`
	Description string      `json:"description"`
	PriceCents  int64       `json:"price_cents"`
	CategoryID  *string     `json:"category_id,omitempty"`
	IsAvailable *bool       `json:"is_available,omitempty"`
	Sizes       []SizeStock `json:"sizes,omitempty"`
}

// Validate normalizes and validates the request in place.
func (r *CreateProductRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Club = strings.TrimSpace(r.Club)
	r.Description = strings.TrimSpace(r.Description)
	if r.Name == "" {
		return errors.New("name is required")
	}
	if utf8.RuneCountInString(r.Name) > maxProductNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	if r.PriceCents < 0 {
		return errors.New("price_cents must be >= 0")
	}
	if r.CategoryID != nil {
		id := strings.TrimSpace(*r.CategoryID)
		if id == "" {
			r.CategoryID = nil
		} else if _, err := uuid.Parse(id); err != nil {
			return errors.New("category_id must be a valid UUID")
		} else {
			r.CategoryID = &id
		}
	}
	return r.validateSizes()
}

func (r *CreateProductRequest) validateSizes() error {
	seen := make(map[string]bool, len(r.Sizes))
	for i := range r.Sizes {
		size := strings.ToUpper(strings.TrimSpace(r.Sizes[i].Size))
		switch {
		case size == "":
			return errors.New("size is required")
		case utf8.RuneCountInString(size) > maxSizeLabelLen:
			return errors.New("size cannot exceed 10 characters")
		case r.Sizes[i].Stock < 0:
			return errors.New("stock must be >= 0")
		case seen[size]:
			return errors.New("duplicate size " + size)
		}
		seen[size] = true
		r.Sizes[i].Size = size
	}
	return nil
}

// StockedProduct is a product with its summed stock.
type StockedProduct struct {
	ID           string `json:"id"            db:"id"`
	Name         string `json:"name"          db:"name"`
	CategoryName string `json:"category_name" db:"category_name"`
	TotalStock   int    `json:"total_stock"   db:"total_stock"`
}

// CatalogCounts holds the aggregate figures of the admin dashboard.
type CatalogCounts struct {
	TotalProducts   int   `json:"total_products"   db:"total_products"`
	TotalCategories int   `json:"total_categories" db:"total_categories"`
	TotalStock      int64 `json:"total_stock"      db:"total_stock"`
	LowStockCount   int   `json:"low_stock_count"  db:"low_stock_count"`
}

// CatalogStats backs the admin dashboard.
type CatalogStats struct {
	CatalogCounts
	LowStockProducts []*StockedProduct  `json:"low_stock_products"`
	RecentProducts   []*ProductListItem `json:"recent_products"`
}

// ProductImage is an uploaded image attached to a product.
type ProductImage struct {
	ID        string    `json:"id"         db:"id"`
	ProductID string    `json:"product_id" db:"product_id"`
	URL       string    `json:"url"        db:"url"`
	ObjectKey string    `json:"object_key" db:"object_key"`
	IsPrimary bool      `json:"is_primary" db:"is_primary"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateProductImageRequest records an uploaded object against a product.
type CreateProductImageRequest struct {
	ProductID string
	URL       string
	ObjectKey string
	IsPrimary bool
}

// ValidateImageUpload checks the content type and size of an upload and
// returns the file extension to use for the stored object.
func ValidateImageUpload(contentType string, size int64) (string, error) {
	ext, ok := AllowedImageTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", errors.New("unsupported file type; use JPEG, PNG, WebP or GIF")
	}
	if size <= 0 {
		return "", errors.New("file is empty")
	}
	if size > MaxImageBytes {
		return "", errors.New("file too large; maximum is 5MB")
	}
	return ext, nil
}
