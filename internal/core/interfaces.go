package core

import (
	"context"
	"time"

	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
	"github.com/jerseyretro/storefront/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// Service implementations depend on these interfaces, not on internal/data.

// UserRepository persists application-side user records.
type UserRepository interface {
	Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	// GetByEmail returns a NotFound AppError when no user has the email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// GetByID returns a NotFound AppError when no user has the id.
	GetByID(ctx context.Context, id string) (*model.User, error)
	// Upsert inserts the user or updates name and role of the row with the same id or email.
	Upsert(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	SetRole(ctx context.Context, email string, role domainauth.Role) (*model.User, error)
}

// CategoryRepository persists product categories.
type CategoryRepository interface {
	Create(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	List(ctx context.Context) ([]*model.Category, error)
	ListWithCounts(ctx context.Context) ([]*model.CategoryWithCount, error)
}

// ProductRepository persists products.
type ProductRepository interface {
	Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error)
	GetByID(ctx context.Context, id string) (*model.Product, error)
	ListAvailable(ctx context.Context, opts model.ProductListOptions) ([]*model.ProductListItem, error)
	// Stats fills the dashboard counts and the lowest-stocked products; RecentProducts is left empty.
	Stats(ctx context.Context, lowStockBelow, lowStockLimit int) (*model.CatalogStats, error)
}

// ProductImageRepository persists product image rows.
type ProductImageRepository interface {
	// Create records the image; when IsPrimary is set, other images of the product lose the flag.
	Create(ctx context.Context, req *model.CreateProductImageRequest) (*model.ProductImage, error)
}

// CacheRepository defines the interface for caching operations.
type CacheRepository interface {
	// Set stores a value with the given TTL. A zero TTL never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get returns nil when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete reports whether the key existed.
	Delete(ctx context.Context, key string) (bool, error)
	Health(ctx context.Context) error
}
