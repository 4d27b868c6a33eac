package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jerseyretro/storefront/internal/core"
	"github.com/jerseyretro/storefront/internal/data/database"
	"github.com/jerseyretro/storefront/internal/data/pgxutil"
	"github.com/jerseyretro/storefront/internal/domain/model"
	apperrors "github.com/jerseyretro/storefront/internal/errors"
)

var (
	_ core.ProductRepository      = (*ProductRepo)(nil)
	_ core.ProductImageRepository = (*ProductImageRepo)(nil)
)

const (
	productColumns = `id, name, club, description, price_cents, category_id, is_available, created_at, updated_at`

	productListSelect = `
		SELECT p.id, p.name, p.club, p.description, p.price_cents, p.category_id, p.is_available,
		       p.created_at, p.updated_at,
		       c.id AS category_ref_id, c.name AS category_name, c.slug AS category_slug,
		       c.created_at AS category_created_at, c.updated_at AS category_updated_at,
		       img.id AS image_id, img.url AS image_url, img.object_key AS image_object_key,
		       img.created_at AS image_created_at
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN LATERAL (
			SELECT id, url, object_key, created_at
			FROM product_images
			WHERE product_id = p.id AND is_primary
			LIMIT 1
		) img ON TRUE`

	// Known sizes sort in garment order; anything else follows alphabetically.
	productSizesSelect = `
		SELECT id, product_id, size, stock, created_at, updated_at
		FROM product_sizes
		WHERE product_id = ANY($1::text[]::uuid[])
		ORDER BY product_id,
		         array_position(ARRAY['XS','S','M','L','XL','XXL','XXXL'], size) NULLS LAST,
		         size`

	catalogCountsSelect = `
		WITH stock AS (
			SELECT p.id, COALESCE(SUM(s.stock), 0) AS total
			FROM products p
			LEFT JOIN product_sizes s ON s.product_id = p.id
			GROUP BY p.id
		)
		SELECT (SELECT COUNT(*) FROM products)::int AS total_products,
		       (SELECT COUNT(*) FROM categories)::int AS total_categories,
		       (SELECT COALESCE(SUM(total), 0) FROM stock)::bigint AS total_stock,
		       (SELECT COUNT(*) FROM stock WHERE total < $1)::int AS low_stock_count`

	lowStockSelect = `
		SELECT p.id, p.name, COALESCE(c.name, '') AS category_name,
		       COALESCE(SUM(s.stock), 0)::int AS total_stock
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN product_sizes s ON s.product_id = p.id
		GROUP BY p.id, p.name, c.name
		HAVING COALESCE(SUM(s.stock), 0) < $1
		ORDER BY total_stock, p.name
		LIMIT $2`

	defaultProductLimit = 100
	maxProductLimit     = 500
)

// ProductRepo provides database operations for products.
type ProductRepo struct {
	DB *sql.DB
}

// NewProductRepo creates a new ProductRepo.
func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{DB: db}
}

// Create inserts a product and its sizes in one transaction.
func (r *ProductRepo) Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	if req == nil {
		return nil, errors.New("create product request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	var out model.Product
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			INSERT INTO products (name, club, description, price_cents, category_id, is_available)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+productColumns,
			req.Name, req.Club, req.Description, req.PriceCents, req.CategoryID, available,
		)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Product])
		if err != nil {
			return err
		}
		out.Sizes, err = insertSizes(ctx, tx, out.ID, req.Sizes)
		return err
	}})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

func insertSizes(ctx context.Context, tx pgx.Tx, productID string, sizes []model.SizeStock) ([]model.ProductSize, error) {
	out := make([]model.ProductSize, 0, len(sizes))
	for _, s := range sizes {
		rows, err := tx.Query(ctx, `
			INSERT INTO product_sizes (product_id, size, stock)
			VALUES ($1, $2, $3)
			RETURNING id, product_id, size, stock, created_at, updated_at`,
			productID, s.Size, s.Stock,
		)
		if err != nil {
			return nil, err
		}
		size, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.ProductSize])
		if err != nil {
			return nil, err
		}
		out = append(out, size)
	}
	return out, nil
}

// GetByID retrieves a product by ID. Malformed IDs are reported as not found.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NotFound("Product not found")
	}
	var out model.Product
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Product])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// productListRow is the flattened join row for ListAvailable.
type productListRow struct {
	model.Product
	CategoryRefID     *string    `db:"category_ref_id"`
	CategoryName      *string    `db:"category_name"`
	CategorySlug      *string    `db:"category_slug"`
	CategoryCreatedAt *time.Time `db:"category_created_at"`
	CategoryUpdatedAt *time.Time `db:"category_updated_at"`
	ImageID           *string    `db:"image_id"`
	ImageURL          *string    `db:"image_url"`
	ImageObjectKey    *string    `db:"image_object_key"`
	ImageCreatedAt    *time.Time `db:"image_created_at"`
}

func (row productListRow) toItem() *model.ProductListItem {
	item := &model.ProductListItem{Product: row.Product}
	if row.CategoryRefID != nil {
		item.Category = &model.Category{
			ID:        *row.CategoryRefID,
			Name:      deref(row.CategoryName),
			Slug:      deref(row.CategorySlug),
			CreatedAt: derefTime(row.CategoryCreatedAt),
			UpdatedAt: derefTime(row.CategoryUpdatedAt),
		}
	}
	if row.ImageID != nil {
		item.PrimaryImage = &model.ProductImage{
			ID:        *row.ImageID,
			ProductID: row.ID,
			URL:       deref(row.ImageURL),
			ObjectKey: deref(row.ImageObjectKey),
			IsPrimary: true,
			CreatedAt: derefTime(row.ImageCreatedAt),
		}
	}
	return item
}

// ListAvailable returns available products, newest first, with category, primary image and sizes.
func (r *ProductRepo) ListAvailable(ctx context.Context, opts model.ProductListOptions) ([]*model.ProductListItem, error) {
	query, args := buildProductListQuery(opts)

	var out []*model.ProductListItem
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		rowsOut, err := pgx.CollectRows(rows, pgx.RowToStructByName[productListRow])
		if err != nil {
			return err
		}
		out = make([]*model.ProductListItem, len(rowsOut))
		for i, row := range rowsOut {
			out[i] = row.toItem()
		}
		return attachSizes(ctx, conn, out)
	}); err != nil {
		return nil, listError(err, "products")
	}
	return out, nil
}

// attachSizes loads the sizes of every listed product in one query.
func attachSizes(ctx context.Context, conn *pgx.Conn, items []*model.ProductListItem) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, len(items))
	byID := make(map[string]*model.ProductListItem, len(items))
	for i, item := range items {
		ids[i] = item.ID
		byID[item.ID] = item
		item.Sizes = []model.ProductSize{}
	}
	rows, err := conn.Query(ctx, productSizesSelect, ids)
	if err != nil {
		return err
	}
	sizes, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.ProductSize])
	if err != nil {
		return err
	}
	for _, s := range sizes {
		if item, ok := byID[s.ProductID]; ok {
			item.Sizes = append(item.Sizes, s)
		}
	}
	return nil
}

// Stats returns the dashboard counts and up to lowStockLimit products whose
// summed stock is below lowStockBelow, lowest first.
func (r *ProductRepo) Stats(ctx context.Context, lowStockBelow, lowStockLimit int) (*model.CatalogStats, error) {
	stats := &model.CatalogStats{}
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, catalogCountsSelect, lowStockBelow)
		if err != nil {
			return err
		}
		stats.CatalogCounts, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.CatalogCounts])
		if err != nil {
			return err
		}
		rows, err = conn.Query(ctx, lowStockSelect, lowStockBelow, lowStockLimit)
		if err != nil {
			return err
		}
		stats.LowStockProducts, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.StockedProduct])
		return err
	}); err != nil {
		return nil, listError(err, "catalog stats")
	}
	return stats, nil
}

func buildProductListQuery(opts model.ProductListOptions) (string, []any) {
	var conds []database.Condition
	if !opts.IncludeUnavailable {
		conds = append(conds, database.WhereCond("p.is_available", database.Equal, true))
	}
	if slug := strings.TrimSpace(opts.CategorySlug); slug != "" {
		conds = append(conds, database.WhereCond("c.slug", database.Equal, slug))
	}
	if search := strings.TrimSpace(opts.Search); search != "" {
		conds = append(conds, database.WhereRawCond(
			`p.name ILIKE $1 OR p.club ILIKE $1 OR p.description ILIKE $1`,
			"%"+escapeLike(search)+"%",
		))
	}
	where, args, next := database.BuildWhere(conds, 1)

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultProductLimit
	}
	limit = min(limit, maxProductLimit)
	offset := max(opts.Offset, 0)

	query := productListSelect + "\n\t\t" + where +
		fmt.Sprintf("\n\t\tORDER BY p.created_at DESC LIMIT $%d OFFSET $%d", next, next+1)
	return query, append(args, limit, offset)
}

// escapeLike escapes LIKE wildcards so search terms match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ProductImageRepo provides database operations for product images.
type ProductImageRepo struct {
	DB *sql.DB
}

// NewProductImageRepo creates a new ProductImageRepo.
func NewProductImageRepo(db *sql.DB) *ProductImageRepo {
	return &ProductImageRepo{DB: db}
}

// Create records an image. A primary image demotes the product's previous primary in the same transaction.
func (r *ProductImageRepo) Create(ctx context.Context, req *model.CreateProductImageRequest) (*model.ProductImage, error) {
	if req == nil || req.ProductID == "" || req.URL == "" {
		return nil, apperrors.Validation("product_id and url are required")
	}

	var out model.ProductImage
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		if req.IsPrimary {
			if _, err := tx.Exec(ctx,
				`UPDATE product_images SET is_primary = FALSE WHERE product_id = $1 AND is_primary`,
				req.ProductID,
			); err != nil {
				return err
			}
		}
		rows, err := tx.Query(ctx, `
			INSERT INTO product_images (product_id, url, object_key, is_primary)
			VALUES ($1, $2, $3, $4)
			RETURNING id, product_id, url, object_key, is_primary, created_at`,
			req.ProductID, req.URL, req.ObjectKey, req.IsPrimary,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.ProductImage])
		return err
	}})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
