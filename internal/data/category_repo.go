package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jerseyretro/storefront/internal/core"
	"github.com/jerseyretro/storefront/internal/data/pgxutil"
	"github.com/jerseyretro/storefront/internal/domain/model"
	apperrors "github.com/jerseyretro/storefront/internal/errors"
)

var _ core.CategoryRepository = (*CategoryRepo)(nil)

const (
	categoryGetBySlugQuery = `
		SELECT id, name, slug, created_at, updated_at
		FROM categories
		WHERE slug = $1`

	categoryListQuery = `
		SELECT id, name, slug, created_at, updated_at
		FROM categories
		ORDER BY name ASC`

	categoryListWithCountsQuery = `
		SELECT c.id, c.name, c.slug, c.created_at, c.updated_at,
		       COUNT(p.id)::int AS product_count
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name ASC`
)

// CategoryRepo provides database operations for categories.
type CategoryRepo struct {
	DB *sql.DB
}

// NewCategoryRepo creates a new CategoryRepo.
func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{DB: db}
}

// Create inserts a category. A duplicate slug yields a Conflict AppError on field "slug".
func (r *CategoryRepo) Create(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error) {
	if req == nil {
		return nil, errors.New("create category request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}

	var out model.Category
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO categories (name, slug) VALUES ($1, $2)
			RETURNING id, name, slug, created_at, updated_at`,
			req.Name, req.Slug,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Category])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetBySlug retrieves a category by slug.
func (r *CategoryRepo) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var out model.Category
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, categoryGetBySlugQuery, slug)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Category])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// List returns all categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]*model.Category, error) {
	var rowsOut []model.Category
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, categoryListQuery)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Category])
		return err
	}); err != nil {
		return nil, listError(err, "categories")
	}
	return toPtrs(rowsOut), nil
}

// ListWithCounts returns all categories with their product counts, ordered by name.
func (r *CategoryRepo) ListWithCounts(ctx context.Context) ([]*model.CategoryWithCount, error) {
	var rowsOut []model.CategoryWithCount
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, categoryListWithCountsQuery)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.CategoryWithCount])
		return err
	}); err != nil {
		return nil, listError(err, "categories with counts")
	}
	return toPtrs(rowsOut), nil
}

func toPtrs[T any](in []T) []*T {
	out := make([]*T, len(in))
	for i := range in {
		out[i] = &in[i]
	}
	return out
}
