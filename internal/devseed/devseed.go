// Package devseed fills a development database and dev auth provider with a usable storefront.
package devseed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jerseyretro/storefront/internal/domain/model"
	apperrors "github.com/jerseyretro/storefront/internal/errors"
	"github.com/jerseyretro/storefront/internal/service"
)

// Catalog is the slice of the catalog service seeding needs.
type Catalog interface {
	ListCategories(ctx context.Context) ([]*model.Category, error)
	CreateCategory(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error)
	ListProducts(ctx context.Context, opts model.ProductListOptions) ([]*model.ProductListItem, error)
	CreateProduct(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error)
}

// Admins creates administrator accounts.
type Admins interface {
	CreateAdmin(ctx context.Context, in service.CreateAdminInput) (*model.User, error)
}

// Services bundles the dependencies needed for development seeding.
type Services struct {
	Catalog Catalog
	Admins  Admins // Optional
	// Admin is registered with the dev provider so password sign-in works without the bootstrap fallback.
	Admin service.CreateAdminInput
}

// Run executes the full development seeding workflow.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "devseed")

	failures := 0
	if svcs.Admins != nil && svcs.Admin.Email != "" {
		if _, err := svcs.Admins.CreateAdmin(ctx, svcs.Admin); err != nil {
			logger.ErrorContext(ctx, "failed to seed admin account", "email", svcs.Admin.Email, "error", err)
			failures++
		}
	}
	if svcs.Catalog != nil {
		slugs, n := seedCategories(ctx, svcs.Catalog, logger)
		failures += n
		failures += seedProducts(ctx, svcs.Catalog, slugs, logger)
	}
	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	return nil
}

func defaultCategories() []model.CreateCategoryRequest {
	return []model.CreateCategoryRequest{
		{Name: "Home Kits", Slug: "home-kits"},
		{Name: "Away Kits", Slug: "away-kits"},
		{Name: "Goalkeeper", Slug: "goalkeeper"},
	}
}

type seedProduct struct {
	req  model.CreateProductRequest
	slug string
}

func defaultProducts() []seedProduct {
	return []seedProduct{
		{slug: "home-kits", req: model.CreateProductRequest{
			Name: "Home 1988-89", Club: "AC Milan", PriceCents: 8900,
			Description: "Red and black stripes, Mediolanum sponsor.",
			Sizes:       stock(6, 12, 9, 4),
		}},
		{slug: "home-kits", req: model.CreateProductRequest{
			Name: "Home 1995-96", Club: "Ajax", PriceCents: 7900,
			Description: "Champions League winning season.",
			Sizes:       stock(3, 8, 8, 2),
		}},
		{slug: "away-kits", req: model.CreateProductRequest{
			Name: "Away 1990", Club: "England", PriceCents: 6900,
			Description: "Italia 90 pale blue away shirt.",
			Sizes:       stock(5, 5, 5, 5),
		}},
		{slug: "goalkeeper", req: model.CreateProductRequest{
			Name: "Goalkeeper 1994", Club: "Mexico", PriceCents: 9900,
			Description: "Campos design, World Cup USA.",
			Sizes:       stock(0, 2, 1, 0),
		}},
	}
}

// stock builds S, M, L and XL size lines.
func stock(s, m, l, xl int) []model.SizeStock {
	return []model.SizeStock{{Size: "S", Stock: s}, {Size: "M", Stock: m}, {Size: "L", Stock: l}, {Size: "XL", Stock: xl}}
}

// seedCategories creates missing categories and returns slug to id for all known ones.
func seedCategories(ctx context.Context, catalog Catalog, logger *slog.Logger) (map[string]string, int) {
	slugs := make(map[string]string)
	existing, err := catalog.ListCategories(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list categories", "error", err)
		return slugs, 1
	}
	for _, c := range existing {
		slugs[c.Slug] = c.ID
	}

	failures := 0
	for _, req := range defaultCategories() {
		if _, ok := slugs[req.Slug]; ok {
			logger.InfoContext(ctx, "category already exists", "slug", req.Slug)
			continue
		}
		created, err := catalog.CreateCategory(ctx, &req)
		if err != nil {
			if apperrors.IsValidation(err) && apperrors.GetField(err) == "slug" {
				continue
			}
			logger.ErrorContext(ctx, "failed to create category", "slug", req.Slug, "error", err)
			failures++
			continue
		}
		slugs[created.Slug] = created.ID
		logger.InfoContext(ctx, "created category", "slug", created.Slug)
	}
	return slugs, failures
}

func seedProducts(ctx context.Context, catalog Catalog, slugs map[string]string, logger *slog.Logger) int {
	failures := 0
	for _, p := range defaultProducts() {
		exists, err := productExists(ctx, catalog, p.req)
		if err != nil {
			logger.ErrorContext(ctx, "failed to look up product", "name", p.req.Name, "error", err)
			failures++
			continue
		}
		if exists {
			continue
		}
		req := p.req
		if id, ok := slugs[p.slug]; ok {
			req.CategoryID = &id
		}
		if _, err := catalog.CreateProduct(ctx, &req); err != nil {
			logger.ErrorContext(ctx, "failed to create product", "name", req.Name, "error", err)
			failures++
			continue
		}
		logger.InfoContext(ctx, "created product", "name", req.Name, "club", req.Club)
	}
	return failures
}

func productExists(ctx context.Context, catalog Catalog, req model.CreateProductRequest) (bool, error) {
	items, err := catalog.ListProducts(ctx, model.ProductListOptions{Search: req.Club})
	if err != nil {
		return false, err
	}
	for _, it := range items {
		if strings.EqualFold(it.Name, req.Name) && strings.EqualFold(it.Club, req.Club) {
			return true, nil
		}
	}
	return false, nil
}
