package data

import (
	"context"
	"testing"

	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
	"github.com/jerseyretro/storefront/internal/domain/model"
	apperrors "github.com/jerseyretro/storefront/internal/errors"
	"github.com/jerseyretro/storefront/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db := testutil.SetupTestDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	_, err := repo.GetByEmail(ctx, "admin@jersey.com")
	assert.True(t, apperrors.IsNotFound(err))

	created, err := repo.Create(ctx, &model.CreateUserRequest{
		Email: "Admin@Jersey.com", Name: "Admin Jersey", Role: domainauth.RoleAdmin,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "admin@jersey.com", created.Email)

	_, err = repo.Create(ctx, &model.CreateUserRequest{Email: "admin@jersey.com"})
	assert.True(t, apperrors.IsConflict(err))
	assert.Equal(t, "email", apperrors.GetField(err))

	upserted, err := repo.Upsert(ctx, &model.CreateUserRequest{
		ID: "7f0d4c4e-3c1b-4a57-9d0b-1f7b0e8b9a11", Email: "admin@jersey.com", Name: "Renamed", Role: domainauth.RoleUser,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, upserted.ID)
	assert.Equal(t, domainauth.RoleUser, upserted.Role)

	promoted, err := repo.SetRole(ctx, "ADMIN@jersey.com", domainauth.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin())

	_, err = repo.SetRole(ctx, "nobody@jersey.com", domainauth.RoleAdmin)
	assert.True(t, apperrors.IsNotFound(err))

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin@jersey.com", byID.Email)

	_, err = repo.GetByID(ctx, "not-a-uuid")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCatalogRepos_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	categories := NewCategoryRepo(db)
	products := NewProductRepo(db)
	images := NewProductImageRepo(db)

	home, err := categories.Create(ctx, &model.CreateCategoryRequest{Name: "Home Kits", Slug: "home-kits"})
	require.NoError(t, err)
	_, err = categories.Create(ctx, &model.CreateCategoryRequest{Name: "Away Kits"})
	require.NoError(t, err)

	_, err = categories.Create(ctx, &model.CreateCategoryRequest{Name: "Dup", Slug: "home-kits"})
	assert.True(t, apperrors.IsConflict(err))
	assert.Equal(t, "slug", apperrors.GetField(err))

	milan, err := products.Create(ctx, &model.CreateProductRequest{
		Name: "Home 1994", Club: "AC Milan", PriceCents: 7500, CategoryID: &home.ID,
		Sizes: []model.SizeStock{{Size: "l", Stock: 5}, {Size: "M", Stock: 8}},
	})
	require.NoError(t, err)
	require.Len(t, milan.Sizes, 2)
	assert.Equal(t, 13, milan.TotalStock())
	hidden := false
	_, err = products.Create(ctx, &model.CreateProductRequest{
		Name: "Away 1996", Club: "Ajax", PriceCents: 6000, IsAvailable: &hidden,
	})
	require.NoError(t, err)

	_, err = images.Create(ctx, &model.CreateProductImageRequest{
		ProductID: milan.ID, URL: "http://cdn/a.png", ObjectKey: "a.png", IsPrimary: true,
	})
	require.NoError(t, err)
	second, err := images.Create(ctx, &model.CreateProductImageRequest{
		ProductID: milan.ID, URL: "http://cdn/b.png", ObjectKey: "b.png", IsPrimary: true,
	})
	require.NoError(t, err)

	list, err := products.ListAvailable(ctx, model.ProductListOptions{Search: "milan"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "home-kits", list[0].Category.Slug)
	assert.Equal(t, second.ID, list[0].PrimaryImage.ID)
	require.Len(t, list[0].Sizes, 2)
	assert.Equal(t, "M", list[0].Sizes[0].Size)
	assert.Equal(t, "L", list[0].Sizes[1].Size)

	list, err = products.ListAvailable(ctx, model.ProductListOptions{CategorySlug: "away-kits"})
	require.NoError(t, err)
	assert.Empty(t, list)

	stats, err := products.Stats(ctx, model.LowStockThreshold, 5)
	require.NoError(t, err)
	assert.Equal(t, model.CatalogCounts{TotalProducts: 2, TotalCategories: 2, TotalStock: 13, LowStockCount: 1}, stats.CatalogCounts)
	require.Len(t, stats.LowStockProducts, 1)
	assert.Equal(t, "Away 1996", stats.LowStockProducts[0].Name)
	assert.Equal(t, 0, stats.LowStockProducts[0].TotalStock)

	_, err = products.GetByID(ctx, "not-a-uuid")
	assert.True(t, apperrors.IsNotFound(err))

	all, err := categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Away Kits", all[0].Name)

	counts, err := categories.ListWithCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, counts[0].ProductCount)
	assert.Equal(t, 1, counts[1].ProductCount)

	_, err = products.Create(ctx, &model.CreateProductRequest{
		Name: "Ghost", PriceCents: 1, CategoryID: testutil.StringPtr("00000000-0000-0000-0000-000000000000"),
	})
	assert.True(t, apperrors.IsForeignKey(err))
}
