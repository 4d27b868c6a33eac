package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jerseyretro/storefront/internal/domain/model"
	apperrors "github.com/jerseyretro/storefront/internal/errors"
	"github.com/jerseyretro/storefront/internal/mocks"
	"github.com/jerseyretro/storefront/internal/ports"
	"github.com/jerseyretro/storefront/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type catalogMocks struct {
	products   *mocks.MockProductRepository
	categories *mocks.MockCategoryRepository
	images     *mocks.MockProductImageRepository
	objects    *mocks.MockObjectStore
}

func newCatalogService(t *testing.T, withObjects bool) (*CatalogService, catalogMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := catalogMocks{
		products:   mocks.NewMockProductRepository(ctrl),
		categories: mocks.NewMockCategoryRepository(ctrl),
		images:     mocks.NewMockProductImageRepository(ctrl),
		objects:    mocks.NewMockObjectStore(ctrl),
	}
	storage := CatalogStorage{}
	if withObjects {
		storage.Objects = m.objects
	}
	svc := NewCatalogService(CatalogServiceOptions{
		Repos:   CatalogRepositories{Products: m.products, Categories: m.categories, Images: m.images},
		Storage: storage,
	})
	return svc, m
}

const testProductID = "5b0c6a8e-3f0e-4d7a-9a55-2f8f4d1c9e01"

var errDBDown = apperrors.Upstream(errors.New("dial tcp: connection refused"), "database unavailable")

func TestCatalogService_ListsDegradeWhenDatabaseUnavailable(t *testing.T) {
	svc, m := newCatalogService(t, false)
	m.products.EXPECT().ListAvailable(gomock.Any(), gomock.Any()).Return(nil, errDBDown)
	m.categories.EXPECT().List(gomock.Any()).Return(nil, errDBDown)

	products, err := svc.ListProducts(context.Background(), model.ProductListOptions{})
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)

	cats, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, cats)
	assert.Empty(t, cats)
}

func TestCatalogService_ListProductsPassesFilters(t *testing.T) {
	svc, m := newCatalogService(t, false)
	opts := model.ProductListOptions{Search: "milan", CategorySlug: "home-kits"}
	m.products.EXPECT().ListAvailable(gomock.Any(), opts).Return([]*model.ProductListItem{{}}, nil)

	got, err := svc.ListProducts(context.Background(), opts)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCatalogService_ListProductsOtherErrors(t *testing.T) {
	svc, m := newCatalogService(t, false)
	m.products.EXPECT().ListAvailable(gomock.Any(), gomock.Any()).Return(nil, errors.New("syntax error"))

	_, err := svc.ListProducts(context.Background(), model.ProductListOptions{})
	assert.Error(t, err)
}

func TestCatalogService_CreateCategory(t *testing.T) {
	svc, m := newCatalogService(t, false)
	req := &model.CreateCategoryRequest{Name: "Home Kits", Slug: "home-kits"}

	m.categories.EXPECT().Create(gomock.Any(), req).Return(nil, apperrors.Conflict("slug already exists"))
	_, err := svc.CreateCategory(context.Background(), req)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus())
	assert.Equal(t, "Slug already exists", appErr.Message)

	m.categories.EXPECT().Create(gomock.Any(), req).Return(&model.Category{ID: "c1", Slug: "home-kits"}, nil)
	cat, err := svc.CreateCategory(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "c1", cat.ID)
}

func TestCatalogService_CreateProductUnknownCategory(t *testing.T) {
	svc, m := newCatalogService(t, false)
	m.products.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, &apperrors.AppError{Code: apperrors.ErrCodeForeignKey})

	_, err := svc.CreateProduct(context.Background(), &model.CreateProductRequest{Name: "Home 1994"})
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "category_id", apperrors.GetField(err))
}

func TestCatalogService_CreateProductValidatesBeforeStore(t *testing.T) {
	tests := []struct {
		name string
		req  *model.CreateProductRequest
	}{
		{name: "non-uuid category", req: &model.CreateProductRequest{Name: "Home 1994", CategoryID: testutil.StringPtr("home-kits")}},
		{name: "negative stock", req: &model.CreateProductRequest{Name: "Home 1994", Sizes: []model.SizeStock{{Size: "M", Stock: -1}}}},
		{name: "duplicate size", req: &model.CreateProductRequest{Name: "Home 1994", Sizes: []model.SizeStock{{Size: "m"}, {Size: "M "}}}},
		{name: "missing name", req: &model.CreateProductRequest{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newCatalogService(t, false)
			_, err := svc.CreateProduct(context.Background(), tt.req)
			appErr, ok := apperrors.As(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus())
		})
	}
}

func TestCatalogService_CreateProductWithSizes(t *testing.T) {
	svc, m := newCatalogService(t, false)
	m.products.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *model.CreateProductRequest) (*model.Product, error) {
			assert.Equal(t, []model.SizeStock{{Size: "M", Stock: 3}, {Size: "XL", Stock: 1}}, req.Sizes)
			return &model.Product{ID: testProductID, Sizes: []model.ProductSize{{Size: "M", Stock: 3}, {Size: "XL", Stock: 1}}}, nil
		})

	p, err := svc.CreateProduct(context.Background(), &model.CreateProductRequest{
		Name: "Home 1994", Sizes: []model.SizeStock{{Size: " m", Stock: 3}, {Size: "xl", Stock: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, p.TotalStock())
}

func TestCatalogService_ListProductsAlwaysHasSizes(t *testing.T) {
	svc, m := newCatalogService(t, false)
	m.products.EXPECT().ListAvailable(gomock.Any(), gomock.Any()).Return([]*model.ProductListItem{
		{Product: model.Product{ID: "a"}},
		{Product: model.Product{ID: "b", Sizes: []model.ProductSize{{Size: "L", Stock: 2}}}},
	}, nil)

	items, err := svc.ListProducts(context.Background(), model.ProductListOptions{})
	require.NoError(t, err)
	assert.NotNil(t, items[0].Sizes)
	assert.Empty(t, items[0].Sizes)
	assert.Len(t, items[1].Sizes, 1)
}

func TestCatalogService_Stats(t *testing.T) {
	svc, m := newCatalogService(t, false)
	counts := model.CatalogCounts{TotalProducts: 3, TotalCategories: 2, TotalStock: 41, LowStockCount: 1}
	m.products.EXPECT().Stats(gomock.Any(), model.LowStockThreshold, 5).Return(&model.CatalogStats{
		CatalogCounts:    counts,
		LowStockProducts: []*model.StockedProduct{{ID: "a", Name: "Away 1996", TotalStock: 2}},
	}, nil)
	m.products.EXPECT().ListAvailable(gomock.Any(), model.ProductListOptions{Limit: 5, IncludeUnavailable: true}).
		Return([]*model.ProductListItem{{Product: model.Product{ID: "new"}}}, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, counts, stats.CatalogCounts)
	require.Len(t, stats.LowStockProducts, 1)
	assert.Equal(t, "Away 1996", stats.LowStockProducts[0].Name)
	require.Len(t, stats.RecentProducts, 1)
	assert.Equal(t, "new", stats.RecentProducts[0].ID)
}

func TestCatalogService_StatsDegradeWhenDatabaseUnavailable(t *testing.T) {
	t.Run("counts unavailable", func(t *testing.T) {
		svc, m := newCatalogService(t, false)
		m.products.EXPECT().Stats(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errDBDown)

		stats, err := svc.Stats(context.Background())
		require.NoError(t, err)
		assert.Zero(t, stats.CatalogCounts)
		assert.NotNil(t, stats.LowStockProducts)
		assert.NotNil(t, stats.RecentProducts)
	})

	t.Run("recent products unavailable", func(t *testing.T) {
		svc, m := newCatalogService(t, false)
		m.products.EXPECT().Stats(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&model.CatalogStats{CatalogCounts: model.CatalogCounts{TotalProducts: 1}}, nil)
		m.products.EXPECT().ListAvailable(gomock.Any(), gomock.Any()).Return(nil, errDBDown)

		stats, err := svc.Stats(context.Background())
		require.NoError(t, err)
		assert.Zero(t, stats.TotalProducts)
		assert.Empty(t, stats.RecentProducts)
	})

	t.Run("other errors surface", func(t *testing.T) {
		svc, m := newCatalogService(t, false)
		m.products.EXPECT().Stats(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("syntax error"))

		_, err := svc.Stats(context.Background())
		assert.Error(t, err)
	})
}

func TestCatalogService_UploadImage(t *testing.T) {
	svc, m := newCatalogService(t, true)
	ctx := context.Background()

	m.products.EXPECT().GetByID(gomock.Any(), testProductID).Return(&model.Product{ID: testProductID}, nil)
	m.objects.EXPECT().Put(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, in ports.PutObjectInput) (string, error) {
			assert.True(t, strings.HasPrefix(in.Key, "products/"+testProductID+"/"))
			assert.True(t, strings.HasSuffix(in.Key, ".png"))
			assert.Equal(t, "image/png", in.ContentType)
			b, _ := io.ReadAll(in.Body)
			assert.Equal(t, "png", string(b))
			return "http://cdn/jersey-images/" + in.Key, nil
		})
	m.images.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *model.CreateProductImageRequest) (*model.ProductImage, error) {
			assert.True(t, req.IsPrimary)
			return &model.ProductImage{ID: "i1", ProductID: req.ProductID, URL: req.URL, ObjectKey: req.ObjectKey, IsPrimary: true}, nil
		})

	img, err := svc.UploadImage(ctx, UploadImageInput{
		ProductID: testProductID, ContentType: "image/png", Size: 3, Body: strings.NewReader("png"), Primary: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "i1", img.ID)
}

func TestCatalogService_UploadImageRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("bad type", func(t *testing.T) {
		svc, _ := newCatalogService(t, true)
		_, err := svc.UploadImage(ctx, UploadImageInput{ProductID: testProductID, ContentType: "application/pdf", Size: 10, Body: strings.NewReader("x")})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("too large", func(t *testing.T) {
		svc, _ := newCatalogService(t, true)
		_, err := svc.UploadImage(ctx, UploadImageInput{ProductID: testProductID, ContentType: "image/jpeg", Size: model.MaxImageBytes + 1, Body: strings.NewReader("x")})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("malformed product id", func(t *testing.T) {
		svc, _ := newCatalogService(t, true)
		_, err := svc.UploadImage(ctx, UploadImageInput{ProductID: "p1", ContentType: "image/png", Size: 1, Body: strings.NewReader("x")})
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("unknown product", func(t *testing.T) {
		svc, m := newCatalogService(t, true)
		missing := "00000000-0000-0000-0000-000000000000"
		m.products.EXPECT().GetByID(gomock.Any(), missing).Return(nil, apperrors.NotFound("product not found"))
		_, err := svc.UploadImage(ctx, UploadImageInput{ProductID: missing, ContentType: "image/gif", Size: 1, Body: strings.NewReader("x")})
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("storage failure", func(t *testing.T) {
		svc, m := newCatalogService(t, true)
		m.products.EXPECT().GetByID(gomock.Any(), testProductID).Return(&model.Product{ID: testProductID}, nil)
		m.objects.EXPECT().Put(gomock.Any(), gomock.Any()).Return("", errors.New("s3 down"))
		_, err := svc.UploadImage(ctx, UploadImageInput{ProductID: testProductID, ContentType: "image/webp", Size: 1, Body: strings.NewReader("x")})
		assert.True(t, apperrors.IsUpstream(err))
	})

	t.Run("record failure removes the stored object", func(t *testing.T) {
		svc, m := newCatalogService(t, true)
		var storedKey string
		m.products.EXPECT().GetByID(gomock.Any(), testProductID).Return(&model.Product{ID: testProductID}, nil)
		m.objects.EXPECT().Put(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, in ports.PutObjectInput) (string, error) {
				storedKey = in.Key
				return "http://cdn/" + in.Key, nil
			})
		m.images.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("insert failed"))
		m.objects.EXPECT().Delete(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, key string) error {
				assert.Equal(t, storedKey, key)
				return nil
			})

		_, err := svc.UploadImage(ctx, UploadImageInput{ProductID: testProductID, ContentType: "image/png", Size: 1, Body: strings.NewReader("x")})
		assert.ErrorContains(t, err, "insert failed")
	})

	t.Run("failed cleanup keeps the record error", func(t *testing.T) {
		svc, m := newCatalogService(t, true)
		m.products.EXPECT().GetByID(gomock.Any(), testProductID).Return(&model.Product{ID: testProductID}, nil)
		m.objects.EXPECT().Put(gomock.Any(), gomock.Any()).Return("http://cdn/x", nil)
		m.images.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("insert failed"))
		m.objects.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(errors.New("s3 down"))

		_, err := svc.UploadImage(ctx, UploadImageInput{ProductID: testProductID, ContentType: "image/png", Size: 1, Body: strings.NewReader("x")})
		assert.ErrorContains(t, err, "insert failed")
	})

	t.Run("storage not configured", func(t *testing.T) {
		svc, _ := newCatalogService(t, false)
		_, err := svc.UploadImage(ctx, UploadImageInput{ProductID: testProductID, ContentType: "image/png", Size: 1, Body: strings.NewReader("x")})
		assert.True(t, apperrors.IsInternal(err))
	})
}

func TestCatalogService_EnsureBucket(t *testing.T) {
	svc, m := newCatalogService(t, true)
	m.objects.EXPECT().Bucket().Return("jersey-images").AnyTimes()

	m.objects.EXPECT().EnsureBucket(gomock.Any()).Return(true, nil)
	res, err := svc.EnsureBucket(context.Background())
	require.NoError(t, err)
	assert.Equal(t, EnsureBucketResult{Bucket: "jersey-images", Created: true}, res)

	m.objects.EXPECT().EnsureBucket(gomock.Any()).Return(false, nil)
	res, err = svc.EnsureBucket(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Created)

	m.objects.EXPECT().EnsureBucket(gomock.Any()).Return(false, errors.New("access denied"))
	_, err = svc.EnsureBucket(context.Background())
	assert.True(t, apperrors.IsUpstream(err))
}
