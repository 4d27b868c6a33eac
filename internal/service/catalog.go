package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jerseyretro/storefront/internal/core"
	"github.com/jerseyretro/storefront/internal/domain/model"
	apperrors "github.com/jerseyretro/storefront/internal/errors"
	"github.com/jerseyretro/storefront/internal/observability/metrics"
	"github.com/jerseyretro/storefront/internal/ports"
)

// CatalogRepositories groups the catalog persistence ports.
type CatalogRepositories struct {
	Products   core.ProductRepository      // Required
	Categories core.CategoryRepository     // Required
	Images     core.ProductImageRepository // Required
}

// CatalogServiceOptions groups dependencies for CatalogService.
type CatalogServiceOptions struct {
	Repos CatalogRepositories
	// Categories serves the public category list. Built from Repos.Categories when nil.
	Categories *core.CategoryCache
	Storage    CatalogStorage
}

// CatalogStorage holds the optional object store and telemetry.
type CatalogStorage struct {
	Objects   ports.ObjectStore // Optional: uploads fail when nil
	Telemetry Telemetry
}

// CatalogService serves the storefront catalog and its admin operations.
type CatalogService struct {
	products   core.ProductRepository
	categories core.CategoryRepository
	images     core.ProductImageRepository
	cache      *core.CategoryCache
	objects    ports.ObjectStore
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(opts CatalogServiceOptions) *CatalogService {
	if opts.Repos.Products == nil || opts.Repos.Categories == nil || opts.Repos.Images == nil {
		panic("catalog repositories are required")
	}
	logger := opts.Storage.Telemetry.logger("catalog")
	cache := opts.Categories
	if cache == nil {
		cache = core.NewCategoryCache(core.CategoryCacheOptions{Categories: opts.Repos.Categories, Logger: logger})
	}
	return &CatalogService{
		products:   opts.Repos.Products,
		categories: opts.Repos.Categories,
		images:     opts.Repos.Images,
		cache:      cache,
		objects:    opts.Storage.Objects,
		logger:     logger,
		metrics:    opts.Storage.Telemetry.Metrics,
	}
}

// recentProductsLimit is how many of the newest products the dashboard shows.
const recentProductsLimit = 5

// ListProducts returns available products. An unreachable database yields an empty list.
func (s *CatalogService) ListProducts(ctx context.Context, opts model.ProductListOptions) ([]*model.ProductListItem, error) {
	items, err := s.products.ListAvailable(ctx, opts)
	if apperrors.IsUpstream(err) {
		s.logger.WarnContext(ctx, "database unavailable, serving empty product list", "error", err)
		return []*model.ProductListItem{}, nil
	}
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.Sizes == nil {
			item.Sizes = []model.ProductSize{}
		}
	}
	return items, nil
}

// Stats summarizes the catalog for the admin dashboard. An unreachable database yields zeros.
func (s *CatalogService) Stats(ctx context.Context) (*model.CatalogStats, error) {
	stats, err := s.products.Stats(ctx, model.LowStockThreshold, recentProductsLimit)
	if err == nil {
		stats.RecentProducts, err = s.products.ListAvailable(ctx, model.ProductListOptions{
			Limit:              recentProductsLimit,
			IncludeUnavailable: true,
		})
	}
	if apperrors.IsUpstream(err) {
		s.logger.WarnContext(ctx, "database unavailable, serving empty catalog stats", "error", err)
		return emptyStats(), nil
	}
	if err != nil {
		return nil, err
	}
	if stats.LowStockProducts == nil {
		stats.LowStockProducts = []*model.StockedProduct{}
	}
	if stats.RecentProducts == nil {
		stats.RecentProducts = []*model.ProductListItem{}
	}
	return stats, nil
}

func emptyStats() *model.CatalogStats {
	return &model.CatalogStats{
		LowStockProducts: []*model.StockedProduct{},
		RecentProducts:   []*model.ProductListItem{},
	}
}

// ListCategories returns all categories ordered by name. An unreachable database yields an empty list.
func (s *CatalogService) ListCategories(ctx context.Context) ([]*model.Category, error) {
	cats, err := s.cache.List(ctx)
	if apperrors.IsUpstream(err) {
		s.logger.WarnContext(ctx, "database unavailable, serving empty category list", "error", err)
		return []*model.Category{}, nil
	}
	if err != nil {
		return nil, err
	}
	return cats, nil
}

// ListCategoriesWithCounts returns categories with product counts for the admin view.
func (s *CatalogService) ListCategoriesWithCounts(ctx context.Context) ([]*model.CategoryWithCount, error) {
	return s.categories.ListWithCounts(ctx)
}

// CreateCategory creates a category. A duplicate slug is a validation error.
func (s *CatalogService) CreateCategory(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error) {
	cat, err := s.categories.Create(ctx, req)
	if apperrors.IsConflict(err) {
		return nil, apperrors.ValidationField("slug", "Slug already exists")
	}
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	s.logger.InfoContext(ctx, "category created", "id", cat.ID, "slug", cat.Slug)
	return cat, nil
}

// CreateProduct creates a product with its sizes.
func (s *CatalogService) CreateProduct(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	if req == nil {
		return nil, apperrors.Validation("Product is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	p, err := s.products.Create(ctx, req)
	if apperrors.IsForeignKey(err) {
		return nil, apperrors.ValidationField("category_id", "Category does not exist")
	}
	if err != nil {
		return nil, err
	}
	if p.Sizes == nil {
		p.Sizes = []model.ProductSize{}
	}
	s.logger.InfoContext(ctx, "product created", "id", p.ID, "sizes", len(p.Sizes))
	return p, nil
}

// UploadImageInput carries one product image upload.
type UploadImageInput struct {
	ProductID   string
	ContentType string
	Size        int64
	Body        io.Reader
	Primary     bool
}

// UploadImage validates the file, stores it in the bucket and records it against the product.
func (s *CatalogService) UploadImage(ctx context.Context, in UploadImageInput) (*model.ProductImage, error) {
	img, err := s.uploadImage(ctx, in)
	if err != nil {
		s.metrics.Upload(metrics.ResultError, err)
		return nil, err
	}
	s.metrics.Upload(metrics.ResultSuccess, nil)
	return img, nil
}

func (s *CatalogService) uploadImage(ctx context.Context, in UploadImageInput) (*model.ProductImage, error) {
	if s.objects == nil {
		return nil, apperrors.Internal("Object storage is not configured")
	}
	ext, err := model.ValidateImageUpload(in.ContentType, in.Size)
	if err != nil {
		return nil, apperrors.ValidationField("file", err.Error())
	}
	if _, err := uuid.Parse(in.ProductID); err != nil {
		return nil, apperrors.NotFound("Product not found")
	}
	if _, err := s.products.GetByID(ctx, in.ProductID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("products/%s/%s%s", in.ProductID, uuid.NewString(), ext)
	url, err := s.objects.Put(ctx, ports.PutObjectInput{
		Key:         key,
		ContentType: in.ContentType,
		Size:        in.Size,
		Body:        io.LimitReader(in.Body, in.Size),
	})
	if err != nil {
		return nil, apperrors.Upstream(err, "Failed to upload image")
	}

	img, err := s.images.Create(ctx, &model.CreateProductImageRequest{
		ProductID: in.ProductID,
		URL:       url,
		ObjectKey: key,
		IsPrimary: in.Primary,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "image stored but not recorded, removing object", "key", key, "error", err)
		if derr := s.objects.Delete(context.WithoutCancel(ctx), key); derr != nil {
			s.logger.ErrorContext(ctx, "failed to remove orphaned image", "key", key, "error", derr)
		}
		return nil, err
	}
	s.logger.InfoContext(ctx, "product image uploaded", "product_id", in.ProductID, "key", key)
	return img, nil
}

// EnsureBucketResult describes the outcome of EnsureBucket.
type EnsureBucketResult struct {
	Bucket  string
	Created bool
}

// EnsureBucket creates the image bucket when missing. Calling it again is harmless.
func (s *CatalogService) EnsureBucket(ctx context.Context) (EnsureBucketResult, error) {
	if s.objects == nil {
		return EnsureBucketResult{}, apperrors.Internal("Object storage is not configured")
	}
	created, err := s.objects.EnsureBucket(ctx)
	if err != nil {
		return EnsureBucketResult{}, apperrors.Upstream(err, err.Error())
	}
	if created {
		s.logger.InfoContext(ctx, "image bucket created", "bucket", s.objects.Bucket())
	}
	return EnsureBucketResult{Bucket: s.objects.Bucket(), Created: created}, nil
}
