package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jerseyretro/storefront/internal/domain/model"
	"github.com/jerseyretro/storefront/internal/service"
)

const (
	defaultProductListLimit = 100
	maxProductListLimit     = 500
	multipartMemory         = 8 << 20
	multipartOverhead       = 1 << 20
)

// CatalogHandlers serves the public catalog and its admin operations.
type CatalogHandlers struct {
	Svc    *service.CatalogService
	Logger *slog.Logger
}

// ListProducts handles GET /api/products?search=&category=.
func (h *CatalogHandlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultProductListLimit, maxProductListLimit)
	q := r.URL.Query()
	products, err := h.Svc.ListProducts(r.Context(), model.ProductListOptions{
		Search:       strings.TrimSpace(q.Get("search")),
		CategorySlug: strings.TrimSpace(q.Get("category")),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		WriteServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"products": products})
}

// ListCategories handles GET /api/categories.
func (h *CatalogHandlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Svc.ListCategories(r.Context())
	if err != nil {
		WriteServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

// AdminListCategories handles GET /api/admin/categories.
func (h *CatalogHandlers) AdminListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Svc.ListCategoriesWithCounts(r.Context())
	if err != nil {
		WriteServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

// Stats handles GET /api/admin/stats.
func (h *CatalogHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Stats(r.Context())
	if err != nil {
		WriteServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// CreateCategory handles POST /api/admin/categories.
func (h *CatalogHandlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCategoryRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	cat, err := h.Svc.CreateCategory(r.Context(), &req)
	if err != nil {
		WriteServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"category": cat})
}

// CreateProduct handles POST /api/admin/products.
func (h *CatalogHandlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req model.CreateProductRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	p, err := h.Svc.CreateProduct(r.Context(), &req)
	if err != nil {
		WriteServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"product": p})
}

// UploadImage handles POST /api/admin/products/{id}/images with a multipart "file" field.
func (h *CatalogHandlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, model.MaxImageBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, Message: "file too large; maximum is 5MB"})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, Message: "Invalid multipart form"})
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil && h.Logger != nil {
			h.Logger.WarnContext(r.Context(), "failed to remove multipart temp files", "error", err)
		}
	}()

	file, hdr, err := r.FormFile("file")
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, Message: "No file provided"})
		return
	}
	defer file.Close()

	img, err := h.Svc.UploadImage(r.Context(), service.UploadImageInput{
		ProductID:   r.PathValue("id"),
		ContentType: hdr.Header.Get("Content-Type"),
		Size:        hdr.Size,
		Body:        file,
		Primary:     parseBoolForm(r.FormValue("primary")),
	})
	if err != nil {
		WriteServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"image": img})
}

// CreateBucket handles POST /api/create-bucket. Repeated calls succeed.
func (h *CatalogHandlers) CreateBucket(w http.ResponseWriter, r *http.Request) {
	res, err := h.Svc.EnsureBucket(r.Context())
	if err != nil {
		WriteServiceError(w, r, h.Logger, err)
		return
	}
	msg := fmt.Sprintf("Bucket %q already exists", res.Bucket)
	if res.Created {
		msg = fmt.Sprintf("Bucket %q created successfully", res.Bucket)
	}
	WriteJSON(w, http.StatusOK, map[string]any{"success": true, "message": msg})
}
