package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/summerbooks/backend/internal/service"
	"github.com/summerbooks/backend/pkg/httputil"
	"github.com/summerbooks/backend/pkg/pagination"
	"github.com/summerbooks/backend/pkg/validator"
)

// ProductHandler handles HTTP requests for catalog endpoints.
type ProductHandler struct {
	service *service.CatalogService
	errors  *httputil.ErrorWriter
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.CatalogService, errors *httputil.ErrorWriter) *ProductHandler {
	return &ProductHandler{
		service: svc,
		errors:  errors,
	}
}

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	search := r.URL.Query().Get("search")

	products, total, err := h.service.ListProducts(r.Context(), search, params.Page, params.PerPage)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(products, total, params))
}

// GetProduct handles GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, product)
}

// GetProductBySlug handles GET /api/v1/products/slug/{slug}
func (h *ProductHandler) GetProductBySlug(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProductBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, product)
}

// CreateProduct handles POST /api/v1/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req service.CreateProductInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorBody{
			Message: "invalid request body: " + err.Error(),
			Code:    "INVALID_INPUT",
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, product)
}
