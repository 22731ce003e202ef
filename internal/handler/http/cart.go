package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/summerbooks/backend/internal/service"
	"github.com/summerbooks/backend/pkg/httputil"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	errors  *httputil.ErrorWriter
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, errors *httputil.ErrorWriter) *CartHandler {
	return &CartHandler{
		service: svc,
		errors:  errors,
	}
}

// AddItemRequest is the JSON request body for adding a cart line.
type AddItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// UpdateItemRequest is the JSON request body for changing a line quantity.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := ownerIDFromContext(r.Context())

	cart, err := h.service.GetCart(r.Context(), ownerID)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, cart)
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := ownerIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorBody{
			Message: "invalid request body: " + err.Error(),
			Code:    "INVALID_INPUT",
		})
		return
	}

	cart, err := h.service.AddLine(r.Context(), ownerID, req.ProductID, req.Quantity)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, cart)
}

// UpdateItem handles PUT /api/v1/cart/items/{productId}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := ownerIDFromContext(r.Context())
	productID := chi.URLParam(r, "productId")

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorBody{
			Message: "invalid request body: " + err.Error(),
			Code:    "INVALID_INPUT",
		})
		return
	}

	cart, err := h.service.UpdateLine(r.Context(), ownerID, productID, req.Quantity)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := ownerIDFromContext(r.Context())
	productID := chi.URLParam(r, "productId")

	cart, err := h.service.RemoveLine(r.Context(), ownerID, productID)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, cart)
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := ownerIDFromContext(r.Context())

	if err := h.service.Clear(r.Context(), ownerID); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
