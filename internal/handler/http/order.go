package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/summerbooks/backend/internal/repository"
	"github.com/summerbooks/backend/internal/service"
	"github.com/summerbooks/backend/pkg/httputil"
	"github.com/summerbooks/backend/pkg/pagination"
	"github.com/summerbooks/backend/pkg/validator"
)

// OrderHandler handles HTTP requests for order lifecycle endpoints.
type OrderHandler struct {
	service *service.OrderService
	errors  *httputil.ErrorWriter
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, errors *httputil.ErrorWriter) *OrderHandler {
	return &OrderHandler{
		service: svc,
		errors:  errors,
	}
}

// UpdateStatusRequest is the JSON request body for updating order status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending shipping delivered cancelled"`
}

// ListOrders handles GET /api/v1/orders. Callers see their own orders only.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	params := pagination.FromRequest(r)
	filter := repository.OrderFilter{
		UserID:  &userID,
		Page:    params.Page,
		PerPage: params.PerPage,
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = &v
	}

	orders, total, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(orders, total, params))
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	order, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PUT /api/v1/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateStatusRequest
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

	order, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, order)
}

// Pay handles PUT /api/v1/orders/{id}/pay
func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.MarkPaid(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, order)
}
