package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/summerbooks/backend/internal/service"
	"github.com/summerbooks/backend/pkg/httputil"
	"github.com/summerbooks/backend/pkg/validator"
)

// VoucherHandler handles HTTP requests for voucher endpoints.
type VoucherHandler struct {
	service *service.VoucherService
	errors  *httputil.ErrorWriter
}

// NewVoucherHandler creates a new voucher HTTP handler.
func NewVoucherHandler(svc *service.VoucherService, errors *httputil.ErrorWriter) *VoucherHandler {
	return &VoucherHandler{
		service: svc,
		errors:  errors,
	}
}

// AssignVoucherRequest is the JSON request body for granting a voucher.
type AssignVoucherRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// CreateVoucher handles POST /api/v1/vouchers
func (h *VoucherHandler) CreateVoucher(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req service.CreateVoucherInput
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

	voucher, err := h.service.CreateVoucher(r.Context(), req)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, voucher)
}

// AssignVoucher handles POST /api/v1/vouchers/{id}/assign
func (h *VoucherHandler) AssignVoucher(w http.ResponseWriter, r *http.Request) {
	voucherID := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req AssignVoucherRequest
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

	assignment, err := h.service.AssignVoucher(r.Context(), voucherID, req.UserID)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, assignment)
}

// ListMine handles GET /api/v1/vouchers/mine
func (h *VoucherHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorBody{
			Message: "authentication required",
			Code:    "UNAUTHORIZED",
		})
		return
	}

	vouchers, err := h.service.ListUserVouchers(r.Context(), userID)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, vouchers)
}
