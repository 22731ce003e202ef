package http

import (
	"encoding/json"
	"net/http"

	"github.com/summerbooks/backend/internal/domain"
	"github.com/summerbooks/backend/internal/service"
	"github.com/summerbooks/backend/pkg/httputil"
)

// CheckoutHandler handles the checkout endpoint.
type CheckoutHandler struct {
	service *service.CheckoutService
	errors  *httputil.ErrorWriter
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, errors *httputil.ErrorWriter) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		errors:  errors,
	}
}

// CheckoutItemRequest is one submitted cart line.
type CheckoutItemRequest struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Author    string `json:"author"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// CheckoutRequest is the JSON request body for a checkout. Field names match
// the storefront client contract.
type CheckoutRequest struct {
	OrderItems    []CheckoutItemRequest `json:"orderItems"`
	Name          string                `json:"name"`
	Phone         string                `json:"phone"`
	Address       string                `json:"address"`
	UserVoucherID string                `json:"userVoucherId"`
}

// Checkout handles POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorBody{
			Message: "authentication required",
			Code:    "UNAUTHORIZED",
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorBody{
			Message: "invalid request body: " + err.Error(),
			Code:    "INVALID_INPUT",
		})
		return
	}

	items := make([]service.CheckoutItemInput, len(req.OrderItems))
	for i, item := range req.OrderItems {
		items[i] = service.CheckoutItemInput{
			ProductID: item.ProductID,
			Title:     item.Name,
			Author:    item.Author,
			ImageURL:  item.Image,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	input := service.CheckoutInput{
		UserID: userID,
		Items:  items,
		Recipient: domain.Recipient{
			Name:    req.Name,
			Phone:   req.Phone,
			Address: req.Address,
		},
		AssignmentID: req.UserVoucherID,
	}

	order, err := h.service.Checkout(r.Context(), input)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, order)
}
