package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/summerbooks/backend/internal/domain"
	"github.com/summerbooks/backend/internal/repository"
	"github.com/summerbooks/backend/pkg/httputil"
)

func catalogProduct() domain.Product {
	now := time.Now().UTC()
	return domain.Product{
		ID:           "prod-001",
		Title:        "Nhà Giả Kim",
		Author:       "Paulo Coelho",
		Price:        100_000,
		CountInStock: 10,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func validCheckoutBody() CheckoutRequest {
	return CheckoutRequest{
		OrderItems: []CheckoutItemRequest{
			{
				ProductID: "prod-001",
				Name:      "Nhà Giả Kim",
				Author:    "Paulo Coelho",
				Price:     100_000,
				Quantity:  1,
			},
		},
		Name:    "Minh Đức",
		Phone:   "0377712126",
		Address: "96 Hoàng Mai, quận Đống Đa, Hà Nội",
	}
}

func postCheckout(t *testing.T, router http.Handler, body CheckoutRequest, userID string) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorBody {
	t.Helper()
	var body httputil.ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestCheckoutEndpoint_Success(t *testing.T) {
	products := new(mockProductRepository)
	orders := new(mockOrderRepository)
	carts := new(mockCartRepository)
	router := setupCheckoutRouter(products, orders, carts, new(mockVoucherRepository))

	products.On("FindByIDs", mock.Anything, []string{"prod-001"}).
		Return([]domain.Product{catalogProduct()}, nil)
	orders.On("CommitCheckout", mock.Anything, mock.Anything, "").Return(nil)
	carts.On("Delete", mock.Anything, "user-001").Return(nil)

	rec := postCheckout(t, router, validCheckoutBody(), "user-001")

	require.Equal(t, http.StatusOK, rec.Code)

	var order domain.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))
	assert.Equal(t, "user-001", order.UserID)
	assert.Equal(t, int64(100_000), order.TotalPrice)
	assert.Equal(t, int64(0), order.DiscountAmount)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
}

func TestCheckoutEndpoint_WithVoucher(t *testing.T) {
	products := new(mockProductRepository)
	orders := new(mockOrderRepository)
	carts := new(mockCartRepository)
	vouchers := new(mockVoucherRepository)
	router := setupCheckoutRouter(products, orders, carts, vouchers)

	now := time.Now().UTC()
	products.On("FindByIDs", mock.Anything, []string{"prod-001"}).
		Return([]domain.Product{catalogProduct()}, nil)
	vouchers.On("GetAssignment", mock.Anything, "assign-001").
		Return(&repository.AssignedVoucher{
			Assignment: domain.VoucherAssignment{
				ID:        "assign-001",
				VoucherID: "voucher-001",
				UserID:    "user-001",
			},
			Voucher: domain.Voucher{
				ID:        "voucher-001",
				Value:     10,
				StartDate: now.AddDate(0, 0, -1),
				EndDate:   now.AddDate(0, 0, 1),
				Remain:    5,
				Status:    domain.VoucherStatusActive,
			},
		}, nil)
	orders.On("CommitCheckout", mock.Anything, mock.Anything, "assign-001").Return(nil)
	carts.On("Delete", mock.Anything, "user-001").Return(nil)

	body := validCheckoutBody()
	body.UserVoucherID = "assign-001"

	rec := postCheckout(t, router, body, "user-001")

	require.Equal(t, http.StatusOK, rec.Code)

	var order domain.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))
	assert.Equal(t, int64(10_000), order.DiscountAmount)
	assert.Equal(t, int64(90_000), order.TotalPrice)
}

func TestCheckoutEndpoint_EmptyCart(t *testing.T) {
	router := setupCheckoutRouter(new(mockProductRepository), new(mockOrderRepository), new(mockCartRepository), new(mockVoucherRepository))

	body := validCheckoutBody()
	body.OrderItems = nil

	rec := postCheckout(t, router, body, "user-001")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	errBody := decodeErrorBody(t, rec)
	assert.Equal(t, "cart", errBody.Field)
	assert.Equal(t, "Giỏ hàng trống", errBody.Message)
}

func TestCheckoutEndpoint_FieldTaggedValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*CheckoutRequest)
		wantField   string
		wantMessage string
	}{
		{
			name:        "bad phone prefix",
			mutate:      func(b *CheckoutRequest) { b.Phone = "9377712126" },
			wantField:   "phone",
			wantMessage: "Số điện thoại phải bắt đầu bằng số 0",
		},
		{
			name:        "short name",
			mutate:      func(b *CheckoutRequest) { b.Name = "Minh" },
			wantField:   "name",
			wantMessage: "Họ tên phải từ 5 đến 50 ký tự",
		},
		{
			name:        "short address",
			mutate:      func(b *CheckoutRequest) { b.Address = "số 9" },
			wantField:   "address",
			wantMessage: "Địa chỉ phải từ 10 đến 100 ký tự",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupCheckoutRouter(new(mockProductRepository), new(mockOrderRepository), new(mockCartRepository), new(mockVoucherRepository))

			body := validCheckoutBody()
			tt.mutate(&body)

			rec := postCheckout(t, router, body, "user-001")

			require.Equal(t, http.StatusBadRequest, rec.Code)
			errBody := decodeErrorBody(t, rec)
			assert.Equal(t, tt.wantField, errBody.Field)
			assert.Equal(t, tt.wantMessage, errBody.Message)
		})
	}
}

func TestCheckoutEndpoint_ExpiredVoucher(t *testing.T) {
	products := new(mockProductRepository)
	vouchers := new(mockVoucherRepository)
	router := setupCheckoutRouter(products, new(mockOrderRepository), new(mockCartRepository), vouchers)

	now := time.Now().UTC()
	products.On("FindByIDs", mock.Anything, []string{"prod-001"}).
		Return([]domain.Product{catalogProduct()}, nil)
	vouchers.On("GetAssignment", mock.Anything, "assign-001").
		Return(&repository.AssignedVoucher{
			Assignment: domain.VoucherAssignment{
				ID:        "assign-001",
				VoucherID: "voucher-001",
				UserID:    "user-001",
			},
			Voucher: domain.Voucher{
				ID:        "voucher-001",
				Value:     10,
				StartDate: now.AddDate(0, 0, -30),
				EndDate:   now.AddDate(0, 0, -1),
				Remain:    5,
				Status:    domain.VoucherStatusActive,
			},
		}, nil)

	body := validCheckoutBody()
	body.UserVoucherID = "assign-001"

	rec := postCheckout(t, router, body, "user-001")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	errBody := decodeErrorBody(t, rec)
	assert.Equal(t, "voucher", errBody.Field)
	assert.Equal(t, "Mã giảm giá đã hết hạn", errBody.Message)
}

func TestCheckoutEndpoint_Unauthenticated(t *testing.T) {
	router := setupCheckoutRouter(new(mockProductRepository), new(mockOrderRepository), new(mockCartRepository), new(mockVoucherRepository))

	rec := postCheckout(t, router, validCheckoutBody(), "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckoutEndpoint_StorageFailure(t *testing.T) {
	products := new(mockProductRepository)
	router := setupCheckoutRouter(products, new(mockOrderRepository), new(mockCartRepository), new(mockVoucherRepository))

	products.On("FindByIDs", mock.Anything, []string{"prod-001"}).
		Return(nil, errors.New("connection refused"))

	rec := postCheckout(t, router, validCheckoutBody(), "user-001")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	errBody := decodeErrorBody(t, rec)
	assert.Equal(t, "Lỗi server", errBody.Message)
	assert.Empty(t, errBody.Field)
	// Detail is exposed because the test error writer runs in development mode.
	assert.Contains(t, errBody.Detail, "connection refused")
}

func TestCheckoutEndpoint_MalformedBody(t *testing.T) {
	router := setupCheckoutRouter(new(mockProductRepository), new(mockOrderRepository), new(mockCartRepository), new(mockVoucherRepository))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-001")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
