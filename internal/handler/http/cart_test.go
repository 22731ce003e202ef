package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/summerbooks/backend/internal/domain"
	apperrors "github.com/summerbooks/backend/pkg/errors"
)

func savedCart() *domain.Cart {
	now := time.Now().UTC()
	c := &domain.Cart{
		ID:      "cart-001",
		OwnerID: "user-001",
		Lines: []domain.CartLine{
			{
				ProductID: "prod-001",
				Title:     "Nhà Giả Kim",
				Author:    "Paulo Coelho",
				UnitPrice: 100_000,
				Quantity:  1,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.Recalculate()
	return c
}

func TestCartEndpoint_GetWithUserHeader(t *testing.T) {
	carts := new(mockCartRepository)
	products := new(mockProductRepository)
	router := setupCartRouter(carts, products)

	carts.On("Get", mock.Anything, "user-001").Return(savedCart(), nil)
	products.On("FindByIDs", mock.Anything, []string{"prod-001"}).
		Return([]domain.Product{catalogProduct()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-User-ID", "user-001")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var cart domain.Cart
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cart))
	assert.Equal(t, int64(100_000), cart.TotalPrice)
}

func TestCartEndpoint_GuestSession(t *testing.T) {
	carts := new(mockCartRepository)
	router := setupCartRouter(carts, new(mockProductRepository))

	carts.On("Get", mock.Anything, "session-abc").
		Return(nil, apperrors.NotFound("cart", "session-abc"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-Session-ID", "session-abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var cart domain.Cart
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cart))
	assert.Equal(t, "session-abc", cart.OwnerID)
	assert.Empty(t, cart.Lines)
}

func TestCartEndpoint_NoIdentity(t *testing.T) {
	router := setupCartRouter(new(mockCartRepository), new(mockProductRepository))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCartEndpoint_AddItem(t *testing.T) {
	carts := new(mockCartRepository)
	products := new(mockProductRepository)
	router := setupCartRouter(carts, products)

	p := catalogProduct()
	products.On("GetByID", mock.Anything, "prod-001").Return(&p, nil)
	carts.On("Get", mock.Anything, "user-001").
		Return(nil, apperrors.NotFound("cart", "user-001"))
	carts.On("Save", mock.Anything, mock.AnythingOfType("*domain.Cart")).Return(nil)

	body, _ := json.Marshal(AddItemRequest{ProductID: "prod-001", Quantity: 2})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-001")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var cart domain.Cart
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cart))
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, int64(200_000), cart.TotalPrice)
}

func TestCartEndpoint_UpdateItemInsufficientStock(t *testing.T) {
	carts := new(mockCartRepository)
	products := new(mockProductRepository)
	router := setupCartRouter(carts, products)

	p := catalogProduct()
	p.CountInStock = 2
	carts.On("Get", mock.Anything, "user-001").Return(savedCart(), nil)
	products.On("GetByID", mock.Anything, "prod-001").Return(&p, nil)

	body, _ := json.Marshal(UpdateItemRequest{Quantity: 5})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/cart/items/prod-001", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-001")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	errBody := decodeErrorBody(t, rec)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)
	assert.Contains(t, errBody.Message, "Nhà Giả Kim")
}

func TestCartEndpoint_Clear(t *testing.T) {
	carts := new(mockCartRepository)
	router := setupCartRouter(carts, new(mockProductRepository))

	carts.On("Delete", mock.Anything, "user-001").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil)
	req.Header.Set("X-User-ID", "user-001")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	carts.AssertExpectations(t)
}

func TestCartEndpoint_RejectsXML(t *testing.T) {
	router := setupCartRouter(new(mockCartRepository), new(mockProductRepository))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader([]byte("<xml/>")))
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("X-User-ID", "user-001")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
