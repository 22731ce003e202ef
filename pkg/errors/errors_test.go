package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldError(t *testing.T) {
	err := FieldError("EMPTY_CART", FieldCart, "Giỏ hàng trống")

	assert.Equal(t, "EMPTY_CART", err.Code)
	assert.Equal(t, "cart", err.Field)
	assert.Equal(t, "Giỏ hàng trống", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFieldOf(t *testing.T) {
	tagged := FieldError("VOUCHER_EXPIRED", FieldVoucher, "Mã giảm giá đã hết hạn")
	assert.Equal(t, "voucher", FieldOf(tagged))

	wrapped := fmt.Errorf("checkout: %w", tagged)
	assert.Equal(t, "voucher", FieldOf(wrapped))

	assert.Equal(t, "", FieldOf(errors.New("plain")))
	assert.Equal(t, "", FieldOf(InvalidInput("no field")))
}

func TestNotFound(t *testing.T) {
	err := NotFound("voucher", "v-1")

	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Message, "v-1")
}

func TestInternal_MessageIsGeneric(t *testing.T) {
	err := Internal(errors.New("pq: connection refused"))

	assert.Equal(t, "Lỗi server", err.Message)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", FieldError("X", FieldName, "m"), http.StatusBadRequest},
		{"wrapped app error", fmt.Errorf("svc: %w", NotFound("order", "o-1")), http.StatusNotFound},
		{"sentinel not found", ErrNotFound, http.StatusNotFound},
		{"sentinel conflict", ErrConflict, http.StatusConflict},
		{"sentinel invalid", ErrInvalidInput, http.StatusBadRequest},
		{"sentinel unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("row not found")
	err := &AppError{Code: "NOT_FOUND", Message: "m", Status: 404, Err: cause}

	assert.ErrorIs(t, err, cause)
}
