package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/summerbooks/backend/pkg/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusOK, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestErrorWriter_FieldTaggedError(t *testing.T) {
	ew := NewErrorWriter(testLogger(), false)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)

	ew.Write(rec, req, apperrors.FieldError("PHONE_INVALID", apperrors.FieldPhone, "Số điện thoại phải có đúng 10 chữ số"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "phone", body.Field)
	assert.Equal(t, "Số điện thoại phải có đúng 10 chữ số", body.Message)
	assert.Equal(t, "PHONE_INVALID", body.Code)
	assert.Empty(t, body.Detail)
}

func TestErrorWriter_InternalError_Production(t *testing.T) {
	ew := NewErrorWriter(testLogger(), false)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)

	ew.Write(rec, req, errors.New("pg: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Lỗi server", body.Message)
	assert.Empty(t, body.Detail)
	assert.Empty(t, body.Field)
}

func TestErrorWriter_InternalError_Development(t *testing.T) {
	ew := NewErrorWriter(testLogger(), true)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)

	ew.Write(rec, req, errors.New("pg: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Lỗi server", body.Message)
	assert.Equal(t, "pg: connection refused", body.Detail)
}

func TestErrorWriter_WrappedAppError(t *testing.T) {
	ew := NewErrorWriter(testLogger(), false)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/o-1", nil)

	wrapped := apperrors.Wrap(apperrors.NotFound("order", "o-1"), "get order")
	ew.Write(rec, req, wrapped)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "NOT_FOUND", body.Code)
}
