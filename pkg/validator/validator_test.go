package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createBookRequest struct {
	Title string `validate:"required,min=1,max=200"`
	Price int64  `validate:"required,min=1"`
	Stock int    `validate:"min=0"`
}

func TestValidate_Passes(t *testing.T) {
	req := createBookRequest{Title: "Nhà Giả Kim", Price: 69000, Stock: 80}

	assert.NoError(t, Validate(req))
}

func TestValidate_MissingRequiredField(t *testing.T) {
	req := createBookRequest{Price: 69000}

	err := Validate(req)

	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "is required", ve.Fields()["Title"])
}

func TestValidate_MultipleFailures(t *testing.T) {
	req := createBookRequest{Stock: -5}

	err := Validate(req)

	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	fields := ve.Fields()
	assert.Len(t, fields, 3)
	assert.Contains(t, fields, "Title")
	assert.Contains(t, fields, "Price")
	assert.Equal(t, "must be at least 0", fields["Stock"])
}

type updateStatusRequest struct {
	Status string `validate:"required,oneof=pending shipping delivered cancelled"`
}

func TestValidate_OneOf(t *testing.T) {
	err := Validate(updateStatusRequest{Status: "teleported"})

	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "must be one of: pending shipping delivered cancelled", ve.Fields()["Status"])
}

func TestValidationError_Message(t *testing.T) {
	err := Validate(createBookRequest{Price: 69000, Stock: 1})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'Title' is required")
}
