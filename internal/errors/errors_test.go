package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/pkg/contracts/domain"
)

func TestAppErrorWrapping(t *testing.T) {
	cause := errors.New("underlying failure")
	err := NewParsingError("failed to read records", cause)

	assert.Equal(t, ErrTypeParsing, TypeOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to read records")

	wrapped := fmt.Errorf("handling upload: %w", err)
	assert.Equal(t, ErrTypeParsing, TypeOf(wrapped))
	assert.Equal(t, ErrorType(""), TypeOf(errors.New("plain")))
}

func TestMissingColumnError(t *testing.T) {
	err := NewMissingColumnError([]domain.Field{domain.FieldOrderDate, domain.FieldSales})
	assert.Equal(t, ErrTypeMissingColumn, TypeOf(err))
	assert.Contains(t, err.Error(), "order_date")
	assert.Contains(t, err.Error(), "sales")
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
		code string
	}{
		{NewFormatDetectionError("no delimiter", nil), http.StatusUnprocessableEntity, "FORMAT_DETECTION"},
		{NewMissingColumnError([]domain.Field{domain.FieldSales}), http.StatusUnprocessableEntity, "MISSING_COLUMN"},
		{NewColumnValidationError(domain.FieldSales, "bad value"), http.StatusUnprocessableEntity, "COLUMN_VALIDATION"},
		{NewEmptyResultError(7), http.StatusUnprocessableEntity, "EMPTY_RESULT"},
		{NewInvalidFieldError(domain.FieldCustomerName), http.StatusBadRequest, "INVALID_FIELD"},
		{NewNoDatasetError(), http.StatusConflict, "NO_DATASET"},
		{NewStorageError("disk full", nil), http.StatusInternalServerError, "STORAGE"},
	}

	for _, tt := range tests {
		apiErr := ToAPIError(tt.err)
		assert.Equal(t, tt.want, apiErr.StatusCode, tt.code)
		assert.Equal(t, tt.code, apiErr.ErrorCode)
	}
}

func TestToAPIErrorPassthroughAndFallback(t *testing.T) {
	direct := New(http.StatusTeapot, "TEAPOT", "short and stout")
	assert.Same(t, direct, ToAPIError(direct))

	fallback := ToAPIError(errors.New("unexpected"))
	require.NotNil(t, fallback)
	assert.Equal(t, http.StatusInternalServerError, fallback.StatusCode)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", fallback.ErrorCode)
}

func TestErrValidationDetails(t *testing.T) {
	apiErr := ErrValidation("month", "must be between 1 and 12")
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)

	details, ok := apiErr.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "month", details.Field)
}
