package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeProductInvalid, http.StatusUnprocessableEntity},
		{ErrCodeTradeDisabled, http.StatusForbidden},
		{ErrCodeNotTradeable, http.StatusUnprocessableEntity},
		{ErrCodeNotEnoughSpace, http.StatusConflict},
		{ErrCodeNotEnoughItems, http.StatusConflict},
		{ErrCodeInsufficientBalance, http.StatusPaymentRequired},
		{ErrCodeLimitReached, http.StatusConflict},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"INVALID_INPUT", ErrCodeInvalidInput},
		{"INVALID_SHOP_ID", ErrCodeInvalidInput},
		{"INVALID_TRADE_TYPE", ErrCodeInvalidTradeType},
		{"PRODUCT_INVALID", ErrCodeProductInvalid},
		{"LIMIT_REACHED", ErrCodeLimitReached},
		{ErrCodeNotFound, ErrCodeNotFound},
		{"CUSTOM_ERROR", "CUSTOM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestDomainCodesHaveStatus(t *testing.T) {
	for domainCode, apiCode := range DomainErrorCodeMapping {
		_, ok := ErrorCodeHTTPStatus[apiCode]
		assert.True(t, ok, "%s maps to %s which has no HTTP status", domainCode, apiCode)
	}
}

func TestResponses(t *testing.T) {
	t.Run("list response counts items", func(t *testing.T) {
		resp := NewListResponse([]string{"a", "b"})
		assert.True(t, resp.Success)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, 2, resp.Meta.Total)
	})

	t.Run("nil list encodes as empty array", func(t *testing.T) {
		raw, err := json.Marshal(NewListResponse[string](nil))
		require.NoError(t, err)
		assert.JSONEq(t, `{"success":true,"data":[],"meta":{"total":0}}`, string(raw))
	})

	t.Run("error response carries request id", func(t *testing.T) {
		resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "missing", "req-1")
		assert.False(t, resp.Success)
		assert.Equal(t, "req-1", resp.Error.RequestID)

		raw, err := json.Marshal(NewErrorResponse(ErrCodeNotFound, "missing"))
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "request_id")
	})

	t.Run("validation response lists fields", func(t *testing.T) {
		resp := NewValidationErrorResponse("bad", "", []ValidationDetail{{Field: "units", Message: "required"}})
		assert.Equal(t, ErrCodeValidation, resp.Error.Code)
		assert.Len(t, resp.Error.Details, 1)
	})
}
