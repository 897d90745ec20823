package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeInvalidState  = "ERR_INVALID_STATE"
)

// Trade error codes
const (
	// ErrCodeProductInvalid is used when the product content no longer exists
	ErrCodeProductInvalid = "ERR_PRODUCT_INVALID"
	// ErrCodeTradeDisabled is used when the shop switched the direction off
	ErrCodeTradeDisabled = "ERR_TRADE_DISABLED"
	// ErrCodeNotTradeable is used when the product price disables the direction
	ErrCodeNotTradeable        = "ERR_NOT_TRADEABLE"
	ErrCodeNotEnoughSpace      = "ERR_NOT_ENOUGH_SPACE"
	ErrCodeNotEnoughItems      = "ERR_NOT_ENOUGH_ITEMS"
	ErrCodeInsufficientBalance = "ERR_INSUFFICIENT_BALANCE"
	ErrCodeLimitReached        = "ERR_LIMIT_REACHED"
	ErrCodeInvalidTradeType    = "ERR_INVALID_TRADE_TYPE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeInvalidState:  http.StatusUnprocessableEntity,

	ErrCodeProductInvalid:      http.StatusUnprocessableEntity,
	ErrCodeTradeDisabled:       http.StatusForbidden,
	ErrCodeNotTradeable:        http.StatusUnprocessableEntity,
	ErrCodeNotEnoughSpace:      http.StatusConflict,
	ErrCodeNotEnoughItems:      http.StatusConflict,
	ErrCodeInsufficientBalance: http.StatusPaymentRequired,
	ErrCodeLimitReached:        http.StatusConflict,
	ErrCodeInvalidTradeType:    http.StatusBadRequest,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"INVALID_SHOP_ID":      ErrCodeInvalidInput,
	"INVALID_PRODUCT_ID":   ErrCodeInvalidInput,
	"INVALID_TRADE_TYPE":   ErrCodeInvalidTradeType,
	"INSUFFICIENT_BALANCE": ErrCodeInsufficientBalance,
	"PRODUCT_INVALID":      ErrCodeProductInvalid,
	"TRADE_DISABLED":       ErrCodeTradeDisabled,
	"NOT_TRADEABLE":        ErrCodeNotTradeable,
	"NOT_ENOUGH_SPACE":     ErrCodeNotEnoughSpace,
	"NOT_ENOUGH_ITEMS":     ErrCodeNotEnoughItems,
	"LIMIT_REACHED":        ErrCodeLimitReached,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format or unknown pass through unchanged.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
