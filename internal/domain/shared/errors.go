package shared

import (
	"errors"
	"fmt"
)

// DomainError is a failure the API reports to the client. Code is stable and
// mapped to an HTTP status; Message is meant for the player.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError with the same code, so a sentinel below matches
// every error derived from it through Withf.
func (e *DomainError) Is(target error) bool {
	var de *DomainError
	if !errors.As(target, &de) {
		return false
	}
	return de.Code == e.Code
}

// Withf returns an error with the code of e and a formatted message
func (e *DomainError) Withf(format string, args ...any) *DomainError {
	return &DomainError{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientBalance = NewDomainError("INSUFFICIENT_BALANCE", "Insufficient balance available")
)

// Trade errors raised when a trade predicate fails
var (
	ErrProductInvalid   = NewDomainError("PRODUCT_INVALID", "Product content is not available")
	ErrTradeDisabled    = NewDomainError("TRADE_DISABLED", "This transaction type is disabled in the shop")
	ErrNotTradeable     = NewDomainError("NOT_TRADEABLE", "Product can not be traded in this direction")
	ErrNotEnoughSpace   = NewDomainError("NOT_ENOUGH_SPACE", "Not enough inventory space")
	ErrNotEnoughItems   = NewDomainError("NOT_ENOUGH_ITEMS", "Not enough items to sell")
	ErrLimitReached     = NewDomainError("LIMIT_REACHED", "Trade limit reached")
	ErrInvalidTradeType = NewDomainError("INVALID_TRADE_TYPE", "Unknown trade type")
)
