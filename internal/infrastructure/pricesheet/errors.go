package pricesheet

import (
	"errors"
	"fmt"
)

// Row error codes
const (
	ErrCodeMalformedRow  = "ERR_SHEET_MALFORMED_ROW"
	ErrCodeRequiredField = "ERR_SHEET_REQUIRED_FIELD"
	ErrCodeInvalidValue  = "ERR_SHEET_INVALID_VALUE"
	ErrCodeDuplicate     = "ERR_SHEET_DUPLICATE"
	ErrCodeNotApplied    = "ERR_SHEET_NOT_APPLIED"
)

var (
	// ErrEmptyFile is returned when the sheet is empty
	ErrEmptyFile = errors.New("price sheet is empty")

	// ErrInvalidEncoding is returned when the sheet is not UTF-8
	ErrInvalidEncoding = errors.New("price sheet is not valid UTF-8")

	// ErrMissingHeader is returned when the sheet has no header row
	ErrMissingHeader = errors.New("price sheet missing header row")

	// ErrMissingColumns is returned when required columns are absent
	ErrMissingColumns = errors.New("price sheet missing required columns")
)

// RowError is a problem with one row of a sheet
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// ErrorCollection gathers row errors up to a limit while counting all of them
type ErrorCollection struct {
	errors     []RowError
	maxErrors  int
	totalCount int
}

// NewErrorCollection creates a collection keeping at most maxErrors errors
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{maxErrors: maxErrors}
}

// Add adds an error to the collection
func (ec *ErrorCollection) Add(err RowError) {
	ec.totalCount++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// AddRequired records a blank required field
func (ec *ErrorCollection) AddRequired(row int, column string) {
	ec.Add(RowError{Row: row, Column: column, Code: ErrCodeRequiredField,
		Message: fmt.Sprintf("field '%s' is required", column)})
}

// AddInvalid records a field whose value cannot be used
func (ec *ErrorCollection) AddInvalid(row int, column, message, value string) {
	ec.Add(RowError{Row: row, Column: column, Code: ErrCodeInvalidValue, Message: message, Value: value})
}

// Errors returns the kept errors
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errors
}

// TotalCount returns the number of errors including the ones not kept
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// HasErrors reports whether any error was added
func (ec *ErrorCollection) HasErrors() bool {
	return ec.totalCount > 0
}

// IsTruncated reports whether errors were dropped because of the limit
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.totalCount > ec.maxErrors
}
