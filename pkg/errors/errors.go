package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNoToken            = errors.New("no session token")
	ErrTokenExpired       = errors.New("session token has expired")
	ErrUnauthorized       = errors.New("unauthorized access")

	ErrProductNotFound = errors.New("product not found")
	ErrUnknownSKU      = errors.New("code does not match any SKU")
	ErrWrongUnit       = errors.New("unit does not match the product's canonical unit")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrFractionalUnits = errors.New("quantity must be an integer for unit 'unidad'")

	ErrAlbaranNotFound  = errors.New("albaran not found")
	ErrAlbaranCompleted = errors.New("albaran is already completed")
	ErrUnresolvedLine   = errors.New("line could not be resolved to a SKU")
	ErrNoLines          = errors.New("no lines to submit")

	ErrBusy             = errors.New("a submission is already in progress")
	ErrScaleUnavailable = errors.New("scale feed is not connected")
	ErrInvalidUpload    = errors.New("uploaded file is not a readable document")
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
