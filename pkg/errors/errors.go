package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnknownReference = errors.New("unknown catalog reference")
	ErrOutOfBounds      = errors.New("value out of bounds")
	ErrRequiredOption   = errors.New("required option missing")
	ErrShopConflict     = errors.New("coffee shop conflict")
	ErrPersistence      = errors.New("persistence failure")
	ErrServiceUnavail   = errors.New("service unavailable")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// UnknownReference creates a 422 error for a selection referencing a
// size, ingredient, group, or choice id that does not exist in the catalog.
// Unknown ids reject the whole selection; they are never silently dropped.
func UnknownReference(kind, id string) *AppError {
	return &AppError{
		Code:    "UNKNOWN_REFERENCE",
		Message: fmt.Sprintf("%s %q does not exist in the item catalog", kind, id),
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrUnknownReference,
	}
}

// OutOfBounds creates a 422 error for an amount or quantity outside its
// defined [min,max] range, identifying the offending field.
func OutOfBounds(field string, value, min, max int64) *AppError {
	return &AppError{
		Code:    "OUT_OF_BOUNDS",
		Message: fmt.Sprintf("%s: value %d is outside the allowed range [%d,%d]", field, value, min, max),
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrOutOfBounds,
	}
}

// RequiredOption creates a 422 error for a required option group with no selection.
func RequiredOption(groupID, groupName string) *AppError {
	return &AppError{
		Code:    "REQUIRED_OPTION_MISSING",
		Message: fmt.Sprintf("option group %q (%s) requires at least one choice", groupName, groupID),
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrRequiredOption,
	}
}

// ShopConflict creates a 409 error for an add that would mix coffee shops in
// one cart. The caller decides how to resolve it (replace the cart or cancel).
func ShopConflict(cartShopID, lineShopID string) *AppError {
	return &AppError{
		Code:    "COFFEE_SHOP_CONFLICT",
		Message: fmt.Sprintf("cart holds items from shop %s; cannot add items from shop %s", cartShopID, lineShopID),
		Status:  http.StatusConflict,
		Err:     ErrShopConflict,
	}
}

// Persistence creates a non-fatal storage error. The cart keeps operating
// in memory; this surfaces as a warning, not a request failure.
func Persistence(op string, err error) *AppError {
	return &AppError{
		Code:    "PERSISTENCE_ERROR",
		Message: fmt.Sprintf("cart storage %s failed", op),
		Status:  http.StatusInternalServerError,
		Err:     fmt.Errorf("%w: %w", ErrPersistence, err),
	}
}

// ServiceUnavailable creates a 503 error.
func ServiceUnavailable(message string) *AppError {
	return &AppError{
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     ErrServiceUnavail,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnknownReference), errors.Is(err, ErrOutOfBounds), errors.Is(err, ErrRequiredOption):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrShopConflict):
		return http.StatusConflict
	case errors.Is(err, ErrServiceUnavail):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
