package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    "BAD_REQUEST",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Unavailable marks a transport-level failure against the remote backend.
// The cart engine treats it as the signal to degrade to local storage.
func Unavailable(message string, err error) *AppError {
	return &AppError{
		Code:    "BACKEND_UNAVAILABLE",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     err,
	}
}

// NotConnected is raised by chat invocations issued while the hub
// connection is not established.
func NotConnected() *AppError {
	return &AppError{
		Code:    "NOT_CONNECTED",
		Message: "not connected to chat server",
		Status:  http.StatusConflict,
	}
}

// CodeDifferentStore is the contract value for the single-store cart
// conflict, shared with the remote backend's error payload.
const CodeDifferentStore = "DIFFERENT_STORE"

// StoreConflictError rejects adding an item from a second store to a
// non-empty cart. It carries both store names for the confirmation prompt.
type StoreConflictError struct {
	ExistingStoreName string
	NewStoreName      string
	Message           string
}

func (e *StoreConflictError) Error() string {
	return fmt.Sprintf("%s: %s", CodeDifferentStore, e.Message)
}

func StoreConflict(existingStoreName, newStoreName string) *StoreConflictError {
	if existingStoreName == "" {
		existingStoreName = "Unknown Store"
	}
	if newStoreName == "" {
		newStoreName = "Unknown Store"
	}
	return &StoreConflictError{
		ExistingStoreName: existingStoreName,
		NewStoreName:      newStoreName,
		Message: fmt.Sprintf(
			"You can only order from one store at a time. Your cart contains items from %s. Would you like to clear your cart?",
			existingStoreName,
		),
	}
}

func Is(err error, code string) bool {
	if code == CodeDifferentStore {
		var conflict *StoreConflictError
		return errors.As(err, &conflict)
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// AsStoreConflict unwraps err into a StoreConflictError if it is one.
func AsStoreConflict(err error) (*StoreConflictError, bool) {
	var conflict *StoreConflictError
	if errors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}
