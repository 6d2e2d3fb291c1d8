// Package apperror defines the error kinds the service surfaces outward and
// their HTTP mapping. Handlers never inspect storage errors directly;
// services wrap them here first.
package apperror

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"gorm.io/gorm"
)

type Error struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Message: msg}
}

func BadRequest(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: msg}
}

// InvalidRole flags a role outside the recognized enum for an operation.
func InvalidRole(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// Internal is the generic error kind; status defaults to 500.
func Internal(msg string) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: msg}
}

// FromStorage converts a storage error into the outward taxonomy: a missing
// row becomes NotFound with the given message, anything else a generic 500.
func FromStorage(err error, notFoundMsg string) *Error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(notFoundMsg)
	}
	return Internal("Something went wrong")
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusNotFound
}

// IsForbidden reports whether err is a Forbidden error.
func IsForbidden(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusForbidden
}

// IsBadRequest reports whether err is a BadRequest error.
func IsBadRequest(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusBadRequest
}

// StatusOf returns the HTTP status carried by err, defaulting to 500.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

// Write renders err as a JSON {"message": ...} body with its status code.
func Write(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
		msg = "Something went wrong"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

// WriteJSON renders a success payload.
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}
