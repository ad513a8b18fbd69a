// Package apperrors defines the error taxonomy shared by services and
// handlers. Services return these; the HTTP layer maps Kind to a status code
// in one place.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuthorization
	KindNotFound
	KindExternalService
	KindWebhookSignature
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Authorization(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func ExternalService(msg string, err error) *Error {
	return &Error{Kind: KindExternalService, Message: msg, Err: err}
}

func WebhookSignature(msg string) *Error {
	return &Error{Kind: KindWebhookSignature, Message: msg}
}

// IsKind reports whether err is an *Error of the given kind anywhere in its
// chain.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// HTTPStatus maps an error to the status code the API contract promises.
// Unrecognized errors map to 500.
func HTTPStatus(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindExternalService:
		return http.StatusBadGateway
	case KindWebhookSignature:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
