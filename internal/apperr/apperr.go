package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation          Kind = "VALIDATION"
	KindPayloadTooLarge     Kind = "PAYLOAD_TOO_LARGE"
	KindProviderUnavailable Kind = "PROVIDER_UNAVAILABLE"
	KindProviderRejected    Kind = "PROVIDER_REJECTED"
	KindStorageUnavailable  Kind = "STORAGE_UNAVAILABLE"
	KindEffectRejected      Kind = "EFFECT_REJECTED"
	KindNotFound            Kind = "NOT_FOUND"
	KindEntitlementDenied   Kind = "ENTITLEMENT_DENIED"
	KindInternal            Kind = "INTERNAL"
)

// Error carries a Kind so handlers can pick a status code without string matching.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func EntitlementDenied(message string) *Error {
	return New(KindEntitlementDenied, message)
}

// KindOf returns KindInternal for errors that were never classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsProviderFailure reports whether err should advance a fallback chain.
func IsProviderFailure(err error) bool {
	k := KindOf(err)
	return k == KindProviderUnavailable || k == KindProviderRejected
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindNotFound:
		return http.StatusNotFound
	case KindEntitlementDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage hides internal detail for kinds the caller cannot act on.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal server error"
	}
	switch e.Kind {
	case KindValidation, KindPayloadTooLarge, KindNotFound, KindEntitlementDenied:
		return e.Message
	case KindStorageUnavailable:
		return "failed to store result"
	case KindProviderUnavailable, KindProviderRejected:
		return "ai provider failed"
	default:
		return "internal server error"
	}
}
