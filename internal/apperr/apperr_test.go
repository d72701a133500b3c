package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"ai-tools-backend/internal/apperr"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.KindValidation:          http.StatusBadRequest,
		apperr.KindPayloadTooLarge:     http.StatusRequestEntityTooLarge,
		apperr.KindNotFound:            http.StatusNotFound,
		apperr.KindEntitlementDenied:   http.StatusForbidden,
		apperr.KindStorageUnavailable:  http.StatusInternalServerError,
		apperr.KindProviderUnavailable: http.StatusInternalServerError,
		apperr.KindProviderRejected:    http.StatusInternalServerError,
		apperr.KindInternal:            http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, apperr.HTTPStatus(apperr.New(kind, "x")), string(kind))
	}
	assert.Equal(t, http.StatusInternalServerError, apperr.HTTPStatus(errors.New("plain")))
}

func TestKindOf_Wrapped(t *testing.T) {
	base := apperr.Wrap(apperr.KindProviderRejected, "clipdrop rejected request", assert.AnError)
	wrapped := fmt.Errorf("attempt failed: %w", base)

	assert.Equal(t, apperr.KindProviderRejected, apperr.KindOf(wrapped))
	assert.True(t, apperr.IsProviderFailure(wrapped))
	assert.ErrorIs(t, wrapped, assert.AnError)
	assert.False(t, apperr.IsProviderFailure(apperr.New(apperr.KindStorageUnavailable, "x")))
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "prompt is required", apperr.PublicMessage(apperr.Validation("prompt is required")))
	assert.Equal(t, "failed to store result",
		apperr.PublicMessage(apperr.Wrap(apperr.KindStorageUnavailable, "upload to bucket x failed", assert.AnError)))
	assert.Equal(t, "internal server error", apperr.PublicMessage(errors.New("secret detail")))
}
