package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{Authorization("nope"), http.StatusForbidden},
		{NotFound("missing"), http.StatusNotFound},
		{ExternalService("upstream", errors.New("refused")), http.StatusBadGateway},
		{WebhookSignature("bad hmac"), http.StatusUnauthorized},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestHTTPStatusUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NotFound("missing"))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(wrapped))
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(wrapped, KindValidation))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := ExternalService("store lookup failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "store lookup failed")
	assert.Contains(t, err.Error(), "connection refused")
}
