// internal/pkg/apperr/apperr_test.go
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("field is required"), http.StatusBadRequest},
		{"not found", NotFound("store"), http.StatusNotFound},
		{"permission denied", PermissionDenied("no access"), http.StatusForbidden},
		{"business rule", BusinessRule("store is closed"), http.StatusConflict},
		{"internal", Internal("boom", errors.New("db down")), http.StatusInternalServerError},
		{"plain error", errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestFromUnwrapsChain(t *testing.T) {
	inner := NotFound("product")
	wrapped := fmt.Errorf("loading cart: %w", inner)

	appErr, ok := From(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, appErr.Kind)
	assert.Equal(t, "product not found", appErr.Message)

	_, ok = From(errors.New("plain"))
	assert.False(t, ok)
}

func TestErrorJoinsViolations(t *testing.T) {
	err := Validation("name is required", "total must be positive")
	assert.Equal(t, "validation failed: name is required; total must be positive", err.Error())
}

func TestInternalUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("failed to load store", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load store: connection refused", err.Error())
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "cart item not found", NotFound("cart item").Error())
}
