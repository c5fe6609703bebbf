// internal/pkg/auth/jwt_test.go
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/marketplace-backend/internal/config"
)

func newTestManager() *JWTManager {
	return NewJWTManager(&config.Config{
		App: config.AppConfig{Name: "marketplace-test"},
		JWT: config.JWTConfig{
			Secret:             "test-secret",
			AccessTokenExpiry:  time.Minute,
			RefreshTokenExpiry: time.Hour,
		},
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	mgr := newTestManager()

	token, err := mgr.GenerateAccessToken(42, "maria@example.com", true)
	require.NoError(t, err)

	claims, err := mgr.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "maria@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
}

func TestRefreshTokenNeverCarriesAdmin(t *testing.T) {
	mgr := newTestManager()

	token, err := mgr.GenerateRefreshToken(42, "maria@example.com")
	require.NoError(t, err)

	claims, err := mgr.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	mgr := newTestManager()

	refresh, err := mgr.GenerateRefreshToken(42, "maria@example.com")
	require.NoError(t, err)
	_, err = mgr.ValidateAccessToken(refresh)
	assert.Error(t, err)

	access, err := mgr.GenerateAccessToken(42, "maria@example.com", false)
	require.NoError(t, err)
	_, err = mgr.ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	mgr := newTestManager()
	other := NewJWTManager(&config.Config{
		App: config.AppConfig{Name: "marketplace-test"},
		JWT: config.JWTConfig{Secret: "another-secret", AccessTokenExpiry: time.Minute},
	})

	token, err := other.GenerateAccessToken(42, "maria@example.com", false)
	require.NoError(t, err)

	_, err = mgr.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc.def.ghi", ExtractTokenFromHeader("Bearer abc.def.ghi"))
	assert.Empty(t, ExtractTokenFromHeader("abc.def.ghi"))
	assert.Empty(t, ExtractTokenFromHeader(""))
}
