// internal/interfaces/http/middleware/session.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/identity"
)

// CartSession guarantees every visitor carries a cart session cookie.
// The cookie is issued on first contact and lives for the configured TTL
// so anonymous carts survive browser restarts.
func CartSession(cfg *config.Config) gin.HandlerFunc {
	maxAge := int(cfg.Session.TTL.Seconds())

	return func(c *gin.Context) {
		token, err := c.Cookie(cfg.Session.CookieName)
		if err != nil || token == "" {
			token = uuid.New().String()
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     cfg.Session.CookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   maxAge,
				HttpOnly: true,
				Secure:   cfg.Session.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		c.Set("session_token", token)
		c.Next()
	}
}

// GetSessionToken extracts the cart session token from gin context
func GetSessionToken(c *gin.Context) (string, bool) {
	token, exists := c.Get("session_token")
	if !exists {
		return "", false
	}
	return token.(string), true
}

// GetIdentity resolves the caller identity for cart and order operations.
// An authenticated user wins over the anonymous session cookie.
func GetIdentity(c *gin.Context) identity.Identity {
	if userID, ok := GetUserIDFromContext(c); ok {
		return identity.FromUser(userID)
	}
	if token, ok := GetSessionToken(c); ok {
		return identity.FromSession(token)
	}
	return identity.Identity{}
}
