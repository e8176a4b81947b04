package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lostid-api/internal/models"
	appErrors "github.com/noah-isme/lostid-api/pkg/errors"
	"github.com/noah-isme/lostid-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// DefaultCookieName carries the session token when no cookie name is configured.
const DefaultCookieName = "jwt"

// TokenValidator verifies a session token and returns its claims.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT protects routes by requiring a valid session token, read from the cookie first and then
// from an Authorization: Bearer header.
func JWT(validator TokenValidator, cookieName string) gin.HandlerFunc {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return func(c *gin.Context) {
		token, err := extractToken(c, cookieName)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// OptionalJWT attaches claims when present but does not block.
func OptionalJWT(validator TokenValidator, cookieName string) gin.HandlerFunc {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return func(c *gin.Context) {
		token, err := extractToken(c, cookieName)
		if err == nil {
			if claims, err := validator.ValidateToken(token); err == nil {
				c.Set(ContextUserKey, claims)
			}
		}
		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) (string, error) {
	if cookie, err := c.Cookie(cookieName); err == nil && strings.TrimSpace(cookie) != "" {
		return cookie, nil
	}

	header := c.GetHeader("Authorization")
	if header == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "access denied, no token provided")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

// ClaimsFrom returns the verified claims stored by JWT, or nil.
func ClaimsFrom(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*models.JWTClaims)
	return claims
}
