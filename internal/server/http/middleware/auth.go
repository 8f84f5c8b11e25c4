package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
)

const (
	// AdminIDContextKey is a gin context key for authenticated admin identifier.
	AdminIDContextKey = "adminID"
	adminCookieName   = "storefront_admin"
	adminTokenHeader  = "X-Admin-Token"
)

// TokenParser resolves admin tokens to admin identifiers.
type TokenParser interface {
	ParseToken(token string) (int64, error)
}

// AdminRequired ensures the request carries a valid admin token.
func AdminRequired(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		adminID, err := parser.ParseToken(token)
		if err != nil {
			if errors.Is(err, pkgAuth.ErrInvalidToken) {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Set(AdminIDContextKey, adminID)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if token := strings.TrimSpace(c.GetHeader(adminTokenHeader)); token != "" {
		return token
	}

	if cookie, err := c.Cookie(adminCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie writes admin token cookie to response.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetCookie(adminCookieName, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}
