package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/terreiro-erp-api/internal/models"
	appErrors "github.com/noah-isme/terreiro-erp-api/pkg/errors"
	"github.com/noah-isme/terreiro-erp-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT requires a valid access token. The Authorization header wins; without
// it the session cookie of the admin application is accepted.
func JWT(validator tokenValidator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerOrCookie(c, cookieName)
		if err == nil {
			var claims *models.JWTClaims
			if claims, err = validator.ValidateToken(token); err == nil {
				c.Set(ContextUserKey, claims)
				c.Next()
				return
			}
		}
		response.Error(c, err)
		c.Abort()
	}
}

func bearerOrCookie(c *gin.Context, cookieName string) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
		}
		return token, nil
	}
	if cookieName == "" {
		return "", appErrors.ErrUnauthorized
	}
	if value, err := c.Cookie(cookieName); err == nil && value != "" {
		return value, nil
	}
	return "", appErrors.Clone(appErrors.ErrUnauthorized, "missing access token")
}
