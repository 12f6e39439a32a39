package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/terreiro-erp-api/internal/models"
	appErrors "github.com/noah-isme/terreiro-erp-api/pkg/errors"
	"github.com/noah-isme/terreiro-erp-api/pkg/response"
)

// Role groups used by the router. Standard users only read; Advanced users
// also run the ledgers; alert triggers are reserved to superusers.
var (
	ReadRoles  = []models.UserRole{models.RoleSuperuser, models.RoleAdvanced, models.RoleStandard}
	WriteRoles = []models.UserRole{models.RoleSuperuser, models.RoleAdvanced}
	AdminRoles = []models.UserRole{models.RoleSuperuser}
)

// Claims returns the authenticated user placed on the context by JWT.
func Claims(c *gin.Context) (*models.JWTClaims, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok && claims != nil
}

// RBAC lets the request through only when the user holds one of the roles.
func RBAC(allowed ...models.UserRole) gin.HandlerFunc {
	permitted := make(map[models.UserRole]bool, len(allowed))
	for _, role := range allowed {
		permitted[role] = true
	}

	return func(c *gin.Context) {
		claims, ok := Claims(c)
		switch {
		case !ok:
			response.Error(c, appErrors.ErrUnauthorized)
		case !permitted[claims.Role]:
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "role "+string(claims.Role)+" may not perform this action"))
		default:
			c.Next()
			return
		}
		c.Abort()
	}
}
