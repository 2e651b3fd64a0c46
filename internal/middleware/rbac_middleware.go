package middleware

import (
	"net/http"

	"peopledesk/internal/rbac"
	"peopledesk/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// RBACService is a local interface; anything with Enforce fits.
type RBACService interface {
	Enforce(req rbac.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing auth context", nil)
			c.Abort()
			return
		}

		allowed, err := service.Enforce(rbac.EnforceRequest{
			Role:     role,
			Resource: resource,
			Action:   action,
		})
		if err != nil {
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Authorization check failed", nil)
			c.Abort()
			return
		}

		if !allowed {
			response.Error(c, http.StatusForbidden, "FORBIDDEN",
				"You do not have permission to access this resource",
				map[string]string{"required": resource + ":" + action},
			)
			c.Abort()
			return
		}
		c.Next()
	}
}
