package company

import (
	"peopledesk/internal/middleware"
	"peopledesk/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	group := r.Group("/companies")
	group.Use(middleware.AuthMiddleware())
	{
		group.GET("/current", middleware.RBACAuthorize(rbacService, "company", "read"), handler.Current)
		group.GET("", middleware.RBACAuthorize(rbacService, "company", "manage"), handler.GetAll)
		group.GET("/:id", middleware.RBACAuthorize(rbacService, "company", "manage"), handler.GetById)
		group.POST("", middleware.RBACAuthorize(rbacService, "company", "manage"), handler.Create)
		group.PUT("/:id", middleware.RBACAuthorize(rbacService, "company", "manage"), handler.Update)
	}
}
