package employee

import (
	"peopledesk/internal/middleware"
	"peopledesk/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	group := r.Group("/employees")
	group.Use(middleware.AuthMiddleware())
	{
		group.GET("/options", handler.Options)
		group.GET("", middleware.RBACAuthorize(rbacService, "employee", "manage"), handler.GetAll)
		group.GET("/:id", middleware.RBACAuthorize(rbacService, "employee", "manage"), handler.GetById)
		group.POST("", middleware.RBACAuthorize(rbacService, "employee", "manage"), handler.Create)
		group.PUT("/:id", middleware.RBACAuthorize(rbacService, "employee", "manage"), handler.Update)
		group.DELETE("/:id", middleware.RBACAuthorize(rbacService, "employee", "manage"), handler.Delete)
	}
}
