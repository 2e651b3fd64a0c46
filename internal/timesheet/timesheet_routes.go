package timesheet

import (
	"peopledesk/internal/middleware"
	"peopledesk/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	group := r.Group("/timesheets")
	group.Use(middleware.AuthMiddleware())
	{
		group.GET("", middleware.RBACAuthorize(rbacService, "timesheet", "read"), handler.GetAll)
		group.GET("/:id", middleware.RBACAuthorize(rbacService, "timesheet", "read"), handler.GetById)
		group.POST("", middleware.RBACAuthorize(rbacService, "timesheet", "write"), handler.Create)
		group.PUT("/:id", middleware.RBACAuthorize(rbacService, "timesheet", "write"), handler.Update)
		group.POST("/:id/submit", middleware.RBACAuthorize(rbacService, "timesheet", "write"), handler.Submit)
		group.PATCH("/:id", middleware.RBACAuthorize(rbacService, "timesheet", "approve"), handler.Decide)
	}
}
