package document

import (
	"peopledesk/internal/middleware"
	"peopledesk/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	group := r.Group("/documents")
	group.Use(middleware.AuthMiddleware())
	{
		read := group.Group("")
		read.Use(middleware.RBACAuthorize(rbacService, "document", "read"))
		{
			read.GET("", handler.GetByEmployee)
			read.GET("/:id/url", handler.DownloadURL)
		}

		manage := group.Group("")
		manage.Use(middleware.RBACAuthorize(rbacService, "document", "manage"))
		{
			manage.POST("", handler.Upload)
			manage.DELETE("/:id", handler.Delete)
		}
	}
}
