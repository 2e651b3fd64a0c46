package account

import (
	"peopledesk/internal/middleware"
	"peopledesk/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb *redis.Client,
) {
	admin := r.Group("/admin/accounts")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.RBACAuthorize(rbacService, "account", "manage"))
	{
		admin.GET("", handler.GetAll)
		admin.GET("/:id", handler.GetById)
		admin.POST("/invite-employee", middleware.Idempotency(rdb), handler.Invite)
		admin.POST("/:id/link", handler.Link)
		admin.POST("/:id/unlink", handler.Unlink)
		admin.PATCH("/:id/status", handler.UpdateStatus)
		admin.POST("/:id/password", handler.ResetPassword)
		admin.PATCH("/:id/password", handler.SetPassword)
	}
}
