package auth

import (
	"peopledesk/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	group := r.Group("/auth")
	{
		group.POST("/login", middleware.LoginRateLimit(), handler.Login)
		group.POST("/refresh", handler.Refresh)
		group.GET("/me", middleware.AuthMiddleware(), handler.Me)
	}
}
