package payroll

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
	group := r.Group("/payroll/cycles")
	group.Use(middleware.AuthMiddleware())
	group.Use(middleware.RBACAuthorize(rbacService, "payroll", "manage"))
	{
		group.GET("", handler.GetCycles)
		group.GET("/:id", handler.GetCycle)
		group.POST("", middleware.Idempotency(rdb), handler.CreateCycle)
		group.PATCH("/:id/status", handler.UpdateCycleStatus)
		group.POST("/:id/payslips", middleware.Idempotency(rdb), handler.RequestPayslips)

		group.GET("/:id/documents", handler.GetDocuments)
		group.POST("/:id/documents", handler.UploadDocument)
		group.DELETE("/:id/documents/:docId", handler.DeleteDocument)
		group.GET("/:id/documents/:docId/url", handler.DocumentURL)
	}
}
