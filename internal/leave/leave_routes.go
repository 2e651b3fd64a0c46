package leave

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
	requests := r.Group("/leave-requests")
	requests.Use(middleware.AuthMiddleware())
	{
		requests.GET("", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetAll)
		requests.GET("/:id", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetById)
		requests.POST("", middleware.RBACAuthorize(rbacService, "leave", "write"), middleware.Idempotency(rdb), handler.Create)
		requests.PUT("/:id", middleware.RBACAuthorize(rbacService, "leave", "write"), handler.Update)
		requests.POST("/:id/submit", middleware.RBACAuthorize(rbacService, "leave", "write"), handler.Submit)
		requests.PATCH("/:id", middleware.RBACAuthorize(rbacService, "leave", "approve"), middleware.Idempotency(rdb), handler.Decide)
	}

	policies := r.Group("/leave-policies")
	policies.Use(middleware.AuthMiddleware())
	policies.Use(middleware.RBACAuthorize(rbacService, "policy", "manage"))
	{
		policies.GET("", handler.GetPolicies)
		policies.POST("", handler.CreatePolicy)
		policies.PUT("/:id", handler.UpdatePolicy)
	}

	balances := r.Group("/employees/:id/leave-balance")
	balances.Use(middleware.AuthMiddleware())
	balances.Use(middleware.RBACAuthorize(rbacService, "balance", "read"))
	{
		balances.GET("", handler.BalanceSummary)
	}
}
