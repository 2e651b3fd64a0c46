package app

import (
	"database/sql"

	"peopledesk/internal/account"
	"peopledesk/internal/auth"
	"peopledesk/internal/company"
	"peopledesk/internal/document"
	"peopledesk/internal/employee"
	"peopledesk/internal/identity"
	"peopledesk/internal/leave"
	"peopledesk/internal/messaging/kafka"
	"peopledesk/internal/middleware"
	"peopledesk/internal/payroll"
	"peopledesk/internal/rbac"
	"peopledesk/internal/shared/counter"
	"peopledesk/internal/storage"
	"peopledesk/internal/timesheet"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	store storage.Gateway,
	provider identity.Provider,
	cfg Config,
) error {
	// --- Repositories ---
	accountRepo := account.NewRepository(gormDB)
	companyRepo := company.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	documentRepo := document.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	payrollRepo := payroll.NewRepository(gormDB)
	timesheetRepo := timesheet.NewRepository(gormDB)

	// --- RBAC Core ---
	rbacService, err := rbac.NewService()
	if err != nil {
		return err
	}

	// --- Services ---
	accountService := account.NewServiceWithOutbox(db, accountRepo, provider, outboxRepo, account.LockoutPolicy{
		MaxFailedAttempts: cfg.MaxFailedAttempts,
		LockoutDuration:   cfg.LockoutDuration,
	})
	authService := auth.NewService(accountRepo, accountService, auth.TokenConfig{
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	})
	companyService := company.NewService(companyRepo)
	documentService := document.NewService(documentRepo, store)
	employeeService := employee.NewService(db, employeeRepo, counterRepo, rdb, outboxRepo)
	leaveService := leave.NewServiceWithOutbox(db, leaveRepo, outboxRepo)
	payrollService := payroll.NewService(db, payrollRepo, store, rdb, outboxRepo)
	timesheetService := timesheet.NewService(timesheetRepo)

	// --- Handlers ---
	accountHandler := account.NewHandler(accountService)
	authHandler := auth.NewHandler(authService)
	companyHandler := company.NewHandler(companyService)
	documentHandler := document.NewHandler(documentService)
	employeeHandler := employee.NewHandler(employeeService)
	leaveHandler := leave.NewHandler(leaveService)
	payrollHandler := payroll.NewHandler(payrollService)
	timesheetHandler := timesheet.NewHandler(timesheetService)

	// --- Routes Registration ---
	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(zap.L()))

	api := router.Group("/api/v1")
	{
		account.RegisterRoutes(api, accountHandler, rbacService, rdb)
		auth.RegisterRoutes(api, authHandler)
		company.RegisterRoutes(api, companyHandler, rbacService)
		document.RegisterRoutes(api, documentHandler, rbacService)
		employee.RegisterRoutes(api, employeeHandler, rbacService)
		leave.RegisterRoutes(api, leaveHandler, rbacService, rdb)
		payroll.RegisterRoutes(api, payrollHandler, rbacService, rdb)
		timesheet.RegisterRoutes(api, timesheetHandler, rbacService)
	}

	return nil
}
