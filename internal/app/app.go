package app

import (
	"peopledesk/internal/identity"
	"peopledesk/internal/shared/connection"
	"peopledesk/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func BuildApp(router *gin.Engine) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	gormDB, err := connection.ConnectGORMWithRetry(
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBPort,
		cfg.DBSSLMode,
		5,
	)
	if err != nil {
		return err
	}

	db, err := gormDB.DB()
	if err != nil {
		return err
	}

	rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, 5)
	if err != nil {
		return err
	}

	store, err := storage.NewCloudinaryGateway(
		cfg.CloudinaryCloudName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
	)
	if err != nil {
		return err
	}

	provider := identity.NewHTTPProvider(cfg.IdentityBaseURL, cfg.IdentityAPIKey)

	zap.L().Info("infrastructure connected")

	return registerModules(router, db, gormDB, rdb, store, provider, cfg)
}
