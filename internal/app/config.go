package app

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	RedisAddr   string
	KafkaBroker string

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	MaxFailedAttempts int
	LockoutDuration   time.Duration

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	IdentityBaseURL string
	IdentityAPIKey  string
}

func LoadConfig() (Config, error) {
	cfg := Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		DBSSLMode:  os.Getenv("DB_SSLMODE"),

		RedisAddr:   os.Getenv("REDIS_ADDR"),
		KafkaBroker: os.Getenv("KAFKA_BROKER"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		AccessTTL:  durationEnv("AUTH_ACCESS_TTL_MINUTES", 15) * time.Minute,
		RefreshTTL: durationEnv("AUTH_REFRESH_TTL_HOURS", 7*24) * time.Hour,

		MaxFailedAttempts: intEnv("AUTH_MAX_FAILED_ATTEMPTS", 5),
		LockoutDuration:   durationEnv("AUTH_LOCKOUT_MINUTES", 15) * time.Minute,

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		IdentityBaseURL: os.Getenv("IDENTITY_BASE_URL"),
		IdentityAPIKey:  os.Getenv("IDENTITY_API_KEY"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

func intEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func durationEnv(key string, fallback int) time.Duration {
	return time.Duration(intEnv(key, fallback))
}
