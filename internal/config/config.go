package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN             string
	DBConnectAttempts int
	ServerPort        string
	SessionSecret     string

	LogLevel   string
	Production bool

	AdminUsername string
	AdminPassword string
}

// Load читает .env (если есть), затем переменные окружения.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBDSN:         os.Getenv("DB_DSN"),
		ServerPort:    os.Getenv("SERVER_PORT"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		Production:    os.Getenv("APP_ENV") != "development",
		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN is not set")
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is not set")
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.AdminUsername == "" {
		cfg.AdminUsername = "admin@audit.local"
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = "Admin123!"
	}

	cfg.DBConnectAttempts = 10
	if raw := os.Getenv("DB_CONNECT_ATTEMPTS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("DB_CONNECT_ATTEMPTS must be a positive integer, got %q", raw)
		}
		cfg.DBConnectAttempts = n
	}

	return cfg, nil
}
