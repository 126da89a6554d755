package main

import (
	"context"
	"fmt"
	"log"

	"iso-audit/internal/config"
	"iso-audit/internal/database"
	"iso-audit/internal/logger"
	"iso-audit/internal/server"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logger.New(cfg.LogLevel, cfg.Production)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg, lg)
	if err != nil {
		lg.Fatal("database connect failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		lg.Fatal("database migrate failed", zap.Error(err))
	}

	ctx := context.Background()
	domains, controls, vulns, err := database.SeedCatalog(ctx, db)
	if err != nil {
		lg.Fatal("catalog seed failed", zap.Error(err))
	}
	lg.Info("catalog seeded", zap.Int("domains", domains), zap.Int("controls", controls), zap.Int("vulnerabilities", vulns))

	store := database.NewStore(db)
	if err := database.EnsureAdmin(ctx, store, cfg, lg); err != nil {
		lg.Fatal("admin bootstrap failed", zap.Error(err))
	}

	r := server.NewRouter(cfg, store, lg)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	lg.Info("starting server", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		lg.Fatal("server error", zap.Error(err))
	}
}
