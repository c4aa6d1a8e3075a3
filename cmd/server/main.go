package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	sochx "github.com/sochx/platform"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type envConfig struct{}

func (envConfig) GetSigningKey() string {
	return envOr("SIGNING_KEY", "insecure-dev-signing-key")
}

func (envConfig) GetTokenExpiration() time.Duration {
	hours, err := strconv.Atoi(envOr("TOKEN_EXPIRATION_HOURS", ""))
	if err != nil || hours <= 0 {
		return sochx.DefaultTokenExpiration
	}
	return time.Duration(hours) * time.Hour
}

func (envConfig) IsProduction() bool {
	return envOr("APP_ENV", "development") == "production"
}

func (envConfig) GetCORSOrigin() string {
	return envOr("CORS_ORIGIN", "http://localhost:5173")
}

func (envConfig) GetFrontendURL() string {
	return envOr("FRONTEND_URL", "http://localhost:5173")
}

func (envConfig) GetGoogleClientID() string {
	return os.Getenv("GOOGLE_CLIENT_ID")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	logger := sochx.NewLogger()
	cfg := envConfig{}

	dsn := envOr("DATABASE_URL", "file:sochx.db?cache=shared&mode=rwc")

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		logger.Error("failed to open database: %v", err)
		os.Exit(1)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	ctx := context.Background()
	if err := sochx.CreateSchema(ctx, db); err != nil {
		logger.Error("failed to create schema: %v", err)
		os.Exit(1)
	}

	repo := sochx.NewRepositoryManager(db)
	server := sochx.NewServer(cfg, repo, sochx.WithServerLogger(logger))

	go func() {
		addr := ":" + envOr("PORT", "8080")
		if err := server.Listen(addr); err != nil {
			logger.Error("server stopped: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := server.Shutdown(); err != nil {
		logger.Error("shutdown error: %v", err)
	}
}
