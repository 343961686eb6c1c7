package main

import (
	"Stockpile/internal/auth"
	"Stockpile/internal/config"
	"Stockpile/internal/handlers"
	"Stockpile/internal/metrics"
	"Stockpile/internal/middleware"
	"Stockpile/internal/repo"
	"Stockpile/internal/service"
	"Stockpile/internal/storage"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Production {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	if cfg.UsesDefaultSecret() {
		sugar.Warnw("AUTH_SECRET is not set, tokens are signed with the development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	blobs, err := storage.NewS3Store(storage.S3Config{
		Bucket:         cfg.BucketName,
		Region:         cfg.Region,
		Endpoint:       cfg.S3Endpoint,
		AccessKey:      cfg.AccessKey,
		SecretKey:      cfg.SecretKey,
		ForcePathStyle: cfg.S3PathStyle,
		ACL:            cfg.S3ACL,
	})
	if err != nil {
		sugar.Fatalw("failed to initialize object storage", "error", err)
	}

	tokens, err := auth.NewTokenManager(cfg.AuthSecret, cfg.TokenTTL)
	if err != nil {
		sugar.Fatalw("failed to initialize token manager", "error", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.MustNewMetrics(reg)

	userService := service.NewUserService(repo.NewUserRepository(gormDB))
	itemService := service.NewItemService(repo.NewItemRepository(gormDB), blobs, sugar, m)

	h := handlers.NewHandler(userService, itemService, tokens, m, sugar, cfg)

	srv := &http.Server{
		Addr:              cfg.BaseURL,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"ServerURL", cfg.ServerURL,
		"Bucket", cfg.BucketName,
		"S3Endpoint", cfg.S3Endpoint,
		"ImageMaxSizeMB", cfg.ImageMaxSizeMB,
		"TokenTTL", cfg.TokenTTL,
	)

	go func() {
		sugar.Infow("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Infow("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("Graceful shutdown failed", "error", err)
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
