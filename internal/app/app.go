// Package app assembles the service from configuration. Both the HTTP server and the
// Lambda entrypoint start from New.
package app

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	httpadp "line-of-credit/internal/adapter/http"
	"line-of-credit/internal/adapter/repository/gormrepo"
	"line-of-credit/internal/config"
	"line-of-credit/internal/infrastructure/cache"
	"line-of-credit/internal/infrastructure/db"
	"line-of-credit/internal/infrastructure/logger"
	"line-of-credit/internal/infrastructure/metrics"
	ucApp "line-of-credit/internal/usecase/application"
)

type App struct {
	Config *config.Config
	Log    *zap.Logger
	DB     *gorm.DB
	Redis  *redis.Client
	Echo   *echo.Echo
}

func New(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	gdb, err := db.OpenGorm(cfg)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	a := &App{Config: cfg, Log: log, DB: gdb}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	a.Redis = rdb
	if rdb == nil {
		log.Info("REDIS_ADDR not set, idempotency keys disabled")
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("database handle: %w", err)
	}

	m := metrics.New()
	uc := ucApp.NewUsecase(
		gormrepo.NewApplicationRepository(gdb),
		gormrepo.NewTransactionRepository(gdb),
		gormrepo.NewGormUoW(gdb),
		ucApp.WithLogger(log.Named("application")),
		ucApp.WithRecorder(m),
	)
	a.Echo = httpadp.NewRouter(httpadp.RouterDeps{
		Usecase:        uc,
		Logger:         log,
		Metrics:        m,
		Ping:           sqlDB.PingContext,
		Redis:          rdb,
		IdempotencyTTL: cfg.IdempotencyTTL(),
		RequestTimeout: cfg.RequestTimeout,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})
	return a, nil
}

// Close releases the database and Redis connections and flushes the logger.
func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	if a.Log != nil {
		_ = a.Log.Sync()
	}
	return errors.Join(errs...)
}
