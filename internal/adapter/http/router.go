package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"line-of-credit/internal/adapter/middleware"
	"line-of-credit/internal/infrastructure/metrics"
	ucApp "line-of-credit/internal/usecase/application"
)

// RouterDeps lists what NewRouter wires. Nil Metrics, nil Redis and a zero RateLimitRPS
// switch the matching feature off.
type RouterDeps struct {
	Usecase *ucApp.Usecase
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Ping    func(ctx context.Context) error

	Redis          *redis.Client
	IdempotencyTTL time.Duration

	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(d RouterDeps) *echo.Echo {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = NewErrorHandler(log)

	e.Use(
		echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}),
		middleware.RequestLog(log),
	)
	if d.Metrics != nil {
		e.Use(middleware.Metrics(d.Metrics))
	}
	// inside logging and metrics so a recovered panic is still logged and counted as a 500
	e.Use(echomw.Recover())
	if d.RequestTimeout > 0 {
		e.Use(echomw.ContextTimeoutWithConfig(echomw.ContextTimeoutConfig{Timeout: d.RequestTimeout}))
	}
	if d.RateLimitRPS > 0 {
		store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(d.RateLimitRPS),
			Burst:     d.RateLimitBurst,
			ExpiresIn: 3 * time.Minute,
		})
		e.Use(echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
			Store: store,
			DenyHandler: func(c echo.Context, identifier string, err error) error {
				return echo.NewHTTPError(http.StatusTooManyRequests).SetInternal(err)
			},
		}))
	}

	ops := NewHandler(d.Ping)
	e.GET("/health", ops.Health)
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	var mutating []echo.MiddlewareFunc
	if d.Redis != nil {
		mutating = append(mutating, middleware.Idempotency(d.Redis, d.IdempotencyTTL, log))
	}
	h := NewApplicationHandler(d.Usecase)
	e.POST("/createApplication", h.CreateApplication, mutating...)
	e.POST("/disburseFunds", h.DisburseFunds, mutating...)
	e.POST("/repayApplication", h.RepayApplication, mutating...)
	e.POST("/cancelApplication", h.CancelApplication, mutating...)
	e.POST("/rejectApplication", h.RejectApplication, mutating...)
	// read-only despite POST
	e.POST("/viewApplicationHistory", h.ViewApplicationHistory)

	return e
}
