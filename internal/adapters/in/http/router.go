package http

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"tableorder/internal/pkg/logging"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig collects what NewRouter wires together.
type RouterConfig struct {
	Server *Server
	Stream *StreamHandler
	Auth   *Authenticator

	// Metrics and Gatherer are optional; /metrics is served only with a Gatherer.
	Metrics  *Metrics
	Gatherer prometheus.Gatherer

	// RequestTimeout bounds every REST request. Websocket streams are exempt.
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewRouter builds the echo instance with middleware and all routes.
func NewRouter(cfg RouterConfig) *echo.Echo {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	if cfg.Metrics != nil {
		e.Use(cfg.Metrics.Middleware())
	}
	if cfg.RequestTimeout > 0 {
		e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
			Skipper: isStream,
			Timeout: cfg.RequestTimeout,
		}))
	}

	e.GET("/health", cfg.Server.Health)
	if cfg.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	api := e.Group("/api/v1", cfg.Auth.Middleware())
	api.POST("/orders", cfg.Server.CreateOrder)
	api.GET("/orders/active", cfg.Server.GetActiveOrders)
	api.GET("/orders/:id", cfg.Server.GetOrder)
	api.PATCH("/orders/:id/status", cfg.Server.UpdateOrderStatus)
	api.GET("/menu", cfg.Server.GetMenu)
	api.GET("/ws", cfg.Stream.Stream)

	return e
}

// requestLogger logs one line per request and stores a request-scoped logger in
// the request context for the layers below.
func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	logger = logger.With("component", "HTTP")

	attach := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqLogger := logger.With("request_id", c.Response().Header().Get(echo.HeaderXRequestID))
			req := c.Request()
			c.SetRequest(req.WithContext(logging.WithCtx(req.Context(), reqLogger)))
			return next(c)
		}
	}

	log := middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			l := logging.FromCtx(c.Request().Context(), logger)
			if v.Error != nil {
				l.WarnContext(c.Request().Context(), "request",
					"method", v.Method, "uri", v.URI, "status", v.Status,
					"latency", v.Latency, "error", v.Error)
				return nil
			}
			l.InfoContext(c.Request().Context(), "request",
				"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return attach(log(next))
	}
}

func isStream(c echo.Context) bool {
	return strings.HasSuffix(c.Request().URL.Path, "/ws")
}
