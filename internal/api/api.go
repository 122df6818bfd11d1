// Package api provides the HTTP interface for reconciliation summaries,
// daily comparisons and completeness-audit results.
package api

import (
	"io"
	"log"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dairyops/dairytrack-go/internal/conf"
	"github.com/dairyops/dairytrack-go/internal/logging"
	"github.com/dairyops/dairytrack-go/internal/refresh"
)

// Package-level logger specific to the API service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "api.log")
	serviceLevelVar.Set(slog.LevelInfo)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "api", serviceLevelVar)
	if err != nil {
		log.Printf("FATAL: Failed to initialize API file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "api")
		closeLogger = func() error { return nil }
	}
}

// Controller wires the HTTP routes to the refresh service.
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	settings *conf.Settings
	service  *refresh.Service
	registry *prometheus.Registry

	// now is the reference clock; tests pin it for determinism.
	now func() time.Time
}

// New creates a controller and registers all routes on the given echo
// instance. registry may be nil when metrics exposure is not wanted.
func New(e *echo.Echo, settings *conf.Settings, service *refresh.Service, registry *prometheus.Registry) *Controller {
	c := &Controller{
		Echo:     e,
		settings: settings,
		service:  service,
		registry: registry,
		now:      time.Now,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("http request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds())
			return nil
		},
	}))

	c.Group = e.Group("/api/v1")
	c.initRoutes()
	return c
}

func (c *Controller) initRoutes() {
	c.Group.GET("/summary", c.GetSummary)
	c.Group.GET("/daily", c.GetDaily)
	c.Group.GET("/entities", c.GetEntities)
	c.Group.GET("/funds", c.GetFunds)
	c.Group.GET("/gaps", c.GetGaps)
	c.Group.GET("/health", c.GetHealth)
	c.Group.POST("/refresh", c.PostRefresh)

	if c.registry != nil {
		c.Echo.GET("/metrics", echo.WrapHandler(
			promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})))
	}
}

// Start runs the HTTP server until it fails or is shut down.
func (c *Controller) Start() error {
	addr := c.settings.WebServer.Address()
	logger.Info("starting http server", "addr", addr)
	return c.Echo.Start(addr)
}

// Shutdown stops the HTTP server and closes the service log.
func (c *Controller) Shutdown() {
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Failed to close API log file: %v", err)
		}
	}
}

// result runs a refresh cycle for the current request. The sheet snapshot
// cache makes repeated calls cheap between cache expiries.
func (c *Controller) result(ctx echo.Context) *refresh.Result {
	return c.service.Run(ctx.Request().Context(), c.now())
}
