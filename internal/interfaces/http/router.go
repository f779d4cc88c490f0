// Package http wires the REST API: router, middleware chain and server
// lifecycle.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/socialhomes/CaseClock/internal/infrastructure/monitoring/logging"
	"github.com/socialhomes/CaseClock/internal/infrastructure/monitoring/prometheus"
	"github.com/socialhomes/CaseClock/internal/interfaces/http/handlers"
	"github.com/socialhomes/CaseClock/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies for the
// complete route tree.
type RouterConfig struct {
	CaseHandler   *handlers.CaseHandler
	HealthHandler *handlers.HealthHandler

	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector

	// Mode is the gin mode: "debug", "release" or "test".
	Mode string
}

// NewRouter constructs the route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if cfg.Logger != nil {
		r.Use(middleware.Logging(cfg.Logger))
	}
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	api := r.Group("/api/v1")
	if cfg.CaseHandler != nil {
		api.GET("/worklist", cfg.CaseHandler.GetWorklist)
		api.POST("/scan", cfg.CaseHandler.Scan)

		cases := api.Group("/cases/:id")
		cases.GET("/assessment", cfg.CaseHandler.GetAssessment)
		cases.GET("/countdown", cfg.CaseHandler.GetCountdown)
		cases.POST("/advance", cfg.CaseHandler.Advance)
	}

	return r
}
