package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ordinator/ordinator/internal/orchestrator"
)

// Router wires the orchestrator's external request surface (§6) onto Echo.
type Router struct {
	echo     *echo.Echo
	handlers *Handlers
}

// NewRouter creates a new Echo router over an Orchestrator.
func NewRouter(o *orchestrator.Orchestrator) *Router {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	r := &Router{echo: e, handlers: NewHandlers(o)}
	r.registerRoutes()
	return r
}

// registerRoutes configures every route the orchestrator exposes.
func (r *Router) registerRoutes() {
	r.echo.GET("/api/health", r.handlers.Health)
	r.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	assets := r.echo.Group("/api/assets")
	assets.GET("", r.handlers.ListAssets)
	assets.POST("/:asset", r.handlers.CreateAsset)
	assets.DELETE("/:asset", r.handlers.DeleteAsset)
	assets.GET("/:asset/status", r.handlers.AssetStatus)
	assets.GET("/:asset/export", r.handlers.Export)
	assets.GET("/:asset/work-orders/:workOrderNumber", r.handlers.WorkOrderStatus)
}

// Start starts the HTTP server.
func (r *Router) Start(addr string) error {
	return r.echo.Start(addr)
}

// Shutdown closes the server immediately via echo.Close; in-flight requests
// are not drained.
func (r *Router) Shutdown() error {
	return r.echo.Close()
}
