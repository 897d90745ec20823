package router

import (
	"slices"
	"time"

	"github.com/gameshop/backend/internal/infrastructure/config"
	"github.com/gameshop/backend/internal/infrastructure/logger"
	"github.com/gameshop/backend/internal/interfaces/http/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		registrars: make([]RouteRegistrar, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// EngineOption adjusts the middleware chain built by NewEngine
type EngineOption func(*engineOptions)

type engineOptions struct {
	tracing []gin.HandlerFunc
}

// WithTracing traces every request through tp
func WithTracing(serviceName string, tp trace.TracerProvider) EngineOption {
	return func(o *engineOptions) {
		o.tracing = middleware.Tracing(serviceName, tp)
	}
}

// NewEngine creates a gin engine with the standard middleware chain.
// The rate limiter may be nil.
func NewEngine(cfg config.HTTPConfig, log *zap.Logger, limiter *middleware.RateLimiter, opts ...EngineOption) *gin.Engine {
	var o engineOptions
	for _, opt := range opts {
		opt(&o)
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(o.tracing...)
	engine.Use(
		logger.AccessLog(log, "/system/health"),
		middleware.Recovery(log),
		middleware.Secure(),
	)
	if len(cfg.CORSAllowOrigins) > 0 {
		engine.Use(cors.New(corsConfig(cfg)))
	}
	if cfg.MaxBodyBytes > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	}
	if limiter != nil {
		engine.Use(middleware.RateLimit(limiter))
	}
	return engine
}

func corsConfig(cfg config.HTTPConfig) cors.Config {
	c := cors.Config{
		AllowMethods:  cfg.CORSAllowMethods,
		AllowHeaders:  cfg.CORSAllowHeaders,
		ExposeHeaders: []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(cfg.CORSAllowOrigins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.CORSAllowOrigins
	}
	return c
}
