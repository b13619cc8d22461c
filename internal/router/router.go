package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"billaudit/internal/config"
	"billaudit/internal/handler"
	"billaudit/internal/middleware"
	"billaudit/internal/service"
)

// Handlers bundles the HTTP handlers mounted by Setup.
type Handlers struct {
	Document *handler.DocumentHandler
	Audit    *handler.AuditHandler
	Stats    *handler.StatsHandler
	Health   *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware.
// API routes require a bearer token only when auth is enabled.
func Setup(cfg *config.Config, tokens service.TokenService, h Handlers) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = cfg.Upload.MaxFileSize()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks and metrics
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	if cfg.Auth.Enabled {
		v1.Use(middleware.AuthMiddleware(tokens))
	}

	documents := v1.Group("/documents")
	documents.POST("/upload", h.Document.Upload)
	documents.GET("", h.Document.List)
	documents.GET("/export", h.Document.Export)
	documents.GET("/:id", h.Document.GetByID)
	documents.GET("/:id/download", h.Document.Download)

	v1.GET("/audit-policies", h.Audit.ListPolicies)
	v1.POST("/audit/preview", h.Audit.Preview)
	v1.GET("/stats", h.Stats.GetStats)

	return r
}
