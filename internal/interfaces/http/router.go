package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/KeyIP-Chat/internal/config"
	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/logging"
	prommetrics "github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Chat/internal/interfaces/http/handlers"
	"github.com/turtacn/KeyIP-Chat/internal/interfaces/http/middleware"
)

// NewRouter assembles the gin engine with middleware and all routes.
// catalogHandler may be nil when the catalog backend is not configured; its
// routes are then omitted.
func NewRouter(
	cfg config.ServerConfig,
	chatHandler *handlers.ChatHandler,
	sessionHandler *handlers.SessionHandler,
	catalogHandler *handlers.CatalogHandler,
	healthHandler *handlers.HealthHandler,
	metrics *prommetrics.Metrics,
	logger logging.Logger,
) *gin.Engine {
	gin.SetMode(cfg.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/chat", chatHandler.Ask)

		v1.GET("/sessions", sessionHandler.List)
		v1.GET("/sessions/stats", sessionHandler.Stats)
		v1.GET("/sessions/:id/history", sessionHandler.History)
		v1.GET("/sessions/:id/stats", sessionHandler.Describe)
		v1.PATCH("/sessions/:id", sessionHandler.Rename)
		v1.DELETE("/sessions/:id", sessionHandler.Delete)

		if catalogHandler != nil {
			v1.POST("/catalog/search", catalogHandler.Search)
		}
	}

	return r
}
