package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/eatprep/cbt-player/internal/config"
	"github.com/eatprep/cbt-player/internal/handler"
	"github.com/eatprep/cbt-player/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Session *handler.SessionHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes
	// metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── Exam player API ───────────────────────────────────────────────
	api := router.Group("/api/v1")
	{
		api.GET("/sets", handlers.Session.ListSets)

		api.POST("/session", handlers.Session.Start)
		api.POST("/session/resume", handlers.Session.Resume)
		api.GET("/session", handlers.Session.View)
		api.DELETE("/session", handlers.Session.Discard)

		api.PUT("/session/answer", handlers.Session.RecordAnswer)
		api.POST("/session/previous", handlers.Session.Previous)
		api.POST("/session/next", handlers.Session.Next)
		api.POST("/session/jump", handlers.Session.Jump)

		api.POST("/session/submit", handlers.Session.Submit)
		api.GET("/session/results", handlers.Session.Results)
		api.GET("/session/export", handlers.Session.Export)
	}

	// ─── WebSocket timer stream ────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/session/stream", handlers.WS.TimerStream)
	}

	return router
}
