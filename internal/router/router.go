package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizgate/internal/config"
	"github.com/stemsi/quizgate/internal/handler"
	"github.com/stemsi/quizgate/internal/middleware"
	"github.com/stemsi/quizgate/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Quiz   *handler.QuizHandler
	WS     *handler.WSHandler
	System *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	handlers *Handlers,
	cookie middleware.SessionCookie,
	submitLimiter *middleware.RateLimiter,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list and allow
	// the session cookie to travel; otherwise allow all (*) for dev.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(response.AccessLog(log))
	router.Use(middleware.Brotli(middleware.DefaultBrotliConfig))
	router.Use(cookie.Extract())

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	router.GET("/health", handlers.System.Health)

	// ─── Quiz API ──────────────────────────────────────────────────────
	api := router.Group("/api")
	api.Use(middleware.NoStore())
	{
		api.GET("/questions", handlers.Quiz.GetQuestions)
		api.POST("/submit", submitLimiter.Middleware(), handlers.Quiz.Submit)
		api.POST("/session/reset", handlers.Quiz.ResetSession)
		api.GET("/system/metrics", handlers.System.SystemMetricsSSE)
	}

	// ─── WebSocket ─────────────────────────────────────────────────────
	router.GET("/ws/quiz", handlers.WS.QuizStream)

	return router
}
