package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/polisure/certprep-backend/internal/config"
	"github.com/polisure/certprep-backend/internal/handler"
	"github.com/polisure/certprep-backend/internal/middleware"
	"github.com/polisure/certprep-backend/internal/response"
	"github.com/polisure/certprep-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Bank     *handler.BankHandler
	Practice *handler.PracticeHandler
	Mock     *handler.MockHandler
	History  *handler.HistoryHandler
	AI       *handler.AIHandler
	WS       *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
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
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// AI endpoints get their own, tighter limiter: every cache miss costs
	// an upstream completion call.
	aiLimiter := middleware.NewRateLimiter(10, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile routes
		auth.GET("/me", middleware.RequireAgentJWT(authService), handlers.Auth.Me)
		auth.POST("/logout", middleware.RequireAgentJWT(authService), handlers.Auth.Logout)
	}

	// ─── 2. Agent Group (JWT + Single Device) ──────────────────────────
	agentAPI := router.Group("/api/v1")
	agentAPI.Use(
		middleware.RequireAgentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		// Bank catalog (read-only for agents)
		agentAPI.GET("/banks", handlers.Bank.List)
		agentAPI.GET("/banks/:cert_type/tags", handlers.Bank.Tags)

		// Untimed drill
		agentAPI.GET("/practice/gradable", handlers.Practice.Gradable)
		agentAPI.POST("/practice/start", handlers.Practice.Start)
		agentAPI.GET("/practice/current", handlers.Practice.Current)
		agentAPI.POST("/practice/answer", handlers.Practice.Answer)
		agentAPI.POST("/practice/next", handlers.Practice.Next)
		agentAPI.POST("/practice/prev", handlers.Practice.Prev)
		agentAPI.POST("/practice/finish", handlers.Practice.Finish)

		// Timed mock exam
		agentAPI.GET("/mock/specs", handlers.Mock.Specs)
		agentAPI.POST("/mock/start", handlers.Mock.Start)
		agentAPI.POST("/mock/section/start", handlers.Mock.StartSection)
		agentAPI.POST("/mock/answer", handlers.Mock.Answer)
		agentAPI.POST("/mock/section/submit", handlers.Mock.SubmitSection)
		agentAPI.GET("/mock/status", handlers.Mock.Status)
		agentAPI.POST("/mock/finalize", handlers.Mock.Finalize)
		agentAPI.POST("/mock/reset", handlers.Mock.Reset)

		// Attempt history
		agentAPI.GET("/history", handlers.History.List)
		agentAPI.GET("/history/:attempt_id", handlers.History.Get)

		// AI assistance
		agentAPI.POST("/ai/hint", aiLimiter.Middleware(), handlers.AI.Hint)
		agentAPI.POST("/ai/explain", aiLimiter.Middleware(), handlers.AI.Explain)
	}

	// ─── 3. WebSocket Group (Agent WS Auth) ────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireAgentWSAuth(authService))
	{
		ws.GET("/mock/stream", handlers.WS.AttemptStream)
	}

	// ─── 4. Admin Group (JWT + admin flag) ─────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.POST("/banks/import", handlers.Bank.Import)
		adminAPI.DELETE("/banks/:id", handlers.Bank.Delete)
		adminAPI.POST("/agents/:id/reset-session", handlers.Auth.ResetSession)
	}

	return router
}
