package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sparx365/homework-backend/internal/config"
	"github.com/sparx365/homework-backend/internal/handler"
	"github.com/sparx365/homework-backend/internal/middleware"
	"github.com/sparx365/homework-backend/internal/response"
	"github.com/sparx365/homework-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Extraction *handler.ExtractionHandler
	Billing    *handler.BillingHandler
	Webhook    *handler.WebhookHandler
	WS         *handler.WSHandler
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

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile routes. Logout skips the active-session
		// check so logging out twice with the same token still succeeds.
		auth.POST("/logout", middleware.RequireJWT(authService), handlers.Auth.Logout)
		auth.GET("/me",
			middleware.RequireJWT(authService),
			middleware.CheckActiveSession(authService),
			handlers.Auth.GetProfile,
		)
	}

	// ─── 2. User Group (JWT + Active Session) ──────────────────────────
	userAPI := router.Group("/api/v1")
	userAPI.Use(
		middleware.RequireJWT(authService),
		middleware.CheckActiveSession(authService),
	)
	{
		userAPI.POST("/extract", handlers.Extraction.Extract)
		userAPI.GET("/extractions", handlers.Extraction.History)
		userAPI.GET("/usage", handlers.Extraction.GetUsage)

		billing := userAPI.Group("/billing")
		{
			billing.POST("/checkout-session", handlers.Billing.CreateCheckoutSession)
			billing.POST("/portal-session", handlers.Billing.CreatePortalSession)
			billing.POST("/verify", handlers.Billing.VerifyCheckout)
		}
	}

	// ─── 3. WebSocket Group (WS Auth) ──────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/extract/stream", handlers.WS.ExtractionStream)
	}

	// ─── 4. Webhooks (Public, Signature Verified) ──────────────────────
	router.POST("/webhooks/stripe", handlers.Webhook.HandleStripe)

	return router
}
