package handlers

import (
	"github.com/ASHISH26940/asmr-studio-api/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts every endpoint on router. limiter guards the routes
// that reach paid upstream APIs.
func (h *Handlers) RegisterRoutes(router *gin.Engine, limiter *middleware.InMemoryRateLimiter) {
	router.GET("/health", h.HealthCheck)

	authRoutes := router.Group("/auth")
	authRoutes.Use(middleware.RateLimit(limiter))
	{
		authRoutes.POST("/register", h.RegisterUser)
		authRoutes.POST("/login", h.LoginUser)
	}

	// WebSocket clients cannot set headers, so the token travels in the query.
	router.GET("/ws/predictions/:id", h.StreamPredictionStatus)

	publicRoutes := router.Group("/api")
	publicRoutes.Use(middleware.OptionalAuth(h.JWT))
	{
		enhance := publicRoutes.Group("/enhance")
		enhance.Use(middleware.RateLimit(limiter))
		{
			enhance.POST("", h.EnhancePrompt)
			enhance.POST("/single", h.EnhanceSingle)
			enhance.POST("/project-metadata", h.EnhanceProjectMetadata)
			enhance.POST("/project-prompts", h.EnhanceProjectPrompts)
		}
		publicRoutes.GET("/predictions/:id", h.GetPredictionStatus)
	}

	protectedRoutes := router.Group("/api")
	protectedRoutes.Use(middleware.AuthMiddleware(h.JWT))
	{
		protectedRoutes.GET("/profile", h.GetProfile)
		protectedRoutes.DELETE("/profile", h.DeleteUser)
		protectedRoutes.GET("/wallet", h.GetWallet)

		protectedRoutes.POST("/videos", middleware.RateLimit(limiter), h.CreateVideo)
		protectedRoutes.GET("/videos", h.ListVideos)
		protectedRoutes.POST("/images", middleware.RateLimit(limiter), h.GenerateImage)

		paymentRoutes := protectedRoutes.Group("/payments")
		{
			paymentRoutes.GET("", h.ListPayments)
			paymentRoutes.GET("/tiers", h.ListTiers)
			paymentRoutes.POST("/checkout", h.CreateCheckoutSession)
			paymentRoutes.POST("/verify", h.VerifyCheckoutSession)
			paymentRoutes.POST("/intent", h.CreatePaymentIntent)
			paymentRoutes.POST("/confirm", h.ConfirmPaymentIntent)
		}

		projectsRoutes := protectedRoutes.Group("/projects")
		{
			projectsRoutes.POST("", h.CreateProject)
			projectsRoutes.GET("", h.ListProjects)
			projectsRoutes.GET("/:id", h.GetProject)
			projectsRoutes.PATCH("/:id", h.UpdateProject)
			projectsRoutes.DELETE("/:id", h.DeleteProject)
		}

		promptRoutes := protectedRoutes.Group("/prompts")
		{
			promptRoutes.GET("", h.ListPrompts)
			promptRoutes.PATCH("/:id", h.UpdatePrompt)
		}
	}
}
