package routes

import (
	"github.com/gin-gonic/gin"

	coreport "github.com/cvmatch/cvmatch-backend/internal/domain/port/core"
	"github.com/cvmatch/cvmatch-backend/internal/domain/usecase/auth"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/api/handler"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/api/middleware"
)

// Handlers groups the API handlers wired at startup
type Handlers struct {
	Auth     *handler.AuthHandler
	Analysis *handler.AnalysisHandler
	Payment  *handler.PaymentHandler
	User     *handler.UserHandler
	Health   *handler.HealthHandler
}

// SetupRoutes configures all the routes for the API. The payment webhook and
// the auth endpoints are public; everything else requires a bearer token.
func SetupRoutes(router *gin.Engine, h Handlers, authService *auth.Service) {
	router.GET("/health", h.Health.Health)

	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", h.Auth.Register)
		authRoutes.POST("/login", h.Auth.Login)
		authRoutes.GET("/google/login", h.Auth.GoogleLogin)
		authRoutes.GET("/google/callback", h.Auth.GoogleCallback)
		authRoutes.POST("/forgot-password", h.Auth.ForgotPassword)
		authRoutes.POST("/reset-password", h.Auth.ResetPassword)
		authRoutes.GET("/verify-email/:token", h.Auth.VerifyEmail)
	}

	// Signed by the provider, not by a user session
	api.POST("/payment/webhook", h.Payment.Webhook)

	requireAuth := middleware.RequireAuth(authService)

	cvRoutes := api.Group("/cv", requireAuth)
	{
		cvRoutes.POST("/analyze", h.Analysis.Analyze)
	}

	paymentRoutes := api.Group("/payment", requireAuth)
	{
		paymentRoutes.POST("/create-checkout-session", h.Payment.CreateCheckout)
		paymentRoutes.GET("/verify-credits", h.Payment.VerifyCredits)
		paymentRoutes.GET("/verify-payment/:session_id", h.Payment.VerifyPayment)
	}

	userRoutes := api.Group("/user", requireAuth)
	{
		userRoutes.GET("/me", h.User.Me)
		userRoutes.GET("/credits", h.User.Credits)
		userRoutes.PUT("/update", h.User.Update)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger, timeProvider coreport.TimeProvider, frontendURL string) {
	// Apply middlewares in the correct order
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.RequestLogger(logger, timeProvider))
	router.Use(middleware.CORS(frontendURL))
	router.Use(middleware.MultipartHygiene())
}
