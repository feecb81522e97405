package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/cvmatch/cvmatch-backend/internal/domain/usecase/analysis"
	authUseCase "github.com/cvmatch/cvmatch-backend/internal/domain/usecase/auth"
	creditUseCase "github.com/cvmatch/cvmatch-backend/internal/domain/usecase/credit"
	paymentUseCase "github.com/cvmatch/cvmatch-backend/internal/domain/usecase/payment"
	userUseCase "github.com/cvmatch/cvmatch-backend/internal/domain/usecase/user"

	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/api/handler"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/api/routes"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/database"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/extractor"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/jobfetch"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/llm"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/logger"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/mailer"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/oauth"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/payment"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/repository"
	timeProvider "github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/time"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/token"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLogger(cfg.IsProduction())
	tp := timeProvider.NewRealTimeProvider()

	// Checkout URLs and mail links point back at the frontend unless
	// configured explicitly
	if cfg.SMTP.FrontendURL == "" {
		cfg.SMTP.FrontendURL = cfg.FrontendURL
	}
	if cfg.Stripe.SuccessURL == "" {
		cfg.Stripe.SuccessURL = cfg.FrontendURL + "/payment/success?session_id={CHECKOUT_SESSION_ID}"
	}
	if cfg.Stripe.CancelURL == "" {
		cfg.Stripe.CancelURL = cfg.FrontendURL + "/payment/cancel"
	}

	dbManager := database.NewManager(&cfg.Database, appLogger, tp)
	if _, err := dbManager.Connect(context.Background()); err != nil {
		appLogger.Error("Failed to connect to database", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			appLogger.Error("Failed to close database", map[string]any{
				"error": err.Error(),
			})
		}
	}()

	if err := dbManager.Migrate(); err != nil {
		appLogger.Error("Failed to run migrations", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	// Repositories and the unit of work
	userRepo := repository.NewUserRepository(dbManager.DB(), appLogger)
	creditRepo := repository.NewCreditRepository(dbManager.DB(), tp, appLogger)
	uow := database.NewUnitOfWork(dbManager.DB(), appLogger, tp)

	// Outbound adapters
	tokens := token.NewJWTTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL, tp)
	hasher := token.NewBcryptHasher(cfg.Auth.BcryptCost)
	googleProvider := oauth.NewGoogleProvider(cfg.Google, appLogger)
	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP, appLogger)
	docExtractor := extractor.NewDocumentExtractor(tp, appLogger)
	jobFetcher := jobfetch.NewJobFetcher(appLogger)
	resumeAnalyzer := llm.NewResumeAnalyzer(cfg.OpenAI.APIKey, cfg.OpenAI.Model, appLogger)
	stripeGateway := payment.NewStripeGateway(cfg.Stripe, appLogger)

	// Use cases
	authService := authUseCase.NewService(userRepo, tokens, hasher, googleProvider, smtpMailer, tp, appLogger)
	creditService := creditUseCase.NewService(uow, creditRepo, tp, appLogger)
	paymentService := paymentUseCase.NewService(userRepo, stripeGateway, creditService, appLogger)
	userService := userUseCase.NewService(userRepo, creditRepo, tp, appLogger)
	orchestrator := analysis.NewOrchestrator(
		creditRepo, docExtractor, jobFetcher, resumeAnalyzer,
		analysis.DefaultRuleTable(), appLogger,
	)

	handlers := routes.Handlers{
		Auth:     handler.NewAuthHandler(authService, cfg.FrontendURL, appLogger),
		Analysis: handler.NewAnalysisHandler(orchestrator, appLogger),
		Payment:  handler.NewPaymentHandler(paymentService, creditService, appLogger),
		User:     handler.NewUserHandler(userService, appLogger),
		Health:   handler.NewHealthHandler(dbManager, appLogger),
	}

	router := gin.New()
	routes.SetupMiddlewares(router, appLogger, tp, cfg.FrontendURL)
	routes.SetupRoutes(router, handlers, authService)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("Starting server", map[string]any{
			"addr": server.Addr,
			"env":  cfg.Environment,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Server exited gracefully", nil)
}
