package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	"github.com/orbitel/oms/internal/adapter/events"
	"github.com/orbitel/oms/internal/adapter/http/handler"
	"github.com/orbitel/oms/internal/adapter/http/middleware"
	"github.com/orbitel/oms/internal/adapter/persistence"
	"github.com/orbitel/oms/internal/config"
	"github.com/orbitel/oms/internal/service/jwt"
	"github.com/orbitel/oms/internal/service/logger"
	"github.com/orbitel/oms/internal/service/password"
	"github.com/orbitel/oms/internal/service/ratelimit"
	"github.com/orbitel/oms/internal/usecase"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat)
	appLogger.WithField("env", cfg.Environment).Info("Application starting")

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		appLogger.WithError(err).Fatal("Failed to ping database")
	}
	appLogger.Info("Database connection established")

	// Services
	tokenService, err := jwt.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize JWT service")
	}
	passwordService := password.NewBcryptPasswordService(10)

	rateLimitService, err := ratelimit.NewRateLimitService(ratelimit.Config{
		Enabled:  cfg.RateLimitEnabled,
		RedisURL: cfg.RedisURL,
	}, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize rate limit service")
	}

	// Repositories
	orderRepo := persistence.NewPostgresOrderRepository(db)
	auditRepo := persistence.NewPostgresAuditRepository(db)
	userRepo := persistence.NewPostgresUserRepository(db)
	requestRepo := persistence.NewPostgresRequestRepository(db)
	subscriptionRepo := persistence.NewPostgresSubscriptionRepository(db)
	invoiceRepo := persistence.NewPostgresInvoiceRepository(db)
	billingRepo := persistence.NewPostgresBillingSettingsRepository(db)

	// Event bus
	dispatcher := events.NewDispatcher(appLogger)

	// Use cases
	auditUseCase := usecase.NewAuditUseCase(auditRepo, appLogger)
	orderUseCase := usecase.NewOrderUseCase(orderRepo, auditUseCase, dispatcher, appLogger)
	userUseCase := usecase.NewUserUseCase(userRepo, passwordService, auditUseCase, dispatcher, appLogger)
	authUseCase := usecase.NewAuthUseCase(userRepo, passwordService, tokenService, rateLimitService, auditUseCase, cfg.LoginMaxAttempts, cfg.LoginWindow, appLogger)
	requestUseCase := usecase.NewRequestUseCase(requestRepo, auditUseCase, appLogger)
	subscriptionUseCase := usecase.NewSubscriptionUseCase(subscriptionRepo, auditUseCase, dispatcher, appLogger)
	invoiceUseCase := usecase.NewInvoiceUseCase(invoiceRepo, orderRepo, billingRepo, auditUseCase, appLogger)
	billingUseCase := usecase.NewBillingUseCase(billingRepo, auditUseCase, appLogger)

	// Handlers
	authHandler := handler.NewAuthHandler(authUseCase, userUseCase)
	orderHandler := handler.NewOrderHandler(orderUseCase)
	auditHandler := handler.NewAuditHandler(auditUseCase)
	userHandler := handler.NewUserHandler(userUseCase)
	requestHandler := handler.NewRequestHandler(requestUseCase)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionUseCase)
	invoiceHandler := handler.NewInvoiceHandler(invoiceUseCase)
	billingHandler := handler.NewBillingHandler(billingUseCase)

	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Routes
	router := mux.NewRouter()
	router.Use(middleware.RecoveryMiddleware(appLogger))
	router.Use(middleware.LoggingMiddleware(appLogger))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"healthy"}`)
	}).Methods(http.MethodGet)

	public := router.PathPrefix("/v1").Subrouter()
	authHandler.RegisterPublicRoutes(public)

	protected := router.PathPrefix("/v1").Subrouter()
	protected.Use(authMiddleware.RequireAuth)
	authHandler.RegisterRoutes(protected)
	orderHandler.RegisterRoutes(protected)
	auditHandler.RegisterRoutes(protected)
	userHandler.RegisterRoutes(protected)
	requestHandler.RegisterRoutes(protected)
	subscriptionHandler.RegisterRoutes(protected)
	invoiceHandler.RegisterRoutes(protected)
	billingHandler.RegisterRoutes(protected)

	var rootHandler http.Handler = router
	if cfg.CORSEnabled && len(cfg.CORSAllowedOrigins) > 0 {
		rootHandler = middleware.CORSMiddleware(rootHandler, cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Error("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}
	appLogger.Info("Server exited")
}
