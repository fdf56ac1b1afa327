package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/config"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/handler"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/middleware"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/repository/memory"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/repository/postgres"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/service"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	// Open the record stores
	stores, closeStores := openStores(cfg)
	defer closeStores()

	// Hub publishes record events to every connection of an owner
	hub := websocket.NewHub()

	// Initialize services
	transactionService := service.NewTransactionService(stores.Transactions)
	transactionService.SetEventPublisher(hub)
	categoryService := service.NewCategoryService(stores.Categories)
	categoryService.SetEventPublisher(hub)
	budgetService := service.NewBudgetService(stores.Budgets, stores.Transactions, cfg.Location)
	budgetService.SetEventPublisher(hub)
	dashboardService := service.NewDashboardService(stores.Transactions, cfg.Location)

	// Initialize auth
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}
	wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create WebSocket token validator")
	}
	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	// Initialize handlers
	transactionHandler := handler.NewTransactionHandler(transactionService, cfg.Location)
	handlers := handler.Handlers{
		Transactions: transactionHandler,
		Categories:   handler.NewCategoryHandler(categoryService),
		Budgets:      handler.NewBudgetHandler(budgetService),
		Dashboard:    handler.NewDashboardHandler(dashboardService, transactionHandler),
		WebSocket:    handler.NewWebSocketHandler(hub, wsValidator, stores, cfg.Location, cfg.CORSOrigins, log.Logger),
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Register routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, handlers)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreBackend).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// openStores opens the configured store backend and returns a function releasing it
func openStores(cfg *config.Config) (websocket.Stores, func()) {
	if cfg.StoreBackend == config.BackendMemory {
		store := memory.NewStore(cfg.Location)
		log.Warn().Msg("Using in-memory store; records are lost on restart")
		return websocket.Stores{
			Transactions: store.Transactions(),
			Categories:   store.Categories(),
			Budgets:      store.Budgets(),
		}, store.Close
	}

	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// One LISTEN connection serves every live subscription
	notifier := postgres.NewNotifier(pool, log.Logger)
	if err := notifier.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start change notifier")
	}

	stores := websocket.Stores{
		Transactions: postgres.NewTransactionRepository(pool, notifier, cfg.Location, log.Logger),
		Categories:   postgres.NewCategoryRepository(pool, notifier, log.Logger),
		Budgets:      postgres.NewBudgetRepository(pool, notifier, log.Logger),
	}
	return stores, func() {
		notifier.Close()
		pool.Close()
	}
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
