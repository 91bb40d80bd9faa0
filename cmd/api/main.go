package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/verinum/verinum-api/internal/cache"
	"github.com/verinum/verinum-api/internal/config"
	"github.com/verinum/verinum-api/internal/database"
	"github.com/verinum/verinum-api/internal/handler"
	"github.com/verinum/verinum-api/internal/middleware"
	"github.com/verinum/verinum-api/internal/repository"
	"github.com/verinum/verinum-api/internal/service"
	"github.com/verinum/verinum-api/internal/utils"
	"github.com/verinum/verinum-api/internal/worker"
	"github.com/verinum/verinum-api/pkg/daisysms"
	"github.com/verinum/verinum-api/pkg/fivesim"
	"github.com/verinum/verinum-api/pkg/smslive"
)

// main is the application entrypoint for the Verinum number reselling API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting verinum api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	priceCache := cache.NewPriceCache(redisClient)

	// 4. Initialize JWT signing
	utils.InitJWT(cfg.JWTSecret)

	// 5. Initialize repositories
	priceRepo := repository.NewPriceRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)

	// 6. Initialize provider adapters. Providers without credentials stay
	// unregistered; shared logic never branches on provider identity.
	registry := service.NewProviderRegistry()
	if cfg.SMSLive.APIKey != "" {
		registry.Register(service.NewSMSLiveProviderClient(
			smslive.NewClient(cfg.SMSLive.BaseURL, cfg.SMSLive.APIKey)))
		log.Info().Msg("SMSLive provider registered")
	}
	if cfg.FiveSim.Token != "" {
		registry.Register(service.NewFiveSimProviderClient(
			fivesim.NewClient(cfg.FiveSim.BaseURL, cfg.FiveSim.Token)))
		log.Info().Msg("FiveSim provider registered")
	}
	if cfg.DaisySMS.APIKey != "" {
		registry.Register(service.NewDaisySMSProviderClient(
			daisysms.NewClient(cfg.DaisySMS.BaseURL, cfg.DaisySMS.APIKey)))
		log.Info().Msg("DaisySMS provider registered")
	}
	if registry.Len() == 0 {
		log.Warn().Msg("no provider credentials configured - catalog will stay empty")
	}

	// 7. Initialize services
	fxResolver := service.NewFXResolver(cfg.FX)
	markupEngine := service.NewMarkupEngine(cfg.Markup)
	refreshSvc := service.NewRefreshService(registry, fxResolver, markupEngine, priceRepo, catalogRepo, cfg.Refresh)
	priceSvc := service.NewPriceService(priceRepo, catalogRepo, priceCache, cfg.Refresh)
	orderSvc := service.NewOrderService(registry, priceSvc, orderRepo)
	adminAuthSvc := service.NewAdminAuthService(adminRepo)

	// 8. Initialize handlers
	handlers := &Handlers{
		Health:  handler.NewHealthHandler(registry),
		Price:   handler.NewPriceHandler(priceSvc),
		Order:   handler.NewOrderHandler(orderSvc),
		Balance: handler.NewBalanceHandler(refreshSvc),
		Refresh: handler.NewRefreshHandler(refreshSvc),
		Auth:    handler.NewAuthHandler(adminAuthSvc),
	}

	// 9. Initialize middleware
	apiKeyMw := middleware.NewAPIKeyMiddleware(cfg.APIKey)
	jwtMw := middleware.NewJWTMiddleware()

	// 10. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, apiKeyMw, jwtMw)

	// 11. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 12. Start workers
	go worker.NewRefreshWorker(refreshSvc, cfg.Refresh.Interval).Start(ctx)
	go worker.NewCatalogSyncWorker(refreshSvc, cfg.Refresh.CatalogInterval).Start(ctx)

	// 13. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 14. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 15. Cancel context to stop workers
	cancel()

	// 16. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health  *handler.HealthHandler
	Price   *handler.PriceHandler
	Order   *handler.OrderHandler
	Balance *handler.BalanceHandler
	Refresh *handler.RefreshHandler
	Auth    *handler.AuthHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, apiKeyMiddleware *middleware.APIKeyMiddleware, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	// Client routes (protected with client API key)
	v1 := router.Group("/v1")
	v1.Use(apiKeyMiddleware.Handle())
	{
		v1.GET("/prices", handlers.Price.GetPrices)
		v1.GET("/prices/best", handlers.Price.GetBestPrice)
		v1.GET("/prices/compare", handlers.Price.ComparePrices)
		v1.GET("/countries", handlers.Price.GetCountries)
		v1.GET("/services", handlers.Price.GetServices)

		v1.POST("/orders", handlers.Order.CreateOrder)
		v1.GET("/orders", handlers.Order.GetOrders)
		v1.GET("/orders/:referenceId", handlers.Order.GetOrder)
		v1.GET("/orders/:referenceId/code", handlers.Order.GetOrderCode)
		v1.POST("/orders/:referenceId/cancel", handlers.Order.CancelOrder)

		v1.GET("/balance", handlers.Balance.GetBalances)
	}

	// Admin routes
	admin := router.Group("/v1/admin")
	admin.POST("/auth/login", handlers.Auth.Login)
	admin.Use(jwtMiddleware.Handle())
	{
		admin.POST("/refresh", handlers.Refresh.TriggerRefresh)
		admin.POST("/refresh/catalogs", handlers.Refresh.TriggerCatalogSync)
		admin.GET("/prices/stale", handlers.Price.GetStalePrices)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	// Run migrations
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
