package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/merchops/replenish/internal/api"
	"github.com/merchops/replenish/internal/cache"
	"github.com/merchops/replenish/internal/config"
	"github.com/merchops/replenish/internal/costing"
	"github.com/merchops/replenish/internal/potrack"
	"github.com/merchops/replenish/internal/repository/postgres"
	"github.com/merchops/replenish/internal/rop"
	"github.com/merchops/replenish/internal/sourcing"
	"github.com/merchops/replenish/internal/vendorperf"
	"github.com/merchops/replenish/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	if cfg.Server.Mode == "debug" {
		logger.SetLevel("debug")
		gin.SetMode(gin.DebugMode)
	} else {
		logger.SetLevel("info")
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize repositories
	inventoryRepo := postgres.NewInventoryRepository(db)
	orderHistoryRepo := postgres.NewOrderHistoryRepository(db)
	vendorRepo := postgres.NewVendorRepository(db)
	poRepo := postgres.NewPORepository(db)
	suggestionRepo := postgres.NewSuggestionRepository(db)

	// Initialize services
	metricsCache, err := cache.NewVendorMetricsCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("redis unavailable, vendor metrics cache disabled")
		metricsCache = cache.NewNoopVendorMetricsCache()
	}
	costingService := costing.NewService(inventoryRepo)
	vendorService := vendorperf.NewService(vendorRepo, orderHistoryRepo, metricsCache, cfg.Engine.GraceDays)
	ropEngine := rop.NewEngine(inventoryRepo, orderHistoryRepo, vendorService, suggestionRepo, cfg.Engine)
	poService := potrack.NewService(poRepo, orderHistoryRepo, vendorService)
	sourcingService := sourcing.NewService(vendorRepo, cfg.Engine)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		CostingService:  costingService,
		VendorService:   vendorService,
		ROPEngine:       ropEngine,
		POService:       poService,
		SourcingService: sourcingService,
	}, cfg.Server.AllowedOrigins)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
