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
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/EcoSphere-Campus/service-rewards/internal/adapter"
	"github.com/EcoSphere-Campus/service-rewards/internal/application"
	"github.com/EcoSphere-Campus/service-rewards/internal/auth"
	"github.com/EcoSphere-Campus/service-rewards/internal/config"
	"github.com/EcoSphere-Campus/service-rewards/internal/database"
	claimDomain "github.com/EcoSphere-Campus/service-rewards/internal/domain/claim"
	rewardDomain "github.com/EcoSphere-Campus/service-rewards/internal/domain/reward"
	"github.com/EcoSphere-Campus/service-rewards/internal/events"
	"github.com/EcoSphere-Campus/service-rewards/internal/handler"
	"github.com/EcoSphere-Campus/service-rewards/internal/health"
	"github.com/EcoSphere-Campus/service-rewards/internal/kafka"
	"github.com/EcoSphere-Campus/service-rewards/internal/logger"
	"github.com/EcoSphere-Campus/service-rewards/internal/middleware"
	"github.com/EcoSphere-Campus/service-rewards/internal/repository"
	"github.com/EcoSphere-Campus/service-rewards/internal/saga"
	"github.com/EcoSphere-Campus/service-rewards/internal/sweeper"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewNamed(cfg.AppEnv, "service-rewards")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting service-rewards",
		zap.String("port", cfg.Port),
		zap.String("store_driver", cfg.StoreDriver),
	)

	// Initialize storage
	var (
		db          *gorm.DB
		catalogRepo rewardDomain.CatalogRepository
		ledgerRepo  claimDomain.LedgerRepository
	)
	if cfg.StoreDriver == "memory" {
		catalogRepo = repository.NewMemoryCatalogRepository()
		ledgerRepo = repository.NewMemoryLedgerRepository()
	} else {
		db, err = database.Connect(cfg.DBConfig, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed to connect to database", zap.Error(err))
		}
		if err := db.AutoMigrate(&repository.RewardModel{}, &repository.ClaimModel{}); err != nil {
			zapLogger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		catalogRepo = repository.NewGormCatalogRepository(db)
		ledgerRepo = repository.NewGormLedgerRepository(db)
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, 15*time.Minute)

	// Initialize event publisher
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.KafkaConfig.Enabled {
		producer := kafka.NewProducer(cfg.KafkaConfig.Brokers, zapLogger)
		defer producer.Close()
		publisher = events.NewKafkaPublisher(producer, zapLogger)
	}

	// Initialize wallet adapter (mock until the points service ships its API)
	wallet := adapter.NewMockWalletAdapter(cfg.WalletStartingBalance, zapLogger)

	// Initialize saga and application services
	sagaService := saga.NewRedemptionSagaService(catalogRepo, ledgerRepo, wallet, zapLogger)
	catalogService := application.NewCatalogService(catalogRepo, ledgerRepo, zapLogger)
	redemptionService := application.NewRedemptionService(catalogRepo, ledgerRepo, sagaService, publisher, zapLogger)

	// Seed the catalog on first run
	if err := seedCatalog(context.Background(), catalogRepo, catalogService, zapLogger); err != nil {
		zapLogger.Fatal("failed to seed catalog", zap.Error(err))
	}

	// Start the expiry sweeper
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()

	expirySweeper := sweeper.NewExpirySweeper(ledgerRepo, publisher, cfg.SweepInterval, zapLogger)
	go expirySweeper.Run(sweepCtx)

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.LoggerMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-rewards")
	healthHandler.RegisterRoutes(router)

	// Register API routes
	apiV1 := router.Group("/api/v1")

	rewardsHandler := handler.NewRewardsHandler(catalogService, redemptionService)
	rewardsHandler.RegisterRoutes(apiV1, jwtManager)

	adminHandler := handler.NewAdminRewardsHandler(catalogService)
	adminHandler.RegisterRoutes(apiV1, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down service-rewards...")

	// Stop the sweeper
	sweepCancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("service-rewards stopped")
}
