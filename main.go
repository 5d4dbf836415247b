package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldserve/config"
	"fieldserve/cron"
	"fieldserve/database"
	bookingRepoPkg "fieldserve/database/repository/booking"
	catalogRepoPkg "fieldserve/database/repository/catalog"
	configRepoPkg "fieldserve/database/repository/configrepo"
	engineerRepoPkg "fieldserve/database/repository/engineer"
	"fieldserve/handlers"
	"fieldserve/middleware"
	"fieldserve/routes"
	"fieldserve/services/allocation"
	"fieldserve/services/payment"
	"fieldserve/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(cors.Default())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	engRepo := engineerRepoPkg.NewMongoEngineerRepo()
	bookRepo := bookingRepoPkg.NewMongoBookingRepo(utils.GetStatsCacheClient())
	catRepo := catalogRepoPkg.NewMongoCatalogRepo()
	cfgRepo := configRepoPkg.NewMongoConfigRepo()

	if err := engRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure engineer indexes: %v", err)
	}
	if err := bookRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure booking indexes: %v", err)
	}

	// services.
	allocationService := allocation.NewDefaultAllocationService(engRepo, bookRepo, catRepo, cfgRepo, logger)
	if config.AppConfig.MaxSlotsPerRequest > 0 {
		allocationService.MaxSlots = config.AppConfig.MaxSlotsPerRequest
	}
	if config.AppConfig.SearchWindowDays > 0 {
		allocationService.SearchWindowDays = config.AppConfig.SearchWindowDays
	}
	depositService := payment.NewStripeDepositHandler(bookRepo, allocationService, logger)

	// handlers.
	handlers.AllocationSvc = allocationService
	handlers.EngineerRepo = engRepo
	handlers.ConfigRepo = cfgRepo
	handlers.DepositSvc = depositService

	routes.RegisterAllocationRoutes(router)

	// Background risk sweep worker.
	cron.InitRiskWorker(allocationService)

	// Dependency health monitor feeding /health.
	utils.StartHealthMonitor([]*redis.Client{utils.GetCacheClient(), utils.GetStatsCacheClient()}, database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
