package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/api/routes"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/config"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/handlers"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/repositories"
	mongorepo "github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/repositories/mongodb"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/services"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/pkg/mongodb"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/pkg/pushgateway"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional, real deployments inject environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	// Repositories
	var userRepo repositories.UserRepository = mongorepo.NewUserRepository(db)
	var ledgerRepo repositories.LedgerRepository = mongorepo.NewLedgerRepository(db)
	var txRepo repositories.PointTransactionRepository = mongorepo.NewPointTransactionRepository(db)
	var eventRepo repositories.SpecialEventRepository = mongorepo.NewSpecialEventRepository(db)
	var notificationRepo repositories.NotificationRepository = mongorepo.NewNotificationRepository(db)

	// Push gateways
	var primaryGateway, fallbackGateway pushgateway.Gateway
	if cfg.Push.MockPush {
		primaryGateway = pushgateway.NewMockGateway("mock")
		fallbackGateway = nil
	} else {
		primaryGateway = pushgateway.NewFCMGateway(cfg.Push.FCMGateway.BaseURL, cfg.Push.FCMGateway.APIKey)
		fallbackGateway = pushgateway.NewAPNSGateway(cfg.Push.APNSGateway.BaseURL, cfg.Push.APNSGateway.APIKey)
	}

	// Services
	resolver, err := services.NewMultiplierResolver(cfg)
	if err != nil {
		log.Fatalf("Failed to initialise multiplier resolver: %v", err)
	}
	eventService := services.NewEventService(eventRepo)
	achievementService := services.NewAchievementService(cfg.Rules)
	notificationService := services.NewNotificationService(notificationRepo, primaryGateway, fallbackGateway)
	pointsService := services.NewPointsService(userRepo, ledgerRepo, txRepo, eventService, resolver, achievementService, notificationService, cfg)
	leaderboardService := services.NewLeaderboardService(ledgerRepo, time.Duration(cfg.Points.LeaderboardCacheTTL)*time.Second)
	userService := services.NewUserService(userRepo)

	// Weekly and monthly reset jobs
	scheduler, err := services.StartResetScheduler(pointsService, leaderboardService, cfg.Points)
	if err != nil {
		log.Fatalf("Failed to start reset scheduler: %v", err)
	}
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			log.Printf("Error shutting down scheduler: %v", err)
		}
	}()

	// Handlers
	handlerDeps := routes.HandlerDependencies{
		UserHandler:        handlers.NewUserHandler(userService, notificationService),
		PointsHandler:      handlers.NewPointsHandler(pointsService),
		LeaderboardHandler: handlers.NewLeaderboardHandler(leaderboardService),
		EventHandler:       handlers.NewEventHandler(eventService),
	}

	router := routes.SetupRouter(cfg, handlerDeps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	log.Printf("Server starting on port %s", cfg.Server.Port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}
