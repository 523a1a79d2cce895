package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"auctionhouse-backend/internal/config"
	infraCache "auctionhouse-backend/internal/infrastructure/cache"
	"auctionhouse-backend/internal/infrastructure/database"
	"auctionhouse-backend/internal/infrastructure/queue"
	"auctionhouse-backend/internal/infrastructure/realtime"
	"auctionhouse-backend/pkg/cache"
	"auctionhouse-backend/pkg/jwt"
	"auctionhouse-backend/pkg/logger"

	auctionHandler "auctionhouse-backend/internal/domains/auction/handler"
	auctionRepo "auctionhouse-backend/internal/domains/auction/repository"
	auctionService "auctionhouse-backend/internal/domains/auction/service"
	identityRepo "auctionhouse-backend/internal/domains/identity/repository"
	notifHandler "auctionhouse-backend/internal/domains/notification/handler"
	notifRepo "auctionhouse-backend/internal/domains/notification/repository"
	notifService "auctionhouse-backend/internal/domains/notification/service"
	watchHandler "auctionhouse-backend/internal/domains/watchlist/handler"
	watchRepo "auctionhouse-backend/internal/domains/watchlist/repository"
	watchService "auctionhouse-backend/internal/domains/watchlist/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph. Everything here is a
// singleton living for the process lifetime; the api and worker binaries
// share this wiring and pick the pieces they need.
type Container struct {
	// Infrastructure
	Config      *config.Config
	DB          *database.PostgresDB
	Redis       *infraCache.RedisClient
	Cache       cache.Cache
	JWTManager  *jwt.Manager
	AsynqClient *queue.Client
	Publisher   realtime.Publisher
	Subscriber  realtime.Subscriber

	// Repositories
	AuctionRepo      auctionRepo.AuctionRepository
	NotificationRepo notifRepo.NotificationRepository
	WatchlistRepo    watchRepo.WatchlistRepository
	ProfileRepo      identityRepo.UserProfileRepository

	// Services
	Dispatcher          notifService.Dispatcher
	BiddingService      auctionService.BiddingService
	ResolutionService   auctionService.ResolutionService
	NotificationService notifService.NotificationService
	WatchlistService    watchService.WatchlistService

	// Handlers
	AuctionHandler      *auctionHandler.AuctionHandler
	NotificationHandler *notifHandler.NotificationHandler
	WatchlistHandler    *watchHandler.WatchlistHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer initializes the full dependency graph in order: config,
// infrastructure, repositories, services, handlers. A failure at any step
// aborts startup.
func NewContainer() (*Container, error) {
	log.Println("[Container] Initializing...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Init(cfg.App.Environment)
	log.Printf("[Container] Config loaded (environment: %s)", cfg.App.Environment)

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	db := database.NewPostgresDB(&cfg.Database)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	log.Println("[Container] Database connected")

	// ========================================
	// STEP 3: INITIALIZE REDIS
	// ========================================
	redisClient := infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.Redis = redisClient
	c.Cache = infraCache.NewRedisCache(redisClient)
	c.Publisher = realtime.NewPublisher(redisClient.Client)
	c.Subscriber = realtime.NewSubscriber(redisClient.Client)
	log.Println("[Container] Redis connected")

	// ========================================
	// STEP 4: SHARED COMPONENTS
	// ========================================
	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	c.AsynqClient = queue.NewClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)

	// ========================================
	// STEP 5: REPOSITORIES
	// ========================================
	c.AuctionRepo = auctionRepo.NewAuctionRepository(db.Pool)
	c.NotificationRepo = notifRepo.NewNotificationRepository(db.Pool)
	c.WatchlistRepo = watchRepo.NewWatchlistRepository(db.Pool)
	c.ProfileRepo = identityRepo.NewUserProfileRepository(db.Pool)

	// ========================================
	// STEP 6: SERVICES
	// ========================================
	c.Dispatcher = notifService.NewDispatcher(c.NotificationRepo, c.AsynqClient)
	c.BiddingService = auctionService.NewBiddingService(
		c.AuctionRepo,
		c.Dispatcher,
		c.Publisher,
		c.Cache,
		c.WatchlistRepo,
		time.Duration(cfg.Jobs.SnapshotTTLSeconds)*time.Second,
	)
	c.ResolutionService = auctionService.NewResolutionService(
		c.AuctionRepo,
		c.Dispatcher,
		c.Publisher,
		c.AsynqClient,
		c.Cache,
		c.WatchlistRepo,
	)
	c.NotificationService = notifService.NewNotificationService(c.NotificationRepo)
	c.WatchlistService = watchService.NewWatchlistService(c.WatchlistRepo, c.AuctionRepo)

	// ========================================
	// STEP 7: HANDLERS
	// ========================================
	c.AuctionHandler = auctionHandler.NewAuctionHandler(c.BiddingService, c.ResolutionService, c.Subscriber)
	c.NotificationHandler = notifHandler.NewNotificationHandler(c.NotificationService)
	c.WatchlistHandler = watchHandler.NewWatchlistHandler(c.WatchlistService)

	log.Println("[Container] Ready")
	return c, nil
}

// Cleanup releases infrastructure connections in reverse order.
func (c *Container) Cleanup() {
	log.Println("[Container] Cleaning up...")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("[Container] Asynq client close failed: %v", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Printf("[Container] Redis close failed: %v", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}

	log.Println("[Container] Done")
}
