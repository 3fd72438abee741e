package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"fundocs-be/internal/config"
	"fundocs-be/internal/controller"
	"fundocs-be/internal/handler"
	"fundocs-be/internal/pkg/logger"
	"fundocs-be/internal/pkg/mailer"
	"fundocs-be/internal/pkg/serverutils"
	"fundocs-be/internal/repository/cache"
	"fundocs-be/internal/repository/unitofwork"
	"fundocs-be/internal/service"
	"fundocs-be/internal/websocket"
	"fundocs-be/pkg/avatar"
	"fundocs-be/pkg/catalog"
	"fundocs-be/pkg/contentapi"
	"fundocs-be/pkg/reportpdf"
	"fundocs-be/pkg/storage"

	pktNats "fundocs-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	OAuthController    controller.IOAuthController
	UserController     controller.IUserController
	DocumentController controller.IDocumentController
	ProgressController controller.IProgressController
	TipController      controller.ITipController
	ReportController   controller.IReportController
	ExploreController  controller.IExploreController

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	// Background workers, started by Start
	ConsumerService     service.IConsumerService
	NotificationService *service.NotificationService
	Janitor             *service.JanitorService

	Logger logger.ILogger

	pubSub  *gochannel.GoChannel
	natsPub *pktNats.Publisher
	natsSub *pktNats.Subscriber
	rdb     *redis.Client
}

// connectRedis returns nil when redis is unreachable; callers fall back to
// in-process behavior.
func connectRedis(ctx context.Context, url string, log logger.ILogger) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("Bootstrap", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("Bootstrap", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func newProgressCache(cfg config.CacheConfig, rdb *redis.Client, log logger.ILogger) cache.ProgressCache {
	switch strings.ToLower(cfg.Driver) {
	case "redis":
		if rdb != nil {
			return cache.NewRedisProgressCache(rdb, cfg.TTL, log)
		}
		log.Warn("Bootstrap", "Redis cache requested but unavailable, using memory", nil)
		return cache.NewMemoryProgressCache(cfg.TTL)
	case "none":
		return cache.NopProgressCache{}
	default:
		return cache.NewMemoryProgressCache(cfg.TTL)
	}
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	serverutils.SetErrorLogger(sysLogger)
	uowFactory := unitofwork.NewRepositoryFactory(db)

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.App.ClientURL,
		sysLogger,
	)

	api := contentapi.New(contentapi.Config{
		BaseURL:       cfg.ContentAPI.BaseURL,
		Timeout:       cfg.ContentAPI.Timeout,
		RatePerSecond: cfg.ContentAPI.RatePerSecond,
		Burst:         cfg.ContentAPI.Burst,
	})

	store, err := storage.New(ctx, storage.Config{
		Driver:        cfg.Storage.Driver,
		LocalDir:      cfg.Storage.LocalDir,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
		S3Bucket:      cfg.Storage.S3Bucket,
		S3Region:      cfg.Storage.S3Region,
		GCSBucket:     cfg.Storage.GCSBucket,
		GCSCredsFile:  cfg.Storage.GCSCredsFile,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	avatarGen, err := avatar.NewGenerator()
	if err != nil {
		return nil, fmt.Errorf("avatar generator: %w", err)
	}
	renderer, err := reportpdf.New()
	if err != nil {
		return nil, fmt.Errorf("report renderer: %w", err)
	}
	exploreCatalog, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("explore catalog: %w", err)
	}

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)

	// NATS is optional; without it events are dropped and realtime
	// notifications are disabled.
	var (
		natsPub *pktNats.Publisher
		natsSub *pktNats.Subscriber
	)
	if cfg.App.NatsURL != "" {
		if natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL, sysLogger); err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		}
		if natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger); err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to NATS Subscriber", map[string]interface{}{"error": err.Error()})
		}
	}
	var eventPublisher service.EventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}

	rdb := connectRedis(ctx, cfg.App.RedisURL, sysLogger)

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.RealtimeLogPath)
	wsHub := websocket.NewHub(rdb, wsLogger)

	// 3. Services
	sessionCache := cache.NewSessionCache(cfg.Auth.TokenTTL)
	sessions := service.NewSessionManager(uowFactory, sessionCache, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	avatarService := service.NewAvatarService(store, avatarGen, sysLogger)

	progressCache := newProgressCache(cfg.Cache, rdb, sysLogger)
	progressService := service.NewProgressService(uowFactory, api, progressCache, sysLogger)

	publisherService := service.NewPublisherService(service.ProgressRefreshTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, service.ProgressRefreshTopic, progressService, sysLogger)

	authService := service.NewAuthService(
		uowFactory,
		sessions,
		avatarService,
		emailService,
		eventPublisher,
		cfg.Auth.VerificationTTL,
		sysLogger,
	)
	oauthService := service.NewOAuthService(uowFactory, sessions, cfg.OAuth, sysLogger)
	documentService := service.NewDocumentService(api, progressService, publisherService, eventPublisher, sysLogger)
	tipService := service.NewTipService(uowFactory, eventPublisher, sysLogger)
	reportService := service.NewReportService(api, renderer, sysLogger)
	exploreService := service.NewExploreService(exploreCatalog)
	userService := service.NewUserService(
		uowFactory,
		api,
		documentService,
		progressService,
		avatarService,
		sessions,
		sysLogger,
	)

	// 3.5 Notification System Infrastructure
	notifService := service.NewNotificationService(natsSub, wsHub, wsLogger) // Hub implements NotificationDelivery
	janitor := service.NewJanitorService(uowFactory, sysLogger)

	// 4. Controllers
	gate := serverutils.NewSessionGate(authService)

	return &Container{
		AuthController:      controller.NewAuthController(authService, gate),
		OAuthController:     controller.NewOAuthController(oauthService, cfg.App.ClientURL, sysLogger),
		UserController:      controller.NewUserController(userService, gate),
		DocumentController:  controller.NewDocumentController(documentService, gate),
		ProgressController:  controller.NewProgressController(progressService, gate),
		TipController:       controller.NewTipController(tipService, gate),
		ReportController:    controller.NewReportController(reportService, gate),
		ExploreController:   controller.NewExploreController(exploreService),
		NotificationHandler: handler.NewNotificationHandler(wsHub, gate, wsLogger),
		WebSocketHub:        wsHub,

		ConsumerService:     consumerService,
		NotificationService: notifService,
		Janitor:             janitor,
		Logger:              sysLogger,

		pubSub:  pubSub,
		natsPub: natsPub,
		natsSub: natsSub,
		rdb:     rdb,
	}, nil
}

// Start launches the background workers. They stop when ctx is cancelled.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)

	if err := c.ConsumerService.Consume(ctx); err != nil {
		return fmt.Errorf("progress consumer: %w", err)
	}

	c.NotificationService.Start(ctx)

	if err := c.Janitor.Start(); err != nil {
		return fmt.Errorf("janitor: %w", err)
	}
	return nil
}

func (c *Container) Close() {
	c.Janitor.Stop()
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if err := c.pubSub.Close(); err != nil {
		c.Logger.Warn("Bootstrap", "Failed to close event bus", map[string]interface{}{"error": err.Error()})
	}
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
	_ = c.Logger.Sync()
}
