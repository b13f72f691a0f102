package bootstrap

import (
	"context"
	"log"

	"voicenotes-be/internal/config"
	"voicenotes-be/internal/controller"
	"voicenotes-be/internal/pkg/logger"
	"voicenotes-be/internal/repository/unitofwork"
	"voicenotes-be/internal/service"
	"voicenotes-be/internal/websocket"
	pktNats "voicenotes-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	NoteController controller.INoteController
	UserController controller.IUserController
	AuthController controller.IAuthController

	// Background services (main.go starts these)
	ConsumerService service.IConsumerService

	WebSocketHub *websocket.Hub

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// In-process event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS is auxiliary: the server runs degraded without it.
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis backs the refresh token store and cross-instance event fan-out
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket hub with its own quiet log file
	wsLogger := logger.NewIsolatedLogger("logs/events.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Services
	publisherService := service.NewPublisherService(cfg.App.NoteEventTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.App.NoteEventTopic, wsHub, wsLogger)

	authService := service.NewAuthService(uowFactory, rdb, cfg.Auth)
	userService := service.NewUserService(uowFactory)
	noteService := service.NewNoteService(uowFactory, publisherService, natsPub, sysLogger)

	return &Container{
		NoteController: controller.NewNoteController(noteService),
		UserController: controller.NewUserController(userService),
		AuthController: controller.NewAuthController(authService),

		ConsumerService: consumerService,
		WebSocketHub:    wsHub,
		Logger:          sysLogger,
	}
}
