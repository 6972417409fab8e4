package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/dantegr/pickndeal-backend/internal/config"
	"github.com/dantegr/pickndeal-backend/internal/database"
	"github.com/dantegr/pickndeal-backend/internal/events"
	"github.com/dantegr/pickndeal-backend/internal/handlers"
	"github.com/dantegr/pickndeal-backend/internal/logger"
	"github.com/dantegr/pickndeal-backend/internal/middleware"
	"github.com/dantegr/pickndeal-backend/internal/presence"
	"github.com/dantegr/pickndeal-backend/internal/repository"
	"github.com/dantegr/pickndeal-backend/internal/routes"
	"github.com/dantegr/pickndeal-backend/internal/service"
	"github.com/dantegr/pickndeal-backend/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	zlog, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, client, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database, zlog)
	if err != nil {
		zlog.Fatalf("mongo init: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	var status *presence.StatusStore
	if cfg.Redis.Addr != "" {
		rdb, err := database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			zlog.Fatalf("redis init: %v", err)
		}
		defer rdb.Close()
		status = presence.NewStatusStore(rdb, cfg.Redis.Prefix, zlog)
	}

	var producer events.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicMessages)
		defer func() { _ = producer.Close() }()
	}

	chatRepo := repository.NewMongoChatRepository(db)
	notifRepo := repository.NewMongoNotificationRepository(db)
	userRepo := repository.NewMongoUserRepository(db)

	registry := presence.NewRegistry()
	gateway := ws.NewGateway(chatRepo, notifRepo, userRepo, registry, status, producer, cfg, zlog)

	chatSvc := service.NewChatService(chatRepo, userRepo, zlog)
	notifSvc := service.NewNotificationService(notifRepo)

	app := fiber.New(fiber.Config{DisableStartupMessage: cfg.App.Env != "development"})
	app.Use(middleware.Recovery(zlog))
	app.Use(middleware.RequestLogger(zlog))

	routes.Register(app, cfg, gateway,
		handlers.NewChatHandler(chatSvc, zlog),
		handlers.NewNotificationHandler(notifSvc, zlog),
	)

	errs := make(chan error, 1)
	go func() {
		zlog.Infof("chat backend listening on :%s", cfg.App.Port)
		errs <- app.Listen(":" + cfg.App.Port)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errs:
		zlog.Fatalf("server error: %v", err)
	case s := <-sig:
		zlog.Infof("signal received: %v", s)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		zlog.Warnf("shutdown: %v", err)
	}
	zlog.Info("chat backend stopped")
}
