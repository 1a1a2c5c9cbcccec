package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/redis/go-redis/v9"
	_ "github.com/subosito/gotenv/autoload"
	"go.uber.org/zap"

	"github.com/traveldesk/travel-approval/internal/application/port"
	"github.com/traveldesk/travel-approval/internal/application/service"
	"github.com/traveldesk/travel-approval/internal/config"
	"github.com/traveldesk/travel-approval/internal/handler"
	"github.com/traveldesk/travel-approval/internal/infrastructure/cache"
	"github.com/traveldesk/travel-approval/internal/infrastructure/clock"
	"github.com/traveldesk/travel-approval/internal/infrastructure/notification"
	"github.com/traveldesk/travel-approval/internal/infrastructure/persistence/repository"
	"github.com/traveldesk/travel-approval/internal/infrastructure/persistence/sqlite"
	"github.com/traveldesk/travel-approval/internal/infrastructure/worker"
	"github.com/traveldesk/travel-approval/internal/report"
	"github.com/traveldesk/travel-approval/pkg/database"
	"github.com/traveldesk/travel-approval/pkg/signer"
	"github.com/traveldesk/travel-approval/pkg/token"
	"github.com/traveldesk/travel-approval/pkg/utils"
)

func main() {
	configPath := "configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting travel approval service",
		zap.Int("port", cfg.Server.Port))

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create data directory", zap.Error(err))
		}
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	var appCache port.Cache
	switch cfg.Cache.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		appCache = cache.NewRedisCache(client, logger)
		logger.Info("Using redis cache", zap.String("addr", cfg.Cache.RedisAddr))
	default:
		appCache = cache.NewMemoryCache()
		logger.Info("Using in-memory cache")
	}

	txManager := sqlite.NewDB(db.DB, logger)
	requestRepo := repository.NewTravelRequestRepository(db.DB, appCache, logger)
	userRepo := repository.NewUserRepository(db.DB, logger)
	notificationRepo := repository.NewNotificationRepository(db.DB, logger)

	linkSigner := signer.New(cfg.App.Secret)
	links := notification.NewSignedLinkBuilder(linkSigner, cfg.App.BaseURL, cfg.App.LinkTTL)
	systemClock := clock.NewSystem()
	tokens := token.NewProvider()

	notifier := service.NewNotificationService(userRepo, notificationRepo, logger)
	requestService := service.NewTravelRequestService(
		requestRepo, txManager, notifier, systemClock, tokens, links, logger)

	var mailer port.Mailer
	switch cfg.Mail.Driver {
	case "smtp":
		mailer = notification.NewSMTPMailer(notification.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		}, logger)
	default:
		mailer = notification.NewLogMailer(logger)
	}

	workers := worker.NewManager(logger)
	workers.Register(worker.NewNotificationWorker(worker.NotificationWorkerConfig{
		PollInterval: cfg.Worker.PollInterval,
		BatchSize:    cfg.Worker.BatchSize,
		SendTimeout:  cfg.Worker.SendTimeout,
	}, notificationRepo, userRepo, mailer, logger))

	exporter := report.NewExporter(logger)
	handlers := handler.NewHandlers(requestService, exporter, logger)
	server := handler.NewServer(handler.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, handlers, userRepo, linkSigner, systemClock, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workers.StartAll(ctx); err != nil {
		logger.Fatal("Failed to start workers", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	}

	cancel()
	if err := workers.StopAll(); err != nil {
		logger.Error("Worker shutdown error", zap.Error(err))
	}
	if err := server.Stop(); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server exited")
}
