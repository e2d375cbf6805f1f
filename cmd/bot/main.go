package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/report-bot/internal/api/http"
	"github.com/spec-kit/report-bot/internal/api/http/handlers"
	"github.com/spec-kit/report-bot/internal/config"
	"github.com/spec-kit/report-bot/internal/events"
	"github.com/spec-kit/report-bot/internal/export"
	"github.com/spec-kit/report-bot/internal/gateway/discord"
	"github.com/spec-kit/report-bot/internal/intake"
	"github.com/spec-kit/report-bot/internal/observability"
	"github.com/spec-kit/report-bot/internal/repository"
	"github.com/spec-kit/report-bot/internal/service"
	"github.com/spec-kit/report-bot/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runtime := observability.NewRuntime()

	session, err := discord.NewSession(cfg.Discord.Token)
	if err != nil {
		logger.Fatal("failed to create discord session", zap.Error(err))
	}
	client := discord.NewClient(session)

	registry := repository.NewReportRegistry()
	tracker := intake.NewTracker(registry)
	store := repository.NewClassificationStore()
	meta := repository.NewReportMetaStore()

	dispatcher := events.NewInMemoryDispatcher(logger)
	publisher := export.NewPublisher(client, store, logger, cfg.Discord.ExportChannelID)

	reportService := service.NewReportService(service.Dependencies{
		Tracker:         tracker,
		Store:           store,
		Meta:            meta,
		Publisher:       publisher,
		Gateway:         client,
		Dispatcher:      dispatcher,
		Runtime:         runtime,
		Logger:          logger,
		ReportChannelID: cfg.Discord.ReportChannelID,
	})

	// Export refresh subscribes before notifications: a classification
	// republishes the export first, then announces itself.
	reportService.RegisterHandlers()
	notificationService := service.NewNotificationService(client, logger)
	notificationService.RegisterHandlers(dispatcher)

	bot := discord.NewBot(session, client, reportService, runtime, logger, cfg.Discord, cfg.Moderation)
	if err := bot.Open(); err != nil {
		logger.Fatal("failed to connect to discord", zap.Error(err))
	}

	keepAlive := worker.NewKeepAliveWorker(
		client, runtime, logger,
		cfg.Discord.ReportChannelID,
		cfg.Worker.HeartbeatInterval, cfg.Worker.KeepAliveInterval,
		bot.Latency, bot.GuildCount,
	)
	go keepAlive.Run(ctx)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger)
	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, runtime, store, bot.Latency, bot.GuildCount)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{Health: healthHandler})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
	if err := bot.Close(); err != nil {
		logger.Warn("discord close", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
