package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/screenlink/screenlink/internal/application/config"
	"github.com/screenlink/screenlink/internal/application/constant"
	"github.com/screenlink/screenlink/internal/application/metric"
	"github.com/screenlink/screenlink/internal/infra/adapters/memory"
	"github.com/screenlink/screenlink/internal/infra/ports/http/handlers"
	"github.com/screenlink/screenlink/internal/infra/ports/http/server"
	"github.com/screenlink/screenlink/internal/usecase"
)

func runApp() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	slog.SetDefault(
		slog.New(
			slog.NewJSONHandler(
				os.Stdout,
				&slog.HandlerOptions{Level: slog.LevelInfo},
			),
		),
	)

	cfg, err := config.New()
	if err != nil {
		slog.Error("parse config", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	slog.Info("Running app", slog.Bool("debug", cfg.Debug), slog.Bool("websocket_enabled", cfg.WebsocketEnabled))

	roomRegistry := memory.NewRoomRegistry()
	controlStateRepo := memory.NewControlStateRepository()
	notificationStore := memory.NewNotificationStore(cfg.Notification.Retention)
	wsConnRepo := memory.NewWSConnectionRepository()
	presenceRepo := memory.NewPresenceRepository()

	roomUsecase := usecase.NewRoomUsecase(cfg, roomRegistry, controlStateRepo, wsConnRepo)
	signalingUsecase := usecase.NewSignalingUsecase(roomRegistry, wsConnRepo)
	controlUsecase := usecase.NewControlUsecase(roomRegistry, controlStateRepo, wsConnRepo, notificationStore)
	notificationUsecase := usecase.NewNotificationUsecase(notificationStore, controlUsecase)

	wsHandler := handlers.NewWebSocketHandler(cfg, roomUsecase, signalingUsecase, controlUsecase, wsConnRepo, presenceRepo)
	notificationHandler := handlers.NewNotificationHandler(notificationUsecase)
	statusHandler := handlers.NewStatusHandler(cfg, presenceRepo)
	iceHandler := handlers.NewIceHandler(cfg)

	echoSrv := server.New(cfg, wsHandler, notificationHandler, statusHandler, iceHandler)

	go roomUsecase.RunSweeper(ctx)

	metricSrv := metric.NewServer()
	go func() {
		if err := metricSrv.Start(":" + cfg.MetricsPort); err != nil {
			slog.Error("metrics server failed", slog.Any(constant.Error, err))
		}
	}()

	srvCh := make(chan error, 1)
	go func() {
		srvCh <- echoSrv.Start(":" + cfg.Port)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down server due to context cancel")
	case err := <-srvCh:
		slog.Error(
			"HTTP server failed",
			slog.Any(constant.Error, err),
		)

		os.Exit(1)
	}

	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer timeoutCancel()

	if err := echoSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown server", slog.Any(constant.Error, err))
	}

	if err := metricSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown metrics server", slog.Any(constant.Error, err))
	}
}
