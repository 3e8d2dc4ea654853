package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mediacareers/membership-service/internal/config"
	libRabbitmq "github.com/mediacareers/membership-service/internal/lib/rabbitmq"
	"github.com/mediacareers/membership-service/internal/lib/sl"
	"github.com/mediacareers/membership-service/internal/lib/smtp"
	"github.com/mediacareers/membership-service/internal/rabbitmq"
	services "github.com/mediacareers/membership-service/internal/services/sender"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("starting notification-sender", slog.String("env", cfg.Env))

	conn, err := rabbitmq.Connect(cfg.RabbitConnectionString, 5, 3*time.Second)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("success to connect to RabbitMQ")
	defer func() {
		_ = conn.Close()
	}()

	queues := libRabbitmq.GetNotificationQueues()
	ch, err := libRabbitmq.SetupChannel(conn, queues)
	if err != nil {
		logger.Error("failed to setup RabbitMQ channel", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("success to setup RabbitMQ channel")
	defer func() {
		_ = ch.Close()
	}()

	transport := smtp.NewTransport(cfg, logger)
	senderService := services.NewSenderService(logger, transport)

	if err = rabbitmq.ConsumerMessage(ctx, ch, "notifications.welcome", senderService.SendWelcomeEmail); err != nil {
		logger.Error("failed to start welcome consumer", sl.Err(err))
		os.Exit(1)
	}
	if err = rabbitmq.ConsumerMessage(ctx, ch, "notifications.application", senderService.SendApplicationConfirmation); err != nil {
		logger.Error("failed to start application consumer", sl.Err(err))
		os.Exit(1)
	}

	<-ctx.Done()

	logger.Info("notification sender shutting down gracefully")
}
