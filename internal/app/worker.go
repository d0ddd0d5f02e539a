package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-webtrack/internal/config"
	"go-webtrack/internal/messaging/kafka"
	"go-webtrack/internal/messaging/kafka/producer"
	"go-webtrack/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker relays outbox events to kafka until interrupted.
func RunWorker(cfg *config.Config) error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, cfg.ConnectRetries)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.KafkaBroker, cfg.ConnectRetries)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	producer.ProcessOutboxEvents(ctx, outboxRepo, kafkaWriter, logger, cfg.OutboxPollInterval)

	logger.Info("worker shut down")
	return nil
}
