package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-webtrack/internal/access"
	"go-webtrack/internal/config"
	"go-webtrack/internal/employee"
	"go-webtrack/internal/events"
	"go-webtrack/internal/leavebalance"
	"go-webtrack/internal/leavetype"
	"go-webtrack/internal/messaging/kafka/consumer"
	"go-webtrack/internal/notification"
	"go-webtrack/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const consumerGroup = "webtrack-leave"

// RunConsumer provisions balances for new employees and turns leave request
// events into notifications until interrupted.
func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, cfg.ConnectRetries)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	policy, err := access.NewRolePolicy(logger)
	if err != nil {
		return err
	}

	balanceService := leavebalance.NewService(
		sqlDB,
		leavebalance.NewRepository(gormDB),
		employee.NewRepository(gormDB),
		leavetype.NewRepository(gormDB),
		policy,
		logger,
	)
	notificationService := notification.NewService(notification.NewRepository(gormDB), policy, logger)

	employeeReader := newReader(cfg.KafkaBroker, events.EmployeeCreatedTopic, consumerGroup+"-balances")
	defer employeeReader.Close()
	leaveReader := newReader(cfg.KafkaBroker, events.LeaveRequestTopic, consumerGroup+"-notifications")
	defer leaveReader.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		consumer.ConsumeEmployeeLifecycle(ctx, employeeReader, balanceService, logger)
		return nil
	})
	g.Go(func() error {
		consumer.ConsumeLeaveLifecycle(ctx, leaveReader, notificationService, logger)
		return nil
	})
	err = g.Wait()

	logger.Info("consumer shut down")
	return err
}

func newReader(broker, topic, groupID string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          topic,
		GroupID:        groupID,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
}
