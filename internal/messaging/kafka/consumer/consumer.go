package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-webtrack/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumers need. Offsets are
// committed by hand once a message has been handled.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type BalanceProvisioner interface {
	ProvisionForEmployee(ctx context.Context, companyID, employeeID string, year int) (int64, error)
}

type LeaveNotifier interface {
	NotifyLeaveEvent(ctx context.Context, evt events.LeaveRequestEvent) (int64, error)
}

// errSkip marks a message that can never be handled. It is committed so the
// partition moves on.
var errSkip = errors.New("skip message")

type handleFunc func(ctx context.Context, msg kafkago.Message, log *zap.Logger) error

func run(ctx context.Context, reader MessageReader, log *zap.Logger, name string, handle handleFunc) {
	log.Info(name + " consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info(name + " consumer stopped")
				return
			}
			log.Error("fetch "+name+" message failed", zap.Error(err))
			continue
		}

		msgLog := log.With(
			zap.String("topic", msg.Topic),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
		)
		if err := handle(ctx, msg, msgLog); err != nil {
			if !errors.Is(err, errSkip) {
				msgLog.Error("handle "+name+" message failed", zap.Error(err))
				continue
			}
			msgLog.Warn("skipping "+name+" message", zap.Error(err))
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			msgLog.Error("commit "+name+" message failed", zap.Error(err))
		}
	}
}

func ConsumeEmployeeLifecycle(
	ctx context.Context,
	reader MessageReader,
	balances BalanceProvisioner,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.employee_lifecycle")
	run(ctx, reader, log, "employee lifecycle", func(ctx context.Context, msg kafkago.Message, log *zap.Logger) error {
		var event events.EmployeeCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("%w: decode employee event: %v", errSkip, err)
		}
		if event.EventType != events.EventEmployeeCreated {
			log.Debug("ignoring employee event", zap.String("event_type", event.EventType))
			return nil
		}

		created, err := balances.ProvisionForEmployee(ctx, event.CompanyID, event.EmployeeID, event.HireYear)
		if err != nil {
			return err
		}

		log.Info("leave balances provisioned from employee_created event",
			zap.String("employee_id", event.EmployeeID),
			zap.String("company_id", event.CompanyID),
			zap.Int64("created", created),
		)
		return nil
	})
}

func ConsumeLeaveLifecycle(
	ctx context.Context,
	reader MessageReader,
	notifier LeaveNotifier,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_lifecycle")
	run(ctx, reader, log, "leave lifecycle", func(ctx context.Context, msg kafkago.Message, log *zap.Logger) error {
		var event events.LeaveRequestEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("%w: decode leave event: %v", errSkip, err)
		}
		if event.LeaveRequestID == "" {
			return fmt.Errorf("%w: leave event without leave_request_id", errSkip)
		}

		created, err := notifier.NotifyLeaveEvent(ctx, event)
		if err != nil {
			return err
		}

		log.Info("leave event handled",
			zap.String("event_type", event.EventType),
			zap.String("leave_request_id", event.LeaveRequestID),
			zap.Int64("notifications", created),
		)
		return nil
	})
}
