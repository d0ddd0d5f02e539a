package kafka_test

import (
	"context"
	"testing"
	"time"

	"go-webtrack/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

type leavePayload struct {
	LeaveRequestID string `json:"leave_request_id"`
}

func TestNewOutboxEvent(t *testing.T) {
	e, err := kafka.NewOutboxEvent("hr.leave.request.lifecycle.v1", "leave_request", "l1", "leave_request_created", "rid", leavePayload{"l1"})

	assert.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, kafka.OutboxStatusPending, e.Status)
	assert.JSONEq(t, `{"leave_request_id":"l1"}`, string(e.Payload))
	assert.NoError(t, kafka.ValidateOutboxEvent(e))

	_, err = kafka.NewOutboxEvent("t", "a", "1", "e", "", make(chan int))
	assert.Error(t, err)
}

func TestValidateOutboxEvent(t *testing.T) {
	valid, _ := kafka.NewOutboxEvent("topic", "leave_request", "l1", "leave_request_created", "", leavePayload{"l1"})

	tests := []struct {
		name   string
		mutate func(e *kafka.OutboxEvent)
	}{
		{"missing id", func(e *kafka.OutboxEvent) { e.ID = "" }},
		{"missing topic", func(e *kafka.OutboxEvent) { e.Topic = "" }},
		{"missing aggregate", func(e *kafka.OutboxEvent) { e.AggregateID = "" }},
		{"empty payload", func(e *kafka.OutboxEvent) { e.Payload = nil }},
		{"unknown status", func(e *kafka.OutboxEvent) { e.Status = "queued" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			assert.Error(t, kafka.ValidateOutboxEvent(e))
		})
	}
}

func TestOutboxRepository_CreateInTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	event, _ := kafka.NewOutboxEvent("topic", "leave_request", "l1", "leave_request_approved", "", leavePayload{"l1"})

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO outbox_events`).
		WithArgs(event.ID, "", "leave_request", "l1", "leave_request_approved", "topic", event.Payload, kafka.OutboxStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	assert.NoError(t, err)
	assert.NoError(t, kafka.NewOutboxRepository(db).WithTx(tx).Create(context.Background(), event))
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_ListPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM outbox_events`).
		WithArgs(kafka.OutboxStatusPending, kafka.OutboxStatusFailed, 50).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "request_id", "aggregate_type", "aggregate_id", "event_type", "topic", "payload", "status", "retry_count", "next_retry_at",
		}).AddRow("o1", "", "leave_request", "l1", "leave_request_created", "topic", []byte(`{}`), kafka.OutboxStatusFailed, 2, now))

	events, err := kafka.NewOutboxRepository(db).ListPending(context.Background(), 50)

	assert.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, 2, events[0].RetryCount)
	assert.Equal(t, "l1", events[0].AggregateID)
}

func TestOutboxRepository_MarkFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE outbox_events`).
		WithArgs("o1", kafka.OutboxStatusFailed, "broker unavailable", kafka.MaxOutboxAttempts, kafka.OutboxStatusDead).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, kafka.NewOutboxRepository(db).MarkFailed(context.Background(), "o1", "broker unavailable"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
