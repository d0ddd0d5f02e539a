package app

import (
	"go-webtrack/internal/leave"
	"go-webtrack/internal/leavebalance"
	"go-webtrack/internal/leavepolicy"
	"go-webtrack/internal/leavetype"
	"go-webtrack/internal/notification"

	"gorm.io/gorm"
)

// outboxDDL matches the columns the outbox repository reads and writes.
const outboxDDL = `
CREATE TABLE IF NOT EXISTS outbox_events (
	id UUID PRIMARY KEY,
	request_id TEXT,
	aggregate_type VARCHAR(64) NOT NULL,
	aggregate_id UUID NOT NULL,
	event_type VARCHAR(64) NOT NULL,
	topic VARCHAR(255) NOT NULL,
	payload JSONB NOT NULL,
	status VARCHAR(16) NOT NULL DEFAULT 'pending',
	retry_count INT NOT NULL DEFAULT 0,
	error_message TEXT,
	next_retry_at TIMESTAMPTZ,
	processed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_outbox_events_status_retry ON outbox_events (status, next_retry_at, created_at);
`

// migrate creates the tables this service owns. The employees table belongs
// to the wider HR system and is only read here.
func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&leavetype.LeaveType{},
		&leavepolicy.LeavePolicy{},
		&leavebalance.LeaveBalance{},
		&leave.LeaveRequest{},
		&notification.Notification{},
	); err != nil {
		return err
	}
	return db.Exec(outboxDDL).Error
}
