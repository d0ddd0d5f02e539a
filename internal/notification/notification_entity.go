package notification

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeSystem = "SYSTEM"
	TypeLeave  = "LEAVE"
	TypeHR     = "HR"
)

const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// Notification is a message addressed to one employee. A recipient gets at most
// one notification with a given title per referenced record.
type Notification struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	RecipientID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_notifications_recipient;uniqueIndex:uq_notifications_reference_recipient_title,priority:2"`
	Title            string     `gorm:"type:varchar(200);not null;uniqueIndex:uq_notifications_reference_recipient_title,priority:3"`
	Message          string     `gorm:"type:text;not null"`
	NotificationType string     `gorm:"type:varchar(20);not null"`
	Priority         string     `gorm:"type:varchar(10);not null;default:'MEDIUM'"`
	IsRead           bool       `gorm:"not null"`
	ReadAt           *time.Time
	ReferenceID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_notifications_reference_recipient_title,priority:1"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (n *Notification) MarkRead(at time.Time) {
	if n.IsRead {
		return
	}
	at = at.UTC()
	n.IsRead = true
	n.ReadAt = &at
}
