package leavepolicy

import (
	"time"

	"go-webtrack/internal/shared/apperror"

	"github.com/google/uuid"
)

const (
	MaxNoticeDays             = 365
	MaxConsecutiveDaysLimit   = 365
	DefaultMaxConsecutiveDays = 30
)

// LeavePolicy holds the booking rules of one leave type.
type LeavePolicy struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID             uuid.UUID `gorm:"type:uuid;not null;index"`
	LeaveTypeID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_policies_leave_type"`
	MinDaysNotice         int       `gorm:"type:int;not null;default:0"`
	MaxConsecutiveDays    int       `gorm:"type:int;not null;default:30"`
	RequiresApproval      bool      `gorm:"not null"`
	RequiresDocumentation bool      `gorm:"not null"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (p *LeavePolicy) Validate() error {
	if p.LeaveTypeID == uuid.Nil {
		return apperror.RequiredField("Leave Type Id")
	}
	if p.MinDaysNotice < 0 || p.MinDaysNotice > MaxNoticeDays {
		return apperror.OutOfRange("min_days_notice", 0, MaxNoticeDays)
	}
	if p.MaxConsecutiveDays < 1 || p.MaxConsecutiveDays > MaxConsecutiveDaysLimit {
		return apperror.OutOfRange("max_consecutive_days", 1, MaxConsecutiveDaysLimit)
	}
	return nil
}
