package leave

import (
	"time"

	leaveerrors "go-webtrack/internal/leave/errors"

	"github.com/google/uuid"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

const dateLayout = "2006-01-02"

var Statuses = []string{StatusPending, StatusApproved, StatusRejected, StatusCancelled}

type LeaveRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_company_status"`
	EmployeeID  uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_employee_dates"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null"`

	StartDate     time.Time `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	EndDate       time.Time `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	DaysRequested int       `gorm:"type:int;not null"`
	Reason        string    `gorm:"type:text"`

	Status          string     `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_leave_requests_company_status"`
	CreatedBy       uuid.UUID  `gorm:"type:uuid;not null"`
	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	ApprovalDate    *time.Time
	RejectionReason *string `gorm:"type:text"`
	CancelledAt     *time.Time
	Version         int `gorm:"type:int;not null;default:1"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SpanDays counts calendar days from start to end inclusive. It is zero or
// negative when end falls before start.
func SpanDays(start, end time.Time) int {
	return int(truncateDay(end).Sub(truncateDay(start)).Hours()/24) + 1
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (l *LeaveRequest) IsPending() bool {
	return l.Status == StatusPending
}

func (l *LeaveRequest) requirePending() error {
	if !l.IsPending() {
		return leaveerrors.InvalidTransition(l.Status)
	}
	return nil
}

func (l *LeaveRequest) Approve(approver uuid.UUID, at time.Time) error {
	if err := l.requirePending(); err != nil {
		return err
	}
	at = at.UTC()
	l.Status = StatusApproved
	l.ApprovedBy = &approver
	l.ApprovalDate = &at
	l.RejectionReason = nil
	return nil
}

// Reject stores reason exactly as given, including an empty one.
func (l *LeaveRequest) Reject(reason string) error {
	if err := l.requirePending(); err != nil {
		return err
	}
	l.Status = StatusRejected
	l.RejectionReason = &reason
	return nil
}

func (l *LeaveRequest) Cancel(at time.Time) error {
	if err := l.requirePending(); err != nil {
		return err
	}
	at = at.UTC()
	l.Status = StatusCancelled
	l.CancelledAt = &at
	return nil
}

func (l *LeaveRequest) Year() int {
	return l.StartDate.Year()
}
