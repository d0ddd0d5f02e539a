package leavebalance

import (
	"time"

	leavebalanceerrors "go-webtrack/internal/leavebalance/errors"
	"go-webtrack/internal/shared/apperror"

	"github.com/google/uuid"
)

const MaxDays = 365

// Key identifies the single balance row of an employee for a leave type and year.
type Key struct {
	CompanyID   string
	EmployeeID  string
	LeaveTypeID string
	Year        int
}

// LeaveBalance is one ledger row. RemainingDays is derived; only recompute writes it.
type LeaveBalance struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balances_employee_type_year,priority:1"`
	EmployeeID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balances_employee_type_year,priority:2"`
	LeaveTypeID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balances_employee_type_year,priority:3"`
	Year          int       `gorm:"type:int;not null;uniqueIndex:uq_leave_balances_employee_type_year,priority:4"`
	TotalDays     int       `gorm:"type:int;not null"`
	UsedDays      int       `gorm:"type:int;not null"`
	RemainingDays int       `gorm:"type:int;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewLeaveBalance(companyID, employeeID, leaveTypeID uuid.UUID, year, totalDays int) *LeaveBalance {
	b := &LeaveBalance{
		ID:          uuid.New(),
		CompanyID:   companyID,
		EmployeeID:  employeeID,
		LeaveTypeID: leaveTypeID,
		Year:        year,
		TotalDays:   totalDays,
	}
	b.recompute()
	return b
}

func (b *LeaveBalance) recompute() {
	b.RemainingDays = b.TotalDays - b.UsedDays
}

func (b *LeaveBalance) Key() Key {
	return Key{
		CompanyID:   b.CompanyID.String(),
		EmployeeID:  b.EmployeeID.String(),
		LeaveTypeID: b.LeaveTypeID.String(),
		Year:        b.Year,
	}
}

func (b *LeaveBalance) Available() int {
	return b.TotalDays - b.UsedDays
}

// Covers reports whether days can be taken without going negative.
func (b *LeaveBalance) Covers(days int) bool {
	return b.Available() >= days
}

// Debit consumes days from the balance.
func (b *LeaveBalance) Debit(days int) error {
	if days <= 0 || days > MaxDays {
		return apperror.OutOfRange("days", 1, MaxDays)
	}
	if !b.Covers(days) {
		return leavebalanceerrors.InsufficientBalance(b.Available(), days)
	}
	b.UsedDays += days
	b.recompute()
	return nil
}

// Adjust replaces the entitlement and consumption figures.
func (b *LeaveBalance) Adjust(totalDays, usedDays int) error {
	if totalDays < 0 || totalDays > MaxDays {
		return apperror.OutOfRange("total_days", 0, MaxDays)
	}
	if usedDays < 0 || usedDays > MaxDays {
		return apperror.OutOfRange("used_days", 0, MaxDays)
	}
	if usedDays > totalDays {
		return leavebalanceerrors.ErrUsedExceedsTotal
	}
	b.TotalDays = totalDays
	b.UsedDays = usedDays
	b.recompute()
	return nil
}
