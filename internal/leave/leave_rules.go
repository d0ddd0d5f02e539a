package leave

import (
	"context"
	"database/sql"
	"time"

	leaveerrors "go-webtrack/internal/leave/errors"
	"go-webtrack/internal/leavebalance"
	leavebalanceerrors "go-webtrack/internal/leavebalance/errors"
)

type draft struct {
	companyID   string
	employeeID  string
	leaveTypeID string
	start       time.Time
	end         time.Time
}

// validate checks a request in a fixed order and stops at the first failure:
// leave type, policy, date range, maximum span, notice, then the current
// year's balance. Overlap with the employee's live requests is checked last.
// It returns the number of days the request covers.
func (s *service) validate(ctx context.Context, tx *sql.Tx, d draft, excludeID *string) (int, error) {
	if _, err := s.types.WithTx(tx).FindByIDAndCompany(ctx, d.companyID, d.leaveTypeID); err != nil {
		return 0, err
	}

	policy, err := s.policies.WithTx(tx).FindByLeaveType(ctx, d.companyID, d.leaveTypeID)
	if err != nil {
		return 0, err
	}

	days := SpanDays(d.start, d.end)
	if d.end.Before(d.start) || days <= 0 {
		return 0, leaveerrors.ErrInvalidRange
	}

	if days > policy.MaxConsecutiveDays {
		return 0, leaveerrors.MaxConsecutiveExceeded(policy.MaxConsecutiveDays, days)
	}

	today := truncateDay(s.now())
	notice := int(truncateDay(d.start).Sub(today).Hours() / 24)
	if notice < policy.MinDaysNotice {
		return 0, leaveerrors.InsufficientNotice(policy.MinDaysNotice, notice)
	}

	balance, err := s.ledger.Balance(ctx, tx, leavebalance.Key{
		CompanyID:   d.companyID,
		EmployeeID:  d.employeeID,
		LeaveTypeID: d.leaveTypeID,
		Year:        today.Year(),
	})
	if err != nil {
		return 0, err
	}
	if balance.RemainingDays < days {
		return 0, leavebalanceerrors.InsufficientBalance(balance.RemainingDays, days)
	}

	overlap, err := s.repo.WithTx(tx).HasOverlappingPeriod(ctx, d.companyID, d.employeeID, d.start, d.end, excludeID)
	if err != nil {
		return 0, err
	}
	if overlap {
		return 0, leaveerrors.ErrLeaveOverlap
	}

	return days, nil
}
