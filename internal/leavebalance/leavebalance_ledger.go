package leavebalance

import (
	"context"
	"database/sql"

	leavebalanceerrors "go-webtrack/internal/leavebalance/errors"

	"go.uber.org/zap"
)

// Ledger is the balance view other modules use inside their own transactions.
//
//go:generate mockgen -source=leavebalance_ledger.go -destination=mock/leavebalance_ledger_mock.go -package=mock
type Ledger interface {
	// Balance reads a balance. A nil tx reads outside any transaction.
	Balance(ctx context.Context, tx *sql.Tx, key Key) (*LeaveBalance, error)
	// DebitTx locks the balance row and consumes days. The caller owns tx.
	DebitTx(ctx context.Context, tx *sql.Tx, key Key, days int) (*LeaveBalance, error)
}

type ledger struct {
	repo   Repository
	logger *zap.Logger
}

func NewLedger(repo Repository, logger ...*zap.Logger) Ledger {
	l := zap.L().Named("leavebalance.ledger")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavebalance.ledger")
	}
	return &ledger{repo: repo, logger: l}
}

func (l *ledger) Balance(ctx context.Context, tx *sql.Tx, key Key) (*LeaveBalance, error) {
	repo := l.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	return repo.FindByKey(ctx, key)
}

func (l *ledger) DebitTx(ctx context.Context, tx *sql.Tx, key Key, days int) (*LeaveBalance, error) {
	qtx := l.repo.WithTx(tx)

	b, err := qtx.FindByKeyForUpdate(ctx, key)
	if err != nil {
		return nil, err
	}

	available := b.Available()
	if err := b.Debit(days); err != nil {
		l.logger.Warn("debit rejected",
			zap.String("employee_id", key.EmployeeID),
			zap.String("leave_type_id", key.LeaveTypeID),
			zap.Int("year", key.Year),
			zap.Int("available", available),
			zap.Int("requested", days),
		)
		return nil, err
	}

	ok, err := qtx.ApplyDebit(ctx, b.ID, days)
	if err != nil {
		l.logger.Error("debit write failed", zap.String("leave_balance_id", b.ID.String()), zap.Error(err))
		return nil, err
	}
	if !ok {
		return nil, leavebalanceerrors.InsufficientBalance(available, days)
	}

	l.logger.Info("balance debited",
		zap.String("leave_balance_id", b.ID.String()),
		zap.Int("days", days),
		zap.Int("remaining_days", b.RemainingDays),
	)
	return b, nil
}
