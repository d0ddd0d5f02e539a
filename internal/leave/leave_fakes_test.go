package leave_test

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"go-webtrack/internal/access"
	"go-webtrack/internal/leave"
	leaveerrors "go-webtrack/internal/leave/errors"
	"go-webtrack/internal/leavebalance"
	leavebalanceerrors "go-webtrack/internal/leavebalance/errors"

	"github.com/google/uuid"
)

// fakeRepo keeps leave requests in memory and enforces the same pending/version
// guard as the SQL repository.
type fakeRepo struct {
	mu          sync.Mutex
	rows        map[uuid.UUID]leave.LeaveRequest
	overlap     bool
	lastScope   access.Scope
	lastFilter  leave.ListFilter
	beforeWrite func(id uuid.UUID)
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[uuid.UUID]leave.LeaveRequest)}
}

func (f *fakeRepo) WithTx(*sql.Tx) leave.Repository { return f }

func (f *fakeRepo) Create(_ context.Context, l *leave.LeaveRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[l.ID] = *l
	return nil
}

func (f *fakeRepo) get(companyID, id string) (*leave.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, leaveerrors.ErrLeaveRequestNotFound
	}
	l, ok := f.rows[parsed]
	if !ok || l.CompanyID.String() != companyID {
		return nil, leaveerrors.ErrLeaveRequestNotFound
	}
	return &l, nil
}

func (f *fakeRepo) FindByIDAndCompany(_ context.Context, companyID, id string) (*leave.LeaveRequest, error) {
	return f.get(companyID, id)
}

func (f *fakeRepo) FindByIDForUpdate(_ context.Context, companyID, id string) (*leave.LeaveRequest, error) {
	return f.get(companyID, id)
}

func (f *fakeRepo) List(_ context.Context, actor access.Actor, scope access.Scope, filter leave.ListFilter) ([]leave.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastScope = scope
	f.lastFilter = filter
	var out []leave.LeaveRequest
	for _, l := range f.rows {
		if l.CompanyID.String() == actor.CompanyID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountByStatus(_ context.Context, actor access.Actor, scope access.Scope, year int) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastScope = scope
	counts := map[string]int64{}
	for _, l := range f.rows {
		if l.CompanyID.String() == actor.CompanyID && l.StartDate.Year() == year {
			counts[l.Status]++
		}
	}
	return counts, nil
}

func (f *fakeRepo) UpdatePending(_ context.Context, l *leave.LeaveRequest) error {
	if f.beforeWrite != nil {
		f.beforeWrite(l.ID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.rows[l.ID]
	if !ok || stored.Status != leave.StatusPending || stored.Version != l.Version {
		return leaveerrors.ErrConcurrentUpdate
	}
	l.Version++
	f.rows[l.ID] = *l
	return nil
}

func (f *fakeRepo) HasOverlappingPeriod(context.Context, string, string, time.Time, time.Time, *string) (bool, error) {
	return f.overlap, nil
}

func (f *fakeRepo) stored(id string) leave.LeaveRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[uuid.MustParse(id)]
}

// fakeLedger debits balances in memory through the entity rules.
type fakeLedger struct {
	mu       sync.Mutex
	balances map[leavebalance.Key]*leavebalance.LeaveBalance
	debits   int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: make(map[leavebalance.Key]*leavebalance.LeaveBalance)}
}

func (f *fakeLedger) put(key leavebalance.Key, total, used int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := leavebalance.NewLeaveBalance(uuid.MustParse(key.CompanyID), uuid.MustParse(key.EmployeeID), uuid.MustParse(key.LeaveTypeID), key.Year, total)
	if used > 0 {
		_ = b.Debit(used)
	}
	f.balances[key] = b
}

func (f *fakeLedger) get(key leavebalance.Key) leavebalance.LeaveBalance {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.balances[key]
}

func (f *fakeLedger) Balance(_ context.Context, _ *sql.Tx, key leavebalance.Key) (*leavebalance.LeaveBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.balances[key]
	if !ok {
		return nil, leavebalanceerrors.ErrLeaveBalanceNotFound
	}
	c := *b
	return &c, nil
}

func (f *fakeLedger) DebitTx(_ context.Context, _ *sql.Tx, key leavebalance.Key, days int) (*leavebalance.LeaveBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.balances[key]
	if !ok {
		return nil, leavebalanceerrors.ErrLeaveBalanceNotFound
	}
	c := *b
	if err := c.Debit(days); err != nil {
		return nil, err
	}
	*b = c
	f.debits++
	return &c, nil
}
