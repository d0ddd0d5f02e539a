package leave

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-webtrack/internal/access"
	leaveerrors "go-webtrack/internal/leave/errors"
	"go-webtrack/internal/shared/connection"
	"go-webtrack/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListFilter struct {
	Status      string
	LeaveTypeID string
	EmployeeID  string
	StartFrom   *time.Time
	EndTo       *time.Time
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveRequest, error)
	FindByIDForUpdate(ctx context.Context, companyID, id string) (*LeaveRequest, error)
	List(ctx context.Context, actor access.Actor, scope access.Scope, f ListFilter) ([]LeaveRequest, error)
	CountByStatus(ctx context.Context, actor access.Actor, scope access.Scope, year int) (map[string]int64, error)
	UpdatePending(ctx context.Context, l *LeaveRequest) error
	HasOverlappingPeriod(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time, excludeID *string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: connection.BindTx(r.db, tx)}
}

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&l, "id = ?", id).Error
	return found(&l, err)
}

func (r *repository) FindByIDForUpdate(ctx context.Context, companyID, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(companyID)).
		First(&l, "id = ?", id).Error
	return found(&l, err)
}

func found(l *LeaveRequest, err error) (*LeaveRequest, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, leaveerrors.ErrLeaveRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *repository) visible(ctx context.Context, actor access.Actor, scope access.Scope) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Scopes(tenant.Scope(actor.CompanyID), tenant.Visible(actor, scope, "employee_id"))
}

func (r *repository) List(ctx context.Context, actor access.Actor, scope access.Scope, f ListFilter) ([]LeaveRequest, error) {
	q := r.visible(ctx, actor, scope)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.LeaveTypeID != "" {
		q = q.Where("leave_type_id = ?", f.LeaveTypeID)
	}
	if f.EmployeeID != "" {
		q = q.Where("employee_id = ?", f.EmployeeID)
	}
	if f.StartFrom != nil {
		q = q.Where("start_date >= ?", *f.StartFrom)
	}
	if f.EndTo != nil {
		q = q.Where("end_date <= ?", *f.EndTo)
	}

	var requests []LeaveRequest
	err := q.Order("start_date DESC, created_at DESC").Find(&requests).Error
	return requests, err
}

func (r *repository) CountByStatus(ctx context.Context, actor access.Actor, scope access.Scope, year int) (map[string]int64, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	var rows []struct {
		Status string
		Count  int64
	}
	err := r.visible(ctx, actor, scope).
		Select("status, COUNT(*) AS count").
		Where("start_date >= ? AND start_date < ?", from, to).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// UpdatePending writes l only if the stored row is still pending at the version
// l was read with, then bumps l.Version.
func (r *repository) UpdatePending(ctx context.Context, l *LeaveRequest) error {
	res := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("id = ? AND company_id = ? AND status = ? AND version = ?", l.ID, l.CompanyID, StatusPending, l.Version).
		Updates(map[string]any{
			"leave_type_id":    l.LeaveTypeID,
			"start_date":       l.StartDate,
			"end_date":         l.EndDate,
			"days_requested":   l.DaysRequested,
			"reason":           l.Reason,
			"status":           l.Status,
			"approved_by":      l.ApprovedBy,
			"approval_date":    l.ApprovalDate,
			"rejection_reason": l.RejectionReason,
			"cancelled_at":     l.CancelledAt,
			"version":          l.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return leaveerrors.ErrConcurrentUpdate
	}
	l.Version++
	return nil
}

func (r *repository) HasOverlappingPeriod(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time, excludeID *string) (bool, error) {
	db := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", []string{StatusPending, StatusApproved}).
		Where("NOT (end_date < ? OR start_date > ?)", startDate, endDate)

	if excludeID != nil && *excludeID != "" {
		db = db.Where("id <> ?", *excludeID)
	}

	var count int64
	err := db.Count(&count).Error
	return count > 0, err
}
