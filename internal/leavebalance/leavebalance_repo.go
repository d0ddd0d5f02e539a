package leavebalance

import (
	"context"
	"database/sql"
	"errors"

	"go-webtrack/internal/access"
	leavebalanceerrors "go-webtrack/internal/leavebalance/errors"
	"go-webtrack/internal/shared/apperror"
	"go-webtrack/internal/shared/connection"
	"go-webtrack/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueKeyConstraint = "uq_leave_balances_employee_type_year"

type ListFilter struct {
	EmployeeID  string
	LeaveTypeID string
	Year        int
}

type Totals struct {
	TotalDays     int
	UsedDays      int
	RemainingDays int
}

//go:generate mockgen -source=leavebalance_repo.go -destination=mock/leavebalance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, b *LeaveBalance) error
	FindByKey(ctx context.Context, key Key) (*LeaveBalance, error)
	FindByKeyForUpdate(ctx context.Context, key Key) (*LeaveBalance, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveBalance, error)
	FindByIDForUpdate(ctx context.Context, companyID, id string) (*LeaveBalance, error)
	List(ctx context.Context, actor access.Actor, scope access.Scope, f ListFilter) ([]LeaveBalance, error)
	Sum(ctx context.Context, actor access.Actor, scope access.Scope, f ListFilter) (Totals, error)
	ApplyDebit(ctx context.Context, id uuid.UUID, days int) (bool, error)
	Update(ctx context.Context, b *LeaveBalance) error
	Delete(ctx context.Context, companyID, id string) error
	InsertMissing(ctx context.Context, balances []LeaveBalance) (int64, error)
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

func (r *repository) Create(ctx context.Context, b *LeaveBalance) error {
	err := r.db.WithContext(ctx).Create(b).Error
	if apperror.IsUniqueViolation(err, uniqueKeyConstraint) {
		return leavebalanceerrors.ErrLeaveBalanceExists
	}
	return err
}

func byKey(key Key) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Scopes(tenant.Scope(key.CompanyID)).
			Where("employee_id = ? AND leave_type_id = ? AND year = ?", key.EmployeeID, key.LeaveTypeID, key.Year)
	}
}

func (r *repository) FindByKey(ctx context.Context, key Key) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).Scopes(byKey(key)).First(&b).Error
	return found(&b, err)
}

func (r *repository) FindByKeyForUpdate(ctx context.Context, key Key) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(byKey(key)).
		First(&b).Error
	return found(&b, err)
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&b, "id = ?", id).Error
	return found(&b, err)
}

func (r *repository) FindByIDForUpdate(ctx context.Context, companyID, id string) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(companyID)).
		First(&b, "id = ?", id).Error
	return found(&b, err)
}

func found(b *LeaveBalance, err error) (*LeaveBalance, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, leavebalanceerrors.ErrLeaveBalanceNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repository) filtered(ctx context.Context, actor access.Actor, scope access.Scope, f ListFilter) *gorm.DB {
	q := r.db.WithContext(ctx).
		Model(&LeaveBalance{}).
		Scopes(tenant.Scope(actor.CompanyID), tenant.Visible(actor, scope, "employee_id"))
	if f.EmployeeID != "" {
		q = q.Where("employee_id = ?", f.EmployeeID)
	}
	if f.LeaveTypeID != "" {
		q = q.Where("leave_type_id = ?", f.LeaveTypeID)
	}
	if f.Year != 0 {
		q = q.Where("year = ?", f.Year)
	}
	return q
}

func (r *repository) List(ctx context.Context, actor access.Actor, scope access.Scope, f ListFilter) ([]LeaveBalance, error) {
	var balances []LeaveBalance
	err := r.filtered(ctx, actor, scope, f).
		Order("year DESC, employee_id ASC, leave_type_id ASC").
		Find(&balances).Error
	return balances, err
}

func (r *repository) Sum(ctx context.Context, actor access.Actor, scope access.Scope, f ListFilter) (Totals, error) {
	var t Totals
	err := r.filtered(ctx, actor, scope, f).
		Select("COALESCE(SUM(total_days), 0) AS total_days, " +
			"COALESCE(SUM(used_days), 0) AS used_days, " +
			"COALESCE(SUM(remaining_days), 0) AS remaining_days").
		Scan(&t).Error
	return t, err
}

// ApplyDebit moves days from remaining to used only while the row still covers them.
// It reports false when the guard rejected the write.
func (r *repository) ApplyDebit(ctx context.Context, id uuid.UUID, days int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE leave_balances
		SET used_days = used_days + ?, remaining_days = total_days - (used_days + ?), updated_at = NOW()
		WHERE id = ? AND total_days - used_days >= ?`,
		days, days, id, days,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) Update(ctx context.Context, b *LeaveBalance) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	res := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&LeaveBalance{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return leavebalanceerrors.ErrLeaveBalanceNotFound
	}
	return nil
}

// InsertMissing creates the given rows, skipping any key that already has a balance.
func (r *repository) InsertMissing(ctx context.Context, balances []LeaveBalance) (int64, error) {
	if len(balances) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "company_id"}, {Name: "employee_id"}, {Name: "leave_type_id"}, {Name: "year"},
			},
			DoNothing: true,
		}).
		CreateInBatches(balances, 200)
	return res.RowsAffected, res.Error
}
