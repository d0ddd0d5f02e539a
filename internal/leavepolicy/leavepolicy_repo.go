package leavepolicy

import (
	"context"
	"database/sql"
	"errors"

	leavepolicyerrors "go-webtrack/internal/leavepolicy/errors"
	"go-webtrack/internal/shared/apperror"
	"go-webtrack/internal/shared/connection"
	"go-webtrack/internal/tenant"

	"gorm.io/gorm"
)

const uniqueLeaveTypeConstraint = "uq_leave_policies_leave_type"

//go:generate mockgen -source=leavepolicy_repo.go -destination=mock/leavepolicy_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, p *LeavePolicy) error
	FindAllByCompany(ctx context.Context, companyID string) ([]LeavePolicy, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeavePolicy, error)
	FindByLeaveType(ctx context.Context, companyID, leaveTypeID string) (*LeavePolicy, error)
	Update(ctx context.Context, p *LeavePolicy) error
	Delete(ctx context.Context, companyID, id string) error
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

func (r *repository) Create(ctx context.Context, p *LeavePolicy) error {
	return mapWriteError(r.db.WithContext(ctx).Create(p).Error)
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]LeavePolicy, error) {
	var policies []LeavePolicy
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("created_at ASC").
		Find(&policies).Error
	return policies, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeavePolicy, error) {
	return r.first(ctx, companyID, "id = ?", id)
}

func (r *repository) FindByLeaveType(ctx context.Context, companyID, leaveTypeID string) (*LeavePolicy, error) {
	return r.first(ctx, companyID, "leave_type_id = ?", leaveTypeID)
}

func (r *repository) first(ctx context.Context, companyID string, query string, arg string) (*LeavePolicy, error) {
	var p LeavePolicy
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&p, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, leavepolicyerrors.ErrLeavePolicyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Update(ctx context.Context, p *LeavePolicy) error {
	return mapWriteError(r.db.WithContext(ctx).Save(p).Error)
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	res := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&LeavePolicy{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return leavepolicyerrors.ErrLeavePolicyNotFound
	}
	return nil
}

func mapWriteError(err error) error {
	if apperror.IsUniqueViolation(err, uniqueLeaveTypeConstraint) {
		return leavepolicyerrors.ErrLeavePolicyExists
	}
	return err
}
