package leavetype

import (
	"context"
	"database/sql"
	"errors"

	leavetypeerrors "go-webtrack/internal/leavetype/errors"
	"go-webtrack/internal/shared/apperror"
	"go-webtrack/internal/shared/connection"
	"go-webtrack/internal/tenant"

	"gorm.io/gorm"
)

const uniqueNameConstraint = "uq_leave_types_company_name"

//go:generate mockgen -source=leavetype_repo.go -destination=mock/leavetype_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, lt *LeaveType) error
	FindAllByCompany(ctx context.Context, companyID string) ([]LeaveType, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveType, error)
	Update(ctx context.Context, lt *LeaveType) error
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

func (r *repository) Create(ctx context.Context, lt *LeaveType) error {
	return mapWriteError(r.db.WithContext(ctx).Create(lt).Error)
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]LeaveType, error) {
	var types []LeaveType
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("name ASC").
		Find(&types).Error
	return types, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveType, error) {
	var lt LeaveType
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&lt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, leavetypeerrors.ErrLeaveTypeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lt, nil
}

func (r *repository) Update(ctx context.Context, lt *LeaveType) error {
	return mapWriteError(r.db.WithContext(ctx).Save(lt).Error)
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	res := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&LeaveType{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return leavetypeerrors.ErrLeaveTypeNotFound
	}
	return nil
}

func mapWriteError(err error) error {
	if apperror.IsUniqueViolation(err, uniqueNameConstraint) {
		return leavetypeerrors.ErrLeaveTypeNameTaken
	}
	return err
}
