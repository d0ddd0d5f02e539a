package leavepolicy

import (
	"context"
	"database/sql"
	"time"

	"go-webtrack/internal/access"
	leavepolicyerrors "go-webtrack/internal/leavepolicy/errors"
	"go-webtrack/internal/leavetype"
	"go-webtrack/internal/shared/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=leavepolicy_service.go -destination=mock/leavepolicy_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor access.Actor, req CreateLeavePolicyRequest) (LeavePolicyResponse, error)
	GetAll(ctx context.Context, actor access.Actor) ([]LeavePolicyResponse, error)
	GetByID(ctx context.Context, actor access.Actor, id string) (LeavePolicyResponse, error)
	GetByLeaveType(ctx context.Context, actor access.Actor, leaveTypeID string) (LeavePolicyResponse, error)
	Update(ctx context.Context, actor access.Actor, id string, req UpdateLeavePolicyRequest) (LeavePolicyResponse, error)
	Patch(ctx context.Context, actor access.Actor, id string, req PatchLeavePolicyRequest) (LeavePolicyResponse, error)
	Delete(ctx context.Context, actor access.Actor, id string) error
}

type service struct {
	db       *sql.DB
	repo     Repository
	typeRepo leavetype.Repository
	policy   access.Policy
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, typeRepo leavetype.Repository, policy access.Policy, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavepolicy.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavepolicy.service")
	}
	return &service{db: db, repo: repo, typeRepo: typeRepo, policy: policy, logger: l}
}

func (s *service) authorize(actor access.Actor, action access.Action) error {
	if !s.policy.CanMutate(actor, action, access.Resource{Kind: access.KindLeavePolicy}) {
		s.logger.Warn("leave policy access denied",
			zap.String("employee_id", actor.EmployeeID),
			zap.String("action", string(action)),
		)
		return apperror.ErrForbidden
	}
	return nil
}

func (s *service) canRead(actor access.Actor) error {
	if s.policy.Scope(actor, access.KindLeavePolicy) == access.ScopeNone {
		return apperror.ErrForbidden
	}
	return nil
}

func (s *service) Create(ctx context.Context, actor access.Actor, req CreateLeavePolicyRequest) (LeavePolicyResponse, error) {
	if err := s.authorize(actor, access.ActionCreate); err != nil {
		return LeavePolicyResponse{}, err
	}
	companyID, err := uuid.Parse(actor.CompanyID)
	if err != nil {
		return LeavePolicyResponse{}, leavepolicyerrors.ErrInvalidCompanyID
	}
	leaveTypeID, err := uuid.Parse(req.LeaveTypeID)
	if err != nil {
		return LeavePolicyResponse{}, leavepolicyerrors.ErrInvalidLeaveTypeID
	}

	p := &LeavePolicy{
		ID:                    uuid.New(),
		CompanyID:             companyID,
		LeaveTypeID:           leaveTypeID,
		MinDaysNotice:         req.MinDaysNotice,
		MaxConsecutiveDays:    DefaultMaxConsecutiveDays,
		RequiresApproval:      true,
		RequiresDocumentation: req.RequiresDocumentation,
	}
	if req.MaxConsecutiveDays != nil {
		p.MaxConsecutiveDays = *req.MaxConsecutiveDays
	}
	if req.RequiresApproval != nil {
		p.RequiresApproval = *req.RequiresApproval
	}
	if err := p.Validate(); err != nil {
		return LeavePolicyResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave policy begin tx failed", zap.Error(err))
		return LeavePolicyResponse{}, err
	}
	defer tx.Rollback()

	if _, err := s.typeRepo.WithTx(tx).FindByIDAndCompany(ctx, actor.CompanyID, req.LeaveTypeID); err != nil {
		return LeavePolicyResponse{}, err
	}

	if err := s.repo.WithTx(tx).Create(ctx, p); err != nil {
		s.logger.Warn("create leave policy persist failed", zap.String("leave_type_id", req.LeaveTypeID), zap.Error(err))
		return LeavePolicyResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave policy commit failed", zap.Error(err))
		return LeavePolicyResponse{}, err
	}

	s.logger.Info("leave policy created",
		zap.String("leave_policy_id", p.ID.String()),
		zap.String("leave_type_id", req.LeaveTypeID),
	)
	return mapToResponse(*p), nil
}

func (s *service) GetAll(ctx context.Context, actor access.Actor) ([]LeavePolicyResponse, error) {
	if err := s.canRead(actor); err != nil {
		return nil, err
	}
	policies, err := s.repo.FindAllByCompany(ctx, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(policies), nil
}

func (s *service) GetByID(ctx context.Context, actor access.Actor, id string) (LeavePolicyResponse, error) {
	if err := s.canRead(actor); err != nil {
		return LeavePolicyResponse{}, err
	}
	p, err := s.repo.FindByIDAndCompany(ctx, actor.CompanyID, id)
	if err != nil {
		return LeavePolicyResponse{}, err
	}
	return mapToResponse(*p), nil
}

func (s *service) GetByLeaveType(ctx context.Context, actor access.Actor, leaveTypeID string) (LeavePolicyResponse, error) {
	if err := s.canRead(actor); err != nil {
		return LeavePolicyResponse{}, err
	}
	if _, err := s.typeRepo.FindByIDAndCompany(ctx, actor.CompanyID, leaveTypeID); err != nil {
		return LeavePolicyResponse{}, err
	}
	p, err := s.repo.FindByLeaveType(ctx, actor.CompanyID, leaveTypeID)
	if err != nil {
		return LeavePolicyResponse{}, err
	}
	return mapToResponse(*p), nil
}

func (s *service) Update(ctx context.Context, actor access.Actor, id string, req UpdateLeavePolicyRequest) (LeavePolicyResponse, error) {
	leaveTypeID := req.LeaveTypeID
	return s.modify(ctx, actor, id, &leaveTypeID, func(p *LeavePolicy) {
		p.MinDaysNotice = req.MinDaysNotice
		p.MaxConsecutiveDays = req.MaxConsecutiveDays
		p.RequiresApproval = req.RequiresApproval
		p.RequiresDocumentation = req.RequiresDocumentation
	})
}

func (s *service) Patch(ctx context.Context, actor access.Actor, id string, req PatchLeavePolicyRequest) (LeavePolicyResponse, error) {
	return s.modify(ctx, actor, id, req.LeaveTypeID, func(p *LeavePolicy) {
		if req.MinDaysNotice != nil {
			p.MinDaysNotice = *req.MinDaysNotice
		}
		if req.MaxConsecutiveDays != nil {
			p.MaxConsecutiveDays = *req.MaxConsecutiveDays
		}
		if req.RequiresApproval != nil {
			p.RequiresApproval = *req.RequiresApproval
		}
		if req.RequiresDocumentation != nil {
			p.RequiresDocumentation = *req.RequiresDocumentation
		}
	})
}

// modify applies changes inside a transaction. A non-nil leaveTypeID moves the
// policy to that leave type, which must exist in the actor's company.
func (s *service) modify(ctx context.Context, actor access.Actor, id string, leaveTypeID *string, apply func(p *LeavePolicy)) (LeavePolicyResponse, error) {
	if err := s.authorize(actor, access.ActionUpdate); err != nil {
		return LeavePolicyResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update leave policy begin tx failed", zap.Error(err))
		return LeavePolicyResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	p, err := qtx.FindByIDAndCompany(ctx, actor.CompanyID, id)
	if err != nil {
		return LeavePolicyResponse{}, err
	}

	if leaveTypeID != nil && *leaveTypeID != p.LeaveTypeID.String() {
		parsed, err := uuid.Parse(*leaveTypeID)
		if err != nil {
			return LeavePolicyResponse{}, leavepolicyerrors.ErrInvalidLeaveTypeID
		}
		if _, err := s.typeRepo.WithTx(tx).FindByIDAndCompany(ctx, actor.CompanyID, *leaveTypeID); err != nil {
			return LeavePolicyResponse{}, err
		}
		p.LeaveTypeID = parsed
	}

	apply(p)
	if err := p.Validate(); err != nil {
		return LeavePolicyResponse{}, err
	}

	if err := qtx.Update(ctx, p); err != nil {
		s.logger.Warn("update leave policy persist failed", zap.String("leave_policy_id", id), zap.Error(err))
		return LeavePolicyResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("update leave policy commit failed", zap.String("leave_policy_id", id), zap.Error(err))
		return LeavePolicyResponse{}, err
	}

	s.logger.Info("leave policy updated", zap.String("leave_policy_id", id))
	return mapToResponse(*p), nil
}

func (s *service) Delete(ctx context.Context, actor access.Actor, id string) error {
	if err := s.authorize(actor, access.ActionDelete); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Delete(ctx, actor.CompanyID, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("leave policy deleted", zap.String("leave_policy_id", id))
	return nil
}

func mapToResponse(p LeavePolicy) LeavePolicyResponse {
	resp := LeavePolicyResponse{
		ID:                    p.ID.String(),
		CompanyID:             p.CompanyID.String(),
		LeaveTypeID:           p.LeaveTypeID.String(),
		MinDaysNotice:         p.MinDaysNotice,
		MaxConsecutiveDays:    p.MaxConsecutiveDays,
		RequiresApproval:      p.RequiresApproval,
		RequiresDocumentation: p.RequiresDocumentation,
	}
	if !p.CreatedAt.IsZero() {
		resp.CreatedAt = p.CreatedAt.Format(time.RFC3339)
	}
	if !p.UpdatedAt.IsZero() {
		resp.UpdatedAt = p.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

func mapToListResponse(policies []LeavePolicy) []LeavePolicyResponse {
	res := make([]LeavePolicyResponse, len(policies))
	for i, p := range policies {
		res[i] = mapToResponse(p)
	}
	return res
}
