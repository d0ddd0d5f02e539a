package leavetype

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go-webtrack/internal/access"
	leavetypeerrors "go-webtrack/internal/leavetype/errors"
	"go-webtrack/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	LeaveTypeAllKeyPrefix = "leave_types:all:"
	cacheTTL              = 30 * time.Minute
)

func GetLeaveTypeAllKey(companyID string) string {
	return LeaveTypeAllKeyPrefix + companyID
}

//go:generate mockgen -source=leavetype_service.go -destination=mock/leavetype_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor access.Actor, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	GetAll(ctx context.Context, actor access.Actor) ([]LeaveTypeResponse, error)
	GetByID(ctx context.Context, actor access.Actor, id string) (LeaveTypeResponse, error)
	Update(ctx context.Context, actor access.Actor, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error)
	Patch(ctx context.Context, actor access.Actor, id string, req PatchLeaveTypeRequest) (LeaveTypeResponse, error)
	Delete(ctx context.Context, actor access.Actor, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	policy access.Policy
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, policy access.Policy, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavetype.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavetype.service")
	}
	return &service{db: db, repo: repo, rdb: rdb, sf: &singleflight.Group{}, policy: policy, logger: l}
}

func (s *service) authorize(actor access.Actor, action access.Action) error {
	if !s.policy.CanMutate(actor, action, access.Resource{Kind: access.KindLeaveType}) {
		s.logger.Warn("leave type access denied",
			zap.String("employee_id", actor.EmployeeID),
			zap.String("action", string(action)),
		)
		return apperror.ErrForbidden
	}
	return nil
}

func (s *service) canRead(actor access.Actor) error {
	if s.policy.Scope(actor, access.KindLeaveType) == access.ScopeNone {
		return apperror.ErrForbidden
	}
	return nil
}

func (s *service) Create(ctx context.Context, actor access.Actor, req CreateLeaveTypeRequest) (LeaveTypeResponse, error) {
	if err := s.authorize(actor, access.ActionCreate); err != nil {
		return LeaveTypeResponse{}, err
	}
	companyID, err := uuid.Parse(actor.CompanyID)
	if err != nil {
		return LeaveTypeResponse{}, leavetypeerrors.ErrInvalidCompanyID
	}

	isPaid := true
	if req.IsPaid != nil {
		isPaid = *req.IsPaid
	}
	lt := &LeaveType{
		ID:          uuid.New(),
		CompanyID:   companyID,
		Name:        req.Name,
		Description: req.Description,
		DefaultDays: req.DefaultDays,
		IsPaid:      isPaid,
	}
	if err := lt.Validate(); err != nil {
		return LeaveTypeResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave type begin tx failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, lt); err != nil {
		s.logger.Error("create leave type persist failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave type commit failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}

	s.invalidate(ctx, actor.CompanyID)
	s.logger.Info("leave type created", zap.String("leave_type_id", lt.ID.String()), zap.String("name", lt.Name))
	return mapToResponse(*lt), nil
}

func (s *service) GetAll(ctx context.Context, actor access.Actor) ([]LeaveTypeResponse, error) {
	if err := s.canRead(actor); err != nil {
		return nil, err
	}
	cacheKey := GetLeaveTypeAllKey(actor.CompanyID)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var resp []LeaveTypeResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		types, err := s.repo.FindAllByCompany(ctx, actor.CompanyID)
		if err != nil {
			return nil, err
		}

		resp := mapToListResponse(types)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, jsonData, cacheTTL).Err(); err != nil {
					s.logger.Warn("leave type cache fill failed", zap.String("key", cacheKey), zap.Error(err))
				}
			}
		}

		return resp, nil
	})
	if err != nil {
		s.logger.Error("list leave types failed", zap.Error(err))
		return nil, err
	}

	return v.([]LeaveTypeResponse), nil
}

func (s *service) GetByID(ctx context.Context, actor access.Actor, id string) (LeaveTypeResponse, error) {
	if err := s.canRead(actor); err != nil {
		return LeaveTypeResponse{}, err
	}
	lt, err := s.repo.FindByIDAndCompany(ctx, actor.CompanyID, id)
	if err != nil {
		return LeaveTypeResponse{}, err
	}
	return mapToResponse(*lt), nil
}

func (s *service) Update(ctx context.Context, actor access.Actor, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error) {
	return s.modify(ctx, actor, id, func(lt *LeaveType) {
		lt.Name = req.Name
		lt.Description = req.Description
		lt.DefaultDays = req.DefaultDays
		lt.IsPaid = req.IsPaid
	})
}

func (s *service) Patch(ctx context.Context, actor access.Actor, id string, req PatchLeaveTypeRequest) (LeaveTypeResponse, error) {
	return s.modify(ctx, actor, id, func(lt *LeaveType) {
		if req.Name != nil {
			lt.Name = *req.Name
		}
		if req.Description != nil {
			lt.Description = *req.Description
		}
		if req.DefaultDays != nil {
			lt.DefaultDays = *req.DefaultDays
		}
		if req.IsPaid != nil {
			lt.IsPaid = *req.IsPaid
		}
	})
}

func (s *service) modify(ctx context.Context, actor access.Actor, id string, apply func(lt *LeaveType)) (LeaveTypeResponse, error) {
	if err := s.authorize(actor, access.ActionUpdate); err != nil {
		return LeaveTypeResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update leave type begin tx failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	lt, err := qtx.FindByIDAndCompany(ctx, actor.CompanyID, id)
	if err != nil {
		return LeaveTypeResponse{}, err
	}

	apply(lt)
	if err := lt.Validate(); err != nil {
		return LeaveTypeResponse{}, err
	}

	if err := qtx.Update(ctx, lt); err != nil {
		s.logger.Error("update leave type persist failed", zap.String("leave_type_id", id), zap.Error(err))
		return LeaveTypeResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("update leave type commit failed", zap.String("leave_type_id", id), zap.Error(err))
		return LeaveTypeResponse{}, err
	}

	s.invalidate(ctx, actor.CompanyID)
	s.logger.Info("leave type updated", zap.String("leave_type_id", id))
	return mapToResponse(*lt), nil
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

	s.invalidate(ctx, actor.CompanyID)
	s.logger.Info("leave type deleted", zap.String("leave_type_id", id))
	return nil
}

func (s *service) invalidate(ctx context.Context, companyID string) {
	if s.rdb == nil {
		return
	}
	cacheKey := GetLeaveTypeAllKey(companyID)
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Error("invalidate leave type cache failed", zap.String("key", cacheKey), zap.Error(err))
	}
}

func mapToResponse(lt LeaveType) LeaveTypeResponse {
	resp := LeaveTypeResponse{
		ID:          lt.ID.String(),
		CompanyID:   lt.CompanyID.String(),
		Name:        lt.Name,
		Description: lt.Description,
		DefaultDays: lt.DefaultDays,
		IsPaid:      lt.IsPaid,
	}
	if !lt.CreatedAt.IsZero() {
		resp.CreatedAt = lt.CreatedAt.Format(time.RFC3339)
	}
	if !lt.UpdatedAt.IsZero() {
		resp.UpdatedAt = lt.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

func mapToListResponse(types []LeaveType) []LeaveTypeResponse {
	res := make([]LeaveTypeResponse, len(types))
	for i, lt := range types {
		res[i] = mapToResponse(lt)
	}
	return res
}
