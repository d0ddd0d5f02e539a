package leavebalance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-webtrack/internal/access"
	"go-webtrack/internal/employee"
	leavebalanceerrors "go-webtrack/internal/leavebalance/errors"
	"go-webtrack/internal/leavetype"
	"go-webtrack/internal/shared/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=leavebalance_service.go -destination=mock/leavebalance_service_mock.go -package=mock
type Service interface {
	GetBalance(ctx context.Context, actor access.Actor, q LookupQuery) (LeaveBalanceResponse, error)
	GetByID(ctx context.Context, actor access.Actor, id string) (LeaveBalanceResponse, error)
	List(ctx context.Context, actor access.Actor, q ListQuery) ([]LeaveBalanceResponse, error)
	Summarize(ctx context.Context, actor access.Actor, q SummaryQuery) (SummaryResponse, error)
	Create(ctx context.Context, actor access.Actor, req CreateLeaveBalanceRequest) (LeaveBalanceResponse, error)
	Update(ctx context.Context, actor access.Actor, id string, req UpdateLeaveBalanceRequest) (LeaveBalanceResponse, error)
	Patch(ctx context.Context, actor access.Actor, id string, req PatchLeaveBalanceRequest) (LeaveBalanceResponse, error)
	Delete(ctx context.Context, actor access.Actor, id string) error
	Provision(ctx context.Context, actor access.Actor, req ProvisionRequest) (ProvisionResponse, error)
	ProvisionForEmployee(ctx context.Context, companyID, employeeID string, year int) (int64, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	employees employee.Repository
	types     leavetype.Repository
	policy    access.Policy
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	employees employee.Repository,
	types leavetype.Repository,
	policy access.Policy,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leavebalance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavebalance.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		employees: employees,
		types:     types,
		policy:    policy,
		now:       time.Now,
		logger:    l,
	}
}

func (s *service) authorize(actor access.Actor, action access.Action) error {
	if !s.policy.CanMutate(actor, action, access.Resource{Kind: access.KindLeaveBalance}) {
		s.logger.Warn("leave balance access denied",
			zap.String("employee_id", actor.EmployeeID),
			zap.String("action", string(action)),
		)
		return apperror.ErrForbidden
	}
	return nil
}

// canView checks the owner of a balance, resolving their manager only when
// the actor is looking at someone else.
func (s *service) canView(ctx context.Context, actor access.Actor, ownerID string) error {
	res := access.Resource{Kind: access.KindLeaveBalance, OwnerID: ownerID}
	if ownerID != actor.EmployeeID {
		emp, err := s.employees.FindByIDAndCompany(ctx, actor.CompanyID, ownerID)
		if err != nil {
			return err
		}
		res.ManagerID = emp.ManagerIDString()
	}
	if !s.policy.CanView(actor, res) {
		return apperror.ErrForbidden
	}
	return nil
}

func (s *service) currentYear() int {
	return s.now().Year()
}

func (s *service) GetBalance(ctx context.Context, actor access.Actor, q LookupQuery) (LeaveBalanceResponse, error) {
	employeeID := q.EmployeeID
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	year := q.Year
	if year == 0 {
		year = s.currentYear()
	}
	if err := s.canView(ctx, actor, employeeID); err != nil {
		return LeaveBalanceResponse{}, err
	}

	b, err := s.repo.FindByKey(ctx, Key{
		CompanyID:   actor.CompanyID,
		EmployeeID:  employeeID,
		LeaveTypeID: q.LeaveTypeID,
		Year:        year,
	})
	if err != nil {
		return LeaveBalanceResponse{}, err
	}
	return mapToResponse(*b), nil
}

func (s *service) GetByID(ctx context.Context, actor access.Actor, id string) (LeaveBalanceResponse, error) {
	b, err := s.repo.FindByIDAndCompany(ctx, actor.CompanyID, id)
	if err != nil {
		return LeaveBalanceResponse{}, err
	}
	if err := s.canView(ctx, actor, b.EmployeeID.String()); err != nil {
		// a balance the actor cannot see does not exist for them
		if errors.Is(err, apperror.ErrForbidden) {
			return LeaveBalanceResponse{}, leavebalanceerrors.ErrLeaveBalanceNotFound
		}
		return LeaveBalanceResponse{}, err
	}
	return mapToResponse(*b), nil
}

func (s *service) List(ctx context.Context, actor access.Actor, q ListQuery) ([]LeaveBalanceResponse, error) {
	scope := s.policy.Scope(actor, access.KindLeaveBalance)
	if scope == access.ScopeNone {
		return nil, apperror.ErrForbidden
	}
	balances, err := s.repo.List(ctx, actor, scope, ListFilter{
		EmployeeID:  q.EmployeeID,
		LeaveTypeID: q.LeaveTypeID,
		Year:        q.Year,
	})
	if err != nil {
		return nil, err
	}
	return mapToListResponse(balances), nil
}

func (s *service) Summarize(ctx context.Context, actor access.Actor, q SummaryQuery) (SummaryResponse, error) {
	scope := s.policy.Scope(actor, access.KindLeaveBalance)
	if scope == access.ScopeNone {
		return SummaryResponse{}, apperror.ErrForbidden
	}

	year := q.Year
	if year == 0 {
		year = s.currentYear()
	}
	employeeID := q.EmployeeID
	if scope != access.ScopeAll {
		employeeID = actor.EmployeeID
	}

	t, err := s.repo.Sum(ctx, actor, scope, ListFilter{EmployeeID: employeeID, Year: year})
	if err != nil {
		return SummaryResponse{}, err
	}
	return SummaryResponse{
		Year:          year,
		EmployeeID:    employeeID,
		TotalDays:     t.TotalDays,
		UsedDays:      t.UsedDays,
		RemainingDays: t.RemainingDays,
	}, nil
}

func (s *service) Create(ctx context.Context, actor access.Actor, req CreateLeaveBalanceRequest) (LeaveBalanceResponse, error) {
	if err := s.authorize(actor, access.ActionCreate); err != nil {
		return LeaveBalanceResponse{}, err
	}
	companyID, err := uuid.Parse(actor.CompanyID)
	if err != nil {
		return LeaveBalanceResponse{}, leavebalanceerrors.ErrInvalidCompanyID
	}
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return LeaveBalanceResponse{}, leavebalanceerrors.ErrInvalidEmployeeID
	}
	leaveTypeID, err := uuid.Parse(req.LeaveTypeID)
	if err != nil {
		return LeaveBalanceResponse{}, leavebalanceerrors.ErrInvalidLeaveTypeID
	}

	b := NewLeaveBalance(companyID, employeeID, leaveTypeID, req.Year, 0)
	if err := b.Adjust(req.TotalDays, req.UsedDays); err != nil {
		return LeaveBalanceResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave balance begin tx failed", zap.Error(err))
		return LeaveBalanceResponse{}, err
	}
	defer tx.Rollback()

	if _, err := s.employees.WithTx(tx).FindByIDAndCompany(ctx, actor.CompanyID, req.EmployeeID); err != nil {
		return LeaveBalanceResponse{}, err
	}
	if _, err := s.types.WithTx(tx).FindByIDAndCompany(ctx, actor.CompanyID, req.LeaveTypeID); err != nil {
		return LeaveBalanceResponse{}, err
	}
	if err := s.repo.WithTx(tx).Create(ctx, b); err != nil {
		s.logger.Warn("create leave balance persist failed",
			zap.String("employee_id", req.EmployeeID),
			zap.String("leave_type_id", req.LeaveTypeID),
			zap.Int("year", req.Year),
			zap.Error(err),
		)
		return LeaveBalanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave balance commit failed", zap.Error(err))
		return LeaveBalanceResponse{}, err
	}

	s.logger.Info("leave balance created",
		zap.String("leave_balance_id", b.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.Int("year", req.Year),
	)
	return mapToResponse(*b), nil
}

func (s *service) Update(ctx context.Context, actor access.Actor, id string, req UpdateLeaveBalanceRequest) (LeaveBalanceResponse, error) {
	return s.adjust(ctx, actor, id, func(b *LeaveBalance) error {
		return b.Adjust(req.TotalDays, req.UsedDays)
	})
}

func (s *service) Patch(ctx context.Context, actor access.Actor, id string, req PatchLeaveBalanceRequest) (LeaveBalanceResponse, error) {
	return s.adjust(ctx, actor, id, func(b *LeaveBalance) error {
		total, used := b.TotalDays, b.UsedDays
		if req.TotalDays != nil {
			total = *req.TotalDays
		}
		if req.UsedDays != nil {
			used = *req.UsedDays
		}
		return b.Adjust(total, used)
	})
}

// adjust applies an administrative correction under a row lock so it cannot
// interleave with a concurrent debit.
func (s *service) adjust(ctx context.Context, actor access.Actor, id string, apply func(b *LeaveBalance) error) (LeaveBalanceResponse, error) {
	if err := s.authorize(actor, access.ActionUpdate); err != nil {
		return LeaveBalanceResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update leave balance begin tx failed", zap.Error(err))
		return LeaveBalanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	b, err := qtx.FindByIDForUpdate(ctx, actor.CompanyID, id)
	if err != nil {
		return LeaveBalanceResponse{}, err
	}
	if err := apply(b); err != nil {
		return LeaveBalanceResponse{}, err
	}
	if err := qtx.Update(ctx, b); err != nil {
		s.logger.Warn("update leave balance persist failed", zap.String("leave_balance_id", id), zap.Error(err))
		return LeaveBalanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("update leave balance commit failed", zap.String("leave_balance_id", id), zap.Error(err))
		return LeaveBalanceResponse{}, err
	}

	s.logger.Info("leave balance adjusted",
		zap.String("leave_balance_id", id),
		zap.Int("total_days", b.TotalDays),
		zap.Int("used_days", b.UsedDays),
	)
	return mapToResponse(*b), nil
}

func (s *service) Delete(ctx context.Context, actor access.Actor, id string) error {
	if err := s.authorize(actor, access.ActionDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, actor.CompanyID, id); err != nil {
		return err
	}
	s.logger.Info("leave balance deleted", zap.String("leave_balance_id", id))
	return nil
}

func (s *service) Provision(ctx context.Context, actor access.Actor, req ProvisionRequest) (ProvisionResponse, error) {
	if err := s.authorize(actor, access.ActionCreate); err != nil {
		return ProvisionResponse{}, err
	}
	year := s.currentYear()
	if req.Year != nil {
		year = *req.Year
	}

	var employeeIDs []uuid.UUID
	if req.EmployeeID != nil {
		emp, err := s.employees.FindByIDAndCompany(ctx, actor.CompanyID, *req.EmployeeID)
		if err != nil {
			return ProvisionResponse{}, err
		}
		employeeIDs = []uuid.UUID{emp.ID}
	} else {
		ids, err := s.employees.FindIDsByCompany(ctx, actor.CompanyID)
		if err != nil {
			return ProvisionResponse{}, err
		}
		employeeIDs = ids
	}

	created, err := s.provision(ctx, actor.CompanyID, employeeIDs, year)
	if err != nil {
		return ProvisionResponse{}, err
	}
	return ProvisionResponse{Year: year, Created: created}, nil
}

func (s *service) ProvisionForEmployee(ctx context.Context, companyID, employeeID string, year int) (int64, error) {
	id, err := uuid.Parse(employeeID)
	if err != nil {
		return 0, leavebalanceerrors.ErrInvalidEmployeeID
	}
	if year == 0 {
		year = s.currentYear()
	}
	return s.provision(ctx, companyID, []uuid.UUID{id}, year)
}

// provision opens a balance of each leave type's default entitlement for every
// employee that has none yet. Existing balances are left untouched.
func (s *service) provision(ctx context.Context, companyID string, employeeIDs []uuid.UUID, year int) (int64, error) {
	company, err := uuid.Parse(companyID)
	if err != nil {
		return 0, leavebalanceerrors.ErrInvalidCompanyID
	}
	types, err := s.types.FindAllByCompany(ctx, companyID)
	if err != nil {
		return 0, err
	}

	rows := make([]LeaveBalance, 0, len(employeeIDs)*len(types))
	for _, empID := range employeeIDs {
		for _, lt := range types {
			rows = append(rows, *NewLeaveBalance(company, empID, lt.ID, year, lt.DefaultDays))
		}
	}

	created, err := s.repo.InsertMissing(ctx, rows)
	if err != nil {
		s.logger.Error("provision leave balances failed",
			zap.String("company_id", companyID),
			zap.Int("year", year),
			zap.Error(err),
		)
		return 0, err
	}

	s.logger.Info("leave balances provisioned",
		zap.String("company_id", companyID),
		zap.Int("employees", len(employeeIDs)),
		zap.Int("year", year),
		zap.Int64("created", created),
	)
	return created, nil
}

func mapToResponse(b LeaveBalance) LeaveBalanceResponse {
	resp := LeaveBalanceResponse{
		ID:            b.ID.String(),
		CompanyID:     b.CompanyID.String(),
		EmployeeID:    b.EmployeeID.String(),
		LeaveTypeID:   b.LeaveTypeID.String(),
		Year:          b.Year,
		TotalDays:     b.TotalDays,
		UsedDays:      b.UsedDays,
		RemainingDays: b.RemainingDays,
	}
	if !b.CreatedAt.IsZero() {
		resp.CreatedAt = b.CreatedAt.Format(time.RFC3339)
	}
	if !b.UpdatedAt.IsZero() {
		resp.UpdatedAt = b.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

func mapToListResponse(balances []LeaveBalance) []LeaveBalanceResponse {
	res := make([]LeaveBalanceResponse, len(balances))
	for i, b := range balances {
		res[i] = mapToResponse(b)
	}
	return res
}
