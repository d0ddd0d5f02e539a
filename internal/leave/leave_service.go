package leave

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-webtrack/internal/access"
	"go-webtrack/internal/employee"
	employeeerrors "go-webtrack/internal/employee/errors"
	"go-webtrack/internal/events"
	leaveerrors "go-webtrack/internal/leave/errors"
	"go-webtrack/internal/leavebalance"
	"go-webtrack/internal/leavepolicy"
	"go-webtrack/internal/leavetype"
	"go-webtrack/internal/messaging/kafka"
	"go-webtrack/internal/shared/apperror"
	"go-webtrack/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const aggregateType = "leave_request"

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor access.Actor, req CreateLeaveRequest) (LeaveResponse, error)
	List(ctx context.Context, actor access.Actor, q ListQuery) ([]LeaveResponse, error)
	GetByID(ctx context.Context, actor access.Actor, id string) (LeaveResponse, error)
	Update(ctx context.Context, actor access.Actor, id string, req PatchLeaveRequest) (LeaveResponse, error)
	Approve(ctx context.Context, actor access.Actor, id string) (LeaveResponse, error)
	Reject(ctx context.Context, actor access.Actor, id, rejectionReason string) (LeaveResponse, error)
	Cancel(ctx context.Context, actor access.Actor, id string) (LeaveResponse, error)
	Summary(ctx context.Context, actor access.Actor, q SummaryQuery) (SummaryResponse, error)
}

// Deps are the collaborators of the workflow. Outbox may be nil, in which case
// no lifecycle events are recorded. Now defaults to time.Now.
type Deps struct {
	DB        *sql.DB
	Repo      Repository
	Types     leavetype.Repository
	Policies  leavepolicy.Repository
	Ledger    leavebalance.Ledger
	Employees employee.Repository
	Outbox    kafka.OutboxRepository
	Access    access.Policy
	Now       func() time.Time
}

type service struct {
	db        *sql.DB
	repo      Repository
	types     leavetype.Repository
	policies  leavepolicy.Repository
	ledger    leavebalance.Ledger
	employees employee.Repository
	outbox    kafka.OutboxRepository
	access    access.Policy
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(deps Deps, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		db:        deps.DB,
		repo:      deps.Repo,
		types:     deps.Types,
		policies:  deps.Policies,
		ledger:    deps.Ledger,
		employees: deps.Employees,
		outbox:    deps.Outbox,
		access:    deps.Access,
		now:       now,
		logger:    l,
	}
}

func (s *service) Create(ctx context.Context, actor access.Actor, req CreateLeaveRequest) (LeaveResponse, error) {
	employeeID := req.EmployeeID
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	s.logger.Debug("create leave request",
		zap.String("company_id", actor.CompanyID),
		zap.String("actor_id", actor.EmployeeID),
		zap.String("employee_id", employeeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	companyUUID, err := uuid.Parse(actor.CompanyID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actor.EmployeeID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidEmployeeID
	}
	leaveTypeUUID, err := uuid.Parse(req.LeaveTypeID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveTypeID
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave request begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	res, err := s.ownerResource(ctx, tx, actor.CompanyID, employeeID, true)
	if err != nil {
		return LeaveResponse{}, err
	}
	if !s.access.CanMutate(actor, access.ActionCreate, res) {
		s.logger.Warn("create leave request denied",
			zap.String("actor_id", actor.EmployeeID),
			zap.String("employee_id", employeeID),
		)
		return LeaveResponse{}, apperror.ErrForbidden
	}

	days, err := s.validate(ctx, tx, draft{
		companyID:   actor.CompanyID,
		employeeID:  employeeID,
		leaveTypeID: req.LeaveTypeID,
		start:       startDate,
		end:         endDate,
	}, nil)
	if err != nil {
		s.logger.Warn("create leave request rejected",
			zap.String("employee_id", employeeID),
			zap.String("leave_type_id", req.LeaveTypeID),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	l := &LeaveRequest{
		ID:            uuid.New(),
		CompanyID:     companyUUID,
		EmployeeID:    employeeUUID,
		LeaveTypeID:   leaveTypeUUID,
		StartDate:     startDate,
		EndDate:       endDate,
		DaysRequested: days,
		Reason:        req.Reason,
		Status:        StatusPending,
		CreatedBy:     actorUUID,
		Version:       1,
	}
	if err := s.repo.WithTx(tx).Create(ctx, l); err != nil {
		s.logger.Error("create leave request persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if err := s.enqueue(ctx, tx, events.EventLeaveRequestCreated, l, res.ManagerID, actor); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave request commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("leave request created",
		zap.String("leave_request_id", l.ID.String()),
		zap.String("employee_id", employeeID),
		zap.Int("days_requested", days),
	)
	return mapToResponse(*l), nil
}

func (s *service) List(ctx context.Context, actor access.Actor, q ListQuery) ([]LeaveResponse, error) {
	scope := s.access.Scope(actor, access.KindLeaveRequest)
	if scope == access.ScopeNone {
		return nil, apperror.ErrForbidden
	}

	f := ListFilter{Status: q.Status, LeaveTypeID: q.LeaveTypeID, EmployeeID: q.EmployeeID}
	if q.StartDate != "" {
		from, err := parseDate(q.StartDate)
		if err != nil {
			return nil, err
		}
		f.StartFrom = &from
	}
	if q.EndDate != "" {
		to, err := parseDate(q.EndDate)
		if err != nil {
			return nil, err
		}
		f.EndTo = &to
	}

	requests, err := s.repo.List(ctx, actor, scope, f)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(requests), nil
}

func (s *service) GetByID(ctx context.Context, actor access.Actor, id string) (LeaveResponse, error) {
	l, err := s.repo.FindByIDAndCompany(ctx, actor.CompanyID, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	res, err := s.ownerResource(ctx, nil, actor.CompanyID, l.EmployeeID.String(), false)
	if err != nil {
		return LeaveResponse{}, err
	}
	if !s.access.CanView(actor, res) {
		return LeaveResponse{}, leaveerrors.ErrLeaveRequestNotFound
	}
	return mapToResponse(*l), nil
}

func (s *service) Summary(ctx context.Context, actor access.Actor, q SummaryQuery) (SummaryResponse, error) {
	scope := s.access.Scope(actor, access.KindLeaveRequest)
	if scope == access.ScopeNone {
		return SummaryResponse{}, apperror.ErrForbidden
	}
	year := q.Year
	if year == 0 {
		year = s.now().Year()
	}

	counts, err := s.repo.CountByStatus(ctx, actor, scope, year)
	if err != nil {
		return SummaryResponse{}, err
	}

	resp := SummaryResponse{Year: year, StatusSummary: make(map[string]int64, len(Statuses))}
	for _, st := range Statuses {
		resp.StatusSummary[st] = counts[st]
		resp.Total += counts[st]
	}
	return resp, nil
}

func (s *service) Approve(ctx context.Context, actor access.Actor, id string) (LeaveResponse, error) {
	approver, err := uuid.Parse(actor.EmployeeID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}
	return s.transition(ctx, actor, id, access.ActionApprove, events.EventLeaveRequestApproved,
		func(tx *sql.Tx, l *LeaveRequest) error {
			key := leavebalance.Key{
				CompanyID:   l.CompanyID.String(),
				EmployeeID:  l.EmployeeID.String(),
				LeaveTypeID: l.LeaveTypeID.String(),
				Year:        l.Year(),
			}
			if _, err := s.ledger.DebitTx(ctx, tx, key, l.DaysRequested); err != nil {
				return err
			}
			return l.Approve(approver, s.now())
		})
}

func (s *service) Reject(ctx context.Context, actor access.Actor, id, rejectionReason string) (LeaveResponse, error) {
	return s.transition(ctx, actor, id, access.ActionApprove, events.EventLeaveRequestRejected,
		func(_ *sql.Tx, l *LeaveRequest) error {
			return l.Reject(rejectionReason)
		})
}

func (s *service) Cancel(ctx context.Context, actor access.Actor, id string) (LeaveResponse, error) {
	return s.transition(ctx, actor, id, access.ActionUpdate, events.EventLeaveRequestCancelled,
		func(_ *sql.Tx, l *LeaveRequest) error {
			return l.Cancel(s.now())
		})
}

func (s *service) Update(ctx context.Context, actor access.Actor, id string, req PatchLeaveRequest) (LeaveResponse, error) {
	if req.Status != nil && *req.Status != StatusPending {
		if req.editsDetails() {
			return LeaveResponse{}, leaveerrors.ErrStatusWithEdits
		}
		switch *req.Status {
		case StatusApproved:
			return s.Approve(ctx, actor, id)
		case StatusRejected:
			reason := ""
			if req.RejectionReason != nil {
				reason = *req.RejectionReason
			}
			return s.Reject(ctx, actor, id, reason)
		case StatusCancelled:
			return s.Cancel(ctx, actor, id)
		}
	}
	if !req.editsDetails() {
		return LeaveResponse{}, leaveerrors.ErrNothingToUpdate
	}

	return s.transition(ctx, actor, id, access.ActionUpdate, events.EventLeaveRequestUpdated,
		func(tx *sql.Tx, l *LeaveRequest) error {
			leaveTypeID := l.LeaveTypeID
			if req.LeaveTypeID != nil {
				parsed, err := uuid.Parse(*req.LeaveTypeID)
				if err != nil {
					return leaveerrors.ErrInvalidLeaveTypeID
				}
				leaveTypeID = parsed
			}
			start, end := l.StartDate, l.EndDate
			if req.StartDate != nil {
				d, err := parseDate(*req.StartDate)
				if err != nil {
					return err
				}
				start = d
			}
			if req.EndDate != nil {
				d, err := parseDate(*req.EndDate)
				if err != nil {
					return err
				}
				end = d
			}

			// A reason-only edit keeps the period that was already accepted.
			if leaveTypeID != l.LeaveTypeID || !start.Equal(l.StartDate) || !end.Equal(l.EndDate) {
				self := l.ID.String()
				days, err := s.validate(ctx, tx, draft{
					companyID:   l.CompanyID.String(),
					employeeID:  l.EmployeeID.String(),
					leaveTypeID: leaveTypeID.String(),
					start:       start,
					end:         end,
				}, &self)
				if err != nil {
					return err
				}

				l.LeaveTypeID = leaveTypeID
				l.StartDate = start
				l.EndDate = end
				l.DaysRequested = days
			}
			if req.Reason != nil {
				l.Reason = *req.Reason
			}
			return nil
		})
}

// transition runs apply against the locked request inside one transaction. The
// write is guarded on the version that was read, so of two racing callers only
// one can move the request out of PENDING.
func (s *service) transition(
	ctx context.Context,
	actor access.Actor,
	id string,
	action access.Action,
	eventType string,
	apply func(tx *sql.Tx, l *LeaveRequest) error,
) (LeaveResponse, error) {
	s.logger.Debug("leave request transition",
		zap.String("leave_request_id", id),
		zap.String("actor_id", actor.EmployeeID),
		zap.String("event_type", eventType),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("leave request transition begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, actor.CompanyID, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	res, err := s.ownerResource(ctx, tx, actor.CompanyID, l.EmployeeID.String(), false)
	if err != nil {
		return LeaveResponse{}, err
	}
	if !s.access.CanView(actor, res) {
		return LeaveResponse{}, leaveerrors.ErrLeaveRequestNotFound
	}
	if !s.access.CanMutate(actor, action, res) {
		s.logger.Warn("leave request transition denied",
			zap.String("leave_request_id", id),
			zap.String("actor_id", actor.EmployeeID),
			zap.String("action", string(action)),
		)
		return LeaveResponse{}, apperror.ErrForbidden
	}
	if !l.IsPending() {
		s.logger.Warn("leave request transition invalid",
			zap.String("leave_request_id", id),
			zap.String("status", l.Status),
			zap.String("event_type", eventType),
		)
		return LeaveResponse{}, leaveerrors.InvalidTransition(l.Status)
	}

	if err := apply(tx, l); err != nil {
		s.logger.Warn("leave request transition rejected",
			zap.String("leave_request_id", id),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	if err := qtx.UpdatePending(ctx, l); err != nil {
		if errors.Is(err, leaveerrors.ErrConcurrentUpdate) {
			s.logger.Warn("leave request changed concurrently", zap.String("leave_request_id", id))
		} else {
			s.logger.Error("leave request transition persist failed", zap.String("leave_request_id", id), zap.Error(err))
		}
		return LeaveResponse{}, err
	}
	if err := s.enqueue(ctx, tx, eventType, l, res.ManagerID, actor); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("leave request transition commit failed", zap.String("leave_request_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("leave request transitioned",
		zap.String("leave_request_id", id),
		zap.String("status", l.Status),
		zap.String("event_type", eventType),
	)
	return mapToResponse(*l), nil
}

// ownerResource describes the request owner for access checks. A missing
// employee is an error only when strict; otherwise the owner is treated as
// having no manager.
func (s *service) ownerResource(ctx context.Context, tx *sql.Tx, companyID, ownerID string, strict bool) (access.Resource, error) {
	res := access.Resource{Kind: access.KindLeaveRequest, OwnerID: ownerID}

	employees := s.employees
	if tx != nil {
		employees = employees.WithTx(tx)
	}
	emp, err := employees.FindByIDAndCompany(ctx, companyID, ownerID)
	if err != nil {
		if !strict && errors.Is(err, employeeerrors.ErrEmployeeNotFound) {
			return res, nil
		}
		return access.Resource{}, err
	}
	res.ManagerID = emp.ManagerIDString()
	return res, nil
}

func (s *service) enqueue(ctx context.Context, tx *sql.Tx, eventType string, l *LeaveRequest, managerID string, actor access.Actor) error {
	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	evt := events.LeaveRequestEvent{
		EventType:      eventType,
		RequestID:      rid,
		LeaveRequestID: l.ID.String(),
		CompanyID:      l.CompanyID.String(),
		EmployeeID:     l.EmployeeID.String(),
		ManagerID:      managerID,
		LeaveTypeID:    l.LeaveTypeID.String(),
		StartDate:      l.StartDate.Format(dateLayout),
		EndDate:        l.EndDate.Format(dateLayout),
		DaysRequested:  l.DaysRequested,
		Status:         l.Status,
		ActorID:        actor.EmployeeID,
		OccurredAt:     s.now().UTC(),
	}
	if l.RejectionReason != nil {
		evt.RejectionReason = *l.RejectionReason
	}

	event, err := kafka.NewOutboxEvent(events.LeaveRequestTopic, aggregateType, l.ID.String(), eventType, rid, evt)
	if err != nil {
		s.logger.Error("marshal leave request event failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		s.logger.Error("leave request outbox persist failed",
			zap.String("leave_request_id", l.ID.String()),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(time.RFC3339)
	return &v
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:              l.ID.String(),
		CompanyID:       l.CompanyID.String(),
		EmployeeID:      l.EmployeeID.String(),
		LeaveTypeID:     l.LeaveTypeID.String(),
		StartDate:       l.StartDate.Format(dateLayout),
		EndDate:         l.EndDate.Format(dateLayout),
		DaysRequested:   l.DaysRequested,
		Reason:          l.Reason,
		Status:          l.Status,
		CreatedBy:       l.CreatedBy.String(),
		ApprovalDate:    formatTime(l.ApprovalDate),
		RejectionReason: l.RejectionReason,
		CancelledAt:     formatTime(l.CancelledAt),
		Version:         l.Version,
	}
	if l.ApprovedBy != nil {
		v := l.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if !l.CreatedAt.IsZero() {
		resp.CreatedAt = l.CreatedAt.Format(time.RFC3339)
	}
	if !l.UpdatedAt.IsZero() {
		resp.UpdatedAt = l.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

func mapToListResponse(requests []LeaveRequest) []LeaveResponse {
	resp := make([]LeaveResponse, len(requests))
	for i, l := range requests {
		resp[i] = mapToResponse(l)
	}
	return resp
}
