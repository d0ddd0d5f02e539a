package leavebalance_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-webtrack/internal/access"
	"go-webtrack/internal/employee"
	employeeMock "go-webtrack/internal/employee/mock"
	"go-webtrack/internal/leavebalance"
	leavebalanceerrors "go-webtrack/internal/leavebalance/errors"
	leavebalanceMock "go-webtrack/internal/leavebalance/mock"
	"go-webtrack/internal/leavetype"
	leavetypeMock "go-webtrack/internal/leavetype/mock"
	"go-webtrack/internal/shared/apperror"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type serviceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   leavebalance.Service
	repo      *leavebalanceMock.MockRepository
	employees *employeeMock.MockRepository
	types     *leavetypeMock.MockRepository
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := leavebalanceMock.NewMockRepository(ctrl)
	employees := employeeMock.NewMockRepository(ctrl)
	types := leavetypeMock.NewMockRepository(ctrl)

	policy, err := access.NewRolePolicy()
	assert.NoError(t, err)

	return &serviceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   leavebalance.NewService(db, repo, employees, types, policy),
		repo:      repo,
		employees: employees,
		types:     types,
	}
}

func actorAs(role access.Role, companyID string) access.Actor {
	return access.Actor{EmployeeID: uuid.New().String(), CompanyID: companyID, Role: role}
}

func TestLeaveBalanceService_GetBalance(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	leaveTypeID := uuid.New().String()

	t.Run("own balance defaults to current year", func(t *testing.T) {
		deps := setupServiceTest(t)
		actor := actorAs(access.RoleEmployee, companyID)
		want := leavebalance.Key{
			CompanyID:   companyID,
			EmployeeID:  actor.EmployeeID,
			LeaveTypeID: leaveTypeID,
			Year:        time.Now().Year(),
		}
		deps.repo.EXPECT().FindByKey(gomock.Any(), want).
			Return(leavebalance.NewLeaveBalance(uuid.MustParse(companyID), uuid.MustParse(actor.EmployeeID), uuid.MustParse(leaveTypeID), want.Year, 12), nil)

		resp, err := deps.service.GetBalance(ctx, actor, leavebalance.LookupQuery{LeaveTypeID: leaveTypeID})

		assert.NoError(t, err)
		assert.Equal(t, 12, resp.RemainingDays)
	})

	t.Run("employee cannot read a colleague", func(t *testing.T) {
		deps := setupServiceTest(t)
		actor := actorAs(access.RoleEmployee, companyID)
		other := uuid.New()
		managerID := uuid.New()
		deps.employees.EXPECT().FindByIDAndCompany(gomock.Any(), companyID, other.String()).
			Return(&employee.Employee{ID: other, ManagerID: &managerID}, nil)

		_, err := deps.service.GetBalance(ctx, actor, leavebalance.LookupQuery{EmployeeID: other.String(), LeaveTypeID: leaveTypeID})

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("hr reads anyone", func(t *testing.T) {
		deps := setupServiceTest(t)
		actor := actorAs(access.RoleHR, companyID)
		other := uuid.New()
		deps.employees.EXPECT().FindByIDAndCompany(gomock.Any(), companyID, other.String()).
			Return(&employee.Employee{ID: other}, nil)
		deps.repo.EXPECT().FindByKey(gomock.Any(), gomock.Any()).Return(nil, leavebalanceerrors.ErrLeaveBalanceNotFound)

		_, err := deps.service.GetBalance(ctx, actor, leavebalance.LookupQuery{EmployeeID: other.String(), LeaveTypeID: leaveTypeID, Year: 2025})

		assert.ErrorIs(t, err, leavebalanceerrors.ErrLeaveBalanceNotFound)
	})
}

func TestLeaveBalanceService_GetByID(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	t.Run("hidden balance reads as not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		actor := actorAs(access.RoleManager, companyID)
		owner := uuid.New()
		b := leavebalance.NewLeaveBalance(uuid.MustParse(companyID), owner, uuid.New(), 2026, 10)
		deps.repo.EXPECT().FindByIDAndCompany(gomock.Any(), companyID, b.ID.String()).Return(b, nil)
		deps.employees.EXPECT().FindByIDAndCompany(gomock.Any(), companyID, owner.String()).
			Return(&employee.Employee{ID: owner}, nil)

		_, err := deps.service.GetByID(ctx, actor, b.ID.String())

		assert.ErrorIs(t, err, leavebalanceerrors.ErrLeaveBalanceNotFound)
	})
}

func TestLeaveBalanceService_Summarize(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	t.Run("employee is pinned to own records", func(t *testing.T) {
		deps := setupServiceTest(t)
		actor := actorAs(access.RoleEmployee, companyID)
		deps.repo.EXPECT().
			Sum(gomock.Any(), actor, access.ScopeSelf, leavebalance.ListFilter{EmployeeID: actor.EmployeeID, Year: 2026}).
			Return(leavebalance.Totals{TotalDays: 32, UsedDays: 7, RemainingDays: 25}, nil)

		resp, err := deps.service.Summarize(ctx, actor, leavebalance.SummaryQuery{EmployeeID: uuid.New().String(), Year: 2026})

		assert.NoError(t, err)
		assert.Equal(t, actor.EmployeeID, resp.EmployeeID)
		assert.Equal(t, 25, resp.RemainingDays)
	})

	t.Run("hr may summarize everyone", func(t *testing.T) {
		deps := setupServiceTest(t)
		actor := actorAs(access.RoleHR, companyID)
		deps.repo.EXPECT().
			Sum(gomock.Any(), actor, access.ScopeAll, leavebalance.ListFilter{Year: time.Now().Year()}).
			Return(leavebalance.Totals{TotalDays: 300, UsedDays: 40, RemainingDays: 260}, nil)

		resp, err := deps.service.Summarize(ctx, actor, leavebalance.SummaryQuery{})

		assert.NoError(t, err)
		assert.Equal(t, "", resp.EmployeeID)
		assert.Equal(t, 300, resp.TotalDays)
	})
}

func TestLeaveBalanceService_List(t *testing.T) {
	deps := setupServiceTest(t)
	companyID := uuid.New().String()
	actor := actorAs(access.RoleEmployee, companyID)
	deps.repo.EXPECT().List(gomock.Any(), actor, access.ScopeSelf, leavebalance.ListFilter{Year: 2026}).
		Return([]leavebalance.LeaveBalance{*leavebalance.NewLeaveBalance(uuid.MustParse(companyID), uuid.MustParse(actor.EmployeeID), uuid.New(), 2026, 14)}, nil)

	resp, err := deps.service.List(context.Background(), actor, leavebalance.ListQuery{Year: 2026})

	assert.NoError(t, err)
	assert.Len(t, resp, 1)
	assert.Equal(t, 14, resp[0].TotalDays)
}

func TestLeaveBalanceService_Create(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	req := leavebalance.CreateLeaveBalanceRequest{
		EmployeeID:  uuid.New().String(),
		LeaveTypeID: uuid.New().String(),
		Year:        2026,
		TotalDays:   20,
		UsedDays:    3,
	}

	t.Run("hr cannot write", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Create(ctx, actorAs(access.RoleHR, companyID), req)

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("used above total is rejected before any write", func(t *testing.T) {
		deps := setupServiceTest(t)
		bad := req
		bad.UsedDays = 21

		_, err := deps.service.Create(ctx, actorAs(access.RoleAdmin, companyID), bad)

		assert.ErrorIs(t, err, leavebalanceerrors.ErrUsedExceedsTotal)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		deps.employees.EXPECT().WithTx(gomock.Any()).Return(deps.employees)
		deps.employees.EXPECT().FindByIDAndCompany(gomock.Any(), companyID, req.EmployeeID).Return(&employee.Employee{}, nil)
		deps.types.EXPECT().WithTx(gomock.Any()).Return(deps.types)
		deps.types.EXPECT().FindByIDAndCompany(gomock.Any(), companyID, req.LeaveTypeID).Return(&leavetype.LeaveType{}, nil)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, b *leavebalance.LeaveBalance) error {
				assert.Equal(t, 17, b.RemainingDays)
				return nil
			})

		resp, err := deps.service.Create(ctx, actorAs(access.RoleAdmin, companyID), req)

		assert.NoError(t, err)
		assert.Equal(t, 17, resp.RemainingDays)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("duplicate key", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()
		deps.employees.EXPECT().WithTx(gomock.Any()).Return(deps.employees)
		deps.employees.EXPECT().FindByIDAndCompany(gomock.Any(), companyID, req.EmployeeID).Return(&employee.Employee{}, nil)
		deps.types.EXPECT().WithTx(gomock.Any()).Return(deps.types)
		deps.types.EXPECT().FindByIDAndCompany(gomock.Any(), companyID, req.LeaveTypeID).Return(&leavetype.LeaveType{}, nil)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(leavebalanceerrors.ErrLeaveBalanceExists)

		_, err := deps.service.Create(ctx, actorAs(access.RoleAdmin, companyID), req)

		assert.ErrorIs(t, err, leavebalanceerrors.ErrLeaveBalanceExists)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveBalanceService_Patch(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	admin := actorAs(access.RoleAdmin, companyID)

	t.Run("recomputes remaining", func(t *testing.T) {
		deps := setupServiceTest(t)
		b := newBalance(20, 5)
		total := 25
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByIDForUpdate(gomock.Any(), companyID, b.ID.String()).Return(b, nil)
		deps.repo.EXPECT().Update(gomock.Any(), b).Return(nil)

		resp, err := deps.service.Patch(ctx, admin, b.ID.String(), leavebalance.PatchLeaveBalanceRequest{TotalDays: &total})

		assert.NoError(t, err)
		assert.Equal(t, 5, resp.UsedDays)
		assert.Equal(t, 20, resp.RemainingDays)
	})

	t.Run("used above total", func(t *testing.T) {
		deps := setupServiceTest(t)
		b := newBalance(20, 5)
		used := 21
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByIDForUpdate(gomock.Any(), companyID, b.ID.String()).Return(b, nil)

		_, err := deps.service.Patch(ctx, admin, b.ID.String(), leavebalance.PatchLeaveBalanceRequest{UsedDays: &used})

		assert.ErrorIs(t, err, leavebalanceerrors.ErrUsedExceedsTotal)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveBalanceService_Provision(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	t.Run("opens default entitlement per employee and type", func(t *testing.T) {
		deps := setupServiceTest(t)
		empA, empB := uuid.New(), uuid.New()
		annual := leavetype.LeaveType{ID: uuid.New(), DefaultDays: 12}
		sick := leavetype.LeaveType{ID: uuid.New(), DefaultDays: 6}
		year := 2027

		deps.employees.EXPECT().FindIDsByCompany(gomock.Any(), companyID).Return([]uuid.UUID{empA, empB}, nil)
		deps.types.EXPECT().FindAllByCompany(gomock.Any(), companyID).Return([]leavetype.LeaveType{annual, sick}, nil)
		deps.repo.EXPECT().InsertMissing(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, rows []leavebalance.LeaveBalance) (int64, error) {
				assert.Len(t, rows, 4)
				for _, r := range rows {
					assert.Equal(t, year, r.Year)
					assert.Equal(t, 0, r.UsedDays)
					assert.Equal(t, r.TotalDays, r.RemainingDays)
				}
				return 3, nil
			})

		resp, err := deps.service.Provision(ctx, actorAs(access.RoleAdmin, companyID), leavebalance.ProvisionRequest{Year: &year})

		assert.NoError(t, err)
		assert.Equal(t, int64(3), resp.Created)
		assert.Equal(t, year, resp.Year)
	})

	t.Run("employee lacks permission", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Provision(ctx, actorAs(access.RoleEmployee, companyID), leavebalance.ProvisionRequest{})

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("for one employee", func(t *testing.T) {
		deps := setupServiceTest(t)
		emp := uuid.New()
		deps.types.EXPECT().FindAllByCompany(gomock.Any(), companyID).
			Return([]leavetype.LeaveType{{ID: uuid.New(), DefaultDays: 12}}, nil)
		deps.repo.EXPECT().InsertMissing(gomock.Any(), gomock.Len(1)).Return(int64(1), nil)

		created, err := deps.service.ProvisionForEmployee(ctx, companyID, emp.String(), 2026)

		assert.NoError(t, err)
		assert.Equal(t, int64(1), created)
	})

	t.Run("bad employee id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.ProvisionForEmployee(ctx, companyID, "nope", 2026)

		assert.ErrorIs(t, err, leavebalanceerrors.ErrInvalidEmployeeID)
	})
}
