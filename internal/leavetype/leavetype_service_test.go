package leavetype_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-webtrack/internal/access"
	"go-webtrack/internal/leavetype"
	leavetypeerrors "go-webtrack/internal/leavetype/errors"
	leavetypeMock "go-webtrack/internal/leavetype/mock"
	"go-webtrack/internal/shared/apperror"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type serviceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   leavetype.Service
	repo      *leavetypeMock.MockRepository
	redismock redismock.ClientMock
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	rdb, redisMock := redismock.NewClientMock()
	repo := leavetypeMock.NewMockRepository(ctrl)

	policy, err := access.NewRolePolicy()
	assert.NoError(t, err)

	return &serviceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   leavetype.NewService(db, repo, rdb, policy),
		repo:      repo,
		redismock: redisMock,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func actorWithRole(companyID string, role access.Role) access.Actor {
	return access.Actor{EmployeeID: uuid.New().String(), CompanyID: companyID, Role: role}
}

func TestLeaveTypeService_Create(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	admin := actorWithRole(companyID, access.RoleAdmin)

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, lt *leavetype.LeaveType) error {
				assert.Equal(t, "Annual", lt.Name)
				assert.Equal(t, 12, lt.DefaultDays)
				assert.True(t, lt.IsPaid)
				assert.Equal(t, companyID, lt.CompanyID.String())
				return nil
			})
		deps.redismock.ExpectDel(leavetype.GetLeaveTypeAllKey(companyID)).SetVal(1)

		resp, err := deps.service.Create(ctx, admin, leavetype.CreateLeaveTypeRequest{Name: " Annual ", DefaultDays: 12})

		assert.NoError(t, err)
		assert.Equal(t, "Annual", resp.Name)
		assert.True(t, resp.IsPaid)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("unpaid flag honoured", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		unpaid := false
		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		deps.redismock.ExpectDel(leavetype.GetLeaveTypeAllKey(companyID)).SetVal(0)

		resp, err := deps.service.Create(ctx, admin, leavetype.CreateLeaveTypeRequest{Name: "Unpaid", IsPaid: &unpaid})

		assert.NoError(t, err)
		assert.False(t, resp.IsPaid)
	})

	t.Run("forbidden for hr", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, actorWithRole(companyID, access.RoleHR), leavetype.CreateLeaveTypeRequest{Name: "Annual"})

		assert.ErrorIs(t, err, apperror.ErrForbidden)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("default days out of range", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, admin, leavetype.CreateLeaveTypeRequest{Name: "Annual", DefaultDays: 400})

		httpErr := apperror.ToHTTP(err)
		assert.Equal(t, apperror.CodeValidation, httpErr.Code)
		assert.Equal(t, map[string]int{"min": 0, "max": 365}, httpErr.Details)
	})

	t.Run("duplicate name -> rollback", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(leavetypeerrors.ErrLeaveTypeNameTaken)

		_, err := deps.service.Create(ctx, admin, leavetype.CreateLeaveTypeRequest{Name: "Annual"})

		assert.ErrorIs(t, err, leavetypeerrors.ErrLeaveTypeNameTaken)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveTypeService_GetAll(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employee := actorWithRole(companyID, access.RoleEmployee)
	cacheKey := leavetype.GetLeaveTypeAllKey(companyID)

	t.Run("cache hit", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		cached := []leavetype.LeaveTypeResponse{{ID: uuid.New().String(), Name: "Sick"}}
		raw, _ := json.Marshal(cached)
		deps.redismock.ExpectGet(cacheKey).SetVal(string(raw))

		resp, err := deps.service.GetAll(ctx, employee)

		assert.NoError(t, err)
		assert.Equal(t, cached, resp)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("cache miss fills cache", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		lt := leavetype.LeaveType{ID: uuid.New(), CompanyID: uuid.MustParse(companyID), Name: "Annual", DefaultDays: 12, IsPaid: true}
		expected := []leavetype.LeaveTypeResponse{{
			ID:          lt.ID.String(),
			CompanyID:   companyID,
			Name:        "Annual",
			DefaultDays: 12,
			IsPaid:      true,
		}}
		raw, _ := json.Marshal(expected)

		deps.redismock.ExpectGet(cacheKey).RedisNil()
		deps.repo.EXPECT().FindAllByCompany(gomock.Any(), companyID).Return([]leavetype.LeaveType{lt}, nil)
		deps.redismock.ExpectSet(cacheKey, raw, 30*time.Minute).SetVal("OK")

		resp, err := deps.service.GetAll(ctx, employee)

		assert.NoError(t, err)
		assert.Equal(t, expected, resp)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("repo error", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.redismock.ExpectGet(cacheKey).RedisNil()
		deps.repo.EXPECT().FindAllByCompany(gomock.Any(), companyID).Return(nil, errors.New("db down"))

		_, err := deps.service.GetAll(ctx, employee)

		assert.Error(t, err)
	})
}

func TestLeaveTypeService_Patch(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	admin := actorWithRole(companyID, access.RoleAdmin)
	id := uuid.New()

	t.Run("only provided fields change", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		days := 20
		existing := &leavetype.LeaveType{ID: id, CompanyID: uuid.MustParse(companyID), Name: "Annual", Description: "yearly", DefaultDays: 12, IsPaid: true}

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByIDAndCompany(gomock.Any(), companyID, id.String()).Return(existing, nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, lt *leavetype.LeaveType) error {
				assert.Equal(t, "Annual", lt.Name)
				assert.Equal(t, "yearly", lt.Description)
				assert.Equal(t, 20, lt.DefaultDays)
				return nil
			})
		deps.redismock.ExpectDel(leavetype.GetLeaveTypeAllKey(companyID)).SetVal(1)

		resp, err := deps.service.Patch(ctx, admin, id.String(), leavetype.PatchLeaveTypeRequest{DefaultDays: &days})

		assert.NoError(t, err)
		assert.Equal(t, 20, resp.DefaultDays)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("blank name rejected", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		blank := "  "
		existing := &leavetype.LeaveType{ID: id, CompanyID: uuid.MustParse(companyID), Name: "Annual"}

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByIDAndCompany(gomock.Any(), companyID, id.String()).Return(existing, nil)

		_, err := deps.service.Patch(ctx, admin, id.String(), leavetype.PatchLeaveTypeRequest{Name: &blank})

		assert.Equal(t, apperror.CodeValidation, apperror.ToHTTP(err).Code)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveTypeService_Delete(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	admin := actorWithRole(companyID, access.RoleAdmin)

	t.Run("not found -> rollback", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		id := uuid.New().String()
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Delete(gomock.Any(), companyID, id).Return(leavetypeerrors.ErrLeaveTypeNotFound)

		err := deps.service.Delete(ctx, admin, id)

		assert.ErrorIs(t, err, leavetypeerrors.ErrLeaveTypeNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("employee forbidden", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		err := deps.service.Delete(ctx, actorWithRole(companyID, access.RoleEmployee), uuid.New().String())

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})
}
