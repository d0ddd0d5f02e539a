package leave_test

import (
	"context"
	"testing"
	"time"

	"go-webtrack/internal/leave"
	leaveerrors "go-webtrack/internal/leave/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) (leave.Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	assert.NoError(t, err)
	return leave.NewRepository(db), mock
}

func TestLeaveRepository_UpdatePending(t *testing.T) {
	ctx := context.Background()
	const updateQuery = `UPDATE "leave_requests" SET .* WHERE id = \$\d+ AND company_id = \$\d+ AND status = \$\d+ AND version = \$\d+`

	newRequest := func() *leave.LeaveRequest {
		return &leave.LeaveRequest{
			ID:        uuid.New(),
			CompanyID: uuid.New(),
			Status:    leave.StatusApproved,
			Version:   3,
		}
	}

	t.Run("bumps version when the guard matches", func(t *testing.T) {
		repo, mock := setupRepo(t)
		l := newRequest()
		mock.ExpectExec(updateQuery).WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdatePending(ctx, l)

		assert.NoError(t, err)
		assert.Equal(t, 4, l.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version", func(t *testing.T) {
		repo, mock := setupRepo(t)
		l := newRequest()
		mock.ExpectExec(updateQuery).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdatePending(ctx, l)

		assert.ErrorIs(t, err, leaveerrors.ErrConcurrentUpdate)
		assert.Equal(t, 3, l.Version)
	})
}

func TestLeaveRepository_HasOverlappingPeriod(t *testing.T) {
	ctx := context.Background()
	companyID, employeeID, self := uuid.NewString(), uuid.NewString(), uuid.NewString()
	start := time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 4)

	repo, mock := setupRepo(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "leave_requests" WHERE employee_id = \$1 AND status IN \(\$2,\$3\) AND NOT \(end_date < \$4 OR start_date > \$5\) AND id <> \$6 AND company_id = \$7`).
		WithArgs(employeeID, leave.StatusPending, leave.StatusApproved, start, end, self, companyID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	overlap, err := repo.HasOverlappingPeriod(ctx, companyID, employeeID, start, end, &self)

	assert.NoError(t, err)
	assert.True(t, overlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveRepository_FindByIDAndCompany_NotFound(t *testing.T) {
	repo, mock := setupRepo(t)
	mock.ExpectQuery(`SELECT \* FROM "leave_requests" WHERE id = \$1 AND company_id = \$2 ORDER BY`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByIDAndCompany(context.Background(), uuid.NewString(), uuid.NewString())

	assert.ErrorIs(t, err, leaveerrors.ErrLeaveRequestNotFound)
}
