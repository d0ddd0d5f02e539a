package employee_test

import (
	"context"
	"regexp"
	"testing"

	"go-webtrack/internal/employee"
	employeeerrors "go-webtrack/internal/employee/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) (employee.Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	assert.NoError(t, err)
	return employee.NewRepository(db), mock
}

func TestRepository_FindByIDAndCompany(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	id := uuid.New()
	managerID := uuid.New()

	t.Run("found", func(t *testing.T) {
		repo, mock := setupRepo(t)
		rows := sqlmock.NewRows([]string{"id", "company_id", "full_name", "manager_id", "role"}).
			AddRow(id.String(), companyID.String(), "Dewi", managerID.String(), "EMPLOYEE")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "employees" WHERE id = $1 AND company_id = $2 AND "employees"."deleted_at" IS NULL`)).
			WillReturnRows(rows)

		e, err := repo.FindByIDAndCompany(ctx, companyID.String(), id.String())

		assert.NoError(t, err)
		assert.Equal(t, "Dewi", e.FullName)
		assert.Equal(t, managerID.String(), e.ManagerIDString())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectQuery(`SELECT \* FROM "employees"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByIDAndCompany(ctx, companyID.String(), id.String())

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}

func TestEmployee_ManagerIDString(t *testing.T) {
	var nilEmp *employee.Employee
	assert.Equal(t, "", nilEmp.ManagerIDString())
	assert.Equal(t, "", (&employee.Employee{}).ManagerIDString())
}
