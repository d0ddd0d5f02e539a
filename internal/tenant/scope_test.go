package tenant_test

import (
	"testing"

	"go-webtrack/internal/access"
	"go-webtrack/internal/tenant"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type row struct {
	ID         string
	CompanyID  string
	EmployeeID string
}

func dryRun(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, _, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DryRun: true})
	assert.NoError(t, err)
	return db
}

func TestVisible(t *testing.T) {
	actor := access.Actor{EmployeeID: "e1", CompanyID: "c1"}

	tests := []struct {
		name  string
		scope access.Scope
		want  string
	}{
		{"all", access.ScopeAll, `WHERE company_id = $1`},
		{"self", access.ScopeSelf, `employee_id = $2`},
		{"team", access.ScopeTeam, `SELECT id FROM employees WHERE manager_id = $3`},
		{"none", access.ScopeNone, `1 = 0`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rows []row
			stmt := dryRun(t).Table("rows").
				Scopes(tenant.Scope(actor.CompanyID), tenant.Visible(actor, tt.scope, "employee_id")).
				Find(&rows).Statement

			assert.Contains(t, stmt.SQL.String(), tt.want)
		})
	}
}
