package tenant

import (
	"go-webtrack/internal/access"

	"gorm.io/gorm"
)

func Scope(companyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ?", companyID)
	}
}

// Visible narrows rows by the owner column according to the actor's scope.
// Team reach covers the actor and their direct reports.
func Visible(actor access.Actor, scope access.Scope, ownerColumn string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch scope {
		case access.ScopeAll:
			return db
		case access.ScopeTeam:
			return db.Where(
				ownerColumn+" = ? OR "+ownerColumn+" IN (SELECT id FROM employees WHERE manager_id = ? AND company_id = ? AND deleted_at IS NULL)",
				actor.EmployeeID, actor.EmployeeID, actor.CompanyID,
			)
		case access.ScopeSelf:
			return db.Where(ownerColumn+" = ?", actor.EmployeeID)
		default:
			return db.Where("1 = 0")
		}
	}
}
