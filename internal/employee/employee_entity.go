package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee is the read-side projection of the HR employee record.
type Employee struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID  `gorm:"type:uuid;index"`
	FullName  string
	Email     string     `gorm:"uniqueIndex"`
	ManagerID *uuid.UUID `gorm:"type:uuid;index"`
	Role      string     `gorm:"type:varchar(20);not null;default:'EMPLOYEE'"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// ManagerIDString returns the manager id or "" when the employee has none.
func (e *Employee) ManagerIDString() string {
	if e == nil || e.ManagerID == nil {
		return ""
	}
	return e.ManagerID.String()
}
