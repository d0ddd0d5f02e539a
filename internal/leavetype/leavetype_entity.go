package leavetype

import (
	"strings"
	"time"

	"go-webtrack/internal/shared/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MaxNameLength  = 100
	MaxDefaultDays = 365
)

type LeaveType struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:varchar(100);not null"`
	Description string    `gorm:"type:text"`
	DefaultDays int       `gorm:"type:int;not null;default:0"`
	IsPaid      bool      `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (lt *LeaveType) Validate() error {
	name := strings.TrimSpace(lt.Name)
	if name == "" {
		return apperror.RequiredField("Name")
	}
	if len([]rune(name)) > MaxNameLength {
		return apperror.OutOfRange("name length", 1, MaxNameLength)
	}
	if lt.DefaultDays < 0 || lt.DefaultDays > MaxDefaultDays {
		return apperror.OutOfRange("default_days", 0, MaxDefaultDays)
	}
	lt.Name = name
	return nil
}
