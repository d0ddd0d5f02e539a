package notification_test

import (
	"context"
	"testing"

	"go-webtrack/internal/notification"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestNotificationRepository_CreateMany(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer sqlDB.Close()
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	assert.NoError(t, err)
	repo := notification.NewRepository(db)

	mock.ExpectQuery(`INSERT INTO "notifications" .* ON CONFLICT \("reference_id","recipient_id","title"\) DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"priority"}))

	_, err = repo.CreateMany(context.Background(), []notification.Notification{{
		ID:          uuid.New(),
		CompanyID:   uuid.New(),
		RecipientID: uuid.New(),
		ReferenceID: uuid.New(),
		Title:       "Leave request approved",
		Priority:    notification.PriorityHigh,
	}})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_CreateMany_Empty(t *testing.T) {
	repo := notification.NewRepository(nil)

	n, err := repo.CreateMany(context.Background(), nil)

	assert.NoError(t, err)
	assert.Zero(t, n)
}
