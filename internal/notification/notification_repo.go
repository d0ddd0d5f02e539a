package notification

import (
	"context"
	"database/sql"
	"errors"
	"time"

	notificationerrors "go-webtrack/internal/notification/errors"
	"go-webtrack/internal/shared/connection"
	"go-webtrack/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=notification_repo.go -destination=mock/notification_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// CreateMany inserts notifications, skipping any whose reference, recipient
	// and title already exist. It returns how many rows were written.
	CreateMany(ctx context.Context, notifications []Notification) (int64, error)
	ListByRecipient(ctx context.Context, companyID, recipientID string, unreadOnly bool) ([]Notification, error)
	FindByIDAndRecipient(ctx context.Context, companyID, recipientID, id string) (*Notification, error)
	MarkRead(ctx context.Context, n *Notification, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: connection.BindTx(r.db, tx)}
}

func (r *repository) CreateMany(ctx context.Context, notifications []Notification) (int64, error) {
	if len(notifications) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "reference_id"}, {Name: "recipient_id"}, {Name: "title"}},
			DoNothing: true,
		}).
		Create(&notifications)
	return res.RowsAffected, res.Error
}

func (r *repository) ListByRecipient(ctx context.Context, companyID, recipientID string, unreadOnly bool) ([]Notification, error) {
	q := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("recipient_id = ?", recipientID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var notifications []Notification
	err := q.Order("created_at DESC").Find(&notifications).Error
	return notifications, err
}

func (r *repository) FindByIDAndRecipient(ctx context.Context, companyID, recipientID, id string) (*Notification, error) {
	var n Notification
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("recipient_id = ?", recipientID).
		First(&n, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notificationerrors.ErrNotificationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *repository) MarkRead(ctx context.Context, n *Notification, at time.Time) error {
	n.MarkRead(at)
	res := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ? AND recipient_id = ?", n.ID, n.RecipientID).
		Updates(map[string]any{"is_read": true, "read_at": n.ReadAt})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notificationerrors.ErrNotificationNotFound
	}
	return nil
}
