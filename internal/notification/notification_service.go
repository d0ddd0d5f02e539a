package notification

import (
	"context"
	"fmt"
	"time"

	"go-webtrack/internal/access"
	"go-webtrack/internal/events"
	notificationerrors "go-webtrack/internal/notification/errors"
	"go-webtrack/internal/shared/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	List(ctx context.Context, actor access.Actor, q ListQuery) ([]NotificationResponse, error)
	MarkRead(ctx context.Context, actor access.Actor, id string) (NotificationResponse, error)
	// NotifyLeaveEvent fans a leave request lifecycle event out to the people
	// it concerns. Redelivered events create nothing new.
	NotifyLeaveEvent(ctx context.Context, evt events.LeaveRequestEvent) (int64, error)
}

type service struct {
	repo   Repository
	policy access.Policy
	now    func() time.Time
	logger *zap.Logger
}

func NewService(repo Repository, policy access.Policy, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{repo: repo, policy: policy, now: time.Now, logger: l}
}

func (s *service) authorize(actor access.Actor, action access.Action) error {
	res := access.Resource{Kind: access.KindNotification, OwnerID: actor.EmployeeID}
	if !s.policy.CanMutate(actor, action, res) {
		return apperror.ErrForbidden
	}
	return nil
}

func (s *service) List(ctx context.Context, actor access.Actor, q ListQuery) ([]NotificationResponse, error) {
	if err := s.authorize(actor, access.ActionRead); err != nil {
		return nil, err
	}

	notifications, err := s.repo.ListByRecipient(ctx, actor.CompanyID, actor.EmployeeID, q.UnreadOnly)
	if err != nil {
		s.logger.Error("list notifications failed", zap.String("recipient_id", actor.EmployeeID), zap.Error(err))
		return nil, err
	}

	resp := make([]NotificationResponse, len(notifications))
	for i, n := range notifications {
		resp[i] = mapToResponse(n)
	}
	return resp, nil
}

func (s *service) MarkRead(ctx context.Context, actor access.Actor, id string) (NotificationResponse, error) {
	if err := s.authorize(actor, access.ActionUpdate); err != nil {
		return NotificationResponse{}, err
	}

	n, err := s.repo.FindByIDAndRecipient(ctx, actor.CompanyID, actor.EmployeeID, id)
	if err != nil {
		return NotificationResponse{}, err
	}
	if n.IsRead {
		return mapToResponse(*n), nil
	}

	if err := s.repo.MarkRead(ctx, n, s.now()); err != nil {
		s.logger.Error("mark notification read failed", zap.String("notification_id", id), zap.Error(err))
		return NotificationResponse{}, err
	}
	return mapToResponse(*n), nil
}

func (s *service) NotifyLeaveEvent(ctx context.Context, evt events.LeaveRequestEvent) (int64, error) {
	log := s.logger.With(
		zap.String("event_type", evt.EventType),
		zap.String("leave_request_id", evt.LeaveRequestID),
		zap.String("request_id", evt.RequestID),
	)

	drafts := leaveNotifications(evt)
	if len(drafts) == 0 {
		log.Debug("leave event needs no notification")
		return 0, nil
	}

	companyID, err := uuid.Parse(evt.CompanyID)
	if err != nil {
		return 0, notificationerrors.ErrInvalidReferenceID
	}
	referenceID, err := uuid.Parse(evt.LeaveRequestID)
	if err != nil {
		return 0, notificationerrors.ErrInvalidReferenceID
	}

	rows := make([]Notification, 0, len(drafts))
	for _, d := range drafts {
		recipientID, err := uuid.Parse(d.recipientID)
		if err != nil {
			return 0, notificationerrors.ErrInvalidRecipientID
		}
		rows = append(rows, Notification{
			ID:               uuid.New(),
			CompanyID:        companyID,
			RecipientID:      recipientID,
			Title:            d.title,
			Message:          d.message,
			NotificationType: TypeLeave,
			Priority:         d.priority,
			ReferenceID:      referenceID,
		})
	}

	created, err := s.repo.CreateMany(ctx, rows)
	if err != nil {
		log.Error("persist leave notifications failed", zap.Error(err))
		return 0, err
	}
	if created < int64(len(rows)) {
		log.Info("duplicate leave notifications skipped", zap.Int64("skipped", int64(len(rows))-created))
	}
	return created, nil
}

type draft struct {
	recipientID string
	title       string
	message     string
	priority    string
}

// leaveNotifications decides who hears about a leave event. The requester's
// manager learns about new requests and about cancellations the requester made;
// the requester learns about every decision taken by someone else.
func leaveNotifications(evt events.LeaveRequestEvent) []draft {
	period := fmt.Sprintf("%s to %s (%d day(s))", evt.StartDate, evt.EndDate, evt.DaysRequested)
	hasManager := evt.ManagerID != "" && evt.ManagerID != evt.EmployeeID

	switch evt.EventType {
	case events.EventLeaveRequestCreated:
		if !hasManager {
			return nil
		}
		return []draft{{
			recipientID: evt.ManagerID,
			title:       "New leave request",
			message:     "A leave request from " + period + " is waiting for your approval.",
			priority:    PriorityMedium,
		}}
	case events.EventLeaveRequestApproved:
		return []draft{{
			recipientID: evt.EmployeeID,
			title:       "Leave request approved",
			message:     "Your leave request from " + period + " was approved.",
			priority:    PriorityHigh,
		}}
	case events.EventLeaveRequestRejected:
		msg := "Your leave request from " + period + " was rejected."
		if evt.RejectionReason != "" {
			msg += " Reason: " + evt.RejectionReason
		}
		return []draft{{
			recipientID: evt.EmployeeID,
			title:       "Leave request rejected",
			message:     msg,
			priority:    PriorityHigh,
		}}
	case events.EventLeaveRequestCancelled:
		if evt.ActorID != evt.EmployeeID {
			return []draft{{
				recipientID: evt.EmployeeID,
				title:       "Leave request cancelled",
				message:     "Your leave request from " + period + " was cancelled.",
				priority:    PriorityLow,
			}}
		}
		if !hasManager {
			return nil
		}
		return []draft{{
			recipientID: evt.ManagerID,
			title:       "Leave request cancelled",
			message:     "A pending leave request from " + period + " was withdrawn.",
			priority:    PriorityLow,
		}}
	default:
		return nil
	}
}

func mapToResponse(n Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:               n.ID.String(),
		Title:            n.Title,
		Message:          n.Message,
		NotificationType: n.NotificationType,
		Priority:         n.Priority,
		IsRead:           n.IsRead,
		ReferenceID:      n.ReferenceID.String(),
	}
	if n.ReadAt != nil {
		v := n.ReadAt.Format(time.RFC3339)
		resp.ReadAt = &v
	}
	if !n.CreatedAt.IsZero() {
		resp.CreatedAt = n.CreatedAt.Format(time.RFC3339)
	}
	return resp
}
