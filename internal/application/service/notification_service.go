package service

import (
	"context"
	"fmt"

	"github.com/traveldesk/travel-approval/internal/application/port"
	"github.com/traveldesk/travel-approval/internal/domain/entity"
	"go.uber.org/zap"
)

// NotificationService implements port.Notifier by writing outbox rows.
// Actual delivery happens asynchronously in the notification worker, so
// a transition's state change is never held hostage by a mail server.
// Every method swallows its own errors after logging them.
type NotificationService struct {
	users         port.UserRepository
	notifications port.NotificationRepository
	logger        *zap.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(
	users port.UserRepository,
	notifications port.NotificationRepository,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		users:         users,
		notifications: notifications,
		logger:        logger,
	}
}

// NotifyStatusChanged tells the requester their request was approved or
// rejected.
func (s *NotificationService) NotifyStatusChanged(ctx context.Context, request *entity.TravelRequest) {
	subject := "Travel request status updated"
	body := fmt.Sprintf("Your travel request to %s is now %s.", request.Destination, request.Status)
	s.enqueue(ctx, request.UserID, subject, body, "")
}

// NotifyCancellationRequested fans a signed review link out to every
// admin.
func (s *NotificationService) NotifyCancellationRequested(ctx context.Context, request *entity.TravelRequest, reviewLink string) {
	admins, err := s.users.FindAdmins(ctx)
	if err != nil {
		s.logger.Error("Failed to load admins for cancellation notification",
			zap.Int64("request_id", request.ID), zap.Error(err))
		return
	}
	if len(admins) == 0 {
		s.logger.Warn("No admins to notify about cancellation request", zap.Int64("request_id", request.ID))
		return
	}

	subject := "Travel cancellation awaiting review"
	body := fmt.Sprintf("A cancellation of the approved trip to %s (request %d) needs your decision.",
		request.Destination, request.ID)
	for _, admin := range admins {
		s.enqueue(ctx, admin.ID, subject, body, reviewLink)
	}
}

// NotifyCancellationApproved tells the requester their trip was
// canceled.
func (s *NotificationService) NotifyCancellationApproved(ctx context.Context, request *entity.TravelRequest) {
	subject := "Travel cancellation approved"
	body := fmt.Sprintf("Your cancellation of the trip to %s was approved.", request.Destination)
	s.enqueue(ctx, request.UserID, subject, body, "")
}

// NotifyCancellationRejected tells the requester the trip stands.
func (s *NotificationService) NotifyCancellationRejected(ctx context.Context, request *entity.TravelRequest, reason string) {
	subject := "Travel cancellation rejected"
	body := fmt.Sprintf("Your cancellation of the trip to %s was rejected: %s", request.Destination, reason)
	s.enqueue(ctx, request.UserID, subject, body, "")
}

func (s *NotificationService) enqueue(ctx context.Context, userID int64, subject, body, link string) {
	notification := &entity.Notification{
		UserID:  userID,
		Subject: subject,
		Body:    body,
		Link:    link,
		Status:  entity.NotificationStatusPending,
	}

	if err := s.notifications.Create(ctx, notification); err != nil {
		s.logger.Error("Failed to enqueue notification",
			zap.Int64("user_id", userID),
			zap.String("subject", subject),
			zap.Error(err))
		return
	}

	s.logger.Debug("Notification enqueued",
		zap.Int64("notification_id", notification.ID),
		zap.Int64("user_id", userID),
		zap.String("subject", subject))
}

// Verify interface compliance
var _ port.Notifier = (*NotificationService)(nil)
