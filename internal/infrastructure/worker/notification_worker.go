package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/traveldesk/travel-approval/internal/application/port"
	"go.uber.org/zap"
)

// NotificationWorkerConfig holds configuration for the outbox drainer
type NotificationWorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	SendTimeout  time.Duration
}

// DefaultNotificationWorkerConfig returns default configuration
func DefaultNotificationWorkerConfig() NotificationWorkerConfig {
	return NotificationWorkerConfig{
		PollInterval: 5 * time.Second,
		BatchSize:    20,
		SendTimeout:  30 * time.Second,
	}
}

// NotificationWorker drains the notification outbox: it polls for
// pending rows, delivers each through the mailer, and records the
// outcome. Delivery is at-least-once; a crash between Send and MarkSent
// redelivers on the next pass.
type NotificationWorker struct {
	config NotificationWorkerConfig

	notifications port.NotificationRepository
	users         port.UserRepository
	mailer        port.Mailer
	logger        *zap.Logger

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewNotificationWorker creates a new outbox drainer
func NewNotificationWorker(
	config NotificationWorkerConfig,
	notifications port.NotificationRepository,
	users port.UserRepository,
	mailer port.Mailer,
	logger *zap.Logger,
) *NotificationWorker {
	return &NotificationWorker{
		config:        config,
		notifications: notifications,
		users:         users,
		mailer:        mailer,
		logger:        logger,
	}
}

// Start begins the polling loop
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return fmt.Errorf("notification worker already running")
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.isRunning = true
	w.done = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("NotificationWorker started",
		zap.Duration("poll_interval", w.config.PollInterval),
		zap.Int("batch_size", w.config.BatchSize))

	go w.pollLoop(ctx)
	return nil
}

// Stop gracefully terminates the worker, waiting for an in-flight batch
// to finish.
func (w *NotificationWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	done := w.done
	w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}
	<-done

	w.logger.Info("NotificationWorker stopped")
	return nil
}

// Name returns the worker name for identification
func (w *NotificationWorker) Name() string {
	return "NotificationWorker"
}

func (w *NotificationWorker) pollLoop(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drainOnce(ctx)
		}
	}
}

// drainOnce delivers one batch of pending notifications
func (w *NotificationWorker) drainOnce(ctx context.Context) {
	pending, err := w.notifications.GetPending(ctx, w.config.BatchSize)
	if err != nil {
		w.logger.Error("Failed to load pending notifications", zap.Error(err))
		return
	}

	for _, notification := range pending {
		select {
		case <-ctx.Done():
			return
		default:
		}
		w.deliver(ctx, notification.ID, notification.UserID, notification.Subject, notification.Body, notification.Link)
	}
}

func (w *NotificationWorker) deliver(ctx context.Context, id, userID int64, subject, body, link string) {
	sendCtx, cancel := context.WithTimeout(ctx, w.config.SendTimeout)
	defer cancel()

	user, err := w.users.GetByID(sendCtx, userID)
	if err != nil {
		w.logger.Error("Failed to load notification recipient",
			zap.Int64("notification_id", id),
			zap.Int64("user_id", userID),
			zap.Error(err))
		return
	}
	if user == nil {
		w.markFailed(ctx, id, fmt.Sprintf("recipient %d not found", userID))
		return
	}

	if link != "" {
		body = body + "\n\n" + link
	}

	if err := w.mailer.Send(sendCtx, user.Email, subject, body); err != nil {
		w.logger.Warn("Notification delivery failed",
			zap.Int64("notification_id", id),
			zap.String("to", user.Email),
			zap.Error(err))
		w.markFailed(ctx, id, err.Error())
		return
	}

	if err := w.notifications.MarkSent(ctx, id, time.Now().UTC()); err != nil {
		w.logger.Error("Failed to mark notification sent",
			zap.Int64("notification_id", id),
			zap.Error(err))
		return
	}

	w.logger.Debug("Notification delivered",
		zap.Int64("notification_id", id),
		zap.String("to", user.Email))
}

func (w *NotificationWorker) markFailed(ctx context.Context, id int64, reason string) {
	if err := w.notifications.MarkFailed(ctx, id, reason); err != nil {
		w.logger.Error("Failed to mark notification failed",
			zap.Int64("notification_id", id),
			zap.Error(err))
	}
}
