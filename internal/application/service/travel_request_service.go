package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/traveldesk/travel-approval/internal/application/port"
	"github.com/traveldesk/travel-approval/internal/domain/entity"
	"github.com/traveldesk/travel-approval/internal/domain/lifecycle"
	"go.uber.org/zap"
)

// CancellationStats summarizes a user's cancellation history. Attached
// to review listings as information for the deciding admin; never used
// as a gate.
type CancellationStats struct {
	TotalCancellations   int `json:"total_cancellations"`
	PendingCancellations int `json:"pending_cancellations"`
}

// RequestWithStats pairs a request with its requester's cancellation
// history.
type RequestWithStats struct {
	Request *entity.TravelRequest `json:"request"`
	Stats   CancellationStats     `json:"user_cancellation_stats"`
}

// CancellationInitiation is the result of starting a cancellation. The
// link and token are only present on the handshake path.
type CancellationInitiation struct {
	Message          string `json:"message"`
	ConfirmationLink string `json:"confirmation_link,omitempty"`
	Token            string `json:"token,omitempty"`
}

// TravelRequestService owns every lifecycle transition of a travel
// request: who may trigger it, whether the current state permits it, and
// which side effects follow. Repositories and the notifier are the only
// ways it touches the outside world.
type TravelRequestService interface {
	Create(ctx context.Context, actor *entity.User, destination string, departureDate, returnDate string) (*entity.TravelRequest, error)
	Get(ctx context.Context, actor *entity.User, id int64) (*entity.TravelRequest, error)
	List(ctx context.Context, actor *entity.User, filter port.Filter) (*port.Page, error)
	UpdateStatus(ctx context.Context, actor *entity.User, id int64, status string) (*entity.TravelRequest, error)
	InitiateCancellation(ctx context.Context, actor *entity.User, id int64, reason string) (*CancellationInitiation, error)
	ConfirmCancellation(ctx context.Context, actor *entity.User, id int64, token string) (string, error)
	ListPendingCancellations(ctx context.Context, actor *entity.User) ([]*RequestWithStats, error)
	ReviewCancellation(ctx context.Context, actor *entity.User, id int64) (*RequestWithStats, error)
	ApproveCancellation(ctx context.Context, actor *entity.User, id int64, token string) (*entity.TravelRequest, error)
	RejectCancellation(ctx context.Context, actor *entity.User, id int64, token, reason string) (*entity.TravelRequest, error)
	UserCancellationStats(ctx context.Context, userID int64) (CancellationStats, error)
}

type travelRequestService struct {
	requests  port.TravelRequestRepository
	txManager port.TransactionManager
	notifier  port.Notifier
	clock     port.Clock
	tokens    port.TokenProvider
	links     port.LinkBuilder
	logger    *zap.Logger
}

// NewTravelRequestService creates the lifecycle engine.
func NewTravelRequestService(
	requests port.TravelRequestRepository,
	txManager port.TransactionManager,
	notifier port.Notifier,
	clock port.Clock,
	tokens port.TokenProvider,
	links port.LinkBuilder,
	logger *zap.Logger,
) TravelRequestService {
	return &travelRequestService{
		requests:  requests,
		txManager: txManager,
		notifier:  notifier,
		clock:     clock,
		tokens:    tokens,
		links:     links,
		logger:    logger,
	}
}

// Create validates trip facts and persists a new request in the
// requested state.
func (s *travelRequestService) Create(ctx context.Context, actor *entity.User, destination, departureDate, returnDate string) (*entity.TravelRequest, error) {
	if !CanCreate(actor) {
		return nil, &ForbiddenError{Action: "create travel request"}
	}
	if destination == "" {
		return nil, &ValidationError{Field: "destination", Message: "must not be empty"}
	}

	departure, err := parseDate(departureDate)
	if err != nil {
		return nil, &ValidationError{Field: "departure_date", Message: "must be a date in YYYY-MM-DD format"}
	}
	ret, err := parseDate(returnDate)
	if err != nil {
		return nil, &ValidationError{Field: "return_date", Message: "must be a date in YYYY-MM-DD format"}
	}

	now := s.clock.Now()
	if ret.Before(departure) {
		return nil, &ValidationError{Field: "return_date", Message: "must not be before departure date"}
	}
	if entity.DaysUntilDeparture(departure, now) < 0 {
		return nil, &ValidationError{Field: "departure_date", Message: "must not be in the past"}
	}

	request := &entity.TravelRequest{
		UserID:        actor.ID,
		Destination:   destination,
		DepartureDate: departure,
		ReturnDate:    ret,
		Status:        entity.StatusRequested,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.requests.Create(ctx, request); err != nil {
		return nil, &StorageError{Op: "create travel request", Err: err}
	}

	s.logger.Info("Travel request created",
		zap.Int64("id", request.ID),
		zap.Int64("user_id", actor.ID),
		zap.String("destination", destination))
	return request, nil
}

// Get returns one request, enforcing the view predicate.
func (s *travelRequestService) Get(ctx context.Context, actor *entity.User, id int64) (*entity.TravelRequest, error) {
	request, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanView(actor, request) {
		return nil, &ForbiddenError{Action: "view travel request"}
	}
	return request, nil
}

// List returns a filtered page. Non-admin actors only see their own
// requests.
func (s *travelRequestService) List(ctx context.Context, actor *entity.User, filter port.Filter) (*port.Page, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 {
		filter.PerPage = 15
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	scope := port.ListScope{UserID: actor.ID, Admin: actor.IsAdmin()}
	page, err := s.requests.ListWithFilters(ctx, scope, filter)
	if err != nil {
		return nil, &StorageError{Op: "list travel requests", Err: err}
	}
	return page, nil
}

// UpdateStatus approves or rejects a requested travel request. Admin
// only, and never on the admin's own request.
func (s *travelRequestService) UpdateStatus(ctx context.Context, actor *entity.User, id int64, status string) (*entity.TravelRequest, error) {
	if !CanUpdateStatus(actor) {
		return nil, &ForbiddenError{Action: "update travel request status"}
	}

	var trigger lifecycle.Trigger
	switch status {
	case entity.StatusApproved:
		trigger = lifecycle.TriggerApprove
	case entity.StatusRejected:
		trigger = lifecycle.TriggerReject
	default:
		return nil, &ValidationError{Field: "status", Message: "must be approved or rejected"}
	}

	var updated *entity.TravelRequest
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		request, err := s.find(txCtx, id)
		if err != nil {
			return err
		}

		if request.UserID == actor.ID {
			return &ForbiddenError{Action: "update travel request status", Reason: "requester cannot decide their own request"}
		}

		machine := buildMachine(request, s.clock.Now())
		if err := machine.Fire(trigger); err != nil {
			return s.transitionError(request, trigger, err)
		}

		newStatus := machine.State().String()
		if err := s.requests.Update(txCtx, id, port.TravelRequestUpdate{Status: &newStatus}); err != nil {
			return &StorageError{Op: "update travel request status", Err: err}
		}

		updated, err = s.find(txCtx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Travel request status updated",
		zap.Int64("id", id),
		zap.String("status", updated.Status),
		zap.Int64("decided_by", actor.ID))
	s.notifier.NotifyStatusChanged(ctx, updated)

	return updated, nil
}

// InitiateCancellation starts a cancellation. Requests that were never
// approved are canceled immediately; approved requests inside the
// allowed window enter the token-confirmed handshake instead.
func (s *travelRequestService) InitiateCancellation(ctx context.Context, actor *entity.User, id int64, reason string) (*CancellationInitiation, error) {
	if reason == "" {
		return nil, &ValidationError{Field: "cancellation_reason", Message: "must not be empty"}
	}

	var result *CancellationInitiation
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		request, err := s.find(txCtx, id)
		if err != nil {
			return err
		}

		if !CanInitiateCancellation(actor, request) {
			return &ForbiddenError{Action: "initiate cancellation"}
		}

		if request.Status == entity.StatusAwaitingCancellationConfirmation || request.IsPendingCancellation() {
			return &InvalidTransitionError{
				Current:   request.Status,
				Attempted: lifecycle.TriggerRequestCancellation.String(),
				Reason:    "a cancellation is already in progress",
			}
		}

		now := s.clock.Now()
		machine := buildMachine(request, now)

		if err := machine.Fire(lifecycle.TriggerCancelDirectly); err == nil {
			newStatus := machine.State().String()
			update := port.TravelRequestUpdate{
				Status:                  &newStatus,
				CancellationReason:      &reason,
				CancellationConfirmedAt: &now,
			}
			if err := s.requests.Update(txCtx, id, update); err != nil {
				return &StorageError{Op: "cancel travel request", Err: err}
			}

			s.logger.Info("Travel request canceled directly", zap.Int64("id", id), zap.Int64("by", actor.ID))
			result = &CancellationInitiation{Message: "Travel request canceled successfully."}
			return nil
		}

		if err := machine.Fire(lifecycle.TriggerRequestCancellation); err == nil {
			token := s.tokens.Generate(id, now)
			newStatus := machine.State().String()
			update := port.TravelRequestUpdate{
				Status:                  &newStatus,
				CancellationReason:      &reason,
				CancellationToken:       &token,
				CancellationRequestedAt: &now,
			}
			if err := s.requests.Update(txCtx, id, update); err != nil {
				return &StorageError{Op: "request cancellation", Err: err}
			}

			s.logger.Info("Cancellation handshake started", zap.Int64("id", id), zap.Int64("by", actor.ID))
			result = &CancellationInitiation{
				Message:          "This request is already approved. To proceed with the cancellation, follow the confirmation link.",
				ConfirmationLink: s.links.ConfirmationLink(id, token, now),
				Token:            token,
			}
			return nil
		}

		why := "only requested or approved requests can be canceled"
		switch request.Status {
		case entity.StatusApproved:
			why = fmt.Sprintf("departure must be more than %d days away", entity.DirectCancellationWindowDays)
		case entity.StatusRequested:
			why = "departure date has already passed"
		}
		return &InvalidTransitionError{
			Current:   request.Status,
			Attempted: lifecycle.TriggerRequestCancellation.String(),
			Reason:    why,
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ConfirmCancellation is the second handshake step: the requester proves
// possession of the confirmation link. Moves the request in front of the
// admins.
func (s *travelRequestService) ConfirmCancellation(ctx context.Context, actor *entity.User, id int64, token string) (string, error) {
	var updated *entity.TravelRequest
	var reviewLink string

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		request, err := s.find(txCtx, id)
		if err != nil {
			return err
		}

		if !CanConfirmCancellation(actor, request) {
			return &ForbiddenError{Action: "confirm cancellation"}
		}

		if err := s.checkToken(request, token, entity.StatusAwaitingCancellationConfirmation, lifecycle.TriggerConfirmCancellation); err != nil {
			return err
		}

		now := s.clock.Now()
		machine := buildMachine(request, now)
		if err := machine.Fire(lifecycle.TriggerConfirmCancellation); err != nil {
			return s.transitionError(request, lifecycle.TriggerConfirmCancellation, err)
		}

		newStatus := machine.State().String()
		if err := s.requests.Update(txCtx, id, port.TravelRequestUpdate{Status: &newStatus}); err != nil {
			return &StorageError{Op: "confirm cancellation", Err: err}
		}

		reviewLink = s.links.ReviewLink(id, token, now)
		updated, err = s.find(txCtx, id)
		return err
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("Cancellation confirmed, pending admin review", zap.Int64("id", id))
	s.notifier.NotifyCancellationRequested(ctx, updated, reviewLink)

	return "Your cancellation has been confirmed and sent for admin review.", nil
}

// ListPendingCancellations returns every request awaiting an admin
// decision, annotated with the requester's cancellation history.
func (s *travelRequestService) ListPendingCancellations(ctx context.Context, actor *entity.User) ([]*RequestWithStats, error) {
	if !CanApproveCancellation(actor) {
		return nil, &ForbiddenError{Action: "list pending cancellations"}
	}

	requests, err := s.requests.FindByStatus(ctx, entity.StatusPendingCancellation)
	if err != nil {
		return nil, &StorageError{Op: "list pending cancellations", Err: err}
	}

	result := make([]*RequestWithStats, 0, len(requests))
	for _, request := range requests {
		stats, err := s.UserCancellationStats(ctx, request.UserID)
		if err != nil {
			return nil, err
		}
		result = append(result, &RequestWithStats{Request: request, Stats: stats})
	}
	return result, nil
}

// ReviewCancellation shows one pending cancellation to an admin.
func (s *travelRequestService) ReviewCancellation(ctx context.Context, actor *entity.User, id int64) (*RequestWithStats, error) {
	if !CanApproveCancellation(actor) {
		return nil, &ForbiddenError{Action: "review cancellation"}
	}

	request, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if !request.IsPendingCancellation() {
		return nil, &InvalidTransitionError{
			Current:   request.Status,
			Attempted: "review",
			Reason:    "request is not pending cancellation",
		}
	}

	stats, err := s.UserCancellationStats(ctx, request.UserID)
	if err != nil {
		return nil, err
	}
	return &RequestWithStats{Request: request, Stats: stats}, nil
}

// ApproveCancellation closes the handshake by canceling the trip.
func (s *travelRequestService) ApproveCancellation(ctx context.Context, actor *entity.User, id int64, token string) (*entity.TravelRequest, error) {
	if !CanApproveCancellation(actor) {
		return nil, &ForbiddenError{Action: "approve cancellation"}
	}

	var updated *entity.TravelRequest
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		request, err := s.find(txCtx, id)
		if err != nil {
			return err
		}

		if err := s.checkToken(request, token, entity.StatusPendingCancellation, lifecycle.TriggerApproveCancellation); err != nil {
			return err
		}

		now := s.clock.Now()
		machine := buildMachine(request, now)
		if err := machine.Fire(lifecycle.TriggerApproveCancellation); err != nil {
			return s.transitionError(request, lifecycle.TriggerApproveCancellation, err)
		}

		newStatus := machine.State().String()
		clearedToken := ""
		update := port.TravelRequestUpdate{
			Status:                  &newStatus,
			CancellationToken:       &clearedToken,
			CancellationConfirmedAt: &now,
		}
		if err := s.requests.Update(txCtx, id, update); err != nil {
			return &StorageError{Op: "approve cancellation", Err: err}
		}

		updated, err = s.find(txCtx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cancellation approved", zap.Int64("id", id), zap.Int64("decided_by", actor.ID))
	s.notifier.NotifyCancellationApproved(ctx, updated)

	return updated, nil
}

// RejectCancellation closes the handshake by keeping the trip and
// recording why.
func (s *travelRequestService) RejectCancellation(ctx context.Context, actor *entity.User, id int64, token, reason string) (*entity.TravelRequest, error) {
	if !CanRejectCancellation(actor) {
		return nil, &ForbiddenError{Action: "reject cancellation"}
	}
	if reason == "" {
		return nil, &ValidationError{Field: "rejection_reason", Message: "must not be empty"}
	}

	var updated *entity.TravelRequest
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		request, err := s.find(txCtx, id)
		if err != nil {
			return err
		}

		if err := s.checkToken(request, token, entity.StatusPendingCancellation, lifecycle.TriggerRejectCancellation); err != nil {
			return err
		}

		now := s.clock.Now()
		machine := buildMachine(request, now)
		if err := machine.Fire(lifecycle.TriggerRejectCancellation); err != nil {
			return s.transitionError(request, lifecycle.TriggerRejectCancellation, err)
		}

		newStatus := machine.State().String()
		clearedToken := ""
		update := port.TravelRequestUpdate{
			Status:                 &newStatus,
			RejectionReason:        &reason,
			CancellationToken:      &clearedToken,
			CancellationRejectedAt: &now,
		}
		if err := s.requests.Update(txCtx, id, update); err != nil {
			return &StorageError{Op: "reject cancellation", Err: err}
		}

		updated, err = s.find(txCtx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cancellation rejected", zap.Int64("id", id), zap.Int64("decided_by", actor.ID))
	s.notifier.NotifyCancellationRejected(ctx, updated, reason)

	return updated, nil
}

// UserCancellationStats computes the cancellation history of one user.
func (s *travelRequestService) UserCancellationStats(ctx context.Context, userID int64) (CancellationStats, error) {
	total, err := s.requests.CountByUserAndStatus(ctx, userID, entity.StatusCanceled)
	if err != nil {
		return CancellationStats{}, &StorageError{Op: "count cancellations", Err: err}
	}

	pending, err := s.requests.CountByUserAndStatus(ctx, userID,
		entity.StatusPendingCancellation, entity.StatusAwaitingCancellationConfirmation)
	if err != nil {
		return CancellationStats{}, &StorageError{Op: "count pending cancellations", Err: err}
	}

	return CancellationStats{TotalCancellations: total, PendingCancellations: pending}, nil
}

// find loads a request, translating missing rows into NotFoundError and
// everything else into StorageError.
func (s *travelRequestService) find(ctx context.Context, id int64) (*entity.TravelRequest, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, &StorageError{Op: "get travel request", Err: err}
	}
	if request == nil {
		return nil, &NotFoundError{ID: id}
	}
	return request, nil
}

// checkToken validates the handshake capability: the stored token must
// match and the request must sit in the expected handshake state.
func (s *travelRequestService) checkToken(request *entity.TravelRequest, token, expectedStatus string, trigger lifecycle.Trigger) error {
	if request.Status != expectedStatus {
		return &InvalidTransitionError{
			Current:   request.Status,
			Attempted: trigger.String(),
			Reason:    fmt.Sprintf("request is not in %s state", expectedStatus),
		}
	}
	if request.CancellationToken == "" || request.CancellationToken != token {
		return &InvalidTransitionError{
			Current:   request.Status,
			Attempted: trigger.String(),
			Reason:    "cancellation token mismatch",
		}
	}
	return nil
}

func (s *travelRequestService) transitionError(request *entity.TravelRequest, trigger lifecycle.Trigger, err error) error {
	reason := "state does not permit this transition"
	if errors.Is(err, lifecycle.ErrGuardFailed) {
		reason = "transition guard failed"
	}
	return &InvalidTransitionError{
		Current:   request.Status,
		Attempted: trigger.String(),
		Reason:    reason,
	}
}
