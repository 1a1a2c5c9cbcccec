package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traveldesk/travel-approval/internal/application/port"
	"github.com/traveldesk/travel-approval/internal/domain/entity"
	"go.uber.org/zap"
)

// In-memory fake repository with optional error injection
type fakeRequestRepo struct {
	requests map[int64]*entity.TravelRequest
	nextID   int64

	getErr    error
	updateErr error
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[int64]*entity.TravelRequest), nextID: 1}
}

func (r *fakeRequestRepo) Create(ctx context.Context, request *entity.TravelRequest) error {
	request.ID = r.nextID
	r.nextID++
	stored := *request
	r.requests[request.ID] = &stored
	return nil
}

func (r *fakeRequestRepo) GetByID(ctx context.Context, id int64) (*entity.TravelRequest, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	request, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	copied := *request
	return &copied, nil
}

func (r *fakeRequestRepo) Update(ctx context.Context, id int64, update port.TravelRequestUpdate) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	request, ok := r.requests[id]
	if !ok {
		return errors.New("row not found")
	}
	if update.Status != nil {
		request.Status = *update.Status
	}
	if update.CancellationReason != nil {
		request.CancellationReason = *update.CancellationReason
	}
	if update.RejectionReason != nil {
		request.RejectionReason = *update.RejectionReason
	}
	if update.CancellationToken != nil {
		request.CancellationToken = *update.CancellationToken
	}
	if update.CancellationRequestedAt != nil {
		t := *update.CancellationRequestedAt
		request.CancellationRequestedAt = &t
	}
	if update.CancellationConfirmedAt != nil {
		t := *update.CancellationConfirmedAt
		request.CancellationConfirmedAt = &t
	}
	if update.CancellationRejectedAt != nil {
		t := *update.CancellationRejectedAt
		request.CancellationRejectedAt = &t
	}
	return nil
}

func (r *fakeRequestRepo) FindByStatus(ctx context.Context, status string) ([]*entity.TravelRequest, error) {
	var result []*entity.TravelRequest
	for _, request := range r.requests {
		if request.Status == status {
			copied := *request
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *fakeRequestRepo) CountByUserAndStatus(ctx context.Context, userID int64, statuses ...string) (int, error) {
	count := 0
	for _, request := range r.requests {
		if request.UserID != userID {
			continue
		}
		for _, status := range statuses {
			if request.Status == status {
				count++
				break
			}
		}
	}
	return count, nil
}

func (r *fakeRequestRepo) ListWithFilters(ctx context.Context, scope port.ListScope, filter port.Filter) (*port.Page, error) {
	var items []*entity.TravelRequest
	for _, request := range r.requests {
		if !scope.Admin && request.UserID != scope.UserID {
			continue
		}
		copied := *request
		items = append(items, &copied)
	}
	return &port.Page{Items: items, Total: len(items), Page: filter.Page, PerPage: filter.PerPage}, nil
}

// stubTxManager runs the function without a real transaction
type stubTxManager struct{}

func (stubTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type seqTokens struct {
	count int
}

func (t *seqTokens) Generate(requestID int64, now time.Time) string {
	t.count++
	return fmt.Sprintf("tok-%d-%d", requestID, t.count)
}

type stubLinks struct{}

func (stubLinks) ConfirmationLink(requestID int64, token string, now time.Time) string {
	return fmt.Sprintf("http://localhost/confirm/%d?token=%s", requestID, token)
}

func (stubLinks) ReviewLink(requestID int64, token string, now time.Time) string {
	return fmt.Sprintf("http://localhost/review/%d?token=%s", requestID, token)
}

type spyNotifier struct {
	statusChanged         []*entity.TravelRequest
	cancellationRequested []*entity.TravelRequest
	reviewLinks           []string
	approved              []*entity.TravelRequest
	rejected              []*entity.TravelRequest
	rejectReasons         []string
}

func (n *spyNotifier) NotifyStatusChanged(ctx context.Context, request *entity.TravelRequest) {
	n.statusChanged = append(n.statusChanged, request)
}

func (n *spyNotifier) NotifyCancellationRequested(ctx context.Context, request *entity.TravelRequest, reviewLink string) {
	n.cancellationRequested = append(n.cancellationRequested, request)
	n.reviewLinks = append(n.reviewLinks, reviewLink)
}

func (n *spyNotifier) NotifyCancellationApproved(ctx context.Context, request *entity.TravelRequest) {
	n.approved = append(n.approved, request)
}

func (n *spyNotifier) NotifyCancellationRejected(ctx context.Context, request *entity.TravelRequest, reason string) {
	n.rejected = append(n.rejected, request)
	n.rejectReasons = append(n.rejectReasons, reason)
}

var (
	testNow   = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	requester = &entity.User{ID: 1, Name: "Ana", Email: "ana@example.com", Role: entity.RoleUser}
	stranger  = &entity.User{ID: 2, Name: "Bruno", Email: "bruno@example.com", Role: entity.RoleUser}
	admin     = &entity.User{ID: 3, Name: "Carla", Email: "carla@example.com", Role: entity.RoleAdmin}
)

func newTestService(repo *fakeRequestRepo) (TravelRequestService, *spyNotifier) {
	notifier := &spyNotifier{}
	svc := NewTravelRequestService(
		repo, stubTxManager{}, notifier,
		fixedClock{now: testNow}, &seqTokens{}, stubLinks{},
		zap.NewNop(),
	)
	return svc, notifier
}

func departureIn(days int) time.Time {
	return time.Date(2025, 6, 10+days, 0, 0, 0, 0, time.UTC)
}

func seedRequest(repo *fakeRequestRepo, status string, departureDays int) *entity.TravelRequest {
	request := &entity.TravelRequest{
		UserID:        requester.ID,
		Destination:   "Recife",
		DepartureDate: departureIn(departureDays),
		ReturnDate:    departureIn(departureDays + 5),
		Status:        status,
		CreatedAt:     testNow,
		UpdatedAt:     testNow,
	}
	_ = repo.Create(context.Background(), request)
	return request
}

func TestCreate(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, _ := newTestService(repo)

	created, err := svc.Create(context.Background(), requester, "Lisbon", "2025-07-01", "2025-07-10")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRequested, created.Status)
	assert.Equal(t, requester.ID, created.UserID)
	assert.NotZero(t, created.ID)
}

func TestCreate_ValidationErrors(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	tests := []struct {
		name        string
		destination string
		departure   string
		ret         string
	}{
		{"empty destination", "", "2025-07-01", "2025-07-10"},
		{"return before departure", "Lisbon", "2025-07-10", "2025-07-01"},
		{"departure in the past", "Lisbon", "2025-06-01", "2025-07-01"},
		{"malformed departure", "Lisbon", "July 1st", "2025-07-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, requester, tt.destination, tt.departure, tt.ret)
			var validationErr *ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestGet(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()
	seeded := seedRequest(repo, entity.StatusRequested, 10)

	got, err := svc.Get(ctx, requester, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, got.ID)

	// Admins can see everything
	_, err = svc.Get(ctx, admin, seeded.ID)
	assert.NoError(t, err)

	// Reads are idempotent
	again, err := svc.Get(ctx, requester, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestGet_NotFoundVsForbidden(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()
	seeded := seedRequest(repo, entity.StatusRequested, 10)

	var notFound *NotFoundError
	_, err := svc.Get(ctx, requester, 999)
	assert.ErrorAs(t, err, &notFound)

	var forbidden *ForbiddenError
	_, err = svc.Get(ctx, stranger, seeded.ID)
	assert.ErrorAs(t, err, &forbidden)
}

func TestUpdateStatus_ApproveNotifiesRequester(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, notifier := newTestService(repo)
	seeded := seedRequest(repo, entity.StatusRequested, 10)

	updated, err := svc.UpdateStatus(context.Background(), admin, seeded.ID, entity.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, updated.Status)
	assert.Len(t, notifier.statusChanged, 1)
}

func TestUpdateStatus_NonAdminForbidden(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, _ := newTestService(repo)
	seeded := seedRequest(repo, entity.StatusRequested, 10)

	var forbidden *ForbiddenError
	_, err := svc.UpdateStatus(context.Background(), stranger, seeded.ID, entity.StatusApproved)
	assert.ErrorAs(t, err, &forbidden)
}

func TestUpdateStatus_SelfApprovalForbidden(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, notifier := newTestService(repo)

	// Admins cannot decide requests they filed themselves
	request := &entity.TravelRequest{
		UserID:        admin.ID,
		Destination:   "Natal",
		DepartureDate: departureIn(10),
		ReturnDate:    departureIn(12),
		Status:        entity.StatusRequested,
	}
	_ = repo.Create(context.Background(), request)

	var forbidden *ForbiddenError
	_, err := svc.UpdateStatus(context.Background(), admin, request.ID, entity.StatusApproved)
	assert.ErrorAs(t, err, &forbidden)
	assert.Empty(t, notifier.statusChanged)
}

func TestUpdateStatus_InvalidTargetStatus(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, _ := newTestService(repo)
	seeded := seedRequest(repo, entity.StatusRequested, 10)

	var validationErr *ValidationError
	_, err := svc.UpdateStatus(context.Background(), admin, seeded.ID, "canceled")
	assert.ErrorAs(t, err, &validationErr)
}

func TestUpdateStatus_WrongState(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, _ := newTestService(repo)
	seeded := seedRequest(repo, entity.StatusCanceled, 10)

	var invalid *InvalidTransitionError
	_, err := svc.UpdateStatus(context.Background(), admin, seeded.ID, entity.StatusApproved)
	assert.ErrorAs(t, err, &invalid)
}

func TestInitiateCancellation_DirectFromRequested(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, _ := newTestService(repo)
	seeded := seedRequest(repo, entity.StatusRequested, 10)

	result, err := svc.InitiateCancellation(context.Background(), requester, seeded.ID, "plans changed")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Message)
	assert.Empty(t, result.Token)
	assert.Empty(t, result.ConfirmationLink)

	stored := repo.requests[seeded.ID]
	assert.Equal(t, entity.StatusCanceled, stored.Status)
	assert.Equal(t, "plans changed", stored.CancellationReason)
	require.NotNil(t, stored.CancellationConfirmedAt)
	assert.Equal(t, testNow, *stored.CancellationConfirmedAt)
	assert.Empty(t, stored.CancellationToken)
}

func TestInitiateCancellation_RequestedPastDeparture(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, _ := newTestService(repo)
	seeded := seedRequest(repo, entity.StatusRequested, -1)

	var invalid *InvalidTransitionError
	_, err := svc.InitiateCancellation(context.Background(), requester, seeded.ID, "too late")
	assert.ErrorAs(t, err, &invalid)
}

func TestInitiateCancellation_HandshakeFromApproved(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, notifier := newTestService(repo)
	seeded := seedRequest(repo, entity.StatusApproved, 10)

	result, err := svc.InitiateCancellation(context.Background(), requester, seeded.ID, "conference moved")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Contains(t, result.ConfirmationLink, result.Token)

	stored := repo.requests[seeded.ID]
	assert.Equal(t, entity.StatusAwaitingCancellationConfirmation, stored.Status)
	assert.Equal(t, result.Token, stored.CancellationToken)
	require.NotNil(t, stored.CancellationRequestedAt)
	assert.Nil(t, stored.CancellationConfirmedAt)

	// No notification until the requester confirms
	assert.Empty(t, notifier.cancellationRequested)
}

func TestInitiateCancellation_WindowBoundary(t *testing.T) {
	tests := []struct {
		name          string
		departureDays int
		wantHandshake bool
	}{
		{"ten days out", 10, true},
		{"three days out", 3, true},
		{"two days out", 2, false},
		{"tomorrow", 1, false},
		{"departure past", -3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRequestRepo()
			svc, _ := newTestService(repo)
			seeded := seedRequest(repo, entity.StatusApproved, tt.departureDays)

			result, err := svc.InitiateCancellation(context.Background(), requester, seeded.ID, "reason")
			if tt.wantHandshake {
				require.NoError(t, err)
				assert.NotEmpty(t, result.Token)
			} else {
				var invalid *InvalidTransitionError
				assert.ErrorAs(t, err, &invalid)
			}
		})
	}
}

func TestInitiateCancellation_AlreadyInProgress(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, _ := newTestService(repo)

	for _, status := range []string{entity.StatusAwaitingCancellationConfirmation, entity.StatusPendingCancellation} {
		seeded := seedRequest(repo, status, 10)

		var invalid *InvalidTransitionError
		_, err := svc.InitiateCancellation(context.Background(), requester, seeded.ID, "again")
		assert.ErrorAs(t, err, &invalid, "status %s", status)
	}
}

func TestInitiateCancellation_StrangerForbidden(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, _ := newTestService(repo)
	seeded := seedRequest(repo, entity.StatusRequested, 10)

	var forbidden *ForbiddenError
	_, err := svc.InitiateCancellation(context.Background(), stranger, seeded.ID, "not mine")
	assert.ErrorAs(t, err, &forbidden)
}

func TestConfirmCancellation(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, notifier := newTestService(repo)
	seeded := seedRequest(repo, entity.StatusApproved, 10)
	ctx := context.Background()

	initiation, err := svc.InitiateCancellation(ctx, requester, seeded.ID, "conference moved")
	require.NoError(t, err)

	message, err := svc.ConfirmCancellation(ctx, requester, seeded.ID, initiation.Token)
	require.NoError(t, err)
	assert.NotEmpty(t, message)

	stored := repo.requests[seeded.ID]
	assert.Equal(t, entity.StatusPendingCancellation, stored.Status)

	// Admins get the signed review link
	require.Len(t, notifier.cancellationRequested, 1)
	assert.Contains(t, notifier.reviewLinks[0], initiation.Token)
}

func TestConfirmCancellation_SecondConfirmFails(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, _ := newTestService(repo)
	seeded := seedRequest(repo, entity.StatusApproved, 10)
	ctx := context.Background()

	initiation, err := svc.InitiateCancellation(ctx, requester, seeded.ID, "reason")
	require.NoError(t, err)

	_, err = svc.ConfirmCancellation(ctx, requester, seeded.ID, initiation.Token)
	require.NoError(t, err)

	var invalid *InvalidTransitionError
	_, err = svc.ConfirmCancellation(ctx, requester, seeded.ID, initiation.Token)
	assert.ErrorAs(t, err, &invalid)
}

func TestConfirmCancellation_TokenMismatch(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, _ := newTestService(repo)
	seeded := seedRequest(repo, entity.StatusApproved, 10)
	ctx := context.Background()

	_, err := svc.InitiateCancellation(ctx, requester, seeded.ID, "reason")
	require.NoError(t, err)

	var invalid *InvalidTransitionError
	_, err = svc.ConfirmCancellation(ctx, requester, seeded.ID, "guessed-token")
	assert.ErrorAs(t, err, &invalid)
}

func TestConfirmCancellation_StrangerForbidden(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, _ := newTestService(repo)
	seeded := seedRequest(repo, entity.StatusApproved, 10)
	ctx := context.Background()

	initiation, err := svc.InitiateCancellation(ctx, requester, seeded.ID, "reason")
	require.NoError(t, err)

	var forbidden *ForbiddenError
	_, err = svc.ConfirmCancellation(ctx, stranger, seeded.ID, initiation.Token)
	assert.ErrorAs(t, err, &forbidden)
}

func TestApproveCancellation(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, notifier := newTestService(repo)
	seeded := seedRequest(repo, entity.StatusApproved, 10)
	ctx := context.Background()

	initiation, err := svc.InitiateCancellation(ctx, requester, seeded.ID, "reason")
	require.NoError(t, err)
	_, err = svc.ConfirmCancellation(ctx, requester, seeded.ID, initiation.Token)
	require.NoError(t, err)

	updated, err := svc.ApproveCancellation(ctx, admin, seeded.ID, initiation.Token)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCanceled, updated.Status)
	require.NotNil(t, updated.CancellationConfirmedAt)
	assert.Nil(t, updated.CancellationRejectedAt)
	assert.Empty(t, updated.CancellationToken)

	// Requester notified exactly once
	assert.Len(t, notifier.approved, 1)
}

func TestApproveCancellation_NonAdminForbiddenEvenWithToken(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, _ := newTestService(repo)
	seeded := seedRequest(repo, entity.StatusApproved, 10)
	ctx := context.Background()

	initiation, err := svc.InitiateCancellation(ctx, requester, seeded.ID, "reason")
	require.NoError(t, err)
	_, err = svc.ConfirmCancellation(ctx, requester, seeded.ID, initiation.Token)
	require.NoError(t, err)

	var forbidden *ForbiddenError
	_, err = svc.ApproveCancellation(ctx, requester, seeded.ID, initiation.Token)
	assert.ErrorAs(t, err, &forbidden)
}

func TestApproveCancellation_TokenMismatch(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, _ := newTestService(repo)
	seeded := seedRequest(repo, entity.StatusApproved, 10)
	ctx := context.Background()

	initiation, err := svc.InitiateCancellation(ctx, requester, seeded.ID, "reason")
	require.NoError(t, err)
	_, err = svc.ConfirmCancellation(ctx, requester, seeded.ID, initiation.Token)
	require.NoError(t, err)

	var invalid *InvalidTransitionError
	_, err = svc.ApproveCancellation(ctx, admin, seeded.ID, "guessed-token")
	assert.ErrorAs(t, err, &invalid)
}

func TestApproveCancellation_WrongState(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, _ := newTestService(repo)
	seeded := seedRequest(repo, entity.StatusApproved, 10)

	var invalid *InvalidTransitionError
	_, err := svc.ApproveCancellation(context.Background(), admin, seeded.ID, "any")
	assert.ErrorAs(t, err, &invalid)
}

func TestRejectCancellation(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, notifier := newTestService(repo)
	seeded := seedRequest(repo, entity.StatusApproved, 10)
	ctx := context.Background()

	initiation, err := svc.InitiateCancellation(ctx, requester, seeded.ID, "reason")
	require.NoError(t, err)
	_, err = svc.ConfirmCancellation(ctx, requester, seeded.ID, initiation.Token)
	require.NoError(t, err)

	updated, err := svc.RejectCancellation(ctx, admin, seeded.ID, initiation.Token, "trip already booked")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, updated.Status)
	assert.Equal(t, "trip already booked", updated.RejectionReason)
	require.NotNil(t, updated.CancellationRejectedAt)
	assert.Nil(t, updated.CancellationConfirmedAt)
	assert.Empty(t, updated.CancellationToken)

	require.Len(t, notifier.rejected, 1)
	assert.Equal(t, "trip already booked", notifier.rejectReasons[0])
}

func TestRejectCancellation_RequiresReason(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, _ := newTestService(repo)
	seeded := seedRequest(repo, entity.StatusPendingCancellation, 10)

	var validationErr *ValidationError
	_, err := svc.RejectCancellation(context.Background(), admin, seeded.ID, "any", "")
	assert.ErrorAs(t, err, &validationErr)
}

func TestListPendingCancellations(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	seedRequest(repo, entity.StatusPendingCancellation, 10)
	seedRequest(repo, entity.StatusCanceled, 10)
	seedRequest(repo, entity.StatusApproved, 10)

	listed, err := svc.ListPendingCancellations(ctx, admin)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, entity.StatusPendingCancellation, listed[0].Request.Status)
	assert.Equal(t, 1, listed[0].Stats.TotalCancellations)
	assert.Equal(t, 1, listed[0].Stats.PendingCancellations)

	var forbidden *ForbiddenError
	_, err = svc.ListPendingCancellations(ctx, requester)
	assert.ErrorAs(t, err, &forbidden)
}

func TestReviewCancellation(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	pending := seedRequest(repo, entity.StatusPendingCancellation, 10)
	approved := seedRequest(repo, entity.StatusApproved, 10)

	review, err := svc.ReviewCancellation(ctx, admin, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, pending.ID, review.Request.ID)

	var invalid *InvalidTransitionError
	_, err = svc.ReviewCancellation(ctx, admin, approved.ID)
	assert.ErrorAs(t, err, &invalid)

	var forbidden *ForbiddenError
	_, err = svc.ReviewCancellation(ctx, requester, pending.ID)
	assert.ErrorAs(t, err, &forbidden)
}

func TestList_ScopesNonAdminToOwnRequests(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	seedRequest(repo, entity.StatusRequested, 10)
	other := &entity.TravelRequest{UserID: stranger.ID, Destination: "Porto",
		DepartureDate: departureIn(5), ReturnDate: departureIn(7), Status: entity.StatusRequested}
	_ = repo.Create(ctx, other)

	page, err := svc.List(ctx, requester, port.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	page, err = svc.List(ctx, admin, port.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func TestStorageErrorWrapped(t *testing.T) {
	repo := newFakeRequestRepo()
	repo.getErr = errors.New("disk on fire")
	svc, _ := newTestService(repo)

	var storageErr *StorageError
	_, err := svc.Get(context.Background(), requester, 1)
	assert.ErrorAs(t, err, &storageErr)
	assert.ErrorContains(t, err, "disk on fire")
}
