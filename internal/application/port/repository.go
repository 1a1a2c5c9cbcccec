package port

import (
	"context"
	"time"

	"github.com/traveldesk/travel-approval/internal/domain/entity"
)

// Filter holds the criteria accepted by travel request listings.
// Zero values mean "not filtered".
type Filter struct {
	Status         string
	Destination    string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
	DepartureFrom  *time.Time
	DepartureTo    *time.Time
	Page           int
	PerPage        int
}

// ListScope restricts a listing to what the actor may see. Non-admin
// actors only see their own requests.
type ListScope struct {
	UserID int64
	Admin  bool
}

// Page is one page of a filtered listing.
type Page struct {
	Items   []*entity.TravelRequest `json:"items"`
	Total   int                     `json:"total"`
	Page    int                     `json:"page"`
	PerPage int                     `json:"per_page"`
}

// TravelRequestUpdate carries a partial update. Nil fields are left
// untouched; a non-nil pointer to the zero value clears the column.
type TravelRequestUpdate struct {
	Status                  *string
	CancellationReason      *string
	RejectionReason         *string
	CancellationToken       *string
	CancellationRequestedAt *time.Time
	CancellationConfirmedAt *time.Time
	CancellationRejectedAt  *time.Time
}

// TravelRequestRepository defines persistence operations for TravelRequest.
// Soft-deleted rows are invisible to every method.
type TravelRequestRepository interface {
	Create(ctx context.Context, request *entity.TravelRequest) error
	GetByID(ctx context.Context, id int64) (*entity.TravelRequest, error)
	Update(ctx context.Context, id int64, update TravelRequestUpdate) error
	FindByStatus(ctx context.Context, status string) ([]*entity.TravelRequest, error)
	CountByUserAndStatus(ctx context.Context, userID int64, statuses ...string) (int, error)
	ListWithFilters(ctx context.Context, scope ListScope, filter Filter) (*Page, error)
}

// UserRepository defines read access to user accounts
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByAPIToken(ctx context.Context, token string) (*entity.User, error)
	FindAdmins(ctx context.Context) ([]*entity.User, error)
}

// NotificationRepository defines persistence operations for the
// notification outbox
type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	GetPending(ctx context.Context, limit int) ([]*entity.Notification, error)
	MarkSent(ctx context.Context, id int64, sentAt time.Time) error
	MarkFailed(ctx context.Context, id int64, errorMsg string) error
}

// TransactionManager executes a function within a database transaction.
// Nested calls reuse the transaction already carried by the context.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
