package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/traveldesk/travel-approval/internal/application/port"
	"github.com/traveldesk/travel-approval/internal/domain/entity"
	"github.com/traveldesk/travel-approval/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

const (
	requestCachePrefix = "travel_requests:"
	requestCacheTTL    = time.Minute
)

const dateLayout = "2006-01-02"

const travelRequestColumns = `
	id, user_id, destination, departure_date, return_date, status,
	cancellation_reason, rejection_reason, cancellation_token,
	cancellation_requested_at, cancellation_confirmed_at, cancellation_rejected_at,
	created_at, updated_at`

// TravelRequestRepository implements port.TravelRequestRepository over
// SQLite with a read-through cache. Every write invalidates the whole
// travel request cache prefix — deferred to commit when the write runs
// in a transaction — and reads inside a transaction bypass the cache so
// they never observe data stale relative to their own writes.
type TravelRequestRepository struct {
	db     *sql.DB
	cache  port.Cache
	logger *zap.Logger
}

// NewTravelRequestRepository creates a new travel request repository
func NewTravelRequestRepository(db *sql.DB, cache port.Cache, logger *zap.Logger) port.TravelRequestRepository {
	return &TravelRequestRepository{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// requestCacheEntry wraps the entity together with the fields its JSON
// tags hide from API responses, so a cached round-trip is lossless.
type requestCacheEntry struct {
	Request           *entity.TravelRequest `json:"request"`
	CancellationToken string                `json:"cancellation_token,omitempty"`
	DeletedAt         *time.Time            `json:"deleted_at,omitempty"`
}

func newRequestCacheEntry(request *entity.TravelRequest) requestCacheEntry {
	return requestCacheEntry{
		Request:           request,
		CancellationToken: request.CancellationToken,
		DeletedAt:         request.DeletedAt,
	}
}

func (e requestCacheEntry) restore() *entity.TravelRequest {
	request := e.Request
	request.CancellationToken = e.CancellationToken
	request.DeletedAt = e.DeletedAt
	return request
}

type pageCacheEntry struct {
	Items   []requestCacheEntry `json:"items"`
	Total   int                 `json:"total"`
	Page    int                 `json:"page"`
	PerPage int                 `json:"per_page"`
}

func newPageCacheEntry(page *port.Page) pageCacheEntry {
	entry := pageCacheEntry{
		Items:   make([]requestCacheEntry, 0, len(page.Items)),
		Total:   page.Total,
		Page:    page.Page,
		PerPage: page.PerPage,
	}
	for _, item := range page.Items {
		entry.Items = append(entry.Items, newRequestCacheEntry(item))
	}
	return entry
}

func (e pageCacheEntry) restore() *port.Page {
	page := &port.Page{
		Items:   make([]*entity.TravelRequest, 0, len(e.Items)),
		Total:   e.Total,
		Page:    e.Page,
		PerPage: e.PerPage,
	}
	for _, item := range e.Items {
		page.Items = append(page.Items, item.restore())
	}
	return page
}

// invalidate drops every cached travel request entry. Inside a
// transaction the drop is deferred until commit, so a concurrent reader
// cannot repopulate the cache with rows the transaction is about to
// replace.
func (r *TravelRequestRepository) invalidate(ctx context.Context) {
	flush := func() {
		r.cache.DeletePrefix(context.WithoutCancel(ctx), requestCachePrefix)
	}
	if !sqlite.AfterCommit(ctx, flush) {
		flush()
	}
}

// Create inserts a new travel request
func (r *TravelRequestRepository) Create(ctx context.Context, request *entity.TravelRequest) error {
	query := `
		INSERT INTO travel_requests (
			user_id, destination, departure_date, return_date, status,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	if request.UpdatedAt.IsZero() {
		request.UpdatedAt = now
	}

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		request.UserID,
		request.Destination,
		request.DepartureDate.Format(dateLayout),
		request.ReturnDate.Format(dateLayout),
		request.Status,
		request.CreatedAt,
		request.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create travel request",
			zap.Int64("user_id", request.UserID),
			zap.Error(err))
		return fmt.Errorf("failed to create travel request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	request.ID = id

	r.invalidate(ctx)
	return nil
}

// GetByID retrieves a travel request by ID. Returns (nil, nil) when the
// row does not exist or is soft-deleted.
func (r *TravelRequestRepository) GetByID(ctx context.Context, id int64) (*entity.TravelRequest, error) {
	cacheKey := fmt.Sprintf("%sid:%d", requestCachePrefix, id)
	if !sqlite.InTransaction(ctx) {
		if raw, ok := r.cache.Get(ctx, cacheKey); ok {
			var cached requestCacheEntry
			if err := json.Unmarshal(raw, &cached); err == nil && cached.Request != nil {
				return cached.restore(), nil
			}
		}
	}

	query := `SELECT` + travelRequestColumns + `
		FROM travel_requests
		WHERE id = ? AND deleted_at IS NULL
	`

	request, err := r.scanRequest(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get travel request by ID",
			zap.Int64("id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get travel request: %w", err)
	}

	if !sqlite.InTransaction(ctx) {
		if raw, err := json.Marshal(newRequestCacheEntry(request)); err == nil {
			r.cache.Set(ctx, cacheKey, raw, requestCacheTTL)
		}
	}
	return request, nil
}

// Update applies a partial update. Nil fields are left untouched; a
// pointer to the empty string clears the column to NULL.
func (r *TravelRequestRepository) Update(ctx context.Context, id int64, update port.TravelRequestUpdate) error {
	var sets []string
	var args []interface{}

	addString := func(column string, value *string) {
		if value == nil {
			return
		}
		sets = append(sets, column+" = ?")
		if *value == "" {
			args = append(args, nil)
		} else {
			args = append(args, *value)
		}
	}
	addTime := func(column string, value *time.Time) {
		if value == nil {
			return
		}
		sets = append(sets, column+" = ?")
		args = append(args, value.UTC())
	}

	addString("status", update.Status)
	addString("cancellation_reason", update.CancellationReason)
	addString("rejection_reason", update.RejectionReason)
	addString("cancellation_token", update.CancellationToken)
	addTime("cancellation_requested_at", update.CancellationRequestedAt)
	addTime("cancellation_confirmed_at", update.CancellationConfirmedAt)
	addTime("cancellation_rejected_at", update.CancellationRejectedAt)

	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	query := fmt.Sprintf(
		"UPDATE travel_requests SET %s WHERE id = ? AND deleted_at IS NULL",
		strings.Join(sets, ", "))
	args = append(args, id)

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update travel request",
			zap.Int64("id", id),
			zap.Error(err))
		return fmt.Errorf("failed to update travel request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("travel request %d not found", id)
	}

	r.invalidate(ctx)
	return nil
}

// FindByStatus retrieves all requests in one status, newest first
func (r *TravelRequestRepository) FindByStatus(ctx context.Context, status string) ([]*entity.TravelRequest, error) {
	query := `SELECT` + travelRequestColumns + `
		FROM travel_requests
		WHERE status = ? AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, status)
	if err != nil {
		r.logger.Error("Failed to find travel requests by status",
			zap.String("status", status),
			zap.Error(err))
		return nil, fmt.Errorf("failed to find travel requests: %w", err)
	}
	defer rows.Close()

	return r.scanRequests(rows)
}

// CountByUserAndStatus counts a user's requests across the given
// statuses.
func (r *TravelRequestRepository) CountByUserAndStatus(ctx context.Context, userID int64, statuses ...string) (int, error) {
	if len(statuses) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(statuses))
	placeholders = placeholders[:len(placeholders)-1]
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM travel_requests
		WHERE user_id = ? AND status IN (%s) AND deleted_at IS NULL
	`, placeholders)

	args := make([]interface{}, 0, len(statuses)+1)
	args = append(args, userID)
	for _, status := range statuses {
		args = append(args, status)
	}

	var count int
	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count travel requests",
			zap.Int64("user_id", userID),
			zap.Error(err))
		return 0, fmt.Errorf("failed to count travel requests: %w", err)
	}
	return count, nil
}

// ListWithFilters retrieves a filtered, paginated listing scoped to what
// the actor may see.
func (r *TravelRequestRepository) ListWithFilters(ctx context.Context, scope port.ListScope, filter port.Filter) (*port.Page, error) {
	cacheKey := listCacheKey(scope, filter)
	if !sqlite.InTransaction(ctx) {
		if raw, ok := r.cache.Get(ctx, cacheKey); ok {
			var cached pageCacheEntry
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached.restore(), nil
			}
		}
	}

	where := []string{"deleted_at IS NULL"}
	var args []interface{}

	if !scope.Admin {
		where = append(where, "user_id = ?")
		args = append(args, scope.UserID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Destination != "" {
		where = append(where, "destination LIKE ?")
		args = append(args, "%"+filter.Destination+"%")
	}
	if filter.CreatedFrom != nil {
		where = append(where, "created_at >= ?")
		args = append(args, filter.CreatedFrom.UTC())
	}
	if filter.CreatedTo != nil {
		where = append(where, "created_at <= ?")
		args = append(args, filter.CreatedTo.UTC())
	}
	if filter.DepartureFrom != nil {
		where = append(where, "departure_date >= ?")
		args = append(args, filter.DepartureFrom.Format(dateLayout))
	}
	if filter.DepartureTo != nil {
		where = append(where, "departure_date <= ?")
		args = append(args, filter.DepartureTo.Format(dateLayout))
	}

	whereClause := strings.Join(where, " AND ")
	executor := sqlite.ExecutorFrom(ctx, r.db)

	var total int
	countQuery := "SELECT COUNT(*) FROM travel_requests WHERE " + whereClause
	if err := executor.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count filtered travel requests", zap.Error(err))
		return nil, fmt.Errorf("failed to count travel requests: %w", err)
	}

	listQuery := fmt.Sprintf(`SELECT%s
		FROM travel_requests
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, travelRequestColumns, whereClause)
	listArgs := append(append([]interface{}{}, args...),
		filter.PerPage, (filter.Page-1)*filter.PerPage)

	rows, err := executor.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		r.logger.Error("Failed to list travel requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list travel requests: %w", err)
	}
	defer rows.Close()

	items, err := r.scanRequests(rows)
	if err != nil {
		return nil, err
	}

	page := &port.Page{
		Items:   items,
		Total:   total,
		Page:    filter.Page,
		PerPage: filter.PerPage,
	}

	if !sqlite.InTransaction(ctx) {
		if raw, err := json.Marshal(newPageCacheEntry(page)); err == nil {
			r.cache.Set(ctx, cacheKey, raw, requestCacheTTL)
		}
	}
	return page, nil
}

func listCacheKey(scope port.ListScope, filter port.Filter) string {
	var b strings.Builder
	b.WriteString(requestCachePrefix)
	b.WriteString("list:")
	fmt.Fprintf(&b, "u%d:a%t:s%s:d%s:p%d:n%d",
		scope.UserID, scope.Admin, filter.Status, filter.Destination, filter.Page, filter.PerPage)
	for _, t := range []*time.Time{filter.CreatedFrom, filter.CreatedTo, filter.DepartureFrom, filter.DepartureTo} {
		if t != nil {
			fmt.Fprintf(&b, ":%d", t.Unix())
		} else {
			b.WriteString(":-")
		}
	}
	return b.String()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *TravelRequestRepository) scanRequest(row rowScanner) (*entity.TravelRequest, error) {
	var request entity.TravelRequest
	var cancellationReason, rejectionReason, cancellationToken sql.NullString
	var requestedAt, confirmedAt, rejectedAt sql.NullTime

	err := row.Scan(
		&request.ID,
		&request.UserID,
		&request.Destination,
		&request.DepartureDate,
		&request.ReturnDate,
		&request.Status,
		&cancellationReason,
		&rejectionReason,
		&cancellationToken,
		&requestedAt,
		&confirmedAt,
		&rejectedAt,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if cancellationReason.Valid {
		request.CancellationReason = cancellationReason.String
	}
	if rejectionReason.Valid {
		request.RejectionReason = rejectionReason.String
	}
	if cancellationToken.Valid {
		request.CancellationToken = cancellationToken.String
	}
	if requestedAt.Valid {
		t := requestedAt.Time
		request.CancellationRequestedAt = &t
	}
	if confirmedAt.Valid {
		t := confirmedAt.Time
		request.CancellationConfirmedAt = &t
	}
	if rejectedAt.Valid {
		t := rejectedAt.Time
		request.CancellationRejectedAt = &t
	}

	return &request, nil
}

func (r *TravelRequestRepository) scanRequests(rows *sql.Rows) ([]*entity.TravelRequest, error) {
	var requests []*entity.TravelRequest
	for rows.Next() {
		request, err := r.scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan travel request: %w", err)
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

// Verify interface compliance
var _ port.TravelRequestRepository = (*TravelRequestRepository)(nil)
