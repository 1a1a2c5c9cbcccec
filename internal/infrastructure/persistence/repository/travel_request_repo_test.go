package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/traveldesk/travel-approval/internal/application/port"
	"github.com/traveldesk/travel-approval/internal/domain/entity"
	"github.com/traveldesk/travel-approval/internal/infrastructure/persistence/sqlite"
)

const travelRequestsSchema = `
	CREATE TABLE travel_requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		destination TEXT NOT NULL,
		departure_date DATE NOT NULL,
		return_date DATE NOT NULL,
		status TEXT NOT NULL DEFAULT 'requested',
		cancellation_reason TEXT,
		rejection_reason TEXT,
		cancellation_token TEXT,
		cancellation_requested_at DATETIME,
		cancellation_confirmed_at DATETIME,
		cancellation_rejected_at DATETIME,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		deleted_at DATETIME
	);
`

// recordingCache counts prefix drops so tests can observe when the
// repository invalidates relative to transaction commit.
type recordingCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	drops   int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: make(map[string][]byte)}
}

func (c *recordingCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	return value, ok
}

func (c *recordingCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

func (c *recordingCache) DeletePrefix(_ context.Context, prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drops++
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

func (c *recordingCache) dropCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drops
}

var _ port.Cache = (*recordingCache)(nil)

func newTestRepository(t *testing.T) (port.TravelRequestRepository, *sqlite.DB, *recordingCache, *sql.DB) {
	t.Helper()

	sqlDB, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	// Every pool connection to :memory: opens its own database, so the
	// schema only exists on one of them.
	sqlDB.SetMaxOpenConns(1)

	_, err = sqlDB.Exec(travelRequestsSchema)
	require.NoError(t, err)

	cache := newRecordingCache()
	repo := NewTravelRequestRepository(sqlDB, cache, zap.NewNop())
	return repo, sqlite.NewDB(sqlDB, zap.NewNop()), cache, sqlDB
}

func seedRequest(t *testing.T, repo port.TravelRequestRepository) *entity.TravelRequest {
	t.Helper()

	request := &entity.TravelRequest{
		UserID:        1,
		Destination:   "Lisbon",
		DepartureDate: time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
		ReturnDate:    time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC),
		Status:        entity.StatusApproved,
	}
	require.NoError(t, repo.Create(context.Background(), request))
	return request
}

func strPtr(s string) *string { return &s }

func TestGetByID_CacheKeepsCancellationToken(t *testing.T) {
	repo, _, _, sqlDB := newTestRepository(t)
	ctx := context.Background()
	request := seedRequest(t, repo)

	token := "b1946ac92492d2347c6235b4d2611184"
	require.NoError(t, repo.Update(ctx, request.ID, port.TravelRequestUpdate{
		Status:            strPtr(entity.StatusAwaitingCancellationConfirmation),
		CancellationToken: &token,
	}))

	// First read populates the cache from the database
	first, err := repo.GetByID(ctx, request.ID)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, token, first.CancellationToken)

	// Change the row underneath the cache; a cache hit must return the
	// token it was stored with, not a blanked one.
	_, err = sqlDB.Exec(
		"UPDATE travel_requests SET cancellation_token = 'rotated' WHERE id = ?", request.ID)
	require.NoError(t, err)

	second, err := repo.GetByID(ctx, request.ID)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, token, second.CancellationToken)
	assert.Equal(t, first.Status, second.Status)
}

func TestPageCacheEntry_RoundTripKeepsHiddenFields(t *testing.T) {
	page := &port.Page{
		Items: []*entity.TravelRequest{{
			ID:                7,
			UserID:            1,
			Destination:       "Porto",
			Status:            entity.StatusAwaitingCancellationConfirmation,
			CancellationToken: "tok-7",
		}},
		Total:   1,
		Page:    1,
		PerPage: 15,
	}

	raw, err := json.Marshal(newPageCacheEntry(page))
	require.NoError(t, err)

	var cached pageCacheEntry
	require.NoError(t, json.Unmarshal(raw, &cached))

	restored := cached.restore()
	require.Len(t, restored.Items, 1)
	assert.Equal(t, "tok-7", restored.Items[0].CancellationToken)
	assert.Equal(t, page.Total, restored.Total)
}

func TestInvalidation_ImmediateOutsideTransaction(t *testing.T) {
	repo, _, cache, _ := newTestRepository(t)
	request := seedRequest(t, repo)

	before := cache.dropCount()
	require.NoError(t, repo.Update(context.Background(), request.ID, port.TravelRequestUpdate{
		CancellationReason: strPtr("change of plans"),
	}))

	assert.Equal(t, before+1, cache.dropCount())
}

func TestInvalidation_DeferredUntilCommit(t *testing.T) {
	repo, txManager, cache, _ := newTestRepository(t)
	request := seedRequest(t, repo)

	before := cache.dropCount()
	err := txManager.WithTransaction(context.Background(), func(txCtx context.Context) error {
		if err := repo.Update(txCtx, request.ID, port.TravelRequestUpdate{
			Status: strPtr(entity.StatusCanceled),
		}); err != nil {
			return err
		}

		// A reader between the write and the commit must still be able
		// to repopulate the cache from committed data, so the drop waits.
		assert.Equal(t, before, cache.dropCount())
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, before+1, cache.dropCount())
}

func TestInvalidation_SkippedOnRollback(t *testing.T) {
	repo, txManager, cache, _ := newTestRepository(t)
	request := seedRequest(t, repo)

	before := cache.dropCount()
	err := txManager.WithTransaction(context.Background(), func(txCtx context.Context) error {
		if err := repo.Update(txCtx, request.ID, port.TravelRequestUpdate{
			Status: strPtr(entity.StatusCanceled),
		}); err != nil {
			return err
		}
		return sql.ErrTxDone
	})
	require.Error(t, err)

	assert.Equal(t, before, cache.dropCount())
}
