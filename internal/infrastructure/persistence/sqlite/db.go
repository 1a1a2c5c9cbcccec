package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/traveldesk/travel-approval/internal/application/port"
	"go.uber.org/zap"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const txKey contextKey = "tx"

// txState is the per-transaction value carried in the context: the open
// transaction plus work deferred until it commits.
type txState struct {
	tx          *sql.Tx
	afterCommit []func()
}

// DB wraps sql.DB and implements TransactionManager
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database wrapper
func NewDB(sqlDB *sql.DB, logger *zap.Logger) *DB {
	return &DB{
		DB:     sqlDB,
		logger: logger,
	}
}

// WithTransaction implements port.TransactionManager. The transaction is
// carried in the context, so repository calls made inside fn join it.
// Nested calls reuse the outer transaction.
func (db *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx := extractTx(ctx); tx != nil {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		db.logger.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	state := &txState{tx: tx}
	txCtx := context.WithValue(ctx, txKey, state)

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			db.logger.Error("Transaction panicked, rolled back", zap.Any("panic", p))
			panic(p)
		}
	}()

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Error("Failed to rollback transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		db.logger.Error("Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	for _, hook := range state.afterCommit {
		hook()
	}
	return nil
}

// extractTx retrieves transaction from context if present
func extractTx(ctx context.Context) *sql.Tx {
	if state, ok := ctx.Value(txKey).(*txState); ok {
		return state.tx
	}
	return nil
}

// AfterCommit defers fn until the context's transaction commits and
// reports whether it did so. When no transaction is open it returns
// false and the caller runs the work itself. Hooks registered in a
// transaction that rolls back are discarded.
func AfterCommit(ctx context.Context, fn func()) bool {
	state, ok := ctx.Value(txKey).(*txState)
	if !ok {
		return false
	}
	state.afterCommit = append(state.afterCommit, fn)
	return true
}

// InTransaction reports whether the context carries an open transaction.
// Repositories use it to bypass caches that could serve reads stale
// relative to the transaction's own writes.
func InTransaction(ctx context.Context) bool {
	return extractTx(ctx) != nil
}

// Executor covers both *sql.DB and *sql.Tx
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ExecutorFrom returns the context's transaction if one is open,
// otherwise the plain connection pool.
func ExecutorFrom(ctx context.Context, db *sql.DB) Executor {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return db
}

// Verify interface compliance
var _ port.TransactionManager = (*DB)(nil)
