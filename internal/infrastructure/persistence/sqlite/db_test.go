package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	sqlDB.SetMaxOpenConns(1)

	return NewDB(sqlDB, zap.NewNop())
}

func TestAfterCommit_RunsAfterCommitInOrder(t *testing.T) {
	db := newTestDB(t)

	var fired []string
	err := db.WithTransaction(context.Background(), func(ctx context.Context) error {
		if !AfterCommit(ctx, func() { fired = append(fired, "first") }) {
			t.Fatal("AfterCommit() = false inside a transaction")
		}
		AfterCommit(ctx, func() { fired = append(fired, "second") })

		if len(fired) != 0 {
			t.Fatalf("hooks ran before commit: %v", fired)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTransaction() error = %v", err)
	}

	if len(fired) != 2 || fired[0] != "first" || fired[1] != "second" {
		t.Errorf("hooks fired = %v, want [first second]", fired)
	}
}

func TestAfterCommit_DiscardedOnRollback(t *testing.T) {
	db := newTestDB(t)

	fired := false
	err := db.WithTransaction(context.Background(), func(ctx context.Context) error {
		AfterCommit(ctx, func() { fired = true })
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("WithTransaction() error = nil, want rollback error")
	}

	if fired {
		t.Error("hook fired after rollback")
	}
}

func TestAfterCommit_FalseOutsideTransaction(t *testing.T) {
	if AfterCommit(context.Background(), func() {}) {
		t.Error("AfterCommit() = true without a transaction")
	}
}

func TestAfterCommit_NestedTransactionSharesHooks(t *testing.T) {
	db := newTestDB(t)

	fired := 0
	err := db.WithTransaction(context.Background(), func(ctx context.Context) error {
		return db.WithTransaction(ctx, func(inner context.Context) error {
			AfterCommit(inner, func() { fired++ })
			return nil
		})
	})
	if err != nil {
		t.Fatalf("WithTransaction() error = %v", err)
	}

	if fired != 1 {
		t.Errorf("hook fired %d times, want 1", fired)
	}
}

func TestInTransaction(t *testing.T) {
	db := newTestDB(t)

	if InTransaction(context.Background()) {
		t.Error("InTransaction() = true without a transaction")
	}

	err := db.WithTransaction(context.Background(), func(ctx context.Context) error {
		if !InTransaction(ctx) {
			t.Error("InTransaction() = false inside a transaction")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTransaction() error = %v", err)
	}
}
