package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"quiz-runner/internal/domain"
)

func openTestDB(t *testing.T, path string) *StateStore {
	t.Helper()
	db, err := Open(context.Background(), "file:"+path+"?mode=rwc")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStateStore(db)
}

func TestStateStoreUpsertAndDelete(t *testing.T) {
	store := openTestDB(t, filepath.Join(t.TempDir(), "quiz.db"))
	ctx := context.Background()

	if _, err := store.Get(ctx, "quiz-state"); !errors.Is(err, domain.ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound, got %v", err)
	}
	if err := store.Put(ctx, "quiz-state", []byte(`{"cursor":0}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, "quiz-state", []byte(`{"cursor":1}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := store.Get(ctx, "quiz-state")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"cursor":1}` {
		t.Fatalf("expected latest value, got %s", got)
	}

	if err := store.Delete(ctx, "quiz-state"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "quiz-state"); !errors.Is(err, domain.ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound after delete, got %v", err)
	}
}

func TestStateStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiz.db")
	ctx := context.Background()

	db, err := Open(ctx, "file:"+path+"?mode=rwc")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := NewStateStore(db).Put(ctx, "quiz-user", []byte(`{"firstName":"Ada"}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	db.Close()

	got, err := openTestDB(t, path).Get(ctx, "quiz-user")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if string(got) != `{"firstName":"Ada"}` {
		t.Fatalf("unexpected value %s", got)
	}
}
