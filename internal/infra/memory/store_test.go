package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-runner/internal/domain"
)

func TestStateStoreRoundTrip(t *testing.T) {
	store := NewStateStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "quiz-state"); !errors.Is(err, domain.ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound, got %v", err)
	}

	value := []byte(`{"cursor":1}`)
	if err := store.Put(ctx, "quiz-state", value); err != nil {
		t.Fatalf("put: %v", err)
	}
	value[0] = 'x'

	got, err := store.Get(ctx, "quiz-state")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"cursor":1}` {
		t.Fatalf("stored value aliased caller slice: %s", got)
	}

	if err := store.Delete(ctx, "quiz-state"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "quiz-state"); !errors.Is(err, domain.ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound after delete, got %v", err)
	}
}

func TestLeaderboardOrderingAndDedupe(t *testing.T) {
	board := NewLeaderboard()
	ctx := context.Background()
	at := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	entries := []domain.LeaderboardEntry{
		{ID: "a", Name: "Ada", Score: 2, Total: 3, ElapsedSeconds: 300, RecordedAt: at},
		{ID: "b", Name: "Grace", Score: 3, Total: 3, ElapsedSeconds: 900, RecordedAt: at},
		{ID: "c", Name: "Alan", Score: 2, Total: 3, ElapsedSeconds: 120, RecordedAt: at},
		{ID: "a", Name: "Ada", Score: 2, Total: 3, ElapsedSeconds: 300, RecordedAt: at},
	}
	for _, e := range entries {
		if err := board.Append(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := board.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"b", "c", "a"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}
