package memory

import (
	"context"
	"sync"

	"quiz-runner/internal/domain"
)

// Leaderboard keeps completed results in process memory. Entries with an ID
// already recorded are ignored.
type Leaderboard struct {
	mu      sync.RWMutex
	entries []domain.LeaderboardEntry
	seen    map[string]struct{}
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{seen: make(map[string]struct{})}
}

func (l *Leaderboard) Append(_ context.Context, entry domain.LeaderboardEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry.ID != "" {
		if _, dup := l.seen[entry.ID]; dup {
			return nil
		}
		l.seen[entry.ID] = struct{}{}
	}
	l.entries = append(l.entries, entry)
	return nil
}

func (l *Leaderboard) List(_ context.Context) ([]domain.LeaderboardEntry, error) {
	l.mu.RLock()
	out := append([]domain.LeaderboardEntry(nil), l.entries...)
	l.mu.RUnlock()
	domain.SortLeaderboard(out)
	return out, nil
}
