package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"quiz-runner/internal/domain"
)

// Leaderboard appends results of one question set to a Redis list.
// Entries are stored as JSON:  RPUSH quiz:leaderboard:{setID} {entry}
// Seen IDs are tracked in:      SADD  quiz:leaderboard:{setID}:ids {id}
type Leaderboard struct {
	client *redis.Client
	setID  string
}

func NewLeaderboard(client *redis.Client, setID string) *Leaderboard {
	return &Leaderboard{client: client, setID: setID}
}

func (l *Leaderboard) Append(ctx context.Context, entry domain.LeaderboardEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode leaderboard entry: %w", err)
	}
	if entry.ID != "" {
		added, err := l.client.SAdd(ctx, l.idsKey(), entry.ID).Result()
		if err != nil {
			return err
		}
		if added == 0 {
			return nil
		}
	}
	return l.client.RPush(ctx, l.entriesKey(), data).Err()
}

func (l *Leaderboard) List(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	raw, err := l.client.LRange(ctx, l.entriesKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]domain.LeaderboardEntry, 0, len(raw))
	for _, item := range raw {
		var entry domain.LeaderboardEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("decode leaderboard entry: %w", err)
		}
		entries = append(entries, entry)
	}
	domain.SortLeaderboard(entries)
	return entries, nil
}

func (l *Leaderboard) entriesKey() string {
	return "quiz:leaderboard:" + l.setID
}

func (l *Leaderboard) idsKey() string {
	return "quiz:leaderboard:" + l.setID + ":ids"
}
