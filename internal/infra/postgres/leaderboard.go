package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"quiz-runner/internal/domain"
)

// OpenBun connects bun to Postgres through pgdriver.
func OpenBun(url string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(url)))
	return bun.NewDB(sqldb, pgdialect.New())
}

type leaderboardRow struct {
	bun.BaseModel `bun:"table:leaderboard_entries"`

	ID             string    `bun:"id,pk,type:uuid"`
	SetID          string    `bun:"set_id,notnull"`
	Name           string    `bun:"name,notnull"`
	Score          int       `bun:"score,notnull"`
	Total          int       `bun:"total,notnull"`
	ElapsedSeconds int       `bun:"elapsed_seconds,notnull"`
	RecordedAt     time.Time `bun:"recorded_at,notnull"`
}

func (r leaderboardRow) entry() domain.LeaderboardEntry {
	return domain.LeaderboardEntry{
		ID:             r.ID,
		Name:           r.Name,
		Score:          r.Score,
		Total:          r.Total,
		ElapsedSeconds: r.ElapsedSeconds,
		RecordedAt:     r.RecordedAt.UTC(),
	}
}

// Leaderboard stores the results of one question set in leaderboard_entries.
type Leaderboard struct {
	db    *bun.DB
	setID string
}

func NewLeaderboard(db *bun.DB, setID string) *Leaderboard {
	return &Leaderboard{db: db, setID: setID}
}

func (l *Leaderboard) Append(ctx context.Context, entry domain.LeaderboardEntry) error {
	row := leaderboardRow{
		ID:             entry.ID,
		SetID:          l.setID,
		Name:           entry.Name,
		Score:          entry.Score,
		Total:          entry.Total,
		ElapsedSeconds: entry.ElapsedSeconds,
		RecordedAt:     entry.RecordedAt,
	}
	_, err := l.db.NewInsert().Model(&row).On("CONFLICT (id) DO NOTHING").Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert leaderboard entry: %w", err)
	}
	return nil
}

func (l *Leaderboard) List(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	var rows []leaderboardRow
	err := l.db.NewSelect().
		Model(&rows).
		Where("set_id = ?", l.setID).
		OrderExpr("score DESC, elapsed_seconds ASC, recorded_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard: %w", err)
	}
	entries := make([]domain.LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = row.entry()
	}
	return entries, nil
}
