package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-runner/internal/domain"
)

// QuestionStore keeps question sets as JSON documents. The column is json,
// not jsonb, so keyed options keep their order.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

func (s *QuestionStore) LoadQuestionSet(ctx context.Context, setID string) (domain.QuestionSet, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM question_sets WHERE id=$1`, setID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuestionSet{}, fmt.Errorf("%w: %q", domain.ErrQuestionSetNotFound, setID)
	}
	if err != nil {
		return domain.QuestionSet{}, fmt.Errorf("load question set: %w", err)
	}
	var set domain.QuestionSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return domain.QuestionSet{}, fmt.Errorf("unmarshal question set: %w", err)
	}
	if set.ID == "" {
		set.ID = setID
	}
	return set, nil
}

// SaveQuestionSet validates set and upserts it under its ID.
func (s *QuestionStore) SaveQuestionSet(ctx context.Context, set domain.QuestionSet) error {
	if err := set.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("marshal question set: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO question_sets (id, data, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		set.ID, string(data))
	if err != nil {
		return fmt.Errorf("save question set: %w", err)
	}
	return nil
}
