package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"quiz-runner/internal/domain"
)

// RecordLoader reads a persisted session record at boot.
type RecordLoader interface {
	Load(ctx context.Context) (domain.SessionState, domain.User, error)
}

// QuizService contains the quiz use cases exposed to transports. It owns
// the clock goroutine of the session it wraps.
type QuizService struct {
	session  *Session
	records  RecordLoader
	board    Leaderboard
	interval time.Duration

	// ctx bounds every clock goroutine started by the service.
	ctx context.Context
	wg  sync.WaitGroup
}

// NewQuizService builds the service. records and board may be nil.
func NewQuizService(ctx context.Context, session *Session, records RecordLoader, board Leaderboard, interval time.Duration) *QuizService {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &QuizService{
		session:  session,
		records:  records,
		board:    board,
		interval: interval,
		ctx:      ctx,
	}
}

// Resume adopts a persisted session if one exists. A record that does not
// fit the current question set is discarded.
func (s *QuizService) Resume(ctx context.Context) (bool, error) {
	if s.records == nil {
		return false, nil
	}
	state, user, err := s.records.Load(ctx)
	if errors.Is(err, domain.ErrStateNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := s.session.Restore(state, user); err != nil {
		log.Printf("discarding persisted session: %v", err)
		s.session.Reset()
		return false, nil
	}
	s.startClock()
	return true, nil
}

// Start begins a new session for user and starts its countdown.
func (s *QuizService) Start(user domain.User) error {
	if err := s.session.Start(user); err != nil {
		return err
	}
	s.startClock()
	return nil
}

func (s *QuizService) Answer(questionID int, choice domain.Choice) error {
	return s.session.SelectAnswer(questionID, choice)
}

func (s *QuizService) ClearAnswer(questionID int) error {
	return s.session.ClearAnswer(questionID)
}

func (s *QuizService) GoTo(index int) error { return s.session.GoTo(index) }

func (s *QuizService) Next() error { return s.session.Next() }

func (s *QuizService) Previous() error { return s.session.Previous() }

func (s *QuizService) Skip() error { return s.session.Skip() }

func (s *QuizService) Submit() error { return s.session.Submit() }

func (s *QuizService) Reset() { s.session.Reset() }

func (s *QuizService) Unanswered() []int { return s.session.UnansweredQuestions() }

func (s *QuizService) Snapshot() Snapshot { return s.session.Snapshot() }

func (s *QuizService) Progress() Progress { return s.session.Progress() }

func (s *QuizService) Result() domain.SessionResult { return s.session.Result() }

func (s *QuizService) Questions() domain.QuestionSet { return s.session.Questions() }

func (s *QuizService) Duration() time.Duration { return s.session.Duration() }

// Subscribe returns a channel that receives session snapshots.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe() (<-chan Snapshot, func()) {
	return s.session.Subscribe()
}

// Leaderboard returns the recorded results, best first.
func (s *QuizService) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	if s.board == nil {
		return []domain.LeaderboardEntry{}, nil
	}
	return s.board.List(ctx)
}

// Wait blocks until every clock goroutine has returned.
func (s *QuizService) Wait() { s.wg.Wait() }

func (s *QuizService) startClock() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.session.RunClock(s.ctx, s.interval)
	}()
}
