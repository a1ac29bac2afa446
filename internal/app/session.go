package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"quiz-runner/internal/domain"
)

// Phase is the lifecycle position of a session.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseInProgress
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseInProgress:
		return "in_progress"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Persister receives every session change. Implementations must not block
// the caller; failures stay on their side.
type Persister interface {
	SaveState(state domain.SessionState)
	SaveUser(user domain.User)
	ClearState()
	PublishResult(entry domain.LeaderboardEntry)
}

type nopPersister struct{}

func (nopPersister) SaveState(domain.SessionState) {}
func (nopPersister) SaveUser(domain.User) {}
func (nopPersister) ClearState() {}
func (nopPersister) PublishResult(domain.LeaderboardEntry) {}

// Snapshot is a copy of the session taken under its lock.
type Snapshot struct {
	Phase Phase               `json:"phase"`
	State domain.SessionState `json:"state"`
	User  domain.User         `json:"user"`
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithClock replaces time.Now, for deterministic tests.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithPersister attaches the persistence bridge.
func WithPersister(p Persister) SessionOption {
	return func(s *Session) { s.persist = p }
}

// Session is the quiz state machine. All methods are safe to call from the
// clock goroutine and transport goroutines; the mutex makes each call run to
// completion before the next one starts.
type Session struct {
	questions domain.QuestionSet
	duration  time.Duration
	now       func() time.Time
	persist   Persister
	newID     func() string

	mu          sync.Mutex
	phase       Phase
	state       domain.SessionState
	user        domain.User
	published   bool
	stop        chan struct{}
	subscribers map[chan Snapshot]struct{}
}

// NewSession builds a NotStarted session over a validated question set.
func NewSession(questions domain.QuestionSet, duration time.Duration, opts ...SessionOption) (*Session, error) {
	if err := questions.Validate(); err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, fmt.Errorf("quiz duration must be positive, got %s", duration)
	}
	s := &Session{
		questions:   questions,
		duration:    duration,
		now:         time.Now,
		persist:     nopPersister{},
		newID:       uuid.NewString,
		subscribers: make(map[chan Snapshot]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = s.blankState()
	return s, nil
}

func (s *Session) Questions() domain.QuestionSet { return s.questions }

func (s *Session) Duration() time.Duration { return s.duration }

func (s *Session) blankState() domain.SessionState {
	return domain.SessionState{
		Ledger:          domain.NewLedger(s.questions),
		RemainingTimeMs: s.duration.Milliseconds(),
	}
}

// Start moves NotStarted to InProgress and starts the countdown.
func (s *Session) Start(user domain.User) error {
	user, err := NormalizeUser(user)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseNotStarted {
		return fmt.Errorf("%w: start while %s", domain.ErrInvalidTransition, s.phase)
	}

	s.state = s.blankState()
	s.state.StartTimestamp = s.now().UnixMilli()
	s.user = user
	s.phase = PhaseInProgress
	s.published = false
	s.stop = make(chan struct{})

	s.persist.SaveUser(user)
	s.changedLocked()
	return nil
}

// Restore adopts a previously persisted state instead of a fresh one. The
// countdown continues from the persisted start timestamp, so time spent
// while the process was down is not given back.
func (s *Session) Restore(state domain.SessionState, user domain.User) error {
	user, err := NormalizeUser(user)
	if err != nil {
		return err
	}
	if err := state.CheckAgainst(s.questions, s.duration); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseNotStarted {
		return fmt.Errorf("%w: restore while %s", domain.ErrInvalidTransition, s.phase)
	}

	s.state = state.Clone()
	s.user = user
	if state.Completed {
		// The result was emitted when this session first completed.
		s.phase = PhaseCompleted
		s.published = true
		s.broadcastLocked()
		return nil
	}

	s.phase = PhaseInProgress
	s.published = false
	s.stop = make(chan struct{})
	s.sampleLocked()
	if s.state.RemainingTimeMs == 0 {
		s.completeLocked()
		return nil
	}
	s.changedLocked()
	return nil
}

// SelectAnswer records the selection for a question. The cursor is unchanged.
func (s *Session) SelectAnswer(questionID int, choice domain.Choice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireInProgressLocked("select answer"); err != nil {
		return err
	}
	idx, ok := s.questions.IndexOf(questionID)
	if !ok {
		return fmt.Errorf("%w: %d", domain.ErrUnknownQuestion, questionID)
	}
	if !s.questions.Questions[idx].Options.Contains(choice) {
		return fmt.Errorf("%w: %s for question %d", domain.ErrInvalidSelection, choice, questionID)
	}

	sel := choice
	s.state.Ledger[idx].Selection = &sel
	s.state.Ledger[idx].Answered = true
	s.changedLocked()
	return nil
}

// ClearAnswer withdraws the selection for a question.
func (s *Session) ClearAnswer(questionID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireInProgressLocked("clear answer"); err != nil {
		return err
	}
	idx, ok := s.questions.IndexOf(questionID)
	if !ok {
		return fmt.Errorf("%w: %d", domain.ErrUnknownQuestion, questionID)
	}
	if !s.state.Ledger[idx].Answered {
		return nil
	}
	s.state.Ledger[idx].Selection = nil
	s.state.Ledger[idx].Answered = false
	s.changedLocked()
	return nil
}

// GoTo moves the cursor. Out-of-range indexes are rejected, not clamped.
func (s *Session) GoTo(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireInProgressLocked("go to"); err != nil {
		return err
	}
	if index < 0 || index >= s.questions.Len() {
		return fmt.Errorf("%w: %d not in [0,%d)", domain.ErrIndexOutOfRange, index, s.questions.Len())
	}
	s.moveLocked(index)
	return nil
}

// Next advances the cursor, staying put on the last question.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireInProgressLocked("next"); err != nil {
		return err
	}
	if s.state.Cursor < s.questions.Len()-1 {
		s.moveLocked(s.state.Cursor + 1)
	}
	return nil
}

// Previous moves the cursor back, staying put on the first question.
func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireInProgressLocked("previous"); err != nil {
		return err
	}
	if s.state.Cursor > 0 {
		s.moveLocked(s.state.Cursor - 1)
	}
	return nil
}

// Skip behaves like Next and does nothing on the last question; submitting
// is always a separate, explicit call.
func (s *Session) Skip() error {
	return s.Next()
}

// Submit completes the session. Calling it on a completed session is a no-op.
func (s *Session) Submit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case PhaseCompleted:
		return nil
	case PhaseNotStarted:
		return fmt.Errorf("%w: submit before start", domain.ErrInvalidTransition)
	}
	s.sampleLocked()
	s.completeLocked()
	return nil
}

// Tick samples the clock once. It returns the remaining time and whether
// the session is completed; reaching zero auto-submits.
func (s *Session) Tick() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseInProgress {
		return s.remainingLocked(), s.phase == PhaseCompleted
	}
	changed := s.sampleLocked()
	if s.state.RemainingTimeMs == 0 {
		s.completeLocked()
		return 0, true
	}
	if changed {
		s.changedLocked()
	}
	return s.remainingLocked(), false
}

// Reset discards everything and returns to NotStarted. Valid in any phase.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeStopLocked()
	s.phase = PhaseNotStarted
	s.state = s.blankState()
	s.user = domain.User{}
	s.published = false
	s.persist.ClearState()
	s.broadcastLocked()
}

// UnansweredQuestions returns, in set order, the IDs of unanswered questions.
func (s *Session) UnansweredQuestions() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0)
	for _, entry := range s.state.Ledger {
		if !entry.Answered {
			ids = append(ids, entry.QuestionID)
		}
	}
	return ids
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Result scores the current ledger. It is meaningful once completed.
func (s *Session) Result() domain.SessionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resultLocked()
}

// RunClock drives Tick on the given cadence until ctx ends or the current
// run completes or is reset.
func (s *Session) RunClock(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	s.mu.Lock()
	stop := s.stop
	s.mu.Unlock()
	if stop == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			select {
			case <-stop:
				return
			default:
			}
			if _, done := s.Tick(); done {
				return
			}
		}
	}
}

// Subscribe returns a channel of snapshots, starting with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	s.mu.Lock()
	ch <- s.snapshotLocked()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) requireInProgressLocked(op string) error {
	if s.phase != PhaseInProgress {
		return fmt.Errorf("%w: %s while %s", domain.ErrInvalidTransition, op, s.phase)
	}
	return nil
}

func (s *Session) moveLocked(index int) {
	if s.state.Cursor == index {
		return
	}
	s.state.Cursor = index
	s.changedLocked()
}

// sampleLocked lowers RemainingTimeMs to the clock's value. It never raises
// it, so a wall clock stepping backwards cannot add time.
func (s *Session) sampleLocked() bool {
	left := Remaining(s.duration, Elapsed(s.now(), s.state.StartedAt())).Milliseconds()
	if left < s.state.RemainingTimeMs {
		s.state.RemainingTimeMs = left
		return true
	}
	return false
}

func (s *Session) completeLocked() {
	s.state.Completed = true
	s.phase = PhaseCompleted
	s.closeStopLocked()
	s.changedLocked()
	if !s.published {
		s.published = true
		s.persist.PublishResult(s.entryLocked())
	}
}

func (s *Session) closeStopLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

func (s *Session) changedLocked() {
	s.persist.SaveState(s.state.Clone())
	s.broadcastLocked()
}

func (s *Session) remainingLocked() time.Duration {
	return time.Duration(s.state.RemainingTimeMs) * time.Millisecond
}

func (s *Session) resultLocked() domain.SessionResult {
	return ResultOf(s.questions, s.duration, s.snapshotLocked())
}

func (s *Session) entryLocked() domain.LeaderboardEntry {
	result := s.resultLocked()
	return domain.LeaderboardEntry{
		ID:             s.newID(),
		Name:           s.user.FullName(),
		Score:          result.Score,
		Total:          result.Total,
		ElapsedSeconds: int(result.ElapsedMs / 1000),
		RecordedAt:     s.now().UTC(),
	}
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{Phase: s.phase, State: s.state.Clone(), User: s.user}
}

func (s *Session) broadcastLocked() {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// drop the stale snapshot so a slow reader only sees the latest
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
