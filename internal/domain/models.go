package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

const (
	MinOptions = 2
	MaxOptions = 5
)

// Question models an MCQ question whose correct answer uses the same
// representation as its options.
type Question struct {
	ID            int     `json:"id"`
	Prompt        string  `json:"prompt"`
	Options       Options `json:"options"`
	CorrectAnswer Choice  `json:"correctAnswer"`
	Explanation   string  `json:"explanation,omitempty"`
}

func (q Question) Validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("question %d: empty prompt", q.ID)
	}
	if err := q.Options.validate(); err != nil {
		return fmt.Errorf("question %d: %w", q.ID, err)
	}
	if q.CorrectAnswer.Kind() != q.Options.Kind() {
		return fmt.Errorf("question %d: correct answer is %s but options are %s", q.ID, q.CorrectAnswer.Kind(), q.Options.Kind())
	}
	if !q.Options.Contains(q.CorrectAnswer) {
		return fmt.Errorf("question %d: correct answer %s is not an option", q.ID, q.CorrectAnswer)
	}
	return nil
}

// QuestionSet is the ordered, immutable list of questions of one quiz.
type QuestionSet struct {
	ID        string     `json:"id"`
	Title     string     `json:"title,omitempty"`
	Questions []Question `json:"questions"`
}

// Validate checks every question and that question IDs are unique.
func (s QuestionSet) Validate() error {
	if len(s.Questions) == 0 {
		return fmt.Errorf("%w: set %q has no questions", ErrInvalidQuestionSet, s.ID)
	}
	seen := make(map[int]struct{}, len(s.Questions))
	for _, q := range s.Questions {
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: duplicate question id %d", ErrInvalidQuestionSet, q.ID)
		}
		seen[q.ID] = struct{}{}
		if err := q.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidQuestionSet, err)
		}
	}
	return nil
}

func (s QuestionSet) Len() int { return len(s.Questions) }

// IndexOf returns the position of the question with the given ID.
func (s QuestionSet) IndexOf(questionID int) (int, bool) {
	for i := range s.Questions {
		if s.Questions[i].ID == questionID {
			return i, true
		}
	}
	return -1, false
}

// AnswerEntry is the ledger slot of one question. Answered is true iff
// Selection is set.
type AnswerEntry struct {
	QuestionID int     `json:"questionId"`
	Selection  *Choice `json:"selection"`
	Answered   bool    `json:"answered"`
}

// NewLedger returns one unanswered entry per question, in set order.
func NewLedger(set QuestionSet) []AnswerEntry {
	ledger := make([]AnswerEntry, len(set.Questions))
	for i, q := range set.Questions {
		ledger[i] = AnswerEntry{QuestionID: q.ID}
	}
	return ledger
}

// SessionState is the persisted shape of a running or finished session.
type SessionState struct {
	Cursor          int           `json:"cursor"`
	Ledger          []AnswerEntry `json:"ledger"`
	RemainingTimeMs int64         `json:"remainingTimeMs"`
	Completed       bool          `json:"completed"`
	// StartTimestamp is Unix milliseconds.
	StartTimestamp int64 `json:"startTimestamp"`
}

func (s SessionState) StartedAt() time.Time { return time.UnixMilli(s.StartTimestamp) }

// Clone returns a deep copy so callers cannot alias the ledger.
func (s SessionState) Clone() SessionState {
	out := s
	out.Ledger = make([]AnswerEntry, len(s.Ledger))
	for i, entry := range s.Ledger {
		out.Ledger[i] = entry
		if entry.Selection != nil {
			sel := *entry.Selection
			out.Ledger[i].Selection = &sel
		}
	}
	return out
}

// CheckAgainst verifies that a restored state belongs to set and fits within
// duration.
func (s SessionState) CheckAgainst(set QuestionSet, duration time.Duration) error {
	if len(s.Ledger) != set.Len() {
		return fmt.Errorf("ledger has %d entries, question set has %d", len(s.Ledger), set.Len())
	}
	if s.Cursor < 0 || s.Cursor >= set.Len() {
		return fmt.Errorf("cursor %d outside [0,%d)", s.Cursor, set.Len())
	}
	if s.RemainingTimeMs < 0 || s.RemainingTimeMs > duration.Milliseconds() {
		return fmt.Errorf("remaining time %dms outside [0,%dms]", s.RemainingTimeMs, duration.Milliseconds())
	}
	for i, entry := range s.Ledger {
		q := set.Questions[i]
		if entry.QuestionID != q.ID {
			return fmt.Errorf("ledger slot %d is question %d, expected %d", i, entry.QuestionID, q.ID)
		}
		if entry.Answered != (entry.Selection != nil) {
			return fmt.Errorf("ledger slot %d: answered flag disagrees with selection", i)
		}
		if entry.Selection != nil && !q.Options.Contains(*entry.Selection) {
			return fmt.Errorf("ledger slot %d: selection %s is not an option", i, *entry.Selection)
		}
	}
	return nil
}

// User is the quiz taker, owned by the application shell.
type User struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName,omitempty"`
}

// FullName joins the trimmed names, dropping an empty last name.
func (u User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// QuestionOutcome is the graded view of one ledger entry.
type QuestionOutcome struct {
	QuestionID    int     `json:"questionId"`
	Selection     *Choice `json:"selection"`
	CorrectAnswer Choice  `json:"correctAnswer"`
	Answered      bool    `json:"answered"`
	Correct       bool    `json:"correct"`
	Explanation   string  `json:"explanation,omitempty"`
}

// SessionResult is derived from a session state and its question set.
type SessionResult struct {
	User      User              `json:"user"`
	Score     int               `json:"score"`
	Total     int               `json:"total"`
	ElapsedMs int64             `json:"elapsedMs"`
	Outcomes  []QuestionOutcome `json:"outcomes"`
}

// Percentage is the score share rounded to the nearest integer.
func (r SessionResult) Percentage() int {
	if r.Total == 0 {
		return 0
	}
	return int(math.Round(float64(r.Score) / float64(r.Total) * 100))
}

// Performance maps the percentage to a feedback message.
func (r SessionResult) Performance() string {
	switch p := r.Percentage(); {
	case p >= 90:
		return "Excellent work! Outstanding performance!"
	case p >= 80:
		return "Great job! Very good performance!"
	case p >= 70:
		return "Good work! Solid performance!"
	case p >= 60:
		return "Not bad! Room for improvement."
	default:
		return "Keep studying! You can do better!"
	}
}

// LeaderboardEntry is one completed session as recorded by the sink.
type LeaderboardEntry struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Score          int       `json:"score"`
	Total          int       `json:"total"`
	ElapsedSeconds int       `json:"elapsedSeconds"`
	RecordedAt     time.Time `json:"recordedAt"`
}

func (e LeaderboardEntry) Elapsed() time.Duration {
	return time.Duration(e.ElapsedSeconds) * time.Second
}

// SortLeaderboard orders by score descending, then faster time, then
// earlier recording.
func SortLeaderboard(entries []LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].ElapsedSeconds != entries[j].ElapsedSeconds {
			return entries[i].ElapsedSeconds < entries[j].ElapsedSeconds
		}
		return entries[i].RecordedAt.Before(entries[j].RecordedAt)
	})
}
