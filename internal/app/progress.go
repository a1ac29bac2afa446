package app

import "time"

// QuestionStatus is how the navigator shows one question.
type QuestionStatus string

const (
	StatusCurrent    QuestionStatus = "current"
	StatusAnswered   QuestionStatus = "answered"
	StatusUnanswered QuestionStatus = "unanswered"
)

// Progress summarizes a session for display.
type Progress struct {
	Phase          Phase            `json:"phase"`
	Cursor         int              `json:"cursor"`
	Total          int              `json:"total"`
	Answered       int              `json:"answered"`
	Statuses       []QuestionStatus `json:"statuses"`
	RemainingMs    int64            `json:"remainingMs"`
	RemainingLabel string           `json:"remainingLabel"`
	// LowTime is set once a quarter or less of the duration is left.
	LowTime bool `json:"lowTime"`
}

// Progress derives the navigator and timer view from a snapshot.
func (s *Session) Progress() Progress {
	snap := s.Snapshot()
	return ProgressOf(snap, s.duration)
}

func ProgressOf(snap Snapshot, duration time.Duration) Progress {
	p := Progress{
		Phase:    snap.Phase,
		Cursor:   snap.State.Cursor,
		Total:    len(snap.State.Ledger),
		Statuses: make([]QuestionStatus, len(snap.State.Ledger)),
	}
	for i, entry := range snap.State.Ledger {
		switch {
		case i == snap.State.Cursor:
			p.Statuses[i] = StatusCurrent
		case entry.Answered:
			p.Statuses[i] = StatusAnswered
		default:
			p.Statuses[i] = StatusUnanswered
		}
		if entry.Answered {
			p.Answered++
		}
	}
	remaining := time.Duration(snap.State.RemainingTimeMs) * time.Millisecond
	p.RemainingMs = snap.State.RemainingTimeMs
	p.RemainingLabel = FormatClock(remaining)
	p.LowTime = duration > 0 && remaining*4 <= duration
	return p
}
