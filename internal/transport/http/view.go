package http

import (
	"time"

	"quiz-runner/internal/app"
	"quiz-runner/internal/domain"
)

type questionView struct {
	Index     int            `json:"index"`
	ID        int            `json:"id"`
	Prompt    string         `json:"prompt"`
	Options   domain.Options `json:"options"`
	Selection *domain.Choice `json:"selection"`
}

type sessionView struct {
	Phase      app.Phase     `json:"phase"`
	User       *domain.User  `json:"user,omitempty"`
	Title      string        `json:"title,omitempty"`
	Progress   app.Progress  `json:"progress"`
	Question   *questionView `json:"question,omitempty"`
	Unanswered []int         `json:"unanswered"`
}

type resultView struct {
	User         domain.User              `json:"user"`
	Score        int                      `json:"score"`
	Total        int                      `json:"total"`
	Percentage   int                      `json:"percentage"`
	Performance  string                   `json:"performance"`
	ElapsedMs    int64                    `json:"elapsedMs"`
	ElapsedLabel string                   `json:"elapsedLabel"`
	Outcomes     []domain.QuestionOutcome `json:"outcomes"`
}

// buildView renders what a client needs to draw the current screen.
func buildView(set domain.QuestionSet, duration time.Duration, snap app.Snapshot) sessionView {
	view := sessionView{
		Phase:      snap.Phase,
		Title:      set.Title,
		Progress:   app.ProgressOf(snap, duration),
		Unanswered: make([]int, 0),
	}
	if snap.Phase != app.PhaseNotStarted {
		user := snap.User
		view.User = &user
	}
	for _, entry := range snap.State.Ledger {
		if !entry.Answered {
			view.Unanswered = append(view.Unanswered, entry.QuestionID)
		}
	}
	if snap.Phase == app.PhaseInProgress {
		cursor := snap.State.Cursor
		if cursor >= 0 && cursor < set.Len() {
			q := set.Questions[cursor]
			view.Question = &questionView{
				Index:     cursor,
				ID:        q.ID,
				Prompt:    q.Prompt,
				Options:   q.Options,
				Selection: snap.State.Ledger[cursor].Selection,
			}
		}
	}
	return view
}

func buildResult(result domain.SessionResult) resultView {
	return resultView{
		User:         result.User,
		Score:        result.Score,
		Total:        result.Total,
		Percentage:   result.Percentage(),
		Performance:  result.Performance(),
		ElapsedMs:    result.ElapsedMs,
		ElapsedLabel: app.FormatClock(time.Duration(result.ElapsedMs) * time.Millisecond),
		Outcomes:     result.Outcomes,
	}
}
