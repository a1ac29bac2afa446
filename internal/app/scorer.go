package app

import (
	"time"

	"quiz-runner/internal/domain"
)

// Score counts answered entries whose selection equals the correct answer.
func Score(set domain.QuestionSet, ledger []domain.AnswerEntry) int {
	score := 0
	for _, outcome := range Grade(set, ledger) {
		if outcome.Correct {
			score++
		}
	}
	return score
}

// Grade returns one outcome per question in set order. Questions with no
// ledger entry are reported unanswered.
func Grade(set domain.QuestionSet, ledger []domain.AnswerEntry) []domain.QuestionOutcome {
	byID := make(map[int]domain.AnswerEntry, len(ledger))
	for _, entry := range ledger {
		byID[entry.QuestionID] = entry
	}

	outcomes := make([]domain.QuestionOutcome, 0, len(set.Questions))
	for _, q := range set.Questions {
		outcome := domain.QuestionOutcome{
			QuestionID:    q.ID,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
		if entry, ok := byID[q.ID]; ok && entry.Answered && entry.Selection != nil {
			sel := *entry.Selection
			outcome.Selection = &sel
			outcome.Answered = true
			outcome.Correct = sel.Equal(q.CorrectAnswer)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// ResultOf scores a snapshot. Elapsed time is the duration minus the
// remaining time frozen in the state.
func ResultOf(set domain.QuestionSet, duration time.Duration, snap Snapshot) domain.SessionResult {
	outcomes := Grade(set, snap.State.Ledger)
	score := 0
	for _, o := range outcomes {
		if o.Correct {
			score++
		}
	}
	return domain.SessionResult{
		User:      snap.User,
		Score:     score,
		Total:     set.Len(),
		ElapsedMs: duration.Milliseconds() - snap.State.RemainingTimeMs,
		Outcomes:  outcomes,
	}
}
