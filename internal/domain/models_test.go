package domain

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

func sampleSet() QuestionSet {
	return QuestionSet{
		ID: "set-1",
		Questions: []Question{
			{ID: 1, Prompt: "2+2?", Options: Indexed("3", "4"), CorrectAnswer: IndexChoice(1)},
			{ID: 2, Prompt: "Capital of France?", Options: Keyed(KeyedOption{"a", "Paris"}, KeyedOption{"b", "Rome"}), CorrectAnswer: KeyChoice("a")},
		},
	}
}

func TestSessionStateRoundTrip(t *testing.T) {
	sel := KeyChoice("b")
	idx := IndexChoice(0)
	state := SessionState{
		Cursor: 1,
		Ledger: []AnswerEntry{
			{QuestionID: 1, Selection: &idx, Answered: true},
			{QuestionID: 2, Selection: &sel, Answered: true},
		},
		RemainingTimeMs: 1234,
		StartTimestamp:  time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.UTC).UnixMilli(),
	}

	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back SessionState
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(state, back) {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", state, back)
	}
	if err := back.CheckAgainst(sampleSet(), time.Minute); err != nil {
		t.Fatalf("check: %v", err)
	}
}

func TestSessionStateUnansweredEncodesNull(t *testing.T) {
	state := SessionState{Ledger: NewLedger(sampleSet())}
	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"cursor":0,"ledger":[{"questionId":1,"selection":null,"answered":false},{"questionId":2,"selection":null,"answered":false}],"remainingTimeMs":0,"completed":false,"startTimestamp":0}`
	if string(data) != want {
		t.Fatalf("unexpected encoding\n got %s\nwant %s", data, want)
	}
}

func TestCheckAgainstRejectsForeignState(t *testing.T) {
	set := sampleSet()
	bad := IndexChoice(0)
	tests := []struct {
		name  string
		state SessionState
	}{
		{"short ledger", SessionState{Ledger: NewLedger(set)[:1]}},
		{"cursor out of range", SessionState{Cursor: 2, Ledger: NewLedger(set)}},
		{"remaining above duration", SessionState{Ledger: NewLedger(set), RemainingTimeMs: 61_000}},
		{"wrong question order", SessionState{Ledger: []AnswerEntry{{QuestionID: 2}, {QuestionID: 1}}}},
		{"answered without selection", SessionState{Ledger: []AnswerEntry{{QuestionID: 1, Answered: true}, {QuestionID: 2}}}},
		{"selection of wrong kind", SessionState{Ledger: []AnswerEntry{{QuestionID: 1}, {QuestionID: 2, Selection: &bad, Answered: true}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.state.CheckAgainst(set, time.Minute); err == nil {
				t.Fatalf("expected rejection")
			}
		})
	}
}

func TestQuestionSetValidate(t *testing.T) {
	set := sampleSet()
	if err := set.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	set.Questions = append(set.Questions, set.Questions[0])
	if err := set.Validate(); !errors.Is(err, ErrInvalidQuestionSet) {
		t.Fatalf("expected duplicate id rejection, got %v", err)
	}
	if err := (QuestionSet{ID: "empty"}).Validate(); !errors.Is(err, ErrInvalidQuestionSet) {
		t.Fatalf("expected empty set rejection, got %v", err)
	}
}

func TestSortLeaderboard(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []LeaderboardEntry{
		{Name: "slow", Score: 3, ElapsedSeconds: 90, RecordedAt: base},
		{Name: "low", Score: 1, ElapsedSeconds: 10, RecordedAt: base},
		{Name: "fast", Score: 3, ElapsedSeconds: 30, RecordedAt: base.Add(time.Minute)},
		{Name: "fast-early", Score: 3, ElapsedSeconds: 30, RecordedAt: base},
	}
	SortLeaderboard(entries)
	got := []string{entries[0].Name, entries[1].Name, entries[2].Name, entries[3].Name}
	want := []string{"fast-early", "fast", "slow", "low"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestResultPercentageAndPerformance(t *testing.T) {
	tests := []struct {
		score, total int
		pct          int
		msg          string
	}{
		{9, 10, 90, "Excellent work! Outstanding performance!"},
		{2, 3, 67, "Not bad! Room for improvement."},
		{0, 0, 0, "Keep studying! You can do better!"},
	}
	for _, tc := range tests {
		r := SessionResult{Score: tc.score, Total: tc.total}
		if r.Percentage() != tc.pct || r.Performance() != tc.msg {
			t.Fatalf("%d/%d: got %d %q", tc.score, tc.total, r.Percentage(), r.Performance())
		}
	}
}

func TestUserFullName(t *testing.T) {
	if got := (User{FirstName: " Ada ", LastName: ""}).FullName(); got != "Ada" {
		t.Fatalf("expected Ada, got %q", got)
	}
	if got := (User{FirstName: "Ada", LastName: "Lovelace"}).FullName(); got != "Ada Lovelace" {
		t.Fatalf("expected full name, got %q", got)
	}
}
