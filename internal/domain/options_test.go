package domain

import (
	"encoding/json"
	"testing"
)

func TestOptionsDecodeKeepsKeyOrder(t *testing.T) {
	var q Question
	raw := `{"id":7,"prompt":"Pick","options":{"c":"three","a":"one","b":"two"},"correctAnswer":"a"}`
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if q.Options.Kind() != KeyedOptions {
		t.Fatalf("expected keyed options, got %s", q.Options.Kind())
	}
	choices := q.Options.Choices()
	want := []string{"c", "a", "b"}
	for i, c := range choices {
		key, ok := c.Key()
		if !ok || key != want[i] {
			t.Fatalf("choice %d: expected key %q, got %v", i, want[i], c)
		}
	}
	if err := q.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	out, err := json.Marshal(q.Options)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"c":"three","a":"one","b":"two"}` {
		t.Fatalf("unexpected encoding %s", out)
	}
}

func TestOptionsDecodeIndexed(t *testing.T) {
	var q Question
	raw := `{"id":1,"prompt":"2+2?","options":["3","4","5"],"correctAnswer":1}`
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if q.Options.Kind() != IndexedOptions || q.Options.Len() != 3 {
		t.Fatalf("unexpected options %+v", q.Options)
	}
	text, ok := q.Options.Text(q.CorrectAnswer)
	if !ok || text != "4" {
		t.Fatalf("expected correct text 4, got %q (%v)", text, ok)
	}
}

func TestChoiceEqualityIsKindAware(t *testing.T) {
	if IndexChoice(0).Equal(KeyChoice("0")) {
		t.Fatalf("index 0 must not equal key \"0\"")
	}
	if !IndexChoice(2).Equal(IndexChoice(2)) || !KeyChoice("b").Equal(KeyChoice("b")) {
		t.Fatalf("same-kind choices should be equal")
	}
	if (Choice{}).Equal(Choice{}) {
		t.Fatalf("zero choices carry no kind and never match")
	}
}

func TestQuestionValidate(t *testing.T) {
	tests := []struct {
		name    string
		q       Question
		wantErr bool
	}{
		{"indexed ok", Question{ID: 1, Prompt: "p", Options: Indexed("a", "b"), CorrectAnswer: IndexChoice(1)}, false},
		{"keyed ok", Question{ID: 1, Prompt: "p", Options: Keyed(KeyedOption{"a", "x"}, KeyedOption{"b", "y"}), CorrectAnswer: KeyChoice("b")}, false},
		{"too few options", Question{ID: 1, Prompt: "p", Options: Indexed("a"), CorrectAnswer: IndexChoice(0)}, true},
		{"too many options", Question{ID: 1, Prompt: "p", Options: Indexed("a", "b", "c", "d", "e", "f"), CorrectAnswer: IndexChoice(0)}, true},
		{"kind mismatch", Question{ID: 1, Prompt: "p", Options: Indexed("a", "b"), CorrectAnswer: KeyChoice("0")}, true},
		{"answer out of range", Question{ID: 1, Prompt: "p", Options: Indexed("a", "b"), CorrectAnswer: IndexChoice(2)}, true},
		{"duplicate key", Question{ID: 1, Prompt: "p", Options: Keyed(KeyedOption{"a", "x"}, KeyedOption{"a", "y"}), CorrectAnswer: KeyChoice("a")}, true},
		{"empty prompt", Question{ID: 1, Prompt: " ", Options: Indexed("a", "b"), CorrectAnswer: IndexChoice(0)}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.q.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("expected error=%v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestChoiceNullDecodesToZero(t *testing.T) {
	var c Choice
	if err := json.Unmarshal([]byte("null"), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Kind() != 0 {
		t.Fatalf("expected zero choice, got %v", c)
	}
}
