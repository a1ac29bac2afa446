package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"quiz-runner/internal/domain"
)

const yamlSet = `
id: planets
title: Planets
questions:
  - id: 1
    prompt: Which planet is largest?
    options: [Mars, Jupiter, Venus]
    correctAnswer: 1
  - id: 2
    prompt: Which planet is red?
    options:
      z: Venus
      b: Mars
      "1": Earth
    correctAnswer: b
    explanation: Iron oxide dust.
`

const jsonSet = `{
  "id": "basics",
  "questions": [
    {"id": 7, "prompt": "2 + 2?", "options": ["3", "4"], "correctAnswer": 1},
    {"id": 8, "prompt": "Capital of France?", "options": {"c": "Rome", "a": "Paris"}, "correctAnswer": "a"}
  ]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadYAMLKeepsKeyedOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "planets.yaml", yamlSet)

	set, err := NewQuestionLoader(dir).LoadQuestionSet(context.Background(), "planets")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := set.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if set.Title != "Planets" || set.Len() != 2 {
		t.Fatalf("unexpected set %+v", set)
	}

	first := set.Questions[0]
	if first.Options.Kind() != domain.IndexedOptions || !first.CorrectAnswer.Equal(domain.IndexChoice(1)) {
		t.Fatalf("unexpected first question %+v", first)
	}

	second := set.Questions[1]
	choices := second.Options.Choices()
	wantKeys := []string{"z", "b", "1"}
	if len(choices) != len(wantKeys) {
		t.Fatalf("expected %d options, got %d", len(wantKeys), len(choices))
	}
	for i, want := range wantKeys {
		if !choices[i].Equal(domain.KeyChoice(want)) {
			t.Fatalf("option %d: expected key %q, got %s", i, want, choices[i])
		}
	}
	if !second.CorrectAnswer.Equal(domain.KeyChoice("b")) {
		t.Fatalf("unexpected correct answer %s", second.CorrectAnswer)
	}
	if second.Explanation != "Iron oxide dust." {
		t.Fatalf("explanation lost: %q", second.Explanation)
	}
}

func TestLoadJSONFromSingleFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "basics.json", jsonSet)

	set, err := NewQuestionLoader(path).LoadQuestionSet(context.Background(), "anything")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if set.ID != "basics" {
		t.Fatalf("expected id from document, got %q", set.ID)
	}
	if err := set.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	text, ok := set.Questions[1].Options.Text(domain.KeyChoice("c"))
	if !ok || text != "Rome" {
		t.Fatalf("unexpected option text %q", text)
	}
}

func TestLoadMissingSet(t *testing.T) {
	loader := NewQuestionLoader(t.TempDir())
	for _, id := range []string{"missing", "../etc/passwd", ""} {
		if _, err := loader.LoadQuestionSet(context.Background(), id); !errors.Is(err, domain.ErrQuestionSetNotFound) {
			t.Fatalf("%q: expected ErrQuestionSetNotFound, got %v", id, err)
		}
	}
}

func TestDecodeRejectsUnknownExtension(t *testing.T) {
	if _, err := Decode("set.toml", []byte(`id = "x"`)); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
}

func TestDecodeDefaultsIDToRequested(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "anon.yml", "questions:\n  - id: 1\n    prompt: p\n    options: [a, b]\n    correctAnswer: 0\n")

	set, err := NewQuestionLoader(dir).LoadQuestionSet(context.Background(), "anon")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if set.ID != "anon" {
		t.Fatalf("expected requested id, got %q", set.ID)
	}
}
