package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"quiz-runner/internal/config"
	"quiz-runner/internal/domain"
	"quiz-runner/internal/infra/memory"
	"quiz-runner/internal/infra/sqlite"
)

func TestSampleQuestionSetIsValid(t *testing.T) {
	if err := sampleQuestionSet().Validate(); err != nil {
		t.Fatalf("sample set: %v", err)
	}
}

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Quiz.Source != config.QuestionSourceStatic || cfg.Session.Store != config.StoreMemory {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestBackendsWithLocalStores(t *testing.T) {
	dir := t.TempDir()
	questions := filepath.Join(dir, "planets.json")
	if err := os.WriteFile(questions, []byte(`{"questions":[{"id":1,"prompt":"Largest?","options":{"j":"Jupiter","m":"Mars"},"correctAnswer":"j"}]}`), 0o600); err != nil {
		t.Fatalf("write questions: %v", err)
	}

	cfg := config.Default()
	cfg.Quiz.Source = config.QuestionSourceFile
	cfg.Quiz.File = dir
	cfg.Quiz.SetID = "planets"
	cfg.Session.Store = config.StoreSQLite
	cfg.SQLite.Path = filepath.Join(dir, "quiz.db")
	cfg.Leaderboard.Sink = config.StoreNone

	ctx := context.Background()
	b, err := openBackends(ctx, cfg)
	if err != nil {
		t.Fatalf("open backends: %v", err)
	}
	defer b.Close()

	set, err := b.questionSet(ctx, cfg)
	if err != nil {
		t.Fatalf("question set: %v", err)
	}
	if set.ID != "planets" || set.Len() != 1 {
		t.Fatalf("unexpected set %+v", set)
	}
	if _, ok := b.stateStore(cfg).(*sqlite.StateStore); !ok {
		t.Fatalf("expected sqlite state store")
	}
	if board := b.leaderboard(cfg, set.ID); board != nil {
		t.Fatalf("expected no leaderboard for sink none, got %T", board)
	}

	cfg.Leaderboard.Sink = config.StoreMemory
	if _, ok := b.leaderboard(cfg, set.ID).(*memory.Leaderboard); !ok {
		t.Fatalf("expected memory leaderboard")
	}
}

func TestWriteLeaderboard(t *testing.T) {
	at := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	var out bytes.Buffer
	err := writeLeaderboard(&out, []domain.LeaderboardEntry{
		{Name: "Grace Hopper", Score: 5, Total: 5, ElapsedSeconds: 754, RecordedAt: at},
		{Name: "Ada", Score: 4, Total: 5, ElapsedSeconds: 61, RecordedAt: at},
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows, got %q", out.String())
	}
	if !strings.Contains(lines[1], "Grace Hopper") || !strings.Contains(lines[1], "5/5") || !strings.Contains(lines[1], "12:34") {
		t.Fatalf("unexpected first row %q", lines[1])
	}
	if !strings.Contains(lines[2], "01:01") || !strings.Contains(lines[2], "2026-10-17 09:30") {
		t.Fatalf("unexpected second row %q", lines[2])
	}
}

func TestPrintLeaderboardRejectsMemorySink(t *testing.T) {
	cfg := config.Default()
	if err := printLeaderboard(context.Background(), &bytes.Buffer{}, cfg, 10); err == nil {
		t.Fatalf("expected error for in-memory sink")
	}
}
