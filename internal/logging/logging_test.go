package logging

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/interview-engine/internal/interview"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func result(source interview.Source, q string) interview.Result {
	return interview.Result{
		Question: q,
		Stage:    interview.StageExploration,
		Depth:    3,
		Pattern:  interview.PatternCompetitiveSport,
		Keywords: interview.NewKeywordSet("練習", "試合"),
		Source:   source,
	}
}

// #endregion helpers

// #region logger-tests
func TestNewJSONConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "info", Format: "json", Console: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Debug("hidden")
	log.Info("shown")
	_ = log.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line at info level, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("console line is not JSON: %v", err)
	}
	if rec["msg"] != "shown" {
		t.Errorf("got msg %v, want shown", rec["msg"])
	}
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interview.log")
	log, err := New(Config{Level: "debug", File: path, Console: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Named("engine").Debug("turn", zap.Stringer("stage", interview.StageDeepening))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"stage":"deepening"`) {
		t.Errorf("file log missing stage field: %s", data)
	}
}

func TestNewBadLevel(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

// #endregion logger-tests

// #region turn-log-tests
func TestLogTurnAndSummary(t *testing.T) {
	db := setupDB(t)
	tl, err := NewTurnLog(db)
	if err != nil {
		t.Fatalf("NewTurnLog: %v", err)
	}
	ctx := context.Background()

	entries := []TurnEntry{
		NewTurnEntry("s1", result(interview.SourceGenerated, "試合で大変だったことは何ですか？")),
		NewTurnEntry("s1", result(interview.SourceGenerated, "どんな練習をしましたか？")),
		NewTurnEntry("s1", result(interview.SourceFallback, "「練習」について、もう少し詳しく教えてもらえますか？")),
		NewTurnEntry("s2", result(interview.SourceCache, "どんな練習をしましたか？")),
	}
	for _, e := range entries {
		e.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		if err := tl.LogTurn(ctx, e); err != nil {
			t.Fatalf("LogTurn: %v", err)
		}
	}

	all, err := tl.Summary(ctx, "")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(all))
	}
	if all[0].Source != interview.SourceGenerated || all[0].Turns != 2 {
		t.Errorf("got first row %+v, want generated x2", all[0])
	}

	s1, _ := tl.Summary(ctx, "s1")
	total := 0
	for _, s := range s1 {
		total += s.Turns
		if s.MeanQuality <= 0 {
			t.Errorf("source %s: expected positive mean quality, got %f", s.Source, s.MeanQuality)
		}
	}
	if total != 3 {
		t.Errorf("got %d turns for s1, want 3", total)
	}
}

func TestFlagCounts(t *testing.T) {
	db := setupDB(t)
	tl, _ := NewTurnLog(db)
	ctx := context.Background()

	joke := result(interview.SourceRedirect, "真剣に答えてもらえると嬉しいです。もう一度教えてもらえますか？")
	joke.Flags.Joking = true
	off := result(interview.SourceRedirect, "もう少し詳しく教えてもらえますか？")
	off.Flags.Misaligned = true

	for _, r := range []interview.Result{joke, off, off} {
		if err := tl.LogTurn(ctx, NewTurnEntry("s1", r)); err != nil {
			t.Fatalf("LogTurn: %v", err)
		}
	}
	j, m, err := tl.FlagCounts(ctx, "s1")
	if err != nil {
		t.Fatalf("FlagCounts: %v", err)
	}
	if j != 1 || m != 2 {
		t.Errorf("got joking=%d misaligned=%d, want 1 and 2", j, m)
	}

	j, m, _ = tl.FlagCounts(ctx, "none")
	if j != 0 || m != 0 {
		t.Errorf("got %d/%d for unknown session, want 0/0", j, m)
	}
}

// #endregion turn-log-tests
