package logging

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/danielpatrickdp/interview-engine/internal/interview"
)

// #region schema
const turnLogSchema = `
CREATE TABLE IF NOT EXISTS turn_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	stage         TEXT NOT NULL,
	depth         INTEGER NOT NULL,
	pattern       TEXT NOT NULL,
	source        TEXT NOT NULL,
	keywords      TEXT,
	misaligned    INTEGER NOT NULL DEFAULT 0,
	joking        INTEGER NOT NULL DEFAULT 0,
	from_cache    INTEGER NOT NULL DEFAULT 0,
	quality       INTEGER NOT NULL,
	question      TEXT NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_turn_log_session ON turn_log(session_id, id);
`
// #endregion schema

// #region entry
// TurnEntry is one row in turn_log: what the engine decided for one turn.
type TurnEntry struct {
	SessionID string
	Result    interview.Result
	Quality   int // QualityScorer total, 0-50
	CreatedAt time.Time
}

// NewTurnEntry scores res and wraps it for logging.
func NewTurnEntry(sessionID string, res interview.Result) TurnEntry {
	return TurnEntry{
		SessionID: sessionID,
		Result:    res,
		Quality:   interview.ScoreQuestion(res.Question, res.Pattern).Total,
	}
}
// #endregion entry

// #region turn-log
// TurnLog persists per-turn decisions next to the transcript.
type TurnLog struct {
	db *sql.DB
}

// NewTurnLog creates the turn_log table on db if needed.
func NewTurnLog(db *sql.DB) (*TurnLog, error) {
	if _, err := db.Exec(turnLogSchema); err != nil {
		return nil, fmt.Errorf("migrate turn log: %w", err)
	}
	return &TurnLog{db: db}, nil
}

// LogTurn writes one decision row.
func (l *TurnLog) LogTurn(ctx context.Context, entry TurnEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	res := entry.Result
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO turn_log (session_id, stage, depth, pattern, source, keywords,
		 misaligned, joking, from_cache, quality, question, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID,
		res.Stage.String(),
		res.Depth,
		string(res.Pattern),
		string(res.Source),
		nullIfEmpty(strings.Join(res.Keywords, ",")),
		boolInt(res.Flags.Misaligned),
		boolInt(res.Flags.Joking),
		boolInt(res.Flags.ServedFromCache),
		entry.Quality,
		res.Question,
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log turn: %w", err)
	}
	return nil
}
// #endregion turn-log

// #region summary
// SourceSummary aggregates logged turns for one question source.
type SourceSummary struct {
	Source      interview.Source
	Turns       int
	MeanQuality float64
}

// Summary groups logged turns by source, optionally for one session.
// Rows come back ordered by turn count, most frequent first.
func (l *TurnLog) Summary(ctx context.Context, sessionID string) ([]SourceSummary, error) {
	query := `SELECT source, COUNT(*), AVG(quality) FROM turn_log`
	var args []any
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` GROUP BY source`

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	var out []SourceSummary
	for rows.Next() {
		var (
			s   SourceSummary
			src string
		)
		if err := rows.Scan(&src, &s.Turns, &s.MeanQuality); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		s.Source = interview.Source(src)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Turns != out[j].Turns {
			return out[i].Turns > out[j].Turns
		}
		return out[i].Source < out[j].Source
	})
	return out, nil
}

// FlagCounts returns how many logged turns were redirects for joking and for
// misalignment.
func (l *TurnLog) FlagCounts(ctx context.Context, sessionID string) (joking, misaligned int, err error) {
	err = l.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(joking), 0), COALESCE(SUM(misaligned), 0) FROM turn_log WHERE session_id = ?`,
		sessionID,
	).Scan(&joking, &misaligned)
	if err != nil {
		return 0, 0, fmt.Errorf("query flags: %w", err)
	}
	return joking, misaligned, nil
}
// #endregion summary

// #region helpers
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
