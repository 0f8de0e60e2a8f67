package transcript

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/interview-engine/internal/interview"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id    TEXT PRIMARY KEY,
	profile_json  TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	closed_at     TEXT
);

CREATE TABLE IF NOT EXISTS turns (
	turn_id       TEXT PRIMARY KEY,
	session_id    TEXT NOT NULL,
	seq           INTEGER NOT NULL,
	role          TEXT NOT NULL,
	text          TEXT NOT NULL,
	source        TEXT,
	created_at    TEXT NOT NULL,
	UNIQUE (session_id, seq),
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);

CREATE TABLE IF NOT EXISTS pattern_memo (
	memo_key      TEXT PRIMARY KEY,
	pattern       TEXT NOT NULL,
	created_at    TEXT NOT NULL
);
`
// #endregion schema

// #region store-struct
// Store persists sessions, their turns, and the per-session pattern memo in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time

	mu      sync.Mutex // guards entropy and seq allocation
	entropy io.Reader
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{
		db:      db,
		now:     func() time.Time { return time.Now().UTC() },
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}
// #endregion constructor

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB so the turn log can share the file.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #region sessions
// CreateSession starts a new session for profile.
func (s *Store) CreateSession(ctx context.Context, profile interview.ActivityProfile) (Session, error) {
	raw, err := json.Marshal(profile)
	if err != nil {
		return Session{}, fmt.Errorf("marshal profile: %w", err)
	}
	sess := Session{
		ID:        uuid.New().String(),
		Profile:   profile,
		CreatedAt: s.now(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, profile_json, created_at) VALUES (?, ?, ?)`,
		sess.ID, string(raw), sess.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

const sessionColumns = `
	s.session_id, s.profile_json, s.created_at, s.closed_at,
	COALESCE(m.pattern, ''),
	(SELECT COUNT(*) FROM turns t WHERE t.session_id = s.session_id)
	FROM sessions s
	LEFT JOIN pattern_memo m ON m.memo_key = 'session:' || s.session_id`

// GetSession loads one session. Returns ErrNotFound if it does not exist.
func (s *Store) GetSession(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT`+sessionColumns+` WHERE s.session_id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, err
}

// ListSessions returns the most recent sessions first.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT`+sessionColumns+` ORDER BY s.created_at DESC, s.session_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// CloseSession marks a session finished. Closing twice keeps the first time.
func (s *Store) CloseSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET closed_at = COALESCE(closed_at, ?) WHERE session_id = ?`,
		s.now().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(sc scanner) (Session, error) {
	var (
		sess        Session
		profileJSON string
		createdStr  string
		closedStr   sql.NullString
		pattern     string
	)
	if err := sc.Scan(&sess.ID, &profileJSON, &createdStr, &closedStr, &pattern, &sess.Turns); err != nil {
		return Session{}, err
	}
	if err := json.Unmarshal([]byte(profileJSON), &sess.Profile); err != nil {
		return Session{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	sess.Pattern = interview.Pattern(pattern)
	var err error
	if sess.CreatedAt, err = time.Parse(time.RFC3339Nano, createdStr); err != nil {
		return Session{}, fmt.Errorf("parse created_at: %w", err)
	}
	if closedStr.Valid {
		if sess.ClosedAt, err = time.Parse(time.RFC3339Nano, closedStr.String); err != nil {
			return Session{}, fmt.Errorf("parse closed_at: %w", err)
		}
	}
	return sess, nil
}
// #endregion sessions

// #region turns
// AppendTurn records one utterance at the end of the session. Turns are never
// edited; source is only meaningful for interviewer turns.
func (s *Store) AppendTurn(ctx context.Context, sessionID string, role interview.Role, text string, source interview.Source) (TurnRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec := TurnRecord{
		ID:        ulid.MustNew(ulid.Timestamp(now), s.entropy).String(),
		SessionID: sessionID,
		Role:      role,
		Text:      text,
		Source:    source,
		CreatedAt: now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TurnRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var closed sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT closed_at FROM sessions WHERE session_id = ?`, sessionID).Scan(&closed)
	if errors.Is(err, sql.ErrNoRows) {
		return TurnRecord{}, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	if err != nil {
		return TurnRecord{}, fmt.Errorf("lookup session: %w", err)
	}
	if closed.Valid {
		return TurnRecord{}, fmt.Errorf("session %s is closed", sessionID)
	}

	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM turns WHERE session_id = ?`, sessionID,
	).Scan(&rec.Seq); err != nil {
		return TurnRecord{}, fmt.Errorf("next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO turns (turn_id, session_id, seq, role, text, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, sessionID, rec.Seq, string(role), text, nullIfEmpty(string(source)), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return TurnRecord{}, fmt.Errorf("insert turn: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return TurnRecord{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// Turns returns every stored turn of the session in order.
func (s *Store) Turns(ctx context.Context, sessionID string) ([]TurnRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT turn_id, seq, role, text, COALESCE(source, ''), created_at
		 FROM turns WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var out []TurnRecord
	for rows.Next() {
		var (
			rec        TurnRecord
			role       string
			source     string
			createdStr string
		)
		if err := rows.Scan(&rec.ID, &rec.Seq, &role, &rec.Text, &source, &createdStr); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		rec.SessionID = sessionID
		rec.Role = interview.Role(role)
		rec.Source = interview.Source(source)
		rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdStr)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// History returns the session's turns as engine history.
func (s *Store) History(ctx context.Context, sessionID string) ([]interview.Turn, error) {
	recs, err := s.Turns(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]interview.Turn, len(recs))
	for i, r := range recs {
		out[i] = r.Turn()
	}
	return out, nil
}
// #endregion turns

// #region pattern-memo
// LoadPattern implements interview.PatternMemo.
func (s *Store) LoadPattern(ctx context.Context, key string) (interview.Pattern, bool, error) {
	var p string
	err := s.db.QueryRowContext(ctx, `SELECT pattern FROM pattern_memo WHERE memo_key = ?`, key).Scan(&p)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load pattern: %w", err)
	}
	return interview.Pattern(p), true, nil
}

// StorePattern implements interview.PatternMemo. The first stored pattern
// for a key is kept; later stores are ignored.
func (s *Store) StorePattern(ctx context.Context, key string, p interview.Pattern) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pattern_memo (memo_key, pattern, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(memo_key) DO NOTHING`,
		key, string(p), s.now().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store pattern: %w", err)
	}
	return nil
}
// #endregion pattern-memo

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
