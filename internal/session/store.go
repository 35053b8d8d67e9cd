package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ─── Config ──────────────────────────────────────────────────────────────────

// StoreConfig holds session store configuration.
type StoreConfig struct {
	DataDir string
	// MaxTurns bounds how many turns Turns returns when limit <= 0.
	MaxTurns int
}

// DefaultStoreConfig returns the default store configuration.
func DefaultStoreConfig() StoreConfig {
	home, _ := os.UserHomeDir()
	return StoreConfig{
		DataDir:  filepath.Join(home, ".labos"),
		MaxTurns: 200,
	}
}

// SessionSummary is a compact view of one persisted session.
type SessionSummary struct {
	ID        string `json:"id"`
	LLM       int    `json:"llm"`
	Verify    int    `json:"verify"`
	Turns     int    `json:"turns"`
	StartedAt string `json:"started_at"`
	UpdatedAt string `json:"updated_at"`
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store persists settings, counters and turns in SQLite.
type Store struct {
	db    *sql.DB
	cfg   StoreConfig
	hooks storeHooks
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

type storeHooks struct {
	exec    func(db execer, query string, args ...any) (sql.Result, error)
	beginTx func(db *sql.DB) (*sql.Tx, error)
	commit  func(tx *sql.Tx) error
}

func defaultStoreHooks() storeHooks {
	return storeHooks{
		exec: func(db execer, query string, args ...any) (sql.Result, error) {
			return db.Exec(query, args...)
		},
		beginTx: func(db *sql.DB) (*sql.Tx, error) {
			return db.Begin()
		},
		commit: func(tx *sql.Tx) error {
			return tx.Commit()
		},
	}
}

func (s *Store) execHook(db execer, query string, args ...any) (sql.Result, error) {
	if s.hooks.exec != nil {
		return s.hooks.exec(db, query, args...)
	}
	return db.Exec(query, args...)
}

func (s *Store) beginTxHook() (*sql.Tx, error) {
	if s.hooks.beginTx != nil {
		return s.hooks.beginTx(s.db)
	}
	return s.db.Begin()
}

func (s *Store) commitHook(tx *sql.Tx) error {
	if s.hooks.commit != nil {
		return s.hooks.commit(tx)
	}
	return tx.Commit()
}

// NewStore creates the data directory if needed, opens SQLite with WAL
// mode and runs migrations.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = DefaultStoreConfig().MaxTurns
	}
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("session: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "labos.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("session: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("session: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg, hooks: defaultStoreHooks()}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("session: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS settings (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS sessions (
			id           TEXT PRIMARY KEY,
			llm_count    INTEGER NOT NULL DEFAULT 0,
			verify_count INTEGER NOT NULL DEFAULT 0,
			tools        TEXT    NOT NULL DEFAULT '{}',
			started_at   TEXT    NOT NULL DEFAULT (datetime('now')),
			updated_at   TEXT    NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS turns (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			role       TEXT NOT NULL,
			content    TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, id);
		CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at DESC);
	`
	_, err := s.execHook(s.db, schema)
	return err
}

// ─── Settings ────────────────────────────────────────────────────────────────

// LoadSettings returns the settings stored under key, repaired field by
// field. ok is false when nothing is stored yet.
func (s *Store) LoadSettings(key string) (settings Settings, ok bool, err error) {
	var raw string
	err = s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Defaults(), false, nil
	}
	if err != nil {
		return Defaults(), false, fmt.Errorf("session: load settings: %w", err)
	}
	return Parse(raw), true, nil
}

// SaveSettings stores settings under key.
func (s *Store) SaveSettings(key string, settings Settings) error {
	_, err := s.execHook(s.db,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, settings.Sanitize().Serialize(), Now(),
	)
	if err != nil {
		return fmt.Errorf("session: save settings: %w", err)
	}
	return nil
}

// ─── Counters ────────────────────────────────────────────────────────────────

// EnsureSession registers a session id. Existing sessions are left as is.
func (s *Store) EnsureSession(id string) error {
	_, err := s.execHook(s.db, `INSERT OR IGNORE INTO sessions (id) VALUES (?)`, id)
	if err != nil {
		return fmt.Errorf("session: create session %q: %w", id, err)
	}
	return nil
}

// LoadCounters returns the counters of a session; unknown sessions yield
// zero counters.
func (s *Store) LoadCounters(id string) (Counters, error) {
	var (
		c     Counters
		tools string
	)
	err := s.db.QueryRow(
		`SELECT llm_count, verify_count, tools FROM sessions WHERE id = ?`, id,
	).Scan(&c.LLM, &c.Verify, &tools)
	if errors.Is(err, sql.ErrNoRows) {
		return Counters{}, nil
	}
	if err != nil {
		return Counters{}, fmt.Errorf("session: load counters: %w", err)
	}
	if tools != "" && tools != "{}" {
		_ = json.Unmarshal([]byte(tools), &c.Tools) // corrupt tool counts reset to empty
	}
	return c, nil
}

// SaveCounters upserts the counters of a session.
func (s *Store) SaveCounters(id string, c Counters) error {
	tools := []byte("{}")
	if len(c.Tools) > 0 {
		tools, _ = json.Marshal(c.Tools)
	}
	_, err := s.execHook(s.db,
		`INSERT INTO sessions (id, llm_count, verify_count, tools, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			llm_count = excluded.llm_count,
			verify_count = excluded.verify_count,
			tools = excluded.tools,
			updated_at = excluded.updated_at`,
		id, c.LLM, c.Verify, string(tools), Now(),
	)
	if err != nil {
		return fmt.Errorf("session: save counters: %w", err)
	}
	return nil
}

// ─── Turns ───────────────────────────────────────────────────────────────────

// AppendTurns stores turns for a session in one transaction.
func (s *Store) AppendTurns(id string, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}
	if err := s.EnsureSession(id); err != nil {
		return err
	}

	tx, err := s.beginTxHook()
	if err != nil {
		return fmt.Errorf("session: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := Now()
	for _, t := range turns {
		if _, err := s.execHook(tx,
			`INSERT INTO turns (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
			id, string(t.Role), t.Content, now,
		); err != nil {
			return fmt.Errorf("session: append turn: %w", err)
		}
	}
	if _, err := s.execHook(tx, `UPDATE sessions SET updated_at = ? WHERE id = ?`, now, id); err != nil {
		return fmt.Errorf("session: touch session: %w", err)
	}
	if err := s.commitHook(tx); err != nil {
		return fmt.Errorf("session: commit turns: %w", err)
	}
	return nil
}

// Turns returns the newest limit turns of a session in chronological
// order. limit <= 0 uses the configured maximum.
func (s *Store) Turns(id string, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = s.cfg.MaxTurns
	}
	rows, err := s.db.Query(
		`SELECT role, content FROM (
			SELECT id, role, content FROM turns WHERE session_id = ? ORDER BY id DESC LIMIT ?
		 ) ORDER BY id ASC`, id, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("session: query turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		var role string
		if err := rows.Scan(&role, &t.Content); err != nil {
			return nil, fmt.Errorf("session: scan turn: %w", err)
		}
		t.Role = Role(role)
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// RecentSessions lists the most recently updated sessions.
func (s *Store) RecentSessions(limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT s.id, s.llm_count, s.verify_count, COUNT(t.id), s.started_at, s.updated_at
		 FROM sessions s LEFT JOIN turns t ON t.session_id = s.id
		 GROUP BY s.id
		 ORDER BY s.updated_at DESC, s.id ASC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("session: query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var ss SessionSummary
		if err := rows.Scan(&ss.ID, &ss.LLM, &ss.Verify, &ss.Turns, &ss.StartedAt, &ss.UpdatedAt); err != nil {
			return nil, fmt.Errorf("session: scan session: %w", err)
		}
		out = append(out, ss)
	}
	return out, rows.Err()
}

// Now returns the current time formatted for SQLite.
func Now() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05")
}
