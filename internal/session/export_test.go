package session

import (
	"database/sql"
	"errors"
)

// DB exposes the internal *sql.DB for test helpers in session_test.
// This file only compiles during `go test`.
func (s *Store) DB() *sql.DB {
	return s.db
}

// FailCommit makes every subsequent transaction commit fail.
func (s *Store) FailCommit() {
	s.hooks.commit = func(tx *sql.Tx) error {
		_ = tx.Rollback()
		return errors.New("forced commit failure")
	}
}

// FailOpen makes NewStore fail to open the database until restore is called.
func FailOpen() (restore func()) {
	prev := openDB
	openDB = func(string, string) (*sql.DB, error) {
		return nil, errors.New("forced open failure")
	}
	return func() { openDB = prev }
}
