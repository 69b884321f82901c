package store

import (
	"database/sql"
	"errors"
	"sync"
	"time"
)

// KeyVal is the persistence capability injected into the session manager.
// The core owns no global state; embedders may substitute their own
// implementation (platform key-value store, file, etc.).
type KeyVal interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// SQLiteKeyVal implements KeyVal on top of the shared SQLite database.
type SQLiteKeyVal struct {
	db *DB
}

// NewSQLiteKeyVal creates a keyval store using the given database.
func NewSQLiteKeyVal(db *DB) *SQLiteKeyVal {
	return &SQLiteKeyVal{db: db}
}

// Get returns the value for key, or false if absent.
func (s *SQLiteKeyVal) Get(key string) (string, bool) {
	var value string
	err := s.db.sql.QueryRow(`SELECT value FROM keyval WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.db.log.Error().Err(err).Str("key", key).Msg("keyval read failed")
		}
		return "", false
	}
	return value, true
}

// Set stores the value for key, replacing any previous value.
func (s *SQLiteKeyVal) Set(key, value string) error {
	_, err := s.db.sql.Exec(
		`INSERT INTO keyval (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   value = excluded.value,
		   updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.DateTime),
	)
	return err
}

// MemoryKeyVal is an in-process KeyVal for tests and embedders that bring
// their own persistence.
type MemoryKeyVal struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemoryKeyVal creates an empty in-memory keyval store.
func NewMemoryKeyVal() *MemoryKeyVal {
	return &MemoryKeyVal{m: make(map[string]string)}
}

// Get returns the value for key, or false if absent.
func (s *MemoryKeyVal) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok
}

// Set stores the value for key.
func (s *MemoryKeyVal) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}
