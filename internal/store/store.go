// Package store provides local key-value persistence for session
// identity. The database is created on first use. If opening the DB or
// executing queries fails, the store falls back to in-memory storage so
// the client keeps working without persistence.
package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/glebarez/go-sqlite"

	"github.com/tharos-ai/superintendent-go/internal/logger"
)

// Keys used by the session.
const (
	KeyPersonality    = "personality"
	KeyConversationID = "conversation_id"
)

// Store is a sqlite-backed string key-value store. Writes are mirrored
// in memory so reads still work if sqlite degrades after open.
type Store struct {
	mu  sync.Mutex
	mem map[string]string
	db  *sql.DB
}

// Open opens (or creates) the store at path. Open never fails: on any
// sqlite error it logs a warning and returns a memory-only store.
func Open(path string) *Store {
	s := &Store{mem: make(map[string]string)}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.L.Warn("store dir creation failed; using in-memory store", "path", path, "error", err)
			return s
		}
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_busy_timeout=10000")
	if err != nil {
		logger.L.Warn("sqlite open failed; using in-memory store", "error", err)
		return s
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
        key TEXT PRIMARY KEY,
        value TEXT
    );`); err != nil {
		logger.L.Warn("sqlite table creation failed; using in-memory store", "error", err)
		if cerr := db.Close(); cerr != nil {
			logger.L.Warn("sqlite close error", "error", cerr)
		}
		return s
	}

	s.db = db
	return s
}

// Set persists a value, overwriting any previous one.
func (s *Store) Set(key, value string) {
	if s.db != nil {
		if _, err := s.db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
            ON CONFLICT(key) DO UPDATE SET value = excluded.value;`, key, value); err != nil {
			logger.L.Error("failed to persist key; falling back to memory", "key", key, "error", err)
		}
	}
	s.mu.Lock()
	s.mem[key] = value
	s.mu.Unlock()
}

// Get returns the stored value and whether the key exists.
func (s *Store) Get(key string) (string, bool) {
	if s.db != nil {
		var value string
		err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?;`, key).Scan(&value)
		switch err {
		case nil:
			return value, true
		case sql.ErrNoRows:
			return "", false
		default:
			logger.L.Warn("sqlite read failed; using in-memory value", "key", key, "error", err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.mem[key]
	return value, ok
}

// Delete removes a key. Deleting a missing key is a no-op.
func (s *Store) Delete(key string) {
	if s.db != nil {
		if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?;`, key); err != nil {
			logger.L.Error("failed to delete key from sqlite", "key", key, "error", err)
		}
	}
	s.mu.Lock()
	delete(s.mem, key)
	s.mu.Unlock()
}

// Close releases the underlying database, if any.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
