package store

import (
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

const namespace = "shelter"

// SQLiteStore keeps key/value pairs in a single-table SQLite database.
// SQLite gives atomic single-row writes, which is what matters here: the
// boot counter is incremented before anything else runs and must survive
// an immediate crash.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		ns TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (ns, key)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate state db: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE ns = ? AND key = ?", namespace, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("state read failed, using default")
		return "", false
	}
	return value, true
}

func (s *SQLiteStore) put(key, value string) error {
	query := `INSERT INTO kv (ns, key, value) VALUES (?, ?, ?)
		ON CONFLICT(ns, key) DO UPDATE SET value = excluded.value`
	if _, err := s.db.Exec(query, namespace, key, value); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

// GetInt returns the stored integer for key, or def when absent or invalid.
func (s *SQLiteStore) GetInt(key string, def int64) int64 {
	raw, ok := s.get(key)
	if !ok {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.WithField("key", key).WithField("value", raw).Warn("corrupt state value, using default")
		return def
	}
	return v
}

// PutInt stores an integer under key.
func (s *SQLiteStore) PutInt(key string, value int64) error {
	return s.put(key, strconv.FormatInt(value, 10))
}

// GetBool returns the stored boolean for key, or def when absent or invalid.
func (s *SQLiteStore) GetBool(key string, def bool) bool {
	raw, ok := s.get(key)
	if !ok {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.WithField("key", key).WithField("value", raw).Warn("corrupt state value, using default")
		return def
	}
	return v
}

// PutBool stores a boolean under key.
func (s *SQLiteStore) PutBool(key string, value bool) error {
	return s.put(key, strconv.FormatBool(value))
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
