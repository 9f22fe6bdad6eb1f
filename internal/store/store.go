package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/ElizabethRoman12/Datax/pkg/types"
)

// DBFileName is the SQLite database file created inside the data directory.
const DBFileName = "datax.db"

// Store is the SQLite-backed metrics warehouse. All methods are safe for
// concurrent use; writes within one logical batch go through explicit
// transactions.
type Store struct {
	mu     sync.RWMutex
	closed bool
	config types.Config
	db     *sql.DB
}

// Open creates the data directory if needed, opens (or creates) the
// SQLite database inside it, and ensures the schema exists.
func Open(config types.Config) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(config.DataDir, DBFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("create indexes: %w", err)
		}
	}

	return &Store{config: config, db: db}, nil
}

// Close releases the database handle. Close is idempotent; after Close,
// all operations return types.ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return err
		}
		s.db = nil
	}
	return nil
}

// DB exposes the underlying handle for callers that manage their own
// transactions, such as the delta calculator.
func (s *Store) DB() *sql.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

// handle returns the database handle or ErrStoreClosed.
func (s *Store) handle() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed || s.db == nil {
		return nil, types.ErrStoreClosed
	}
	return s.db, nil
}
