// Package store exports one analysis run to a SQLite file: the method
// index, the call graph and the ranked candidates. The file is an output
// artifact for ad-hoc SQL; tdselect never reads it back.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store is an open export database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open creates the export database at path, replacing any existing file,
// and initializes the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("replace db: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Counts reports the number of rows per table.
type Counts struct {
	Methods    int64
	Calls      int64
	Candidates int64
	Meta       int64
}

// Counts returns row counts for every table.
func (s *Store) Counts() (*Counts, error) {
	var c Counts
	for _, q := range []struct {
		table string
		dst   *int64
	}{
		{"methods", &c.Methods},
		{"calls", &c.Calls},
		{"candidates", &c.Candidates},
		{"run_meta", &c.Meta},
	} {
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + q.table).Scan(q.dst); err != nil {
			return nil, fmt.Errorf("count %s: %w", q.table, err)
		}
	}
	return &c, nil
}
