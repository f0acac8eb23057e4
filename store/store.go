package store

import (
	"database/sql"
)

// Store handles all database operations with a shared connection pool
type Store struct {
	db *sql.DB
}

// NewStore opens the SQLite database at the given path.
func NewStore(database string) (*Store, error) {
	db, err := connection(database)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
