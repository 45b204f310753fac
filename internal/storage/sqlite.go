package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	*sqlStore
}

// NewSQLiteStore opens the database file at dbPath. A busy timeout is added
// unless the path already carries its own parameters.
func NewSQLiteStore(dbPath string, opts Options) (*SQLiteStore, error) {
	dsn := dbPath
	if !strings.Contains(dsn, "?") {
		dsn += "?_busy_timeout=5000"
	}

	db, err := openDB("sqlite3", dsn, opts)
	if err != nil {
		return nil, err
	}

	return &SQLiteStore{sqlStore: &sqlStore{
		db:      db,
		q:       newQueries(numberedParams),
		options: opts,
	}}, nil
}

func (s *SQLiteStore) Initialize(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS articles (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            title TEXT NOT NULL,
            content TEXT NOT NULL,
            author TEXT NOT NULL
        )`,
	}
	if s.options.UniqueTitles {
		queries = append(queries, uniqueTitleIndex)
	}

	return s.exec(ctx, queries)
}

func (s *SQLiteStore) IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
