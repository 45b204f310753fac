package storage

import (
	"context"
	"errors"

	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE PostgreSQL reports for unique_violation.
const uniqueViolation = pq.ErrorCode("23505")

type PostgresStore struct {
	*sqlStore
}

func NewPostgresStore(connStr string, opts Options) (*PostgresStore, error) {
	db, err := openDB("postgres", connStr, opts)
	if err != nil {
		return nil, err
	}

	return &PostgresStore{sqlStore: &sqlStore{
		db:      db,
		q:       newQueries(identity),
		options: opts,
	}}, nil
}

func (s *PostgresStore) Initialize(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS articles (
            id SERIAL PRIMARY KEY,
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

func (s *PostgresStore) IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
