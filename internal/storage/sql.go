package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/romangod6/articles-api/internal/models"
)

// Queries are written with PostgreSQL placeholders and rebound per dialect.
const (
	listArticlesQuery = `
        SELECT id, title, content, author
        FROM articles
        ORDER BY id ASC
    `
	countTitleQuery = `SELECT COUNT(id) FROM articles WHERE title = $1`
	insertQuery     = `
        INSERT INTO articles (title, content, author)
        VALUES ($1, $2, $3)
        RETURNING id, title, content, author
    `
	updateQuery = `
        UPDATE articles SET title = $2, content = $3, author = $4
        WHERE id = $1
        RETURNING id, title, content, author
    `
	updateTitleQuery = `
        UPDATE articles SET title = $2
        WHERE id = $1
        RETURNING id, title, content, author
    `
	deleteQuery = `
        DELETE FROM articles
        WHERE id = $1
        RETURNING id, title, content, author
    `
	uniqueTitleIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_articles_title ON articles(title)`
)

type queries struct {
	list, countTitle, insert, update, updateTitle, delete string
}

func newQueries(rebind func(string) string) queries {
	return queries{
		list:        rebind(listArticlesQuery),
		countTitle:  rebind(countTitleQuery),
		insert:      rebind(insertQuery),
		update:      rebind(updateQuery),
		updateTitle: rebind(updateTitleQuery),
		delete:      rebind(deleteQuery),
	}
}

// numberedParams turns $1 placeholders into SQLite's ?1 form, keeping the
// argument order of the PostgreSQL queries.
func numberedParams(query string) string {
	return strings.ReplaceAll(query, "$", "?")
}

func identity(query string) string { return query }

// sqlStore is the storage gateway shared by every dialect. Driver errors are
// returned as they are.
type sqlStore struct {
	db      *sql.DB
	q       queries
	options Options
}

func openDB(driver, dsn string, opts Options) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (s *sqlStore) exec(ctx context.Context, queries []string) error {
	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (s *sqlStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

func (s *sqlStore) ListArticles(ctx context.Context) ([]*models.Article, error) {
	rows, err := s.db.QueryContext(ctx, s.q.list)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*models.Article
	for rows.Next() {
		article := &models.Article{}
		if err := rows.Scan(&article.ID, &article.Title, &article.Content, &article.Author); err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}

	return articles, rows.Err()
}

func (s *sqlStore) TitleExists(ctx context.Context, title *string) (bool, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, s.q.countTitle, title).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *sqlStore) CreateArticle(ctx context.Context, fields models.ArticleFields) (*models.Article, error) {
	return s.returning(ctx, s.q.insert, fields.Title, fields.Content, fields.Author)
}

func (s *sqlStore) UpdateArticle(ctx context.Context, id int64, fields models.ArticleFields) (*models.Article, error) {
	return s.returning(ctx, s.q.update, id, fields.Title, fields.Content, fields.Author)
}

func (s *sqlStore) UpdateArticleTitle(ctx context.Context, id int64, title string) (*models.Article, error) {
	return s.returning(ctx, s.q.updateTitle, id, title)
}

func (s *sqlStore) DeleteArticle(ctx context.Context, id int64) (*models.Article, error) {
	return s.returning(ctx, s.q.delete, id)
}

// returning runs a statement with a RETURNING clause and scans the single row
// it yields, or nil when nothing matched.
func (s *sqlStore) returning(ctx context.Context, query string, args ...interface{}) (*models.Article, error) {
	article := &models.Article{}
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&article.ID,
		&article.Title,
		&article.Content,
		&article.Author,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return article, nil
}
