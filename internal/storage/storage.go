package storage

import (
	"context"

	"github.com/romangod6/articles-api/internal/models"
)

type Store interface {
	Initialize(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error

	// IsUniqueViolation reports whether err comes from a unique constraint
	// of the underlying database.
	IsUniqueViolation(err error) bool

	// Article operations. Update and delete return a nil article when no row
	// matches the id.
	ListArticles(ctx context.Context) ([]*models.Article, error)
	TitleExists(ctx context.Context, title *string) (bool, error)
	CreateArticle(ctx context.Context, fields models.ArticleFields) (*models.Article, error)
	UpdateArticle(ctx context.Context, id int64, fields models.ArticleFields) (*models.Article, error)
	UpdateArticleTitle(ctx context.Context, id int64, title string) (*models.Article, error)
	DeleteArticle(ctx context.Context, id int64) (*models.Article, error)
}

// Options tunes the connection pool and the schema created by Initialize.
type Options struct {
	MaxOpenConns int
	MaxIdleConns int
	UniqueTitles bool
}
