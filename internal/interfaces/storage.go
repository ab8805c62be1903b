package interfaces

import (
	"context"
	"time"

	"github.com/pulsefeed/pulsefeed/internal/models"
)

// ListOptions controls pagination, sorting, and filtering for list queries
type ListOptions struct {
	Limit      int
	Offset     int
	SortBy     string // Field name; storage falls back to captured_at when empty
	Descending bool
	Search     string // Substring match on symbol/name or title
	ActiveOnly bool
}

// QuoteStorage persists market quote records
type QuoteStorage interface {
	// FindRecent returns the newest active quote for symbol captured at or after
	// since, or nil when no such record exists.
	FindRecent(ctx context.Context, symbol string, since time.Time) (*models.Quote, error)

	// Save upserts a quote by its storage key
	Save(ctx context.Context, quote *models.Quote) error

	// ExpireOlderThan marks active quotes captured before cutoff as inactive in
	// one bulk update and returns the number of records modified
	ExpireOlderThan(ctx context.Context, cutoff time.Time) (int, error)

	List(ctx context.Context, opts *ListOptions) ([]*models.Quote, error)
	Count(ctx context.Context, activeOnly bool) (int, error)
	Stats(ctx context.Context) (*models.QuoteStats, error)
}

// ArticleStorage persists scraped article records
type ArticleStorage interface {
	// FindByLink returns the newest stored article with the given link, or nil
	// when none exists. Link identity is permanent, not time-windowed.
	FindByLink(ctx context.Context, link string) (*models.Article, error)

	// Save upserts an article by its storage key
	Save(ctx context.Context, article *models.Article) error

	// ExpireOlderThan marks active articles captured before cutoff as inactive in
	// one bulk update and returns the number of records modified
	ExpireOlderThan(ctx context.Context, cutoff time.Time) (int, error)

	List(ctx context.Context, opts *ListOptions) ([]*models.Article, error)
	Count(ctx context.Context, activeOnly bool) (int, error)
	Stats(ctx context.Context) (*models.ArticleStats, error)
}

// StorageManager provides access to all storage services
type StorageManager interface {
	QuoteStorage() QuoteStorage
	ArticleStorage() ArticleStorage
	Close() error
}
