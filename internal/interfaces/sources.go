package interfaces

import (
	"context"

	"github.com/pulsefeed/pulsefeed/internal/models"
)

// QuoteSource fetches and normalizes market quotes from an external endpoint.
// Records are returned in source order (rank order). A failed request returns a
// FetchError; callers do not retry, the next scheduled tick does.
type QuoteSource interface {
	Fetch(ctx context.Context) ([]*models.Quote, error)
}

// ArticleSource fetches and normalizes front-page articles from an HTML page.
// Records are returned in page order. Individual malformed item blocks are
// skipped, not fatal.
type ArticleSource interface {
	Fetch(ctx context.Context) ([]*models.Article, error)
}
