package ingest

import (
	"context"
	"time"

	"github.com/pulsefeed/pulsefeed/internal/interfaces"
	"github.com/pulsefeed/pulsefeed/internal/models"
	"github.com/ternarybob/arbor"
)

// Sweeper soft-expires records older than a retention threshold. Records are
// flagged inactive, never deleted, preserving the audit trail.
type Sweeper struct {
	quotes   interfaces.QuoteStorage
	articles interfaces.ArticleStorage
	logger   arbor.ILogger
}

// NewSweeper creates a maintenance sweeper over the given storage.
func NewSweeper(storage interfaces.StorageManager, logger arbor.ILogger) *Sweeper {
	return &Sweeper{
		quotes:   storage.QuoteStorage(),
		articles: storage.ArticleStorage(),
		logger:   logger,
	}
}

// ExpireQuotesOlderThan deactivates quotes captured before now-age.
func (s *Sweeper) ExpireQuotesOlderThan(ctx context.Context, age time.Duration) (models.ExpireResult, error) {
	cutoff := time.Now().Add(-age)
	modified, err := s.quotes.ExpireOlderThan(ctx, cutoff)
	if err != nil {
		return models.ExpireResult{}, err
	}

	s.logger.Info().
		Int("modified", modified).
		Str("cutoff", cutoff.UTC().Format(time.RFC3339)).
		Msg("Quote expiry sweep completed")

	return models.ExpireResult{ModifiedCount: modified}, nil
}

// ExpireArticlesOlderThan deactivates articles captured before now-age.
func (s *Sweeper) ExpireArticlesOlderThan(ctx context.Context, age time.Duration) (models.ExpireResult, error) {
	cutoff := time.Now().Add(-age)
	modified, err := s.articles.ExpireOlderThan(ctx, cutoff)
	if err != nil {
		return models.ExpireResult{}, err
	}

	s.logger.Info().
		Int("modified", modified).
		Str("cutoff", cutoff.UTC().Format(time.RFC3339)).
		Msg("Article expiry sweep completed")

	return models.ExpireResult{ModifiedCount: modified}, nil
}
