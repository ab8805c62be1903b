// Package ingest implements the scrape-and-save pipeline: fetch, upsert with
// dedup, and soft-expiry of stale records.
package ingest

import (
	"context"
	"time"

	"github.com/pulsefeed/pulsefeed/internal/interfaces"
	"github.com/pulsefeed/pulsefeed/internal/models"
	"github.com/ternarybob/arbor"
)

// Coordinator decides create vs. update for each normalized record and tallies
// outcomes. Records are processed strictly in fetch order; an error on one
// record is counted as skipped and never aborts the batch.
//
// Two identity policies apply deliberately: quotes match on symbol inside the
// freshness window (a repeat observation outside the window is a new entry),
// articles match on link for all time.
type Coordinator struct {
	quotes   interfaces.QuoteStorage
	articles interfaces.ArticleStorage
	window   time.Duration
	logger   arbor.ILogger
}

// NewCoordinator creates an upsert coordinator with the given freshness window.
func NewCoordinator(storage interfaces.StorageManager, window time.Duration, logger arbor.ILogger) *Coordinator {
	return &Coordinator{
		quotes:   storage.QuoteStorage(),
		articles: storage.ArticleStorage(),
		window:   window,
		logger:   logger,
	}
}

// SaveQuotes upserts quotes sequentially. A quote whose symbol was already
// captured inside the freshness window overwrites that entry (identity and
// creation time preserved); otherwise a new active entry is inserted.
func (c *Coordinator) SaveQuotes(ctx context.Context, quotes []*models.Quote) (models.ScrapeResult, error) {
	result := models.ScrapeResult{Total: len(quotes)}
	since := time.Now().Add(-c.window)

	for _, quote := range quotes {
		existing, err := c.quotes.FindRecent(ctx, quote.Symbol, since)
		if err != nil {
			c.logger.Warn().Err(err).Str("symbol", quote.Symbol).Msg("Quote lookup failed, skipping record")
			result.Skipped++
			continue
		}

		if existing != nil {
			quote.ID = existing.ID
			quote.CreatedAt = existing.CreatedAt
		} else {
			quote.ID = models.NewQuoteID()
		}
		quote.IsActive = true

		if err := c.quotes.Save(ctx, quote); err != nil {
			c.logger.Warn().Err(err).Str("symbol", quote.Symbol).Msg("Quote save failed, skipping record")
			result.Skipped++
			continue
		}

		if existing != nil {
			result.Updated++
		} else {
			result.Saved++
		}
	}

	c.logger.Info().
		Int("saved", result.Saved).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Int("total", result.Total).
		Msg("Quote batch persisted")

	return result, nil
}

// SaveArticles upserts articles sequentially. An article whose link is already
// stored updates that entry regardless of when it was captured.
func (c *Coordinator) SaveArticles(ctx context.Context, articles []*models.Article) (models.ScrapeResult, error) {
	result := models.ScrapeResult{Total: len(articles)}

	for _, article := range articles {
		existing, err := c.articles.FindByLink(ctx, article.Link)
		if err != nil {
			c.logger.Warn().Err(err).Str("link", article.Link).Msg("Article lookup failed, skipping record")
			result.Skipped++
			continue
		}

		if existing != nil {
			article.ID = existing.ID
			article.CreatedAt = existing.CreatedAt
		} else {
			article.ID = models.NewArticleID()
		}
		article.IsActive = true

		if err := c.articles.Save(ctx, article); err != nil {
			c.logger.Warn().Err(err).Str("link", article.Link).Msg("Article save failed, skipping record")
			result.Skipped++
			continue
		}

		if existing != nil {
			result.Updated++
		} else {
			result.Saved++
		}
	}

	c.logger.Info().
		Int("saved", result.Saved).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Int("total", result.Total).
		Msg("Article batch persisted")

	return result, nil
}
