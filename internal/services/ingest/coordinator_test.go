package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/pulsefeed/pulsefeed/internal/interfaces"
	"github.com/pulsefeed/pulsefeed/internal/models"
)

// fakeQuoteStorage keeps quotes in memory keyed by ID and supports per-symbol
// failure injection for lookup and save paths.
type fakeQuoteStorage struct {
	records     map[string]*models.Quote
	failLookup  map[string]bool
	failSave    map[string]bool
	saveCalls   int
	expireCalls int
}

func newFakeQuoteStorage() *fakeQuoteStorage {
	return &fakeQuoteStorage{
		records:    make(map[string]*models.Quote),
		failLookup: make(map[string]bool),
		failSave:   make(map[string]bool),
	}
}

func (f *fakeQuoteStorage) FindRecent(ctx context.Context, symbol string, since time.Time) (*models.Quote, error) {
	if f.failLookup[symbol] {
		return nil, errors.New("lookup failed")
	}
	var newest *models.Quote
	for _, q := range f.records {
		if q.Symbol != symbol || !q.IsActive || q.CapturedAt.Before(since) {
			continue
		}
		if newest == nil || q.CapturedAt.After(newest.CapturedAt) {
			newest = q
		}
	}
	if newest == nil {
		return nil, nil
	}
	copied := *newest
	return &copied, nil
}

func (f *fakeQuoteStorage) Save(ctx context.Context, quote *models.Quote) error {
	if f.failSave[quote.Symbol] {
		return errors.New("save failed")
	}
	f.saveCalls++
	copied := *quote
	f.records[quote.ID] = &copied
	return nil
}

func (f *fakeQuoteStorage) ExpireOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	f.expireCalls++
	modified := 0
	for _, q := range f.records {
		if q.IsActive && q.CapturedAt.Before(cutoff) {
			q.IsActive = false
			modified++
		}
	}
	return modified, nil
}

func (f *fakeQuoteStorage) List(ctx context.Context, opts *interfaces.ListOptions) ([]*models.Quote, error) {
	return nil, nil
}

func (f *fakeQuoteStorage) Count(ctx context.Context, activeOnly bool) (int, error) {
	count := 0
	for _, q := range f.records {
		if !activeOnly || q.IsActive {
			count++
		}
	}
	return count, nil
}

func (f *fakeQuoteStorage) Stats(ctx context.Context) (*models.QuoteStats, error) {
	return &models.QuoteStats{}, nil
}

type fakeArticleStorage struct {
	records  map[string]*models.Article
	failSave map[string]bool
}

func newFakeArticleStorage() *fakeArticleStorage {
	return &fakeArticleStorage{
		records:  make(map[string]*models.Article),
		failSave: make(map[string]bool),
	}
}

func (f *fakeArticleStorage) FindByLink(ctx context.Context, link string) (*models.Article, error) {
	for _, a := range f.records {
		if a.Link == link {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeArticleStorage) Save(ctx context.Context, article *models.Article) error {
	if f.failSave[article.Link] {
		return errors.New("save failed")
	}
	copied := *article
	f.records[article.ID] = &copied
	return nil
}

func (f *fakeArticleStorage) ExpireOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	modified := 0
	for _, a := range f.records {
		if a.IsActive && a.CapturedAt.Before(cutoff) {
			a.IsActive = false
			modified++
		}
	}
	return modified, nil
}

func (f *fakeArticleStorage) List(ctx context.Context, opts *interfaces.ListOptions) ([]*models.Article, error) {
	return nil, nil
}

func (f *fakeArticleStorage) Count(ctx context.Context, activeOnly bool) (int, error) {
	return len(f.records), nil
}

func (f *fakeArticleStorage) Stats(ctx context.Context) (*models.ArticleStats, error) {
	return &models.ArticleStats{}, nil
}

type fakeStorageManager struct {
	quotes   *fakeQuoteStorage
	articles *fakeArticleStorage
}

func newFakeStorageManager() *fakeStorageManager {
	return &fakeStorageManager{
		quotes:   newFakeQuoteStorage(),
		articles: newFakeArticleStorage(),
	}
}

func (f *fakeStorageManager) QuoteStorage() interfaces.QuoteStorage     { return f.quotes }
func (f *fakeStorageManager) ArticleStorage() interfaces.ArticleStorage { return f.articles }
func (f *fakeStorageManager) Close() error                              { return nil }

func quoteRecord(symbol string, price float64) *models.Quote {
	return &models.Quote{
		Symbol:     symbol,
		Name:       symbol,
		Price:      price,
		CapturedAt: time.Now(),
	}
}

func TestSaveQuotesCreatesThenUpdates(t *testing.T) {
	manager := newFakeStorageManager()
	coordinator := NewCoordinator(manager, 5*time.Minute, arbor.NewLogger())
	ctx := context.Background()

	first, err := coordinator.SaveQuotes(ctx, []*models.Quote{quoteRecord("BTC", 100)})
	require.NoError(t, err)
	assert.Equal(t, models.ScrapeResult{Saved: 1, Total: 1}, first)

	second, err := coordinator.SaveQuotes(ctx, []*models.Quote{quoteRecord("BTC", 105)})
	require.NoError(t, err)
	assert.Equal(t, models.ScrapeResult{Updated: 1, Total: 1}, second)

	// Still exactly one record, holding the new price
	require.Len(t, manager.quotes.records, 1)
	for _, q := range manager.quotes.records {
		assert.Equal(t, 105.0, q.Price)
		assert.True(t, q.IsActive)
	}
}

func TestSaveQuotesOutsideWindowCreatesNewEntry(t *testing.T) {
	manager := newFakeStorageManager()
	coordinator := NewCoordinator(manager, 5*time.Minute, arbor.NewLogger())
	ctx := context.Background()

	stale := quoteRecord("BTC", 100)
	stale.CapturedAt = time.Now().Add(-time.Hour)
	_, err := coordinator.SaveQuotes(ctx, []*models.Quote{stale})
	require.NoError(t, err)

	result, err := coordinator.SaveQuotes(ctx, []*models.Quote{quoteRecord("BTC", 105)})
	require.NoError(t, err)
	assert.Equal(t, models.ScrapeResult{Saved: 1, Total: 1}, result)
	assert.Len(t, manager.quotes.records, 2)
}

func TestSaveQuotesDistinctSymbolsAllPersisted(t *testing.T) {
	manager := newFakeStorageManager()
	coordinator := NewCoordinator(manager, 5*time.Minute, arbor.NewLogger())

	batch := []*models.Quote{
		quoteRecord("BTC", 100),
		quoteRecord("ETH", 50),
		quoteRecord("SOL", 20),
	}
	result, err := coordinator.SaveQuotes(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, models.ScrapeResult{Saved: 3, Total: 3}, result)
	assert.Len(t, manager.quotes.records, 3)

	ids := make(map[string]bool)
	for id := range manager.quotes.records {
		ids[id] = true
	}
	assert.Len(t, ids, 3)
}

func TestSaveQuotesFailureIsolated(t *testing.T) {
	manager := newFakeStorageManager()
	manager.quotes.failSave["ETH"] = true
	coordinator := NewCoordinator(manager, 5*time.Minute, arbor.NewLogger())

	batch := []*models.Quote{
		quoteRecord("BTC", 100),
		quoteRecord("ETH", 50),
		quoteRecord("SOL", 20),
	}
	result, err := coordinator.SaveQuotes(context.Background(), batch)
	require.NoError(t, err)

	assert.Equal(t, models.ScrapeResult{Saved: 2, Skipped: 1, Total: 3}, result)
	assert.Len(t, manager.quotes.records, 2)
}

func TestSaveQuotesLookupFailureCountsAsSkipped(t *testing.T) {
	manager := newFakeStorageManager()
	manager.quotes.failLookup["BTC"] = true
	coordinator := NewCoordinator(manager, 5*time.Minute, arbor.NewLogger())

	result, err := coordinator.SaveQuotes(context.Background(), []*models.Quote{quoteRecord("BTC", 100)})
	require.NoError(t, err)

	assert.Equal(t, models.ScrapeResult{Skipped: 1, Total: 1}, result)
	assert.Zero(t, manager.quotes.saveCalls, "a record that fails lookup is not saved")
}

func TestSaveArticlesLinkIdentityIsPermanent(t *testing.T) {
	manager := newFakeStorageManager()
	coordinator := NewCoordinator(manager, 5*time.Minute, arbor.NewLogger())
	ctx := context.Background()

	old := &models.Article{
		Title:      "Show HN: Something",
		Link:       "https://example.com/show",
		Score:      10,
		CapturedAt: time.Now().Add(-30 * 24 * time.Hour),
	}
	first, err := coordinator.SaveArticles(ctx, []*models.Article{old})
	require.NoError(t, err)
	assert.Equal(t, models.ScrapeResult{Saved: 1, Total: 1}, first)

	// A month later the same link still updates the original entry
	repeat := &models.Article{
		Title:      "Show HN: Something",
		Link:       "https://example.com/show",
		Score:      400,
		CapturedAt: time.Now(),
	}
	second, err := coordinator.SaveArticles(ctx, []*models.Article{repeat})
	require.NoError(t, err)
	assert.Equal(t, models.ScrapeResult{Updated: 1, Total: 1}, second)
	require.Len(t, manager.articles.records, 1)
	for _, a := range manager.articles.records {
		assert.Equal(t, 400, a.Score)
	}
}

func TestSaveArticlesFailureIsolated(t *testing.T) {
	manager := newFakeStorageManager()
	manager.articles.failSave["https://example.com/b"] = true
	coordinator := NewCoordinator(manager, 5*time.Minute, arbor.NewLogger())

	batch := []*models.Article{
		{Title: "A", Link: "https://example.com/a", CapturedAt: time.Now()},
		{Title: "B", Link: "https://example.com/b", CapturedAt: time.Now()},
		{Title: "C", Link: "https://example.com/c", CapturedAt: time.Now()},
	}
	result, err := coordinator.SaveArticles(context.Background(), batch)
	require.NoError(t, err)

	assert.Equal(t, models.ScrapeResult{Saved: 2, Skipped: 1, Total: 3}, result)
	assert.Len(t, manager.articles.records, 2)
}
