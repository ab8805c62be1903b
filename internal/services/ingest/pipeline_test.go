package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/pulsefeed/pulsefeed/internal/models"
)

type stubQuoteSource struct {
	quotes []*models.Quote
	err    error
}

func (s *stubQuoteSource) Fetch(ctx context.Context) ([]*models.Quote, error) {
	return s.quotes, s.err
}

type stubArticleSource struct {
	articles []*models.Article
	err      error
}

func (s *stubArticleSource) Fetch(ctx context.Context) ([]*models.Article, error) {
	return s.articles, s.err
}

type stubOrchestrator struct {
	outcome models.RunOutcome
	calls   int
}

func (s *stubOrchestrator) Run(ctx context.Context) models.RunOutcome {
	s.calls++
	return s.outcome
}

func TestQuotePipelineRun(t *testing.T) {
	manager := newFakeStorageManager()
	coordinator := NewCoordinator(manager, 5*time.Minute, arbor.NewLogger())
	source := &stubQuoteSource{quotes: []*models.Quote{
		quoteRecord("BTC", 100),
		quoteRecord("ETH", 50),
	}}

	pipeline := NewQuotePipeline(source, coordinator, arbor.NewLogger())
	outcome := pipeline.Run(context.Background())

	assert.True(t, outcome.Success)
	assert.Equal(t, "completed", outcome.Message)
	assert.Equal(t, models.ScrapeResult{Saved: 2, Total: 2}, outcome.Result)
}

func TestQuotePipelineFetchErrorBecomesOutcome(t *testing.T) {
	manager := newFakeStorageManager()
	coordinator := NewCoordinator(manager, 5*time.Minute, arbor.NewLogger())
	source := &stubQuoteSource{err: errors.New("connection reset")}

	pipeline := NewQuotePipeline(source, coordinator, arbor.NewLogger())
	outcome := pipeline.Run(context.Background())

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Message, "fetch failed")
	assert.Zero(t, manager.quotes.saveCalls)
}

func TestQuotePipelineEmptyFetchSkipsSave(t *testing.T) {
	manager := newFakeStorageManager()
	coordinator := NewCoordinator(manager, 5*time.Minute, arbor.NewLogger())
	source := &stubQuoteSource{quotes: []*models.Quote{}}

	pipeline := NewQuotePipeline(source, coordinator, arbor.NewLogger())
	outcome := pipeline.Run(context.Background())

	assert.False(t, outcome.Success)
	assert.Equal(t, "no records found", outcome.Message)
	assert.Zero(t, manager.quotes.saveCalls, "save is not invoked for an empty fetch")
}

func TestArticlePipelineRun(t *testing.T) {
	manager := newFakeStorageManager()
	coordinator := NewCoordinator(manager, 5*time.Minute, arbor.NewLogger())
	source := &stubArticleSource{articles: []*models.Article{
		{Title: "A", Link: "https://example.com/a", CapturedAt: time.Now()},
	}}

	pipeline := NewArticlePipeline(source, coordinator, arbor.NewLogger())
	outcome := pipeline.Run(context.Background())

	assert.True(t, outcome.Success)
	assert.Equal(t, models.ScrapeResult{Saved: 1, Total: 1}, outcome.Result)
}

func TestArticlePipelineFetchErrorBecomesOutcome(t *testing.T) {
	manager := newFakeStorageManager()
	coordinator := NewCoordinator(manager, 5*time.Minute, arbor.NewLogger())
	source := &stubArticleSource{err: errors.New("status 503")}

	pipeline := NewArticlePipeline(source, coordinator, arbor.NewLogger())
	outcome := pipeline.Run(context.Background())

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Message, "fetch failed")
}

func TestMultiOrchestratorMergesOutcomes(t *testing.T) {
	first := &stubOrchestrator{outcome: models.RunOutcome{
		Success: true,
		Message: "completed",
		Result:  models.ScrapeResult{Saved: 3, Updated: 1, Total: 4},
	}}
	second := &stubOrchestrator{outcome: models.RunOutcome{
		Success: true,
		Message: "completed",
		Result:  models.ScrapeResult{Saved: 2, Skipped: 1, Total: 3},
	}}

	combined := NewMultiOrchestrator(first, second).Run(context.Background())

	assert.True(t, combined.Success)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, models.ScrapeResult{Saved: 5, Updated: 1, Skipped: 1, Total: 7}, combined.Result)
	assert.Equal(t, "completed; completed", combined.Message)
}

func TestMultiOrchestratorFailedStageFailsRun(t *testing.T) {
	ok := &stubOrchestrator{outcome: models.RunOutcome{
		Success: true,
		Message: "completed",
		Result:  models.ScrapeResult{Saved: 1, Total: 1},
	}}
	failed := &stubOrchestrator{outcome: models.RunOutcome{
		Success: false,
		Message: "fetch failed: status 502",
	}}

	combined := NewMultiOrchestrator(ok, failed).Run(context.Background())

	assert.False(t, combined.Success)
	assert.Equal(t, 1, failed.calls, "later stages still run after a failure")
	assert.Contains(t, combined.Message, "fetch failed")
	assert.Equal(t, models.ScrapeResult{Saved: 1, Total: 1}, combined.Result)
}

func TestSweeperExpiresByAge(t *testing.T) {
	manager := newFakeStorageManager()
	now := time.Now()
	manager.quotes.records["q1"] = &models.Quote{ID: "q1", Symbol: "BTC", CapturedAt: now.Add(-48 * time.Hour), IsActive: true}
	manager.quotes.records["q2"] = &models.Quote{ID: "q2", Symbol: "ETH", CapturedAt: now, IsActive: true}
	manager.articles.records["a1"] = &models.Article{ID: "a1", Link: "https://example.com/a", CapturedAt: now.Add(-10 * 24 * time.Hour), IsActive: true}

	sweeper := NewSweeper(manager, arbor.NewLogger())
	ctx := context.Background()

	quotesResult, err := sweeper.ExpireQuotesOlderThan(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, quotesResult.ModifiedCount)
	assert.False(t, manager.quotes.records["q1"].IsActive)
	assert.True(t, manager.quotes.records["q2"].IsActive)

	articlesResult, err := sweeper.ExpireArticlesOlderThan(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, articlesResult.ModifiedCount)
	assert.False(t, manager.articles.records["a1"].IsActive)
}
