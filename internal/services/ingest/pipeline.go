package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pulsefeed/pulsefeed/internal/interfaces"
	"github.com/pulsefeed/pulsefeed/internal/models"
	"github.com/ternarybob/arbor"
)

// QuotePipeline sequences the market source into the coordinator as one
// scrape-and-save operation. Fetch failures become a reported outcome, never a
// raised error; an empty fetch is a reportable condition and save is not
// invoked.
type QuotePipeline struct {
	source      interfaces.QuoteSource
	coordinator *Coordinator
	logger      arbor.ILogger
}

// NewQuotePipeline creates the market-data pipeline.
func NewQuotePipeline(source interfaces.QuoteSource, coordinator *Coordinator, logger arbor.ILogger) *QuotePipeline {
	return &QuotePipeline{
		source:      source,
		coordinator: coordinator,
		logger:      logger,
	}
}

// Run executes one fetch-and-save cycle for market quotes.
func (p *QuotePipeline) Run(ctx context.Context) models.RunOutcome {
	started := time.Now()

	quotes, err := p.source.Fetch(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Quote fetch failed")
		return models.RunOutcome{Success: false, Message: fmt.Sprintf("fetch failed: %v", err)}
	}
	if len(quotes) == 0 {
		p.logger.Warn().Msg("Quote fetch returned no records")
		return models.RunOutcome{Success: false, Message: "no records found"}
	}

	result, err := p.coordinator.SaveQuotes(ctx, quotes)
	if err != nil {
		p.logger.Error().Err(err).Msg("Quote batch save failed")
		return models.RunOutcome{Success: false, Message: fmt.Sprintf("save failed: %v", err)}
	}

	p.logger.Info().
		Dur("duration", time.Since(started)).
		Int("total", result.Total).
		Msg("Quote scrape completed")

	return models.RunOutcome{Success: true, Message: "completed", Result: result}
}

// ArticlePipeline sequences the front-page source into the coordinator.
type ArticlePipeline struct {
	source      interfaces.ArticleSource
	coordinator *Coordinator
	logger      arbor.ILogger
}

// NewArticlePipeline creates the front-page pipeline.
func NewArticlePipeline(source interfaces.ArticleSource, coordinator *Coordinator, logger arbor.ILogger) *ArticlePipeline {
	return &ArticlePipeline{
		source:      source,
		coordinator: coordinator,
		logger:      logger,
	}
}

// Run executes one fetch-and-save cycle for front-page articles.
func (p *ArticlePipeline) Run(ctx context.Context) models.RunOutcome {
	started := time.Now()

	articles, err := p.source.Fetch(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Article fetch failed")
		return models.RunOutcome{Success: false, Message: fmt.Sprintf("fetch failed: %v", err)}
	}
	if len(articles) == 0 {
		p.logger.Warn().Msg("Article fetch returned no records")
		return models.RunOutcome{Success: false, Message: "no records found"}
	}

	result, err := p.coordinator.SaveArticles(ctx, articles)
	if err != nil {
		p.logger.Error().Err(err).Msg("Article batch save failed")
		return models.RunOutcome{Success: false, Message: fmt.Sprintf("save failed: %v", err)}
	}

	p.logger.Info().
		Dur("duration", time.Since(started)).
		Int("total", result.Total).
		Msg("Article scrape completed")

	return models.RunOutcome{Success: true, Message: "completed", Result: result}
}

// MultiOrchestrator runs several pipelines in sequence as one logical scrape,
// merging their counts. The combined run is successful only when every stage
// succeeds; stage messages are joined for reporting.
type MultiOrchestrator struct {
	stages []interfaces.Orchestrator
}

// NewMultiOrchestrator combines pipelines into one orchestrator.
func NewMultiOrchestrator(stages ...interfaces.Orchestrator) *MultiOrchestrator {
	return &MultiOrchestrator{stages: stages}
}

// Run executes each stage in order and aggregates outcomes.
func (m *MultiOrchestrator) Run(ctx context.Context) models.RunOutcome {
	combined := models.RunOutcome{Success: true}
	var messages []string

	for _, stage := range m.stages {
		outcome := stage.Run(ctx)
		if !outcome.Success {
			combined.Success = false
		}
		messages = append(messages, outcome.Message)
		combined.Result.Saved += outcome.Result.Saved
		combined.Result.Updated += outcome.Result.Updated
		combined.Result.Skipped += outcome.Result.Skipped
		combined.Result.Total += outcome.Result.Total
	}

	combined.Message = strings.Join(messages, "; ")
	return combined
}
