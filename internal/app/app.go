package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/pulsefeed/pulsefeed/internal/common"
	"github.com/pulsefeed/pulsefeed/internal/handlers"
	"github.com/pulsefeed/pulsefeed/internal/interfaces"
	"github.com/pulsefeed/pulsefeed/internal/services/ingest"
	"github.com/pulsefeed/pulsefeed/internal/services/scheduler"
	"github.com/pulsefeed/pulsefeed/internal/sources"
	badgerstorage "github.com/pulsefeed/pulsefeed/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager

	// Ingestion pipeline
	Coordinator  *ingest.Coordinator
	Sweeper      *ingest.Sweeper
	Orchestrator interfaces.Orchestrator

	// Scheduler
	SchedulerService interfaces.SchedulerService

	// HTTP handlers
	QuoteHandler     *handlers.QuoteHandler
	ArticleHandler   *handlers.ArticleHandler
	ScraperHandler   *handlers.ScraperHandler
	SchedulerHandler *handlers.SchedulerHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	storageManager, err := badgerstorage.NewManager(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.StorageManager = storageManager

	// Sources
	marketClient := sources.NewMarketClient(cfg.Sources.Markets, logger)
	frontPageClient := sources.NewFrontPageClient(cfg.Sources.FrontPage, logger)

	// Ingestion pipeline
	app.Coordinator = ingest.NewCoordinator(storageManager, cfg.FreshnessWindow(), logger)
	app.Sweeper = ingest.NewSweeper(storageManager, logger)
	app.Orchestrator = ingest.NewMultiOrchestrator(
		ingest.NewQuotePipeline(marketClient, app.Coordinator, logger),
		ingest.NewArticlePipeline(frontPageClient, app.Coordinator, logger),
	)

	// Scheduler
	app.SchedulerService = scheduler.NewService(app.Orchestrator, app.Sweeper, cfg.Scheduler, cfg.Retention, logger)

	// HTTP handlers
	app.QuoteHandler = handlers.NewQuoteHandler(storageManager.QuoteStorage())
	app.ArticleHandler = handlers.NewArticleHandler(storageManager.ArticleStorage())
	app.ScraperHandler = handlers.NewScraperHandler(app.SchedulerService, app.Sweeper)
	app.SchedulerHandler = handlers.NewSchedulerHandler(app.SchedulerService)

	logger.Info().Msg("Application initialized")

	return app, nil
}

// StartScheduler activates the recurring jobs when enabled in config
func (a *App) StartScheduler() error {
	if !a.Config.Scheduler.Enabled {
		a.Logger.Info().Msg("Scheduler disabled in config")
		return nil
	}
	return a.SchedulerService.Start(a.Config.Scheduler.ScrapeSchedule)
}

// Close shuts down components in dependency order: scheduler first so no new
// runs start, then storage.
func (a *App) Close(ctx context.Context) error {
	a.SchedulerService.Stop()

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}

	a.Logger.Info().Msg("Application closed")
	return nil
}
