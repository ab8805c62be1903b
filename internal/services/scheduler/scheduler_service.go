package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/pulsefeed/pulsefeed/internal/common"
	"github.com/pulsefeed/pulsefeed/internal/interfaces"
	"github.com/pulsefeed/pulsefeed/internal/models"
)

// Job names within the scheduler's job set
const (
	JobScrape  = "scrape"
	JobCleanup = "cleanup"
)

// jobEntry represents a registered job. Entries are replaced, not mutated, when
// rescheduled.
type jobEntry struct {
	name     string
	schedule string
	handler  func()
	cronID   cron.EntryID
	inFlight atomic.Bool
	lastRun  *time.Time
}

// Service implements SchedulerService on robfig/cron. All schedules are
// standard five-field expressions evaluated in UTC.
//
// Scheduled firings run through executeJob, which recovers panics and logs
// errors so a failed tick never kills the schedule. TriggerNow bypasses that
// shell and hands the outcome straight to the caller.
type Service struct {
	orchestrator interfaces.Orchestrator
	sweeper      interfaces.Sweeper
	config       common.SchedulerConfig
	retention    common.RetentionConfig
	logger       arbor.ILogger

	mu      sync.Mutex
	cron    *cron.Cron
	jobs    map[string]*jobEntry
	running bool
}

// NewService creates a scheduler owning the scrape and cleanup jobs.
func NewService(orchestrator interfaces.Orchestrator, sweeper interfaces.Sweeper, config common.SchedulerConfig, retention common.RetentionConfig, logger arbor.ILogger) interfaces.SchedulerService {
	return &Service{
		orchestrator: orchestrator,
		sweeper:      sweeper,
		config:       config,
		retention:    retention,
		logger:       logger,
		jobs:         make(map[string]*jobEntry),
	}
}

// Start registers and activates the scrape job on the given spec and the
// cleanup job on the configured daily spec. Starting while running is a
// logged no-op.
func (s *Service) Start(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Info().Msg("Scheduler already running, start ignored")
		return nil
	}

	if spec == "" {
		spec = s.config.ScrapeSchedule
	}
	if err := common.ValidateJobSchedule(spec); err != nil {
		return fmt.Errorf("invalid scrape schedule: %w", err)
	}

	s.cron = cron.New(cron.WithLocation(time.UTC))
	s.jobs = make(map[string]*jobEntry)

	if err := s.registerJob(JobScrape, spec, s.runScrape); err != nil {
		return err
	}
	if err := s.registerJob(JobCleanup, s.config.CleanupSchedule, s.runCleanup); err != nil {
		return err
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("scrape_schedule", spec).
		Str("cleanup_schedule", s.config.CleanupSchedule).
		Msg("Scheduler started")

	return nil
}

// Stop halts and discards all registered jobs. In-flight runs complete on
// their own; only future firings are prevented. Stopping while stopped is a
// no-op.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cron.Stop()
	s.cron = nil
	s.jobs = make(map[string]*jobEntry)
	s.running = false

	s.logger.Info().Msg("Scheduler stopped")
}

// IsRunning returns true if the scheduler is active
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Status returns the scheduler state and registered job names
func (s *Service) Status() interfaces.SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)

	return interfaces.SchedulerStatus{
		IsRunning: s.running,
		Jobs:      names,
		JobCount:  len(names),
	}
}

// Reschedule atomically replaces the scrape job under a new spec, leaving the
// cleanup job untouched. No-op when the scheduler is stopped.
func (s *Service) Reschedule(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		s.logger.Debug().Msg("Scheduler not running, reschedule ignored")
		return nil
	}

	if err := common.ValidateJobSchedule(spec); err != nil {
		return fmt.Errorf("invalid scrape schedule: %w", err)
	}

	old, exists := s.jobs[JobScrape]
	if !exists {
		return fmt.Errorf("job %s not registered", JobScrape)
	}

	s.cron.Remove(old.cronID)
	delete(s.jobs, JobScrape)

	if err := s.registerJob(JobScrape, spec, s.runScrape); err != nil {
		// Restore the previous schedule so the job is not lost
		if restoreErr := s.registerJob(JobScrape, old.schedule, s.runScrape); restoreErr != nil {
			s.logger.Error().Err(restoreErr).Msg("Failed to restore scrape schedule after reschedule failure")
		}
		return err
	}

	s.logger.Info().
		Str("schedule", spec).
		Msg("Scrape job rescheduled")

	return nil
}

// TriggerNow runs the orchestrator immediately and synchronously, independent
// of schedule phase or running state. Unlike scheduled firings, the outcome
// reaches the caller.
func (s *Service) TriggerNow(ctx context.Context) models.RunOutcome {
	s.logger.Info().Msg("Manual scrape trigger requested")
	return s.orchestrator.Run(ctx)
}

// registerJob creates a job entry and binds it to cron. Caller holds s.mu.
func (s *Service) registerJob(name, schedule string, handler func()) error {
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	entry := &jobEntry{
		name:     name,
		schedule: schedule,
		handler:  handler,
	}

	cronID, err := s.cron.AddFunc(schedule, func() {
		s.executeJob(entry)
	})
	if err != nil {
		return fmt.Errorf("failed to add job %s to cron: %w", name, err)
	}

	entry.cronID = cronID
	s.jobs[name] = entry

	s.logger.Info().
		Str("job_name", name).
		Str("schedule", schedule).
		Msg("Job registered")

	return nil
}

// executeJob wraps a scheduled firing with panic recovery and the optional
// overlap guard. Errors never escape: a failed tick is logged and the next
// firing is the retry.
func (s *Service) executeJob(entry *jobEntry) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("job_name", entry.name).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("Panic recovered in job execution")
		}
	}()

	if s.config.OverlapGuard {
		if !entry.inFlight.CompareAndSwap(false, true) {
			s.logger.Warn().
				Str("job_name", entry.name).
				Msg("Previous run still in flight, skipping this firing")
			return
		}
		defer entry.inFlight.Store(false)
	}

	started := time.Now()
	s.logger.Info().
		Str("job_name", entry.name).
		Msg("Job execution started")

	entry.handler()

	completed := time.Now()
	entry.lastRun = &completed

	s.logger.Info().
		Str("job_name", entry.name).
		Dur("duration", time.Since(started)).
		Msg("Job execution completed")
}

// runScrape is the scheduled-path handler for the scrape job
func (s *Service) runScrape() {
	outcome := s.orchestrator.Run(context.Background())
	if !outcome.Success {
		s.logger.Error().
			Str("message", outcome.Message).
			Msg("Scheduled scrape failed")
		return
	}

	s.logger.Info().
		Int("saved", outcome.Result.Saved).
		Int("updated", outcome.Result.Updated).
		Int("skipped", outcome.Result.Skipped).
		Msg("Scheduled scrape completed")
}

// runCleanup is the scheduled-path handler for the cleanup job
func (s *Service) runCleanup() {
	ctx := context.Background()

	quoteAge := time.Duration(s.retention.QuoteHours) * time.Hour
	if result, err := s.sweeper.ExpireQuotesOlderThan(ctx, quoteAge); err != nil {
		s.logger.Error().Err(err).Msg("Quote cleanup failed")
	} else {
		s.logger.Info().Int("modified", result.ModifiedCount).Msg("Quote cleanup completed")
	}

	articleAge := time.Duration(s.retention.ArticleDays) * 24 * time.Hour
	if result, err := s.sweeper.ExpireArticlesOlderThan(ctx, articleAge); err != nil {
		s.logger.Error().Err(err).Msg("Article cleanup failed")
	} else {
		s.logger.Info().Int("modified", result.ModifiedCount).Msg("Article cleanup completed")
	}
}
