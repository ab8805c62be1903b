package interfaces

import (
	"context"

	"github.com/pulsefeed/pulsefeed/internal/models"
)

// SchedulerStatus describes the scheduler and its registered jobs
type SchedulerStatus struct {
	IsRunning bool     `json:"is_running"`
	Jobs      []string `json:"jobs"`
	JobCount  int      `json:"job_count"`
}

// SchedulerService owns the recurring scrape and cleanup jobs.
//
// Scheduled firings swallow errors at the job boundary (logged, never fatal to
// the schedule); TriggerNow is the direct path that propagates its outcome to
// the caller and works whether or not the scheduler is running.
type SchedulerService interface {
	// Start registers the scrape job on the given cron spec and the cleanup job
	// on the configured daily spec, then activates both. Starting while already
	// running is a logged no-op.
	Start(spec string) error

	// Stop halts and discards all registered jobs. Stopping while stopped is a
	// no-op. In-flight runs are not cancelled; only future firings are.
	Stop()

	IsRunning() bool
	Status() SchedulerStatus

	// Reschedule atomically replaces the scrape job with a new recurrence spec,
	// leaving the cleanup job untouched. No-op when the scheduler is stopped.
	Reschedule(spec string) error

	// TriggerNow runs the orchestrator immediately, independent of schedule
	// phase, and returns its outcome synchronously.
	TriggerNow(ctx context.Context) models.RunOutcome
}
