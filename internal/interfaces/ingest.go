package interfaces

import (
	"context"
	"time"

	"github.com/pulsefeed/pulsefeed/internal/models"
)

// Orchestrator runs one fetch-and-save cycle. Fetch failures and empty fetches
// are converted to a Success=false outcome, never raised.
type Orchestrator interface {
	Run(ctx context.Context) models.RunOutcome
}

// Sweeper soft-expires stale records
type Sweeper interface {
	ExpireQuotesOlderThan(ctx context.Context, age time.Duration) (models.ExpireResult, error)
	ExpireArticlesOlderThan(ctx context.Context, age time.Duration) (models.ExpireResult, error)
}
