package badger

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pulsefeed/pulsefeed/internal/interfaces"
	"github.com/pulsefeed/pulsefeed/internal/models"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// QuoteStorage implements the QuoteStorage interface for Badger
type QuoteStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewQuoteStorage creates a new QuoteStorage instance
func NewQuoteStorage(db *BadgerDB, logger arbor.ILogger) interfaces.QuoteStorage {
	return &QuoteStorage{
		db:     db,
		logger: logger,
	}
}

// FindRecent returns the newest active quote for symbol captured at or after
// since. Returns nil without error when no matching record exists.
func (s *QuoteStorage) FindRecent(ctx context.Context, symbol string, since time.Time) (*models.Quote, error) {
	var quotes []models.Quote
	query := badgerhold.Where("Symbol").Eq(symbol).
		And("IsActive").Eq(true).
		And("CapturedAt").Ge(since).
		SortBy("CapturedAt").Reverse().Limit(1)

	if err := s.db.Store().Find(&quotes, query); err != nil {
		return nil, fmt.Errorf("failed to find recent quote: %w", err)
	}
	if len(quotes) == 0 {
		return nil, nil
	}
	return &quotes[0], nil
}

// Save upserts a quote by its storage key, maintaining lifecycle timestamps
func (s *QuoteStorage) Save(ctx context.Context, quote *models.Quote) error {
	if quote.ID == "" {
		return fmt.Errorf("quote ID is required")
	}

	now := time.Now()
	if quote.CreatedAt.IsZero() {
		quote.CreatedAt = now
	}
	quote.UpdatedAt = now

	if err := s.db.Store().Upsert(quote.ID, quote); err != nil {
		return fmt.Errorf("failed to save quote: %w", err)
	}
	return nil
}

// ExpireOlderThan marks active quotes captured before cutoff as inactive in one
// bulk update. Already-inactive records are excluded, so a repeat sweep with no
// new records modifies nothing.
func (s *QuoteStorage) ExpireOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	modified := 0
	query := badgerhold.Where("IsActive").Eq(true).And("CapturedAt").Lt(cutoff)

	err := s.db.Store().UpdateMatching(&models.Quote{}, query, func(record interface{}) error {
		quote, ok := record.(*models.Quote)
		if !ok {
			return fmt.Errorf("unexpected record type %T", record)
		}
		quote.IsActive = false
		quote.UpdatedAt = time.Now()
		modified++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to expire quotes: %w", err)
	}

	return modified, nil
}

// List returns quotes with pagination, sorting, and optional symbol/name search
func (s *QuoteStorage) List(ctx context.Context, opts *interfaces.ListOptions) ([]*models.Quote, error) {
	query := quoteListQuery(opts)

	if opts != nil {
		sortField := quoteSortField(opts.SortBy)
		query = query.SortBy(sortField)
		if opts.Descending {
			query = query.Reverse()
		}
		if opts.Limit > 0 {
			query = query.Limit(opts.Limit)
		}
		if opts.Offset > 0 {
			query = query.Skip(opts.Offset)
		}
	}

	var quotes []models.Quote
	if err := s.db.Store().Find(&quotes, query); err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}

	result := make([]*models.Quote, len(quotes))
	for i := range quotes {
		result[i] = &quotes[i]
	}
	return result, nil
}

// Count returns the number of stored quotes, optionally active only
func (s *QuoteStorage) Count(ctx context.Context, activeOnly bool) (int, error) {
	var query *badgerhold.Query
	if activeOnly {
		query = badgerhold.Where("IsActive").Eq(true)
	}
	count, err := s.db.Store().Count(&models.Quote{}, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count quotes: %w", err)
	}
	return int(count), nil
}

// Stats summarizes the stored quote set
func (s *QuoteStorage) Stats(ctx context.Context) (*models.QuoteStats, error) {
	total, err := s.Count(ctx, false)
	if err != nil {
		return nil, err
	}

	stats := &models.QuoteStats{Total: total}

	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	todayCount, err := s.db.Store().Count(&models.Quote{}, badgerhold.Where("CapturedAt").Ge(startOfDay))
	if err != nil {
		return nil, fmt.Errorf("failed to count today's quotes: %w", err)
	}
	stats.TodayCount = int(todayCount)

	var latest []models.Quote
	err = s.db.Store().Find(&latest, badgerhold.Where("ID").Ne("").SortBy("CapturedAt").Reverse().Limit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to find latest quote: %w", err)
	}
	if len(latest) > 0 {
		stats.LastCapturedAt = &latest[0].CapturedAt
	}

	// Top = best-ranked active quote (rank 0 means the source had no rank)
	var top []models.Quote
	err = s.db.Store().Find(&top, badgerhold.Where("IsActive").Eq(true).And("Rank").Ge(1).SortBy("Rank").Limit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to find top quote: %w", err)
	}
	if len(top) > 0 {
		stats.Top = &top[0]
	}

	return stats, nil
}

// quoteListQuery builds the filter portion of a list query. With a search term
// the query is (Symbol ~ term OR Name ~ term), each branch carrying the
// active-only criterion.
func quoteListQuery(opts *interfaces.ListOptions) *badgerhold.Query {
	if opts == nil {
		return badgerhold.Where("ID").Ne("")
	}

	if opts.Search != "" {
		re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(opts.Search))
		symbolBranch := badgerhold.Where("Symbol").RegExp(re)
		nameBranch := badgerhold.Where("Name").RegExp(re)
		if opts.ActiveOnly {
			symbolBranch = symbolBranch.And("IsActive").Eq(true)
			nameBranch = nameBranch.And("IsActive").Eq(true)
		}
		return symbolBranch.Or(nameBranch)
	}

	if opts.ActiveOnly {
		return badgerhold.Where("IsActive").Eq(true)
	}
	return badgerhold.Where("ID").Ne("")
}

// quoteSortField maps API sort names onto struct fields
func quoteSortField(name string) string {
	switch strings.ToLower(name) {
	case "symbol":
		return "Symbol"
	case "name":
		return "Name"
	case "price":
		return "Price"
	case "market_cap":
		return "MarketCap"
	case "rank":
		return "Rank"
	default:
		return "CapturedAt"
	}
}
