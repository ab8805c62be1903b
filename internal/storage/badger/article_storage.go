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

// ArticleStorage implements the ArticleStorage interface for Badger
type ArticleStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewArticleStorage creates a new ArticleStorage instance
func NewArticleStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ArticleStorage {
	return &ArticleStorage{
		db:     db,
		logger: logger,
	}
}

// FindByLink returns the newest stored article with the given link. Link
// identity is permanent: no time window applies. Returns nil without error
// when no matching record exists.
func (s *ArticleStorage) FindByLink(ctx context.Context, link string) (*models.Article, error) {
	var articles []models.Article
	query := badgerhold.Where("Link").Eq(link).SortBy("CapturedAt").Reverse().Limit(1)

	if err := s.db.Store().Find(&articles, query); err != nil {
		return nil, fmt.Errorf("failed to find article by link: %w", err)
	}
	if len(articles) == 0 {
		return nil, nil
	}
	return &articles[0], nil
}

// Save upserts an article by its storage key, maintaining lifecycle timestamps
func (s *ArticleStorage) Save(ctx context.Context, article *models.Article) error {
	if article.ID == "" {
		return fmt.Errorf("article ID is required")
	}

	now := time.Now()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	article.UpdatedAt = now

	if err := s.db.Store().Upsert(article.ID, article); err != nil {
		return fmt.Errorf("failed to save article: %w", err)
	}
	return nil
}

// ExpireOlderThan marks active articles captured before cutoff as inactive in
// one bulk update. Idempotent across repeat sweeps.
func (s *ArticleStorage) ExpireOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	modified := 0
	query := badgerhold.Where("IsActive").Eq(true).And("CapturedAt").Lt(cutoff)

	err := s.db.Store().UpdateMatching(&models.Article{}, query, func(record interface{}) error {
		article, ok := record.(*models.Article)
		if !ok {
			return fmt.Errorf("unexpected record type %T", record)
		}
		article.IsActive = false
		article.UpdatedAt = time.Now()
		modified++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to expire articles: %w", err)
	}

	return modified, nil
}

// List returns articles with pagination, sorting, and optional title search
func (s *ArticleStorage) List(ctx context.Context, opts *interfaces.ListOptions) ([]*models.Article, error) {
	query := articleListQuery(opts)

	if opts != nil {
		sortField := articleSortField(opts.SortBy)
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

	var articles []models.Article
	if err := s.db.Store().Find(&articles, query); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	result := make([]*models.Article, len(articles))
	for i := range articles {
		result[i] = &articles[i]
	}
	return result, nil
}

// Count returns the number of stored articles, optionally active only
func (s *ArticleStorage) Count(ctx context.Context, activeOnly bool) (int, error) {
	var query *badgerhold.Query
	if activeOnly {
		query = badgerhold.Where("IsActive").Eq(true)
	}
	count, err := s.db.Store().Count(&models.Article{}, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return int(count), nil
}

// Stats summarizes the stored article set
func (s *ArticleStorage) Stats(ctx context.Context) (*models.ArticleStats, error) {
	total, err := s.Count(ctx, false)
	if err != nil {
		return nil, err
	}

	stats := &models.ArticleStats{Total: total}

	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	todayCount, err := s.db.Store().Count(&models.Article{}, badgerhold.Where("CapturedAt").Ge(startOfDay))
	if err != nil {
		return nil, fmt.Errorf("failed to count today's articles: %w", err)
	}
	stats.TodayCount = int(todayCount)

	var latest []models.Article
	err = s.db.Store().Find(&latest, badgerhold.Where("ID").Ne("").SortBy("CapturedAt").Reverse().Limit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to find latest article: %w", err)
	}
	if len(latest) > 0 {
		stats.LastCapturedAt = &latest[0].CapturedAt
	}

	// Featured = highest-scoring active article captured today
	var featured []models.Article
	err = s.db.Store().Find(&featured, badgerhold.Where("IsActive").Eq(true).
		And("CapturedAt").Ge(startOfDay).
		SortBy("Score").Reverse().Limit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to find featured article: %w", err)
	}
	if len(featured) > 0 {
		stats.Featured = &featured[0]
	}

	return stats, nil
}

// articleListQuery builds the filter portion of a list query
func articleListQuery(opts *interfaces.ListOptions) *badgerhold.Query {
	if opts == nil {
		return badgerhold.Where("ID").Ne("")
	}

	if opts.Search != "" {
		re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(opts.Search))
		query := badgerhold.Where("Title").RegExp(re)
		if opts.ActiveOnly {
			query = query.And("IsActive").Eq(true)
		}
		return query
	}

	if opts.ActiveOnly {
		return badgerhold.Where("IsActive").Eq(true)
	}
	return badgerhold.Where("ID").Ne("")
}

// articleSortField maps API sort names onto struct fields
func articleSortField(name string) string {
	switch strings.ToLower(name) {
	case "title":
		return "Title"
	case "score":
		return "Score"
	case "comments":
		return "Comments"
	case "position":
		return "Position"
	default:
		return "CapturedAt"
	}
}
