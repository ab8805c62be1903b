package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Article represents one scraped front-page item. The link is the identity key:
// an article seen again at any later time updates the stored entry rather than
// creating a duplicate.
type Article struct {
	ID         string    `json:"id" badgerhold:"Key"`
	Link       string    `json:"link" badgerhold:"index"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	Score      int       `json:"score"`
	Comments   int       `json:"comments"`
	Site       string    `json:"site"`
	Position   int       `json:"position"`
	CapturedAt time.Time `json:"captured_at" badgerhold:"index"`
	IsActive   bool      `json:"is_active" badgerhold:"index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewArticleID generates a storage key for an article record.
func NewArticleID() string {
	return fmt.Sprintf("article_%s", uuid.New().String())
}

// ArticleStats summarizes the stored article set for the stats endpoint.
type ArticleStats struct {
	Total          int        `json:"total"`
	TodayCount     int        `json:"today_count"`
	LastCapturedAt *time.Time `json:"last_captured_at,omitempty"`
	Featured       *Article   `json:"featured,omitempty"`
}
