package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Quote represents one observation of a market asset. Repeat observations of the
// same symbol inside the freshness window update the existing entry; older
// observations are retained with IsActive=false for the audit trail.
type Quote struct {
	ID         string    `json:"id" badgerhold:"Key"`
	Symbol     string    `json:"symbol" badgerhold:"index"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	MarketCap  float64   `json:"market_cap"`
	Volume24h  float64   `json:"volume_24h"`
	Change24h  float64   `json:"change_24h"`
	Rank       int       `json:"rank"`
	CapturedAt time.Time `json:"captured_at" badgerhold:"index"`
	IsActive   bool      `json:"is_active" badgerhold:"index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewQuoteID generates a storage key for a quote record.
func NewQuoteID() string {
	return fmt.Sprintf("quote_%s", uuid.New().String())
}

// QuoteStats summarizes the stored quote set for the stats endpoint.
type QuoteStats struct {
	Total          int        `json:"total"`
	TodayCount     int        `json:"today_count"`
	LastCapturedAt *time.Time `json:"last_captured_at,omitempty"`
	Top            *Quote     `json:"top,omitempty"`
}
