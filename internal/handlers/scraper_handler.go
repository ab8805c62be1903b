package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pulsefeed/pulsefeed/internal/interfaces"
)

// ScraperHandler handles manual scrape and maintenance endpoints
type ScraperHandler struct {
	schedulerService interfaces.SchedulerService
	sweeper          interfaces.Sweeper
}

// NewScraperHandler creates a new scraper handler
func NewScraperHandler(schedulerService interfaces.SchedulerService, sweeper interfaces.Sweeper) *ScraperHandler {
	return &ScraperHandler{
		schedulerService: schedulerService,
		sweeper:          sweeper,
	}
}

// TriggerHandler runs the scrape pipeline immediately. The outcome is returned
// synchronously; a failed run maps to 502 with the reported message.
func (h *ScraperHandler) TriggerHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	outcome := h.schedulerService.TriggerNow(r.Context())
	if !outcome.Success {
		WriteJSON(w, http.StatusBadGateway, outcome)
		return
	}

	WriteJSON(w, http.StatusOK, outcome)
}

// CleanupQuotesHandler soft-expires quotes older than the given hours
// (default 24).
func (h *ScraperHandler) CleanupQuotesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	hours := 24
	if v, err := strconv.Atoi(r.URL.Query().Get("hours")); err == nil && v > 0 {
		hours = v
	}

	result, err := h.sweeper.ExpireQuotesOlderThan(r.Context(), time.Duration(hours)*time.Hour)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// CleanupArticlesHandler soft-expires articles older than the given days
// (default 7).
func (h *ScraperHandler) CleanupArticlesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	days := 7
	if v, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil && v > 0 {
		days = v
	}

	result, err := h.sweeper.ExpireArticlesOlderThan(r.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
