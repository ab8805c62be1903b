package handlers

import (
	"net/http"

	"github.com/pulsefeed/pulsefeed/internal/interfaces"
)

// QuoteHandler handles quote query endpoints
type QuoteHandler struct {
	storage interfaces.QuoteStorage
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(storage interfaces.QuoteStorage) *QuoteHandler {
	return &QuoteHandler{storage: storage}
}

// ListHandler returns stored quotes with pagination, sorting, and search
func (h *QuoteHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	opts := ParseListOptions(r)
	quotes, err := h.storage.List(r.Context(), opts)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	count, err := h.storage.Count(r.Context(), opts.ActiveOnly)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"quotes": quotes,
		"count":  count,
		"limit":  opts.Limit,
		"offset": opts.Offset,
	})
}

// StatsHandler returns aggregate statistics for stored quotes
func (h *QuoteHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	stats, err := h.storage.Stats(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}
