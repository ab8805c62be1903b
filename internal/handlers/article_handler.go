package handlers

import (
	"net/http"

	"github.com/pulsefeed/pulsefeed/internal/interfaces"
)

// ArticleHandler handles article query endpoints
type ArticleHandler struct {
	storage interfaces.ArticleStorage
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(storage interfaces.ArticleStorage) *ArticleHandler {
	return &ArticleHandler{storage: storage}
}

// ListHandler returns stored articles with pagination, sorting, and search
func (h *ArticleHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	opts := ParseListOptions(r)
	articles, err := h.storage.List(r.Context(), opts)
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
		"articles": articles,
		"count":    count,
		"limit":    opts.Limit,
		"offset":   opts.Offset,
	})
}

// StatsHandler returns aggregate statistics for stored articles
func (h *ArticleHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
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
