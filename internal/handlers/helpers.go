package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pulsefeed/pulsefeed/internal/interfaces"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// ParseListOptions extracts pagination, sort, and search parameters from the
// request query string. Defaults: limit 50 (capped at 200), newest first,
// active records only unless include_inactive=true.
func ParseListOptions(r *http.Request) *interfaces.ListOptions {
	opts := &interfaces.ListOptions{
		Limit:      50,
		SortBy:     r.URL.Query().Get("sort"),
		Descending: true,
		Search:     r.URL.Query().Get("search"),
		ActiveOnly: true,
	}

	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		opts.Limit = limit
	}
	if opts.Limit > 200 {
		opts.Limit = 200
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && offset > 0 {
		opts.Offset = offset
	}
	if order := r.URL.Query().Get("order"); order == "asc" {
		opts.Descending = false
	}
	if include := r.URL.Query().Get("include_inactive"); include == "true" {
		opts.ActiveOnly = false
	}

	return opts
}
