package server

import (
	"net/http"
)

// setupRoutes registers all API routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Query API
	mux.HandleFunc("/api/quotes", s.app.QuoteHandler.ListHandler)
	mux.HandleFunc("/api/quotes/stats", s.app.QuoteHandler.StatsHandler)
	mux.HandleFunc("/api/articles", s.app.ArticleHandler.ListHandler)
	mux.HandleFunc("/api/articles/stats", s.app.ArticleHandler.StatsHandler)

	// Ingestion controls
	mux.HandleFunc("/api/scrape", s.app.ScraperHandler.TriggerHandler)
	mux.HandleFunc("/api/cleanup/quotes", s.app.ScraperHandler.CleanupQuotesHandler)
	mux.HandleFunc("/api/cleanup/articles", s.app.ScraperHandler.CleanupArticlesHandler)

	// Scheduler controls
	mux.HandleFunc("/api/scheduler/status", s.app.SchedulerHandler.StatusHandler)
	mux.HandleFunc("/api/scheduler/start", s.app.SchedulerHandler.StartHandler)
	mux.HandleFunc("/api/scheduler/stop", s.app.SchedulerHandler.StopHandler)
	mux.HandleFunc("/api/scheduler/schedule", s.app.SchedulerHandler.UpdateScheduleHandler)

	// Health check
	mux.HandleFunc("/health", s.healthHandler)

	return mux
}

// healthHandler reports process liveness
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
