package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pulsefeed/pulsefeed/internal/interfaces"
)

// SchedulerHandler handles scheduler control endpoints
type SchedulerHandler struct {
	schedulerService interfaces.SchedulerService
}

// NewSchedulerHandler creates a new scheduler handler
func NewSchedulerHandler(schedulerService interfaces.SchedulerService) *SchedulerHandler {
	return &SchedulerHandler{schedulerService: schedulerService}
}

// StatusHandler returns the scheduler state and registered job names
func (h *SchedulerHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, h.schedulerService.Status())
}

// scheduleRequest carries a cron expression for start/reschedule
type scheduleRequest struct {
	Schedule string `json:"schedule"`
}

// StartHandler starts the scheduler, optionally with a custom scrape schedule
func (h *SchedulerHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req scheduleRequest
	if r.Body != nil {
		// Empty body means "use the configured schedule"
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.schedulerService.Start(req.Schedule); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, h.schedulerService.Status())
}

// StopHandler stops the scheduler and discards its jobs
func (h *SchedulerHandler) StopHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	h.schedulerService.Stop()
	WriteJSON(w, http.StatusOK, h.schedulerService.Status())
}

// UpdateScheduleHandler replaces the scrape job's recurrence spec
func (h *SchedulerHandler) UpdateScheduleHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Schedule == "" {
		WriteError(w, http.StatusBadRequest, "schedule is required")
		return
	}

	if err := h.schedulerService.Reschedule(req.Schedule); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, h.schedulerService.Status())
}
