// timesheet/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/adhils04/timesheets/shared/api"
	"github.com/adhils04/timesheets/timesheet/service"
	"github.com/adhils04/timesheets/timesheet/stats"
	"github.com/gorilla/mux"
)

// TimesheetAPIHandlers holds references to the services that handle business logic.
type TimesheetAPIHandlers struct {
	TimesheetService *service.TimesheetService
	MeetingService   *service.MeetingService
	StatsService     *service.StatsService
}

// NewTimesheetAPIHandlers is the constructor for the API handlers.
func NewTimesheetAPIHandlers(ts *service.TimesheetService, ms *service.MeetingService, ss *service.StatsService) *TimesheetAPIHandlers {
	return &TimesheetAPIHandlers{
		TimesheetService: ts,
		MeetingService:   ms,
		StatsService:     ss,
	}
}

// --- Request/Response DTOs (Data Transfer Objects) ---

type ClockInRequest struct {
	Founder string `json:"founder"`
	Task    string `json:"task"`
}

type ClockOutRequest struct {
	Founder string `json:"founder"`
}

// ManualEntryRequest records a same-day session after the fact. Date is a
// "2006-01-02" day key; Start and End are "15:04" wall-clock times.
type ManualEntryRequest struct {
	Founder string `json:"founder"`
	Task    string `json:"task"`
	Date    string `json:"date"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// EditEntryRequest rewrites an entry. A blank Founder keeps the entry's
// current person; naming one reassigns the entry and moves its contribution.
type EditEntryRequest struct {
	Founder string `json:"founder,omitempty"`
	Task    string `json:"task"`
	Date    string `json:"date"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

type SaveAttendanceRequest struct {
	Attendance map[string]bool `json:"attendance"`
}

// --- Handler Methods ---

// ClockInHandler opens a running entry for a founder.
// POST /timesheet/clockin
func (tah *TimesheetAPIHandlers) ClockInHandler(w http.ResponseWriter, r *http.Request) {
	var req ClockInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := context5s(r)
	defer cancel()

	entry, err := tah.TimesheetService.ClockIn(ctx, req.Founder, req.Task)
	if err != nil {
		switch err {
		case service.ErrEmptyFounder, service.ErrEmptyTask:
			api.WriteBadRequest(w, err.Error())
		case service.ErrActiveEntryExists:
			api.WriteConflict(w, fmt.Sprintf("%s already has a running entry", req.Founder))
		default:
			log.Printf("Error clocking in %s: %v", req.Founder, err)
			api.WriteInternalServerError(w, "Failed to clock in")
		}
		return
	}

	api.WriteJSON(w, http.StatusCreated, entry)
}

// ClockOutHandler closes a founder's running entry.
// POST /timesheet/clockout
func (tah *TimesheetAPIHandlers) ClockOutHandler(w http.ResponseWriter, r *http.Request) {
	var req ClockOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := context5s(r)
	defer cancel()

	entry, err := tah.TimesheetService.ClockOut(ctx, req.Founder)
	if err != nil {
		switch err {
		case service.ErrEmptyFounder:
			api.WriteBadRequest(w, err.Error())
		case service.ErrNoActiveEntry:
			api.WriteNotFound(w, fmt.Sprintf("%s has no running entry", req.Founder))
		default:
			log.Printf("Error clocking out %s: %v", req.Founder, err)
			api.WriteInternalServerError(w, "Failed to clock out")
		}
		return
	}

	api.WriteJSON(w, http.StatusOK, entry)
}

// ManualEntryHandler records a completed session after the fact.
// POST /timesheet/manual
func (tah *TimesheetAPIHandlers) ManualEntryHandler(w http.ResponseWriter, r *http.Request) {
	var req ManualEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	start, end, err := parseInterval(req.Date, req.Start, req.End)
	if err != nil {
		api.WriteBadRequest(w, err.Error())
		return
	}

	ctx, cancel := context5s(r)
	defer cancel()

	entry, err := tah.TimesheetService.AddManualEntry(ctx, req.Founder, req.Task, start, end)
	if err != nil {
		switch err {
		case service.ErrEmptyFounder, service.ErrEmptyTask, service.ErrEndBeforeStart:
			api.WriteBadRequest(w, err.Error())
		default:
			log.Printf("Error adding manual entry for %s: %v", req.Founder, err)
			api.WriteInternalServerError(w, "Failed to add manual entry")
		}
		return
	}

	api.WriteJSON(w, http.StatusCreated, entry)
}

// EditEntryHandler rewrites a completed entry's task and times.
// PUT /timesheet/entries/{id}
func (tah *TimesheetAPIHandlers) EditEntryHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		api.WriteBadRequest(w, "Entry ID is required")
		return
	}

	var req EditEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	start, end, err := parseInterval(req.Date, req.Start, req.End)
	if err != nil {
		api.WriteBadRequest(w, err.Error())
		return
	}

	ctx, cancel := context5s(r)
	defer cancel()

	entry, err := tah.TimesheetService.EditEntry(ctx, id, req.Founder, req.Task, start, end)
	if err != nil {
		switch err {
		case service.ErrEmptyTask, service.ErrEndBeforeStart:
			api.WriteBadRequest(w, err.Error())
		case service.ErrEntryNotFound:
			api.WriteNotFound(w, fmt.Sprintf("Time entry %s not found", id))
		case service.ErrEntryRunning:
			api.WriteConflict(w, "Cannot edit a running entry; clock out first")
		default:
			log.Printf("Error editing entry %s: %v", id, err)
			api.WriteInternalServerError(w, "Failed to edit entry")
		}
		return
	}

	api.WriteJSON(w, http.StatusOK, entry)
}

// DeleteEntryHandler removes an entry and reverses its contribution.
// DELETE /timesheet/entries/{id}
func (tah *TimesheetAPIHandlers) DeleteEntryHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		api.WriteBadRequest(w, "Entry ID is required")
		return
	}

	ctx, cancel := context5s(r)
	defer cancel()

	if err := tah.TimesheetService.DeleteEntry(ctx, id); err != nil {
		switch err {
		case service.ErrEntryNotFound:
			api.WriteNotFound(w, fmt.Sprintf("Time entry %s not found", id))
		default:
			log.Printf("Error deleting entry %s: %v", id, err)
			api.WriteInternalServerError(w, "Failed to delete entry")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListEntriesHandler returns the newest entries, optionally filtered.
// GET /timesheet/entries?founder=&limit=
func (tah *TimesheetAPIHandlers) ListEntriesHandler(w http.ResponseWriter, r *http.Request) {
	founder := r.URL.Query().Get("founder")
	limit := int64(50)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			api.WriteBadRequest(w, "Invalid limit")
			return
		}
		limit = parsed
	}

	ctx, cancel := context5s(r)
	defer cancel()

	entries, err := tah.TimesheetService.RecentEntries(ctx, founder, limit)
	if err != nil {
		log.Printf("Error listing entries: %v", err)
		api.WriteInternalServerError(w, "Failed to list entries")
		return
	}

	api.WriteJSON(w, http.StatusOK, entries)
}

// ActiveEntryHandler returns a founder's running entry, or 404 when idle.
// GET /timesheet/active/{founder}
func (tah *TimesheetAPIHandlers) ActiveEntryHandler(w http.ResponseWriter, r *http.Request) {
	founder := mux.Vars(r)["founder"]
	if founder == "" {
		api.WriteBadRequest(w, "Founder name is required")
		return
	}

	ctx, cancel := context5s(r)
	defer cancel()

	entry, err := tah.TimesheetService.ActiveEntry(ctx, founder)
	if err != nil {
		log.Printf("Error checking active entry for %s: %v", founder, err)
		api.WriteInternalServerError(w, "Failed to check active entry")
		return
	}
	if entry == nil {
		api.WriteNotFound(w, fmt.Sprintf("%s has no running entry", founder))
		return
	}

	api.WriteJSON(w, http.StatusOK, entry)
}

// DashboardHandler returns the projected dashboard numbers.
// GET /dashboard?founder=
func (tah *TimesheetAPIHandlers) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	forced := r.URL.Query().Get("founder")

	ctx, cancel := context5s(r)
	defer cancel()

	dash, err := tah.StatsService.Dashboard(ctx, forced)
	if err != nil {
		log.Printf("Error building dashboard (founder=%q): %v", forced, err)
		api.WriteInternalServerError(w, "Failed to build dashboard")
		return
	}

	api.WriteJSON(w, http.StatusOK, dash)
}

// GetMeetingHandler returns a day's attendance padded with the roster.
// GET /meetings/{date}
func (tah *TimesheetAPIHandlers) GetMeetingHandler(w http.ResponseWriter, r *http.Request) {
	dayKey := mux.Vars(r)["date"]

	ctx, cancel := context5s(r)
	defer cancel()

	record, err := tah.MeetingService.Attendance(ctx, dayKey)
	if err != nil {
		switch err {
		case service.ErrBadDayKey:
			api.WriteBadRequest(w, err.Error())
		default:
			log.Printf("Error loading meeting %s: %v", dayKey, err)
			api.WriteInternalServerError(w, "Failed to load meeting")
		}
		return
	}

	api.WriteJSON(w, http.StatusOK, record)
}

// SaveMeetingHandler upserts a day's attendance.
// POST /meetings/{date}
func (tah *TimesheetAPIHandlers) SaveMeetingHandler(w http.ResponseWriter, r *http.Request) {
	dayKey := mux.Vars(r)["date"]

	var req SaveAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}
	if len(req.Attendance) == 0 {
		api.WriteBadRequest(w, "Attendance map is required")
		return
	}

	ctx, cancel := context5s(r)
	defer cancel()

	record, err := tah.MeetingService.SaveAttendance(ctx, dayKey, req.Attendance)
	if err != nil {
		switch err {
		case service.ErrBadDayKey:
			api.WriteBadRequest(w, err.Error())
		default:
			log.Printf("Error saving meeting %s: %v", dayKey, err)
			api.WriteInternalServerError(w, "Failed to save meeting")
		}
		return
	}

	api.WriteJSON(w, http.StatusOK, record)
}

// RebuildStatsHandler forces a full aggregate recompute.
// POST /admin/stats/rebuild
func (tah *TimesheetAPIHandlers) RebuildStatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextLong(r)
	defer cancel()

	agg, err := tah.StatsService.Rebuild(ctx)
	if err != nil {
		log.Printf("Error rebuilding aggregate stats: %v", err)
		api.WriteInternalServerError(w, "Failed to rebuild stats")
		return
	}

	api.WriteJSON(w, http.StatusOK, agg)
}

// ResetStatsHandler deletes the aggregate so the next read rebuilds it.
// DELETE /admin/stats
func (tah *TimesheetAPIHandlers) ResetStatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context5s(r)
	defer cancel()

	if err := tah.StatsService.Reset(ctx); err != nil {
		log.Printf("Error resetting aggregate stats: %v", err)
		api.WriteInternalServerError(w, "Failed to reset stats")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RegisterRoutes registers all API endpoints for the Timesheet Service.
func (tah *TimesheetAPIHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/timesheet/clockin", tah.ClockInHandler).Methods("POST")
	router.HandleFunc("/timesheet/clockout", tah.ClockOutHandler).Methods("POST")
	router.HandleFunc("/timesheet/manual", tah.ManualEntryHandler).Methods("POST")
	router.HandleFunc("/timesheet/entries", tah.ListEntriesHandler).Methods("GET")
	router.HandleFunc("/timesheet/entries/{id}", tah.EditEntryHandler).Methods("PUT")
	router.HandleFunc("/timesheet/entries/{id}", tah.DeleteEntryHandler).Methods("DELETE")
	router.HandleFunc("/timesheet/active/{founder}", tah.ActiveEntryHandler).Methods("GET")

	router.HandleFunc("/dashboard", tah.DashboardHandler).Methods("GET")

	router.HandleFunc("/meetings/{date}", tah.GetMeetingHandler).Methods("GET")
	router.HandleFunc("/meetings/{date}", tah.SaveMeetingHandler).Methods("POST")

	router.HandleFunc("/admin/stats/rebuild", tah.RebuildStatsHandler).Methods("POST")
	router.HandleFunc("/admin/stats", tah.ResetStatsHandler).Methods("DELETE")
}

// parseInterval builds the start and end instants of a same-day session.
func parseInterval(date, startClock, endClock string) (time.Time, time.Time, error) {
	start, err := stats.CombineDayClock(date, startClock)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date or start time, expected YYYY-MM-DD and HH:MM")
	}
	end, err := stats.CombineDayClock(date, endClock)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end time, expected HH:MM")
	}
	return start, end, nil
}

func context5s(r *http.Request) (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(r.Context(), 5*time.Second)
}

func contextLong(r *http.Request) (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(r.Context(), 60*time.Second)
}
