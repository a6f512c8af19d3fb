// timesheet/service/timesheet_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/adhils04/timesheets/shared/models"
	redisu "github.com/adhils04/timesheets/shared/redis"
	"github.com/adhils04/timesheets/timesheet/stats"
	"github.com/adhils04/timesheets/timesheet/store"
	"go.mongodb.org/mongo-driver/mongo"
)

// Custom Errors for clear communication to API layer
var (
	ErrEmptyFounder      = fmt.Errorf("founder name is required")
	ErrEmptyTask         = fmt.Errorf("task description is required")
	ErrActiveEntryExists = fmt.Errorf("founder already has a running entry")
	ErrNoActiveEntry     = fmt.Errorf("founder has no running entry")
	ErrEntryNotFound     = fmt.Errorf("time entry not found")
	ErrEntryRunning      = fmt.Errorf("time entry is still running")
	ErrEndBeforeStart    = fmt.Errorf("end time must be after start time")
)

// TimesheetService encapsulates the business logic for work sessions. Every
// entry mutation writes the entry first and then folds the matching delta into
// the aggregate; a delta that fails to land is logged and left for the
// periodic rebuild to heal, never retried inline.
type TimesheetService struct {
	entryStore   *store.EntryStore
	statsStore   *store.StatsStore
	sessionStore *store.SessionStore
	statsCache   *store.StatsCache
}

// NewTimesheetService creates a new TimesheetService instance.
func NewTimesheetService(es *store.EntryStore, ss *store.StatsStore, sess *store.SessionStore, cache *store.StatsCache) *TimesheetService {
	return &TimesheetService{
		entryStore:   es,
		statsStore:   ss,
		sessionStore: sess,
		statsCache:   cache,
	}
}

// ClockIn opens a new running entry for the founder. Only one entry may run
// per founder at a time.
func (ts *TimesheetService) ClockIn(ctx context.Context, founder, task string) (*models.TimeEntry, error) {
	if founder == "" {
		return nil, ErrEmptyFounder
	}
	if task == "" {
		return nil, ErrEmptyTask
	}

	running, err := ts.entryStore.FindRunningEntry(ctx, founder)
	if err != nil {
		return nil, fmt.Errorf("service failed to check for running entry: %w", err)
	}
	if running != nil {
		return nil, ErrActiveEntryExists
	}

	// No running entry in Mongo, so any surviving marker is an orphan from a
	// failed clear. Drop it before it shadows the new session.
	if session, err := ts.sessionStore.GetActiveSession(ctx, founder); err == nil && session != nil {
		log.Printf("WARNING: Stale active session marker for %s (entry %s). Clearing.", founder, session.EntryID)
		if err := ts.sessionStore.ClearActiveSession(ctx, founder); err != nil {
			log.Printf("WARNING: Failed to clear stale session marker for %s: %v", founder, err)
		}
	}

	entry := &models.TimeEntry{
		Founder:   founder,
		Task:      task,
		StartTime: time.Now(),
		Status:    models.EntryStatusActive,
	}
	if err := ts.entryStore.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("service failed to create time entry: %w", err)
	}

	ts.applyDelta(ctx, stats.ActiveDelta(1))

	if err := ts.sessionStore.SetActiveSession(ctx, founder, entry.ID, entry.StartTime); err != nil {
		log.Printf("WARNING: Failed to set active session marker for %s: %v", founder, err)
	}

	log.Printf("INFO: %s clocked in on entry %s (task: %q)", founder, entry.ID, task)
	return entry, nil
}

// ClockOut closes the founder's running entry and credits its duration to the
// aggregate, bucketed by the entry's start date. A session whose clock ran
// backwards is closed without credit rather than poisoning the totals with a
// negative duration.
func (ts *TimesheetService) ClockOut(ctx context.Context, founder string) (*models.TimeEntry, error) {
	if founder == "" {
		return nil, ErrEmptyFounder
	}

	entry, err := ts.entryStore.FindRunningEntry(ctx, founder)
	if err != nil {
		return nil, fmt.Errorf("service failed to find running entry: %w", err)
	}
	if entry == nil {
		return nil, ErrNoActiveEntry
	}

	now := time.Now()
	entry.EndTime = &now
	entry.Status = models.EntryStatusCompleted
	if err := ts.entryStore.CompleteEntry(ctx, entry.ID, entry); err != nil {
		return nil, fmt.Errorf("service failed to complete time entry: %w", err)
	}

	delta := stats.ActiveDelta(-1)
	duration := entry.Duration()
	if duration > 0 {
		delta = delta.Merge(stats.DurationDelta(founder, duration, entry.StartTime, now))
	} else if duration < 0 {
		log.Printf("WARNING: Entry %s for %s has negative duration %v. Closing without credit.", entry.ID, founder, duration)
	}
	ts.applyDelta(ctx, delta)

	if err := ts.sessionStore.ClearActiveSession(ctx, founder); err != nil {
		log.Printf("WARNING: Failed to clear active session marker for %s: %v", founder, err)
	}

	log.Printf("INFO: %s clocked out of entry %s after %v", founder, entry.ID, duration)
	return entry, nil
}

// AddManualEntry records a completed session after the fact with explicit
// start and end instants on a single day.
func (ts *TimesheetService) AddManualEntry(ctx context.Context, founder, task string, start, end time.Time) (*models.TimeEntry, error) {
	if founder == "" {
		return nil, ErrEmptyFounder
	}
	if task == "" {
		return nil, ErrEmptyTask
	}
	if !end.After(start) {
		return nil, ErrEndBeforeStart
	}

	entry := &models.TimeEntry{
		Founder:   founder,
		Task:      task,
		StartTime: start,
		EndTime:   &end,
		Status:    models.EntryStatusManual,
	}
	if err := ts.entryStore.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("service failed to create manual entry: %w", err)
	}

	ts.applyDelta(ctx, stats.DurationDelta(founder, entry.Duration(), entry.StartTime, time.Now()))

	log.Printf("INFO: Manual entry %s recorded for %s (%v)", entry.ID, founder, entry.Duration())
	return entry, nil
}

// EditEntry rewrites a completed entry's task and interval, optionally
// reassigning it to another person (blank founder keeps the current one). The
// old duration is debited against the old founder and start date and the new
// one credited against the new, so totals end up exactly as if the entry had
// been recorded correctly the first time. Running entries cannot be edited;
// clock out first.
func (ts *TimesheetService) EditEntry(ctx context.Context, id, founder, task string, start, end time.Time) (*models.TimeEntry, error) {
	if task == "" {
		return nil, ErrEmptyTask
	}
	if !end.After(start) {
		return nil, ErrEndBeforeStart
	}

	entry, err := ts.entryStore.GetEntry(ctx, id)
	if err == mongo.ErrNoDocuments {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("service failed to load entry %s: %w", id, err)
	}
	if entry.Running() {
		return nil, ErrEntryRunning
	}

	now := time.Now()
	debit := stats.DurationDelta(entry.Founder, -entry.Duration(), entry.StartTime, now)

	if founder != "" {
		entry.Founder = founder
	}
	entry.Task = task
	entry.StartTime = start
	entry.EndTime = &end
	if entry.Status == models.EntryStatusActive {
		entry.Status = models.EntryStatusCompleted
	}
	if err := ts.entryStore.UpdateEntryTimes(ctx, id, entry); err != nil {
		return nil, fmt.Errorf("service failed to update entry %s: %w", id, err)
	}

	credit := stats.DurationDelta(entry.Founder, entry.Duration(), entry.StartTime, now)
	ts.applyDelta(ctx, debit.Merge(credit))

	log.Printf("INFO: Entry %s edited for %s (new duration %v)", id, entry.Founder, entry.Duration())
	return entry, nil
}

// DeleteEntry removes an entry and debits whatever it had contributed. A
// still-running entry also decrements the active count and drops the
// founder's session marker.
func (ts *TimesheetService) DeleteEntry(ctx context.Context, id string) error {
	entry, err := ts.entryStore.GetEntry(ctx, id)
	if err == mongo.ErrNoDocuments {
		return ErrEntryNotFound
	}
	if err != nil {
		return fmt.Errorf("service failed to load entry %s: %w", id, err)
	}

	if err := ts.entryStore.DeleteEntry(ctx, id); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrEntryNotFound
		}
		return fmt.Errorf("service failed to delete entry %s: %w", id, err)
	}

	var delta stats.Delta
	if entry.Running() {
		delta = stats.ActiveDelta(-1)
		if err := ts.sessionStore.ClearActiveSession(ctx, entry.Founder); err != nil {
			log.Printf("WARNING: Failed to clear active session marker for %s: %v", entry.Founder, err)
		}
	} else if d := entry.Duration(); d > 0 {
		delta = stats.DurationDelta(entry.Founder, -d, entry.StartTime, time.Now())
	}
	ts.applyDelta(ctx, delta)

	log.Printf("INFO: Entry %s deleted for %s", id, entry.Founder)
	return nil
}

// RecentEntries lists the newest entries, optionally for one founder.
func (ts *TimesheetService) RecentEntries(ctx context.Context, founder string, limit int64) ([]models.TimeEntry, error) {
	entries, err := ts.entryStore.ListRecent(ctx, founder, limit)
	if err != nil {
		return nil, fmt.Errorf("service failed to list recent entries: %w", err)
	}
	return entries, nil
}

// ActiveEntry returns the founder's running entry, or nil when idle. The
// session marker is refreshed as a side effect so polling dashboards keep the
// marker alive.
func (ts *TimesheetService) ActiveEntry(ctx context.Context, founder string) (*models.TimeEntry, error) {
	if founder == "" {
		return nil, ErrEmptyFounder
	}

	entry, err := ts.entryStore.FindRunningEntry(ctx, founder)
	if err != nil {
		return nil, fmt.Errorf("service failed to find running entry: %w", err)
	}
	if entry == nil {
		return nil, nil
	}

	if err := ts.sessionStore.RefreshActiveSession(ctx, founder); err != nil {
		if errors.Is(err, redisu.ErrRedisKeyNotFound) {
			// Marker expired while the Mongo entry kept running. Restore it.
			if err := ts.sessionStore.SetActiveSession(ctx, founder, entry.ID, entry.StartTime); err != nil {
				log.Printf("WARNING: Failed to restore active session marker for %s: %v", founder, err)
			}
		} else {
			log.Printf("WARNING: Failed to refresh active session marker for %s: %v", founder, err)
		}
	}
	return entry, nil
}

// applyDelta folds a delta into the aggregate document and keeps the cached
// snapshot in step. Failures are logged only; the raw entries remain the
// source of truth and the rebuild job reconciles drift.
func (ts *TimesheetService) applyDelta(ctx context.Context, delta stats.Delta) {
	if delta.IsZero() {
		return
	}
	if err := ts.statsStore.ApplyDelta(ctx, delta); err != nil {
		log.Printf("ERROR: Failed to apply stats delta: %v. Aggregate will drift until next rebuild.", err)
		if err := ts.statsCache.Invalidate(ctx); err != nil {
			log.Printf("WARNING: Failed to invalidate stats cache: %v", err)
		}
		return
	}

	cached, err := ts.statsCache.Get(ctx)
	if err != nil || cached == nil {
		return
	}
	delta.ApplyTo(cached)
	if err := ts.statsCache.Set(ctx, cached); err != nil {
		log.Printf("WARNING: Failed to refresh stats cache after delta: %v", err)
	}
}
