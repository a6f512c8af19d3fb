// timesheet/service/meeting_service.go
package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/adhils04/timesheets/shared/models"
	"github.com/adhils04/timesheets/timesheet/stats"
	"github.com/adhils04/timesheets/timesheet/store"
)

// ErrBadDayKey signals a date that does not parse as "2006-01-02".
var ErrBadDayKey = fmt.Errorf("invalid meeting date, expected YYYY-MM-DD")

// MeetingService encapsulates the business logic for weekly-meeting
// attendance. Saving a day is an upsert: the first save of a day key counts a
// new meeting, later saves only move per-person counters on actual flips.
type MeetingService struct {
	meetingStore *store.MeetingStore
	rosterStore  *store.RosterStore
	statsStore   *store.StatsStore
	statsCache   *store.StatsCache
}

// NewMeetingService creates a new MeetingService instance.
func NewMeetingService(ms *store.MeetingStore, rs *store.RosterStore, ss *store.StatsStore, cache *store.StatsCache) *MeetingService {
	return &MeetingService{
		meetingStore: ms,
		rosterStore:  rs,
		statsStore:   ss,
		statsCache:   cache,
	}
}

// Attendance returns the attendance map for a day, padded with the current
// roster so every member shows up even before anyone is marked. Unknown days
// return an all-absent roster rather than an error.
func (ms *MeetingService) Attendance(ctx context.Context, dayKey string) (*models.MeetingRecord, error) {
	if _, err := stats.ParseDayKey(dayKey); err != nil {
		return nil, ErrBadDayKey
	}

	record, err := ms.meetingStore.GetMeeting(ctx, dayKey)
	if err != nil {
		return nil, fmt.Errorf("service failed to load meeting %s: %w", dayKey, err)
	}
	if record == nil {
		record = &models.MeetingRecord{Date: dayKey, Attendance: map[string]bool{}}
	}
	if record.Attendance == nil {
		record.Attendance = map[string]bool{}
	}

	roster, err := ms.rosterStore.ListRoster(ctx)
	if err != nil {
		return nil, fmt.Errorf("service failed to load roster for meeting %s: %w", dayKey, err)
	}
	for _, member := range roster {
		if _, ok := record.Attendance[member.Name]; !ok {
			record.Attendance[member.Name] = false
		}
	}
	return record, nil
}

// SaveAttendance upserts a day's attendance and folds the resulting counter
// movements into the aggregate. The delta is computed against the stored map
// before the save so that resaving identical attendance is a no-op.
func (ms *MeetingService) SaveAttendance(ctx context.Context, dayKey string, attendance map[string]bool) (*models.MeetingRecord, error) {
	if _, err := stats.ParseDayKey(dayKey); err != nil {
		return nil, ErrBadDayKey
	}
	if len(attendance) == 0 {
		return nil, fmt.Errorf("attendance map is empty")
	}

	existing, err := ms.meetingStore.GetMeeting(ctx, dayKey)
	if err != nil {
		return nil, fmt.Errorf("service failed to load meeting %s: %w", dayKey, err)
	}
	wasNew := existing == nil
	var prev map[string]bool
	if existing != nil {
		prev = existing.Attendance
	}

	if err := ms.meetingStore.SaveMeeting(ctx, dayKey, attendance); err != nil {
		return nil, fmt.Errorf("service failed to save meeting %s: %w", dayKey, err)
	}

	delta := stats.AttendanceDelta(dayKey, attendance, prev, wasNew, time.Now())
	ms.applyDelta(ctx, delta)

	record, err := ms.meetingStore.GetMeeting(ctx, dayKey)
	if err != nil {
		return nil, fmt.Errorf("service failed to reload meeting %s: %w", dayKey, err)
	}

	log.Printf("INFO: Meeting attendance saved for %s (new: %t, %d names)", dayKey, wasNew, len(attendance))
	return record, nil
}

func (ms *MeetingService) applyDelta(ctx context.Context, delta stats.Delta) {
	if delta.IsZero() {
		return
	}
	if err := ms.statsStore.ApplyDelta(ctx, delta); err != nil {
		log.Printf("ERROR: Failed to apply meeting stats delta: %v. Aggregate will drift until next rebuild.", err)
		if err := ms.statsCache.Invalidate(ctx); err != nil {
			log.Printf("WARNING: Failed to invalidate stats cache: %v", err)
		}
		return
	}

	cached, err := ms.statsCache.Get(ctx)
	if err != nil || cached == nil {
		return
	}
	delta.ApplyTo(cached)
	if err := ms.statsCache.Set(ctx, cached); err != nil {
		log.Printf("WARNING: Failed to refresh stats cache after meeting delta: %v", err)
	}
}
