// timesheet/stats/rebuild.go
package stats

import (
	"time"

	"github.com/adhils04/timesheets/shared/models"
)

// Rebuild derives the aggregate stats document from a full scan of the raw
// entries and meeting records. This is the recovery path when the document is
// missing (first run, admin reset) and the verification source for the
// periodic rebuild job. It is pure: rerunning it over the same inputs yields
// the same document.
//
// Completed entries contribute to yearTotal and the founder's year bucket
// unconditionally, and to the month buckets only when they started on or
// after the start of now's month. Running entries contribute only to
// activeCount. A zero start time is tolerated as "duration since epoch"
// rather than dropped, so corrupt entries are at least visible in the totals.
func Rebuild(entries []models.TimeEntry, meetings []models.MeetingRecord, now time.Time) *models.AggregateStats {
	agg := &models.AggregateStats{
		FounderStats: map[string]models.FounderBucket{},
		MeetingStats: models.MeetingStats{FounderStats: map[string]int64{}},
	}

	monthStartMs := StartOfMonth(now).UnixMilli()

	for _, e := range entries {
		if e.Founder == "" {
			continue
		}
		bucket := agg.FounderStats[e.Founder]

		if e.EndTime == nil {
			agg.ActiveCount++
			agg.FounderStats[e.Founder] = bucket
			continue
		}

		startMs := int64(0)
		if !e.StartTime.IsZero() {
			startMs = e.StartTime.UnixMilli()
		}
		duration := e.EndTime.UnixMilli() - startMs

		agg.YearTotal += duration
		bucket.Year += duration

		if startMs >= monthStartMs {
			agg.MonthTotal += duration
			bucket.Month += duration
		}
		agg.FounderStats[e.Founder] = bucket
	}

	for _, m := range meetings {
		agg.MeetingStats.TotalMeetings++
		if day, err := ParseDayKey(m.Date); err == nil && SameYear(day, now) {
			agg.MeetingStats.YearlyTotal++
		}
		for name, attended := range m.Attendance {
			if attended {
				agg.MeetingStats.FounderStats[name]++
			}
		}
	}

	return agg
}

// Equal compares two aggregates field by field, treating nil and empty maps
// as the same. Used by the rebuild job to detect drift and by tests.
func Equal(a, b *models.AggregateStats) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.MonthTotal != b.MonthTotal || a.YearTotal != b.YearTotal || a.ActiveCount != b.ActiveCount {
		return false
	}
	if a.MeetingStats.TotalMeetings != b.MeetingStats.TotalMeetings ||
		a.MeetingStats.YearlyTotal != b.MeetingStats.YearlyTotal {
		return false
	}
	if !bucketsEqual(a.FounderStats, b.FounderStats) {
		return false
	}
	return countsEqual(a.MeetingStats.FounderStats, b.MeetingStats.FounderStats)
}

func bucketsEqual(a, b map[string]models.FounderBucket) bool {
	for name, av := range a {
		if av != (models.FounderBucket{}) && b[name] != av {
			return false
		}
	}
	for name, bv := range b {
		if bv != (models.FounderBucket{}) && a[name] != bv {
			return false
		}
	}
	return true
}

func countsEqual(a, b map[string]int64) bool {
	for name, av := range a {
		if av != 0 && b[name] != av {
			return false
		}
	}
	for name, bv := range b {
		if bv != 0 && a[name] != bv {
			return false
		}
	}
	return true
}
