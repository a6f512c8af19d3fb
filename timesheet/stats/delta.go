// timesheet/stats/delta.go
package stats

import (
	"time"

	"github.com/adhils04/timesheets/shared/models"
)

// Bucket is a signed per-founder duration adjustment in milliseconds.
type Bucket struct {
	Month int64
	Year  int64
}

// MeetingDelta is a signed adjustment to the meeting counters.
type MeetingDelta struct {
	TotalMeetings int64
	YearlyTotal   int64
	Founders      map[string]int64
}

// Delta is an additive adjustment to the aggregate stats document. Every
// mutation of a time entry or meeting record is translated into one Delta and
// applied as per-field increments, never as an absolute overwrite, so that
// concurrent writers compose correctly: deltas commute, and the order they
// land in does not change the final document.
type Delta struct {
	MonthTotal  int64
	YearTotal   int64
	ActiveCount int64
	Founders    map[string]Bucket
	Meetings    MeetingDelta
}

// DurationDelta buckets a completed entry's signed duration by the entry's own
// start date relative to now: the founder's year bucket always receives the
// duration, the global year total only when the entry started in the current
// calendar year, and the month buckets only when it started in the current
// calendar month. Negating the duration reverses a prior contribution, which
// is how deletes and the debit phase of edits are expressed.
func DurationDelta(founder string, duration time.Duration, entryStart, now time.Time) Delta {
	ms := duration.Milliseconds()
	d := Delta{Founders: map[string]Bucket{}}

	bucket := Bucket{Year: ms}
	if SameYear(entryStart, now) {
		d.YearTotal = ms
	}
	if SameMonth(entryStart, now) {
		d.MonthTotal = ms
		bucket.Month = ms
	}
	d.Founders[founder] = bucket
	return d
}

// ActiveDelta adjusts the running-session count: +1 on clock-in, -1 on
// clock-out or on deleting a still-running entry.
func ActiveDelta(n int64) Delta {
	return Delta{ActiveCount: n}
}

// AttendanceDelta computes the meeting-counter adjustment for saving a
// meeting day. A brand-new record bumps totalMeetings, and yearlyTotal when
// the day falls in the current year. Per-person counters move only on flips:
// +1 for false->true, -1 for true->false, judged against the previous map (all
// false when the record is new). Names present in the new map are honored
// whether or not they are on the current roster.
func AttendanceDelta(dayKey string, next, prev map[string]bool, wasNew bool, now time.Time) Delta {
	var d Delta

	if wasNew {
		d.Meetings.TotalMeetings = 1
		if day, err := ParseDayKey(dayKey); err == nil && SameYear(day, now) {
			d.Meetings.YearlyTotal = 1
		}
	}

	for name, attending := range next {
		was := !wasNew && prev[name]
		var flip int64
		switch {
		case attending && !was:
			flip = 1
		case !attending && was:
			flip = -1
		default:
			continue
		}
		if d.Meetings.Founders == nil {
			d.Meetings.Founders = map[string]int64{}
		}
		d.Meetings.Founders[name] += flip
	}
	return d
}

// Merge returns the combination of two deltas.
func (d Delta) Merge(other Delta) Delta {
	out := Delta{
		MonthTotal:  d.MonthTotal + other.MonthTotal,
		YearTotal:   d.YearTotal + other.YearTotal,
		ActiveCount: d.ActiveCount + other.ActiveCount,
		Meetings: MeetingDelta{
			TotalMeetings: d.Meetings.TotalMeetings + other.Meetings.TotalMeetings,
			YearlyTotal:   d.Meetings.YearlyTotal + other.Meetings.YearlyTotal,
		},
	}
	for name, b := range d.Founders {
		if out.Founders == nil {
			out.Founders = map[string]Bucket{}
		}
		out.Founders[name] = b
	}
	for name, b := range other.Founders {
		if out.Founders == nil {
			out.Founders = map[string]Bucket{}
		}
		merged := out.Founders[name]
		merged.Month += b.Month
		merged.Year += b.Year
		out.Founders[name] = merged
	}
	for name, n := range d.Meetings.Founders {
		if out.Meetings.Founders == nil {
			out.Meetings.Founders = map[string]int64{}
		}
		out.Meetings.Founders[name] += n
	}
	for name, n := range other.Meetings.Founders {
		if out.Meetings.Founders == nil {
			out.Meetings.Founders = map[string]int64{}
		}
		out.Meetings.Founders[name] += n
	}
	return out
}

// IsZero reports whether applying the delta would change nothing.
func (d Delta) IsZero() bool {
	if d.MonthTotal != 0 || d.YearTotal != 0 || d.ActiveCount != 0 {
		return false
	}
	if d.Meetings.TotalMeetings != 0 || d.Meetings.YearlyTotal != 0 {
		return false
	}
	for _, b := range d.Founders {
		if b.Month != 0 || b.Year != 0 {
			return false
		}
	}
	for _, n := range d.Meetings.Founders {
		if n != 0 {
			return false
		}
	}
	return true
}

// ApplyTo adds the delta to an in-memory aggregate, mirroring the per-field
// merge-increment the store performs server-side. Used to keep the cached
// snapshot warm after a successful increment write.
func (d Delta) ApplyTo(agg *models.AggregateStats) {
	agg.MonthTotal += d.MonthTotal
	agg.YearTotal += d.YearTotal
	agg.ActiveCount += d.ActiveCount

	for name, b := range d.Founders {
		if agg.FounderStats == nil {
			agg.FounderStats = map[string]models.FounderBucket{}
		}
		cur := agg.FounderStats[name]
		cur.Month += b.Month
		cur.Year += b.Year
		agg.FounderStats[name] = cur
	}

	agg.MeetingStats.TotalMeetings += d.Meetings.TotalMeetings
	agg.MeetingStats.YearlyTotal += d.Meetings.YearlyTotal
	for name, n := range d.Meetings.Founders {
		if agg.MeetingStats.FounderStats == nil {
			agg.MeetingStats.FounderStats = map[string]int64{}
		}
		agg.MeetingStats.FounderStats[name] += n
	}
}
