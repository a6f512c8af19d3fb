// timesheet/stats/delta_test.go
package stats

import (
	"testing"
	"time"

	"github.com/adhils04/timesheets/shared/models"
)

var testNow = time.Date(2026, time.August, 15, 12, 0, 0, 0, time.Local)

func TestDurationDeltaBucketing(t *testing.T) {
	hour := time.Hour
	ms := hour.Milliseconds()

	tests := []struct {
		name       string
		entryStart time.Time
		duration   time.Duration
		wantMonth  int64
		wantYear   int64
		wantBucket Bucket
	}{
		{
			name:       "current month hits every bucket",
			entryStart: time.Date(2026, time.August, 3, 9, 0, 0, 0, time.Local),
			duration:   hour,
			wantMonth:  ms,
			wantYear:   ms,
			wantBucket: Bucket{Month: ms, Year: ms},
		},
		{
			name:       "earlier this year skips month buckets",
			entryStart: time.Date(2026, time.March, 3, 9, 0, 0, 0, time.Local),
			duration:   hour,
			wantMonth:  0,
			wantYear:   ms,
			wantBucket: Bucket{Year: ms},
		},
		{
			name:       "prior year still credits the founder year bucket",
			entryStart: time.Date(2025, time.December, 30, 9, 0, 0, 0, time.Local),
			duration:   hour,
			wantMonth:  0,
			wantYear:   0,
			wantBucket: Bucket{Year: ms},
		},
		{
			name:       "same month of a prior year is not this month",
			entryStart: time.Date(2025, time.August, 15, 9, 0, 0, 0, time.Local),
			duration:   hour,
			wantMonth:  0,
			wantYear:   0,
			wantBucket: Bucket{Year: ms},
		},
		{
			name:       "negative duration reverses a current month contribution",
			entryStart: time.Date(2026, time.August, 3, 9, 0, 0, 0, time.Local),
			duration:   -hour,
			wantMonth:  -ms,
			wantYear:   -ms,
			wantBucket: Bucket{Month: -ms, Year: -ms},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DurationDelta("Adhil", tt.duration, tt.entryStart, testNow)
			if d.MonthTotal != tt.wantMonth {
				t.Errorf("MonthTotal = %d, want %d", d.MonthTotal, tt.wantMonth)
			}
			if d.YearTotal != tt.wantYear {
				t.Errorf("YearTotal = %d, want %d", d.YearTotal, tt.wantYear)
			}
			if got := d.Founders["Adhil"]; got != tt.wantBucket {
				t.Errorf("founder bucket = %+v, want %+v", got, tt.wantBucket)
			}
		})
	}
}

func TestDeltasCommute(t *testing.T) {
	deltas := []Delta{
		DurationDelta("Adhil", 2*time.Hour, time.Date(2026, time.August, 1, 9, 0, 0, 0, time.Local), testNow),
		DurationDelta("Akhil", 30*time.Minute, time.Date(2026, time.July, 10, 9, 0, 0, 0, time.Local), testNow),
		DurationDelta("Adhil", -time.Hour, time.Date(2026, time.August, 1, 9, 0, 0, 0, time.Local), testNow),
		ActiveDelta(1),
		AttendanceDelta("2026-08-10", map[string]bool{"Adhil": true, "Akhil": false}, nil, true, testNow),
		ActiveDelta(-1),
	}

	forward := &models.AggregateStats{}
	for _, d := range deltas {
		d.ApplyTo(forward)
	}

	reversed := &models.AggregateStats{}
	for i := len(deltas) - 1; i >= 0; i-- {
		deltas[i].ApplyTo(reversed)
	}

	if !Equal(forward, reversed) {
		t.Fatalf("order changed the result:\nforward  %+v\nreversed %+v", forward, reversed)
	}

	merged := Delta{}
	for _, d := range deltas {
		merged = merged.Merge(d)
	}
	viaMerge := &models.AggregateStats{}
	merged.ApplyTo(viaMerge)
	if !Equal(forward, viaMerge) {
		t.Fatalf("merge-then-apply diverged from apply-each:\napply %+v\nmerge %+v", forward, viaMerge)
	}
}

func TestEditReversal(t *testing.T) {
	start := time.Date(2026, time.August, 5, 9, 0, 0, 0, time.Local)

	agg := &models.AggregateStats{}
	DurationDelta("Akshay", 3*time.Hour, start, testNow).ApplyTo(agg)

	// Debit the old duration, credit the corrected one.
	DurationDelta("Akshay", -3*time.Hour, start, testNow).ApplyTo(agg)
	DurationDelta("Akshay", 90*time.Minute, start, testNow).ApplyTo(agg)

	direct := &models.AggregateStats{}
	DurationDelta("Akshay", 90*time.Minute, start, testNow).ApplyTo(direct)

	if !Equal(agg, direct) {
		t.Fatalf("debit+credit != direct:\nedited %+v\ndirect %+v", agg, direct)
	}
}

func TestEditReversalAcrossBoundaries(t *testing.T) {
	oldStart := time.Date(2026, time.August, 5, 9, 0, 0, 0, time.Local)
	newStart := time.Date(2026, time.March, 5, 9, 0, 0, 0, time.Local)

	agg := &models.AggregateStats{}
	DurationDelta("Adhil", 2*time.Hour, oldStart, testNow).ApplyTo(agg)

	// The edit moves the entry to March and reassigns it to Akhil.
	DurationDelta("Adhil", -2*time.Hour, oldStart, testNow).ApplyTo(agg)
	DurationDelta("Akhil", 2*time.Hour, newStart, testNow).ApplyTo(agg)

	direct := &models.AggregateStats{}
	DurationDelta("Akhil", 2*time.Hour, newStart, testNow).ApplyTo(direct)

	if !Equal(agg, direct) {
		t.Fatalf("cross-boundary edit left residue:\nedited %+v\ndirect %+v", agg, direct)
	}
}

// A full clock-in/clock-out pair for a 2h30m session in the current month
// must credit exactly 9,000,000 ms to the month, year and founder buckets and
// leave activeCount at zero.
func TestClockPairScenario(t *testing.T) {
	start := time.Date(2026, time.August, 14, 9, 30, 0, 0, time.Local)

	agg := &models.AggregateStats{}
	ActiveDelta(1).ApplyTo(agg)
	ActiveDelta(-1).Merge(DurationDelta("Adhil", 2*time.Hour+30*time.Minute, start, testNow)).ApplyTo(agg)

	if agg.MonthTotal != 9000000 || agg.YearTotal != 9000000 {
		t.Errorf("totals = (%d, %d), want (9000000, 9000000)", agg.MonthTotal, agg.YearTotal)
	}
	if got := agg.FounderStats["Adhil"]; got != (models.FounderBucket{Month: 9000000, Year: 9000000}) {
		t.Errorf("founder bucket = %+v", got)
	}
	if agg.ActiveCount != 0 {
		t.Errorf("ActiveCount = %d after a complete pair, want 0", agg.ActiveCount)
	}
}

// Deleting a completed 1h current-month entry must debit exactly 1h from every
// bucket it touched and leave activeCount alone.
func TestDeleteCurrentMonthEntryScenario(t *testing.T) {
	start := time.Date(2026, time.August, 7, 10, 0, 0, 0, time.Local)
	hour := time.Hour.Milliseconds()

	agg := &models.AggregateStats{
		MonthTotal:   3 * hour,
		YearTotal:    8 * hour,
		ActiveCount:  1,
		FounderStats: map[string]models.FounderBucket{"Akshay": {Month: 2 * hour, Year: 5 * hour}},
	}
	DurationDelta("Akshay", -time.Hour, start, testNow).ApplyTo(agg)

	if agg.MonthTotal != 2*hour || agg.YearTotal != 7*hour {
		t.Errorf("totals = (%d, %d), want (%d, %d)", agg.MonthTotal, agg.YearTotal, 2*hour, 7*hour)
	}
	if got := agg.FounderStats["Akshay"]; got != (models.FounderBucket{Month: hour, Year: 4 * hour}) {
		t.Errorf("founder bucket = %+v", got)
	}
	if agg.ActiveCount != 1 {
		t.Errorf("ActiveCount = %d, want 1 (untouched)", agg.ActiveCount)
	}
}

func TestActiveCounting(t *testing.T) {
	agg := &models.AggregateStats{}

	ActiveDelta(1).ApplyTo(agg) // Adhil clocks in
	ActiveDelta(1).ApplyTo(agg) // Akhil clocks in
	if agg.ActiveCount != 2 {
		t.Fatalf("ActiveCount = %d after two clock-ins, want 2", agg.ActiveCount)
	}

	ActiveDelta(-1).ApplyTo(agg) // Adhil clocks out
	if agg.ActiveCount != 1 {
		t.Fatalf("ActiveCount = %d after one clock-out, want 1", agg.ActiveCount)
	}

	ActiveDelta(-1).ApplyTo(agg) // running entry deleted
	if agg.ActiveCount != 0 {
		t.Fatalf("ActiveCount = %d after clearing, want 0", agg.ActiveCount)
	}
}

func TestAttendanceDeltaFlips(t *testing.T) {
	tests := []struct {
		name      string
		next      map[string]bool
		prev      map[string]bool
		wasNew    bool
		wantTotal int64
		wantYear  int64
		wantFlips map[string]int64
	}{
		{
			name:      "new record counts attendees and bumps totals",
			next:      map[string]bool{"Adhil": true, "Akhil": true, "Akshay": false},
			wasNew:    true,
			wantTotal: 1,
			wantYear:  1,
			wantFlips: map[string]int64{"Adhil": 1, "Akhil": 1},
		},
		{
			name:      "editing flips move counters both ways",
			next:      map[string]bool{"Adhil": false, "Akshay": true},
			prev:      map[string]bool{"Adhil": true, "Akshay": false},
			wantFlips: map[string]int64{"Adhil": -1, "Akshay": 1},
		},
		{
			name: "resaving unchanged attendance is a no-op",
			next: map[string]bool{"Adhil": true, "Akhil": false},
			prev: map[string]bool{"Adhil": true, "Akhil": false},
		},
		{
			name: "names only in the previous map are left alone",
			next: map[string]bool{"Adhil": true},
			prev: map[string]bool{"Adhil": true, "Departed": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := AttendanceDelta("2026-08-10", tt.next, tt.prev, tt.wasNew, testNow)
			if d.Meetings.TotalMeetings != tt.wantTotal {
				t.Errorf("TotalMeetings = %d, want %d", d.Meetings.TotalMeetings, tt.wantTotal)
			}
			if d.Meetings.YearlyTotal != tt.wantYear {
				t.Errorf("YearlyTotal = %d, want %d", d.Meetings.YearlyTotal, tt.wantYear)
			}
			if len(d.Meetings.Founders) != len(tt.wantFlips) {
				t.Fatalf("flips = %v, want %v", d.Meetings.Founders, tt.wantFlips)
			}
			for name, want := range tt.wantFlips {
				if got := d.Meetings.Founders[name]; got != want {
					t.Errorf("flip[%s] = %d, want %d", name, got, want)
				}
			}
		})
	}
}

func TestAttendanceDeltaPriorYearDay(t *testing.T) {
	d := AttendanceDelta("2025-12-29", map[string]bool{"Adhil": true}, nil, true, testNow)
	if d.Meetings.TotalMeetings != 1 {
		t.Errorf("TotalMeetings = %d, want 1", d.Meetings.TotalMeetings)
	}
	if d.Meetings.YearlyTotal != 0 {
		t.Errorf("YearlyTotal = %d for a prior-year day, want 0", d.Meetings.YearlyTotal)
	}
}

// A session that spans New Year's Eve is accounted by its start date, so the
// whole duration lands in the old year's buckets and the new year's totals
// stay untouched until the next rebuild.
func TestCrossYearClockOut(t *testing.T) {
	now := time.Date(2026, time.January, 1, 1, 0, 0, 0, time.Local)
	start := time.Date(2025, time.December, 31, 23, 0, 0, 0, time.Local)

	agg := &models.AggregateStats{}
	DurationDelta("Adhil", 2*time.Hour, start, now).ApplyTo(agg)

	if agg.MonthTotal != 0 || agg.YearTotal != 0 {
		t.Errorf("global totals = (%d, %d), want (0, 0)", agg.MonthTotal, agg.YearTotal)
	}
	if got := agg.FounderStats["Adhil"]; got.Year != (2 * time.Hour).Milliseconds() || got.Month != 0 {
		t.Errorf("founder bucket = %+v, want year-only credit", got)
	}
}

func TestDeleteOldEntryLeavesCurrentMonthAlone(t *testing.T) {
	agg := &models.AggregateStats{
		MonthTotal: 1000,
		YearTotal:  5000,
		FounderStats: map[string]models.FounderBucket{
			"Akhil": {Month: 1000, Year: 5000},
		},
	}

	// Deleting an entry from March debits year buckets only.
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.Local)
	DurationDelta("Akhil", -4*time.Second, start, testNow).ApplyTo(agg)

	if agg.MonthTotal != 1000 {
		t.Errorf("MonthTotal = %d, want 1000", agg.MonthTotal)
	}
	if agg.YearTotal != 1000 {
		t.Errorf("YearTotal = %d, want 1000", agg.YearTotal)
	}
	if got := agg.FounderStats["Akhil"]; got != (models.FounderBucket{Month: 1000, Year: 1000}) {
		t.Errorf("founder bucket = %+v", got)
	}
}

func TestDeltaIsZero(t *testing.T) {
	if !(Delta{}).IsZero() {
		t.Error("empty delta should be zero")
	}
	if !(Delta{Founders: map[string]Bucket{"Adhil": {}}}).IsZero() {
		t.Error("delta with only empty buckets should be zero")
	}
	if (Delta{ActiveCount: -1}).IsZero() {
		t.Error("active adjustment should not be zero")
	}
	if (Delta{Meetings: MeetingDelta{Founders: map[string]int64{"Adhil": 1}}}).IsZero() {
		t.Error("meeting flip should not be zero")
	}
}
