// timesheet/store/stats_store_test.go
package store

import (
	"testing"
	"time"

	"github.com/adhils04/timesheets/timesheet/stats"
)

var incNow = time.Date(2026, time.August, 15, 12, 0, 0, 0, time.Local)

func TestDeltaIncrementsPaths(t *testing.T) {
	start := time.Date(2026, time.August, 14, 9, 30, 0, 0, time.Local)
	delta := stats.ActiveDelta(-1).Merge(stats.DurationDelta("Adhil", 2*time.Hour+30*time.Minute, start, incNow))

	inc := deltaIncrements(delta)

	want := map[string]int64{
		"monthTotal":               9000000,
		"yearTotal":                9000000,
		"activeCount":              -1,
		"founderStats.Adhil.month": 9000000,
		"founderStats.Adhil.year":  9000000,
	}
	if len(inc) != len(want) {
		t.Fatalf("increment doc = %v, want keys %v", inc, want)
	}
	for path, n := range want {
		if got := inc[path]; got != n {
			t.Errorf("inc[%s] = %v, want %d", path, got, n)
		}
	}
}

// A cross-person, cross-month edit debits the old founder's buckets and
// credits the new founder's in one document; fields that net to zero are
// dropped so the write never touches them.
func TestDeltaIncrementsEditReassignment(t *testing.T) {
	oldStart := time.Date(2026, time.August, 5, 9, 0, 0, 0, time.Local)
	newStart := time.Date(2026, time.March, 5, 9, 0, 0, 0, time.Local)

	debit := stats.DurationDelta("Adhil", -2*time.Hour, oldStart, incNow)
	credit := stats.DurationDelta("Akhil", 2*time.Hour, newStart, incNow)
	inc := deltaIncrements(debit.Merge(credit))

	ms := (2 * time.Hour).Milliseconds()
	want := map[string]int64{
		"monthTotal":               -ms,
		"founderStats.Adhil.month": -ms,
		"founderStats.Adhil.year":  -ms,
		"founderStats.Akhil.year":  ms,
	}
	if len(inc) != len(want) {
		t.Fatalf("increment doc = %v, want keys %v", inc, want)
	}
	for path, n := range want {
		if got := inc[path]; got != n {
			t.Errorf("inc[%s] = %v, want %d", path, got, n)
		}
	}
	if _, ok := inc["yearTotal"]; ok {
		t.Error("yearTotal nets to zero across the debit/credit pair and must be omitted")
	}
}

func TestDeltaIncrementsMeetings(t *testing.T) {
	delta := stats.AttendanceDelta("2026-08-10", map[string]bool{"Adhil": true, "Akhil": false}, nil, true, incNow)
	inc := deltaIncrements(delta)

	want := map[string]int64{
		"meetingStats.totalMeetings":      1,
		"meetingStats.yearlyTotal":        1,
		"meetingStats.founderStats.Adhil": 1,
	}
	if len(inc) != len(want) {
		t.Fatalf("increment doc = %v, want keys %v", inc, want)
	}
	for path, n := range want {
		if got := inc[path]; got != n {
			t.Errorf("inc[%s] = %v, want %d", path, got, n)
		}
	}
}
