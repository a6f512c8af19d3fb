// timesheet/stats/rebuild_test.go
package stats

import (
	"testing"
	"time"

	"github.com/adhils04/timesheets/shared/models"
)

func completedEntry(founder string, start time.Time, d time.Duration) models.TimeEntry {
	end := start.Add(d)
	return models.TimeEntry{
		ID:        founder + start.Format(time.RFC3339),
		Founder:   founder,
		Task:      "work",
		StartTime: start,
		EndTime:   &end,
		Status:    models.EntryStatusCompleted,
	}
}

func TestRebuildIdempotent(t *testing.T) {
	entries := []models.TimeEntry{
		completedEntry("Adhil", time.Date(2026, time.August, 3, 9, 0, 0, 0, time.Local), 2*time.Hour),
		completedEntry("Akhil", time.Date(2026, time.February, 1, 9, 0, 0, 0, time.Local), time.Hour),
		{ID: "running", Founder: "Akshay", Task: "work", StartTime: testNow.Add(-time.Hour), Status: models.EntryStatusActive},
	}
	meetings := []models.MeetingRecord{
		{Date: "2026-08-10", Attendance: map[string]bool{"Adhil": true, "Akhil": false}},
	}

	first := Rebuild(entries, meetings, testNow)
	second := Rebuild(entries, meetings, testNow)
	if !Equal(first, second) {
		t.Fatalf("rebuild is not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestRebuildBuckets(t *testing.T) {
	thisMonth := time.Date(2026, time.August, 3, 9, 0, 0, 0, time.Local)
	thisYear := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.Local)
	lastYear := time.Date(2025, time.June, 3, 9, 0, 0, 0, time.Local)

	entries := []models.TimeEntry{
		completedEntry("Adhil", thisMonth, 2*time.Hour),
		completedEntry("Adhil", thisYear, time.Hour),
		completedEntry("Akhil", lastYear, 30*time.Minute),
		{ID: "running", Founder: "Akshay", Task: "work", StartTime: testNow.Add(-time.Hour), Status: models.EntryStatusActive},
		{ID: "blank", Task: "orphan", StartTime: thisMonth}, // no founder, skipped
	}

	agg := Rebuild(entries, nil, testNow)

	if got, want := agg.MonthTotal, (2 * time.Hour).Milliseconds(); got != want {
		t.Errorf("MonthTotal = %d, want %d", got, want)
	}
	// Full scan credits year totals by duration regardless of start year.
	if got, want := agg.YearTotal, (3*time.Hour + 30*time.Minute).Milliseconds(); got != want {
		t.Errorf("YearTotal = %d, want %d", got, want)
	}
	if agg.ActiveCount != 1 {
		t.Errorf("ActiveCount = %d, want 1", agg.ActiveCount)
	}
	if got := agg.FounderStats["Adhil"]; got.Month != (2*time.Hour).Milliseconds() || got.Year != (3*time.Hour).Milliseconds() {
		t.Errorf("Adhil bucket = %+v", got)
	}
	if got := agg.FounderStats["Akhil"]; got.Month != 0 || got.Year != (30 * time.Minute).Milliseconds() {
		t.Errorf("Akhil bucket = %+v", got)
	}
	if got := agg.FounderStats["Akshay"]; got != (models.FounderBucket{}) {
		t.Errorf("running entry contributed durations: %+v", got)
	}
}

func TestRebuildZeroStartTolerated(t *testing.T) {
	end := time.Date(2026, time.August, 3, 10, 0, 0, 0, time.Local)
	entries := []models.TimeEntry{
		{ID: "corrupt", Founder: "Adhil", Task: "work", EndTime: &end, Status: models.EntryStatusCompleted},
	}

	agg := Rebuild(entries, nil, testNow)
	if agg.YearTotal != end.UnixMilli() {
		t.Errorf("YearTotal = %d, want epoch-relative %d", agg.YearTotal, end.UnixMilli())
	}
	if agg.MonthTotal != 0 {
		t.Errorf("MonthTotal = %d, want 0 for an epoch start", agg.MonthTotal)
	}
}

func TestRebuildMeetings(t *testing.T) {
	meetings := []models.MeetingRecord{
		{Date: "2026-08-10", Attendance: map[string]bool{"Adhil": true, "Akhil": true, "Akshay": false}},
		{Date: "2026-08-03", Attendance: map[string]bool{"Adhil": true}},
		{Date: "2025-12-29", Attendance: map[string]bool{"Akhil": true}},
		{Date: "not-a-day", Attendance: map[string]bool{"Adhil": true}},
	}

	agg := Rebuild(nil, meetings, testNow)

	if agg.MeetingStats.TotalMeetings != 4 {
		t.Errorf("TotalMeetings = %d, want 4", agg.MeetingStats.TotalMeetings)
	}
	if agg.MeetingStats.YearlyTotal != 2 {
		t.Errorf("YearlyTotal = %d, want 2", agg.MeetingStats.YearlyTotal)
	}
	want := map[string]int64{"Adhil": 3, "Akhil": 2}
	for name, n := range want {
		if got := agg.MeetingStats.FounderStats[name]; got != n {
			t.Errorf("attendance[%s] = %d, want %d", name, got, n)
		}
	}
	if got := agg.MeetingStats.FounderStats["Akshay"]; got != 0 {
		t.Errorf("attendance[Akshay] = %d, want 0", got)
	}
}

// Replaying the incremental deltas for a history that lives entirely in the
// current month must land on the same document a full rebuild produces.
func TestReplayMatchesRebuild(t *testing.T) {
	starts := []time.Time{
		time.Date(2026, time.August, 3, 9, 0, 0, 0, time.Local),
		time.Date(2026, time.August, 5, 14, 0, 0, 0, time.Local),
		time.Date(2026, time.August, 11, 8, 30, 0, 0, time.Local),
	}
	founders := []string{"Adhil", "Akhil", "Adhil"}
	durations := []time.Duration{2 * time.Hour, 45 * time.Minute, 90 * time.Minute}

	var entries []models.TimeEntry
	replayed := &models.AggregateStats{}
	for i := range starts {
		entries = append(entries, completedEntry(founders[i], starts[i], durations[i]))
		DurationDelta(founders[i], durations[i], starts[i], testNow).ApplyTo(replayed)
	}

	meetings := []models.MeetingRecord{
		{Date: "2026-08-10", Attendance: map[string]bool{"Adhil": true, "Akhil": true}},
	}
	AttendanceDelta("2026-08-10", meetings[0].Attendance, nil, true, testNow).ApplyTo(replayed)

	rebuilt := Rebuild(entries, meetings, testNow)
	if !Equal(replayed, rebuilt) {
		t.Fatalf("replay diverged from rebuild:\nreplayed %+v\nrebuilt  %+v", replayed, rebuilt)
	}
}

func TestEqualTolerance(t *testing.T) {
	a := &models.AggregateStats{
		YearTotal:    100,
		FounderStats: map[string]models.FounderBucket{"Adhil": {Year: 100}, "Ghost": {}},
		MeetingStats: models.MeetingStats{FounderStats: map[string]int64{"Akhil": 0}},
	}
	b := &models.AggregateStats{
		YearTotal:    100,
		FounderStats: map[string]models.FounderBucket{"Adhil": {Year: 100}},
	}
	if !Equal(a, b) {
		t.Error("zero buckets and nil maps should compare equal")
	}

	b.FounderStats["Adhil"] = models.FounderBucket{Year: 99}
	if Equal(a, b) {
		t.Error("differing buckets should not compare equal")
	}
}
