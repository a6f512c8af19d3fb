// timesheet/stats/projection_test.go
package stats

import (
	"testing"

	"github.com/adhils04/timesheets/shared/models"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0h 0m"},
		{-5000, "0h 0m"},
		{1, "< 1m"},
		{59999, "< 1m"},
		{60000, "0h 1m"},
		{90 * 60 * 1000, "1h 30m"},
		{9000000, "2h 30m"},
		{25*3600*1000 + 5*60*1000, "25h 5m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.ms); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestAttendanceRate(t *testing.T) {
	tests := []struct {
		attended, total int64
		want            int
	}{
		{0, 0, 0},
		{3, 0, 300}, // degenerate but must not panic
		{0, 10, 0},
		{1, 3, 33},
		{2, 3, 67},
		{10, 10, 100},
	}
	for _, tt := range tests {
		if got := AttendanceRate(tt.attended, tt.total); got != tt.want {
			t.Errorf("AttendanceRate(%d, %d) = %d, want %d", tt.attended, tt.total, got, tt.want)
		}
	}
}

func sampleAggregate() *models.AggregateStats {
	return &models.AggregateStats{
		MonthTotal:  9000000,  // 2h 30m
		YearTotal:   36000000, // 10h
		ActiveCount: 2,
		FounderStats: map[string]models.FounderBucket{
			"Adhil":  {Month: 5400000, Year: 18000000},
			"Akhil":  {Month: 3600000, Year: 14400000},
			"Intern": {Month: 0, Year: 3600000},
		},
		MeetingStats: models.MeetingStats{
			TotalMeetings: 4,
			YearlyTotal:   4,
			FounderStats:  map[string]int64{"Adhil": 4, "Akhil": 3, "Intern": 1},
		},
	}
}

func sampleRoster() []models.Founder {
	return []models.Founder{
		{Name: "Adhil", Role: models.RoleFounder},
		{Name: "Akhil", Role: models.RoleFounder},
		{Name: "Intern", Role: models.RoleEmployee},
	}
}

func TestProjectAdminView(t *testing.T) {
	dash := Project(sampleAggregate(), sampleRoster(), "", false)

	if dash.MonthTotal != 9000000 || dash.MonthLabel != "2h 30m" {
		t.Errorf("month = %d (%q)", dash.MonthTotal, dash.MonthLabel)
	}
	if dash.YearTotal != 36000000 || dash.YearLabel != "10h 0m" {
		t.Errorf("year = %d (%q)", dash.YearTotal, dash.YearLabel)
	}
	if dash.ActiveCount != 2 {
		t.Errorf("ActiveCount = %d, want 2", dash.ActiveCount)
	}
	if len(dash.Founders) != 2 || len(dash.Employees) != 1 {
		t.Fatalf("breakdown split = %d founders / %d employees", len(dash.Founders), len(dash.Employees))
	}
	if dash.Founders[0].Name != "Adhil" || dash.Founders[1].Name != "Akhil" {
		t.Errorf("founder rows out of roster order: %v, %v", dash.Founders[0].Name, dash.Founders[1].Name)
	}

	adhil := dash.Founders[0]
	if adhil.MonthLabel != "1h 30m" || adhil.YearLabel != "5h 0m" {
		t.Errorf("Adhil labels = %q / %q", adhil.MonthLabel, adhil.YearLabel)
	}
	if adhil.MeetingsAttended != 4 || adhil.AttendanceRate != 100 {
		t.Errorf("Adhil meetings = %d @ %d%%", adhil.MeetingsAttended, adhil.AttendanceRate)
	}
	if akhil := dash.Founders[1]; akhil.AttendanceRate != 75 {
		t.Errorf("Akhil rate = %d, want 75", akhil.AttendanceRate)
	}
	if intern := dash.Employees[0]; intern.AttendanceRate != 25 || intern.MonthLabel != "0h 0m" {
		t.Errorf("Intern row = %+v", intern)
	}
}

func TestProjectForcedFounder(t *testing.T) {
	dash := Project(sampleAggregate(), sampleRoster(), "Akhil", true)

	if dash.MonthTotal != 3600000 || dash.YearTotal != 14400000 {
		t.Errorf("totals = (%d, %d), want Akhil's own buckets", dash.MonthTotal, dash.YearTotal)
	}
	if dash.ActiveCount != 1 {
		t.Errorf("ActiveCount = %d with a running session, want 1", dash.ActiveCount)
	}
	if len(dash.Founders) != 1 || len(dash.Employees) != 0 {
		t.Fatalf("forced view should hold exactly one row: %d/%d", len(dash.Founders), len(dash.Employees))
	}
	if dash.Founders[0].Name != "Akhil" {
		t.Errorf("row = %q, want Akhil", dash.Founders[0].Name)
	}

	idle := Project(sampleAggregate(), sampleRoster(), "Akhil", false)
	if idle.ActiveCount != 0 {
		t.Errorf("ActiveCount = %d with no running session, want 0", idle.ActiveCount)
	}
}

func TestProjectForcedEmployee(t *testing.T) {
	dash := Project(sampleAggregate(), sampleRoster(), "Intern", false)
	if len(dash.Employees) != 1 || len(dash.Founders) != 0 {
		t.Fatalf("employee row landed in the wrong list: %d/%d", len(dash.Founders), len(dash.Employees))
	}
	if dash.MonthTotal != 0 || dash.YearTotal != 3600000 {
		t.Errorf("totals = (%d, %d)", dash.MonthTotal, dash.YearTotal)
	}
}

func TestProjectUnknownForcedName(t *testing.T) {
	dash := Project(sampleAggregate(), sampleRoster(), "Nobody", false)
	if dash.MonthTotal != 0 || dash.YearTotal != 0 {
		t.Errorf("unknown person should project empty buckets, got (%d, %d)", dash.MonthTotal, dash.YearTotal)
	}
	if len(dash.Founders) != 1 {
		t.Fatalf("unknown person should still get a zeroed row")
	}
	if row := dash.Founders[0]; row.MonthLabel != "0h 0m" || row.AttendanceRate != 0 {
		t.Errorf("row = %+v", row)
	}
}
