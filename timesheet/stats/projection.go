// timesheet/stats/projection.go
package stats

import (
	"fmt"
	"math"

	"github.com/adhils04/timesheets/shared/models"
)

// PersonStats is one row of the dashboard breakdown.
type PersonStats struct {
	Name             string            `json:"name"`
	Role             models.RosterRole `json:"role"`
	Month            int64             `json:"month"`
	Year             int64             `json:"year"`
	MonthLabel       string            `json:"monthLabel"`
	YearLabel        string            `json:"yearLabel"`
	MeetingsAttended int64             `json:"meetingsAttended"`
	AttendanceRate   int               `json:"attendanceRate"`
}

// Dashboard carries the UI-ready numbers derived from the aggregate document.
// Nothing in here is ever written back.
type Dashboard struct {
	MonthTotal     int64               `json:"monthTotal"`
	YearTotal      int64               `json:"yearTotal"`
	MonthLabel     string              `json:"monthLabel"`
	YearLabel      string              `json:"yearLabel"`
	ActiveCount    int64               `json:"activeCount"`
	ActiveFounders []string            `json:"activeFounders,omitempty"`
	Founders       []PersonStats       `json:"founders"`
	Employees      []PersonStats       `json:"employees"`
	Meetings       models.MeetingStats `json:"meetings"`
}

// Project derives dashboard numbers from the aggregate for a single forced
// person or for the unrestricted admin view.
//
// With a forced person, the displayed totals come from that person's own
// buckets rather than the global sums, activeCount collapses to 0 or 1 from
// the hasActive flag, and the breakdown is restricted to that person. With no
// forced person, global totals are used as-is and the full breakdown is
// partitioned by roster role.
func Project(agg *models.AggregateStats, roster []models.Founder, forced string, hasActive bool) *Dashboard {
	dash := &Dashboard{Meetings: agg.MeetingStats}
	if dash.Meetings.FounderStats == nil {
		dash.Meetings.FounderStats = map[string]int64{}
	}

	if forced != "" {
		bucket := agg.FounderStats[forced]
		dash.MonthTotal = bucket.Month
		dash.YearTotal = bucket.Year
		if hasActive {
			dash.ActiveCount = 1
		}
		role := models.RoleFounder
		for _, member := range roster {
			if member.Name == forced {
				role = member.Role
				break
			}
		}
		row := personRow(models.Founder{Name: forced, Role: role}, agg)
		if role == models.RoleEmployee {
			dash.Employees = []PersonStats{row}
		} else {
			dash.Founders = []PersonStats{row}
		}
	} else {
		dash.MonthTotal = agg.MonthTotal
		dash.YearTotal = agg.YearTotal
		dash.ActiveCount = agg.ActiveCount
		for _, member := range roster {
			row := personRow(member, agg)
			if member.Role == models.RoleEmployee {
				dash.Employees = append(dash.Employees, row)
			} else {
				dash.Founders = append(dash.Founders, row)
			}
		}
	}

	dash.MonthLabel = FormatDuration(dash.MonthTotal)
	dash.YearLabel = FormatDuration(dash.YearTotal)
	return dash
}

func personRow(member models.Founder, agg *models.AggregateStats) PersonStats {
	bucket := agg.FounderStats[member.Name]
	attended := agg.MeetingStats.FounderStats[member.Name]
	return PersonStats{
		Name:             member.Name,
		Role:             member.Role,
		Month:            bucket.Month,
		Year:             bucket.Year,
		MonthLabel:       FormatDuration(bucket.Month),
		YearLabel:        FormatDuration(bucket.Year),
		MeetingsAttended: attended,
		AttendanceRate:   AttendanceRate(attended, agg.MeetingStats.TotalMeetings),
	}
}

// FormatDuration renders milliseconds as "{hours}h {minutes}m", floored to the
// minute. A strictly positive duration under one minute renders as "< 1m" so
// a just-started session is distinguishable from a truly empty bucket.
func FormatDuration(ms int64) string {
	if ms <= 0 {
		return "0h 0m"
	}
	totalMinutes := ms / (1000 * 60)
	if totalMinutes == 0 {
		return "< 1m"
	}
	return fmt.Sprintf("%dh %dm", totalMinutes/60, totalMinutes%60)
}

// AttendanceRate returns attended/total as a rounded percentage, guarding the
// denominator so a roster with no recorded meetings reads 0% instead of
// dividing by zero.
func AttendanceRate(attended, totalMeetings int64) int {
	if totalMeetings < 1 {
		totalMeetings = 1
	}
	return int(math.Round(float64(attended) / float64(totalMeetings) * 100))
}
