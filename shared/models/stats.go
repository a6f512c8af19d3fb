// shared/models/stats.go
package models

// FounderBucket holds one person's accumulated work durations in milliseconds,
// restricted to the current calendar month and year at accounting time.
type FounderBucket struct {
	Month int64 `bson:"month" json:"month"`
	Year  int64 `bson:"year" json:"year"`
}

// MeetingStats holds the denormalized meeting counters.
type MeetingStats struct {
	TotalMeetings int64            `bson:"totalMeetings" json:"totalMeetings"`
	YearlyTotal   int64            `bson:"yearlyTotal" json:"yearlyTotal"`
	FounderStats  map[string]int64 `bson:"founderStats" json:"founderStats"`
}

// AggregateStats is the single denormalized summary document the dashboard
// reads. It is maintained through additive field increments on every entry or
// meeting mutation and rebuilt from a full scan when missing. Durations are
// milliseconds; the month/year buckets mean "the calendar month/year that was
// current when the contribution was accounted".
type AggregateStats struct {
	MonthTotal   int64                    `bson:"monthTotal" json:"monthTotal"`
	YearTotal    int64                    `bson:"yearTotal" json:"yearTotal"`
	ActiveCount  int64                    `bson:"activeCount" json:"activeCount"`
	FounderStats map[string]FounderBucket `bson:"founderStats" json:"founderStats"`
	MeetingStats MeetingStats             `bson:"meetingStats" json:"meetingStats"`
}
