// shared/models/entry.go
package models

import "time"

// EntryStatus describes how a time entry came to be and whether it is still running.
type EntryStatus string

const (
	EntryStatusActive    EntryStatus = "active"    // clocked in, no end time yet
	EntryStatusCompleted EntryStatus = "completed" // clocked out normally
	EntryStatusManual    EntryStatus = "manual"    // logged after the fact with explicit times
)

// TimeEntry represents a single work session stored persistently in MongoDB.
// A running session has a nil EndTime; everything else is completed.
type TimeEntry struct {
	ID        string      `bson:"_id" json:"id"`
	Founder   string      `bson:"founder" json:"founder"`
	Task      string      `bson:"task" json:"task"`
	StartTime time.Time   `bson:"start_time" json:"startTime"`
	EndTime   *time.Time  `bson:"end_time,omitempty" json:"endTime,omitempty"`
	Status    EntryStatus `bson:"status" json:"status"`
}

// Running reports whether the entry is still open (no end time recorded).
func (e *TimeEntry) Running() bool {
	return e.EndTime == nil
}

// Duration returns the recorded length of a completed entry. Zero for running entries.
func (e *TimeEntry) Duration() time.Duration {
	if e.EndTime == nil {
		return 0
	}
	return e.EndTime.Sub(e.StartTime)
}
