// shared/models/meeting.go
package models

import "time"

// MeetingRecord represents one weekly-meeting day. The day key ("2006-01-02")
// is the document identity, so saving attendance for the same day twice is an
// edit of the existing record, never a second meeting.
type MeetingRecord struct {
	Date       string          `bson:"_id" json:"date"`
	Attendance map[string]bool `bson:"attendance" json:"attendance"`
	UpdatedAt  time.Time       `bson:"updated_at" json:"updatedAt"`
}
