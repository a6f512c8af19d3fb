// shared/models/roster.go
package models

import "time"

// RosterRole partitions the dashboard breakdown.
type RosterRole string

const (
	RoleFounder  RosterRole = "founder"
	RoleEmployee RosterRole = "employee"
)

// Founder is a roster member. The display name doubles as the document
// identity and as the key into AggregateStats.FounderStats, so renaming a
// person orphans their old buckets until the next full rebuild.
type Founder struct {
	Name      string     `bson:"_id" json:"name"`
	Role      RosterRole `bson:"role" json:"role"`
	CreatedAt *time.Time `bson:"created_at,omitempty" json:"createdAt,omitempty"`
}
