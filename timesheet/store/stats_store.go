// timesheet/store/stats_store.go
package store

import (
	"context"
	"fmt"

	"github.com/adhils04/timesheets/shared/models"
	"github.com/adhils04/timesheets/timesheet/stats"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AggregateDocID is the fixed identity of the single stats document.
const AggregateDocID = "aggregate"

// StatsStore represents the MongoDB data store for the denormalized aggregate
// document. Every mutation goes through ApplyDelta as per-field $inc on an
// upsert, so concurrent writers merge instead of overwriting each other; the
// only full-document writes are the rebuild paths.
type StatsStore struct {
	collection *mongo.Collection
}

// NewStatsStore creates a new StatsStore instance.
func NewStatsStore(collection *mongo.Collection) *StatsStore {
	return &StatsStore{
		collection: collection,
	}
}

// Get retrieves the aggregate document. Returns mongo.ErrNoDocuments when it
// has never been written or was reset; callers treat that as "rebuild needed".
func (ss *StatsStore) Get(ctx context.Context) (*models.AggregateStats, error) {
	var agg models.AggregateStats
	err := ss.collection.FindOne(ctx, bson.M{"_id": AggregateDocID}).Decode(&agg)
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

// ApplyDelta merges a delta into the aggregate document as dotted-path
// increments with upsert. Missing fields spring into existence at the
// increment value, so the very first write against an absent document is
// already correct.
func (ss *StatsStore) ApplyDelta(ctx context.Context, delta stats.Delta) error {
	if delta.IsZero() {
		return nil
	}

	inc := deltaIncrements(delta)
	opts := options.Update().SetUpsert(true)
	_, err := ss.collection.UpdateOne(ctx, bson.M{"_id": AggregateDocID}, bson.M{"$inc": inc}, opts)
	if err != nil {
		return fmt.Errorf("failed to apply stats delta: %w", err)
	}
	return nil
}

// deltaIncrements renders a delta as the dotted-path increment document the
// merge upsert applies. Zero fields are omitted so the write touches only the
// counters that actually moved.
func deltaIncrements(delta stats.Delta) bson.M {
	inc := bson.M{}
	if delta.MonthTotal != 0 {
		inc["monthTotal"] = delta.MonthTotal
	}
	if delta.YearTotal != 0 {
		inc["yearTotal"] = delta.YearTotal
	}
	if delta.ActiveCount != 0 {
		inc["activeCount"] = delta.ActiveCount
	}
	for name, bucket := range delta.Founders {
		if bucket.Month != 0 {
			inc["founderStats."+name+".month"] = bucket.Month
		}
		if bucket.Year != 0 {
			inc["founderStats."+name+".year"] = bucket.Year
		}
	}
	if delta.Meetings.TotalMeetings != 0 {
		inc["meetingStats.totalMeetings"] = delta.Meetings.TotalMeetings
	}
	if delta.Meetings.YearlyTotal != 0 {
		inc["meetingStats.yearlyTotal"] = delta.Meetings.YearlyTotal
	}
	for name, n := range delta.Meetings.Founders {
		if n != 0 {
			inc["meetingStats.founderStats."+name] = n
		}
	}
	return inc
}

// Replace overwrites the aggregate document with a freshly rebuilt one.
func (ss *StatsStore) Replace(ctx context.Context, agg *models.AggregateStats) error {
	doc := bson.M{
		"_id":          AggregateDocID,
		"monthTotal":   agg.MonthTotal,
		"yearTotal":    agg.YearTotal,
		"activeCount":  agg.ActiveCount,
		"founderStats": agg.FounderStats,
		"meetingStats": agg.MeetingStats,
	}
	opts := options.Replace().SetUpsert(true)
	_, err := ss.collection.ReplaceOne(ctx, bson.M{"_id": AggregateDocID}, doc, opts)
	if err != nil {
		return fmt.Errorf("failed to replace aggregate stats document: %w", err)
	}
	return nil
}

// Delete removes the aggregate document so the next read triggers a rebuild.
func (ss *StatsStore) Delete(ctx context.Context) error {
	_, err := ss.collection.DeleteOne(ctx, bson.M{"_id": AggregateDocID})
	if err != nil {
		return fmt.Errorf("failed to delete aggregate stats document: %w", err)
	}
	return nil
}
