// timesheet/store/meeting_store.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/adhils04/timesheets/shared/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MeetingStore represents the MongoDB data store for per-day meeting
// attendance records, keyed by the "2006-01-02" day string.
type MeetingStore struct {
	collection *mongo.Collection
}

// NewMeetingStore creates a new MeetingStore instance.
func NewMeetingStore(collection *mongo.Collection) *MeetingStore {
	return &MeetingStore{
		collection: collection,
	}
}

// GetMeeting retrieves the record for a day key, or (nil, nil) when no meeting
// has been recorded for that day yet.
func (ms *MeetingStore) GetMeeting(ctx context.Context, dayKey string) (*models.MeetingRecord, error) {
	var record models.MeetingRecord
	err := ms.collection.FindOne(ctx, bson.M{"_id": dayKey}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting record for %s: %w", dayKey, err)
	}
	return &record, nil
}

// SaveMeeting upserts a day's attendance by merging the given map into the
// stored one field by field. Names absent from the map keep their stored
// value, so two people saving different subsets of the roster do not clobber
// each other.
func (ms *MeetingStore) SaveMeeting(ctx context.Context, dayKey string, attendance map[string]bool) error {
	set := bson.M{"updated_at": time.Now()}
	for name, attending := range attendance {
		set["attendance."+name] = attending
	}

	opts := options.Update().SetUpsert(true)
	_, err := ms.collection.UpdateOne(ctx, bson.M{"_id": dayKey}, bson.M{"$set": set}, opts)
	if err != nil {
		return fmt.Errorf("failed to save meeting record for %s: %w", dayKey, err)
	}
	return nil
}

// AllMeetings streams every meeting record for the aggregate rebuild.
func (ms *MeetingStore) AllMeetings(ctx context.Context) ([]models.MeetingRecord, error) {
	cursor, err := ms.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to scan all meeting records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.MeetingRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode meeting records: %w", err)
	}
	return records, nil
}
