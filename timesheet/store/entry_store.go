// timesheet/store/entry_store.go
package store

import (
	"context"
	"fmt"

	"github.com/adhils04/timesheets/shared/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EntryStore represents the MongoDB data store for raw time entries. Entries
// are the immutable-ish event log; all denormalized numbers live elsewhere.
type EntryStore struct {
	collection *mongo.Collection
}

// NewEntryStore creates a new EntryStore instance.
func NewEntryStore(collection *mongo.Collection) *EntryStore {
	return &EntryStore{
		collection: collection,
	}
}

// CreateEntry inserts a new time entry, assigning a fresh ID when the caller
// left it blank.
func (es *EntryStore) CreateEntry(ctx context.Context, entry *models.TimeEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	_, err := es.collection.InsertOne(ctx, entry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("time entry %s already exists", entry.ID)
		}
		return fmt.Errorf("failed to create time entry %s: %w", entry.ID, err)
	}
	return nil
}

// GetEntry retrieves a time entry by its ID.
func (es *EntryStore) GetEntry(ctx context.Context, id string) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	filter := bson.M{"_id": id}
	err := es.collection.FindOne(ctx, filter).Decode(&entry)
	if err != nil {
		return nil, err // Return mongo.ErrNoDocuments if not found
	}
	return &entry, nil
}

// CompleteEntry stamps the end time and final status on a running entry.
func (es *EntryStore) CompleteEntry(ctx context.Context, id string, entry *models.TimeEntry) error {
	filter := bson.M{"_id": id}
	update := bson.M{"$set": bson.M{"end_time": entry.EndTime, "status": entry.Status}}
	res, err := es.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to complete time entry %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("time entry %s not found for completion", id)
	}
	return nil
}

// UpdateEntryTimes rewrites an entry's founder, task and recorded interval.
// Used by the edit path after the old contribution has been debited.
func (es *EntryStore) UpdateEntryTimes(ctx context.Context, id string, entry *models.TimeEntry) error {
	filter := bson.M{"_id": id}
	update := bson.M{"$set": bson.M{
		"founder":    entry.Founder,
		"task":       entry.Task,
		"start_time": entry.StartTime,
		"end_time":   entry.EndTime,
		"status":     entry.Status,
	}}
	res, err := es.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update time entry %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("time entry %s not found for update", id)
	}
	return nil
}

// DeleteEntry removes a time entry by ID.
func (es *EntryStore) DeleteEntry(ctx context.Context, id string) error {
	res, err := es.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete time entry %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// FindRunningEntry returns the newest open entry (nil end time) for a founder,
// or (nil, nil) when they have nothing running.
func (es *EntryStore) FindRunningEntry(ctx context.Context, founder string) (*models.TimeEntry, error) {
	filter := bson.M{"founder": founder, "end_time": nil}
	opts := options.FindOne().SetSort(bson.D{{Key: "start_time", Value: -1}})

	var entry models.TimeEntry
	err := es.collection.FindOne(ctx, filter, opts).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find running entry for %s: %w", founder, err)
	}
	return &entry, nil
}

// ListRecent returns up to limit entries sorted newest first, optionally
// filtered to a single founder.
func (es *EntryStore) ListRecent(ctx context.Context, founder string, limit int64) ([]models.TimeEntry, error) {
	filter := bson.M{}
	if founder != "" {
		filter["founder"] = founder
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := es.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.TimeEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode recent entries: %w", err)
	}
	return entries, nil
}

// AllEntries streams the full entry collection. Feeds the aggregate rebuild,
// so it deliberately has no filter or limit.
func (es *EntryStore) AllEntries(ctx context.Context) ([]models.TimeEntry, error) {
	cursor, err := es.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to scan all time entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.TimeEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode time entries: %w", err)
	}
	return entries, nil
}
