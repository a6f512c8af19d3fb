// timesheet/store/roster_store.go
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

// RosterStore represents the MongoDB data store for roster members. Names are
// the document identity, matching the keys of the aggregate's founder buckets.
type RosterStore struct {
	collection *mongo.Collection
}

// NewRosterStore creates a new RosterStore instance.
func NewRosterStore(collection *mongo.Collection) *RosterStore {
	return &RosterStore{
		collection: collection,
	}
}

// EnsureMembersExist seeds roster documents for the given names with the given
// role. Existing members keep their stored role; only genuinely new names are
// inserted, via $setOnInsert upserts.
func (rs *RosterStore) EnsureMembersExist(ctx context.Context, names []string, role models.RosterRole) error {
	now := time.Now()
	for _, name := range names {
		filter := bson.M{"_id": name}
		update := bson.M{"$setOnInsert": bson.M{"role": role, "created_at": &now}}
		opts := options.Update().SetUpsert(true)
		if _, err := rs.collection.UpdateOne(ctx, filter, update, opts); err != nil {
			return fmt.Errorf("failed to seed roster member %s: %w", name, err)
		}
	}
	return nil
}

// GetMember retrieves a roster member by name, or (nil, nil) when absent.
func (rs *RosterStore) GetMember(ctx context.Context, name string) (*models.Founder, error) {
	var member models.Founder
	err := rs.collection.FindOne(ctx, bson.M{"_id": name}).Decode(&member)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get roster member %s: %w", name, err)
	}
	return &member, nil
}

// ListRoster returns every roster member, founders before employees, each
// group in name order.
func (rs *RosterStore) ListRoster(ctx context.Context) ([]models.Founder, error) {
	opts := options.Find().SetSort(bson.D{{Key: "role", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := rs.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster: %w", err)
	}
	defer cursor.Close(ctx)

	var members []models.Founder
	if err := cursor.All(ctx, &members); err != nil {
		return nil, fmt.Errorf("failed to decode roster members: %w", err)
	}
	return members, nil
}
