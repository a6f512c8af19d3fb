// timesheet/store/session_store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	redisu "github.com/adhils04/timesheets/shared/redis" // Alias for shared Redis constants
	"github.com/redis/go-redis/v9"
)

// ActiveSession is the Redis-side marker for a founder's running entry. The
// authoritative record is the Mongo entry with a nil end time; this marker
// exists so the dashboard can list who is clocked in without a Mongo query.
type ActiveSession struct {
	EntryID   string `json:"entryId"`
	StartUnix int64  `json:"startUnix"`
}

// SessionStore manages active-session markers in Redis. Keys carry a TTL so a
// marker orphaned by a crash ages out on its own instead of pinning a founder
// as "working" forever.
type SessionStore struct {
	client     *redis.ClusterClient
	sessionTTL time.Duration
}

// NewSessionStore creates and returns a new SessionStore instance.
func NewSessionStore(client *redis.ClusterClient, sessionTTL time.Duration) *SessionStore {
	return &SessionStore{
		client:     client,
		sessionTTL: sessionTTL,
	}
}

// SetActiveSession marks a founder as clocked in, recording which entry backs
// the session and when it started.
func (ss *SessionStore) SetActiveSession(ctx context.Context, founder, entryID string, startTime time.Time) error {
	key := fmt.Sprintf(redisu.ActiveSessionKeyPrefix, founder)

	payload, err := json.Marshal(ActiveSession{EntryID: entryID, StartUnix: startTime.Unix()})
	if err != nil {
		return fmt.Errorf("failed to encode active session for %s: %w", founder, err)
	}

	if err := ss.client.Set(ctx, key, payload, ss.sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to set active session for %s in Redis: %w", founder, err)
	}

	log.Printf("Founder %s marked active with entry %s (TTL: %s)", founder, entryID, ss.sessionTTL)
	return nil
}

// GetActiveSession returns the founder's session marker, or (nil, nil) when
// they are not marked active.
func (ss *SessionStore) GetActiveSession(ctx context.Context, founder string) (*ActiveSession, error) {
	key := fmt.Sprintf(redisu.ActiveSessionKeyPrefix, founder)

	val, err := ss.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve active session for %s from Redis: %w", founder, err)
	}

	var session ActiveSession
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("invalid active session payload for %s in Redis: %w", founder, err)
	}
	return &session, nil
}

// ClearActiveSession removes a founder's session marker. Missing keys are not
// an error; the marker may have expired on its own.
func (ss *SessionStore) ClearActiveSession(ctx context.Context, founder string) error {
	key := fmt.Sprintf(redisu.ActiveSessionKeyPrefix, founder)
	deletedCount, err := ss.client.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to clear active session for %s from Redis: %w", founder, err)
	}

	if deletedCount > 0 {
		log.Printf("Founder %s's active session cleared from Redis.", founder)
	} else {
		log.Printf("Attempted to clear active session for %s, but none was set.", founder)
	}
	return nil
}

// RefreshActiveSession extends the TTL on a founder's session marker. Acts as
// a heartbeat while the session keeps running.
func (ss *SessionStore) RefreshActiveSession(ctx context.Context, founder string) error {
	key := fmt.Sprintf(redisu.ActiveSessionKeyPrefix, founder)

	success, err := ss.client.Expire(ctx, key, ss.sessionTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to refresh active session TTL for %s in Redis: %w", founder, err)
	}
	if !success {
		// Expire only succeeds on an existing key.
		return fmt.Errorf("no active session marker for %s: %w", founder, redisu.ErrRedisKeyNotFound)
	}
	return nil
}

// ActiveFounders retrieves everyone currently marked active with their session
// details. In a Redis Cluster this iterates over all master nodes.
func (ss *SessionStore) ActiveFounders(ctx context.Context) (map[string]ActiveSession, error) {
	active := make(map[string]ActiveSession)
	var mu sync.Mutex // Protects map writes from concurrent goroutines across cluster nodes.

	scanPattern := fmt.Sprintf(redisu.ActiveSessionKeyPrefix, "*")

	err := ss.client.ForEachMaster(ctx, func(ctx context.Context, client *redis.Client) error {
		if client == nil {
			log.Printf("Warning: Redis Cluster ForEachMaster provided a nil client, skipping node.")
			return nil
		}

		iter := client.Scan(ctx, 0, scanPattern, 0).Iterator()
		for iter.Next(ctx) {
			key := iter.Val()

			// Extract the founder name from the key (e.g., "active:{Adhil}:" -> "Adhil").
			startIdx := strings.Index(key, "{")
			endIdx := strings.Index(key, "}")
			if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
				log.Printf("Warning: Could not parse founder from malformed session key: %s. Skipping.", key)
				continue
			}
			founder := key[startIdx+1 : endIdx]

			val, err := client.Get(ctx, key).Result()
			if err != nil {
				log.Printf("Warning: Failed to get active session for %s (key: %s): %v. Skipping.", founder, key, err)
				continue
			}

			var session ActiveSession
			if err := json.Unmarshal([]byte(val), &session); err != nil {
				log.Printf("Warning: Invalid session payload for %s (key: %s). Skipping.", founder, key)
				continue
			}

			mu.Lock()
			active[founder] = session
			mu.Unlock()
		}
		return iter.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("error during scan of active sessions across Redis masters: %w", err)
	}

	return active, nil
}
