// timesheet/service/stats_service.go
package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/adhils04/timesheets/shared/models"
	"github.com/adhils04/timesheets/timesheet/stats"
	"github.com/adhils04/timesheets/timesheet/store"
	"go.mongodb.org/mongo-driver/mongo"
)

// StatsService owns reads and rebuilds of the aggregate document. Reads go
// cache, then Mongo, then a full recompute when the document is missing, so a
// wiped or reset aggregate heals itself on the next request.
type StatsService struct {
	statsStore   *store.StatsStore
	entryStore   *store.EntryStore
	meetingStore *store.MeetingStore
	rosterStore  *store.RosterStore
	sessionStore *store.SessionStore
	statsCache   *store.StatsCache
}

// NewStatsService creates a new StatsService instance.
func NewStatsService(
	ss *store.StatsStore,
	es *store.EntryStore,
	ms *store.MeetingStore,
	rs *store.RosterStore,
	sess *store.SessionStore,
	cache *store.StatsCache,
) *StatsService {
	return &StatsService{
		statsStore:   ss,
		entryStore:   es,
		meetingStore: ms,
		rosterStore:  rs,
		sessionStore: sess,
		statsCache:   cache,
	}
}

// Stats returns the current aggregate, rebuilding it from the raw collections
// when the document is absent.
func (ss *StatsService) Stats(ctx context.Context) (*models.AggregateStats, error) {
	if cached, err := ss.statsCache.Get(ctx); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("WARNING: Stats cache read failed: %v. Falling back to MongoDB.", err)
	}

	agg, err := ss.statsStore.Get(ctx)
	if err == mongo.ErrNoDocuments {
		log.Println("INFO: Aggregate stats document missing. Rebuilding from raw collections.")
		return ss.Rebuild(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("service failed to load aggregate stats: %w", err)
	}

	if err := ss.statsCache.Set(ctx, agg); err != nil {
		log.Printf("WARNING: Failed to populate stats cache: %v", err)
	}
	return agg, nil
}

// Rebuild recomputes the aggregate from a full scan of entries and meetings,
// persists it, and refreshes the cache.
func (ss *StatsService) Rebuild(ctx context.Context) (*models.AggregateStats, error) {
	agg, err := ss.recompute(ctx)
	if err != nil {
		return nil, err
	}

	if err := ss.statsStore.Replace(ctx, agg); err != nil {
		return nil, fmt.Errorf("service failed to persist rebuilt aggregate: %w", err)
	}
	if err := ss.statsCache.Set(ctx, agg); err != nil {
		log.Printf("WARNING: Failed to refresh stats cache after rebuild: %v", err)
	}

	log.Printf("INFO: Aggregate stats rebuilt (yearTotal=%dms, monthTotal=%dms, active=%d)",
		agg.YearTotal, agg.MonthTotal, agg.ActiveCount)
	return agg, nil
}

// Verify recomputes the aggregate and compares it against the stored document
// without assuming either is right. On drift the recomputed document wins.
// Returns true when a correction was written.
func (ss *StatsService) Verify(ctx context.Context) (bool, error) {
	fresh, err := ss.recompute(ctx)
	if err != nil {
		return false, err
	}

	stored, err := ss.statsStore.Get(ctx)
	if err != nil && err != mongo.ErrNoDocuments {
		return false, fmt.Errorf("service failed to load aggregate for verification: %w", err)
	}
	if err == nil && stats.Equal(stored, fresh) {
		return false, nil
	}

	if err := ss.statsStore.Replace(ctx, fresh); err != nil {
		return false, fmt.Errorf("service failed to write corrected aggregate: %w", err)
	}
	if err := ss.statsCache.Set(ctx, fresh); err != nil {
		log.Printf("WARNING: Failed to refresh stats cache after correction: %v", err)
	}
	return true, nil
}

// Reset deletes the aggregate document and cache so the next read rebuilds
// from scratch. Admin escape hatch.
func (ss *StatsService) Reset(ctx context.Context) error {
	if err := ss.statsStore.Delete(ctx); err != nil {
		return fmt.Errorf("service failed to reset aggregate stats: %w", err)
	}
	if err := ss.statsCache.Invalidate(ctx); err != nil {
		log.Printf("WARNING: Failed to invalidate stats cache on reset: %v", err)
	}
	log.Println("INFO: Aggregate stats document reset. Next read will rebuild.")
	return nil
}

// Dashboard assembles the UI-ready view. A forced founder sees only their own
// numbers with a 0/1 active flag from their own running entry; the admin view
// carries global totals plus the live list of active founders from Redis.
func (ss *StatsService) Dashboard(ctx context.Context, forced string) (*stats.Dashboard, error) {
	agg, err := ss.Stats(ctx)
	if err != nil {
		return nil, err
	}

	var roster []models.Founder
	hasActive := false
	if forced != "" {
		// The forced view only needs its own roster document, not the full list.
		member, err := ss.rosterStore.GetMember(ctx, forced)
		if err != nil {
			return nil, fmt.Errorf("service failed to load roster member %s: %w", forced, err)
		}
		if member != nil {
			roster = []models.Founder{*member}
		}

		entry, err := ss.entryStore.FindRunningEntry(ctx, forced)
		if err != nil {
			return nil, fmt.Errorf("service failed to check running entry for %s: %w", forced, err)
		}
		hasActive = entry != nil
	} else {
		roster, err = ss.rosterStore.ListRoster(ctx)
		if err != nil {
			return nil, fmt.Errorf("service failed to load roster for dashboard: %w", err)
		}
	}

	dash := stats.Project(agg, roster, forced, hasActive)

	if forced == "" {
		active, err := ss.sessionStore.ActiveFounders(ctx)
		if err != nil {
			log.Printf("WARNING: Failed to list active founders from Redis: %v", err)
		} else {
			for name := range active {
				dash.ActiveFounders = append(dash.ActiveFounders, name)
			}
			sort.Strings(dash.ActiveFounders)
		}
	}
	return dash, nil
}

// recompute runs the pure rebuild over full scans of both raw collections.
func (ss *StatsService) recompute(ctx context.Context) (*models.AggregateStats, error) {
	entries, err := ss.entryStore.AllEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("service failed to scan entries for rebuild: %w", err)
	}
	meetings, err := ss.meetingStore.AllMeetings(ctx)
	if err != nil {
		return nil, fmt.Errorf("service failed to scan meetings for rebuild: %w", err)
	}
	return stats.Rebuild(entries, meetings, time.Now()), nil
}
