// timesheet/rebuilder/rebuilder.go
package rebuilder

import (
	"context"
	"log"
	"time"

	cluster "github.com/adhils04/timesheets/shared/cluster"
	"github.com/adhils04/timesheets/shared/config"
	"github.com/adhils04/timesheets/shared/registry"
	"github.com/adhils04/timesheets/timesheet/service"
)

// RebuildTaskKey is hashed onto the ring so exactly one replica runs the
// periodic verification at a time.
const RebuildTaskKey = "stats_rebuild_task"

// Rebuilder periodically recomputes the aggregate stats document from the raw
// collections and overwrites the stored one when they disagree. It is the
// self-healing backstop for deltas that were lost to crashes or partial
// failures; in a multi-replica deployment only the ring owner of
// RebuildTaskKey actually runs the scan.
type Rebuilder struct {
	config            *config.TimesheetServiceConfig
	assignmentManager *cluster.ServiceAssignmentManager
	statsService      *service.StatsService
	serviceRegistrar  *registry.ServiceRegistrar
	ctx               context.Context
	cancel            context.CancelFunc
}

// NewRebuilder creates a new Rebuilder instance.
func NewRebuilder(
	cfg *config.TimesheetServiceConfig,
	registryClient *registry.RegistryClient,
	statsService *service.StatsService,
	serviceRegistrar *registry.ServiceRegistrar,
) *Rebuilder {
	log.Println("Rebuilder: Initialized.")
	ctx, cancel := context.WithCancel(context.Background())

	assignmentManager := cluster.NewServiceAssignmentManager(
		registryClient,
		serviceRegistrar,
		cfg.HeartbeatInterval, // Ring refresh rides the heartbeat cadence.
	)

	return &Rebuilder{
		config:            cfg,
		assignmentManager: assignmentManager,
		statsService:      statsService,
		serviceRegistrar:  serviceRegistrar,
		ctx:               ctx,
		cancel:            cancel,
	}
}

// Start initiates the periodic verification loop. This should be run in a goroutine.
func (rb *Rebuilder) Start() {
	log.Printf("Rebuilder starting with interval: %v", rb.config.RebuildInterval)
	ticker := time.NewTicker(rb.config.RebuildInterval)
	defer ticker.Stop()

	go rb.assignmentManager.Start()

	for {
		select {
		case <-rb.ctx.Done():
			log.Println("Rebuilder shutting down.")
			rb.assignmentManager.Stop()
			return
		case <-ticker.C:
			rb.performRebuildTick()
		}
	}
}

// Stop gracefully stops the verification loop.
func (rb *Rebuilder) Stop() {
	rb.cancel()
}

// performRebuildTick runs one verification pass if this instance owns the task.
func (rb *Rebuilder) performRebuildTick() {
	isResponsible, err := rb.assignmentManager.IsResponsible(RebuildTaskKey)
	if err != nil {
		log.Printf("WARNING: Rebuilder: Failed to check task responsibility: %v", err)
		return
	}
	if !isResponsible {
		return
	}

	ctx, cancel := context.WithTimeout(rb.ctx, rb.config.RebuildTimeout)
	defer cancel()

	corrected, err := rb.statsService.Verify(ctx)
	if err != nil {
		log.Printf("ERROR: Rebuilder: Verification pass failed: %v", err)
		return
	}
	if corrected {
		log.Println("WARNING: Rebuilder: Aggregate stats had drifted and were corrected.")
	}
}
