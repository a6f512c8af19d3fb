package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adhils04/timesheets/shared/api"
	"github.com/adhils04/timesheets/shared/config"
	"github.com/adhils04/timesheets/shared/models"
	"github.com/adhils04/timesheets/shared/mongodb"
	redisu "github.com/adhils04/timesheets/shared/redis"
	"github.com/adhils04/timesheets/shared/registry"
	timesheetapi "github.com/adhils04/timesheets/timesheet/api"
	"github.com/adhils04/timesheets/timesheet/rebuilder"
	"github.com/adhils04/timesheets/timesheet/service"
	"github.com/adhils04/timesheets/timesheet/store"
)

func main() {
	// --- 1. Load Configuration ---
	cfg, err := config.LoadTimesheetServiceConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded for Timesheet Service. Listening on: %s", cfg.ListenAddr)

	// --- 2. Connect to MongoDB ---
	mongoClient, err := mongodb.NewClient(cfg.MongoDBConnStr, cfg.MongoDBDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Printf("Error disconnecting MongoDB client: %v", err)
		}
	}()

	// --- 3. Connect to Redis Cluster ---
	redisClient, err := redisu.NewRedisClusterClient(cfg.RedisAddrs, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis Cluster: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
		}
		log.Println("Redis Client closed.")
	}()

	// --- 4. Initialize Data Stores ---
	entryStore := store.NewEntryStore(mongoClient.Collection(cfg.MongoDBEntriesCollection))
	meetingStore := store.NewMeetingStore(mongoClient.Collection(cfg.MongoDBMeetingsCollection))
	statsStore := store.NewStatsStore(mongoClient.Collection(cfg.MongoDBStatsCollection))
	rosterStore := store.NewRosterStore(mongoClient.Collection(cfg.MongoDBRosterCollection))
	sessionStore := store.NewSessionStore(redisClient, cfg.ActiveSessionTTL)
	statsCache := store.NewStatsCache(redisClient, cfg.StatsCacheTTL)

	// --- 5. Seed the Roster ---
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := rosterStore.EnsureMembersExist(seedCtx, cfg.DefaultFounders, models.RoleFounder); err != nil {
		log.Fatalf("Failed to seed founder roster: %v", err)
	}
	if err := rosterStore.EnsureMembersExist(seedCtx, cfg.DefaultEmployees, models.RoleEmployee); err != nil {
		log.Fatalf("Failed to seed employee roster: %v", err)
	}
	seedCancel()
	log.Printf("Roster seeded (%d founders, %d employees).", len(cfg.DefaultFounders), len(cfg.DefaultEmployees))

	// --- 6. Initialize Business Logic Services ---
	timesheetService := service.NewTimesheetService(entryStore, statsStore, sessionStore, statsCache)
	meetingService := service.NewMeetingService(meetingStore, rosterStore, statsStore, statsCache)
	statsService := service.NewStatsService(statsStore, entryStore, meetingStore, rosterStore, sessionStore, statsCache)
	log.Println("Timesheet Service business logic initialized.")

	// --- 7. Initialize API Handlers ---
	apiHandlers := timesheetapi.NewTimesheetAPIHandlers(timesheetService, meetingService, statsService)

	// --- 8. Initialize and Start Service Registrar ---
	registrar := registry.NewServiceRegistrar(redisClient, "timesheet-service", &cfg.CommonConfig)
	go registrar.Start()
	defer registrar.Stop()
	log.Printf("Service registrar started for 'timesheet-service' with Address: %s", cfg.ListenAddr)

	registryClient := registry.NewRegistryClient(redisClient, cfg.HeartbeatTTL)

	// --- 9. Start the Periodic Rebuild Job ---
	rebuildJob := rebuilder.NewRebuilder(cfg, registryClient, statsService, registrar)
	go rebuildJob.Start()
	defer rebuildJob.Stop()

	// --- 10. Setup HTTP Server and Register Routes ---
	baseServer := api.NewBaseServer(cfg.ListenAddr, log.Default())
	apiHandlers.RegisterRoutes(baseServer.Router)
	log.Println("HTTP routes registered.")

	// --- 11. Start HTTP Server ---
	go func() {
		log.Printf("HTTP server starting on %s...", cfg.ListenAddr)
		if err := baseServer.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed to start: %v", err)
		}
	}()

	// --- 12. Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down Timesheet Service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := baseServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("HTTP server graceful shutdown failed: %v", err)
	}
	log.Println("Timesheet Service gracefully shut down.")
}
