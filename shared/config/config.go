// shared/config/config.go
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// CommonConfig holds configuration fields shared by every service instance.
type CommonConfig struct {
	RedisAddrs              []string      // Redis server addresses (e.g., "redis-cluster:6379")
	RedisPassword           string        // Redis password for authentication
	HeartbeatInterval       time.Duration // How often to heartbeat into the registry (e.g., 5s)
	HeartbeatTTL            time.Duration // How long an instance counts as alive without a heartbeat (e.g., 15s)
	RegistryCleanupInterval time.Duration // How often stale registry entries are actively cleaned (e.g., 30s)
	ServiceIP               string        // The IP this instance advertises for registration (Kubernetes Pod IP)
	ServicePort             int           // The port this instance listens on, used for registration
}

// TimesheetServiceConfig holds configuration specific to the timesheet service.
type TimesheetServiceConfig struct {
	CommonConfig                            // Embed CommonConfig
	ListenAddr                string        // Address for the HTTP server (e.g., ":8080")
	MongoDBConnStr            string        // MongoDB connection string
	MongoDBDatabase           string        // MongoDB database name (e.g., "timesheets")
	MongoDBEntriesCollection  string        // Collection for time entries
	MongoDBMeetingsCollection string        // Collection for meeting attendance records
	MongoDBStatsCollection    string        // Collection holding the singleton aggregate document
	MongoDBRosterCollection   string        // Collection for the founder/employee roster
	RebuildInterval           time.Duration // How often the leader verifies the aggregate against a full scan
	RebuildTimeout            time.Duration // Timeout for one full recompute pass
	StatsCacheTTL             time.Duration // Expiry for the Redis aggregate snapshot cache
	ActiveSessionTTL          time.Duration // Expiry for a founder's active-session marker without a refresh
	DefaultFounders           []string      // Roster seeded on startup with the founder role
	DefaultEmployees          []string      // Roster seeded on startup with the employee role
}

// LoadCommonConfig loads common configuration from environment variables.
func LoadCommonConfig() (CommonConfig, error) {
	cfg := CommonConfig{}
	var err error

	redisAddrsStr := os.Getenv("REDIS_ADDRS")
	if redisAddrsStr == "" {
		cfg.RedisAddrs = []string{"redis-cluster-headless.timesheets.svc.cluster.local:6379"} // Default for K8s Service
	} else {
		for _, addr := range strings.Split(redisAddrsStr, ",") {
			cfg.RedisAddrs = append(cfg.RedisAddrs, strings.TrimSpace(addr))
		}
	}

	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	cfg.HeartbeatInterval, err = getDuration("SERVICE_HEARTBEAT_INTERVAL", 5*time.Second)
	if err != nil {
		return cfg, err
	}
	cfg.HeartbeatTTL, err = getDuration("SERVICE_HEARTBEAT_TTL", 15*time.Second)
	if err != nil {
		return cfg, err
	}
	cfg.RegistryCleanupInterval, err = getDuration("SERVICE_REGISTRY_CLEANUP_INTERVAL", 30*time.Second)
	if err != nil {
		return cfg, err
	}

	cfg.ServiceIP = os.Getenv("POD_IP") // Injected by Kubernetes
	if cfg.ServiceIP == "" {
		// Fallback for local development outside K8s or if not injected
		cfg.ServiceIP = "0.0.0.0"
		fmt.Printf("WARNING: POD_IP not set, defaulting ServiceIP to %s\n", cfg.ServiceIP)
	}

	return cfg, nil
}

// LoadTimesheetServiceConfig loads configuration for the timesheet service.
func LoadTimesheetServiceConfig() (*TimesheetServiceConfig, error) {
	common, err := LoadCommonConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load common config for timesheet-service: %w", err)
	}

	cfg := &TimesheetServiceConfig{
		CommonConfig:              common,
		ListenAddr:                os.Getenv("TIMESHEET_SERVICE_LISTEN_ADDR"),
		MongoDBConnStr:            os.Getenv("MONGODB_CONN_STR"),
		MongoDBDatabase:           os.Getenv("MONGODB_DATABASE"),
		MongoDBEntriesCollection:  os.Getenv("MONGODB_ENTRIES_COLLECTION"),
		MongoDBMeetingsCollection: os.Getenv("MONGODB_MEETINGS_COLLECTION"),
		MongoDBStatsCollection:    os.Getenv("MONGODB_STATS_COLLECTION"),
		MongoDBRosterCollection:   os.Getenv("MONGODB_ROSTER_COLLECTION"),
		DefaultFounders:           splitList(os.Getenv("DEFAULT_FOUNDERS"), []string{"Adhil", "Akhil", "Akshay"}),
		DefaultEmployees:          splitList(os.Getenv("DEFAULT_EMPLOYEES"), nil),
	}

	// Apply defaults
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.MongoDBConnStr == "" {
		cfg.MongoDBConnStr = "mongodb://mongodb-service:27017" // Default for K8s internal DNS
	}
	if cfg.MongoDBDatabase == "" {
		cfg.MongoDBDatabase = "timesheets"
	}
	if cfg.MongoDBEntriesCollection == "" {
		cfg.MongoDBEntriesCollection = "timesheets"
	}
	if cfg.MongoDBMeetingsCollection == "" {
		cfg.MongoDBMeetingsCollection = "meeting_attendance"
	}
	if cfg.MongoDBStatsCollection == "" {
		cfg.MongoDBStatsCollection = "stats"
	}
	if cfg.MongoDBRosterCollection == "" {
		cfg.MongoDBRosterCollection = "founders"
	}

	cfg.RebuildInterval, err = getDuration("STATS_REBUILD_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.RebuildTimeout, err = getDuration("STATS_REBUILD_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.StatsCacheTTL, err = getDuration("STATS_CACHE_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.ActiveSessionTTL, err = getDuration("ACTIVE_SESSION_TTL", 12*time.Hour)
	if err != nil {
		return nil, err
	}

	// Extract ServicePort from ListenAddr
	cfg.ServicePort, err = extractPort(cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to extract port from TIMESHEET_SERVICE_LISTEN_ADDR '%s': %w", cfg.ListenAddr, err)
	}

	return cfg, nil
}

// Helper function to parse duration from environment variable
func getDuration(envKey string, defaultVal time.Duration) (time.Duration, error) {
	valStr := os.Getenv(envKey)
	if valStr == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("invalid duration format for %s: %w", envKey, err)
	}
	return d, nil
}

// splitList parses a comma-separated environment value, falling back to defaults.
func splitList(val string, defaultVal []string) []string {
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

// extractPort extracts the numeric port from a listen address (e.g., ":8080" -> 8080, "0.0.0.0:8080" -> 8080)
func extractPort(listenAddr string) (int, error) {
	_, portStr, err := net.SplitHostPort(listenAddr)
	if err != nil {
		// If SplitHostPort fails, check if ListenAddr is just a port (e.g., ":8080")
		if strings.HasPrefix(listenAddr, ":") {
			portStr = strings.TrimPrefix(listenAddr, ":")
		} else {
			return 0, fmt.Errorf("invalid ListenAddr format for port extraction: %w", err)
		}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid port number '%s': %w", portStr, err)
	}
	return port, nil
}
