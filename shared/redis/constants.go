// shared/redis/constants.go
package redis

import "fmt"

const (
	// ActiveSessionKeyPrefix marks a founder's currently running entry: active:{<founder>}:
	// The value is a small JSON blob with the entry id and start timestamp.
	ActiveSessionKeyPrefix = "active:{%s}:"

	// StatsCacheKey holds a disposable JSON snapshot of the aggregate stats
	// document. Never authoritative; expires on its own.
	StatsCacheKey = "statscache:aggregate:"
)

// ErrRedisKeyNotFound is returned when a lookup hits a missing key.
var ErrRedisKeyNotFound = fmt.Errorf("redis key not found")
