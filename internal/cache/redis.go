package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"example.com/fleetcontrol/config"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// ErrDisabled is returned by every operation when the cache is not enabled.
var ErrDisabled = errors.New("snapshot cache is disabled")

// SnapshotCache persists each store's last known-good collection in Redis so
// a restarted process can present data before its first fetch completes. It
// is a warm-start convenience only; the stores never treat it as a source of
// truth.
type SnapshotCache struct {
	client  *redis.Client
	ttl     time.Duration
	enabled bool
}

// NewSnapshotCache connects to Redis when the cache is enabled. A disabled
// cache is valid and rejects every operation with ErrDisabled.
func NewSnapshotCache(cfg config.RedisConfig) (*SnapshotCache, error) {
	if !cfg.Enabled {
		return &SnapshotCache{enabled: false}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to Redis")
	}

	return &SnapshotCache{
		client:  client,
		ttl:     cfg.SnapshotTTL,
		enabled: true,
	}, nil
}

// Enabled reports whether the cache is live.
func (c *SnapshotCache) Enabled() bool { return c != nil && c.enabled }

// Save stores a collection snapshot under the given key.
func (c *SnapshotCache) Save(ctx context.Context, key string, collection interface{}) error {
	if !c.Enabled() {
		return ErrDisabled
	}

	data, err := json.Marshal(collection)
	if err != nil {
		return errors.Wrap(err, "failed to marshal snapshot")
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to store snapshot in Redis")
	}
	return nil
}

// Load reads a collection snapshot into out. A missing key is an error; the
// caller treats any failure as "no warm start available".
func (c *SnapshotCache) Load(ctx context.Context, key string, out interface{}) error {
	if !c.Enabled() {
		return ErrDisabled
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return errors.Wrap(err, "no snapshot stored")
		}
		return errors.Wrap(err, "failed to read snapshot from Redis")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "failed to unmarshal snapshot")
	}
	return nil
}

// Close releases the Redis connection.
func (c *SnapshotCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// VehiclesKey is the snapshot key for the vehicle collection.
func VehiclesKey() string { return "snapshot:vehicles" }

// CheckoutsKey is the snapshot key for the checkout event collection.
func CheckoutsKey() string { return "snapshot:checkout-events" }

// CheckInsKey is the snapshot key for the check-in event collection.
func CheckInsKey() string { return "snapshot:checkin-events" }
