package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"microshop/orders-service/domain"
)

const userKeyPrefix = "user:"

// Redis is an optional cache implementation that survives process restarts.
// Redis errors are logged and treated as a miss so the service degrades the
// same way the in-memory cache does, instead of failing requests.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis wraps the given client. A zero ttl keeps entries forever, matching
// the no-eviction contract of the in-memory cache.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl < 0 {
		ttl = 0
	}
	return &Redis{client: client, ttl: ttl}
}

// Put inserts or overwrites unconditionally.
func (r *Redis) Put(ctx context.Context, id string, u domain.User) {
	data, err := json.Marshal(u)
	if err != nil {
		log.WithError(err).WithField("user", id).Error("failed to marshal cache entry")
		return
	}
	if err := r.client.Set(ctx, userKeyPrefix+id, data, r.ttl).Err(); err != nil {
		log.WithError(err).WithField("user", id).Error("failed to store cache entry")
	}
}

// Get returns the last-applied snapshot for id.
func (r *Redis) Get(ctx context.Context, id string) (domain.User, bool) {
	data, err := r.client.Get(ctx, userKeyPrefix+id).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.WithError(err).WithField("user", id).Error("cache read failed")
		}
		return domain.User{}, false
	}
	var u domain.User
	if err := json.Unmarshal(data, &u); err != nil {
		// Unreadable entries are dropped so a later event can repopulate.
		_ = r.client.Del(ctx, userKeyPrefix+id).Err()
		return domain.User{}, false
	}
	return u, true
}

// Has reports whether a snapshot exists for id.
func (r *Redis) Has(ctx context.Context, id string) bool {
	_, ok := r.Get(ctx, id)
	return ok
}
