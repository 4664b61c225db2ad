// Package cache keeps short-lived submission state outside the database.
package cache

import (
	"context"
	"errors"
	"time"

	"tableorder/internal/core/domain/model/kernel"
	"tableorder/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const defaultScope = "submit-order"

// releaseScript deletes the lock only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisIdempotencyStore shares idempotency keys between service instances.
// An in-flight key lives under "idemp:<scope>:<key>" holding the owner's token,
// the resulting order id under "idemp:map:<scope>:<key>".
type RedisIdempotencyStore struct {
	rdb   redis.Cmdable
	scope string
}

func NewRedisIdempotencyStore(rdb redis.Cmdable) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{rdb: rdb, scope: defaultScope}
}

func (s *RedisIdempotencyStore) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := kernel.NewUUID().String()
	ok, err := s.rdb.SetNX(ctx, s.lockKey(key), token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, s.rdb, []string{s.lockKey(key)}, token).Err()
}

func (s *RedisIdempotencyStore) Remember(ctx context.Context, key string, orderID kernel.UUID, ttl time.Duration) error {
	return s.rdb.Set(ctx, s.mapKey(key), orderID.String(), ttl).Err()
}

func (s *RedisIdempotencyStore) Recall(ctx context.Context, key string) (kernel.UUID, bool, error) {
	val, err := s.rdb.Get(ctx, s.mapKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return kernel.UUID{}, false, nil
	}
	if err != nil {
		return kernel.UUID{}, false, err
	}

	id, err := kernel.UUIDFromString(val)
	if err != nil {
		return kernel.UUID{}, false, err
	}
	return id, true, nil
}

func (s *RedisIdempotencyStore) lockKey(key string) string {
	return "idemp:" + s.scope + ":" + key
}

func (s *RedisIdempotencyStore) mapKey(key string) string {
	return "idemp:map:" + s.scope + ":" + key
}

var _ ports.IdempotencyStore = (*RedisIdempotencyStore)(nil)
