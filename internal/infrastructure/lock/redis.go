package lock

import (
	"context"
	"fmt"
	"time"

	"flight-event-mock-service/internal/domain/repository"
	"flight-event-mock-service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const retryInterval = 100 * time.Millisecond

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker serializes flights across replicas with SET NX PX
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger logger.Logger
}

// NewRedisLocker creates a distributed flight locker
func NewRedisLocker(client *redis.Client, ttl time.Duration, logger logger.Logger) repository.FlightLocker {
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		prefix: "flight-event-mock:lock:",
		logger: logger,
	}
}

func (l *RedisLocker) key(flightID uint) string {
	return fmt.Sprintf("%s%d", l.prefix, flightID)
}

// Lock retries until the key is acquired or ctx is done. The returned unlock
// only deletes the key while it still holds this caller's token.
func (l *RedisLocker) Lock(ctx context.Context, flightID uint) (func(), error) {
	key := l.key(flightID)
	token := uuid.NewString()

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
		l.logger.Warn("Failed to release flight lock", "key", key, "error", err)
	}
}
