package window

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "github.com/teddybearwork/pickme/pkg/domain"
)

const (
	// Redis key prefix for rate limit counters
	counterKeyPrefix = "rl:officer:"

	// counterTTL must outlive the retention horizon so a bucket expires on
	// its own after it stops being read.
	counterTTL = retainBuckets * time.Hour
)

// RedisStore keeps hour-bucket counters in Redis. This is the
// production-recommended implementation when multiple instances share rate
// limit state.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func counterKey(officerID id.OfficerID, bucket time.Time) string {
	return fmt.Sprintf("%s%s:%d", counterKeyPrefix, officerID.String(), bucket.Unix())
}

// Increment bumps the bucket counter and stamps a TTL in one pipeline. The
// TTL refresh on every increment is harmless and avoids a racy first-write
// check.
func (s *RedisStore) Increment(ctx context.Context, officerID id.OfficerID, bucket time.Time) (int, error) {
	key := counterKey(officerID, bucket)

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, counterTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("increment rate counter: %w", err)
	}
	return int(incr.Val()), nil
}

func (s *RedisStore) Decrement(ctx context.Context, officerID id.OfficerID, bucket time.Time) error {
	if err := s.client.Decr(ctx, counterKey(officerID, bucket)).Err(); err != nil {
		return fmt.Errorf("decrement rate counter: %w", err)
	}
	return nil
}

func (s *RedisStore) Count(ctx context.Context, officerID id.OfficerID, bucket time.Time) (int, error) {
	val, err := s.client.Get(ctx, counterKey(officerID, bucket)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read rate counter: %w", err)
	}
	return val, nil
}

func (s *RedisStore) Reset(ctx context.Context, officerID id.OfficerID, bucket time.Time) error {
	if err := s.client.Del(ctx, counterKey(officerID, bucket)).Err(); err != nil {
		return fmt.Errorf("reset rate counter: %w", err)
	}
	return nil
}
