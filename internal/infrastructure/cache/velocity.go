package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisVelocityStore tracks per-key event timestamps in Redis sorted sets,
// giving sliding-window counts for the behavioral analyzer. Keys are
// content-addressed through a one-way hash so raw IPs and device identifiers
// never land in the cache layer.
type redisVelocityStore struct {
	client    *redis.Client
	logger    *zap.Logger
	retention time.Duration
}

// NewRedisVelocityStore creates a sorted-set velocity store. Entries older
// than the retention ceiling are trimmed on every write; key TTL is the only
// destructor beyond that.
func NewRedisVelocityStore(client *redis.Client, retention time.Duration, logger *zap.Logger) *redisVelocityStore {
	return &redisVelocityStore{
		client:    client,
		logger:    logger,
		retention: retention,
	}
}

// Record appends the current timestamp to the key's event log and trims
// entries beyond the retention ceiling.
func (s *redisVelocityStore) Record(ctx context.Context, key string) error {
	now := time.Now()
	floor := now.Add(-s.retention)
	velocityKey := hashKey(key)

	member := fmt.Sprintf("%d-%d", now.UnixNano(), now.Nanosecond()%1000)

	pipe := s.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, velocityKey, "-inf", strconv.FormatInt(floor.UnixNano(), 10))
	pipe.ZAdd(ctx, velocityKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: member,
	})
	pipe.Expire(ctx, velocityKey, s.retention+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn("velocity record failed",
			zap.String("key", velocityKey),
			zap.Error(err))
		return fmt.Errorf("velocity record failed: %w", err)
	}

	return nil
}

// CountInWindow returns the number of events recorded for the key within the
// window. It never mutates state. Cache unavailability degrades to a zero
// count: velocity is a risk signal, not a correctness dependency.
func (s *redisVelocityStore) CountInWindow(ctx context.Context, key string, window time.Duration) (int, error) {
	windowStart := time.Now().Add(-window)
	velocityKey := hashKey(key)

	count, err := s.client.ZCount(ctx, velocityKey,
		strconv.FormatInt(windowStart.UnixNano(), 10), "+inf").Result()
	if err != nil {
		s.logger.Warn("velocity count degraded to zero",
			zap.String("key", velocityKey),
			zap.Duration("window", window),
			zap.Error(err))
		return 0, nil
	}

	return int(count), nil
}

func hashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return VelocityPrefix + hex.EncodeToString(sum[:])
}
