package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	viewCountersKey  = "product:views"
	viewFlushPattern = viewCountersKey + ":flush:*"
)

// ViewCounter buffers product page views in a Redis hash so reads never
// write to Postgres. A batch job drains the hash periodically.
type ViewCounter struct {
	client *RedisClient
	now    func() time.Time
}

// NewViewCounter creates a ViewCounter backed by r.
func NewViewCounter(r *RedisClient) *ViewCounter {
	return &ViewCounter{client: r, now: time.Now}
}

// Incr records one view of productID.
func (v *ViewCounter) Incr(ctx context.Context, productID uuid.UUID) error {
	if err := v.client.Client().HIncrBy(ctx, viewCountersKey, productID.String(), 1).Err(); err != nil {
		return fmt.Errorf("incr views: %w", err)
	}
	return nil
}

// Drain atomically takes every buffered count. Views recorded while the
// caller processes the result start a fresh hash.
//
// The live hash is first renamed under viewFlushPattern. Every hash matching
// the pattern is read and only then deleted, so a batch left behind by a
// failed read or delete is picked up by the next Drain instead of being lost.
func (v *ViewCounter) Drain(ctx context.Context) (map[uuid.UUID]int64, error) {
	rdb := v.client.Client()
	tmp := fmt.Sprintf("%s:flush:%d", viewCountersKey, v.now().UnixNano())

	if err := rdb.Rename(ctx, viewCountersKey, tmp).Err(); err != nil && !strings.Contains(err.Error(), "no such key") {
		return nil, fmt.Errorf("rename view counters: %w", err)
	}

	var keys []string
	iter := rdb.Scan(ctx, 0, viewFlushPattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan drained counters: %w", err)
	}

	out := map[uuid.UUID]int64{}
	for _, key := range keys {
		vals, err := rdb.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("read view counters: %w", err)
		}
		for id, n := range parseCounts(vals) {
			out[id] += n
		}
	}
	if len(keys) > 0 {
		if err := rdb.Del(ctx, keys...).Err(); err != nil {
			return nil, fmt.Errorf("delete drained counters: %w", err)
		}
	}
	return out, nil
}

// Restore adds counts back, used when persisting a drained batch failed.
func (v *ViewCounter) Restore(ctx context.Context, counts map[uuid.UUID]int64) error {
	if len(counts) == 0 {
		return nil
	}
	pipe := v.client.Client().Pipeline()
	for id, n := range counts {
		pipe.HIncrBy(ctx, viewCountersKey, id.String(), n)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("restore view counters: %w", err)
	}
	return nil
}

// parseCounts skips malformed entries rather than failing the whole batch.
func parseCounts(vals map[string]string) map[uuid.UUID]int64 {
	out := make(map[uuid.UUID]int64, len(vals))
	for k, raw := range vals {
		id, err := uuid.Parse(k)
		if err != nil {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			continue
		}
		out[id] = n
	}
	return out
}
