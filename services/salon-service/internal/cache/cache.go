package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL = 5 * time.Minute

	globalGenKey = "slots:gen:global"
	dateGenKey   = "slots:gen:date:"
	dateGenTTL   = 24 * time.Hour
)

// SlotKey identifies one slot computation.
type SlotKey struct {
	Date     string
	Duration int
	Interval int
	Buffer   int
}

// SlotCache stores computed start times in Redis. Entries are never deleted;
// writes bump a per-date or global generation that is part of every key, so
// older entries simply stop being addressed and expire with their TTL.
//
// A nil *SlotCache is valid and caches nothing.
type SlotCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func New(rdb redis.Cmdable, ttl time.Duration) *SlotCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SlotCache{rdb: rdb, ttl: ttl}
}

// Key resolves k against the current generations. Callers should compute
// with the key they read before computing, so a write that lands in between
// leaves the result under a key nobody reads again.
func (c *SlotCache) Key(ctx context.Context, k SlotKey) (string, error) {
	if c == nil {
		return "", nil
	}
	vals, err := c.rdb.MGet(ctx, globalGenKey, dateGenKey+k.Date).Result()
	if err != nil {
		return "", fmt.Errorf("read generations: %w", err)
	}
	global, err := generation(vals[0])
	if err != nil {
		return "", err
	}
	date, err := generation(vals[1])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("slots:%d:%d:%s:%d:%d:%d", global, date, k.Date, k.Duration, k.Interval, k.Buffer), nil
}

func generation(v any) (int64, error) {
	switch g := v.(type) {
	case nil:
		return 0, nil
	case string:
		n, err := strconv.ParseInt(g, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bad generation %q: %w", g, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected generation type %T", v)
	}
}

// Get returns the cached slots under key. An empty result is a hit.
func (c *SlotCache) Get(ctx context.Context, key string) ([]string, bool, error) {
	if c == nil || key == "" {
		return nil, false, nil
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	slots := []string{}
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return slots, true, nil
}

func (c *SlotCache) Set(ctx context.Context, key string, slots []string) error {
	if c == nil || key == "" {
		return nil
	}
	if slots == nil {
		slots = []string{}
	}
	raw, err := json.Marshal(slots)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, c.ttl).Err()
}

// InvalidateDate drops every cached result for date.
func (c *SlotCache) InvalidateDate(ctx context.Context, date string) error {
	if c == nil {
		return nil
	}
	key := dateGenKey + date
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, key)
		p.Expire(ctx, key, c.genTTL())
		return nil
	})
	return err
}

// InvalidateAll drops every cached result, for changes that affect all dates
// such as the weekly hours.
func (c *SlotCache) InvalidateAll(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Incr(ctx, globalGenKey).Err()
}

// Generation keys must outlive the entries they address, otherwise an expired
// counter would resurrect generation 0 entries.
func (c *SlotCache) genTTL() time.Duration {
	if c.ttl*2 > dateGenTTL {
		return c.ttl * 2
	}
	return dateGenTTL
}
