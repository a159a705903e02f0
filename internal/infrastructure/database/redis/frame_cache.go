package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/turtacn/facetmap/internal/application/panel"
	"github.com/turtacn/facetmap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/facetmap/pkg/errors"
)

// FrameCache publishes the last rendered frame per field so replicas that
// have not run a cycle yet can still answer count lookups.
type FrameCache struct {
	client *Client
	logger logging.Logger
	ttl    time.Duration
}

type FrameCacheOption func(*FrameCache)

func WithFrameTTL(ttl time.Duration) FrameCacheOption {
	return func(c *FrameCache) { c.ttl = ttl }
}

func NewFrameCache(client *Client, log logging.Logger, opts ...FrameCacheOption) *FrameCache {
	c := &FrameCache{client: client, logger: log, ttl: 10 * time.Minute}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *FrameCache) key(field string) string {
	return c.client.Key("frame", field)
}

// jitterTTL spreads expiry by +/- 10%.
func (c *FrameCache) jitterTTL() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitter := float64(c.ttl) * 0.1 * (rand.Float64()*2 - 1)
	return c.ttl + time.Duration(jitter)
}

// Render stores f. Failures are logged; rendering never fails a cycle.
func (c *FrameCache) Render(ctx context.Context, f panel.Frame) {
	if err := c.Put(ctx, f); err != nil {
		c.logger.Warn("Failed to cache frame",
			logging.String("field", f.Field),
			logging.String("cycle_id", f.CycleID),
			logging.Err(err),
		)
	}
}

func (c *FrameCache) Put(ctx context.Context, f panel.Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode frame")
	}
	rdb, err := c.client.Universal()
	if err != nil {
		return err
	}
	return storeError(rdb.Set(ctx, c.key(f.Field), data, c.jitterTTL()).Err(), "put frame")
}

// Latest returns the cached frame for field. ok is false on a miss.
func (c *FrameCache) Latest(ctx context.Context, field string) (panel.Frame, bool, error) {
	rdb, err := c.client.Universal()
	if err != nil {
		return panel.Frame{}, false, err
	}
	data, err := rdb.Get(ctx, c.key(field)).Bytes()
	if err == redis.Nil {
		return panel.Frame{}, false, nil
	}
	if err != nil {
		return panel.Frame{}, false, storeError(err, "get frame")
	}
	var f panel.Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return panel.Frame{}, false, errors.Wrap(err, errors.ErrCodeSerialization, "decode frame")
	}
	return f, true, nil
}

var _ panel.Renderer = (*FrameCache)(nil)

//Personal.AI order the ending
