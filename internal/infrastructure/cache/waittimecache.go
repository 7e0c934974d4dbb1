package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	waitTimeKeyPrefix = "metrics:tempoAtendimentoMedio:"

	// WaitTimeTTL is the lifetime of a cached aggregate.
	WaitTimeTTL = 2 * time.Minute
)

// WaitTimeCache stores the per-unit wait-time aggregate document.
type WaitTimeCache struct {
	client *redis.Client
}

func NewWaitTimeCache(client *redis.Client) *WaitTimeCache {
	return &WaitTimeCache{client: client}
}

func waitTimeKey(unit string) string {
	return waitTimeKeyPrefix + unit
}

// Save encodes doc as JSON and stores it for WaitTimeTTL.
func (c *WaitTimeCache) Save(ctx context.Context, unit string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode wait-time aggregate: %w", err)
	}
	if err := c.client.Set(ctx, waitTimeKey(unit), data, WaitTimeTTL).Err(); err != nil {
		return fmt.Errorf("failed to save wait-time aggregate for %s: %w", unit, err)
	}
	return nil
}

// Get returns the raw cached document, or nil when absent or expired.
func (c *WaitTimeCache) Get(ctx context.Context, unit string) ([]byte, error) {
	data, err := c.client.Get(ctx, waitTimeKey(unit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read wait-time aggregate for %s: %w", unit, err)
	}
	return data, nil
}
