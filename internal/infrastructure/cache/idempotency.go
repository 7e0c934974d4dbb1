package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	processedKeyPrefix = "event:processed:"
	// ProcessedMarkerTTL is the deduplication window for redelivered events.
	ProcessedMarkerTTL = 7 * 24 * time.Hour
)

// IdempotencyGuard remembers applied event ids and issues sequence numbers.
type IdempotencyGuard struct {
	client *redis.Client
}

func NewIdempotencyGuard(client *redis.Client) *IdempotencyGuard {
	return &IdempotencyGuard{client: client}
}

func processedKey(id uuid.UUID) string {
	return processedKeyPrefix + id.String()
}

func (g *IdempotencyGuard) IsProcessed(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := g.client.Exists(ctx, processedKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check processed marker: %w", err)
	}
	return n > 0, nil
}

func (g *IdempotencyGuard) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	if err := g.client.Set(ctx, processedKey(id), "1", ProcessedMarkerTTL).Err(); err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	return nil
}

// NextSequence atomically increments the named counter.
func (g *IdempotencyGuard) NextSequence(ctx context.Context, name string) (int64, error) {
	n, err := g.client.Incr(ctx, name).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence %s: %w", name, err)
	}
	return n, nil
}
