// Package streams mirrors definition events onto a Redis Stream for external consumers
// such as search indexers and analytics.
package streams

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jimdaga/kamus/internal/events"
	"github.com/redis/go-redis/v9"
)

// Publisher publishes definition events to Redis Streams
type Publisher struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewPublisher creates a new Publisher instance
func NewPublisher(redisURL string, logger *slog.Logger) (*Publisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return NewPublisherWithClient(redis.NewClient(opts), logger), nil
}

// NewPublisherWithClient wraps an existing Redis client.
func NewPublisherWithClient(rdb *redis.Client, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{rdb: rdb, logger: logger}
}

// Publish appends e to the definition event stream and returns the stream entry id.
func (p *Publisher) Publish(ctx context.Context, e events.Event) (string, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}

	result := p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamDefinitionEvents,
		MaxLen: maxStreamLen,
		Approx: true,
		ID:     "*", // auto-generate ID
		Values: map[string]interface{}{
			"event_id":       uuid.NewString(),
			"kind":           string(e.Kind),
			"payload":        string(payload),
			"published_at":   time.Now().Unix(),
			"schema_version": SchemaVersionV1,
		},
	})

	if result.Err() != nil {
		return "", fmt.Errorf("failed to publish to stream: %w", result.Err())
	}

	return result.Val(), nil
}

// Subscribe mirrors every event on bus to the stream. Publish failures are logged;
// the stream is best effort and never fails the request that caused the event.
func (p *Publisher) Subscribe(bus *events.Bus) (unsubscribe func()) {
	return bus.Subscribe(func(ctx context.Context, e events.Event) {
		if _, err := p.Publish(ctx, e); err != nil {
			p.logger.Warn("failed to publish definition event",
				"kind", e.Kind,
				"definition_id", e.DefinitionID,
				"error", err,
			)
		}
	})
}

// Close closes the Redis client connection
func (p *Publisher) Close() error {
	return p.rdb.Close()
}
