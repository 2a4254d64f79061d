package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jimdaga/kamus/internal/events"
)

// Task type constants
const (
	TaskModerationNotify = "moderation:notify"
	TaskModerationDigest = "moderation:digest"
)

// Enqueuer is the part of *asynq.Client used to schedule tasks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Client enqueues moderation tasks.
type Client struct {
	q      Enqueuer
	closer func() error
	logger *slog.Logger
}

// NewClient connects an asynq client to redisURL.
func NewClient(redisURL string, logger *slog.Logger) (*Client, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := asynq.NewClient(opt)
	return &Client{q: client, closer: client.Close, logger: logger}, nil
}

// Close closes the Asynq client connection gracefully.
func (c *Client) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}
	return c.closer()
}

type notifyPayload struct {
	DefinitionID string `json:"definition_id"`
}

// NewModerationNotifyTask builds the task announcing definitionID to moderators.
// The task id is derived from the definition so a retried submission is only announced once.
func NewModerationNotifyTask(definitionID string) (*asynq.Task, error) {
	payload, err := json.Marshal(notifyPayload{DefinitionID: definitionID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskModerationNotify,
		payload,
		asynq.TaskID("notify:"+definitionID),
		asynq.MaxRetry(5),
		asynq.Timeout(time.Minute),
		asynq.Retention(24*time.Hour),
	), nil
}

// EnqueueModerationNotify schedules a moderator notice for definitionID.
func (c *Client) EnqueueModerationNotify(ctx context.Context, definitionID string) error {
	task, err := NewModerationNotifyTask(definitionID)
	if err != nil {
		return err
	}

	_, err = c.q.EnqueueContext(ctx, task)
	if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return fmt.Errorf("failed to enqueue %s: %w", TaskModerationNotify, err)
	}
	return nil
}

// Subscribe enqueues a moderator notice for every submitted definition on bus.
func (c *Client) Subscribe(bus *events.Bus) (unsubscribe func()) {
	return bus.Subscribe(func(ctx context.Context, e events.Event) {
		if e.Kind != events.DefinitionSubmitted {
			return
		}
		if err := c.EnqueueModerationNotify(ctx, e.DefinitionID); err != nil {
			// The definition is saved; only the notice is lost
			c.logger.Error("failed to enqueue moderation notice",
				"definition_id", e.DefinitionID,
				"error", err,
			)
		}
	})
}
