package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jimdaga/kamus/internal/apperr"
	"github.com/jimdaga/kamus/internal/config"
	"github.com/jimdaga/kamus/internal/definitions"
	"github.com/jimdaga/kamus/internal/pagination"
	"github.com/jimdaga/kamus/internal/webhook"
)

// Notifier delivers moderation notices. *webhook.Client implements it.
type Notifier interface {
	NotifySubmission(ctx context.Context, notice webhook.SubmissionNotice) error
	SendDigest(ctx context.Context, digest webhook.Digest) error
}

// Run starts the Asynq worker server and blocks until shutdown signal.
// Use this for standalone worker mode.
func Run(cfg *config.Config, logger *slog.Logger, defs *definitions.Store, notifier Notifier) error {
	srv, mux, err := newServer(cfg, logger, defs, notifier)
	if err != nil {
		return err
	}

	// Run blocks and handles its own signal interception
	return srv.Run(mux)
}

// Start starts the Asynq worker in non-blocking mode and returns a stop function.
// Use this for embedded mode so the caller can coordinate shutdown.
func Start(cfg *config.Config, logger *slog.Logger, defs *definitions.Store, notifier Notifier) (stop func(), err error) {
	srv, mux, err := newServer(cfg, logger, defs, notifier)
	if err != nil {
		return nil, err
	}
	if err := srv.Start(mux); err != nil {
		return nil, fmt.Errorf("failed to start worker: %w", err)
	}
	return func() { srv.Shutdown() }, nil
}

func newServer(cfg *config.Config, logger *slog.Logger, defs *definitions.Store, notifier Notifier) (*asynq.Server, *asynq.ServeMux, error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:     5,
			ShutdownTimeout: 30 * time.Second,
			ErrorHandler:    asynq.ErrorHandlerFunc(makeErrorHandler(logger)),
			Logger:          &asynqLoggerAdapter{logger: logger},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskModerationNotify, handleModerationNotify(logger, defs, notifier))
	mux.HandleFunc(TaskModerationDigest, handleModerationDigest(logger, defs, notifier))

	logger.Info("worker starting", "concurrency", 5)
	return srv, mux, nil
}

// handleModerationNotify announces a submitted definition unless it was already
// reviewed or removed by the time the task runs.
func handleModerationNotify(logger *slog.Logger, defs *definitions.Store, notifier Notifier) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload notifyPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil || payload.DefinitionID == "" {
			// Invalid payload - don't retry
			return fmt.Errorf("invalid payload: %w", asynq.SkipRetry)
		}

		def, err := defs.FindByID(ctx, payload.DefinitionID, true)
		if errors.Is(err, apperr.ErrNotFound) {
			logger.Info("definition gone, skipping notice", "definition_id", payload.DefinitionID)
			return nil
		}
		if err != nil {
			// Database error - retryable
			return fmt.Errorf("failed to load definition: %w", err)
		}
		if !def.Pending() {
			logger.Info("definition already reviewed, skipping notice", "definition_id", def.ID)
			return nil
		}

		err = notifier.NotifySubmission(ctx, webhook.SubmissionNotice{
			DefinitionID: def.ID,
			Word:         def.Word,
			Definition:   def.Definition,
			Example:      def.Example,
			Author:       def.User.Username,
			SubmittedAt:  def.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("failed to send notice: %w", err)
		}

		logger.Info("moderation notice sent", "definition_id", def.ID)
		return nil
	}
}

// handleModerationDigest posts the size of the queue and its oldest entry.
func handleModerationDigest(logger *slog.Logger, defs *definitions.Store, notifier Notifier) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		pending, err := defs.CountPending(ctx)
		if err != nil {
			return fmt.Errorf("failed to count pending definitions: %w", err)
		}
		if pending == 0 {
			logger.Info("moderation queue empty, no digest sent")
			return nil
		}

		digest := webhook.Digest{
			Pending:     pending,
			GeneratedAt: time.Now().UTC(),
		}
		oldest, err := defs.FindPendingPage(ctx, pagination.Request{Limit: 1})
		if err != nil {
			return fmt.Errorf("failed to load oldest pending definition: %w", err)
		}
		if len(oldest.Data) > 0 {
			since := oldest.Data[0].CreatedAt
			digest.OldestWord = oldest.Data[0].Word
			digest.OldestSince = &since
		}

		if err := notifier.SendDigest(ctx, digest); err != nil {
			return fmt.Errorf("failed to send digest: %w", err)
		}

		logger.Info("moderation digest sent", "pending", pending)
		return nil
	}
}

// makeErrorHandler creates an error handler function with logger closure.
func makeErrorHandler(logger *slog.Logger) func(context.Context, *asynq.Task, error) {
	return func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)

		logger.Error("task execution failed",
			"task_type", task.Type(),
			"error", err.Error(),
			"retry_count", retried,
			"max_retry", maxRetry,
		)

		// Final failure: the task moves to the archive
		if retried >= maxRetry {
			logger.Error("task archived, all retries exhausted",
				"task_type", task.Type(),
				"payload", string(task.Payload()),
			)
		}
	}
}
