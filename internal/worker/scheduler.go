package worker

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jimdaga/kamus/internal/config"
)

// StartScheduler creates and starts an Asynq Scheduler for the moderation digest.
// Returns a stop function for graceful shutdown.
func StartScheduler(cfg *config.Config, logger *slog.Logger) (stop func(), err error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	location, err := time.LoadLocation(cfg.DigestTimezone)
	if err != nil {
		logger.Warn("invalid timezone, using UTC", "timezone", cfg.DigestTimezone, "error", err)
		location = time.UTC
	}

	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: location,
			LogLevel: asynq.InfoLevel,
			Logger:   &asynqLoggerAdapter{logger: logger},
		},
	)

	task := asynq.NewTask(
		TaskModerationDigest,
		nil,
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
		asynq.Retention(24*time.Hour),
		asynq.Unique(time.Hour), // Prevent duplicate if two schedulers run
	)

	entryID, err := scheduler.Register(cfg.DigestSchedule, task)
	if err != nil {
		return nil, fmt.Errorf("failed to register digest schedule: %w", err)
	}

	// Start scheduler (non-blocking)
	if err := scheduler.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	logger.Info("scheduler started",
		"schedule", cfg.DigestSchedule,
		"timezone", location.String(),
		"entry_id", entryID,
	)

	return func() { scheduler.Shutdown() }, nil
}
