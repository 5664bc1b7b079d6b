// Package worker runs the embedded Asynq worker that retries YouTube channel
// resolution in the background when the API was unreachable at idea creation.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ideahub/ideas-hub/internal/store"
	"github.com/ideahub/ideas-hub/internal/youtube"
)

// asynqLoggerAdapter wraps slog.Logger to implement asynq.Logger interface
type asynqLoggerAdapter struct {
	logger *slog.Logger
}

func (a *asynqLoggerAdapter) Debug(args ...interface{}) {
	a.logger.Debug(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Info(args ...interface{}) {
	a.logger.Info(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Warn(args ...interface{}) {
	a.logger.Warn(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Error(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Fatal(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
	panic(fmt.Sprint(args...))
}

// Start starts the Asynq worker in non-blocking mode and returns a stop
// function so the caller can coordinate shutdown.
func Start(redisURL string, logger *slog.Logger, ideas store.IdeaStore, yt *youtube.Client) (stop func(), err error) {
	redisOpt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:     5,
			ShutdownTimeout: 30 * time.Second,
			Logger:          &asynqLoggerAdapter{logger: logger},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskResolveChannel, handleResolveChannel(logger, ideas, yt))

	if err := srv.Start(mux); err != nil {
		return nil, fmt.Errorf("failed to start worker: %w", err)
	}

	logger.Info("Worker started", "concurrency", 5, "redis", redisURL)
	return func() { srv.Shutdown() }, nil
}

// handleResolveChannel retries the channel-name lookup and stamps the id on
// the idea. Terminal conditions (deleted idea, missing API key, no match)
// skip further retries; transport failures stay retryable.
func handleResolveChannel(logger *slog.Logger, ideas store.IdeaStore, yt *youtube.Client) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload resolveChannelPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("invalid payload: %w", asynq.SkipRetry)
		}

		logger.Info(
			"Processing idea:resolve_channel task",
			"idea_id", payload.IdeaID,
			"channel", payload.NameQuery,
		)

		channelID, err := yt.ResolveChannelID(ctx, payload.NameQuery)
		if err != nil {
			if errors.Is(err, youtube.ErrNoAPIKey) {
				logger.Warn("YouTube API key not configured, dropping resolution task", "idea_id", payload.IdeaID)
				return fmt.Errorf("youtube api key missing: %w", asynq.SkipRetry)
			}
			return fmt.Errorf("channel resolution failed: %w", err)
		}

		if channelID == "" {
			logger.Info("Channel not found, leaving idea without channel id", "idea_id", payload.IdeaID, "channel", payload.NameQuery)
			return nil
		}

		if err := ideas.SetChannelID(ctx, payload.IdeaID, payload.OwnerID, channelID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				logger.Info("Idea gone before resolution completed", "idea_id", payload.IdeaID)
				return fmt.Errorf("idea not found: %w", asynq.SkipRetry)
			}
			return fmt.Errorf("failed to store channel id: %w", err)
		}

		logger.Info("Channel resolved", "idea_id", payload.IdeaID, "channel_id", channelID)
		return nil
	}
}
