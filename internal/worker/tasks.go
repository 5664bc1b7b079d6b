package worker

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TaskResolveChannel = "idea:resolve_channel"
)

// Package-level Asynq client (singleton)
var client *asynq.Client

// InitClient initializes the global Asynq client for task enqueueing.
// Must be called before any EnqueueX functions.
func InitClient(redisURL string) error {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return err
	}

	client = asynq.NewClient(opt)
	return nil
}

// CloseClient closes the Asynq client connection gracefully.
func CloseClient() error {
	if client != nil {
		return client.Close()
	}
	return nil
}

type resolveChannelPayload struct {
	IdeaID    uint   `json:"idea_id"`
	OwnerID   uint   `json:"owner_id"`
	NameQuery string `json:"name_query"`
}

// EnqueueResolveChannel enqueues a background channel resolution for an idea
// whose creation-time lookup hit an unavailable upstream. Retries up to 5
// times with a 1-minute timeout per attempt.
func EnqueueResolveChannel(ideaID, ownerID uint, nameQuery string) error {
	if client == nil {
		return fmt.Errorf("asynq client not initialized")
	}

	payload, err := json.Marshal(resolveChannelPayload{
		IdeaID:    ideaID,
		OwnerID:   ownerID,
		NameQuery: nameQuery,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(
		TaskResolveChannel,
		payload,
		asynq.MaxRetry(5),
		asynq.Timeout(1*time.Minute),
		asynq.Retention(24*time.Hour),
	)

	_, err = client.Enqueue(task)
	return err
}
