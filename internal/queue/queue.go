package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/linkfeed/internal/models"
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func EnqueuePurgeMedia(ctx context.Context, client enqueuer, payload PurgeMediaPayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypePurgeMedia, taskPayload)

	// Deletion is best-effort, a failed purge is not retried.
	info, err := client.EnqueueContext(ctx, task, asynq.MaxRetry(0))
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	slog.Debug("task enqueued", "type", TaskTypePurgeMedia, "id", info.ID, "post_id", payload.PostID)
	return nil
}

// MediaCleanup hands the deletion of a removed post's files to the worker.
type MediaCleanup struct {
	client enqueuer
}

func NewMediaCleanup(client *asynq.Client) *MediaCleanup {
	return &MediaCleanup{client: client}
}

// PurgeMedia enqueues only media held by external storage. Local files are
// left for the upload sweeper.
func (m *MediaCleanup) PurgeMedia(ctx context.Context, postID int64, media []models.Media) error {
	var external []models.Media
	for _, item := range media {
		if item.ExternalID != "" {
			external = append(external, item)
		}
	}
	if len(external) == 0 {
		return nil
	}

	return EnqueuePurgeMedia(ctx, m.client, PurgeMediaPayload{PostID: postID, Media: external})
}
