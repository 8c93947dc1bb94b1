package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

func (q *Queue) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskTypePurgeMedia, q.HandlePurgeMediaTask)
}

func (q *Queue) HandlePurgeMediaTask(ctx context.Context, task *asynq.Task) error {
	var payload PurgeMediaPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid %s payload: %v: %w", TaskTypePurgeMedia, err, asynq.SkipRetry)
	}

	slog.Info(fmt.Sprintf("purging %d media files of deleted post %d", len(payload.Media), payload.PostID))
	q.ms.Discard(ctx, payload.Media)

	return nil
}
