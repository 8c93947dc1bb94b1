package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maheshrc27/linkfeed/internal/models"
)

// MediaCleanup removes the stored files of a deleted post.
type MediaCleanup interface {
	PurgeMedia(ctx context.Context, postID int64, media []models.Media) error
}

type inlineMediaCleanup struct {
	ms MediaService
}

// NewInlineMediaCleanup purges within the request. It is used when no task
// queue is configured.
func NewInlineMediaCleanup(ms MediaService) MediaCleanup {
	return &inlineMediaCleanup{ms: ms}
}

func (c *inlineMediaCleanup) PurgeMedia(ctx context.Context, postID int64, media []models.Media) error {
	c.ms.Discard(ctx, media)
	return nil
}

// EventPublisher announces post mutations to other services.
type EventPublisher interface {
	Publish(ctx context.Context, event models.PostEvent) error
}

func publish(ctx context.Context, ep EventPublisher, event models.PostEvent) {
	if ep == nil {
		return
	}
	if err := ep.Publish(ctx, event); err != nil {
		slog.Info(fmt.Sprintf("failed to publish %s for post %d: %s", event.Type, event.PostID, err.Error()))
	}
}
