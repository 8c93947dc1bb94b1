package queue

import (
	"github.com/maheshrc27/linkfeed/internal/models"
	"github.com/maheshrc27/linkfeed/internal/service"
)

type Queue struct {
	ms service.MediaService
}

func NewQueue(ms service.MediaService) *Queue {
	return &Queue{
		ms: ms,
	}
}

const TaskTypePurgeMedia = "media:purge"

type PurgeMediaPayload struct {
	PostID int64          `json:"post_id"`
	Media  []models.Media `json:"media"`
}
