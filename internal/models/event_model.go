package models

import "time"

const (
	EventPostCreated   = "post.created"
	EventPostUpdated   = "post.updated"
	EventPostDeleted   = "post.deleted"
	EventPostLiked     = "post.liked"
	EventPostUnliked   = "post.unliked"
	EventPostCommented = "post.commented"
)

type PostEvent struct {
	Type      string    `json:"type"`
	PostID    int64     `json:"post_id"`
	ActorID   int64     `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}
