package models

import "time"

type Post struct {
	ID        int64     `db:"id" json:"_id"`
	UserID    int64     `db:"user_id" json:"userId"`
	Username  string    `db:"username" json:"username"`
	Content   string    `db:"content" json:"content"`
	Image     *string   `db:"image" json:"image"`
	Media     []Media   `json:"media"`
	Likes     []int64   `json:"likes"` // liker ids in the order they liked
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type Media struct {
	ID           int64  `db:"id" json:"-"`
	PostID       int64  `db:"post_id" json:"-"`
	Type         string `db:"media_type" json:"type"`
	Path         string `db:"path" json:"path"`
	ExternalID   string `db:"external_id" json:"publicId,omitempty"`
	DisplayOrder int    `db:"display_order" json:"-"`
}

type Comment struct {
	ID        int64     `db:"id" json:"_id"`
	PostID    int64     `db:"post_id" json:"-"`
	UserID    int64     `db:"user_id" json:"userId"`
	Username  string    `db:"username" json:"username"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// PostView is a Post as returned to a particular viewer.
type PostView struct {
	Post
	IsLiked          bool        `json:"isLiked"`
	TotalLikes       int         `json:"totalLikes"`
	LikedUsers       []LikedUser `json:"likedUsers"`
	UserProfilePhoto *string     `json:"userProfilePhoto"`
}

type LikedUser struct {
	ID           int64   `json:"_id"`
	Name         string  `json:"name"`
	ProfilePhoto *string `json:"profilePhoto"`
}

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)
