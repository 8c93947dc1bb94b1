package service

import (
	"context"

	"github.com/maheshrc27/linkfeed/internal/models"
	"github.com/maheshrc27/linkfeed/internal/repository"
)

const recentLikersLimit = 4

// PostAggregator turns stored posts into the views returned to a viewer.
type PostAggregator interface {
	Aggregate(ctx context.Context, post *models.Post, viewerID int64) (*models.PostView, error)
	AggregateAll(ctx context.Context, posts []*models.Post, viewerID int64) ([]*models.PostView, error)
}

type postAggregator struct {
	u repository.UserRepository
}

func NewPostAggregator(u repository.UserRepository) PostAggregator {
	return &postAggregator{u: u}
}

func (a *postAggregator) Aggregate(ctx context.Context, post *models.Post, viewerID int64) (*models.PostView, error) {
	views, err := a.AggregateAll(ctx, []*models.Post{post}, viewerID)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// AggregateAll loads authors and recent likers of every post with a single
// user lookup.
func (a *postAggregator) AggregateAll(ctx context.Context, posts []*models.Post, viewerID int64) ([]*models.PostView, error) {
	if len(posts) == 0 {
		return []*models.PostView{}, nil
	}

	seen := make(map[int64]struct{})
	var ids []int64
	add := func(id int64) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	for _, post := range posts {
		add(post.UserID)
		for _, id := range RecentLikers(post.Likes) {
			add(id)
		}
	}

	found, err := a.u.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	users := make(map[int64]*models.User, len(found))
	for _, user := range found {
		users[user.ID] = user
	}

	views := make([]*models.PostView, 0, len(posts))
	for _, post := range posts {
		views = append(views, BuildPostView(post, viewerID, users))
	}
	return views, nil
}

// RecentLikers returns up to the last four likers, most recent first.
func RecentLikers(likes []int64) []int64 {
	start := len(likes) - recentLikersLimit
	if start < 0 {
		start = 0
	}

	recent := make([]int64, 0, len(likes)-start)
	for i := len(likes) - 1; i >= start; i-- {
		recent = append(recent, likes[i])
	}
	return recent
}

// BuildPostView enriches a post using already loaded users. Likers missing
// from users are left out of likedUsers but still counted.
func BuildPostView(post *models.Post, viewerID int64, users map[int64]*models.User) *models.PostView {
	view := &models.PostView{
		Post:       *post,
		TotalLikes: len(post.Likes),
		LikedUsers: []models.LikedUser{},
	}

	if view.Likes == nil {
		view.Likes = []int64{}
	}
	if view.Comments == nil {
		view.Comments = []models.Comment{}
	}
	if view.Media == nil {
		view.Media = []models.Media{}
	}

	for _, id := range post.Likes {
		if id == viewerID {
			view.IsLiked = true
			break
		}
	}

	for _, id := range RecentLikers(post.Likes) {
		if user, ok := users[id]; ok {
			view.LikedUsers = append(view.LikedUsers, models.LikedUser{
				ID:           user.ID,
				Name:         user.Name,
				ProfilePhoto: user.ProfilePhoto,
			})
		}
	}

	if author, ok := users[post.UserID]; ok {
		view.UserProfilePhoto = author.ProfilePhoto
	}

	return view
}
