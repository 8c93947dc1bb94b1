package service

import (
	"context"
	"testing"

	"github.com/maheshrc27/linkfeed/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestRecentLikers(t *testing.T) {
	tests := []struct {
		name  string
		likes []int64
		want  []int64
	}{
		{name: "nil", likes: nil, want: []int64{}},
		{name: "empty", likes: []int64{}, want: []int64{}},
		{name: "fewer than four", likes: []int64{1, 2}, want: []int64{2, 1}},
		{name: "exactly four", likes: []int64{1, 2, 3, 4}, want: []int64{4, 3, 2, 1}},
		{name: "more than four", likes: []int64{1, 2, 3, 4, 5, 6}, want: []int64{6, 5, 4, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RecentLikers(tt.likes))
		})
	}
}

func TestBuildPostViewWithoutLikes(t *testing.T) {
	for _, likes := range [][]int64{nil, {}} {
		post := &models.Post{ID: 1, UserID: 10, Likes: likes}

		view := BuildPostView(post, 10, map[int64]*models.User{})

		assert.False(t, view.IsLiked)
		assert.Zero(t, view.TotalLikes)
		assert.NotNil(t, view.LikedUsers)
		assert.Empty(t, view.LikedUsers)
		assert.NotNil(t, view.Comments)
		assert.NotNil(t, view.Media)
		assert.NotNil(t, view.Likes)
		assert.Nil(t, view.UserProfilePhoto)
	}
}

func TestBuildPostView(t *testing.T) {
	users := map[int64]*models.User{
		1: {ID: 1, Name: "author", ProfilePhoto: strPtr("/uploads/author.png")},
		2: {ID: 2, Name: "b"},
		3: {ID: 3, Name: "c", ProfilePhoto: strPtr("/uploads/c.png")},
		4: {ID: 4, Name: "d"},
		5: {ID: 5, Name: "e"},
		6: {ID: 6, Name: "f"},
	}
	post := &models.Post{
		ID:       9,
		UserID:   1,
		Likes:    []int64{2, 3, 4, 5, 6},
		Comments: []models.Comment{{ID: 1, UserID: 2, Content: "hi"}},
	}

	view := BuildPostView(post, 2, users)

	assert.True(t, view.IsLiked)
	assert.Equal(t, 5, view.TotalLikes)
	require.Len(t, view.LikedUsers, 4)
	assert.Equal(t, []string{"f", "e", "d", "c"}, []string{
		view.LikedUsers[0].Name, view.LikedUsers[1].Name, view.LikedUsers[2].Name, view.LikedUsers[3].Name,
	})
	assert.Equal(t, "/uploads/c.png", *view.LikedUsers[3].ProfilePhoto)
	assert.Equal(t, "/uploads/author.png", *view.UserProfilePhoto)
	assert.Len(t, view.Comments, 1)

	notLiked := BuildPostView(post, 1, users)
	assert.False(t, notLiked.IsLiked)
}

func TestBuildPostViewSkipsUnknownLikers(t *testing.T) {
	users := map[int64]*models.User{2: {ID: 2, Name: "b"}}
	post := &models.Post{ID: 1, UserID: 1, Likes: []int64{2, 99}}

	view := BuildPostView(post, 0, users)

	assert.Equal(t, 2, view.TotalLikes)
	require.Len(t, view.LikedUsers, 1)
	assert.Equal(t, int64(2), view.LikedUsers[0].ID)
}

func TestAggregateAllUsesOneUserLookup(t *testing.T) {
	db := newMemDB()
	author := db.addUser("author")
	fan := db.addUser("fan")
	agg := NewPostAggregator(fakeUserRepo{db})

	posts := []*models.Post{
		{ID: 100, UserID: author.ID, Likes: []int64{fan.ID}},
		{ID: 101, UserID: author.ID},
		{ID: 102, UserID: fan.ID, Likes: []int64{author.ID, fan.ID}},
	}

	views, err := agg.AggregateAll(context.Background(), posts, fan.ID)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, 1, db.userLookups)

	assert.True(t, views[0].IsLiked)
	assert.Equal(t, "fan", views[0].LikedUsers[0].Name)
	assert.False(t, views[1].IsLiked)
	assert.Equal(t, []int64{fan.ID, author.ID}, []int64{views[2].LikedUsers[0].ID, views[2].LikedUsers[1].ID})
}

func TestAggregateAllEmpty(t *testing.T) {
	db := newMemDB()
	agg := NewPostAggregator(fakeUserRepo{db})

	views, err := agg.AggregateAll(context.Background(), nil, 1)
	require.NoError(t, err)
	assert.Empty(t, views)
	assert.Zero(t, db.userLookups)
}
