package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"github.com/maheshrc27/linkfeed/internal/models"
	"github.com/maheshrc27/linkfeed/internal/repository"
	"github.com/maheshrc27/linkfeed/internal/transfer"
)

type PostService interface {
	ListFeed(ctx context.Context, viewerID int64) ([]*models.PostView, error)
	ListOwnPosts(ctx context.Context, viewerID int64) ([]*models.PostView, error)
	CreatePost(ctx context.Context, authorID int64, content string, files []*multipart.FileHeader) (*models.PostView, error)
	UpdatePost(ctx context.Context, postID, authorID int64, pu *transfer.PostUpdate, files []*multipart.FileHeader) (*models.PostView, error)
	DeletePost(ctx context.Context, postID, authorID int64) error
	ToggleLike(ctx context.Context, postID, userID int64) (*models.PostView, error)
	AddComment(ctx context.Context, postID, userID int64, content string) (*models.PostView, error)
}

type postService struct {
	tx      repository.Transactor
	pr      repository.PostRepository
	pm      repository.PostMediaRepository
	lr      repository.LikeRepository
	cr      repository.CommentRepository
	ms      MediaService
	agg     PostAggregator
	cleanup MediaCleanup
	events  EventPublisher
}

func NewPostService(
	tx repository.Transactor,
	pr repository.PostRepository,
	pm repository.PostMediaRepository,
	lr repository.LikeRepository,
	cr repository.CommentRepository,
	ms MediaService,
	agg PostAggregator,
	cleanup MediaCleanup,
	events EventPublisher) PostService {
	return &postService{
		tx:      tx,
		pr:      pr,
		pm:      pm,
		lr:      lr,
		cr:      cr,
		ms:      ms,
		agg:     agg,
		cleanup: cleanup,
		events:  events,
	}
}

func (s *postService) ListFeed(ctx context.Context, viewerID int64) ([]*models.PostView, error) {
	posts, err := s.pr.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, posts, viewerID)
}

func (s *postService) ListOwnPosts(ctx context.Context, viewerID int64) ([]*models.PostView, error) {
	posts, err := s.pr.GetByUserID(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, posts, viewerID)
}

func (s *postService) CreatePost(ctx context.Context, authorID int64, content string, files []*multipart.FileHeader) (*models.PostView, error) {
	content = strings.TrimSpace(content)

	uploads, err := s.ms.Prepare(files, false)
	if err != nil {
		return nil, err
	}
	if content == "" && len(uploads) == 0 {
		return nil, NewValidationError("post content or media is required")
	}

	change, err := s.ms.Intake(ctx, uploads, nil, nil)
	if err != nil {
		return nil, err
	}

	var postID int64
	err = s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		postID, err = s.pr.Create(ctx, tx, &models.Post{
			UserID:  authorID,
			Content: content,
			Image:   change.Image,
		})
		if err != nil {
			return fmt.Errorf("error creating post: %w", err)
		}

		if err := s.pm.ReplaceForPost(ctx, tx, postID, change.Media); err != nil {
			return fmt.Errorf("error saving media: %w", err)
		}
		return nil
	})
	if err != nil {
		s.ms.Discard(ctx, change.Added)
		return nil, err
	}

	publish(ctx, s.events, newPostEvent(models.EventPostCreated, postID, authorID))
	return s.view(ctx, postID, authorID)
}

func (s *postService) UpdatePost(ctx context.Context, postID, authorID int64, pu *transfer.PostUpdate, files []*multipart.FileHeader) (*models.PostView, error) {
	if pu == nil {
		pu = &transfer.PostUpdate{Removal: transfer.MediaRemoval{KeepAll: true}}
	}

	post, err := s.ownedPost(ctx, postID, authorID)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(pu.Content)

	uploads, err := s.ms.Prepare(files, false)
	if err != nil {
		return nil, err
	}

	existing, err := s.pm.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	retained, _ := Reconcile(existing, &pu.Removal)
	if content == "" && len(retained)+len(uploads) == 0 {
		return nil, NewValidationError("post content or media is required")
	}

	change, err := s.ms.Intake(ctx, uploads, existing, &pu.Removal)
	if err != nil {
		return nil, err
	}

	post.Content = content
	post.Image = change.Image

	err = s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.pr.Update(ctx, tx, post); err != nil {
			return fmt.Errorf("error updating post: %w", err)
		}
		if err := s.pm.ReplaceForPost(ctx, tx, postID, change.Media); err != nil {
			return fmt.Errorf("error saving media: %w", err)
		}
		return nil
	})
	if err != nil {
		s.ms.Discard(ctx, change.Added)
		return nil, err
	}

	s.ms.Discard(ctx, change.Removed)

	publish(ctx, s.events, newPostEvent(models.EventPostUpdated, postID, authorID))
	return s.view(ctx, postID, authorID)
}

func (s *postService) DeletePost(ctx context.Context, postID, authorID int64) error {
	if _, err := s.ownedPost(ctx, postID, authorID); err != nil {
		return err
	}

	media, err := s.pm.ListByPostID(ctx, postID)
	if err != nil {
		return err
	}

	if err := s.pr.Remove(ctx, postID); err != nil {
		return err
	}

	if len(media) > 0 {
		if err := s.cleanup.PurgeMedia(ctx, postID, media); err != nil {
			slog.Info(fmt.Sprintf("failed to purge media of post %d: %s", postID, err.Error()))
		}
	}

	publish(ctx, s.events, newPostEvent(models.EventPostDeleted, postID, authorID))
	return nil
}

func (s *postService) ToggleLike(ctx context.Context, postID, userID int64) (*models.PostView, error) {
	if _, err := s.getPost(ctx, postID); err != nil {
		return nil, err
	}

	liked, err := s.lr.Toggle(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	eventType := models.EventPostUnliked
	if liked {
		eventType = models.EventPostLiked
	}
	publish(ctx, s.events, newPostEvent(eventType, postID, userID))

	return s.view(ctx, postID, userID)
}

func (s *postService) AddComment(ctx context.Context, postID, userID int64, content string) (*models.PostView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, NewValidationError("comment content is required")
	}

	if _, err := s.getPost(ctx, postID); err != nil {
		return nil, err
	}

	_, err := s.cr.Create(ctx, &models.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: content,
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, newPostEvent(models.EventPostCommented, postID, userID))
	return s.view(ctx, postID, userID)
}

func (s *postService) getPost(ctx context.Context, postID int64) (*models.Post, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *postService) ownedPost(ctx context.Context, postID, userID int64) (*models.Post, error) {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, ErrNotPostOwner
	}
	return post, nil
}

// view reloads a post with its children and aggregates it for the viewer.
func (s *postService) view(ctx context.Context, postID, viewerID int64) (*models.PostView, error) {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.hydrate(ctx, []*models.Post{post}); err != nil {
		return nil, err
	}
	return s.agg.Aggregate(ctx, post, viewerID)
}

func (s *postService) views(ctx context.Context, posts []*models.Post, viewerID int64) ([]*models.PostView, error) {
	if err := s.hydrate(ctx, posts); err != nil {
		return nil, err
	}
	return s.agg.AggregateAll(ctx, posts, viewerID)
}

// hydrate loads media, likes and comments for posts in one query each.
func (s *postService) hydrate(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ID)
	}

	media, err := s.pm.ListByPostIDs(ctx, ids)
	if err != nil {
		return err
	}

	likes, err := s.lr.ListByPostIDs(ctx, ids)
	if err != nil {
		return err
	}

	comments, err := s.cr.ListByPostIDs(ctx, ids)
	if err != nil {
		return err
	}

	for _, post := range posts {
		post.Media = media[post.ID]
		post.Likes = likes[post.ID]
		post.Comments = comments[post.ID]
	}
	return nil
}

func newPostEvent(eventType string, postID, actorID int64) models.PostEvent {
	return models.PostEvent{
		Type:      eventType,
		PostID:    postID,
		ActorID:   actorID,
		CreatedAt: time.Now(),
	}
}
