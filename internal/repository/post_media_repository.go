package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/lib/pq"
	"github.com/maheshrc27/linkfeed/internal/models"
)

type PostMediaRepository interface {
	Create(ctx context.Context, tx *sql.Tx, pm *models.Media) error
	ListByPostID(ctx context.Context, postID int64) ([]models.Media, error)
	ListByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]models.Media, error)
	ReplaceForPost(ctx context.Context, tx *sql.Tx, postID int64, media []models.Media) error
	IsPathReferenced(ctx context.Context, path string) (bool, error)
}

type postMediaRepository struct {
	db *sql.DB
}

func NewPostMediaRepository(db *sql.DB) PostMediaRepository {
	return &postMediaRepository{db: db}
}

func (r *postMediaRepository) Create(ctx context.Context, tx *sql.Tx, pm *models.Media) error {
	query := `
		INSERT INTO post_media (post_id, media_type, path, external_id, display_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	externalID := sql.NullString{String: pm.ExternalID, Valid: pm.ExternalID != ""}

	err := conn(r.db, tx).QueryRowContext(ctx, query, pm.PostID, pm.Type, pm.Path, externalID, pm.DisplayOrder).Scan(&pm.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (r *postMediaRepository) ListByPostID(ctx context.Context, postID int64) ([]models.Media, error) {
	byPost, err := r.ListByPostIDs(ctx, []int64{postID})
	if err != nil {
		return nil, err
	}
	return byPost[postID], nil
}

func (r *postMediaRepository) ListByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]models.Media, error) {
	query := `
		SELECT id, post_id, media_type, path, external_id, display_order
		FROM post_media
		WHERE post_id = ANY($1)
		ORDER BY post_id, display_order, id
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(postIDs))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	byPost := make(map[int64][]models.Media)
	for rows.Next() {
		var pm models.Media
		var externalID sql.NullString
		if err := rows.Scan(&pm.ID, &pm.PostID, &pm.Type, &pm.Path, &externalID, &pm.DisplayOrder); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		pm.ExternalID = externalID.String
		byPost[pm.PostID] = append(byPost[pm.PostID], pm)
	}

	if err = rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return byPost, nil
}

// ReplaceForPost rewrites the post's media list in the given order.
func (r *postMediaRepository) ReplaceForPost(ctx context.Context, tx *sql.Tx, postID int64, media []models.Media) error {
	_, err := conn(r.db, tx).ExecContext(ctx, `DELETE FROM post_media WHERE post_id = $1`, postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	for i := range media {
		media[i].PostID = postID
		media[i].DisplayOrder = i
		if err := r.Create(ctx, tx, &media[i]); err != nil {
			return err
		}
	}
	return nil
}

// IsPathReferenced reports whether a stored file is still used by a post or as a profile photo.
func (r *postMediaRepository) IsPathReferenced(ctx context.Context, path string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM post_media WHERE path = $1)
			OR EXISTS (SELECT 1 FROM users WHERE profile_photo = $1)
	`

	var referenced bool
	if err := r.db.QueryRowContext(ctx, query, path).Scan(&referenced); err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return referenced, nil
}
