package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/lib/pq"
)

type LikeRepository interface {
	Toggle(ctx context.Context, postID, userID int64) (bool, error)
	ListByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]int64, error)
}

type likeRepository struct {
	db *sql.DB
}

func NewLikeRepository(db *sql.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle removes the user's like when present and adds it otherwise. It
// reports whether the post is liked by the user afterwards.
func (r *likeRepository) Toggle(ctx context.Context, postID, userID int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	removed, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	if removed == 0 {
		query := `
			INSERT INTO post_likes (post_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT (post_id, user_id) DO NOTHING
		`
		if _, err = tx.ExecContext(ctx, query, postID, userID); err != nil {
			slog.Info(err.Error())
			return false, err
		}
	}

	if err = tx.Commit(); err != nil {
		slog.Info(err.Error())
		return false, err
	}

	return removed == 0, nil
}

// ListByPostIDs returns liker ids per post, oldest like first.
func (r *likeRepository) ListByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]int64, error) {
	query := `
		SELECT post_id, user_id
		FROM post_likes
		WHERE post_id = ANY($1)
		ORDER BY post_id, id
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(postIDs))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	likes := make(map[int64][]int64)
	for rows.Next() {
		var postID, userID int64
		if err := rows.Scan(&postID, &userID); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		likes[postID] = append(likes[postID], userID)
	}

	if err = rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return likes, nil
}
