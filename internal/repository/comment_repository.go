package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/lib/pq"
	"github.com/maheshrc27/linkfeed/internal/models"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) (int64, error)
	ListByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]models.Comment, error)
}

type commentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) (int64, error) {
	query := `
		INSERT INTO post_comments (post_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, comment.PostID, comment.UserID, comment.Content).Scan(&id, &comment.CreatedAt)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

// ListByPostIDs returns comments per post in the order they were written.
// Commenter names are read from users, not stored with the comment.
func (r *commentRepository) ListByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]models.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.user_id, u.name, c.content, c.created_at
		FROM post_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = ANY($1)
		ORDER BY c.post_id, c.id
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(postIDs))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	comments := make(map[int64][]models.Comment)
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Username, &c.Content, &c.CreatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		comments[c.PostID] = append(comments[c.PostID], c)
	}

	if err = rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return comments, nil
}
