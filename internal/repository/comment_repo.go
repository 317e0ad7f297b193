package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/text-materials-api/internal/database"
	"github.com/text-materials-api/internal/models"
)

const commentSelect = `
	SELECT c.id, c.material_id, c.author_id, COALESCE(u.username, '') AS author_name,
		c.parent_id, c.content, c.created_at
	FROM comments c
	LEFT JOIN users u ON u.id = c.author_id
`

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

// Create inserts a new comment and sets its ID
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (material_id, author_id, parent_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return r.db.QueryRowxContext(ctx, query,
		comment.MaterialID, comment.AuthorID, comment.ParentID, comment.Content, comment.CreatedAt,
	).Scan(&comment.ID)
}

// Update saves the comment content. CreatedAt is immutable.
func (r *commentRepo) Update(ctx context.Context, comment *models.Comment) error {
	_, err := r.db.ExecContext(ctx, `UPDATE comments SET content = $2 WHERE id = $1`, comment.ID, comment.Content)
	return err
}

func (r *commentRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	return err
}

// GetByID retrieves a comment by ID
func (r *commentRepo) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.GetContext(ctx, &comment, commentSelect+` WHERE c.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByMaterial returns all comments of a material, oldest first
func (r *commentRepo) ListByMaterial(ctx context.Context, materialID int64) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.SelectContext(ctx, &comments,
		commentSelect+` WHERE c.material_id = $1 ORDER BY c.created_at, c.id`, materialID)
	return comments, err
}

// HasReplies reports whether any comment answers the given one
func (r *commentRepo) HasReplies(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM comments WHERE parent_id = $1)", id)
	return exists, err
}

// Count returns the total number of comments
func (r *commentRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM comments")
	return count, err
}
