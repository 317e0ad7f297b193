package models

import (
	"time"
)

// MaxCommentLength is the maximum allowed characters in a comment
const MaxCommentLength = 400

// Comment is a message on a text material. Replies reference a top-level
// comment through ParentID; threads are two levels deep.
type Comment struct {
	ID         int64     `json:"id" db:"id"`
	MaterialID int64     `json:"material_id" db:"material_id"`
	AuthorID   *int64    `json:"author_id,omitempty" db:"author_id"`
	AuthorName string    `json:"author_name,omitempty" db:"author_name"`
	ParentID   *int64    `json:"parent_id,omitempty" db:"parent_id"`
	Content    string    `json:"content" db:"content"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// IsAuthor reports whether userID wrote the comment
func (c *Comment) IsAuthor(userID int64) bool {
	return c.AuthorID != nil && *c.AuthorID == userID
}

// CommentThread is a top-level comment with its replies
type CommentThread struct {
	*Comment
	Replies []*Comment `json:"replies"`
}

// CreateCommentRequest is the payload for posting a comment
type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=400"`
	ParentID *int64 `json:"parent_id,omitempty" validate:"omitempty,gt=0"`
}

// UpdateCommentRequest is the payload for editing a comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=400"`
}
