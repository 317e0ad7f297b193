package models

import (
	"fmt"
	"time"
)

// ApprovalStatus is the moderation state of a text material
type ApprovalStatus int

const (
	StatusPending ApprovalStatus = iota
	StatusApproved
	StatusRejected
)

// Title length bounds for created and edited materials
const (
	MinTitleLength = 5
	MaxTitleLength = 100
)

var statusNames = map[ApprovalStatus]string{
	StatusPending:  "pending",
	StatusApproved: "approved",
	StatusRejected: "rejected",
}

func (s ApprovalStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Valid reports whether s is one of the known statuses
func (s ApprovalStatus) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// TextMaterial is an article submitted by a user into a category.
// CategoryTitle and AuthorName are denormalized by the repository so the
// listing pipeline can search on them without further lookups.
type TextMaterial struct {
	ID              int64          `json:"id" db:"id"`
	Title           string         `json:"title" db:"title"`
	Content         string         `json:"content" db:"content"`
	ApprovalStatus  ApprovalStatus `json:"approval_status" db:"approval_status"`
	RejectCount     int            `json:"reject_count" db:"reject_count"`
	CategoryID      int64          `json:"category_id" db:"category_id"`
	CategoryTitle   string         `json:"category_title" db:"category_title"`
	AuthorID        *int64         `json:"author_id,omitempty" db:"author_id"`
	AuthorName      string         `json:"author_name,omitempty" db:"author_name"`
	DatePublished   time.Time      `json:"date_published" db:"date_published"`
	DateLastChanged time.Time      `json:"date_last_changed" db:"date_last_changed"`
	DateApproved    *time.Time     `json:"date_approved,omitempty" db:"date_approved"`
}

// IsAuthor reports whether userID wrote the material
func (m *TextMaterial) IsAuthor(userID int64) bool {
	return m.AuthorID != nil && *m.AuthorID == userID
}

// TransitionError is returned when a moderation action is not legal from
// the material's current status
type TransitionError struct {
	Current ApprovalStatus
	Action  string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s text material: it is already %s", e.Action, e.Current)
}

// Approve moves the material to Approved. Legal from Pending and Rejected.
func (m *TextMaterial) Approve(now time.Time) error {
	if m.ApprovalStatus == StatusApproved {
		return &TransitionError{Current: m.ApprovalStatus, Action: "approve"}
	}
	m.ApprovalStatus = StatusApproved
	m.DateApproved = &now
	return nil
}

// Reject moves the material to Rejected and counts the rejection.
// Legal from Pending and Approved.
func (m *TextMaterial) Reject() error {
	if m.ApprovalStatus == StatusRejected {
		return &TransitionError{Current: m.ApprovalStatus, Action: "reject"}
	}
	m.ApprovalStatus = StatusRejected
	m.RejectCount++
	m.DateApproved = nil
	return nil
}

// Edit replaces the editable fields and sends the material back to review
func (m *TextMaterial) Edit(title, content string, categoryID int64, now time.Time) {
	m.Title = title
	m.Content = content
	m.CategoryID = categoryID
	m.ApprovalStatus = StatusPending
	m.DateApproved = nil
	m.DateLastChanged = now
}

// MaterialScope narrows a repository listing before the query pipeline runs
type MaterialScope struct {
	AuthorID *int64
	SavedBy  *int64
	LikedBy  *int64
}

// MaterialDetail is a single material as shown to a particular caller
type MaterialDetail struct {
	TextMaterial
	LikesCount int  `json:"likes_count"`
	Liked      bool `json:"liked"`
	Saved      bool `json:"saved"`
}

// CreateMaterialRequest is the payload for submitting a material
type CreateMaterialRequest struct {
	Title      string `json:"title" validate:"required,min=5,max=100"`
	Content    string `json:"content" validate:"required"`
	CategoryID int64  `json:"category_id" validate:"required,gt=0"`
}

// UpdateMaterialRequest is the payload for editing a material
type UpdateMaterialRequest struct {
	Title      string `json:"title" validate:"required,min=5,max=100"`
	Content    string `json:"content" validate:"required"`
	CategoryID int64  `json:"category_id" validate:"required,gt=0"`
}

// RejectRequest carries the optional rejection reason
type RejectRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}
