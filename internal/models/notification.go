package models

import (
	"time"
)

// NotificationStatus represents the delivery state of an outbox entry
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSending NotificationStatus = "sending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// NotificationKind names the event a notification reports
type NotificationKind string

const (
	NotificationCreated  NotificationKind = "material_created"
	NotificationApproved NotificationKind = "material_approved"
	NotificationRejected NotificationKind = "material_rejected"
	NotificationDeleted  NotificationKind = "material_deleted"
	NotificationDocument NotificationKind = "material_document"
)

// Notification is an email waiting in (or delivered from) the outbox
type Notification struct {
	ID             string             `json:"id" db:"id"`
	UserID         int64              `json:"user_id" db:"user_id"`
	Email          string             `json:"-" db:"email"`
	Kind           NotificationKind   `json:"kind" db:"kind"`
	MaterialID     *int64             `json:"material_id,omitempty" db:"material_id"`
	Subject        string             `json:"subject" db:"subject"`
	Body           string             `json:"body" db:"body"`
	AttachmentName string             `json:"attachment_name,omitempty" db:"attachment_name"`
	AttachmentType string             `json:"-" db:"attachment_type"`
	Attachment     []byte             `json:"-" db:"attachment"`
	Status         NotificationStatus `json:"status" db:"status"`
	Attempts       int                `json:"attempts" db:"attempts"`
	LastError      string             `json:"last_error,omitempty" db:"last_error"`
	CreatedAt      time.Time          `json:"created_at" db:"created_at"`
	SentAt         *time.Time         `json:"sent_at,omitempty" db:"sent_at"`
}

// DocumentFormat selects how a material is rendered for export
type DocumentFormat string

const (
	FormatText DocumentFormat = "txt"
	FormatHTML DocumentFormat = "html"
	FormatJSON DocumentFormat = "json"
)

// ValidDocumentFormats lists the formats a document can be rendered in
var ValidDocumentFormats = map[DocumentFormat]bool{
	FormatText: true,
	FormatHTML: true,
	FormatJSON: true,
}

// DocumentOptions controls rendering of a material document
type DocumentOptions struct {
	Format          DocumentFormat `json:"format" form:"format" validate:"omitempty,oneof=txt html json"`
	IncludeComments bool           `json:"include_comments" form:"include_comments"`
}

// Document is a rendered material
type Document struct {
	FileName    string
	ContentType string
	Data        []byte
}
