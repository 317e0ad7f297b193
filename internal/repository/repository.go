package repository

import (
	"context"

	"github.com/text-materials-api/internal/database"
	"github.com/text-materials-api/internal/models"
)

// Lookups return (nil, nil) when the record does not exist.

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	AddRole(ctx context.Context, userID int64, role string) error
	RemoveRole(ctx context.Context, userID int64, role string) error
	Count(ctx context.Context) (int, error)
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	TitleExists(ctx context.Context, title string) (bool, error)
	InUse(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]*models.Category, error)
}

// MaterialRepository defines the interface for text material data operations
type MaterialRepository interface {
	Create(ctx context.Context, material *models.TextMaterial) error
	Update(ctx context.Context, material *models.TextMaterial) error
	// Delete removes the material together with its likes, saves and comments
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.TextMaterial, error)
	List(ctx context.Context, scope models.MaterialScope) ([]models.TextMaterial, error)
	Count(ctx context.Context) (int, error)
	StreamApproved(ctx context.Context, callback func(*models.TextMaterial) error) error
}

// AssociationKind selects one of the user/material join tables
type AssociationKind string

const (
	Likes AssociationKind = "likes"
	Saves AssociationKind = "saves"
)

// AssociationRepository manages (user, material) pairs for likes and saves
type AssociationRepository interface {
	Add(ctx context.Context, kind AssociationKind, userID, materialID int64) error
	Remove(ctx context.Context, kind AssociationKind, userID, materialID int64) error
	Contains(ctx context.Context, kind AssociationKind, userID, materialID int64) (bool, error)
	Count(ctx context.Context, kind AssociationKind, materialID int64) (int, error)
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	ListByMaterial(ctx context.Context, materialID int64) ([]*models.Comment, error)
	HasReplies(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
}

// BanRepository defines the interface for ban data operations
type BanRepository interface {
	Create(ctx context.Context, ban *models.Ban) error
	Update(ctx context.Context, ban *models.Ban) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Ban, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Ban, error)
	List(ctx context.Context) ([]*models.Ban, error)
}

// NotificationRepository defines the interface for the notification outbox
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	Update(ctx context.Context, n *models.Notification) error
	GetPending(ctx context.Context, limit int) ([]*models.Notification, error)
	MarkAsSending(ctx context.Context, id string) (bool, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]*models.Notification, error)
}

// Pinger reports store connectivity
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	User         UserRepository
	Category     CategoryRepository
	Material     MaterialRepository
	Association  AssociationRepository
	Comment      CommentRepository
	Ban          BanRepository
	Notification NotificationRepository
	DB           Pinger
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepo(db),
		Category:     NewCategoryRepo(db),
		Material:     NewMaterialRepo(db),
		Association:  NewAssociationRepo(db),
		Comment:      NewCommentRepo(db),
		Ban:          NewBanRepo(db),
		Notification: NewNotificationRepo(db),
		DB:           db,
	}
}
