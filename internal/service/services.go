package service

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/text-materials-api/internal/config"
	"github.com/text-materials-api/internal/mail"
	"github.com/text-materials-api/internal/models"
	"github.com/text-materials-api/internal/query"
	"github.com/text-materials-api/internal/repository"
	"github.com/text-materials-api/internal/validation"
)

// Every operation that acts on behalf of a user takes the caller's
// identity explicitly. A nil identity is an anonymous caller.

// AuthService defines the interface for registration and token handling
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	ParseToken(token string) (*models.Identity, error)
}

// UserService defines the interface for profile and role management
type UserService interface {
	Get(ctx context.Context, id int64) (*models.User, error)
	SetNotifications(ctx context.Context, caller *models.Identity, enabled bool) (*models.User, error)
	List(ctx context.Context, caller *models.Identity) ([]*models.User, error)
	GrantRole(ctx context.Context, caller *models.Identity, userID int64, role string) (*models.User, error)
	RevokeRole(ctx context.Context, caller *models.Identity, userID int64, role string) (*models.User, error)
	Notifications(ctx context.Context, caller *models.Identity, limit int) ([]*models.Notification, error)
}

// CategoryService defines the interface for category management
type CategoryService interface {
	Create(ctx context.Context, caller *models.Identity, req *models.CategoryRequest) (*models.Category, error)
	Rename(ctx context.Context, caller *models.Identity, id int64, req *models.CategoryRequest) (*models.Category, error)
	Delete(ctx context.Context, caller *models.Identity, id int64) error
	Get(ctx context.Context, id int64) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
}

// MaterialService defines the interface for text materials and moderation.
// Approve, Reject, Create and Delete may return the result together with a
// KindNotification error when the change was saved but the notification
// could not be queued.
type MaterialService interface {
	Create(ctx context.Context, caller *models.Identity, req *models.CreateMaterialRequest) (*models.TextMaterial, error)
	Get(ctx context.Context, caller *models.Identity, id int64) (*models.MaterialDetail, error)
	Edit(ctx context.Context, caller *models.Identity, id int64, req *models.UpdateMaterialRequest) (*models.TextMaterial, error)
	Delete(ctx context.Context, caller *models.Identity, id int64) error
	List(ctx context.Context, caller *models.Identity, params query.Params) (*query.PagedList[models.TextMaterial], error)
	ListByUser(ctx context.Context, caller *models.Identity, userID int64, params query.Params) (*query.PagedList[models.TextMaterial], error)
	ListSaved(ctx context.Context, caller *models.Identity, params query.Params) (*query.PagedList[models.TextMaterial], error)
	ListLiked(ctx context.Context, caller *models.Identity, params query.Params) (*query.PagedList[models.TextMaterial], error)
	Approve(ctx context.Context, caller *models.Identity, id int64) (*models.TextMaterial, error)
	Reject(ctx context.Context, caller *models.Identity, id int64, reason *string) (*models.TextMaterial, error)
	Like(ctx context.Context, caller *models.Identity, id int64) (*models.MaterialDetail, error)
	Unlike(ctx context.Context, caller *models.Identity, id int64) (*models.MaterialDetail, error)
	Save(ctx context.Context, caller *models.Identity, id int64) (*models.MaterialDetail, error)
	Unsave(ctx context.Context, caller *models.Identity, id int64) (*models.MaterialDetail, error)
}

// CommentService defines the interface for comment threads
type CommentService interface {
	Create(ctx context.Context, caller *models.Identity, materialID int64, req *models.CreateCommentRequest) (*models.Comment, error)
	Edit(ctx context.Context, caller *models.Identity, id int64, req *models.UpdateCommentRequest) (*models.Comment, error)
	Delete(ctx context.Context, caller *models.Identity, id int64) error
	ListThreads(ctx context.Context, caller *models.Identity, materialID int64) ([]*models.CommentThread, error)
}

// BanService defines the interface for the ban lifecycle
type BanService interface {
	BanUser(ctx context.Context, caller *models.Identity, userID int64, req *models.BanRequest) (*models.Ban, error)
	RenewBan(ctx context.Context, caller *models.Identity, userID int64, req *models.BanRequest) (*models.Ban, error)
	Unban(ctx context.Context, caller *models.Identity, userID int64) error
	DeleteBan(ctx context.Context, caller *models.Identity, banID int64) error
	Get(ctx context.Context, caller *models.Identity, userID int64) (*models.Ban, error)
	List(ctx context.Context, caller *models.Identity) ([]*models.Ban, error)
	// ActiveBan returns the user's ban if it is still in force
	ActiveBan(ctx context.Context, userID int64) (*models.Ban, error)
}

// Notifier composes notifications for material events and queues them
type Notifier interface {
	NotifyCreated(ctx context.Context, user *models.User, material *models.TextMaterial) error
	NotifyApproved(ctx context.Context, user *models.User, material *models.TextMaterial) error
	NotifyRejected(ctx context.Context, user *models.User, material *models.TextMaterial, reason *string) error
	NotifyDeleted(ctx context.Context, user *models.User, material *models.TextMaterial) error
	SendAsDocument(ctx context.Context, user *models.User, material *models.TextMaterial, doc *models.Document) error
}

// DocumentService defines the interface for rendering and exporting materials
type DocumentService interface {
	Render(ctx context.Context, caller *models.Identity, id int64, opts models.DocumentOptions) (*models.Document, error)
	Send(ctx context.Context, caller *models.Identity, id int64, opts models.DocumentOptions) error
	StreamApproved(ctx context.Context, w io.Writer, format string) error
}

// DispatcherService defines the interface for draining the notification outbox
type DispatcherService interface {
	StartProcessor(ctx context.Context)
	StopProcessor()
	DispatchPending(ctx context.Context) int
}

// Stats holds row counts reported by the metrics endpoint
type Stats struct {
	Users     int `json:"users"`
	Materials int `json:"materials"`
	Comments  int `json:"comments"`
}

// SystemService defines the interface for health and metrics
type SystemService interface {
	Health(ctx context.Context) error
	Stats(ctx context.Context) (*Stats, error)
}

// Services holds all service interfaces
type Services struct {
	Auth       AuthService
	User       UserService
	Category   CategoryService
	Material   MaterialService
	Comment    CommentService
	Ban        BanService
	Document   DocumentService
	Dispatcher DispatcherService
	System     SystemService
}

// deps is shared by every service implementation
type deps struct {
	repos     *repository.Repositories
	validator *validation.Validator
	log       zerolog.Logger
	now       func() time.Time
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger, mailer mail.Mailer) *Services {
	return NewServicesWithClock(repos, cfg, log, mailer, time.Now)
}

// NewServicesWithClock creates all services reading the current time from now
func NewServicesWithClock(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger, mailer mail.Mailer, now func() time.Time) *Services {
	d := &deps{
		repos:     repos,
		validator: validation.NewValidator(),
		log:       log,
		now:       now,
	}

	notifier := newOutboxNotifier(d)
	banSvc := newBanService(d)
	materialSvc := newMaterialService(d, notifier, banSvc)

	return &Services{
		Auth:       newAuthService(d, &cfg.Auth, banSvc),
		User:       newUserService(d),
		Category:   newCategoryService(d),
		Material:   materialSvc,
		Comment:    newCommentService(d, materialSvc, banSvc),
		Ban:        banSvc,
		Document:   newDocumentService(d, notifier, materialSvc),
		Dispatcher: newDispatcherService(d, &cfg.Notification, mailer),
		System:     newSystemService(d),
	}
}

// validate runs struct validation and converts failures to a service error
func (d *deps) validate(req interface{}) error {
	if errs := d.validator.Struct(req); len(errs) > 0 {
		return invalid(errs)
	}
	return nil
}

// requireUser rejects anonymous callers
func requireUser(caller *models.Identity) error {
	if caller == nil {
		return unauthorized("authentication required")
	}
	return nil
}

// requireRole rejects callers without role
func requireRole(caller *models.Identity, role string) error {
	if err := requireUser(caller); err != nil {
		return err
	}
	if !caller.HasRole(role) {
		return forbidden("only users in role %s may perform this action", role)
	}
	return nil
}
