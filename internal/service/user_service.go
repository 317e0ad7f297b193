package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/text-materials-api/internal/models"
)

// maxNotificationsListed caps a user's notification history
const maxNotificationsListed = 100

// userService is the concrete implementation of UserService
type userService struct {
	*deps
	log zerolog.Logger
}

func newUserService(d *deps) *userService {
	return &userService{deps: d, log: d.log.With().Str("service", "user").Logger()}
}

func (s *userService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repos.User.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "failed to get user")
	}
	if user == nil {
		return nil, notFound("user", id)
	}
	return user, nil
}

// SetNotifications turns email notifications on or off for the caller
func (s *userService) SetNotifications(ctx context.Context, caller *models.Identity, enabled bool) (*models.User, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	user, err := s.Get(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	user.ReceiveNotifications = enabled
	if err := s.repos.User.Update(ctx, user); err != nil {
		return nil, wrap(err, "failed to update user")
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, caller *models.Identity) ([]*models.User, error) {
	if err := requireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	users, err := s.repos.User.List(ctx)
	if err != nil {
		return nil, wrap(err, "failed to list users")
	}
	return users, nil
}

// GrantRole adds role to the user. Role changes apply from the user's next login.
func (s *userService) GrantRole(ctx context.Context, caller *models.Identity, userID int64, role string) (*models.User, error) {
	return s.changeRole(ctx, caller, userID, role, true)
}

// RevokeRole removes role from the user
func (s *userService) RevokeRole(ctx context.Context, caller *models.Identity, userID int64, role string) (*models.User, error) {
	return s.changeRole(ctx, caller, userID, role, false)
}

func (s *userService) changeRole(ctx context.Context, caller *models.Identity, userID int64, role string, grant bool) (*models.User, error) {
	if err := requireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.validate(&models.RoleRequest{Role: role}); err != nil {
		return nil, err
	}
	if !grant && role == models.RoleAdmin && caller.UserID == userID {
		return nil, conflict("administrators cannot revoke their own %s role", models.RoleAdmin)
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if grant {
		err = s.repos.User.AddRole(ctx, userID, role)
	} else {
		err = s.repos.User.RemoveRole(ctx, userID, role)
	}
	if err != nil {
		return nil, wrap(err, "failed to change role")
	}

	s.log.Info().
		Int64("user_id", userID).
		Str("role", role).
		Bool("granted", grant).
		Int64("by", caller.UserID).
		Msg("Role changed")

	if user, err = s.Get(ctx, userID); err != nil {
		return nil, err
	}
	return user, nil
}

// Notifications lists the caller's most recent notifications
func (s *userService) Notifications(ctx context.Context, caller *models.Identity, limit int) ([]*models.Notification, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	if limit < 1 || limit > maxNotificationsListed {
		limit = maxNotificationsListed
	}
	notifications, err := s.repos.Notification.ListByUser(ctx, caller.UserID, limit)
	if err != nil {
		return nil, wrap(err, "failed to list notifications")
	}
	return notifications, nil
}
