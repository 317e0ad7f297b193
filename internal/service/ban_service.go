package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/text-materials-api/internal/models"
)

// banService is the concrete implementation of BanService
type banService struct {
	*deps
	log zerolog.Logger
}

func newBanService(d *deps) *banService {
	return &banService{deps: d, log: d.log.With().Str("service", "ban").Logger()}
}

func (s *banService) requireUserExists(ctx context.Context, userID int64) error {
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		return wrap(err, "failed to get user")
	}
	if user == nil {
		return notFound("user", userID)
	}
	return nil
}

func (s *banService) checkRequest(req *models.BanRequest) error {
	req.Reason = strings.TrimSpace(req.Reason)
	return s.validate(req)
}

// BanUser bans the user for req.Days from now. An expired ban left on
// record is replaced; an active one is a conflict.
func (s *banService) BanUser(ctx context.Context, caller *models.Identity, userID int64, req *models.BanRequest) (*models.Ban, error) {
	if err := requireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.checkRequest(req); err != nil {
		return nil, err
	}
	if err := s.requireUserExists(ctx, userID); err != nil {
		return nil, err
	}

	now := s.now()
	existing, err := s.repos.Ban.GetByUserID(ctx, userID)
	if err != nil {
		return nil, wrap(err, "failed to get ban")
	}
	if existing != nil && existing.Active(now) {
		return nil, conflict("user with id %d is already banned", userID)
	}

	ban := &models.Ban{UserID: userID, Reason: req.Reason, Expires: now.AddDate(0, 0, req.Days)}
	if existing != nil {
		ban.ID = existing.ID
		err = s.repos.Ban.Update(ctx, ban)
	} else {
		err = s.repos.Ban.Create(ctx, ban)
	}
	if err != nil {
		return nil, wrap(err, "failed to save ban")
	}

	s.log.Info().
		Int64("user_id", userID).
		Int("days", req.Days).
		Time("expires", ban.Expires).
		Int64("by", caller.UserID).
		Msg("User banned")
	return ban, nil
}

// RenewBan extends an existing ban and appends the new reason
func (s *banService) RenewBan(ctx context.Context, caller *models.Identity, userID int64, req *models.BanRequest) (*models.Ban, error) {
	if err := requireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.checkRequest(req); err != nil {
		return nil, err
	}
	if err := s.requireUserExists(ctx, userID); err != nil {
		return nil, err
	}

	ban, err := s.getByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ban.Renew(req.Reason, req.Days, s.now())
	if err := s.repos.Ban.Update(ctx, ban); err != nil {
		return nil, wrap(err, "failed to renew ban")
	}

	s.log.Info().Int64("user_id", userID).Time("expires", ban.Expires).Msg("Ban renewed")
	return ban, nil
}

// Unban removes the user's ban
func (s *banService) Unban(ctx context.Context, caller *models.Identity, userID int64) error {
	if err := requireRole(caller, models.RoleAdmin); err != nil {
		return err
	}
	ban, err := s.getByUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repos.Ban.Delete(ctx, ban.ID); err != nil {
		return wrap(err, "failed to delete ban")
	}
	s.log.Info().Int64("user_id", userID).Msg("User unbanned")
	return nil
}

// DeleteBan removes a ban by its own id
func (s *banService) DeleteBan(ctx context.Context, caller *models.Identity, banID int64) error {
	if err := requireRole(caller, models.RoleAdmin); err != nil {
		return err
	}
	ban, err := s.repos.Ban.GetByID(ctx, banID)
	if err != nil {
		return wrap(err, "failed to get ban")
	}
	if ban == nil {
		return notFound("ban", banID)
	}
	if err := s.repos.Ban.Delete(ctx, banID); err != nil {
		return wrap(err, "failed to delete ban")
	}
	return nil
}

func (s *banService) Get(ctx context.Context, caller *models.Identity, userID int64) (*models.Ban, error) {
	if err := requireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.getByUser(ctx, userID)
}

func (s *banService) List(ctx context.Context, caller *models.Identity) ([]*models.Ban, error) {
	if err := requireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	bans, err := s.repos.Ban.List(ctx)
	if err != nil {
		return nil, wrap(err, "failed to list bans")
	}
	return bans, nil
}

func (s *banService) ActiveBan(ctx context.Context, userID int64) (*models.Ban, error) {
	ban, err := s.repos.Ban.GetByUserID(ctx, userID)
	if err != nil {
		return nil, wrap(err, "failed to get ban")
	}
	if ban == nil || !ban.Active(s.now()) {
		return nil, nil
	}
	return ban, nil
}

func (s *banService) getByUser(ctx context.Context, userID int64) (*models.Ban, error) {
	ban, err := s.repos.Ban.GetByUserID(ctx, userID)
	if err != nil {
		return nil, wrap(err, "failed to get ban")
	}
	if ban == nil {
		return nil, &Error{Kind: KindNotFound, Message: "ban for user does not exist"}
	}
	return ban, nil
}

// requireNotBanned refuses callers with an active ban
func requireNotBanned(ctx context.Context, bans BanService, userID int64) error {
	ban, err := bans.ActiveBan(ctx, userID)
	if err != nil {
		return err
	}
	if ban != nil {
		return bannedError(ban)
	}
	return nil
}
