package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/text-materials-api/internal/models"
	"github.com/text-materials-api/internal/query"
	"github.com/text-materials-api/internal/repository"
)

// materialService is the concrete implementation of MaterialService
type materialService struct {
	*deps
	notifier Notifier
	bans     BanService
	log      zerolog.Logger
}

func newMaterialService(d *deps, notifier Notifier, bans BanService) *materialService {
	return &materialService{
		deps:     d,
		notifier: notifier,
		bans:     bans,
		log:      d.log.With().Str("service", "material").Logger(),
	}
}

// canSee reports whether caller may read m. Approved materials are public;
// everything else is limited to the author and moderators.
func canSee(caller *models.Identity, m *models.TextMaterial) bool {
	if m.ApprovalStatus == models.StatusApproved || caller.IsModerator() {
		return true
	}
	return caller != nil && m.IsAuthor(caller.UserID)
}

func (s *materialService) load(ctx context.Context, id int64) (*models.TextMaterial, error) {
	m, err := s.repos.Material.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "failed to get text material")
	}
	if m == nil {
		return nil, notFound("text material", id)
	}
	return m, nil
}

// loadVisible hides materials the caller may not read behind not-found
func (s *materialService) loadVisible(ctx context.Context, caller *models.Identity, id int64) (*models.TextMaterial, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canSee(caller, m) {
		return nil, notFound("text material", id)
	}
	return m, nil
}

func (s *materialService) author(ctx context.Context, m *models.TextMaterial) (*models.User, error) {
	if m.AuthorID == nil {
		return nil, nil
	}
	user, err := s.repos.User.GetByID(ctx, *m.AuthorID)
	if err != nil {
		return nil, wrap(err, "failed to get author")
	}
	return user, nil
}

func (s *materialService) requireCategory(ctx context.Context, id int64) error {
	category, err := s.repos.Category.GetByID(ctx, id)
	if err != nil {
		return wrap(err, "failed to get category")
	}
	if category == nil {
		return notFound("category", id)
	}
	return nil
}

// notified turns a failed notification into a KindNotification error while
// still handing back the saved material
func (s *materialService) notified(m *models.TextMaterial, event string, err error) (*models.TextMaterial, error) {
	if err == nil {
		return m, nil
	}
	s.log.Warn().Err(err).Int64("material_id", m.ID).Str("event", event).Msg("Failed to queue notification")
	return m, notificationFailed(err)
}

// Create submits a new material for review
func (s *materialService) Create(ctx context.Context, caller *models.Identity, req *models.CreateMaterialRequest) (*models.TextMaterial, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if err := requireNotBanned(ctx, s.bans, caller.UserID); err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	authorID := caller.UserID
	m := &models.TextMaterial{
		Title:           req.Title,
		Content:         req.Content,
		CategoryID:      req.CategoryID,
		AuthorID:        &authorID,
		ApprovalStatus:  models.StatusPending,
		DatePublished:   now,
		DateLastChanged: now,
	}
	if err := s.repos.Material.Create(ctx, m); err != nil {
		return nil, wrap(err, "failed to create text material")
	}
	s.log.Info().Int64("material_id", m.ID).Int64("author_id", authorID).Msg("Text material created")

	created, err := s.load(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	author, err := s.author(ctx, created)
	if err != nil {
		return created, err
	}
	return s.notified(created, "created", s.notifier.NotifyCreated(ctx, author, created))
}

func (s *materialService) Get(ctx context.Context, caller *models.Identity, id int64) (*models.MaterialDetail, error) {
	m, err := s.loadVisible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, caller, m)
}

func (s *materialService) detail(ctx context.Context, caller *models.Identity, m *models.TextMaterial) (*models.MaterialDetail, error) {
	d := &models.MaterialDetail{TextMaterial: *m}

	count, err := s.repos.Association.Count(ctx, repository.Likes, m.ID)
	if err != nil {
		return nil, wrap(err, "failed to count likes")
	}
	d.LikesCount = count

	if caller != nil {
		if d.Liked, err = s.repos.Association.Contains(ctx, repository.Likes, caller.UserID, m.ID); err != nil {
			return nil, wrap(err, "failed to check like")
		}
		if d.Saved, err = s.repos.Association.Contains(ctx, repository.Saves, caller.UserID, m.ID); err != nil {
			return nil, wrap(err, "failed to check save")
		}
	}
	return d, nil
}

// Edit replaces title, content and category. Only the author may edit and
// every edit sends the material back to Pending.
func (s *materialService) Edit(ctx context.Context, caller *models.Identity, id int64, req *models.UpdateMaterialRequest) (*models.TextMaterial, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	m, err := s.loadVisible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !m.IsAuthor(caller.UserID) {
		return nil, forbidden("only the author may edit this text material")
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	m.Edit(req.Title, req.Content, req.CategoryID, s.now().UTC())
	if err := s.repos.Material.Update(ctx, m); err != nil {
		return nil, wrap(err, "failed to update text material")
	}
	return s.load(ctx, id)
}

// Delete removes the material with its likes, saves and comments. The
// author is notified when someone else deletes it.
func (s *materialService) Delete(ctx context.Context, caller *models.Identity, id int64) error {
	if err := requireUser(caller); err != nil {
		return err
	}
	m, err := s.loadVisible(ctx, caller, id)
	if err != nil {
		return err
	}
	isAuthor := m.IsAuthor(caller.UserID)
	if !isAuthor && !caller.HasRole(models.RoleAdmin) {
		return forbidden("only the author or an administrator may delete this text material")
	}

	author, err := s.author(ctx, m)
	if err != nil {
		return err
	}
	if err := s.repos.Material.Delete(ctx, id); err != nil {
		return wrap(err, "failed to delete text material")
	}
	s.log.Info().Int64("material_id", id).Int64("by", caller.UserID).Msg("Text material deleted")

	if isAuthor {
		return nil
	}
	_, err = s.notified(m, "deleted", s.notifier.NotifyDeleted(ctx, author, m))
	return err
}

// Approve moves the material to Approved and notifies the author
func (s *materialService) Approve(ctx context.Context, caller *models.Identity, id int64) (*models.TextMaterial, error) {
	if err := requireRole(caller, models.RoleManager); err != nil {
		return nil, err
	}
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := m.Approve(s.now().UTC()); err != nil {
		return nil, transition(err)
	}
	if err := s.repos.Material.Update(ctx, m); err != nil {
		return nil, wrap(err, "failed to approve text material")
	}
	s.log.Info().Int64("material_id", id).Int64("by", caller.UserID).Msg("Text material approved")

	author, err := s.author(ctx, m)
	if err != nil {
		return m, err
	}
	return s.notified(m, "approved", s.notifier.NotifyApproved(ctx, author, m))
}

// Reject moves the material to Rejected, counts the rejection and notifies
// the author with the optional reason
func (s *materialService) Reject(ctx context.Context, caller *models.Identity, id int64, reason *string) (*models.TextMaterial, error) {
	if err := requireRole(caller, models.RoleManager); err != nil {
		return nil, err
	}
	if reason != nil {
		trimmed := strings.TrimSpace(*reason)
		if trimmed == "" {
			reason = nil
		} else {
			reason = &trimmed
		}
	}
	if err := s.validate(&models.RejectRequest{Reason: reason}); err != nil {
		return nil, err
	}

	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := m.Reject(); err != nil {
		return nil, transition(err)
	}
	if err := s.repos.Material.Update(ctx, m); err != nil {
		return nil, wrap(err, "failed to reject text material")
	}
	s.log.Info().
		Int64("material_id", id).
		Int("reject_count", m.RejectCount).
		Int64("by", caller.UserID).
		Msg("Text material rejected")

	author, err := s.author(ctx, m)
	if err != nil {
		return m, err
	}
	return s.notified(m, "rejected", s.notifier.NotifyRejected(ctx, author, m, reason))
}

// List runs the query pipeline over every material the caller may see.
// Callers who are not moderators only ever see approved materials here.
func (s *materialService) List(ctx context.Context, caller *models.Identity, params query.Params) (*query.PagedList[models.TextMaterial], error) {
	return s.page(ctx, models.MaterialScope{}, params, func(m *models.TextMaterial) bool {
		return m.ApprovalStatus == models.StatusApproved || caller.IsModerator()
	})
}

// ListByUser lists materials written by userID. Authors and moderators
// see every status; others see approved materials only.
func (s *materialService) ListByUser(ctx context.Context, caller *models.Identity, userID int64, params query.Params) (*query.PagedList[models.TextMaterial], error) {
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		return nil, wrap(err, "failed to get user")
	}
	if user == nil {
		return nil, notFound("user", userID)
	}
	return s.page(ctx, models.MaterialScope{AuthorID: &userID}, params, func(m *models.TextMaterial) bool {
		return canSee(caller, m)
	})
}

// ListSaved lists materials the caller saved
func (s *materialService) ListSaved(ctx context.Context, caller *models.Identity, params query.Params) (*query.PagedList[models.TextMaterial], error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	return s.page(ctx, models.MaterialScope{SavedBy: &caller.UserID}, params, func(m *models.TextMaterial) bool {
		return canSee(caller, m)
	})
}

// ListLiked lists materials the caller liked
func (s *materialService) ListLiked(ctx context.Context, caller *models.Identity, params query.Params) (*query.PagedList[models.TextMaterial], error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	return s.page(ctx, models.MaterialScope{LikedBy: &caller.UserID}, params, func(m *models.TextMaterial) bool {
		return canSee(caller, m)
	})
}

func (s *materialService) page(ctx context.Context, scope models.MaterialScope, params query.Params, visible func(*models.TextMaterial) bool) (*query.PagedList[models.TextMaterial], error) {
	all, err := s.repos.Material.List(ctx, scope)
	if err != nil {
		return nil, wrap(err, "failed to list text materials")
	}

	materials := all[:0]
	for i := range all {
		if visible(&all[i]) {
			materials = append(materials, all[i])
		}
	}
	params.SetPage(params.PageNumber, params.PageSize)
	return query.Apply(materials, params), nil
}

func (s *materialService) Like(ctx context.Context, caller *models.Identity, id int64) (*models.MaterialDetail, error) {
	return s.associate(ctx, caller, id, repository.Likes, true)
}

func (s *materialService) Unlike(ctx context.Context, caller *models.Identity, id int64) (*models.MaterialDetail, error) {
	return s.associate(ctx, caller, id, repository.Likes, false)
}

func (s *materialService) Save(ctx context.Context, caller *models.Identity, id int64) (*models.MaterialDetail, error) {
	return s.associate(ctx, caller, id, repository.Saves, true)
}

func (s *materialService) Unsave(ctx context.Context, caller *models.Identity, id int64) (*models.MaterialDetail, error) {
	return s.associate(ctx, caller, id, repository.Saves, false)
}

// associate adds or removes the (caller, material) pair. Both directions
// are idempotent.
func (s *materialService) associate(ctx context.Context, caller *models.Identity, id int64, kind repository.AssociationKind, add bool) (*models.MaterialDetail, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	m, err := s.loadVisible(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if add {
		err = s.repos.Association.Add(ctx, kind, caller.UserID, id)
	} else {
		err = s.repos.Association.Remove(ctx, kind, caller.UserID, id)
	}
	if err != nil {
		return nil, wrap(err, "failed to update "+string(kind))
	}
	return s.detail(ctx, caller, m)
}
