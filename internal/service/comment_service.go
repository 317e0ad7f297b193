package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/text-materials-api/internal/models"
)

// commentService is the concrete implementation of CommentService
type commentService struct {
	*deps
	materials *materialService
	bans      BanService
	log       zerolog.Logger
}

func newCommentService(d *deps, materials *materialService, bans BanService) *commentService {
	return &commentService{
		deps:      d,
		materials: materials,
		bans:      bans,
		log:       d.log.With().Str("service", "comment").Logger(),
	}
}

func (s *commentService) load(ctx context.Context, id int64) (*models.Comment, error) {
	c, err := s.repos.Comment.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "failed to get comment")
	}
	if c == nil {
		return nil, notFound("comment", id)
	}
	return c, nil
}

// Create posts a comment or, with ParentID set, a reply to a top-level
// comment on the same material
func (s *commentService) Create(ctx context.Context, caller *models.Identity, materialID int64, req *models.CreateCommentRequest) (*models.Comment, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if err := requireNotBanned(ctx, s.bans, caller.UserID); err != nil {
		return nil, err
	}
	if _, err := s.materials.loadVisible(ctx, caller, materialID); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.load(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.MaterialID != materialID {
			return nil, invalidf("parent_id", "parent comment belongs to a different text material")
		}
		if parent.ParentID != nil {
			return nil, invalidf("parent_id", "replies can only be added to top-level comments")
		}
	}

	authorID := caller.UserID
	comment := &models.Comment{
		MaterialID: materialID,
		AuthorID:   &authorID,
		ParentID:   req.ParentID,
		Content:    req.Content,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repos.Comment.Create(ctx, comment); err != nil {
		return nil, wrap(err, "failed to create comment")
	}

	s.log.Debug().Int64("comment_id", comment.ID).Int64("material_id", materialID).Msg("Comment created")
	return s.load(ctx, comment.ID)
}

// Edit replaces the content of the caller's own comment
func (s *commentService) Edit(ctx context.Context, caller *models.Identity, id int64, req *models.UpdateCommentRequest) (*models.Comment, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := s.validate(req); err != nil {
		return nil, err
	}

	comment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !comment.IsAuthor(caller.UserID) {
		return nil, forbidden("only the author may edit this comment")
	}

	comment.Content = req.Content
	if err := s.repos.Comment.Update(ctx, comment); err != nil {
		return nil, wrap(err, "failed to update comment")
	}
	return comment, nil
}

// Delete removes a comment. Comments that still have replies cannot be
// deleted.
func (s *commentService) Delete(ctx context.Context, caller *models.Identity, id int64) error {
	if err := requireUser(caller); err != nil {
		return err
	}
	comment, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !comment.IsAuthor(caller.UserID) && !caller.HasRole(models.RoleAdmin) {
		return forbidden("only the author or an administrator may delete this comment")
	}

	hasReplies, err := s.repos.Comment.HasReplies(ctx, id)
	if err != nil {
		return wrap(err, "failed to check replies")
	}
	if hasReplies {
		return conflict("comment with id %d has replies and cannot be deleted", id)
	}

	if err := s.repos.Comment.Delete(ctx, id); err != nil {
		return wrap(err, "failed to delete comment")
	}
	return nil
}

// ListThreads returns the material's top-level comments in creation order,
// each with its replies
func (s *commentService) ListThreads(ctx context.Context, caller *models.Identity, materialID int64) ([]*models.CommentThread, error) {
	if _, err := s.materials.loadVisible(ctx, caller, materialID); err != nil {
		return nil, err
	}
	comments, err := s.repos.Comment.ListByMaterial(ctx, materialID)
	if err != nil {
		return nil, wrap(err, "failed to list comments")
	}
	return buildThreads(comments), nil
}

// buildThreads groups replies under their parents through a parent-id index.
// comments must be in creation order.
func buildThreads(comments []*models.Comment) []*models.CommentThread {
	replies := make(map[int64][]*models.Comment)
	for _, c := range comments {
		if c.ParentID != nil {
			replies[*c.ParentID] = append(replies[*c.ParentID], c)
		}
	}

	threads := make([]*models.CommentThread, 0, len(comments)-countReplies(replies))
	for _, c := range comments {
		if c.ParentID != nil {
			continue
		}
		thread := &models.CommentThread{Comment: c, Replies: replies[c.ID]}
		if thread.Replies == nil {
			thread.Replies = []*models.Comment{}
		}
		threads = append(threads, thread)
	}
	return threads
}

func countReplies(replies map[int64][]*models.Comment) int {
	n := 0
	for _, r := range replies {
		n += len(r)
	}
	return n
}
