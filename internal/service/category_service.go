package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/text-materials-api/internal/models"
)

// categoryService is the concrete implementation of CategoryService
type categoryService struct {
	*deps
	log zerolog.Logger
}

func newCategoryService(d *deps) *categoryService {
	return &categoryService{deps: d, log: d.log.With().Str("service", "category").Logger()}
}

func (s *categoryService) Create(ctx context.Context, caller *models.Identity, req *models.CategoryRequest) (*models.Category, error) {
	if err := requireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validate(req); err != nil {
		return nil, err
	}

	exists, err := s.repos.Category.TitleExists(ctx, req.Title)
	if err != nil {
		return nil, wrap(err, "failed to check category title")
	}
	if exists {
		return nil, conflict("category with title %q already exists", req.Title)
	}

	category := &models.Category{Title: req.Title}
	if err := s.repos.Category.Create(ctx, category); err != nil {
		return nil, wrap(err, "failed to create category")
	}

	s.log.Info().Int64("category_id", category.ID).Str("title", category.Title).Msg("Category created")
	return category, nil
}

func (s *categoryService) Rename(ctx context.Context, caller *models.Identity, id int64, req *models.CategoryRequest) (*models.Category, error) {
	if err := requireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validate(req); err != nil {
		return nil, err
	}

	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Changing only the letter case of the current title is allowed
	if !strings.EqualFold(category.Title, req.Title) {
		exists, err := s.repos.Category.TitleExists(ctx, req.Title)
		if err != nil {
			return nil, wrap(err, "failed to check category title")
		}
		if exists {
			return nil, conflict("category with title %q already exists", req.Title)
		}
	}

	category.Title = req.Title
	if err := s.repos.Category.Update(ctx, category); err != nil {
		return nil, wrap(err, "failed to rename category")
	}
	return category, nil
}

// Delete removes a category that no material references
func (s *categoryService) Delete(ctx context.Context, caller *models.Identity, id int64) error {
	if err := requireRole(caller, models.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	inUse, err := s.repos.Category.InUse(ctx, id)
	if err != nil {
		return wrap(err, "failed to check category usage")
	}
	if inUse {
		return conflict("category with id %d still has text materials", id)
	}

	if err := s.repos.Category.Delete(ctx, id); err != nil {
		return wrap(err, "failed to delete category")
	}
	s.log.Info().Int64("category_id", id).Msg("Category deleted")
	return nil
}

func (s *categoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	category, err := s.repos.Category.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "failed to get category")
	}
	if category == nil {
		return nil, notFound("category", id)
	}
	return category, nil
}

func (s *categoryService) List(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.repos.Category.List(ctx)
	if err != nil {
		return nil, wrap(err, "failed to list categories")
	}
	return categories, nil
}
