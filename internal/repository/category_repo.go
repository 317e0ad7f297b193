package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/text-materials-api/internal/database"
	"github.com/text-materials-api/internal/models"
)

// categoryRepo is the concrete implementation of CategoryRepository
type categoryRepo struct {
	db *database.DB
}

// NewCategoryRepo creates a new category repository
func NewCategoryRepo(db *database.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	return r.db.QueryRowxContext(ctx,
		`INSERT INTO categories (title) VALUES ($1) RETURNING id`, category.Title,
	).Scan(&category.ID)
}

func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	_, err := r.db.ExecContext(ctx, `UPDATE categories SET title = $2 WHERE id = $1`, category.ID, category.Title)
	return err
}

func (r *categoryRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return err
}

func (r *categoryRepo) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	err := r.db.GetContext(ctx, &category, `SELECT id, title FROM categories WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// TitleExists compares titles case-insensitively
func (r *categoryRepo) TitleExists(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM categories WHERE LOWER(title) = LOWER($1))", title)
	return exists, err
}

// InUse reports whether any material references the category
func (r *categoryRepo) InUse(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM text_materials WHERE category_id = $1)", id)
	return exists, err
}

func (r *categoryRepo) List(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	err := r.db.SelectContext(ctx, &categories, `SELECT id, title FROM categories ORDER BY title`)
	return categories, err
}
