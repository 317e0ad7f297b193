package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/text-materials-api/internal/database"
	"github.com/text-materials-api/internal/models"
)

const materialSelect = `
	SELECT m.id, m.title, m.content, m.approval_status, m.reject_count,
		m.category_id, c.title AS category_title,
		m.author_id, COALESCE(u.username, '') AS author_name,
		m.date_published, m.date_last_changed, m.date_approved
	FROM text_materials m
	JOIN categories c ON c.id = m.category_id
	LEFT JOIN users u ON u.id = m.author_id
`

// materialRepo is the concrete implementation of MaterialRepository
type materialRepo struct {
	db *database.DB
}

// NewMaterialRepo creates a new text material repository
func NewMaterialRepo(db *database.DB) MaterialRepository {
	return &materialRepo{db: db}
}

// Create inserts a new material and sets its ID
func (r *materialRepo) Create(ctx context.Context, m *models.TextMaterial) error {
	query := `
		INSERT INTO text_materials
			(title, content, approval_status, reject_count, category_id, author_id,
			 date_published, date_last_changed, date_approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	return r.db.QueryRowxContext(ctx, query,
		m.Title, m.Content, m.ApprovalStatus, m.RejectCount, m.CategoryID, m.AuthorID,
		m.DatePublished, m.DateLastChanged, m.DateApproved,
	).Scan(&m.ID)
}

// Update persists every mutable column of the material
func (r *materialRepo) Update(ctx context.Context, m *models.TextMaterial) error {
	query := `
		UPDATE text_materials SET
			title = $2, content = $3, approval_status = $4, reject_count = $5,
			category_id = $6, date_last_changed = $7, date_approved = $8
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.Title, m.Content, m.ApprovalStatus, m.RejectCount,
		m.CategoryID, m.DateLastChanged, m.DateApproved,
	)
	return err
}

// Delete removes the material and everything hanging off it in one transaction
func (r *materialRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		statements := []string{
			`DELETE FROM material_likes WHERE material_id = $1`,
			`DELETE FROM material_saves WHERE material_id = $1`,
			`DELETE FROM comments WHERE material_id = $1 AND parent_id IS NOT NULL`,
			`DELETE FROM comments WHERE material_id = $1`,
			`DELETE FROM text_materials WHERE id = $1`,
		}
		for _, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("delete material %d: %w", id, err)
			}
		}
		return nil
	})
}

// GetByID retrieves a material by ID
func (r *materialRepo) GetByID(ctx context.Context, id int64) (*models.TextMaterial, error) {
	var m models.TextMaterial
	err := r.db.GetContext(ctx, &m, materialSelect+` WHERE m.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List loads the materials inside scope. Filtering, sorting and paging are
// left to the query pipeline.
func (r *materialRepo) List(ctx context.Context, scope models.MaterialScope) ([]models.TextMaterial, error) {
	var conditions []string
	var args []interface{}
	if scope.AuthorID != nil {
		args = append(args, *scope.AuthorID)
		conditions = append(conditions, fmt.Sprintf("m.author_id = $%d", len(args)))
	}
	if scope.SavedBy != nil {
		args = append(args, *scope.SavedBy)
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS(SELECT 1 FROM material_saves s WHERE s.material_id = m.id AND s.user_id = $%d)", len(args)))
	}
	if scope.LikedBy != nil {
		args = append(args, *scope.LikedBy)
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS(SELECT 1 FROM material_likes l WHERE l.material_id = m.id AND l.user_id = $%d)", len(args)))
	}

	query := materialSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY m.id"

	var materials []models.TextMaterial
	if err := r.db.SelectContext(ctx, &materials, query, args...); err != nil {
		return nil, err
	}
	return materials, nil
}

// Count returns the total number of materials
func (r *materialRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM text_materials")
	return count, err
}

// StreamApproved streams approved materials in publish order for export
func (r *materialRepo) StreamApproved(ctx context.Context, callback func(*models.TextMaterial) error) error {
	rows, err := r.db.QueryxContext(ctx,
		materialSelect+` WHERE m.approval_status = $1 ORDER BY m.date_published, m.id`, models.StatusApproved)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m models.TextMaterial
		if err := rows.StructScan(&m); err != nil {
			return err
		}
		if err := callback(&m); err != nil {
			return err
		}
	}

	return rows.Err()
}
