package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/text-materials-api/internal/database"
	"github.com/text-materials-api/internal/models"
)

// banRepo is the concrete implementation of BanRepository
type banRepo struct {
	db *database.DB
}

// NewBanRepo creates a new ban repository
func NewBanRepo(db *database.DB) BanRepository {
	return &banRepo{db: db}
}

func (r *banRepo) Create(ctx context.Context, ban *models.Ban) error {
	return r.db.QueryRowxContext(ctx,
		`INSERT INTO bans (user_id, reason, expires) VALUES ($1, $2, $3) RETURNING id`,
		ban.UserID, ban.Reason, ban.Expires,
	).Scan(&ban.ID)
}

func (r *banRepo) Update(ctx context.Context, ban *models.Ban) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE bans SET reason = $2, expires = $3 WHERE id = $1`, ban.ID, ban.Reason, ban.Expires)
	return err
}

func (r *banRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM bans WHERE id = $1`, id)
	return err
}

func (r *banRepo) GetByID(ctx context.Context, id int64) (*models.Ban, error) {
	return r.getOne(ctx, `SELECT id, user_id, reason, expires FROM bans WHERE id = $1`, id)
}

func (r *banRepo) GetByUserID(ctx context.Context, userID int64) (*models.Ban, error) {
	return r.getOne(ctx, `SELECT id, user_id, reason, expires FROM bans WHERE user_id = $1`, userID)
}

func (r *banRepo) getOne(ctx context.Context, query string, arg int64) (*models.Ban, error) {
	var ban models.Ban
	err := r.db.GetContext(ctx, &ban, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ban, nil
}

func (r *banRepo) List(ctx context.Context) ([]*models.Ban, error) {
	var bans []*models.Ban
	err := r.db.SelectContext(ctx, &bans, `SELECT id, user_id, reason, expires FROM bans ORDER BY expires DESC`)
	return bans, err
}
