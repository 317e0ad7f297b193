package repository

import (
	"context"
	"fmt"

	"github.com/text-materials-api/internal/database"
)

var associationTables = map[AssociationKind]string{
	Likes: "material_likes",
	Saves: "material_saves",
}

// associationRepo is the concrete implementation of AssociationRepository
type associationRepo struct {
	db *database.DB
}

// NewAssociationRepo creates a repository over the likes and saves join tables
func NewAssociationRepo(db *database.DB) AssociationRepository {
	return &associationRepo{db: db}
}

func tableFor(kind AssociationKind) (string, error) {
	table, ok := associationTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown association kind %q", kind)
	}
	return table, nil
}

// Add inserts the pair; adding an existing pair is a no-op
func (r *associationRepo) Add(ctx context.Context, kind AssociationKind, userID, materialID int64) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO `+table+` (user_id, material_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, materialID)
	return err
}

func (r *associationRepo) Remove(ctx context.Context, kind AssociationKind, userID, materialID int64) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE user_id = $1 AND material_id = $2`, userID, materialID)
	return err
}

func (r *associationRepo) Contains(ctx context.Context, kind AssociationKind, userID, materialID int64) (bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	var exists bool
	err = r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM `+table+` WHERE user_id = $1 AND material_id = $2)`, userID, materialID)
	return exists, err
}

func (r *associationRepo) Count(ctx context.Context, kind AssociationKind, materialID int64) (int, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	var count int
	err = r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM `+table+` WHERE material_id = $1`, materialID)
	return count, err
}

