package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/text-materials-api/internal/database"
	"github.com/text-materials-api/internal/models"
)

const userColumns = `id, username, email, password_hash, receive_notifications, created_at`

// userRepo is the concrete implementation of UserRepository
type userRepo struct {
	db *database.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *database.DB) UserRepository {
	return &userRepo{db: db}
}

// Create inserts a new user and sets its ID
func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, receive_notifications, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return r.db.QueryRowxContext(ctx, query,
		user.Username, strings.ToLower(user.Email), user.PasswordHash,
		user.ReceiveNotifications, user.CreatedAt,
	).Scan(&user.ID)
}

// Update saves the mutable profile fields
func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET username = $2, email = $3, password_hash = $4, receive_notifications = $5
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, strings.ToLower(user.Email), user.PasswordHash, user.ReceiveNotifications,
	)
	return err
}

// GetByID retrieves a user by ID with roles
func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by email (case-insensitive) with roles
func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email))
}

func (r *userRepo) getOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadRoles(ctx, []*models.User{&user}); err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns every user ordered by creation time
func (r *userRepo) List(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`); err != nil {
		return nil, err
	}
	if err := r.loadRoles(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

// loadRoles fills Roles for all users with a single query
func (r *userRepo) loadRoles(ctx context.Context, users []*models.User) error {
	if len(users) == 0 {
		return nil
	}
	byID := make(map[int64]*models.User, len(users))
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		u.Roles = []string{}
		byID[u.ID] = u
		ids = append(ids, u.ID)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, role FROM user_roles WHERE user_id = ANY($1) ORDER BY role`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var userID int64
		var role string
		if err := rows.Scan(&userID, &role); err != nil {
			return err
		}
		if u, ok := byID[userID]; ok {
			u.Roles = append(u.Roles, role)
		}
	}
	return rows.Err()
}

// AddRole grants a role; granting an existing role is a no-op
func (r *userRepo) AddRole(ctx context.Context, userID int64, role string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, role)
	return err
}

// RemoveRole revokes a role
func (r *userRepo) RemoveRole(ctx context.Context, userID int64, role string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1 AND role = $2`, userID, role)
	return err
}

// Count returns the total number of users
func (r *userRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM users")
	return count, err
}
