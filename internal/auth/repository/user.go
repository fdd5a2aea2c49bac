package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/medistock/medistock-backend/pkg/database"
	"github.com/medistock/medistock-backend/pkg/errors"
)

// User represents a staff profile
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    *string   `db:"first_name" json:"first_name,omitempty"`
	LastName     *string   `db:"last_name" json:"last_name,omitempty"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	AvatarURL    *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// FullName returns the display name, falling back to the email
func (u *User) FullName() string {
	first, last := "", ""
	if u.FirstName != nil {
		first = *u.FirstName
	}
	if u.LastName != nil {
		last = *u.LastName
	}
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case last != "":
		return last
	default:
		return u.Email
	}
}

// UserRepository handles profile and role persistence
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new profile
func (r *UserRepository) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	query := `
		INSERT INTO profiles (id, email, password_hash, first_name, last_name, phone, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.Phone, user.AvatarURL,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return database.MapPQError(err)
	}

	return nil
}

// GetByID gets a profile by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	var user User
	query := `
		SELECT id, email, password_hash, first_name, last_name, phone, avatar_url, created_at, updated_at
		FROM profiles WHERE id = $1
	`

	err := r.db.GetContext(ctx, &user, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("user")
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetByEmail gets a profile by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	query := `
		SELECT id, email, password_hash, first_name, last_name, phone, avatar_url, created_at, updated_at
		FROM profiles WHERE email = $1
	`

	err := r.db.GetContext(ctx, &user, query, email)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("user")
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// ListRoles returns the role names assigned to a user.
// A user with no rows here is pending approval.
func (r *UserRepository) ListRoles(ctx context.Context, userID string) ([]string, error) {
	var roles []string
	query := `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`

	if err := r.db.SelectContext(ctx, &roles, query, userID); err != nil {
		return nil, err
	}

	return roles, nil
}

// AssignRole grants a role to a user. Assigning an already held role is a no-op.
func (r *UserRepository) AssignRole(ctx context.Context, userID, role string) error {
	query := `
		INSERT INTO user_roles (id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, role) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, query, uuid.New().String(), userID, role); err != nil {
		return database.MapPQError(err)
	}

	return nil
}

// RevokeRole removes a role from a user
func (r *UserRepository) RevokeRole(ctx context.Context, userID, role string) error {
	query := `DELETE FROM user_roles WHERE user_id = $1 AND role = $2`

	result, err := r.db.ExecContext(ctx, query, userID, role)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("role assignment")
	}

	return nil
}

// CreateWithRoles creates a profile and its initial roles in one transaction
func (r *UserRepository) CreateWithRoles(ctx context.Context, user *User, roles []string) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		insertUser := `
			INSERT INTO profiles (id, email, password_hash, first_name, last_name, phone, avatar_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at, updated_at
		`

		err := tx.QueryRowxContext(ctx, insertUser,
			user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName,
			user.Phone, user.AvatarURL,
		).Scan(&user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return database.MapPQError(err)
		}

		insertRole := `INSERT INTO user_roles (id, user_id, role) VALUES ($1, $2, $3)`
		for _, role := range roles {
			if _, err := tx.ExecContext(ctx, insertRole, uuid.New().String(), user.ID, role); err != nil {
				return database.MapPQError(err)
			}
		}

		return nil
	})
}
