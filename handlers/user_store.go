package handlers

import (
	"context"
	"database/sql"
	"time"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a user account
type User struct {
	ID             int       `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Avatar         string    `json:"avatar"`
	Role           string    `json:"role"`
	Confirmed      bool      `json:"-"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"-"`
}

// UserStore provides access to user accounts
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a user store backed by the given database
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, username, email, COALESCE(avatar, ''), role, confirmed, hashed_password, created_at`

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Avatar, &u.Role, &u.Confirmed, &u.HashedPassword, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID fetches a user by ID. Returns nil when no user matches.
func (s *UserStore) GetByID(ctx context.Context, id int) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByUsername fetches a user by username. Returns nil when no user matches.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// GetByEmail fetches a user by email. Returns nil when no user matches.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// Create inserts a new user and returns the stored record
func (s *UserStore) Create(ctx context.Context, username, email, hashedPassword, role, avatar string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, hashed_password, role, avatar)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		RETURNING `+userColumns,
		username, email, hashedPassword, role, avatar)
	return scanUser(row)
}

// ConfirmEmail marks the account with the given email as confirmed
func (s *UserStore) ConfirmEmail(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET confirmed = TRUE WHERE email = $1`, email)
	return err
}

// UpdateAvatar stores a new avatar URL and returns the updated user
func (s *UserStore) UpdateAvatar(ctx context.Context, email, avatarURL string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET avatar = $1 WHERE email = $2
		RETURNING `+userColumns,
		avatarURL, email)
	return scanUser(row)
}

// ResetPassword replaces the stored password hash for a user
func (s *UserStore) ResetPassword(ctx context.Context, userID int, hashedPassword string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET hashed_password = $1 WHERE id = $2`, hashedPassword, userID)
	return err
}
