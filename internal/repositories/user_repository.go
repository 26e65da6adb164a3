package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"ispcrm/internal/models"
)

// ErrDuplicateEmail is returned when a user create hits the unique email
// constraint.
var ErrDuplicateEmail = fmt.Errorf("email already registered")

type UserRepository struct {
	db Querier
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role, is_active, created_at, refresh_token, refresh_expires_at, refresh_revoked`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive,
		&u.CreatedAt, &u.RefreshToken, &u.RefreshExpiresAt, &u.RefreshRevoked)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(user *models.User) error {
	const q = `
        INSERT INTO users (name, email, password_hash, role, is_active, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	err := r.db.QueryRow(q, user.Name, user.Email, user.PasswordHash, user.Role,
		user.IsActive, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(id int) (*models.User, error) {
	q := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	user, err := scanUser(r.db.QueryRow(q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	q := fmt.Sprintf(`SELECT %s FROM users WHERE LOWER(email) = LOWER($1)`, userColumns)
	user, err := scanUser(r.db.QueryRow(q, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

func (r *UserRepository) List(limit, offset int) ([]*models.User, error) {
	q := fmt.Sprintf(`SELECT %s FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`, userColumns)
	rows, err := r.db.Query(q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) UpdateRefresh(id int, token string, expiresAt time.Time) error {
	const q = `
        UPDATE users
        SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
        WHERE id=$3
    `
	if _, err := r.db.Exec(q, token, expiresAt, id); err != nil {
		return fmt.Errorf("update refresh token: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByRefresh(token string) (*models.User, error) {
	q := fmt.Sprintf(`SELECT %s FROM users WHERE refresh_token = $1 AND refresh_revoked = FALSE`, userColumns)
	user, err := scanUser(r.db.QueryRow(q, token))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by refresh token: %w", err)
	}
	return user, nil
}
