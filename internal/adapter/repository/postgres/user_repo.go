package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

const userColumns = `id, email, name, role, password_hash, active, failed_attempts, locked_until,
	totp_secret, totp_enabled, last_login_at, created_at, updated_at`

// UserRepository implements user persistence
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		user.ID,
		user.Email,
		user.Name,
		string(user.Role),
		user.PasswordHash,
		user.Active,
		user.FailedAttempts,
		user.LockedUntil,
		user.TOTPSecret,
		user.TOTPEnabled,
		user.LastLoginAt,
		user.CreatedAt,
		user.UpdatedAt,
	)

	return translate(err, nil)
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, domain.ErrUserNotFound)
	}

	return user, nil
}

// GetByEmailForUpdate retrieves a user by email, case insensitively, and locks the row.
func (r *UserRepository) GetByEmailForUpdate(ctx context.Context, tx usecase.Transaction, email string) (*domain.User, error) {
	pgTx, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}

	user, err := scanUser(pgTx.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1) FOR UPDATE`, email))
	if err != nil {
		return nil, translate(err, domain.ErrUserNotFound)
	}

	return user, nil
}

// UpdateSecurity stores the sign in counters.
func (r *UserRepository) UpdateSecurity(ctx context.Context, tx usecase.Transaction, user *domain.User) error {
	pgTx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	tag, err := pgTx.Exec(ctx, `
		UPDATE users
		SET failed_attempts = $2, locked_until = $3, last_login_at = $4, updated_at = $5
		WHERE id = $1`,
		user.ID, user.FailedAttempts, user.LockedUntil, user.LastLoginAt, user.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

// UpdateTOTP stores the two-factor secret and flag.
func (r *UserRepository) UpdateTOTP(ctx context.Context, user *domain.User) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET totp_secret = $2, totp_enabled = $3, updated_at = $4
		WHERE id = $1`,
		user.ID, user.TOTPSecret, user.TOTPEnabled, user.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

// SetActive enables or disables a user.
func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user domain.User
		role string
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&role,
		&user.PasswordHash,
		&user.Active,
		&user.FailedAttempts,
		&user.LockedUntil,
		&user.TOTPSecret,
		&user.TOTPEnabled,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = domain.Role(role)
	return &user, nil
}
