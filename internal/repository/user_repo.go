package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dataset-market/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
// Las operaciones Confirm/Reset agrupan escrituras que deben aplicarse
// de forma atómica (todo o nada).
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id int64) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (domain.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateRefreshTokenHash(ctx context.Context, id int64, hash *string) error
	UpdateProfile(ctx context.Context, id int64, fullname, photo *string) (domain.User, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
	Count(ctx context.Context) (int64, error)
	ConfirmRegistration(ctx context.Context, userID, otpID int64, usedAt time.Time) error
	ResetCredentials(ctx context.Context, userID int64, passwordHash string, otpID int64, usedAt time.Time) error
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const userColumns = `
	id, email, username, COALESCE(password, ''),
	COALESCE(fullname, ''), COALESCE(photo, ''),
	role, is_verified, refresh_token, created_at
`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.Fullname,
		&u.Photo,
		&u.Role,
		&u.IsVerified,
		&u.RefreshTokenHash,
		&u.CreatedAt,
	)
	return u, err
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	const query = `
		INSERT INTO users (email, username, password, fullname, role, is_verified, created_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.Fullname,
		user.Role,
		user.IsVerified,
		user.CreatedAt,
	).Scan(&user.ID)
	return user, err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// El email se guarda en minúsculas; las búsquedas toleran el casing que
// escriba el cliente.
func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = lower($1)`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *PgUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.pool.QueryRow(ctx, query, username))
}

func (r *PgUserRepository) GetByIdentifier(ctx context.Context, identifier string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = lower($1) OR username = $1 LIMIT 1`
	return scanUser(r.pool.QueryRow(ctx, query, identifier))
}

func (r *PgUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const query = `UPDATE users SET password = $2 WHERE id = $1`
	return r.exec(ctx, query, id, passwordHash)
}

func (r *PgUserRepository) UpdateRefreshTokenHash(ctx context.Context, id int64, hash *string) error {
	const query = `UPDATE users SET refresh_token = $2 WHERE id = $1`
	return r.exec(ctx, query, id, hash)
}

func (r *PgUserRepository) UpdateProfile(ctx context.Context, id int64, fullname, photo *string) (domain.User, error) {
	const query = `
		UPDATE users
		SET fullname = COALESCE($2, fullname), photo = COALESCE($3, photo)
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, query, id, fullname, photo))
}

func (r *PgUserRepository) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PgUserRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total)
	return total, err
}

// ConfirmRegistration marca el OTP como usado y activa la cuenta en una
// sola transacción: o ambos cambios quedan, o ninguno.
func (r *PgUserRepository) ConfirmRegistration(ctx context.Context, userID, otpID int64, usedAt time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := markOtpUsed(ctx, tx, otpID, usedAt); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE users SET is_verified = TRUE WHERE id = $1`, userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ResetCredentials actualiza el password, consume el OTP y limpia el
// refresh token en una sola transacción.
func (r *PgUserRepository) ResetCredentials(ctx context.Context, userID int64, passwordHash string, otpID int64, usedAt time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE users SET password = $2, refresh_token = NULL WHERE id = $1`, userID, passwordHash); err != nil {
		return err
	}
	if err := markOtpUsed(ctx, tx, otpID, usedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func markOtpUsed(ctx context.Context, tx pgx.Tx, otpID int64, usedAt time.Time) error {
	tag, err := tx.Exec(ctx, `UPDATE otp_codes SET used_at = $2 WHERE id = $1 AND used_at IS NULL`, otpID, usedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
