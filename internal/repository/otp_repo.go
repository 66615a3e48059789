package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dataset-market/internal/domain"
)

// OTPRepository define el contrato de persistencia para códigos OTP.
// Las búsquedas "latest" resuelven siempre el registro más reciente por
// created_at; los códigos supersedidos no se tocan.
type OTPRepository interface {
	Create(ctx context.Context, otp domain.OtpCode) (domain.OtpCode, error)
	GetLatestByType(ctx context.Context, userID int64, otpType domain.OtpType) (domain.OtpCode, error)
	GetLatestUnusedByCode(ctx context.Context, userID int64, otpType domain.OtpType, code string) (domain.OtpCode, error)
}

// PgOTPRepository implementa OTPRepository usando pgxpool.
type PgOTPRepository struct {
	pool *pgxpool.Pool
}

func NewPgOTPRepository(pool *pgxpool.Pool) *PgOTPRepository {
	return &PgOTPRepository{pool: pool}
}

const otpColumns = `id, user_id, code, type, created_at, expires_at, used_at`

func scanOtp(row pgx.Row) (domain.OtpCode, error) {
	var o domain.OtpCode
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.Code,
		&o.Type,
		&o.CreatedAt,
		&o.ExpiresAt,
		&o.UsedAt,
	)
	return o, err
}

func (r *PgOTPRepository) Create(ctx context.Context, otp domain.OtpCode) (domain.OtpCode, error) {
	const query = `
		INSERT INTO otp_codes (user_id, code, type, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		otp.UserID,
		otp.Code,
		otp.Type,
		otp.CreatedAt,
		otp.ExpiresAt,
	).Scan(&otp.ID)
	return otp, err
}

func (r *PgOTPRepository) GetLatestByType(ctx context.Context, userID int64, otpType domain.OtpType) (domain.OtpCode, error) {
	const query = `
		SELECT ` + otpColumns + `
		FROM otp_codes
		WHERE user_id = $1 AND type = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanOtp(r.pool.QueryRow(ctx, query, userID, otpType))
}

func (r *PgOTPRepository) GetLatestUnusedByCode(ctx context.Context, userID int64, otpType domain.OtpType, code string) (domain.OtpCode, error) {
	const query = `
		SELECT ` + otpColumns + `
		FROM otp_codes
		WHERE user_id = $1 AND type = $2 AND code = $3 AND used_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanOtp(r.pool.QueryRow(ctx, query, userID, otpType, code))
}
