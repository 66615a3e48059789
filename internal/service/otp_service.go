package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"dataset-market/internal/domain"
	"dataset-market/internal/repository"
)

const (
	otpLength   = 5
	otpTTL      = 5 * time.Minute
	otpCooldown = 5 * time.Minute
)

// OTPService administra el ciclo de vida de códigos de un solo uso:
// emisión, cooldown y validación. El código autoritativo para
// (usuario, tipo) es siempre el más reciente sin usar.
type OTPService struct {
	codes repository.OTPRepository
	now   func() time.Time
}

func NewOTPService(codes repository.OTPRepository) *OTPService {
	return &OTPService{
		codes: codes,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Issue genera un código numérico de largo fijo, lo persiste con su
// expiración y lo devuelve en claro para el paso de envío por correo.
func (s *OTPService) Issue(ctx context.Context, userID int64, otpType domain.OtpType) (domain.OtpCode, error) {
	code, err := generateOTPCode(otpLength)
	if err != nil {
		return domain.OtpCode{}, err
	}

	now := s.now()
	otp := domain.OtpCode{
		UserID:    userID,
		Code:      code,
		Type:      otpType,
		CreatedAt: now,
		ExpiresAt: now.Add(otpTTL),
	}
	return s.codes.Create(ctx, otp)
}

// EnforceCooldown falla con CooldownError si el código más reciente de ese
// tipo se emitió hace menos del intervalo mínimo. Sin código previo pasa.
func (s *OTPService) EnforceCooldown(ctx context.Context, userID int64, otpType domain.OtpType) error {
	last, err := s.codes.GetLatestByType(ctx, userID, otpType)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	elapsed := s.now().Sub(last.CreatedAt)
	if elapsed < otpCooldown {
		remaining := int(math.Ceil((otpCooldown - elapsed).Seconds()))
		return &CooldownError{RemainingSeconds: remaining}
	}
	return nil
}

// Consume resuelve el código más reciente sin usar que coincida. No marca
// used_at: eso corresponde al llamador, en la misma transacción que el
// efecto que el código autoriza.
func (s *OTPService) Consume(ctx context.Context, userID int64, otpType domain.OtpType, code string) (domain.OtpCode, error) {
	otp, err := s.codes.GetLatestUnusedByCode(ctx, userID, otpType, strings.TrimSpace(code))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.OtpCode{}, ErrOTPInvalid
	}
	if err != nil {
		return domain.OtpCode{}, err
	}

	// Un código cuyo expires_at es exactamente ahora ya se considera vencido.
	if !otp.ExpiresAt.After(s.now()) {
		return domain.OtpCode{}, ErrOTPExpired
	}
	return otp, nil
}

// Cada dígito se sortea de forma independiente y uniforme; las colisiones
// entre emisiones son posibles y aceptadas.
func generateOTPCode(length int) (string, error) {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteString(n.String())
	}
	return b.String(), nil
}
