package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"dataset-market/internal/domain"
	"dataset-market/internal/email"
	"dataset-market/internal/repository"
)

// AuthService orquesta los flujos de registro, verificación por OTP,
// login, refresh y reset de password.
type AuthService struct {
	logger       *zap.Logger
	appName      string
	supportEmail string
	users        repository.UserRepository
	otps         *OTPService
	tokens       *TokenService
	hasher       PasswordHasher
	sender       email.Sender
	otpLimiter   OTPRateLimiter
	now          func() time.Time
}

func NewAuthService(
	logger *zap.Logger,
	appName, supportEmail string,
	users repository.UserRepository,
	otps *OTPService,
	tokens *TokenService,
	sender email.Sender,
	otpLimiter OTPRateLimiter,
) *AuthService {
	return &AuthService{
		logger:       logger,
		appName:      appName,
		supportEmail: supportEmail,
		users:        users,
		otps:         otps,
		tokens:       tokens,
		sender:       sender,
		otpLimiter:   otpLimiter,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

type RegisterInput struct {
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
}

type VerifyOTPInput struct {
	Email    string
	Username string
	Code     string
}

type ResetPasswordInput struct {
	Identifier         string
	Code               string
	NewPassword        string
	ConfirmNewPassword string
}

// Register crea un usuario sin verificar y le envía un OTP por correo.
// El código nunca se devuelve en la respuesta.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) error {
	if input.Password != input.ConfirmPassword {
		return ErrPasswordMismatch
	}

	emailAddr := normalizeEmail(input.Email)
	username := strings.TrimSpace(input.Username)

	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return err
	}

	user, err := s.users.Create(ctx, domain.User{
		Email:        emailAddr,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         domain.RoleCustomer,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return err
	}

	return s.issueAndSendOTP(ctx, user, domain.OtpTypeRegister, false)
}

// VerifyRegisterOTP consume el código de registro más reciente, activa la
// cuenta en la misma transacción y devuelve un par de tokens.
func (s *AuthService) VerifyRegisterOTP(ctx context.Context, input VerifyOTPInput) (TokenPair, error) {
	user, err := s.resolveUser(ctx, input.Email, input.Username)
	if err != nil {
		return TokenPair{}, err
	}

	otp, err := s.otps.Consume(ctx, user.ID, domain.OtpTypeRegister, input.Code)
	if err != nil {
		return TokenPair{}, err
	}

	if err := s.users.ConfirmRegistration(ctx, user.ID, otp.ID, s.now()); err != nil {
		// Una verificación concurrente pudo ganar y consumir el código.
		if errors.Is(err, pgx.ErrNoRows) {
			return TokenPair{}, ErrOTPInvalid
		}
		return TokenPair{}, err
	}
	user.IsVerified = true

	// La notificación de activación es best-effort, fuera de la transacción.
	msg := email.BuildAccountActivatedEmail(s.appName, s.supportEmail, user.Username)
	if err := s.sender.Send(ctx, user.Email, msg.Subject, msg.Text, msg.HTML); err != nil {
		s.logger.Warn("send account activated email failed", zap.Error(err), zap.String("email", user.Email))
	}

	return s.tokens.GeneratePair(ctx, user)
}

// ResendRegisterOTP emite un código nuevo para una cuenta aún sin verificar.
func (s *AuthService) ResendRegisterOTP(ctx context.Context, identifier string) error {
	user, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}
	return s.issueAndSendOTP(ctx, user, domain.OtpTypeRegister, true)
}

// Login valida credenciales y devuelve un par de tokens.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (TokenPair, error) {
	user, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		return TokenPair{}, err
	}
	if user.PasswordHash == "" {
		return TokenPair{}, ErrNoPassword
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return TokenPair{}, ErrInvalidCredentials
	}
	if !user.IsVerified {
		return TokenPair{}, ErrNotVerified
	}
	return s.tokens.GeneratePair(ctx, user)
}

// RefreshToken canjea un refresh token por un par nuevo. Cualquier falla
// en la cadena se normaliza a ErrRefreshInvalid.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (TokenPair, error) {
	user, err := s.tokens.Redeem(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, ErrRefreshInvalid
	}
	pair, err := s.tokens.GeneratePair(ctx, user)
	if err != nil {
		s.logger.Warn("refresh rotation failed", zap.Error(err), zap.Int64("user_id", user.ID))
		return TokenPair{}, ErrRefreshInvalid
	}
	return pair, nil
}

// RequestPasswordReset emite y envía un código de reset por correo.
func (s *AuthService) RequestPasswordReset(ctx context.Context, identifier string) error {
	user, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}
	return s.issueAndSendOTP(ctx, user, domain.OtpTypeResetPassword, false)
}

// VerifyResetOTP valida existencia y vigencia del código sin marcarlo
// usado; el consumo real ocurre recién en ResetPassword.
func (s *AuthService) VerifyResetOTP(ctx context.Context, input VerifyOTPInput) error {
	user, err := s.resolveUser(ctx, input.Email, input.Username)
	if err != nil {
		return err
	}
	_, err = s.otps.Consume(ctx, user.ID, domain.OtpTypeResetPassword, input.Code)
	return err
}

// ResetPassword revalida el código, cambia el password, lo marca usado y
// limpia el refresh token en una sola transacción, forzando re-login en
// todos los dispositivos.
func (s *AuthService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	if input.NewPassword != input.ConfirmNewPassword {
		return ErrPasswordMismatch
	}

	user, err := s.findByIdentifier(ctx, input.Identifier)
	if err != nil {
		return err
	}

	otp, err := s.otps.Consume(ctx, user.ID, domain.OtpTypeResetPassword, input.Code)
	if err != nil {
		return err
	}

	if user.PasswordHash != "" && s.hasher.Verify(input.NewPassword, user.PasswordHash) {
		return ErrSamePassword
	}

	passwordHash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	if err := s.users.ResetCredentials(ctx, user.ID, passwordHash, otp.ID, s.now()); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOTPInvalid
		}
		return err
	}
	return nil
}

func (s *AuthService) issueAndSendOTP(ctx context.Context, user domain.User, otpType domain.OtpType, resend bool) error {
	if s.otpLimiter != nil && !s.otpLimiter.Allow(user.Email) {
		return ErrRateLimited
	}

	if err := s.otps.EnforceCooldown(ctx, user.ID, otpType); err != nil {
		return err
	}

	otp, err := s.otps.Issue(ctx, user.ID, otpType)
	if err != nil {
		return err
	}

	var msg email.Message
	switch otpType {
	case domain.OtpTypeResetPassword:
		msg = email.BuildResetPasswordEmail(s.appName, s.supportEmail, otp.Code)
	default:
		msg = email.BuildRegisterOTPEmail(s.appName, s.supportEmail, otp.Code)
	}
	subject := msg.Subject
	if resend {
		subject += " (resend)"
	}

	if err := s.sender.Send(ctx, user.Email, subject, msg.Text, msg.HTML); err != nil {
		s.logger.Warn("send otp email failed", zap.Error(err), zap.String("email", user.Email))
		return ErrEmailSendFailure
	}
	return nil
}

func (s *AuthService) resolveUser(ctx context.Context, emailAddr, username string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	username = strings.TrimSpace(username)

	var (
		user domain.User
		err  error
	)
	switch {
	case emailAddr != "":
		user, err = s.users.GetByEmail(ctx, emailAddr)
	case username != "":
		user, err = s.users.GetByUsername(ctx, username)
	default:
		return domain.User{}, ErrUserNotFound
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrUserNotFound
	}
	return user, err
}

func (s *AuthService) findByIdentifier(ctx context.Context, identifier string) (domain.User, error) {
	user, err := s.users.GetByIdentifier(ctx, strings.TrimSpace(identifier))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrUserNotFound
	}
	return user, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
