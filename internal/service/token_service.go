package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"dataset-market/internal/domain"
	"dataset-market/internal/repository"
)

// TokenService emite y valida pares de tokens firmados. Cada emisión rota
// el hash de refresh almacenado, invalidando el token anterior.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	users         repository.UserRepository
	hasher        PasswordHasher
	now           func() time.Time
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AccessClaims es el payload del access token.
type AccessClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims omite el rol a propósito: un cambio de rol recién aplica
// tras un nuevo login.
type RefreshClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, users repository.UserRepository) *TokenService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        "dataset-market",
		users:         users,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// GeneratePair firma un par nuevo y persiste el hash del refresh token
// como único valor vigente para el usuario.
func (s *TokenService) GeneratePair(ctx context.Context, user domain.User) (TokenPair, error) {
	if len(s.accessSecret) == 0 || len(s.refreshSecret) == 0 {
		return TokenPair{}, ErrJWTInvalid
	}

	now := s.now()
	subject := strconv.FormatInt(user.ID, 10)

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		Username: user.Username,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	})
	signedAccess, err := access.SignedString(s.accessSecret)
	if err != nil {
		return TokenPair{}, err
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	})
	signedRefresh, err := refresh.SignedString(s.refreshSecret)
	if err != nil {
		return TokenPair{}, err
	}

	hash, err := s.hasher.Hash(digestToken(signedRefresh))
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.users.UpdateRefreshTokenHash(ctx, user.ID, &hash); err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  signedAccess,
		RefreshToken: signedRefresh,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// Redeem valida un refresh token contra la firma y contra el hash
// almacenado, y devuelve el usuario para emitir un par nuevo. Toda falla
// colapsa en ErrRefreshInvalid: no se distingue malformado, vencido o
// no coincidente.
func (s *TokenService) Redeem(ctx context.Context, token string) (domain.User, error) {
	claims, err := s.parseRefresh(token)
	if err != nil {
		return domain.User{}, ErrRefreshInvalid
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return domain.User{}, ErrRefreshInvalid
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, ErrRefreshInvalid
	}
	if user.RefreshTokenHash == nil {
		return domain.User{}, ErrRefreshInvalid
	}
	if !s.hasher.Verify(digestToken(token), *user.RefreshTokenHash) {
		return domain.User{}, ErrRefreshInvalid
	}
	return user, nil
}

// ParseAccessToken valida un access token para el middleware HTTP.
func (s *TokenService) ParseAccessToken(token string) (AccessClaims, error) {
	if strings.TrimSpace(token) == "" {
		return AccessClaims{}, ErrJWTInvalid
	}
	var claims AccessClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) {
		return s.accessSecret, nil
	})
	if err != nil {
		return AccessClaims{}, ErrJWTInvalid
	}
	if claims.Issuer != s.issuer || strings.TrimSpace(claims.Subject) == "" {
		return AccessClaims{}, ErrJWTInvalid
	}
	return claims, nil
}

func (s *TokenService) parseRefresh(token string) (RefreshClaims, error) {
	if strings.TrimSpace(token) == "" {
		return RefreshClaims{}, ErrRefreshInvalid
	}
	var claims RefreshClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) {
		return s.refreshSecret, nil
	})
	if err != nil {
		return RefreshClaims{}, ErrRefreshInvalid
	}
	if claims.Issuer != s.issuer || strings.TrimSpace(claims.Subject) == "" {
		return RefreshClaims{}, ErrRefreshInvalid
	}
	return claims, nil
}

// digestToken condensa el token antes de bcrypt, que solo admite 72 bytes.
func digestToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.StdEncoding.EncodeToString(sum[:])
}
