package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"dataset-market/internal/domain"
	"dataset-market/internal/repository"
)

// UserService coordina reglas de negocio para perfiles de usuario.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
}

func NewUserService(logger *zap.Logger, users repository.UserRepository) *UserService {
	return &UserService{logger: logger, users: users}
}

// UserPage es una página de usuarios para listados administrativos.
type UserPage struct {
	Items      []domain.User `json:"items"`
	Total      int64         `json:"total"`
	TotalPages int           `json:"total_pages"`
}

func (s *UserService) GetByID(ctx context.Context, id int64) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrUserNotFound
	}
	return user, err
}

// UpdateProfile cambia fullname y/o photo; los campos nil no se tocan.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, fullname, photo *string) (domain.User, error) {
	if fullname != nil {
		trimmed := strings.TrimSpace(*fullname)
		fullname = &trimmed
	}
	if photo != nil {
		trimmed := strings.TrimSpace(*photo)
		photo = &trimmed
	}
	user, err := s.users.UpdateProfile(ctx, id, fullname, photo)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) ListPaginated(ctx context.Context, page, limit int) (UserPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	items, err := s.users.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return UserPage{}, err
	}
	total, err := s.users.Count(ctx)
	if err != nil {
		return UserPage{}, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return UserPage{Items: items, Total: total, TotalPages: totalPages}, nil
}
