package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"

	"dataset-market/internal/domain"
	"dataset-market/internal/repository"
)

var ErrCategoryNotFound = errors.New("category not found")

// CategoryService administra las categorías de datasets.
type CategoryService struct {
	categories repository.CategoryRepository
	now        func() time.Time
}

func NewCategoryService(categories repository.CategoryRepository) *CategoryService {
	return &CategoryService{
		categories: categories,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *CategoryService) Create(ctx context.Context, name string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	return s.categories.Create(ctx, domain.Category{
		Name:      name,
		Slug:      slug.Make(name),
		CreatedAt: s.now(),
	})
}

func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *CategoryService) GetByID(ctx context.Context, id int64) (domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Category{}, ErrCategoryNotFound
	}
	return category, err
}

func (s *CategoryService) Update(ctx context.Context, id int64, name string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	category, err := s.categories.Update(ctx, domain.Category{
		ID:   id,
		Name: name,
		Slug: slug.Make(name),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Category{}, ErrCategoryNotFound
	}
	return category, err
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	err := s.categories.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCategoryNotFound
	}
	return err
}
