package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/jackc/pgx/v5"

	"dataset-market/internal/domain"
)

type mockCategoryRepo struct {
	categories map[int64]domain.Category
	nextID     int64
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: make(map[int64]domain.Category)}
}

func (m *mockCategoryRepo) Create(_ context.Context, category domain.Category) (domain.Category, error) {
	m.nextID++
	category.ID = m.nextID
	m.categories[category.ID] = category
	return category, nil
}

func (m *mockCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	items := make([]domain.Category, 0, len(m.categories))
	for _, category := range m.categories {
		items = append(items, category)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *mockCategoryRepo) GetByID(_ context.Context, id int64) (domain.Category, error) {
	category, ok := m.categories[id]
	if !ok {
		return domain.Category{}, pgx.ErrNoRows
	}
	return category, nil
}

func (m *mockCategoryRepo) Update(_ context.Context, category domain.Category) (domain.Category, error) {
	current, ok := m.categories[category.ID]
	if !ok {
		return domain.Category{}, pgx.ErrNoRows
	}
	current.Name = category.Name
	current.Slug = category.Slug
	m.categories[category.ID] = current
	return current, nil
}

func (m *mockCategoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.categories[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.categories, id)
	return nil
}

func TestCategoryServiceCreate_Slugifies(t *testing.T) {
	svc := NewCategoryService(newMockCategoryRepo())

	category, err := svc.Create(context.Background(), "  Computer Vision  ")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if category.Name != "Computer Vision" {
		t.Fatalf("expected trimmed name, got %q", category.Name)
	}
	if category.Slug != "computer-vision" {
		t.Fatalf("expected slug computer-vision, got %q", category.Slug)
	}
}

func TestCategoryServiceUpdate_RegeneratesSlug(t *testing.T) {
	repo := newMockCategoryRepo()
	svc := NewCategoryService(repo)

	category, err := svc.Create(context.Background(), "NLP")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.Update(context.Background(), category.ID, "Señales de Audio")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Slug != "senales-de-audio" {
		t.Fatalf("expected transliterated slug, got %q", updated.Slug)
	}

	if _, err := svc.Update(context.Background(), 99, "x"); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestCategoryServiceGetAndDelete_NotFound(t *testing.T) {
	svc := NewCategoryService(newMockCategoryRepo())

	if _, err := svc.GetByID(context.Background(), 1); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), 1); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}
