package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dataset-market/internal/domain"
)

type CategoryRepository interface {
	Create(ctx context.Context, category domain.Category) (domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id int64) (domain.Category, error)
	Update(ctx context.Context, category domain.Category) (domain.Category, error)
	Delete(ctx context.Context, id int64) error
}

type PgCategoryRepository struct {
	pool *pgxpool.Pool
}

func NewPgCategoryRepository(pool *pgxpool.Pool) *PgCategoryRepository {
	return &PgCategoryRepository{pool: pool}
}

func (r *PgCategoryRepository) Create(ctx context.Context, category domain.Category) (domain.Category, error) {
	const query = `
		INSERT INTO categories (name, slug, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		category.Name,
		category.Slug,
		category.CreatedAt,
	).Scan(&category.ID)
	return category, err
}

func (r *PgCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	const query = `
		SELECT id, name, slug, created_at
		FROM categories
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *PgCategoryRepository) GetByID(ctx context.Context, id int64) (domain.Category, error) {
	const query = `
		SELECT id, name, slug, created_at
		FROM categories
		WHERE id = $1
	`
	var c domain.Category
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	return c, err
}

func (r *PgCategoryRepository) Update(ctx context.Context, category domain.Category) (domain.Category, error) {
	const query = `
		UPDATE categories
		SET name = $2, slug = $3
		WHERE id = $1
		RETURNING id, name, slug, created_at
	`
	var c domain.Category
	err := r.pool.QueryRow(ctx, query, category.ID, category.Name, category.Slug).
		Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	return c, err
}

func (r *PgCategoryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
