package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workflow-service/internal/domain"
)

// CategoryRepository manages ticket categories.
type CategoryRepository interface {
	Create(ctx context.Context, cat *domain.Category) error
	Update(ctx context.Context, cat *domain.Category) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	ListActive(ctx context.Context) ([]domain.Category, error)
	ReferenceCount(ctx context.Context, id string) (int64, error)
}

type categoryRepository struct {
	db DB
}

// NewCategoryRepository builds the repository.
func NewCategoryRepository(db DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, cat *domain.Category) error {
	const query = `
        INSERT INTO categories (name, is_active, description)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		cat.Name,
		cat.IsActive,
		cat.Description,
	).Scan(&cat.ID, &cat.CreatedAt, &cat.UpdatedAt)
}

func (r *categoryRepository) Update(ctx context.Context, cat *domain.Category) error {
	const query = `
        UPDATE categories SET name=$1, is_active=$2, description=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.db.Exec(ctx, query, cat.Name, cat.IsActive, cat.Description, cat.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	const query = `
        SELECT id, name, is_active, description, created_at, updated_at
        FROM categories WHERE id=$1`
	var cat domain.Category
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&cat.ID,
		&cat.Name,
		&cat.IsActive,
		&cat.Description,
		&cat.CreatedAt,
		&cat.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *categoryRepository) ListActive(ctx context.Context) ([]domain.Category, error) {
	const query = `
        SELECT id, name, is_active, description, created_at, updated_at
        FROM categories WHERE is_active = TRUE ORDER BY name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var cat domain.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.IsActive, &cat.Description, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, cat)
	}
	return result, rows.Err()
}

func (r *categoryRepository) ReferenceCount(ctx context.Context, id string) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE category_id=$1`, id).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
