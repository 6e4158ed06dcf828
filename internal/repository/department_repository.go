package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workflow-service/internal/domain"
)

// DepartmentRepository manages department persistence.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	Update(ctx context.Context, dept *domain.Department) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Department, error)
	List(ctx context.Context) ([]domain.Department, error)
	// ReferenceCount counts tickets and change requests still routed to
	// the department; deletion is blocked while it is positive.
	ReferenceCount(ctx context.Context, id string) (int64, error)
}

type departmentRepository struct {
	db DB
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(db DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	const query = `
        INSERT INTO departments (name, is_branch, sla_hours, description)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		dept.Name,
		dept.IsBranch,
		dept.SLAHours,
		dept.Description,
	).Scan(&dept.ID, &dept.CreatedAt, &dept.UpdatedAt)
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	const query = `
        UPDATE departments SET name=$1, is_branch=$2, sla_hours=$3, description=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.db.Exec(ctx, query,
		dept.Name,
		dept.IsBranch,
		dept.SLAHours,
		dept.Description,
		dept.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *departmentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM departments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	const query = `
        SELECT id, name, is_branch, sla_hours, description, created_at, updated_at
        FROM departments WHERE id=$1`
	var dept domain.Department
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&dept.ID,
		&dept.Name,
		&dept.IsBranch,
		&dept.SLAHours,
		&dept.Description,
		&dept.CreatedAt,
		&dept.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	const query = `
        SELECT id, name, is_branch, sla_hours, description, created_at, updated_at
        FROM departments ORDER BY name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Department
	for rows.Next() {
		var dept domain.Department
		if err := rows.Scan(&dept.ID, &dept.Name, &dept.IsBranch, &dept.SLAHours, &dept.Description, &dept.CreatedAt, &dept.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, dept)
	}
	return result, rows.Err()
}

func (r *departmentRepository) ReferenceCount(ctx context.Context, id string) (int64, error) {
	const query = `
        SELECT
            (SELECT COUNT(*) FROM tickets
             WHERE department_id=$1 OR originating_department_id=$1
                OR to_department_id=$1 OR transferred_from_id=$1)
          + (SELECT COUNT(*) FROM change_requests
             WHERE from_department_id=$1 OR to_department_id=$1)`
	var count int64
	if err := r.db.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
