package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workflow-service/internal/domain"
)

// OperatorRepository resolves back-office users. It also backs the
// explicit department-resolution capability: only the operator's own
// department column is consulted, never related records.
type OperatorRepository interface {
	Create(ctx context.Context, op *domain.Operator) error
	Update(ctx context.Context, op *domain.Operator) error
	GetByID(ctx context.Context, id string) (*domain.Operator, error)
	// DepartmentFor returns the operator's department id, or nil when
	// the operator has none.
	DepartmentFor(ctx context.Context, operatorID string) (*string, error)
}

type operatorRepository struct {
	db DB
}

// NewOperatorRepository builds the repository.
func NewOperatorRepository(db DB) OperatorRepository {
	return &operatorRepository{db: db}
}

func (r *operatorRepository) Create(ctx context.Context, op *domain.Operator) error {
	const query = `
        INSERT INTO operators (name, email, department_id, active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		op.Name,
		op.Email,
		op.DepartmentID,
		op.Active,
	).Scan(&op.ID, &op.CreatedAt, &op.UpdatedAt)
}

func (r *operatorRepository) Update(ctx context.Context, op *domain.Operator) error {
	const query = `
        UPDATE operators SET name=$1, email=$2, department_id=$3, active=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.db.Exec(ctx, query, op.Name, op.Email, op.DepartmentID, op.Active, op.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *operatorRepository) GetByID(ctx context.Context, id string) (*domain.Operator, error) {
	const query = `
        SELECT id, name, email, department_id, active, created_at, updated_at
        FROM operators WHERE id=$1`
	var op domain.Operator
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&op.ID,
		&op.Name,
		&op.Email,
		&op.DepartmentID,
		&op.Active,
		&op.CreatedAt,
		&op.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *operatorRepository) DepartmentFor(ctx context.Context, operatorID string) (*string, error) {
	var deptID *string
	if err := r.db.QueryRow(ctx, `SELECT department_id FROM operators WHERE id=$1`, operatorID).Scan(&deptID); err != nil {
		return nil, err
	}
	return deptID, nil
}
