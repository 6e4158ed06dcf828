package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workflow-service/internal/domain"
)

// WorkflowStepRepository manages implementation-step checklists on
// change-request tickets.
type WorkflowStepRepository interface {
	Create(ctx context.Context, step *domain.WorkflowStep) error
	Update(ctx context.Context, step *domain.WorkflowStep) error
	GetByID(ctx context.Context, id string) (*domain.WorkflowStep, error)
	// ListByTicket returns steps ordered by due date.
	ListByTicket(ctx context.Context, ticketID string) ([]domain.WorkflowStep, error)
}

type workflowStepRepository struct {
	db DB
}

// NewWorkflowStepRepository builds repository.
func NewWorkflowStepRepository(db DB) WorkflowStepRepository {
	return &workflowStepRepository{db: db}
}

func (r *workflowStepRepository) Create(ctx context.Context, step *domain.WorkflowStep) error {
	const query = `
        INSERT INTO workflow_steps (ticket_id, label, assigned_to, status, due_date, notes)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		step.TicketID,
		step.Label,
		step.AssignedTo,
		step.Status,
		step.DueDate,
		step.Notes,
	).Scan(&step.ID, &step.CreatedAt, &step.UpdatedAt)
}

func (r *workflowStepRepository) Update(ctx context.Context, step *domain.WorkflowStep) error {
	const query = `
        UPDATE workflow_steps SET label=$1, assigned_to=$2, status=$3, due_date=$4, completed_at=$5, notes=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.db.Exec(ctx, query,
		step.Label,
		step.AssignedTo,
		step.Status,
		step.DueDate,
		step.CompletedAt,
		step.Notes,
		step.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *workflowStepRepository) GetByID(ctx context.Context, id string) (*domain.WorkflowStep, error) {
	const query = `
        SELECT id, ticket_id, label, assigned_to, status, due_date, completed_at, notes, created_at, updated_at
        FROM workflow_steps WHERE id=$1`
	var step domain.WorkflowStep
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&step.ID,
		&step.TicketID,
		&step.Label,
		&step.AssignedTo,
		&step.Status,
		&step.DueDate,
		&step.CompletedAt,
		&step.Notes,
		&step.CreatedAt,
		&step.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &step, nil
}

func (r *workflowStepRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.WorkflowStep, error) {
	const query = `
        SELECT id, ticket_id, label, assigned_to, status, due_date, completed_at, notes, created_at, updated_at
        FROM workflow_steps WHERE ticket_id=$1 ORDER BY due_date ASC NULLS LAST, created_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.WorkflowStep
	for rows.Next() {
		var step domain.WorkflowStep
		if err := rows.Scan(
			&step.ID,
			&step.TicketID,
			&step.Label,
			&step.AssignedTo,
			&step.Status,
			&step.DueDate,
			&step.CompletedAt,
			&step.Notes,
			&step.CreatedAt,
			&step.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, step)
	}
	return result, rows.Err()
}
