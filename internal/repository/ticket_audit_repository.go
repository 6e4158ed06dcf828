package repository

import (
	"context"

	"github.com/spec-kit/workflow-service/internal/domain"
)

// StatusHistoryRepository appends ticket status audit entries. No
// update or delete is exposed; rows are immutable once written.
type StatusHistoryRepository interface {
	Create(ctx context.Context, entry *domain.TicketStatusHistory) error
	// ListByTicket orders by change time, newest first by default.
	ListByTicket(ctx context.Context, ticketID string, ascending bool) ([]domain.TicketStatusHistory, error)
}

type statusHistoryRepository struct {
	db DB
}

// NewStatusHistoryRepository builds repository.
func NewStatusHistoryRepository(db DB) StatusHistoryRepository {
	return &statusHistoryRepository{db: db}
}

func (r *statusHistoryRepository) Create(ctx context.Context, entry *domain.TicketStatusHistory) error {
	const query = `
        INSERT INTO ticket_status_history (ticket_id, old_status, new_status, changed_by, notes)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, changed_at`
	return r.db.QueryRow(ctx, query,
		entry.TicketID,
		entry.OldStatus,
		entry.NewStatus,
		entry.ChangedBy,
		entry.Notes,
	).Scan(&entry.ID, &entry.ChangedAt)
}

func (r *statusHistoryRepository) ListByTicket(ctx context.Context, ticketID string, ascending bool) ([]domain.TicketStatusHistory, error) {
	query := `
        SELECT id, ticket_id, old_status, new_status, changed_by, changed_at, notes
        FROM ticket_status_history WHERE ticket_id=$1 ORDER BY changed_at DESC`
	if ascending {
		query = `
        SELECT id, ticket_id, old_status, new_status, changed_by, changed_at, notes
        FROM ticket_status_history WHERE ticket_id=$1 ORDER BY changed_at ASC`
	}
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketStatusHistory
	for rows.Next() {
		var entry domain.TicketStatusHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.ChangedBy,
			&entry.ChangedAt,
			&entry.Notes,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

// TransferRepository appends department transfer records. Immutable.
type TransferRepository interface {
	Create(ctx context.Context, transfer *domain.DepartmentTransfer) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.DepartmentTransfer, error)
}

type transferRepository struct {
	db DB
}

// NewTransferRepository builds repository.
func NewTransferRepository(db DB) TransferRepository {
	return &transferRepository{db: db}
}

func (r *transferRepository) Create(ctx context.Context, transfer *domain.DepartmentTransfer) error {
	const query = `
        INSERT INTO department_transfers (ticket_id, from_department_id, to_department_id, transferred_by, notes)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, transferred_at`
	return r.db.QueryRow(ctx, query,
		transfer.TicketID,
		transfer.FromDepartmentID,
		transfer.ToDepartmentID,
		transfer.TransferredBy,
		transfer.Notes,
	).Scan(&transfer.ID, &transfer.TransferredAt)
}

func (r *transferRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.DepartmentTransfer, error) {
	const query = `
        SELECT id, ticket_id, from_department_id, to_department_id, transferred_by, transferred_at, notes
        FROM department_transfers WHERE ticket_id=$1 ORDER BY transferred_at DESC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DepartmentTransfer
	for rows.Next() {
		var transfer domain.DepartmentTransfer
		if err := rows.Scan(
			&transfer.ID,
			&transfer.TicketID,
			&transfer.FromDepartmentID,
			&transfer.ToDepartmentID,
			&transfer.TransferredBy,
			&transfer.TransferredAt,
			&transfer.Notes,
		); err != nil {
			return nil, err
		}
		result = append(result, transfer)
	}
	return result, rows.Err()
}
