package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workflow-service/internal/domain"
)

// TicketFilter captures list/search parameters.
type TicketFilter struct {
	DepartmentID *string
	CreatedBy    *string
	AssignedTo   *string
	Statuses     []domain.TicketStatus
	Priorities   []domain.TicketPriority
	RequestType  *domain.RequestType
	SearchTerm   *string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// TicketRepository encapsulates ticket persistence.
//
// Update deliberately leaves ticket_number, originating_department_id,
// sla_due_date and created_by out of its SET list: those columns are
// write-once and only Create touches them.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	db DB
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DB) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, ticket_number, title, description, identifier, priority, request_type,
               category_id, issue_type, urgency_level, estimated_effort_hours, business_impact,
               department_id, originating_department_id, to_department_id, transferred_from_id, transfer_notes,
               status, created_by, assigned_to, created_at, updated_at, closed_at,
               sla_due_date, sla_breached, memo_required, memo_key, is_final`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_number, title, description, identifier, priority, request_type,
            category_id, issue_type, urgency_level, estimated_effort_hours, business_impact,
            department_id, originating_department_id, transfer_notes, status, created_by, assigned_to,
            sla_due_date, memo_required, memo_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.TicketNumber,
		ticket.Title,
		ticket.Description,
		ticket.Identifier,
		ticket.Priority,
		ticket.RequestType,
		ticket.CategoryID,
		ticket.IssueType,
		ticket.UrgencyLevel,
		ticket.EstimatedEffortHrs,
		ticket.BusinessImpact,
		ticket.DepartmentID,
		ticket.OriginatingDepartmentID,
		ticket.TransferNotes,
		ticket.Status,
		ticket.CreatedBy,
		ticket.AssignedTo,
		ticket.SLADueDate,
		ticket.MemoRequired,
		ticket.MemoKey,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, identifier=$3, priority=$4,
            category_id=$5, issue_type=$6, urgency_level=$7, estimated_effort_hours=$8, business_impact=$9,
            department_id=$10, to_department_id=$11, transferred_from_id=$12, transfer_notes=$13,
            status=$14, assigned_to=$15, closed_at=$16, sla_breached=$17,
            memo_required=$18, memo_key=$19, is_final=$20, updated_at=NOW()
        WHERE id=$21`
	cmd, err := r.db.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Identifier,
		ticket.Priority,
		ticket.CategoryID,
		ticket.IssueType,
		ticket.UrgencyLevel,
		ticket.EstimatedEffortHrs,
		ticket.BusinessImpact,
		ticket.DepartmentID,
		ticket.ToDepartmentID,
		ticket.TransferredFromID,
		ticket.TransferNotes,
		ticket.Status,
		ticket.AssignedTo,
		ticket.ClosedAt,
		ticket.SLABreached,
		ticket.MemoRequired,
		ticket.MemoKey,
		ticket.IsFinal,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE ticket_number=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, number)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := scanTicket(r.db.QueryRow(ctx, query, arg), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := fmt.Sprintf(`SELECT %s FROM tickets`, ticketColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("created_by=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.RequestType != nil {
		args = append(args, *filter.RequestType)
		clauses = append(clauses, fmt.Sprintf("request_type=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s OR LOWER(ticket_number) LIKE %s)", placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.Title,
		&ticket.Description,
		&ticket.Identifier,
		&ticket.Priority,
		&ticket.RequestType,
		&ticket.CategoryID,
		&ticket.IssueType,
		&ticket.UrgencyLevel,
		&ticket.EstimatedEffortHrs,
		&ticket.BusinessImpact,
		&ticket.DepartmentID,
		&ticket.OriginatingDepartmentID,
		&ticket.ToDepartmentID,
		&ticket.TransferredFromID,
		&ticket.TransferNotes,
		&ticket.Status,
		&ticket.CreatedBy,
		&ticket.AssignedTo,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ClosedAt,
		&ticket.SLADueDate,
		&ticket.SLABreached,
		&ticket.MemoRequired,
		&ticket.MemoKey,
		&ticket.IsFinal,
	)
}
