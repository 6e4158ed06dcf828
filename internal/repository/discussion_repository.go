package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workflow-service/internal/domain"
)

// DiscussionRepository stores threaded ticket messages. Append-only
// except UpdateMessage, which edits the body of an existing entry.
type DiscussionRepository interface {
	Create(ctx context.Context, disc *domain.TicketDiscussion) error
	UpdateMessage(ctx context.Context, id, message string) error
	GetByID(ctx context.Context, id string) (*domain.TicketDiscussion, error)
	// ListByTicket returns entries ordered by creation time ascending.
	ListByTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.TicketDiscussion, error)
}

type discussionRepository struct {
	db DB
}

// NewDiscussionRepository builds repository.
func NewDiscussionRepository(db DB) DiscussionRepository {
	return &discussionRepository{db: db}
}

func (r *discussionRepository) Create(ctx context.Context, disc *domain.TicketDiscussion) error {
	const query = `
        INSERT INTO ticket_discussions (ticket_id, parent_id, message, message_type, created_by, is_internal)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		disc.TicketID,
		disc.ParentID,
		disc.Message,
		disc.Type,
		disc.CreatedBy,
		disc.IsInternal,
	).Scan(&disc.ID, &disc.CreatedAt, &disc.UpdatedAt)
}

func (r *discussionRepository) UpdateMessage(ctx context.Context, id, message string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE ticket_discussions SET message=$1, updated_at=NOW() WHERE id=$2`, message, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *discussionRepository) GetByID(ctx context.Context, id string) (*domain.TicketDiscussion, error) {
	const query = `
        SELECT id, ticket_id, parent_id, message, message_type, created_by, created_at, updated_at, is_internal
        FROM ticket_discussions WHERE id=$1`
	var disc domain.TicketDiscussion
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&disc.ID,
		&disc.TicketID,
		&disc.ParentID,
		&disc.Message,
		&disc.Type,
		&disc.CreatedBy,
		&disc.CreatedAt,
		&disc.UpdatedAt,
		&disc.IsInternal,
	); err != nil {
		return nil, err
	}
	return &disc, nil
}

func (r *discussionRepository) ListByTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.TicketDiscussion, error) {
	query := `
        SELECT id, ticket_id, parent_id, message, message_type, created_by, created_at, updated_at, is_internal
        FROM ticket_discussions WHERE ticket_id=$1`
	if !includeInternal {
		query += ` AND is_internal = FALSE`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketDiscussion
	for rows.Next() {
		var disc domain.TicketDiscussion
		if err := rows.Scan(
			&disc.ID,
			&disc.TicketID,
			&disc.ParentID,
			&disc.Message,
			&disc.Type,
			&disc.CreatedBy,
			&disc.CreatedAt,
			&disc.UpdatedAt,
			&disc.IsInternal,
		); err != nil {
			return nil, err
		}
		result = append(result, disc)
	}
	return result, rows.Err()
}
