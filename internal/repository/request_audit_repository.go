package repository

import (
	"context"

	"github.com/spec-kit/workflow-service/internal/domain"
)

// RequestHistoryRepository appends change-request audit entries.
// Append-only; ordering is parameterized for display needs.
type RequestHistoryRepository interface {
	Create(ctx context.Context, entry *domain.RequestHistory) error
	ListByRequest(ctx context.Context, requestID string, ascending bool) ([]domain.RequestHistory, error)
}

type requestHistoryRepository struct {
	db DB
}

// NewRequestHistoryRepository builds repository.
func NewRequestHistoryRepository(db DB) RequestHistoryRepository {
	return &requestHistoryRepository{db: db}
}

func (r *requestHistoryRepository) Create(ctx context.Context, entry *domain.RequestHistory) error {
	const query = `
        INSERT INTO request_history (request_id, action, performed_by, field_changed, old_value, new_value, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, occurred_at`
	return r.db.QueryRow(ctx, query,
		entry.RequestID,
		entry.Action,
		entry.PerformedBy,
		entry.FieldChanged,
		entry.OldValue,
		entry.NewValue,
		entry.Notes,
	).Scan(&entry.ID, &entry.Timestamp)
}

func (r *requestHistoryRepository) ListByRequest(ctx context.Context, requestID string, ascending bool) ([]domain.RequestHistory, error) {
	order := "DESC"
	if ascending {
		order = "ASC"
	}
	query := `
        SELECT id, request_id, action, performed_by, occurred_at, field_changed, old_value, new_value, notes
        FROM request_history WHERE request_id=$1 ORDER BY occurred_at ` + order
	rows, err := r.db.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RequestHistory
	for rows.Next() {
		var entry domain.RequestHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.RequestID,
			&entry.Action,
			&entry.PerformedBy,
			&entry.Timestamp,
			&entry.FieldChanged,
			&entry.OldValue,
			&entry.NewValue,
			&entry.Notes,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

// RequestCommentRepository stores change-request discussion entries.
type RequestCommentRepository interface {
	Create(ctx context.Context, comment *domain.RequestComment) error
	// ListByRequest orders by creation time ascending; internal comments
	// are filtered out unless includeInternal is set.
	ListByRequest(ctx context.Context, requestID string, includeInternal bool) ([]domain.RequestComment, error)
}

type requestCommentRepository struct {
	db DB
}

// NewRequestCommentRepository builds repository.
func NewRequestCommentRepository(db DB) RequestCommentRepository {
	return &requestCommentRepository{db: db}
}

func (r *requestCommentRepository) Create(ctx context.Context, comment *domain.RequestComment) error {
	const query = `
        INSERT INTO request_comments (request_id, operator_id, comment, is_internal)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		comment.RequestID,
		comment.OperatorID,
		comment.Comment,
		comment.IsInternal,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *requestCommentRepository) ListByRequest(ctx context.Context, requestID string, includeInternal bool) ([]domain.RequestComment, error) {
	query := `
        SELECT id, request_id, operator_id, comment, is_internal, created_at
        FROM request_comments WHERE request_id=$1`
	if !includeInternal {
		query += ` AND is_internal = FALSE`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RequestComment
	for rows.Next() {
		var comment domain.RequestComment
		if err := rows.Scan(
			&comment.ID,
			&comment.RequestID,
			&comment.OperatorID,
			&comment.Comment,
			&comment.IsInternal,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}

// RequestAttachmentRepository stores attachment references. Contents
// live in external storage; only the opaque key is kept here.
type RequestAttachmentRepository interface {
	Create(ctx context.Context, att *domain.RequestAttachment) error
	ListByRequest(ctx context.Context, requestID string) ([]domain.RequestAttachment, error)
}

type requestAttachmentRepository struct {
	db DB
}

// NewRequestAttachmentRepository builds repository.
func NewRequestAttachmentRepository(db DB) RequestAttachmentRepository {
	return &requestAttachmentRepository{db: db}
}

func (r *requestAttachmentRepository) Create(ctx context.Context, att *domain.RequestAttachment) error {
	const query = `
        INSERT INTO request_attachments (request_id, storage_key, description, uploaded_by)
        VALUES ($1,$2,$3,$4)
        RETURNING id, uploaded_at`
	return r.db.QueryRow(ctx, query,
		att.RequestID,
		att.StorageKey,
		att.Description,
		att.UploadedBy,
	).Scan(&att.ID, &att.UploadedAt)
}

func (r *requestAttachmentRepository) ListByRequest(ctx context.Context, requestID string) ([]domain.RequestAttachment, error) {
	const query = `
        SELECT id, request_id, storage_key, description, uploaded_by, uploaded_at
        FROM request_attachments WHERE request_id=$1 ORDER BY uploaded_at DESC`
	rows, err := r.db.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RequestAttachment
	for rows.Next() {
		var att domain.RequestAttachment
		if err := rows.Scan(
			&att.ID,
			&att.RequestID,
			&att.StorageKey,
			&att.Description,
			&att.UploadedBy,
			&att.UploadedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, att)
	}
	return result, rows.Err()
}
