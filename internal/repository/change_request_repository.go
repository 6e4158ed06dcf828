package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workflow-service/internal/domain"
)

// RequestFilter captures change-request list parameters.
type RequestFilter struct {
	FromDepartmentID *string
	ToDepartmentID   *string
	RequestedBy      *string
	AssignedTo       *string
	Statuses         []domain.RequestStatus
	Priorities       []domain.RequestPriority
	ChangeType       *domain.ChangeType
	SearchTerm       *string
	CreatedFrom      *time.Time
	CreatedTo        *time.Time
	Limit            int
	Offset           int
}

// ChangeRequestRepository encapsulates change-request persistence.
// request_number and requested_by are write-once; Update never touches
// them. Milestone timestamps are written as-is: the service layer is
// responsible for only stamping each one once.
type ChangeRequestRepository interface {
	Create(ctx context.Context, cr *domain.ChangeRequest) error
	Update(ctx context.Context, cr *domain.ChangeRequest) error
	GetByID(ctx context.Context, id string) (*domain.ChangeRequest, error)
	GetByNumber(ctx context.Context, number string) (*domain.ChangeRequest, error)
	ListWithFilter(ctx context.Context, filter RequestFilter) ([]domain.ChangeRequest, error)
}

type changeRequestRepository struct {
	db DB
}

// NewChangeRequestRepository instantiates repository.
func NewChangeRequestRepository(db DB) ChangeRequestRepository {
	return &changeRequestRepository{db: db}
}

const requestColumns = `id, request_number, title, description, from_department_id, to_department_id,
               change_type, category, priority, business_justification, impact_assessment, risk_level,
               affected_systems, rollback_plan, reference_number, current_value, proposed_value,
               data_privacy_confirmed, regulatory_compliance_check, status,
               requested_by, assigned_to, reviewed_by, approved_by, completed_by,
               created_at, submitted_at, reviewed_at, approved_at, started_at, completed_at, closed_at,
               expected_completion_date, response_notes, resolution_details, closure_notes,
               attachment_key, updated_at`

func (r *changeRequestRepository) Create(ctx context.Context, cr *domain.ChangeRequest) error {
	const query = `
        INSERT INTO change_requests (request_number, title, description, from_department_id, to_department_id,
            change_type, category, priority, business_justification, impact_assessment, risk_level,
            affected_systems, rollback_plan, reference_number, current_value, proposed_value,
            data_privacy_confirmed, regulatory_compliance_check, status, requested_by, assigned_to,
            expected_completion_date, attachment_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		cr.RequestNumber,
		cr.Title,
		cr.Description,
		cr.FromDepartmentID,
		cr.ToDepartmentID,
		cr.ChangeType,
		cr.Category,
		cr.Priority,
		cr.BusinessJustification,
		cr.ImpactAssessment,
		cr.RiskLevel,
		cr.AffectedSystems,
		cr.RollbackPlan,
		cr.ReferenceNumber,
		cr.CurrentValue,
		cr.ProposedValue,
		cr.DataPrivacyConfirmed,
		cr.RegulatoryComplianceCheck,
		cr.Status,
		cr.RequestedBy,
		cr.AssignedTo,
		cr.ExpectedCompletionDate,
		cr.AttachmentKey,
	).Scan(&cr.ID, &cr.CreatedAt, &cr.UpdatedAt)
}

func (r *changeRequestRepository) Update(ctx context.Context, cr *domain.ChangeRequest) error {
	const query = `
        UPDATE change_requests SET title=$1, description=$2, from_department_id=$3, to_department_id=$4,
            change_type=$5, category=$6, priority=$7, business_justification=$8, impact_assessment=$9,
            risk_level=$10, affected_systems=$11, rollback_plan=$12, reference_number=$13,
            current_value=$14, proposed_value=$15, data_privacy_confirmed=$16, regulatory_compliance_check=$17,
            status=$18, assigned_to=$19, reviewed_by=$20, approved_by=$21, completed_by=$22,
            submitted_at=$23, reviewed_at=$24, approved_at=$25, started_at=$26, completed_at=$27, closed_at=$28,
            expected_completion_date=$29, response_notes=$30, resolution_details=$31, closure_notes=$32,
            attachment_key=$33, updated_at=NOW()
        WHERE id=$34`
	cmd, err := r.db.Exec(ctx, query,
		cr.Title,
		cr.Description,
		cr.FromDepartmentID,
		cr.ToDepartmentID,
		cr.ChangeType,
		cr.Category,
		cr.Priority,
		cr.BusinessJustification,
		cr.ImpactAssessment,
		cr.RiskLevel,
		cr.AffectedSystems,
		cr.RollbackPlan,
		cr.ReferenceNumber,
		cr.CurrentValue,
		cr.ProposedValue,
		cr.DataPrivacyConfirmed,
		cr.RegulatoryComplianceCheck,
		cr.Status,
		cr.AssignedTo,
		cr.ReviewedBy,
		cr.ApprovedBy,
		cr.CompletedBy,
		cr.SubmittedAt,
		cr.ReviewedAt,
		cr.ApprovedAt,
		cr.StartedAt,
		cr.CompletedAt,
		cr.ClosedAt,
		cr.ExpectedCompletionDate,
		cr.ResponseNotes,
		cr.ResolutionDetails,
		cr.ClosureNotes,
		cr.AttachmentKey,
		cr.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *changeRequestRepository) GetByID(ctx context.Context, id string) (*domain.ChangeRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM change_requests WHERE id=$1`, requestColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *changeRequestRepository) GetByNumber(ctx context.Context, number string) (*domain.ChangeRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM change_requests WHERE request_number=$1`, requestColumns)
	return r.fetchSingle(ctx, query, number)
}

func (r *changeRequestRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.ChangeRequest, error) {
	var cr domain.ChangeRequest
	if err := scanChangeRequest(r.db.QueryRow(ctx, query, arg), &cr); err != nil {
		return nil, err
	}
	return &cr, nil
}

func (r *changeRequestRepository) ListWithFilter(ctx context.Context, filter RequestFilter) ([]domain.ChangeRequest, error) {
	base := fmt.Sprintf(`SELECT %s FROM change_requests`, requestColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.FromDepartmentID != nil {
		args = append(args, *filter.FromDepartmentID)
		clauses = append(clauses, fmt.Sprintf("from_department_id=$%d", len(args)))
	}
	if filter.ToDepartmentID != nil {
		args = append(args, *filter.ToDepartmentID)
		clauses = append(clauses, fmt.Sprintf("to_department_id=$%d", len(args)))
	}
	if filter.RequestedBy != nil {
		args = append(args, *filter.RequestedBy)
		clauses = append(clauses, fmt.Sprintf("requested_by=$%d", len(args)))
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
	if filter.ChangeType != nil {
		args = append(args, *filter.ChangeType)
		clauses = append(clauses, fmt.Sprintf("change_type=$%d", len(args)))
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
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s OR LOWER(request_number) LIKE %s OR LOWER(reference_number) LIKE %s)", placeholder, placeholder, placeholder, placeholder))
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

	var result []domain.ChangeRequest
	for rows.Next() {
		var cr domain.ChangeRequest
		if err := scanChangeRequest(rows, &cr); err != nil {
			return nil, err
		}
		result = append(result, cr)
	}
	return result, rows.Err()
}

func scanChangeRequest(row pgx.Row, cr *domain.ChangeRequest) error {
	return row.Scan(
		&cr.ID,
		&cr.RequestNumber,
		&cr.Title,
		&cr.Description,
		&cr.FromDepartmentID,
		&cr.ToDepartmentID,
		&cr.ChangeType,
		&cr.Category,
		&cr.Priority,
		&cr.BusinessJustification,
		&cr.ImpactAssessment,
		&cr.RiskLevel,
		&cr.AffectedSystems,
		&cr.RollbackPlan,
		&cr.ReferenceNumber,
		&cr.CurrentValue,
		&cr.ProposedValue,
		&cr.DataPrivacyConfirmed,
		&cr.RegulatoryComplianceCheck,
		&cr.Status,
		&cr.RequestedBy,
		&cr.AssignedTo,
		&cr.ReviewedBy,
		&cr.ApprovedBy,
		&cr.CompletedBy,
		&cr.CreatedAt,
		&cr.SubmittedAt,
		&cr.ReviewedAt,
		&cr.ApprovedAt,
		&cr.StartedAt,
		&cr.CompletedAt,
		&cr.ClosedAt,
		&cr.ExpectedCompletionDate,
		&cr.ResponseNotes,
		&cr.ResolutionDetails,
		&cr.ClosureNotes,
		&cr.AttachmentKey,
		&cr.UpdatedAt,
	)
}
