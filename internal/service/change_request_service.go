package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/workflow-service/internal/domain"
	"github.com/spec-kit/workflow-service/internal/events"
	"github.com/spec-kit/workflow-service/internal/repository"
	"github.com/spec-kit/workflow-service/internal/sequence"
	apperrors "github.com/spec-kit/workflow-service/pkg/util/errorutil"
)

// ChangeRequestService drives the change-request workflow: creation,
// guarded status actions, per-field audit history, comments and
// attachments.
type ChangeRequestService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	now        func() time.Time
}

// ChangeRequestDependencies bundles collaborators.
type ChangeRequestDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Now        func() time.Time
}

// NewChangeRequestService constructs the service.
func NewChangeRequestService(deps ChangeRequestDependencies) *ChangeRequestService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &ChangeRequestService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		now:        now,
	}
}

// ChangeRequestCreateInput describes creation payload.
type ChangeRequestCreateInput struct {
	Title            string
	Description      string
	FromDepartmentID string
	ToDepartmentID   string
	ChangeType       domain.ChangeType
	Category         string
	Priority         domain.RequestPriority

	BusinessJustification string
	ImpactAssessment      domain.ImpactLevel
	RiskLevel             domain.RiskLevel
	AffectedSystems       string
	RollbackPlan          string

	ReferenceNumber string
	CurrentValue    string
	ProposedValue   string

	DataPrivacyConfirmed      bool
	RegulatoryComplianceCheck bool

	RequestedBy            string
	ExpectedCompletionDate *time.Time
	AttachmentKey          *string
}

// ChangeRequestUpdateInput carries editable detail fields. Status moves
// only through the named actions, never through Update.
type ChangeRequestUpdateInput struct {
	Title                  *string
	Description            *string
	Category               *string
	Priority               *domain.RequestPriority
	BusinessJustification  *string
	ImpactAssessment       *domain.ImpactLevel
	RiskLevel              *domain.RiskLevel
	AffectedSystems        *string
	RollbackPlan           *string
	ReferenceNumber        *string
	CurrentValue           *string
	ProposedValue          *string
	ExpectedCompletionDate *time.Time
	ResponseNotes          *string
}

// CommentInput describes a new change-request comment.
type CommentInput struct {
	OperatorID string
	Comment    string
	IsInternal bool
}

// AttachmentInput describes an uploaded file reference.
type AttachmentInput struct {
	StorageKey  string
	Description string
	UploadedBy  string
}

// ChangeRequestDetail aggregates a request with its child records.
type ChangeRequestDetail struct {
	Request     *domain.ChangeRequest
	History     []domain.RequestHistory
	Comments    []domain.RequestComment
	Attachments []domain.RequestAttachment
}

// Create persists a new change request in DRAFT with its CREATED audit
// entry; number allocation, insert and audit share one transaction.
func (s *ChangeRequestService) Create(ctx context.Context, input ChangeRequestCreateInput) (*domain.ChangeRequest, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	if input.FromDepartmentID == "" || input.ToDepartmentID == "" {
		return nil, apperrors.NewValidationError("from_department and to_department required", nil)
	}
	if input.RequestedBy == "" {
		return nil, apperrors.NewValidationError("requested_by required", nil)
	}
	changeType := input.ChangeType
	if changeType == "" {
		changeType = domain.ChangeTypeNormal
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.RequestPriorityMedium
	}

	cr := &domain.ChangeRequest{
		Title:                     strings.TrimSpace(input.Title),
		Description:               strings.TrimSpace(input.Description),
		FromDepartmentID:          input.FromDepartmentID,
		ToDepartmentID:            input.ToDepartmentID,
		ChangeType:                changeType,
		Category:                  input.Category,
		Priority:                  priority,
		BusinessJustification:     input.BusinessJustification,
		ImpactAssessment:          input.ImpactAssessment,
		RiskLevel:                 input.RiskLevel,
		AffectedSystems:           input.AffectedSystems,
		RollbackPlan:              input.RollbackPlan,
		ReferenceNumber:           input.ReferenceNumber,
		CurrentValue:              input.CurrentValue,
		ProposedValue:             input.ProposedValue,
		DataPrivacyConfirmed:      input.DataPrivacyConfirmed,
		RegulatoryComplianceCheck: input.RegulatoryComplianceCheck,
		Status:                    domain.RequestStatusDraft,
		RequestedBy:               input.RequestedBy,
		ExpectedCompletionDate:    input.ExpectedCompletionDate,
		AttachmentKey:             input.AttachmentKey,
	}

	err := s.store.WithinTx(ctx, func(r repository.Set) error {
		if _, err := r.Departments.GetByID(ctx, cr.FromDepartmentID); err != nil {
			return fmt.Errorf("load from department: %w", err)
		}
		if _, err := r.Departments.GetByID(ctx, cr.ToDepartmentID); err != nil {
			return fmt.Errorf("load to department: %w", err)
		}

		number, err := sequence.RequestNumber(ctx, r.Counters, s.now())
		if err != nil {
			return fmt.Errorf("allocate request number: %w", err)
		}
		cr.RequestNumber = number

		if err := r.Requests.Create(ctx, cr); err != nil {
			if repository.IsUniqueViolation(err) {
				return apperrors.NewDuplicateNumber(cr.RequestNumber)
			}
			return err
		}
		actor := cr.RequestedBy
		return r.RequestHistory.Create(ctx, &domain.RequestHistory{
			RequestID:   cr.ID,
			Action:      domain.ActionCreated,
			PerformedBy: &actor,
			Notes:       "Change request created",
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventRequestCreated,
		EntityID: cr.ID,
		ActorID:  cr.RequestedBy,
		Payload: events.RequestCreatedPayload{
			RequestNumber:    cr.RequestNumber,
			FromDepartmentID: cr.FromDepartmentID,
			ToDepartmentID:   cr.ToDepartmentID,
			ChangeType:       cr.ChangeType,
			Priority:         cr.Priority,
			Title:            cr.Title,
		},
	})
	return cr, nil
}

// Update edits detail fields and writes one UPDATED history entry per
// field that actually changed.
func (s *ChangeRequestService) Update(ctx context.Context, requestID string, input ChangeRequestUpdateInput, actorID string) (*domain.ChangeRequest, error) {
	var cr *domain.ChangeRequest
	err := s.store.WithinTx(ctx, func(r repository.Set) error {
		var err error
		cr, err = r.Requests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}

		changes := applyRequestUpdate(cr, input)
		if len(changes) == 0 {
			return nil
		}
		if err := r.Requests.Update(ctx, cr); err != nil {
			return err
		}
		actor := actorID
		for _, change := range changes {
			entry := change
			entry.RequestID = cr.ID
			entry.Action = domain.ActionUpdated
			if actor != "" {
				entry.PerformedBy = &actor
			}
			if err := r.RequestHistory.Create(ctx, &entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cr, nil
}

// Submit moves DRAFT to SUBMITTED and stamps SubmittedAt once.
func (s *ChangeRequestService) Submit(ctx context.Context, requestID, actorID string) (*domain.ChangeRequest, error) {
	return s.transition(ctx, requestID, actorID, "submit", transitionSpec{
		From:   []domain.RequestStatus{domain.RequestStatusDraft},
		To:     domain.RequestStatusSubmitted,
		Action: domain.ActionSubmitted,
		Notes:  "Change request submitted",
		Stamp: func(cr *domain.ChangeRequest, now time.Time, actor string) {
			if cr.SubmittedAt == nil {
				cr.SubmittedAt = &now
			}
		},
	})
}

// StartReview moves SUBMITTED to UNDER_REVIEW and records the reviewer
// the first time a review begins.
func (s *ChangeRequestService) StartReview(ctx context.Context, requestID, actorID string) (*domain.ChangeRequest, error) {
	return s.transition(ctx, requestID, actorID, "start review", transitionSpec{
		From:   []domain.RequestStatus{domain.RequestStatusSubmitted},
		To:     domain.RequestStatusUnderReview,
		Action: domain.ActionStatusChanged,
		Notes:  "Review started",
		Stamp: func(cr *domain.ChangeRequest, now time.Time, actor string) {
			if cr.ReviewedAt == nil {
				cr.ReviewedAt = &now
				if actor != "" {
					cr.ReviewedBy = &actor
				}
			}
		},
	})
}

// Approve moves SUBMITTED or UNDER_REVIEW to APPROVED, stamping the
// approver once.
func (s *ChangeRequestService) Approve(ctx context.Context, requestID, actorID, notes string) (*domain.ChangeRequest, error) {
	return s.transition(ctx, requestID, actorID, "approve", transitionSpec{
		From:   []domain.RequestStatus{domain.RequestStatusSubmitted, domain.RequestStatusUnderReview},
		To:     domain.RequestStatusApproved,
		Action: domain.ActionApproved,
		Notes:  firstNonEmpty(notes, "Change request approved"),
		Stamp: func(cr *domain.ChangeRequest, now time.Time, actor string) {
			if cr.ApprovedAt == nil {
				cr.ApprovedAt = &now
				if actor != "" {
					cr.ApprovedBy = &actor
				}
			}
			if notes != "" {
				cr.ResponseNotes = notes
			}
		},
	})
}

// Reject moves SUBMITTED or UNDER_REVIEW to REJECTED. The rejection
// reason lands in ResponseNotes and the audit entry.
func (s *ChangeRequestService) Reject(ctx context.Context, requestID, actorID, reason string) (*domain.ChangeRequest, error) {
	return s.transition(ctx, requestID, actorID, "reject", transitionSpec{
		From:   []domain.RequestStatus{domain.RequestStatusSubmitted, domain.RequestStatusUnderReview},
		To:     domain.RequestStatusRejected,
		Action: domain.ActionRejected,
		Notes:  firstNonEmpty(reason, "Change request rejected"),
		Stamp: func(cr *domain.ChangeRequest, now time.Time, actor string) {
			if cr.ReviewedAt == nil {
				cr.ReviewedAt = &now
				if actor != "" {
					cr.ReviewedBy = &actor
				}
			}
			if reason != "" {
				cr.ResponseNotes = reason
			}
		},
	})
}

// StartWork moves APPROVED to IN_PROGRESS and stamps StartedAt once.
func (s *ChangeRequestService) StartWork(ctx context.Context, requestID, actorID string) (*domain.ChangeRequest, error) {
	return s.transition(ctx, requestID, actorID, "start work", transitionSpec{
		From:   []domain.RequestStatus{domain.RequestStatusApproved},
		To:     domain.RequestStatusInProgress,
		Action: domain.ActionStatusChanged,
		Notes:  "Implementation started",
		Stamp: func(cr *domain.ChangeRequest, now time.Time, actor string) {
			if cr.StartedAt == nil {
				cr.StartedAt = &now
			}
		},
	})
}

// Complete moves IN_PROGRESS to COMPLETED, recording who finished the
// work and the resolution details.
func (s *ChangeRequestService) Complete(ctx context.Context, requestID, actorID, resolution string) (*domain.ChangeRequest, error) {
	return s.transition(ctx, requestID, actorID, "complete", transitionSpec{
		From:   []domain.RequestStatus{domain.RequestStatusInProgress},
		To:     domain.RequestStatusCompleted,
		Action: domain.ActionCompleted,
		Notes:  firstNonEmpty(resolution, "Change request completed"),
		Stamp: func(cr *domain.ChangeRequest, now time.Time, actor string) {
			if cr.CompletedAt == nil {
				cr.CompletedAt = &now
				if actor != "" {
					cr.CompletedBy = &actor
				}
			}
			if resolution != "" {
				cr.ResolutionDetails = resolution
			}
		},
	})
}

// Close moves COMPLETED to CLOSED and stamps ClosedAt once.
func (s *ChangeRequestService) Close(ctx context.Context, requestID, actorID, closureNotes string) (*domain.ChangeRequest, error) {
	return s.transition(ctx, requestID, actorID, "close", transitionSpec{
		From:   []domain.RequestStatus{domain.RequestStatusCompleted},
		To:     domain.RequestStatusClosed,
		Action: domain.ActionClosed,
		Notes:  firstNonEmpty(closureNotes, "Change request closed"),
		Stamp: func(cr *domain.ChangeRequest, now time.Time, actor string) {
			if cr.ClosedAt == nil {
				cr.ClosedAt = &now
			}
			if closureNotes != "" {
				cr.ClosureNotes = closureNotes
			}
		},
	})
}

// PutOnHold parks a request in ON_HOLD from any live state. Closed and
// cancelled requests cannot be held.
func (s *ChangeRequestService) PutOnHold(ctx context.Context, requestID, actorID, reason string) (*domain.ChangeRequest, error) {
	return s.transition(ctx, requestID, actorID, "put on hold", transitionSpec{
		NotFrom: []domain.RequestStatus{domain.RequestStatusClosed, domain.RequestStatusCancelled},
		To:      domain.RequestStatusOnHold,
		Action:  domain.ActionStatusChanged,
		Notes:   firstNonEmpty(reason, "Change request put on hold"),
	})
}

// Reopen returns a CLOSED or REJECTED request to SUBMITTED for another
// pass through review. Earlier milestone stamps are preserved.
func (s *ChangeRequestService) Reopen(ctx context.Context, requestID, actorID, reason string) (*domain.ChangeRequest, error) {
	return s.transition(ctx, requestID, actorID, "reopen", transitionSpec{
		From:   []domain.RequestStatus{domain.RequestStatusClosed, domain.RequestStatusRejected},
		To:     domain.RequestStatusSubmitted,
		Action: domain.ActionReopened,
		Notes:  firstNonEmpty(reason, "Change request reopened"),
	})
}

// Cancel withdraws a request from any state short of a terminal one.
func (s *ChangeRequestService) Cancel(ctx context.Context, requestID, actorID, reason string) (*domain.ChangeRequest, error) {
	return s.transition(ctx, requestID, actorID, "cancel", transitionSpec{
		NotFrom: []domain.RequestStatus{domain.RequestStatusClosed, domain.RequestStatusCompleted, domain.RequestStatusCancelled},
		To:      domain.RequestStatusCancelled,
		Action:  domain.ActionStatusChanged,
		Notes:   firstNonEmpty(reason, "Change request cancelled"),
	})
}

// Assign sets or clears the individual working on the request.
func (s *ChangeRequestService) Assign(ctx context.Context, requestID string, assigneeID *string, actorID string) (*domain.ChangeRequest, error) {
	var cr *domain.ChangeRequest
	err := s.store.WithinTx(ctx, func(r repository.Set) error {
		var err error
		cr, err = r.Requests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		oldValue := ""
		if cr.AssignedTo != nil {
			oldValue = *cr.AssignedTo
		}
		newValue := ""
		if assigneeID != nil {
			newValue = *assigneeID
		}
		cr.AssignedTo = assigneeID
		if err := r.Requests.Update(ctx, cr); err != nil {
			return err
		}
		entry := &domain.RequestHistory{
			RequestID:    cr.ID,
			Action:       domain.ActionAssigned,
			FieldChanged: "assigned_to",
			OldValue:     oldValue,
			NewValue:     newValue,
		}
		if actorID != "" {
			actor := actorID
			entry.PerformedBy = &actor
		}
		return r.RequestHistory.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return cr, nil
}

// AddComment appends a comment and its COMMENTED audit entry.
func (s *ChangeRequestService) AddComment(ctx context.Context, requestID string, input CommentInput) (*domain.RequestComment, error) {
	if strings.TrimSpace(input.Comment) == "" {
		return nil, apperrors.NewValidationError("comment required", nil)
	}
	if input.OperatorID == "" {
		return nil, apperrors.NewValidationError("operator_id required", nil)
	}

	comment := &domain.RequestComment{
		RequestID:  requestID,
		OperatorID: input.OperatorID,
		Comment:    strings.TrimSpace(input.Comment),
		IsInternal: input.IsInternal,
	}
	err := s.store.WithinTx(ctx, func(r repository.Set) error {
		if _, err := r.Requests.GetByID(ctx, requestID); err != nil {
			return err
		}
		if err := r.RequestComments.Create(ctx, comment); err != nil {
			return err
		}
		actor := input.OperatorID
		return r.RequestHistory.Create(ctx, &domain.RequestHistory{
			RequestID:   requestID,
			Action:      domain.ActionCommented,
			PerformedBy: &actor,
			Notes:       preview(comment.Comment, 120),
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventRequestCommentAdded,
		EntityID: requestID,
		ActorID:  input.OperatorID,
		Payload: events.RequestCommentAddedPayload{
			CommentID:  comment.ID,
			IsInternal: comment.IsInternal,
			Preview:    preview(comment.Comment, 120),
		},
	})
	return comment, nil
}

// AddAttachment records an uploaded file reference.
func (s *ChangeRequestService) AddAttachment(ctx context.Context, requestID string, input AttachmentInput) (*domain.RequestAttachment, error) {
	if input.StorageKey == "" {
		return nil, apperrors.NewValidationError("storage_key required", nil)
	}
	if input.UploadedBy == "" {
		return nil, apperrors.NewValidationError("uploaded_by required", nil)
	}

	att := &domain.RequestAttachment{
		RequestID:   requestID,
		StorageKey:  input.StorageKey,
		Description: input.Description,
		UploadedBy:  input.UploadedBy,
	}
	err := s.store.WithinTx(ctx, func(r repository.Set) error {
		if _, err := r.Requests.GetByID(ctx, requestID); err != nil {
			return err
		}
		return r.RequestAttachments.Create(ctx, att)
	})
	if err != nil {
		return nil, err
	}
	return att, nil
}

// Get returns a request with history (newest first), comments and
// attachments.
func (s *ChangeRequestService) Get(ctx context.Context, requestID string, includeInternal bool) (*ChangeRequestDetail, error) {
	r := s.store.Repos()
	cr, err := r.Requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, cr, includeInternal)
}

// GetByNumber resolves a request by its CR number.
func (s *ChangeRequestService) GetByNumber(ctx context.Context, number string, includeInternal bool) (*ChangeRequestDetail, error) {
	cr, err := s.store.Repos().Requests.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, cr, includeInternal)
}

// List returns change requests matching the filter.
func (s *ChangeRequestService) List(ctx context.Context, filter repository.RequestFilter) ([]domain.ChangeRequest, error) {
	return s.store.Repos().Requests.ListWithFilter(ctx, filter)
}

// transitionSpec describes one guarded status move. Either From lists
// the allowed source states, or NotFrom lists the forbidden ones.
type transitionSpec struct {
	From    []domain.RequestStatus
	NotFrom []domain.RequestStatus
	To      domain.RequestStatus
	Action  domain.RequestAction
	Notes   string
	Stamp   func(cr *domain.ChangeRequest, now time.Time, actor string)
}

func (s *ChangeRequestService) transition(ctx context.Context, requestID, actorID, actionName string, spec transitionSpec) (*domain.ChangeRequest, error) {
	var cr *domain.ChangeRequest
	var oldStatus domain.RequestStatus
	err := s.store.WithinTx(ctx, func(r repository.Set) error {
		var err error
		cr, err = r.Requests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if !statusAllowed(cr.Status, spec.From, spec.NotFrom) {
			return apperrors.NewInvalidTransition(actionName, string(cr.Status))
		}
		oldStatus = cr.Status

		now := s.now()
		cr.Status = spec.To
		if spec.Stamp != nil {
			spec.Stamp(cr, now, actorID)
		}
		if err := r.Requests.Update(ctx, cr); err != nil {
			return err
		}
		entry := &domain.RequestHistory{
			RequestID:    cr.ID,
			Action:       spec.Action,
			FieldChanged: "status",
			OldValue:     string(oldStatus),
			NewValue:     string(spec.To),
			Notes:        spec.Notes,
		}
		if actorID != "" {
			actor := actorID
			entry.PerformedBy = &actor
		}
		return r.RequestHistory.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventRequestStatusChanged,
		EntityID: cr.ID,
		ActorID:  actorID,
		Payload: events.RequestStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: cr.Status,
			Action:    spec.Action,
		},
	})
	return cr, nil
}

func (s *ChangeRequestService) detail(ctx context.Context, cr *domain.ChangeRequest, includeInternal bool) (*ChangeRequestDetail, error) {
	r := s.store.Repos()
	history, err := r.RequestHistory.ListByRequest(ctx, cr.ID, false)
	if err != nil {
		return nil, err
	}
	comments, err := r.RequestComments.ListByRequest(ctx, cr.ID, includeInternal)
	if err != nil {
		return nil, err
	}
	attachments, err := r.RequestAttachments.ListByRequest(ctx, cr.ID)
	if err != nil {
		return nil, err
	}
	return &ChangeRequestDetail{
		Request:     cr,
		History:     history,
		Comments:    comments,
		Attachments: attachments,
	}, nil
}

func (s *ChangeRequestService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func statusAllowed(current domain.RequestStatus, from, notFrom []domain.RequestStatus) bool {
	if len(from) > 0 {
		for _, status := range from {
			if current == status {
				return true
			}
		}
		return false
	}
	for _, status := range notFrom {
		if current == status {
			return false
		}
	}
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func applyRequestUpdate(cr *domain.ChangeRequest, input ChangeRequestUpdateInput) []domain.RequestHistory {
	var changes []domain.RequestHistory

	setString := func(field string, target *string, value *string) {
		if value == nil || *value == *target {
			return
		}
		changes = append(changes, domain.RequestHistory{
			FieldChanged: field,
			OldValue:     *target,
			NewValue:     *value,
		})
		*target = *value
	}

	setString("title", &cr.Title, input.Title)
	setString("description", &cr.Description, input.Description)
	setString("category", &cr.Category, input.Category)
	setString("business_justification", &cr.BusinessJustification, input.BusinessJustification)
	setString("affected_systems", &cr.AffectedSystems, input.AffectedSystems)
	setString("rollback_plan", &cr.RollbackPlan, input.RollbackPlan)
	setString("reference_number", &cr.ReferenceNumber, input.ReferenceNumber)
	setString("current_value", &cr.CurrentValue, input.CurrentValue)
	setString("proposed_value", &cr.ProposedValue, input.ProposedValue)
	setString("response_notes", &cr.ResponseNotes, input.ResponseNotes)

	if input.Priority != nil && *input.Priority != cr.Priority {
		changes = append(changes, domain.RequestHistory{
			FieldChanged: "priority",
			OldValue:     string(cr.Priority),
			NewValue:     string(*input.Priority),
		})
		cr.Priority = *input.Priority
	}
	if input.ImpactAssessment != nil && *input.ImpactAssessment != cr.ImpactAssessment {
		changes = append(changes, domain.RequestHistory{
			FieldChanged: "impact_assessment",
			OldValue:     string(cr.ImpactAssessment),
			NewValue:     string(*input.ImpactAssessment),
		})
		cr.ImpactAssessment = *input.ImpactAssessment
	}
	if input.RiskLevel != nil && *input.RiskLevel != cr.RiskLevel {
		changes = append(changes, domain.RequestHistory{
			FieldChanged: "risk_level",
			OldValue:     string(cr.RiskLevel),
			NewValue:     string(*input.RiskLevel),
		})
		cr.RiskLevel = *input.RiskLevel
	}
	if input.ExpectedCompletionDate != nil {
		oldValue := ""
		if cr.ExpectedCompletionDate != nil {
			oldValue = cr.ExpectedCompletionDate.Format(time.RFC3339)
		}
		newValue := input.ExpectedCompletionDate.Format(time.RFC3339)
		if oldValue != newValue {
			changes = append(changes, domain.RequestHistory{
				FieldChanged: "expected_completion_date",
				OldValue:     oldValue,
				NewValue:     newValue,
			})
			cr.ExpectedCompletionDate = input.ExpectedCompletionDate
		}
	}
	return changes
}
