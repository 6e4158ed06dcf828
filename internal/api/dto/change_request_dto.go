package dto

import (
	"time"

	"github.com/spec-kit/workflow-service/internal/domain"
)

// CreateChangeRequestRequest payload.
type CreateChangeRequestRequest struct {
	Title            string                 `json:"title"`
	Description      string                 `json:"description"`
	FromDepartmentID string                 `json:"from_department_id"`
	ToDepartmentID   string                 `json:"to_department_id"`
	ChangeType       domain.ChangeType      `json:"change_type"`
	Category         string                 `json:"category"`
	Priority         domain.RequestPriority `json:"priority"`

	BusinessJustification string             `json:"business_justification"`
	ImpactAssessment      domain.ImpactLevel `json:"impact_assessment"`
	RiskLevel             domain.RiskLevel   `json:"risk_level"`
	AffectedSystems       string             `json:"affected_systems"`
	RollbackPlan          string             `json:"rollback_plan"`

	ReferenceNumber string `json:"reference_number"`
	CurrentValue    string `json:"current_value"`
	ProposedValue   string `json:"proposed_value"`

	DataPrivacyConfirmed      bool `json:"data_privacy_confirmed"`
	RegulatoryComplianceCheck bool `json:"regulatory_compliance_check"`

	ExpectedCompletionDate *time.Time `json:"expected_completion_date"`
	AttachmentKey          *string    `json:"attachment_key"`
}

// UpdateChangeRequestRequest payload for detail edits.
type UpdateChangeRequestRequest struct {
	Title                  *string                 `json:"title"`
	Description            *string                 `json:"description"`
	Category               *string                 `json:"category"`
	Priority               *domain.RequestPriority `json:"priority"`
	BusinessJustification  *string                 `json:"business_justification"`
	ImpactAssessment       *domain.ImpactLevel     `json:"impact_assessment"`
	RiskLevel              *domain.RiskLevel       `json:"risk_level"`
	AffectedSystems        *string                 `json:"affected_systems"`
	RollbackPlan           *string                 `json:"rollback_plan"`
	ReferenceNumber        *string                 `json:"reference_number"`
	CurrentValue           *string                 `json:"current_value"`
	ProposedValue          *string                 `json:"proposed_value"`
	ExpectedCompletionDate *time.Time              `json:"expected_completion_date"`
	ResponseNotes          *string                 `json:"response_notes"`
}

// RequestActionRequest carries the optional notes of a workflow action.
type RequestActionRequest struct {
	Notes string `json:"notes"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Comment    string `json:"comment"`
	IsInternal bool   `json:"is_internal"`
}

// CreateAttachmentRequest payload.
type CreateAttachmentRequest struct {
	StorageKey  string `json:"storage_key"`
	Description string `json:"description"`
}

// ChangeRequestSummary response.
type ChangeRequestSummary struct {
	ID               string                 `json:"id"`
	RequestNumber    string                 `json:"request_number"`
	Title            string                 `json:"title"`
	FromDepartmentID string                 `json:"from_department_id"`
	ToDepartmentID   string                 `json:"to_department_id"`
	ChangeType       domain.ChangeType      `json:"change_type"`
	Priority         domain.RequestPriority `json:"priority"`
	Status           domain.RequestStatus   `json:"status"`
	RequestedBy      string                 `json:"requested_by"`
	AssignedTo       *string                `json:"assigned_to"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// ChangeRequestDetailResponse provides full request info.
type ChangeRequestDetailResponse struct {
	ChangeRequestSummary
	Description           string             `json:"description"`
	Category              string             `json:"category"`
	BusinessJustification string             `json:"business_justification"`
	ImpactAssessment      domain.ImpactLevel `json:"impact_assessment"`
	RiskLevel             domain.RiskLevel   `json:"risk_level"`
	AffectedSystems       string             `json:"affected_systems"`
	RollbackPlan          string             `json:"rollback_plan"`

	ReferenceNumber string `json:"reference_number"`
	CurrentValue    string `json:"current_value"`
	ProposedValue   string `json:"proposed_value"`

	DataPrivacyConfirmed      bool `json:"data_privacy_confirmed"`
	RegulatoryComplianceCheck bool `json:"regulatory_compliance_check"`

	ReviewedBy  *string `json:"reviewed_by"`
	ApprovedBy  *string `json:"approved_by"`
	CompletedBy *string `json:"completed_by"`

	SubmittedAt *time.Time `json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
	ApprovedAt  *time.Time `json:"approved_at"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	ClosedAt    *time.Time `json:"closed_at"`

	ExpectedCompletionDate *time.Time `json:"expected_completion_date"`

	ResponseNotes     string `json:"response_notes,omitempty"`
	ResolutionDetails string `json:"resolution_details,omitempty"`
	ClosureNotes      string `json:"closure_notes,omitempty"`

	History     []RequestHistoryResponse    `json:"history"`
	Comments    []RequestCommentResponse    `json:"comments"`
	Attachments []RequestAttachmentResponse `json:"attachments"`
}

// RequestHistoryResponse audit entry.
type RequestHistoryResponse struct {
	ID           string               `json:"id"`
	Action       domain.RequestAction `json:"action"`
	PerformedBy  *string              `json:"performed_by"`
	Timestamp    time.Time            `json:"timestamp"`
	FieldChanged string               `json:"field_changed,omitempty"`
	OldValue     string               `json:"old_value,omitempty"`
	NewValue     string               `json:"new_value,omitempty"`
	Notes        string               `json:"notes,omitempty"`
}

// RequestCommentResponse discussion entry.
type RequestCommentResponse struct {
	ID         string    `json:"id"`
	OperatorID string    `json:"operator_id"`
	Comment    string    `json:"comment"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// RequestAttachmentResponse file reference.
type RequestAttachmentResponse struct {
	ID          string    `json:"id"`
	StorageKey  string    `json:"storage_key"`
	Description string    `json:"description,omitempty"`
	UploadedBy  string    `json:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
