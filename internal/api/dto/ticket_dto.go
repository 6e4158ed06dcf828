package dto

import (
	"time"

	"github.com/spec-kit/workflow-service/internal/domain"
)

// CreateTicketRequest payload. DepartmentID may be omitted; the
// creator's department is used instead.
type CreateTicketRequest struct {
	Title              string                 `json:"title"`
	Description        string                 `json:"description"`
	Identifier         string                 `json:"identifier"`
	Priority           domain.TicketPriority  `json:"priority"`
	RequestType        domain.RequestType     `json:"request_type"`
	CategoryID         *string                `json:"category_id"`
	IssueType          *domain.IssueType      `json:"issue_type"`
	UrgencyLevel       *domain.TicketPriority `json:"urgency_level"`
	EstimatedEffortHrs *int                   `json:"estimated_effort_hrs"`
	BusinessImpact     string                 `json:"business_impact"`
	DepartmentID       *string                `json:"department_id"`
	AssignedTo         *string                `json:"assigned_to"`
	MemoRequired       bool                   `json:"memo_required"`
	MemoKey            *string                `json:"memo_key"`
}

// UpdateTicketRequest payload for detail edits.
type UpdateTicketRequest struct {
	Title              *string                `json:"title"`
	Description        *string                `json:"description"`
	Identifier         *string                `json:"identifier"`
	Priority           *domain.TicketPriority `json:"priority"`
	CategoryID         *string                `json:"category_id"`
	IssueType          *domain.IssueType      `json:"issue_type"`
	UrgencyLevel       *domain.TicketPriority `json:"urgency_level"`
	EstimatedEffortHrs *int                   `json:"estimated_effort_hrs"`
	BusinessImpact     *string                `json:"business_impact"`
	MemoRequired       *bool                  `json:"memo_required"`
	MemoKey            *string                `json:"memo_key"`
	IsFinal            *bool                  `json:"is_final"`
}

// ChangeStatusRequest payload.
type ChangeStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
	Notes  string              `json:"notes"`
}

// TransferRequest payload.
type TransferRequest struct {
	DepartmentID string `json:"department_id"`
	Notes        string `json:"notes"`
}

// AssignRequest payload. A null assigned_to clears the assignment.
type AssignRequest struct {
	AssignedTo *string `json:"assigned_to"`
}

// CreateDiscussionRequest payload.
type CreateDiscussionRequest struct {
	ParentID   *string               `json:"parent_id"`
	Message    string                `json:"message"`
	Type       domain.DiscussionType `json:"type"`
	IsInternal bool                  `json:"is_internal"`
}

// EditDiscussionRequest payload.
type EditDiscussionRequest struct {
	Message string `json:"message"`
}

// CreateWorkflowStepRequest payload.
type CreateWorkflowStepRequest struct {
	Label      string     `json:"label"`
	AssignedTo string     `json:"assigned_to"`
	DueDate    *time.Time `json:"due_date"`
	Notes      string     `json:"notes"`
}

// UpdateWorkflowStepRequest payload.
type UpdateWorkflowStepRequest struct {
	Status domain.WorkflowStepStatus `json:"status"`
	Notes  string                    `json:"notes"`
}

// TicketSummary response.
type TicketSummary struct {
	ID           string                `json:"id"`
	TicketNumber string                `json:"ticket_number"`
	Title        string                `json:"title"`
	DepartmentID string                `json:"department_id"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	RequestType  domain.RequestType    `json:"request_type"`
	AssignedTo   *string               `json:"assigned_to"`
	SLADueDate   *time.Time            `json:"sla_due_date"`
	Overdue      bool                  `json:"overdue"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description             string                  `json:"description"`
	Identifier              string                  `json:"identifier"`
	CategoryID              *string                 `json:"category_id"`
	IssueType               *domain.IssueType       `json:"issue_type"`
	UrgencyLevel            *domain.TicketPriority  `json:"urgency_level"`
	EstimatedEffortHrs      *int                    `json:"estimated_effort_hrs"`
	BusinessImpact          string                  `json:"business_impact"`
	OriginatingDepartmentID *string                 `json:"originating_department_id"`
	TransferredFromID       *string                 `json:"transferred_from_id"`
	TransferNotes           string                  `json:"transfer_notes,omitempty"`
	CreatedBy               string                  `json:"created_by"`
	ClosedAt                *time.Time              `json:"closed_at"`
	MemoRequired            bool                    `json:"memo_required"`
	IsFinal                 bool                    `json:"is_final"`
	History                 []StatusHistoryResponse `json:"history"`
	Transfers               []TransferResponse      `json:"transfers"`
	Discussions             []DiscussionResponse    `json:"discussions"`
}

// StatusHistoryResponse audit entry.
type StatusHistoryResponse struct {
	ID        string    `json:"id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	ChangedBy string    `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
	Notes     string    `json:"notes,omitempty"`
}

// TransferResponse audit entry.
type TransferResponse struct {
	ID               string    `json:"id"`
	FromDepartmentID string    `json:"from_department_id"`
	ToDepartmentID   string    `json:"to_department_id"`
	TransferredBy    string    `json:"transferred_by"`
	TransferredAt    time.Time `json:"transferred_at"`
	Notes            string    `json:"notes,omitempty"`
}

// DiscussionResponse thread entry.
type DiscussionResponse struct {
	ID         string                `json:"id"`
	ParentID   *string               `json:"parent_id"`
	Message    string                `json:"message"`
	Type       domain.DiscussionType `json:"type"`
	CreatedBy  string                `json:"created_by"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
	IsInternal bool                  `json:"is_internal"`
}

// WorkflowStepResponse checklist item.
type WorkflowStepResponse struct {
	ID          string                    `json:"id"`
	Label       string                    `json:"label"`
	AssignedTo  string                    `json:"assigned_to"`
	Status      domain.WorkflowStepStatus `json:"status"`
	DueDate     *time.Time                `json:"due_date"`
	CompletedAt *time.Time                `json:"completed_at"`
	Notes       string                    `json:"notes,omitempty"`
}
