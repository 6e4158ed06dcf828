package events

import (
	"time"

	"github.com/spec-kit/workflow-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated          EventType = "ticket_created"
	EventTicketStatusChanged    EventType = "ticket_status_changed"
	EventTicketTransferred      EventType = "ticket_transferred"
	EventTicketAssigned         EventType = "ticket_assigned"
	EventTicketDiscussionAdded  EventType = "ticket_discussion_added"
	EventRequestCreated         EventType = "request_created"
	EventRequestStatusChanged   EventType = "request_status_changed"
	EventRequestCommentAdded    EventType = "request_comment_added"
)

// Event represents a domain event emitted by services. EntityID holds
// the ticket or change-request id the event belongs to.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  string      `json:"entity_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber string                `json:"ticket_number"`
	DepartmentID string                `json:"department_id"`
	Priority     domain.TicketPriority `json:"priority"`
	RequestType  domain.RequestType    `json:"request_type"`
	Title        string                `json:"title"`
	SLADueDate   *time.Time            `json:"sla_due_date,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Notes     string              `json:"notes,omitempty"`
}

// TicketTransferredPayload payload.
type TicketTransferredPayload struct {
	FromDepartmentID string `json:"from_department_id"`
	ToDepartmentID   string `json:"to_department_id"`
	Notes            string `json:"notes,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID *string `json:"assignee_id,omitempty"`
}

// TicketDiscussionAddedPayload payload.
type TicketDiscussionAddedPayload struct {
	DiscussionID string                `json:"discussion_id"`
	Type         domain.DiscussionType `json:"type"`
	IsInternal   bool                  `json:"is_internal"`
	Preview      string                `json:"preview"`
}

// RequestCreatedPayload payload.
type RequestCreatedPayload struct {
	RequestNumber    string                 `json:"request_number"`
	FromDepartmentID string                 `json:"from_department_id"`
	ToDepartmentID   string                 `json:"to_department_id"`
	ChangeType       domain.ChangeType      `json:"change_type"`
	Priority         domain.RequestPriority `json:"priority"`
	Title            string                 `json:"title"`
}

// RequestStatusChangedPayload payload.
type RequestStatusChangedPayload struct {
	OldStatus domain.RequestStatus `json:"old_status"`
	NewStatus domain.RequestStatus `json:"new_status"`
	Action    domain.RequestAction `json:"action"`
}

// RequestCommentAddedPayload payload.
type RequestCommentAddedPayload struct {
	CommentID  string `json:"comment_id"`
	IsInternal bool   `json:"is_internal"`
	Preview    string `json:"preview"`
}
