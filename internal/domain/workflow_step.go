package domain

import "time"

// WorkflowStepStatus tracks progress of an implementation step.
type WorkflowStepStatus string

const (
	WorkflowStepPending    WorkflowStepStatus = "Pending"
	WorkflowStepInProgress WorkflowStepStatus = "In Progress"
	WorkflowStepCompleted  WorkflowStepStatus = "Completed"
	WorkflowStepBlocked    WorkflowStepStatus = "Blocked"
)

// WorkflowStep is a mutable checklist item attached to a change-request
// ticket. Steps order by due date for display.
type WorkflowStep struct {
	ID          string
	TicketID    string
	Label       string
	AssignedTo  string
	Status      WorkflowStepStatus
	DueDate     *time.Time
	CompletedAt *time.Time
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
