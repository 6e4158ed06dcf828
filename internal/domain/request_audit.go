package domain

import "time"

// RequestAction labels entries in the change-request audit trail.
type RequestAction string

const (
	ActionCreated       RequestAction = "CREATED"
	ActionSubmitted     RequestAction = "SUBMITTED"
	ActionAssigned      RequestAction = "ASSIGNED"
	ActionStatusChanged RequestAction = "STATUS_CHANGED"
	ActionUpdated       RequestAction = "UPDATED"
	ActionCommented     RequestAction = "COMMENTED"
	ActionApproved      RequestAction = "APPROVED"
	ActionRejected      RequestAction = "REJECTED"
	ActionCompleted     RequestAction = "COMPLETED"
	ActionClosed        RequestAction = "CLOSED"
	ActionReopened      RequestAction = "REOPENED"
)

// RequestHistory is an immutable audit entry for a change request.
// FieldChanged/OldValue/NewValue are populated for per-field updates.
type RequestHistory struct {
	ID           string
	RequestID    string
	Action       RequestAction
	PerformedBy  *string
	Timestamp    time.Time
	FieldChanged string
	OldValue     string
	NewValue     string
	Notes        string
}

// RequestComment is a discussion entry on a change request. Internal
// comments are visible to department staff only.
type RequestComment struct {
	ID         string
	RequestID  string
	OperatorID string
	Comment    string
	IsInternal bool
	CreatedAt  time.Time
}

// RequestAttachment references an uploaded file. The service stores the
// opaque storage key only; file contents live elsewhere.
type RequestAttachment struct {
	ID          string
	RequestID   string
	StorageKey  string
	Description string
	UploadedBy  string
	UploadedAt  time.Time
}
