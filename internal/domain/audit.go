package domain

import "time"

// TicketStatusHistory is an immutable audit entry for a ticket status
// change. OldStatus/NewStatus are free text: department transfers encode
// department names here ("In Claims" -> "Transferred to IT"), so the
// fields are not restricted to TicketStatus values.
type TicketStatusHistory struct {
	ID        string
	TicketID  string
	OldStatus string
	NewStatus string
	ChangedBy string
	ChangedAt time.Time
	Notes     string
}

// DepartmentTransfer records a ticket changing owning department.
// Immutable once written.
type DepartmentTransfer struct {
	ID               string
	TicketID         string
	FromDepartmentID string
	ToDepartmentID   string
	TransferredBy    string
	TransferredAt    time.Time
	Notes            string
}
