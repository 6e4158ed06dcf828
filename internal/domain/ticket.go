package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. The values are
// persisted verbatim; transitions between them are caller-directed and
// unrestricted except Transferred, which only TransferToDepartment sets.
type TicketStatus string

const (
	TicketStatusOpen              TicketStatus = "Open"
	TicketStatusInProgress        TicketStatus = "In Progress"
	TicketStatusPendingCustomer   TicketStatus = "Pending Customer"
	TicketStatusPendingThirdParty TicketStatus = "Pending Third Party"
	TicketStatusResolved          TicketStatus = "Resolved"
	TicketStatusClosed            TicketStatus = "Closed"
	TicketStatusReopened          TicketStatus = "Reopened"
	TicketStatusTransferred       TicketStatus = "Transferred"
)

// TicketPriority drives the SLA multiplier at creation time.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "Low"
	TicketPriorityMedium   TicketPriority = "Medium"
	TicketPriorityHigh     TicketPriority = "High"
	TicketPriorityCritical TicketPriority = "Critical"
)

// RequestType is the closed set of business request categories.
type RequestType string

const (
	RequestTypeNewBusiness         RequestType = "New Business"
	RequestTypeRenewal             RequestType = "Renewal"
	RequestTypeLoanIndividual      RequestType = "Loan I"
	RequestTypeLoanGroup           RequestType = "Loan G"
	RequestTypeSurrenderIndividual RequestType = "Surrender I"
	RequestTypeSurrenderGroup      RequestType = "Surrender G"
	RequestTypeMaturity            RequestType = "Maturity"
	RequestTypeReinsurance         RequestType = "Reinsurance"
	RequestTypeActuary             RequestType = "Actuary"
	RequestTypeDeathClaimInd       RequestType = "Individual Death Claim"
	RequestTypeDeathClaimGroup     RequestType = "Group Death Claim"
	RequestTypeNominationGroup     RequestType = "Nomination Change Group"
	RequestTypeNominationInd       RequestType = "Nomination Change Individual"
	RequestTypeAddressChange       RequestType = "Address Change"
	RequestTypePremiumPayment      RequestType = "Premium Payment"
	RequestTypePolicyRevival       RequestType = "Policy Revival"
	RequestTypeSoftwareChange      RequestType = "Software Change Request"
	RequestTypeGeneral             RequestType = "General"
)

// IssueType refines software change request tickets.
type IssueType string

const (
	IssueTypeBugFix        IssueType = "Bug Fix"
	IssueTypeEnhancement   IssueType = "Enhancement"
	IssueTypeNewFeature    IssueType = "New Feature"
	IssueTypeIntegration   IssueType = "Integration"
	IssueTypeSecurity      IssueType = "Security"
	IssueTypeMaintenance   IssueType = "Maintenance"
	IssueTypeConfiguration IssueType = "Configuration"
)

// Ticket is the aggregate for back-office support and change tickets.
//
// TicketNumber (TICKET-YYYYMMDD-NNNNN) and OriginatingDepartmentID are
// write-once. SLADueDate is computed at creation and never recomputed,
// even when priority or department change later.
type Ticket struct {
	ID           string
	TicketNumber string
	Title        string
	Description  string
	Identifier   string

	Priority            TicketPriority
	RequestType         RequestType
	CategoryID          *string
	IssueType           *IssueType
	UrgencyLevel        *TicketPriority
	EstimatedEffortHrs  *int
	BusinessImpact      string

	DepartmentID            string
	OriginatingDepartmentID *string
	ToDepartmentID          *string
	TransferredFromID       *string
	TransferNotes           string

	Status TicketStatus

	CreatedBy  string
	AssignedTo *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ClosedAt   *time.Time

	SLADueDate  *time.Time
	SLABreached bool

	MemoRequired bool
	MemoKey      *string
	IsFinal      bool
}

// Overdue reports whether the SLA deadline has passed.
func (t *Ticket) Overdue(now time.Time) bool {
	return t.SLADueDate != nil && now.After(*t.SLADueDate)
}
