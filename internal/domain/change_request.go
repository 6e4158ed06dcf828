package domain

import "time"

// ChangeType follows the ITIL change classification.
type ChangeType string

const (
	ChangeTypeStandard  ChangeType = "STANDARD"
	ChangeTypeNormal    ChangeType = "NORMAL"
	ChangeTypeEmergency ChangeType = "EMERGENCY"
)

// RequestPriority for change requests.
type RequestPriority string

const (
	RequestPriorityLow      RequestPriority = "LOW"
	RequestPriorityMedium   RequestPriority = "MEDIUM"
	RequestPriorityHigh     RequestPriority = "HIGH"
	RequestPriorityCritical RequestPriority = "CRITICAL"
)

// RequestStatus enumerates the ITIL change-request workflow states.
type RequestStatus string

const (
	RequestStatusDraft       RequestStatus = "DRAFT"
	RequestStatusSubmitted   RequestStatus = "SUBMITTED"
	RequestStatusUnderReview RequestStatus = "UNDER_REVIEW"
	RequestStatusApproved    RequestStatus = "APPROVED"
	RequestStatusRejected    RequestStatus = "REJECTED"
	RequestStatusInProgress  RequestStatus = "IN_PROGRESS"
	RequestStatusPendingInfo RequestStatus = "PENDING_INFO"
	RequestStatusOnHold      RequestStatus = "ON_HOLD"
	RequestStatusCompleted   RequestStatus = "COMPLETED"
	RequestStatusClosed      RequestStatus = "CLOSED"
	RequestStatusCancelled   RequestStatus = "CANCELLED"
)

// ImpactLevel per ITIL impact assessment.
type ImpactLevel string

const (
	ImpactLow      ImpactLevel = "LOW"
	ImpactMedium   ImpactLevel = "MEDIUM"
	ImpactHigh     ImpactLevel = "HIGH"
	ImpactCritical ImpactLevel = "CRITICAL"
)

// RiskLevel per ITIL risk assessment.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskVeryHigh RiskLevel = "VERY_HIGH"
)

// ChangeRequest is a structured inter-department change request. It is
// numbered independently of tickets (CR-YYYY-NNNNN, single continuous
// sequence). Milestone timestamps are stamped exactly once, the first
// time the corresponding status is reached.
type ChangeRequest struct {
	ID            string
	RequestNumber string
	Title         string
	Description   string

	FromDepartmentID string
	ToDepartmentID   string

	ChangeType ChangeType
	// Category is an open set of business categories (underwriting
	// issue, claim processing issue, network issue, ...), kept free-form.
	Category string
	Priority RequestPriority

	BusinessJustification string
	ImpactAssessment      ImpactLevel
	RiskLevel             RiskLevel
	AffectedSystems       string
	RollbackPlan          string

	ReferenceNumber string
	CurrentValue    string
	ProposedValue   string

	DataPrivacyConfirmed      bool
	RegulatoryComplianceCheck bool

	Status RequestStatus

	RequestedBy string
	AssignedTo  *string
	ReviewedBy  *string
	ApprovedBy  *string
	CompletedBy *string

	CreatedAt   time.Time
	SubmittedAt *time.Time
	ReviewedAt  *time.Time
	ApprovedAt  *time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	ClosedAt    *time.Time

	ExpectedCompletionDate *time.Time

	ResponseNotes     string
	ResolutionDetails string
	ClosureNotes      string

	AttachmentKey *string
	UpdatedAt     time.Time
}
