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
	"github.com/spec-kit/workflow-service/internal/sla"
	apperrors "github.com/spec-kit/workflow-service/pkg/util/errorutil"
)

// DepartmentResolver supplies an operator's department when ticket
// creation omits one. Callers either pass a department explicitly or
// the creator's own department is used; there is no probing beyond
// this interface.
type DepartmentResolver interface {
	DepartmentFor(ctx context.Context, operatorID string) (*string, error)
}

// TicketService coordinates the ticket lifecycle: creation with SLA
// assignment and numbering, status changes, department transfers,
// discussions and workflow steps.
type TicketService struct {
	store      repository.Store
	resolver   DepartmentResolver
	dispatcher events.Dispatcher
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store      repository.Store
	Resolver   DepartmentResolver
	Dispatcher events.Dispatcher
	Now        func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		store:      deps.Store,
		resolver:   deps.Resolver,
		dispatcher: deps.Dispatcher,
		now:        now,
	}
}

// TicketCreateInput describes ticket creation payload. DepartmentID is
// optional; when omitted the creator's department is resolved instead.
type TicketCreateInput struct {
	Title              string
	Description        string
	Identifier         string
	Priority           domain.TicketPriority
	RequestType        domain.RequestType
	CategoryID         *string
	IssueType          *domain.IssueType
	UrgencyLevel       *domain.TicketPriority
	EstimatedEffortHrs *int
	BusinessImpact     string
	DepartmentID       *string
	CreatedBy          string
	AssignedTo         *string
	MemoRequired       bool
	MemoKey            *string
}

// TicketUpdateInput carries caller-editable detail fields. The SLA due
// date is absent on purpose: it is computed once at creation and edits
// to priority or department never recompute it.
type TicketUpdateInput struct {
	Title              *string
	Description        *string
	Identifier         *string
	Priority           *domain.TicketPriority
	CategoryID         *string
	IssueType          *domain.IssueType
	UrgencyLevel       *domain.TicketPriority
	EstimatedEffortHrs *int
	BusinessImpact     *string
	MemoRequired       *bool
	MemoKey            *string
	IsFinal            *bool
}

// DiscussionInput describes a new thread entry.
type DiscussionInput struct {
	ParentID   *string
	Message    string
	Type       domain.DiscussionType
	CreatedBy  string
	IsInternal bool
}

// WorkflowStepInput describes a new implementation step.
type WorkflowStepInput struct {
	Label      string
	AssignedTo string
	DueDate    *time.Time
	Notes      string
}

// TicketDetail aggregates a ticket with its child records.
type TicketDetail struct {
	Ticket      *domain.Ticket
	History     []domain.TicketStatusHistory
	Transfers   []domain.DepartmentTransfer
	Discussions []domain.TicketDiscussion
}

// Create persists a new ticket inside one transaction covering number
// allocation and the insert. Ticket creation writes no status-history
// row; that asymmetry with change requests mirrors the predecessor
// system and is intentional.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	if input.RequestType == "" {
		return nil, apperrors.NewValidationError("request_type required", nil)
	}
	if input.CreatedBy == "" {
		return nil, apperrors.NewValidationError("created_by required", nil)
	}

	departmentID, err := s.resolveDepartment(ctx, input)
	if err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}

	ticket := &domain.Ticket{
		Title:              strings.TrimSpace(input.Title),
		Description:        strings.TrimSpace(input.Description),
		Identifier:         strings.TrimSpace(input.Identifier),
		Priority:           priority,
		RequestType:        input.RequestType,
		CategoryID:         input.CategoryID,
		IssueType:          input.IssueType,
		UrgencyLevel:       input.UrgencyLevel,
		EstimatedEffortHrs: input.EstimatedEffortHrs,
		BusinessImpact:     input.BusinessImpact,
		DepartmentID:       departmentID,
		Status:             domain.TicketStatusOpen,
		CreatedBy:          input.CreatedBy,
		AssignedTo:         input.AssignedTo,
		MemoRequired:       input.MemoRequired,
		MemoKey:            input.MemoKey,
	}

	err = s.store.WithinTx(ctx, func(r repository.Set) error {
		dept, err := r.Departments.GetByID(ctx, departmentID)
		if err != nil {
			return fmt.Errorf("load department: %w", err)
		}

		now := s.now()
		number, err := sequence.TicketNumber(ctx, r.Counters, now)
		if err != nil {
			return fmt.Errorf("allocate ticket number: %w", err)
		}
		ticket.TicketNumber = number

		// Originating department is recorded exactly once, at first
		// persistence; transfers later move DepartmentID only.
		origin := dept.ID
		ticket.OriginatingDepartmentID = &origin

		due := sla.DueDate(now, dept.SLAHours, ticket.Priority)
		ticket.SLADueDate = &due

		if err := r.Tickets.Create(ctx, ticket); err != nil {
			if repository.IsUniqueViolation(err) {
				return apperrors.NewDuplicateNumber(ticket.TicketNumber)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		EntityID: ticket.ID,
		ActorID:  input.CreatedBy,
		Payload: events.TicketCreatedPayload{
			TicketNumber: ticket.TicketNumber,
			DepartmentID: ticket.DepartmentID,
			Priority:     ticket.Priority,
			RequestType:  ticket.RequestType,
			Title:        ticket.Title,
			SLADueDate:   ticket.SLADueDate,
		},
	})
	return ticket, nil
}

// ChangeStatus moves a ticket to any status. No transition table is
// enforced; downstream screens rely on free transitions, so adding
// restrictions here would be a behavior change, not a hardening.
func (s *TicketService) ChangeStatus(ctx context.Context, ticketID string, newStatus domain.TicketStatus, changedBy, notes string) (*domain.Ticket, error) {
	if changedBy == "" {
		return nil, apperrors.NewValidationError("changed_by required", nil)
	}

	var ticket *domain.Ticket
	var oldStatus domain.TicketStatus
	err := s.store.WithinTx(ctx, func(r repository.Set) error {
		var err error
		ticket, err = r.Tickets.GetByID(ctx, ticketID)
		if err != nil {
			return err
		}
		oldStatus = ticket.Status

		if newStatus == domain.TicketStatusClosed {
			if ticket.ClosedAt == nil {
				now := s.now()
				ticket.ClosedAt = &now
			}
		} else {
			ticket.ClosedAt = nil
		}
		ticket.Status = newStatus

		if err := r.Tickets.Update(ctx, ticket); err != nil {
			return err
		}
		return r.StatusHistory.Create(ctx, &domain.TicketStatusHistory{
			TicketID:  ticket.ID,
			OldStatus: string(oldStatus),
			NewStatus: string(newStatus),
			ChangedBy: changedBy,
			Notes:     notes,
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		EntityID: ticket.ID,
		ActorID:  changedBy,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Notes:     notes,
		},
	})
	return ticket, nil
}

// TransferToDepartment reassigns the owning department. The status
// history entry, the transfer record and the ticket update share one
// transaction, so a crash cannot leave audit rows for a transfer that
// never happened.
func (s *TicketService) TransferToDepartment(ctx context.Context, ticketID, newDepartmentID, notes, transferredBy string) (*domain.Ticket, error) {
	if transferredBy == "" {
		return nil, apperrors.NewValidationError("transferred_by required", nil)
	}

	var ticket *domain.Ticket
	var fromID string
	err := s.store.WithinTx(ctx, func(r repository.Set) error {
		var err error
		ticket, err = r.Tickets.GetByID(ctx, ticketID)
		if err != nil {
			return err
		}
		oldDept, err := r.Departments.GetByID(ctx, ticket.DepartmentID)
		if err != nil {
			return fmt.Errorf("load current department: %w", err)
		}
		newDept, err := r.Departments.GetByID(ctx, newDepartmentID)
		if err != nil {
			return fmt.Errorf("load target department: %w", err)
		}

		if err := r.StatusHistory.Create(ctx, &domain.TicketStatusHistory{
			TicketID:  ticket.ID,
			OldStatus: fmt.Sprintf("In %s", oldDept.Name),
			NewStatus: fmt.Sprintf("Transferred to %s", newDept.Name),
			ChangedBy: transferredBy,
			Notes:     notes,
		}); err != nil {
			return err
		}
		if err := r.Transfers.Create(ctx, &domain.DepartmentTransfer{
			TicketID:         ticket.ID,
			FromDepartmentID: oldDept.ID,
			ToDepartmentID:   newDept.ID,
			TransferredBy:    transferredBy,
			Notes:            notes,
		}); err != nil {
			return err
		}

		fromID = oldDept.ID
		ticket.TransferredFromID = &fromID
		toID := newDept.ID
		ticket.ToDepartmentID = &toID
		ticket.DepartmentID = newDept.ID
		ticket.Status = domain.TicketStatusTransferred
		ticket.ClosedAt = nil
		ticket.TransferNotes = notes

		return r.Tickets.Update(ctx, ticket)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketTransferred,
		EntityID: ticket.ID,
		ActorID:  transferredBy,
		Payload: events.TicketTransferredPayload{
			FromDepartmentID: fromID,
			ToDepartmentID:   ticket.DepartmentID,
			Notes:            notes,
		},
	})
	return ticket, nil
}

// Assign sets or clears the individual assignee. Distinct from a
// transfer: the owning department does not move.
func (s *TicketService) Assign(ctx context.Context, ticketID string, assigneeID *string, actorID string) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := s.store.WithinTx(ctx, func(r repository.Set) error {
		var err error
		ticket, err = r.Tickets.GetByID(ctx, ticketID)
		if err != nil {
			return err
		}
		ticket.AssignedTo = assigneeID
		return r.Tickets.Update(ctx, ticket)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		EntityID: ticket.ID,
		ActorID:  actorID,
		Payload:  events.TicketAssignedPayload{AssigneeID: assigneeID},
	})
	return ticket, nil
}

// UpdateDetails edits caller-facing fields. The number, originating
// department and SLA due date stay untouched whatever is passed.
func (s *TicketService) UpdateDetails(ctx context.Context, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := s.store.WithinTx(ctx, func(r repository.Set) error {
		var err error
		ticket, err = r.Tickets.GetByID(ctx, ticketID)
		if err != nil {
			return err
		}
		applyTicketUpdate(ticket, input)
		return r.Tickets.Update(ctx, ticket)
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// IsOverdue reports whether the ticket has passed its SLA deadline.
func (s *TicketService) IsOverdue(ticket *domain.Ticket) bool {
	return sla.Overdue(s.now(), ticket.SLADueDate)
}

// Get returns the ticket with history (newest first), transfers and
// discussions (oldest first).
func (s *TicketService) Get(ctx context.Context, ticketID string, includeInternal bool) (*TicketDetail, error) {
	r := s.store.Repos()
	ticket, err := r.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	history, err := r.StatusHistory.ListByTicket(ctx, ticket.ID, false)
	if err != nil {
		return nil, err
	}
	transfers, err := r.Transfers.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	discussions, err := r.Discussions.ListByTicket(ctx, ticket.ID, includeInternal)
	if err != nil {
		return nil, err
	}
	return &TicketDetail{
		Ticket:      ticket,
		History:     history,
		Transfers:   transfers,
		Discussions: discussions,
	}, nil
}

// List returns tickets matching the filter.
func (s *TicketService) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	return s.store.Repos().Tickets.ListWithFilter(ctx, filter)
}

// AddDiscussion appends a thread entry to a ticket.
func (s *TicketService) AddDiscussion(ctx context.Context, ticketID string, input DiscussionInput) (*domain.TicketDiscussion, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, apperrors.NewValidationError("message required", nil)
	}
	if input.CreatedBy == "" {
		return nil, apperrors.NewValidationError("created_by required", nil)
	}
	discType := input.Type
	if discType == "" {
		discType = domain.DiscussionTypeText
	}

	disc := &domain.TicketDiscussion{
		TicketID:   ticketID,
		ParentID:   input.ParentID,
		Message:    strings.TrimSpace(input.Message),
		Type:       discType,
		CreatedBy:  input.CreatedBy,
		IsInternal: input.IsInternal,
	}
	err := s.store.WithinTx(ctx, func(r repository.Set) error {
		if _, err := r.Tickets.GetByID(ctx, ticketID); err != nil {
			return err
		}
		if input.ParentID != nil {
			parent, err := r.Discussions.GetByID(ctx, *input.ParentID)
			if err != nil {
				return fmt.Errorf("load parent discussion: %w", err)
			}
			if parent.TicketID != ticketID {
				return apperrors.NewValidationError("parent discussion belongs to another ticket", nil)
			}
		}
		return r.Discussions.Create(ctx, disc)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketDiscussionAdded,
		EntityID: ticketID,
		ActorID:  input.CreatedBy,
		Payload: events.TicketDiscussionAddedPayload{
			DiscussionID: disc.ID,
			Type:         disc.Type,
			IsInternal:   disc.IsInternal,
			Preview:      preview(disc.Message, 120),
		},
	})
	return disc, nil
}

// EditDiscussion replaces the body of an existing entry. Only the body
// is editable; everything else on the thread is append-only.
func (s *TicketService) EditDiscussion(ctx context.Context, discussionID, message string) error {
	if strings.TrimSpace(message) == "" {
		return apperrors.NewValidationError("message required", nil)
	}
	return s.store.Repos().Discussions.UpdateMessage(ctx, discussionID, strings.TrimSpace(message))
}

// AddWorkflowStep attaches an implementation step to a change-request
// ticket.
func (s *TicketService) AddWorkflowStep(ctx context.Context, ticketID string, input WorkflowStepInput) (*domain.WorkflowStep, error) {
	if strings.TrimSpace(input.Label) == "" {
		return nil, apperrors.NewValidationError("label required", nil)
	}
	if input.AssignedTo == "" {
		return nil, apperrors.NewValidationError("assigned_to required", nil)
	}

	step := &domain.WorkflowStep{
		TicketID:   ticketID,
		Label:      strings.TrimSpace(input.Label),
		AssignedTo: input.AssignedTo,
		Status:     domain.WorkflowStepPending,
		DueDate:    input.DueDate,
		Notes:      input.Notes,
	}
	err := s.store.WithinTx(ctx, func(r repository.Set) error {
		if _, err := r.Tickets.GetByID(ctx, ticketID); err != nil {
			return err
		}
		return r.WorkflowSteps.Create(ctx, step)
	})
	if err != nil {
		return nil, err
	}
	return step, nil
}

// UpdateWorkflowStep changes step status and notes. Entering Completed
// stamps CompletedAt once; revisiting the status keeps the original
// stamp.
func (s *TicketService) UpdateWorkflowStep(ctx context.Context, stepID string, status domain.WorkflowStepStatus, notes string) (*domain.WorkflowStep, error) {
	var step *domain.WorkflowStep
	err := s.store.WithinTx(ctx, func(r repository.Set) error {
		var err error
		step, err = r.WorkflowSteps.GetByID(ctx, stepID)
		if err != nil {
			return err
		}
		step.Status = status
		if status == domain.WorkflowStepCompleted && step.CompletedAt == nil {
			now := s.now()
			step.CompletedAt = &now
		}
		if notes != "" {
			step.Notes = notes
		}
		return r.WorkflowSteps.Update(ctx, step)
	})
	if err != nil {
		return nil, err
	}
	return step, nil
}

// ListWorkflowSteps returns steps for a ticket ordered by due date.
func (s *TicketService) ListWorkflowSteps(ctx context.Context, ticketID string) ([]domain.WorkflowStep, error) {
	return s.store.Repos().WorkflowSteps.ListByTicket(ctx, ticketID)
}

func (s *TicketService) resolveDepartment(ctx context.Context, input TicketCreateInput) (string, error) {
	if input.DepartmentID != nil && *input.DepartmentID != "" {
		return *input.DepartmentID, nil
	}
	if s.resolver != nil {
		deptID, err := s.resolver.DepartmentFor(ctx, input.CreatedBy)
		if err != nil {
			return "", err
		}
		if deptID != nil && *deptID != "" {
			return *deptID, nil
		}
	}
	return "", apperrors.NewUnresolvedDepartment(input.CreatedBy)
}

func applyTicketUpdate(ticket *domain.Ticket, input TicketUpdateInput) {
	if input.Title != nil {
		ticket.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		ticket.Description = strings.TrimSpace(*input.Description)
	}
	if input.Identifier != nil {
		ticket.Identifier = strings.TrimSpace(*input.Identifier)
	}
	if input.Priority != nil {
		ticket.Priority = *input.Priority
	}
	if input.CategoryID != nil {
		ticket.CategoryID = input.CategoryID
	}
	if input.IssueType != nil {
		ticket.IssueType = input.IssueType
	}
	if input.UrgencyLevel != nil {
		ticket.UrgencyLevel = input.UrgencyLevel
	}
	if input.EstimatedEffortHrs != nil {
		ticket.EstimatedEffortHrs = input.EstimatedEffortHrs
	}
	if input.BusinessImpact != nil {
		ticket.BusinessImpact = *input.BusinessImpact
	}
	if input.MemoRequired != nil {
		ticket.MemoRequired = *input.MemoRequired
	}
	if input.MemoKey != nil {
		ticket.MemoKey = input.MemoKey
	}
	if input.IsFinal != nil {
		ticket.IsFinal = *input.IsFinal
	}
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
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

func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
