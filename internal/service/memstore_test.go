package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/workflow-service/internal/domain"
	"github.com/spec-kit/workflow-service/internal/repository"
	"github.com/spec-kit/workflow-service/internal/sequence"
	apperrors "github.com/spec-kit/workflow-service/pkg/util/errorutil"
)

// memStore is an in-memory repository.Store for service tests. It is
// not transactional: WithinTx runs the callback against the same state,
// which is enough to exercise service semantics.
type memStore struct {
	mu sync.Mutex

	departments map[string]domain.Department
	categories  map[string]domain.Category
	operators   map[string]domain.Operator
	tickets     map[string]domain.Ticket
	discussions map[string]domain.TicketDiscussion
	history     []domain.TicketStatusHistory
	transfers   []domain.DepartmentTransfer
	steps       map[string]domain.WorkflowStep
	requests    map[string]domain.ChangeRequest
	reqHistory  []domain.RequestHistory
	comments    []domain.RequestComment
	attachments []domain.RequestAttachment
	counters    *sequence.MemoryStore

	clock func() time.Time
	seq   int
}

func newMemStore() *memStore {
	return &memStore{
		departments: map[string]domain.Department{},
		categories:  map[string]domain.Category{},
		operators:   map[string]domain.Operator{},
		tickets:     map[string]domain.Ticket{},
		discussions: map[string]domain.TicketDiscussion{},
		steps:       map[string]domain.WorkflowStep{},
		requests:    map[string]domain.ChangeRequest{},
		counters:    sequence.NewMemoryStore(),
		clock:       time.Now,
	}
}

func (m *memStore) Repos() repository.Set {
	return repository.Set{
		Departments:        (*memDepartments)(m),
		Categories:         (*memCategories)(m),
		Operators:          (*memOperators)(m),
		Tickets:            (*memTickets)(m),
		Discussions:        (*memDiscussions)(m),
		StatusHistory:      (*memStatusHistory)(m),
		Transfers:          (*memTransfers)(m),
		WorkflowSteps:      (*memWorkflowSteps)(m),
		Requests:           (*memRequests)(m),
		RequestHistory:     (*memRequestHistory)(m),
		RequestComments:    (*memRequestComments)(m),
		RequestAttachments: (*memRequestAttachments)(m),
		Counters:           m.counters,
	}
}

func (m *memStore) WithinTx(ctx context.Context, fn func(s repository.Set) error) error {
	return fn(m.Repos())
}

func (m *memStore) nextID() string {
	return uuid.NewString()
}

func (m *memStore) addDepartment(name string, slaHours int) *domain.Department {
	m.mu.Lock()
	defer m.mu.Unlock()
	dept := domain.Department{
		ID:       m.nextID(),
		Name:     name,
		SLAHours: slaHours,
	}
	m.departments[dept.ID] = dept
	return &dept
}

func (m *memStore) addOperator(name string, departmentID *string) *domain.Operator {
	m.mu.Lock()
	defer m.mu.Unlock()
	op := domain.Operator{
		ID:           m.nextID(),
		Name:         name,
		Email:        strings.ToLower(name) + "@example.com",
		DepartmentID: departmentID,
		Active:       true,
	}
	m.operators[op.ID] = op
	return &op
}

type memDepartments memStore

func (m *memDepartments) Create(ctx context.Context, dept *domain.Department) error {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	dept.ID = s.nextID()
	dept.CreatedAt = s.clock()
	dept.UpdatedAt = dept.CreatedAt
	s.departments[dept.ID] = *dept
	return nil
}

func (m *memDepartments) Update(ctx context.Context, dept *domain.Department) error {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.departments[dept.ID]; !ok {
		return apperrors.NewNotFound("department", nil)
	}
	dept.UpdatedAt = s.clock()
	s.departments[dept.ID] = *dept
	return nil
}

func (m *memDepartments) Delete(ctx context.Context, id string) error {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.departments[id]; !ok {
		return apperrors.NewNotFound("department", nil)
	}
	delete(s.departments, id)
	return nil
}

func (m *memDepartments) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	dept, ok := s.departments[id]
	if !ok {
		return nil, apperrors.NewNotFound("department", nil)
	}
	return &dept, nil
}

func (m *memDepartments) List(ctx context.Context) ([]domain.Department, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Department, 0, len(s.departments))
	for _, dept := range s.departments {
		out = append(out, dept)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memDepartments) ReferenceCount(ctx context.Context, id string) (int64, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, t := range s.tickets {
		if t.DepartmentID == id {
			count++
			continue
		}
		if t.OriginatingDepartmentID != nil && *t.OriginatingDepartmentID == id {
			count++
			continue
		}
		if t.ToDepartmentID != nil && *t.ToDepartmentID == id {
			count++
			continue
		}
		if t.TransferredFromID != nil && *t.TransferredFromID == id {
			count++
		}
	}
	for _, cr := range s.requests {
		if cr.FromDepartmentID == id || cr.ToDepartmentID == id {
			count++
		}
	}
	return count, nil
}

type memCategories memStore

func (m *memCategories) Create(ctx context.Context, cat *domain.Category) error {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	cat.ID = s.nextID()
	cat.CreatedAt = s.clock()
	cat.UpdatedAt = cat.CreatedAt
	s.categories[cat.ID] = *cat
	return nil
}

func (m *memCategories) Update(ctx context.Context, cat *domain.Category) error {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[cat.ID]; !ok {
		return apperrors.NewNotFound("category", nil)
	}
	s.categories[cat.ID] = *cat
	return nil
}

func (m *memCategories) Delete(ctx context.Context, id string) error {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.categories, id)
	return nil
}

func (m *memCategories) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	cat, ok := s.categories[id]
	if !ok {
		return nil, apperrors.NewNotFound("category", nil)
	}
	return &cat, nil
}

func (m *memCategories) ListActive(ctx context.Context) ([]domain.Category, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Category
	for _, cat := range s.categories {
		if cat.IsActive {
			out = append(out, cat)
		}
	}
	return out, nil
}

func (m *memCategories) ReferenceCount(ctx context.Context, id string) (int64, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, t := range s.tickets {
		if t.CategoryID != nil && *t.CategoryID == id {
			count++
		}
	}
	return count, nil
}

type memOperators memStore

func (m *memOperators) Create(ctx context.Context, op *domain.Operator) error {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	op.ID = s.nextID()
	op.CreatedAt = s.clock()
	op.UpdatedAt = op.CreatedAt
	s.operators[op.ID] = *op
	return nil
}

func (m *memOperators) Update(ctx context.Context, op *domain.Operator) error {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.operators[op.ID]; !ok {
		return apperrors.NewNotFound("operator", nil)
	}
	s.operators[op.ID] = *op
	return nil
}

func (m *memOperators) GetByID(ctx context.Context, id string) (*domain.Operator, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.operators[id]
	if !ok {
		return nil, apperrors.NewNotFound("operator", nil)
	}
	return &op, nil
}

func (m *memOperators) DepartmentFor(ctx context.Context, operatorID string) (*string, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.operators[operatorID]
	if !ok {
		return nil, apperrors.NewNotFound("operator", nil)
	}
	return op.DepartmentID, nil
}

type memTickets memStore

func (m *memTickets) Create(ctx context.Context, ticket *domain.Ticket) error {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.tickets {
		if existing.TicketNumber == ticket.TicketNumber {
			return apperrors.NewDuplicateNumber(ticket.TicketNumber)
		}
	}
	ticket.ID = s.nextID()
	ticket.CreatedAt = s.clock()
	ticket.UpdatedAt = ticket.CreatedAt
	s.tickets[ticket.ID] = *ticket
	return nil
}

// Update mirrors the SQL repository: ticket_number, originating
// department, SLA due date and created_by are write-once and keep their
// stored values.
func (m *memTickets) Update(ctx context.Context, ticket *domain.Ticket) error {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tickets[ticket.ID]
	if !ok {
		return apperrors.NewNotFound("ticket", nil)
	}
	ticket.TicketNumber = stored.TicketNumber
	ticket.OriginatingDepartmentID = stored.OriginatingDepartmentID
	ticket.SLADueDate = stored.SLADueDate
	ticket.CreatedBy = stored.CreatedBy
	ticket.UpdatedAt = s.clock()
	s.tickets[ticket.ID] = *ticket
	return nil
}

func (m *memTickets) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return nil, apperrors.NewNotFound("ticket", nil)
	}
	return &ticket, nil
}

func (m *memTickets) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ticket := range s.tickets {
		if ticket.TicketNumber == number {
			t := ticket
			return &t, nil
		}
	}
	return nil, apperrors.NewNotFound("ticket", nil)
}

func (m *memTickets) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Ticket
	for _, ticket := range s.tickets {
		if filter.DepartmentID != nil && ticket.DepartmentID != *filter.DepartmentID {
			continue
		}
		if filter.CreatedBy != nil && ticket.CreatedBy != *filter.CreatedBy {
			continue
		}
		if len(filter.Statuses) > 0 && !containsTicketStatus(filter.Statuses, ticket.Status) {
			continue
		}
		out = append(out, ticket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func containsTicketStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type memDiscussions memStore

func (m *memDiscussions) Create(ctx context.Context, disc *domain.TicketDiscussion) error {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	disc.ID = s.nextID()
	s.seq++
	disc.CreatedAt = s.clock().Add(time.Duration(s.seq) * time.Microsecond)
	disc.UpdatedAt = disc.CreatedAt
	s.discussions[disc.ID] = *disc
	return nil
}

func (m *memDiscussions) UpdateMessage(ctx context.Context, id, message string) error {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	disc, ok := s.discussions[id]
	if !ok {
		return apperrors.NewNotFound("discussion", nil)
	}
	disc.Message = message
	disc.UpdatedAt = s.clock()
	s.discussions[id] = disc
	return nil
}

func (m *memDiscussions) GetByID(ctx context.Context, id string) (*domain.TicketDiscussion, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	disc, ok := s.discussions[id]
	if !ok {
		return nil, apperrors.NewNotFound("discussion", nil)
	}
	return &disc, nil
}

func (m *memDiscussions) ListByTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.TicketDiscussion, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.TicketDiscussion
	for _, disc := range s.discussions {
		if disc.TicketID != ticketID {
			continue
		}
		if disc.IsInternal && !includeInternal {
			continue
		}
		out = append(out, disc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memStatusHistory memStore

func (m *memStatusHistory) Create(ctx context.Context, entry *domain.TicketStatusHistory) error {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = s.nextID()
	s.seq++
	entry.ChangedAt = s.clock().Add(time.Duration(s.seq) * time.Microsecond)
	s.history = append(s.history, *entry)
	return nil
}

func (m *memStatusHistory) ListByTicket(ctx context.Context, ticketID string, ascending bool) ([]domain.TicketStatusHistory, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.TicketStatusHistory
	for _, entry := range s.history {
		if entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if ascending {
			return out[i].ChangedAt.Before(out[j].ChangedAt)
		}
		return out[i].ChangedAt.After(out[j].ChangedAt)
	})
	return out, nil
}

type memTransfers memStore

func (m *memTransfers) Create(ctx context.Context, transfer *domain.DepartmentTransfer) error {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	transfer.ID = s.nextID()
	transfer.TransferredAt = s.clock()
	s.transfers = append(s.transfers, *transfer)
	return nil
}

func (m *memTransfers) ListByTicket(ctx context.Context, ticketID string) ([]domain.DepartmentTransfer, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.DepartmentTransfer
	for _, transfer := range s.transfers {
		if transfer.TicketID == ticketID {
			out = append(out, transfer)
		}
	}
	return out, nil
}

type memWorkflowSteps memStore

func (m *memWorkflowSteps) Create(ctx context.Context, step *domain.WorkflowStep) error {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	step.ID = s.nextID()
	step.CreatedAt = s.clock()
	step.UpdatedAt = step.CreatedAt
	s.steps[step.ID] = *step
	return nil
}

func (m *memWorkflowSteps) Update(ctx context.Context, step *domain.WorkflowStep) error {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.steps[step.ID]; !ok {
		return apperrors.NewNotFound("workflow step", nil)
	}
	step.UpdatedAt = s.clock()
	s.steps[step.ID] = *step
	return nil
}

func (m *memWorkflowSteps) GetByID(ctx context.Context, id string) (*domain.WorkflowStep, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	step, ok := s.steps[id]
	if !ok {
		return nil, apperrors.NewNotFound("workflow step", nil)
	}
	return &step, nil
}

func (m *memWorkflowSteps) ListByTicket(ctx context.Context, ticketID string) ([]domain.WorkflowStep, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.WorkflowStep
	for _, step := range s.steps {
		if step.TicketID == ticketID {
			out = append(out, step)
		}
	}
	return out, nil
}

type memRequests memStore

func (m *memRequests) Create(ctx context.Context, cr *domain.ChangeRequest) error {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.requests {
		if existing.RequestNumber == cr.RequestNumber {
			return apperrors.NewDuplicateNumber(cr.RequestNumber)
		}
	}
	cr.ID = s.nextID()
	cr.CreatedAt = s.clock()
	cr.UpdatedAt = cr.CreatedAt
	s.requests[cr.ID] = *cr
	return nil
}

func (m *memRequests) Update(ctx context.Context, cr *domain.ChangeRequest) error {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.requests[cr.ID]
	if !ok {
		return apperrors.NewNotFound("change request", nil)
	}
	cr.RequestNumber = stored.RequestNumber
	cr.RequestedBy = stored.RequestedBy
	cr.UpdatedAt = s.clock()
	s.requests[cr.ID] = *cr
	return nil
}

func (m *memRequests) GetByID(ctx context.Context, id string) (*domain.ChangeRequest, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	cr, ok := s.requests[id]
	if !ok {
		return nil, apperrors.NewNotFound("change request", nil)
	}
	return &cr, nil
}

func (m *memRequests) GetByNumber(ctx context.Context, number string) (*domain.ChangeRequest, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cr := range s.requests {
		if cr.RequestNumber == number {
			out := cr
			return &out, nil
		}
	}
	return nil, apperrors.NewNotFound("change request", nil)
}

func (m *memRequests) ListWithFilter(ctx context.Context, filter repository.RequestFilter) ([]domain.ChangeRequest, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ChangeRequest
	for _, cr := range s.requests {
		if filter.FromDepartmentID != nil && cr.FromDepartmentID != *filter.FromDepartmentID {
			continue
		}
		if filter.ToDepartmentID != nil && cr.ToDepartmentID != *filter.ToDepartmentID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsRequestStatus(filter.Statuses, cr.Status) {
			continue
		}
		out = append(out, cr)
	}
	return out, nil
}

func containsRequestStatus(statuses []domain.RequestStatus, status domain.RequestStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type memRequestHistory memStore

func (m *memRequestHistory) Create(ctx context.Context, entry *domain.RequestHistory) error {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = s.nextID()
	s.seq++
	entry.Timestamp = s.clock().Add(time.Duration(s.seq) * time.Microsecond)
	s.reqHistory = append(s.reqHistory, *entry)
	return nil
}

func (m *memRequestHistory) ListByRequest(ctx context.Context, requestID string, ascending bool) ([]domain.RequestHistory, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.RequestHistory
	for _, entry := range s.reqHistory {
		if entry.RequestID == requestID {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if ascending {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

type memRequestComments memStore

func (m *memRequestComments) Create(ctx context.Context, comment *domain.RequestComment) error {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	comment.ID = s.nextID()
	comment.CreatedAt = s.clock()
	s.comments = append(s.comments, *comment)
	return nil
}

func (m *memRequestComments) ListByRequest(ctx context.Context, requestID string, includeInternal bool) ([]domain.RequestComment, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.RequestComment
	for _, comment := range s.comments {
		if comment.RequestID != requestID {
			continue
		}
		if comment.IsInternal && !includeInternal {
			continue
		}
		out = append(out, comment)
	}
	return out, nil
}

type memRequestAttachments memStore

func (m *memRequestAttachments) Create(ctx context.Context, att *domain.RequestAttachment) error {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	att.ID = s.nextID()
	att.UploadedAt = s.clock()
	s.attachments = append(s.attachments, *att)
	return nil
}

func (m *memRequestAttachments) ListByRequest(ctx context.Context, requestID string) ([]domain.RequestAttachment, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.RequestAttachment
	for _, att := range s.attachments {
		if att.RequestID == requestID {
			out = append(out, att)
		}
	}
	return out, nil
}
