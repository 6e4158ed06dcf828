package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workflow-service/internal/api/dto"
	"github.com/spec-kit/workflow-service/internal/api/identity"
	"github.com/spec-kit/workflow-service/internal/domain"
	"github.com/spec-kit/workflow-service/internal/observability"
	"github.com/spec-kit/workflow-service/internal/repository"
	"github.com/spec-kit/workflow-service/internal/service"
	apperrors "github.com/spec-kit/workflow-service/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
	metrics *observability.Metrics
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, metrics *observability.Metrics) *TicketsHandler {
	return &TicketsHandler{service: ticketService, metrics: metrics}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	operator, ok := identity.FromContext(c)
	if !ok {
		return apperrors.NewValidationError("operator required", nil)
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.Create(c.UserContext(), service.TicketCreateInput{
		Title:              req.Title,
		Description:        req.Description,
		Identifier:         req.Identifier,
		Priority:           req.Priority,
		RequestType:        req.RequestType,
		CategoryID:         req.CategoryID,
		IssueType:          req.IssueType,
		UrgencyLevel:       req.UrgencyLevel,
		EstimatedEffortHrs: req.EstimatedEffortHrs,
		BusinessImpact:     req.BusinessImpact,
		DepartmentID:       req.DepartmentID,
		CreatedBy:          operator.ID,
		AssignedTo:         req.AssignedTo,
		MemoRequired:       req.MemoRequired,
		MemoKey:            req.MemoKey,
	})
	if err != nil {
		return err
	}
	h.metrics.RecordTicketCreated(string(ticket.Priority))
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": h.ticketSummary(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := parseTicketQuery(c)
	tickets, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, h.ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	detail, err := h.service.Get(c.UserContext(), c.Params("id"), true)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.ticketDetail(detail)})
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateDetails(c.UserContext(), c.Params("id"), service.TicketUpdateInput{
		Title:              req.Title,
		Description:        req.Description,
		Identifier:         req.Identifier,
		Priority:           req.Priority,
		CategoryID:         req.CategoryID,
		IssueType:          req.IssueType,
		UrgencyLevel:       req.UrgencyLevel,
		EstimatedEffortHrs: req.EstimatedEffortHrs,
		BusinessImpact:     req.BusinessImpact,
		MemoRequired:       req.MemoRequired,
		MemoKey:            req.MemoKey,
		IsFinal:            req.IsFinal,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.ticketSummary(ticket)})
}

// ChangeStatus POST /tickets/:id/status.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	operator, ok := identity.FromContext(c)
	if !ok {
		return apperrors.NewValidationError("operator required", nil)
	}
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}
	ticket, err := h.service.ChangeStatus(c.UserContext(), c.Params("id"), req.Status, operator.ID, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.ticketSummary(ticket)})
}

// Transfer POST /tickets/:id/transfer.
func (h *TicketsHandler) Transfer(c *fiber.Ctx) error {
	operator, ok := identity.FromContext(c)
	if !ok {
		return apperrors.NewValidationError("operator required", nil)
	}
	var req dto.TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.DepartmentID == "" {
		return apperrors.NewValidationError("department_id required", nil)
	}
	ticket, err := h.service.TransferToDepartment(c.UserContext(), c.Params("id"), req.DepartmentID, req.Notes, operator.ID)
	if err != nil {
		return err
	}
	h.metrics.RecordTicketTransfer()
	return c.JSON(fiber.Map{"data": h.ticketSummary(ticket)})
}

// Assign POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	operator, ok := identity.FromContext(c)
	if !ok {
		return apperrors.NewValidationError("operator required", nil)
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Assign(c.UserContext(), c.Params("id"), req.AssignedTo, operator.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.ticketSummary(ticket)})
}

// AddDiscussion POST /tickets/:id/discussions.
func (h *TicketsHandler) AddDiscussion(c *fiber.Ctx) error {
	operator, ok := identity.FromContext(c)
	if !ok {
		return apperrors.NewValidationError("operator required", nil)
	}
	var req dto.CreateDiscussionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	disc, err := h.service.AddDiscussion(c.UserContext(), c.Params("id"), service.DiscussionInput{
		ParentID:   req.ParentID,
		Message:    req.Message,
		Type:       req.Type,
		CreatedBy:  operator.ID,
		IsInternal: req.IsInternal,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": discussionResponse(disc)})
}

// EditDiscussion PATCH /tickets/:id/discussions/:discussionId.
func (h *TicketsHandler) EditDiscussion(c *fiber.Ctx) error {
	var req dto.EditDiscussionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.EditDiscussion(c.UserContext(), c.Params("discussionId"), req.Message); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// AddWorkflowStep POST /tickets/:id/steps.
func (h *TicketsHandler) AddWorkflowStep(c *fiber.Ctx) error {
	var req dto.CreateWorkflowStepRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	step, err := h.service.AddWorkflowStep(c.UserContext(), c.Params("id"), service.WorkflowStepInput{
		Label:      req.Label,
		AssignedTo: req.AssignedTo,
		DueDate:    req.DueDate,
		Notes:      req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": workflowStepResponse(step)})
}

// UpdateWorkflowStep PATCH /tickets/:id/steps/:stepId.
func (h *TicketsHandler) UpdateWorkflowStep(c *fiber.Ctx) error {
	var req dto.UpdateWorkflowStepRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}
	step, err := h.service.UpdateWorkflowStep(c.UserContext(), c.Params("stepId"), req.Status, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": workflowStepResponse(step)})
}

// ListWorkflowSteps GET /tickets/:id/steps.
func (h *TicketsHandler) ListWorkflowSteps(c *fiber.Ctx) error {
	steps, err := h.service.ListWorkflowSteps(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.WorkflowStepResponse, 0, len(steps))
	for i := range steps {
		items = append(items, workflowStepResponse(&steps[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func (h *TicketsHandler) ticketSummary(t *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:           t.ID,
		TicketNumber: t.TicketNumber,
		Title:        t.Title,
		DepartmentID: t.DepartmentID,
		Status:       t.Status,
		Priority:     t.Priority,
		RequestType:  t.RequestType,
		AssignedTo:   t.AssignedTo,
		SLADueDate:   t.SLADueDate,
		Overdue:      h.service.IsOverdue(t),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func (h *TicketsHandler) ticketDetail(detail *service.TicketDetail) dto.TicketDetailResponse {
	t := detail.Ticket
	resp := dto.TicketDetailResponse{
		TicketSummary:           h.ticketSummary(t),
		Description:             t.Description,
		Identifier:              t.Identifier,
		CategoryID:              t.CategoryID,
		IssueType:               t.IssueType,
		UrgencyLevel:            t.UrgencyLevel,
		EstimatedEffortHrs:      t.EstimatedEffortHrs,
		BusinessImpact:          t.BusinessImpact,
		OriginatingDepartmentID: t.OriginatingDepartmentID,
		TransferredFromID:       t.TransferredFromID,
		TransferNotes:           t.TransferNotes,
		CreatedBy:               t.CreatedBy,
		ClosedAt:                t.ClosedAt,
		MemoRequired:            t.MemoRequired,
		IsFinal:                 t.IsFinal,
		History:                 make([]dto.StatusHistoryResponse, 0, len(detail.History)),
		Transfers:               make([]dto.TransferResponse, 0, len(detail.Transfers)),
		Discussions:             make([]dto.DiscussionResponse, 0, len(detail.Discussions)),
	}
	for _, entry := range detail.History {
		resp.History = append(resp.History, dto.StatusHistoryResponse{
			ID:        entry.ID,
			OldStatus: entry.OldStatus,
			NewStatus: entry.NewStatus,
			ChangedBy: entry.ChangedBy,
			ChangedAt: entry.ChangedAt,
			Notes:     entry.Notes,
		})
	}
	for _, transfer := range detail.Transfers {
		resp.Transfers = append(resp.Transfers, dto.TransferResponse{
			ID:               transfer.ID,
			FromDepartmentID: transfer.FromDepartmentID,
			ToDepartmentID:   transfer.ToDepartmentID,
			TransferredBy:    transfer.TransferredBy,
			TransferredAt:    transfer.TransferredAt,
			Notes:            transfer.Notes,
		})
	}
	for i := range detail.Discussions {
		resp.Discussions = append(resp.Discussions, discussionResponse(&detail.Discussions[i]))
	}
	return resp
}

func discussionResponse(disc *domain.TicketDiscussion) dto.DiscussionResponse {
	return dto.DiscussionResponse{
		ID:         disc.ID,
		ParentID:   disc.ParentID,
		Message:    disc.Message,
		Type:       disc.Type,
		CreatedBy:  disc.CreatedBy,
		CreatedAt:  disc.CreatedAt,
		UpdatedAt:  disc.UpdatedAt,
		IsInternal: disc.IsInternal,
	}
}

func workflowStepResponse(step *domain.WorkflowStep) dto.WorkflowStepResponse {
	return dto.WorkflowStepResponse{
		ID:          step.ID,
		Label:       step.Label,
		AssignedTo:  step.AssignedTo,
		Status:      step.Status,
		DueDate:     step.DueDate,
		CompletedAt: step.CompletedAt,
		Notes:       step.Notes,
	}
}

func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{
		Limit:  50,
		Offset: 0,
	}
	if v := c.Query("department_id"); v != "" {
		filter.DepartmentID = &v
	}
	if v := c.Query("created_by"); v != "" {
		filter.CreatedBy = &v
	}
	if v := c.Query("assigned_to"); v != "" {
		filter.AssignedTo = &v
	}
	if v := c.Query("status"); v != "" {
		filter.Statuses = []domain.TicketStatus{domain.TicketStatus(v)}
	}
	if v := c.Query("priority"); v != "" {
		filter.Priorities = []domain.TicketPriority{domain.TicketPriority(v)}
	}
	if v := c.Query("request_type"); v != "" {
		rt := domain.RequestType(v)
		filter.RequestType = &rt
	}
	if v := c.Query("q"); v != "" {
		filter.SearchTerm = &v
	}
	if v := c.Query("created_from"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			filter.CreatedFrom = &ts
		}
	}
	if v := c.Query("created_to"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			filter.CreatedTo = &ts
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filter.Offset = n
		}
	}
	return filter
}
