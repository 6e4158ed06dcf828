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

// ChangeRequestsHandler manages change-request endpoints.
type ChangeRequestsHandler struct {
	service *service.ChangeRequestService
	metrics *observability.Metrics
}

// NewChangeRequestsHandler constructs handler.
func NewChangeRequestsHandler(requestService *service.ChangeRequestService, metrics *observability.Metrics) *ChangeRequestsHandler {
	return &ChangeRequestsHandler{service: requestService, metrics: metrics}
}

// CreateRequest POST /change-requests.
func (h *ChangeRequestsHandler) CreateRequest(c *fiber.Ctx) error {
	operator, ok := identity.FromContext(c)
	if !ok {
		return apperrors.NewValidationError("operator required", nil)
	}
	var req dto.CreateChangeRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	cr, err := h.service.Create(c.UserContext(), service.ChangeRequestCreateInput{
		Title:                     req.Title,
		Description:               req.Description,
		FromDepartmentID:          req.FromDepartmentID,
		ToDepartmentID:            req.ToDepartmentID,
		ChangeType:                req.ChangeType,
		Category:                  req.Category,
		Priority:                  req.Priority,
		BusinessJustification:     req.BusinessJustification,
		ImpactAssessment:          req.ImpactAssessment,
		RiskLevel:                 req.RiskLevel,
		AffectedSystems:           req.AffectedSystems,
		RollbackPlan:              req.RollbackPlan,
		ReferenceNumber:           req.ReferenceNumber,
		CurrentValue:              req.CurrentValue,
		ProposedValue:             req.ProposedValue,
		DataPrivacyConfirmed:      req.DataPrivacyConfirmed,
		RegulatoryComplianceCheck: req.RegulatoryComplianceCheck,
		RequestedBy:               operator.ID,
		ExpectedCompletionDate:    req.ExpectedCompletionDate,
		AttachmentKey:             req.AttachmentKey,
	})
	if err != nil {
		return err
	}
	h.metrics.RecordRequestCreated(string(cr.ChangeType))
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": requestSummary(cr)})
}

// ListRequests GET /change-requests.
func (h *ChangeRequestsHandler) ListRequests(c *fiber.Ctx) error {
	filter := parseRequestQuery(c)
	requests, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.ChangeRequestSummary, 0, len(requests))
	for i := range requests {
		items = append(items, requestSummary(&requests[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetRequest GET /change-requests/:id. Numbers work too: CR-2025-00042
// resolves through the number lookup.
func (h *ChangeRequestsHandler) GetRequest(c *fiber.Ctx) error {
	id := c.Params("id")
	var detail *service.ChangeRequestDetail
	var err error
	if len(id) > 3 && id[:3] == "CR-" {
		detail, err = h.service.GetByNumber(c.UserContext(), id, true)
	} else {
		detail, err = h.service.Get(c.UserContext(), id, true)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestDetail(detail)})
}

// UpdateRequest PATCH /change-requests/:id.
func (h *ChangeRequestsHandler) UpdateRequest(c *fiber.Ctx) error {
	operator, ok := identity.FromContext(c)
	if !ok {
		return apperrors.NewValidationError("operator required", nil)
	}
	var req dto.UpdateChangeRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	cr, err := h.service.Update(c.UserContext(), c.Params("id"), service.ChangeRequestUpdateInput{
		Title:                  req.Title,
		Description:            req.Description,
		Category:               req.Category,
		Priority:               req.Priority,
		BusinessJustification:  req.BusinessJustification,
		ImpactAssessment:       req.ImpactAssessment,
		RiskLevel:              req.RiskLevel,
		AffectedSystems:        req.AffectedSystems,
		RollbackPlan:           req.RollbackPlan,
		ReferenceNumber:        req.ReferenceNumber,
		CurrentValue:           req.CurrentValue,
		ProposedValue:          req.ProposedValue,
		ExpectedCompletionDate: req.ExpectedCompletionDate,
		ResponseNotes:          req.ResponseNotes,
	}, operator.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestSummary(cr)})
}

// Action POST /change-requests/:id/actions/:action. One endpoint per
// the workflow verb set keeps routing flat.
func (h *ChangeRequestsHandler) Action(c *fiber.Ctx) error {
	operator, ok := identity.FromContext(c)
	if !ok {
		return apperrors.NewValidationError("operator required", nil)
	}
	var req dto.RequestActionRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	id := c.Params("id")
	action := c.Params("action")
	var cr *domain.ChangeRequest
	var err error
	switch action {
	case "submit":
		cr, err = h.service.Submit(c.UserContext(), id, operator.ID)
	case "start-review":
		cr, err = h.service.StartReview(c.UserContext(), id, operator.ID)
	case "approve":
		cr, err = h.service.Approve(c.UserContext(), id, operator.ID, req.Notes)
	case "reject":
		cr, err = h.service.Reject(c.UserContext(), id, operator.ID, req.Notes)
	case "start-work":
		cr, err = h.service.StartWork(c.UserContext(), id, operator.ID)
	case "complete":
		cr, err = h.service.Complete(c.UserContext(), id, operator.ID, req.Notes)
	case "close":
		cr, err = h.service.Close(c.UserContext(), id, operator.ID, req.Notes)
	case "hold":
		cr, err = h.service.PutOnHold(c.UserContext(), id, operator.ID, req.Notes)
	case "reopen":
		cr, err = h.service.Reopen(c.UserContext(), id, operator.ID, req.Notes)
	case "cancel":
		cr, err = h.service.Cancel(c.UserContext(), id, operator.ID, req.Notes)
	default:
		return apperrors.NewValidationError("unknown action", map[string]any{"action": action})
	}
	if err != nil {
		return err
	}
	h.metrics.RecordRequestAction(action)
	return c.JSON(fiber.Map{"data": requestSummary(cr)})
}

// Assign POST /change-requests/:id/assign.
func (h *ChangeRequestsHandler) Assign(c *fiber.Ctx) error {
	operator, ok := identity.FromContext(c)
	if !ok {
		return apperrors.NewValidationError("operator required", nil)
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	cr, err := h.service.Assign(c.UserContext(), c.Params("id"), req.AssignedTo, operator.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestSummary(cr)})
}

// AddComment POST /change-requests/:id/comments.
func (h *ChangeRequestsHandler) AddComment(c *fiber.Ctx) error {
	operator, ok := identity.FromContext(c)
	if !ok {
		return apperrors.NewValidationError("operator required", nil)
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.service.AddComment(c.UserContext(), c.Params("id"), service.CommentInput{
		OperatorID: operator.ID,
		Comment:    req.Comment,
		IsInternal: req.IsInternal,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// AddAttachment POST /change-requests/:id/attachments.
func (h *ChangeRequestsHandler) AddAttachment(c *fiber.Ctx) error {
	operator, ok := identity.FromContext(c)
	if !ok {
		return apperrors.NewValidationError("operator required", nil)
	}
	var req dto.CreateAttachmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	att, err := h.service.AddAttachment(c.UserContext(), c.Params("id"), service.AttachmentInput{
		StorageKey:  req.StorageKey,
		Description: req.Description,
		UploadedBy:  operator.ID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": attachmentResponse(att)})
}

func requestSummary(cr *domain.ChangeRequest) dto.ChangeRequestSummary {
	return dto.ChangeRequestSummary{
		ID:               cr.ID,
		RequestNumber:    cr.RequestNumber,
		Title:            cr.Title,
		FromDepartmentID: cr.FromDepartmentID,
		ToDepartmentID:   cr.ToDepartmentID,
		ChangeType:       cr.ChangeType,
		Priority:         cr.Priority,
		Status:           cr.Status,
		RequestedBy:      cr.RequestedBy,
		AssignedTo:       cr.AssignedTo,
		CreatedAt:        cr.CreatedAt,
		UpdatedAt:        cr.UpdatedAt,
	}
}

func requestDetail(detail *service.ChangeRequestDetail) dto.ChangeRequestDetailResponse {
	cr := detail.Request
	resp := dto.ChangeRequestDetailResponse{
		ChangeRequestSummary:      requestSummary(cr),
		Description:               cr.Description,
		Category:                  cr.Category,
		BusinessJustification:     cr.BusinessJustification,
		ImpactAssessment:          cr.ImpactAssessment,
		RiskLevel:                 cr.RiskLevel,
		AffectedSystems:           cr.AffectedSystems,
		RollbackPlan:              cr.RollbackPlan,
		ReferenceNumber:           cr.ReferenceNumber,
		CurrentValue:              cr.CurrentValue,
		ProposedValue:             cr.ProposedValue,
		DataPrivacyConfirmed:      cr.DataPrivacyConfirmed,
		RegulatoryComplianceCheck: cr.RegulatoryComplianceCheck,
		ReviewedBy:                cr.ReviewedBy,
		ApprovedBy:                cr.ApprovedBy,
		CompletedBy:               cr.CompletedBy,
		SubmittedAt:               cr.SubmittedAt,
		ReviewedAt:                cr.ReviewedAt,
		ApprovedAt:                cr.ApprovedAt,
		StartedAt:                 cr.StartedAt,
		CompletedAt:               cr.CompletedAt,
		ClosedAt:                  cr.ClosedAt,
		ExpectedCompletionDate:    cr.ExpectedCompletionDate,
		ResponseNotes:             cr.ResponseNotes,
		ResolutionDetails:         cr.ResolutionDetails,
		ClosureNotes:              cr.ClosureNotes,
		History:                   make([]dto.RequestHistoryResponse, 0, len(detail.History)),
		Comments:                  make([]dto.RequestCommentResponse, 0, len(detail.Comments)),
		Attachments:               make([]dto.RequestAttachmentResponse, 0, len(detail.Attachments)),
	}
	for _, entry := range detail.History {
		resp.History = append(resp.History, dto.RequestHistoryResponse{
			ID:           entry.ID,
			Action:       entry.Action,
			PerformedBy:  entry.PerformedBy,
			Timestamp:    entry.Timestamp,
			FieldChanged: entry.FieldChanged,
			OldValue:     entry.OldValue,
			NewValue:     entry.NewValue,
			Notes:        entry.Notes,
		})
	}
	for i := range detail.Comments {
		resp.Comments = append(resp.Comments, commentResponse(&detail.Comments[i]))
	}
	for i := range detail.Attachments {
		resp.Attachments = append(resp.Attachments, attachmentResponse(&detail.Attachments[i]))
	}
	return resp
}

func commentResponse(comment *domain.RequestComment) dto.RequestCommentResponse {
	return dto.RequestCommentResponse{
		ID:         comment.ID,
		OperatorID: comment.OperatorID,
		Comment:    comment.Comment,
		IsInternal: comment.IsInternal,
		CreatedAt:  comment.CreatedAt,
	}
}

func attachmentResponse(att *domain.RequestAttachment) dto.RequestAttachmentResponse {
	return dto.RequestAttachmentResponse{
		ID:          att.ID,
		StorageKey:  att.StorageKey,
		Description: att.Description,
		UploadedBy:  att.UploadedBy,
		UploadedAt:  att.UploadedAt,
	}
}

func parseRequestQuery(c *fiber.Ctx) repository.RequestFilter {
	filter := repository.RequestFilter{
		Limit:  50,
		Offset: 0,
	}
	if v := c.Query("from_department_id"); v != "" {
		filter.FromDepartmentID = &v
	}
	if v := c.Query("to_department_id"); v != "" {
		filter.ToDepartmentID = &v
	}
	if v := c.Query("requested_by"); v != "" {
		filter.RequestedBy = &v
	}
	if v := c.Query("assigned_to"); v != "" {
		filter.AssignedTo = &v
	}
	if v := c.Query("status"); v != "" {
		filter.Statuses = []domain.RequestStatus{domain.RequestStatus(v)}
	}
	if v := c.Query("priority"); v != "" {
		filter.Priorities = []domain.RequestPriority{domain.RequestPriority(v)}
	}
	if v := c.Query("change_type"); v != "" {
		ct := domain.ChangeType(v)
		filter.ChangeType = &ct
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
