package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workflow-service/internal/api/dto"
	"github.com/spec-kit/workflow-service/internal/domain"
	"github.com/spec-kit/workflow-service/internal/service"
	apperrors "github.com/spec-kit/workflow-service/pkg/util/errorutil"
)

// DirectoryHandler manages department, category and operator endpoints.
type DirectoryHandler struct {
	service *service.DirectoryService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(directoryService *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{service: directoryService}
}

// CreateDepartment POST /departments.
func (h *DirectoryHandler) CreateDepartment(c *fiber.Ctx) error {
	var req dto.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dept, err := h.service.CreateDepartment(c.UserContext(), service.DepartmentInput{
		Name:        req.Name,
		IsBranch:    req.IsBranch,
		SLAHours:    req.SLAHours,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": departmentResponse(dept)})
}

// UpdateDepartment PATCH /departments/:id.
func (h *DirectoryHandler) UpdateDepartment(c *fiber.Ctx) error {
	var req dto.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dept, err := h.service.UpdateDepartment(c.UserContext(), c.Params("id"), service.DepartmentInput{
		Name:        req.Name,
		IsBranch:    req.IsBranch,
		SLAHours:    req.SLAHours,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": departmentResponse(dept)})
}

// DeleteDepartment DELETE /departments/:id.
func (h *DirectoryHandler) DeleteDepartment(c *fiber.Ctx) error {
	if err := h.service.DeleteDepartment(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// GetDepartment GET /departments/:id.
func (h *DirectoryHandler) GetDepartment(c *fiber.Ctx) error {
	dept, err := h.service.GetDepartment(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": departmentResponse(dept)})
}

// ListDepartments GET /departments.
func (h *DirectoryHandler) ListDepartments(c *fiber.Ctx) error {
	departments, err := h.service.ListDepartments(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.DepartmentResponse, 0, len(departments))
	for i := range departments {
		items = append(items, departmentResponse(&departments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateCategory POST /categories.
func (h *DirectoryHandler) CreateCategory(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	cat, err := h.service.CreateCategory(c.UserContext(), service.CategoryInput{
		Name:        req.Name,
		IsActive:    req.IsActive,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": categoryResponse(cat)})
}

// UpdateCategory PATCH /categories/:id.
func (h *DirectoryHandler) UpdateCategory(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	cat, err := h.service.UpdateCategory(c.UserContext(), c.Params("id"), service.CategoryInput{
		Name:        req.Name,
		IsActive:    req.IsActive,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": categoryResponse(cat)})
}

// DeleteCategory DELETE /categories/:id.
func (h *DirectoryHandler) DeleteCategory(c *fiber.Ctx) error {
	if err := h.service.DeleteCategory(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListCategories GET /categories.
func (h *DirectoryHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListActiveCategories(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, categoryResponse(&categories[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateOperator POST /operators.
func (h *DirectoryHandler) CreateOperator(c *fiber.Ctx) error {
	var req dto.OperatorRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	op, err := h.service.CreateOperator(c.UserContext(), service.OperatorInput{
		Name:         req.Name,
		Email:        req.Email,
		DepartmentID: req.DepartmentID,
		Active:       req.Active,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": operatorResponse(op)})
}

// UpdateOperator PATCH /operators/:id.
func (h *DirectoryHandler) UpdateOperator(c *fiber.Ctx) error {
	var req dto.OperatorRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	op, err := h.service.UpdateOperator(c.UserContext(), c.Params("id"), service.OperatorInput{
		Name:         req.Name,
		Email:        req.Email,
		DepartmentID: req.DepartmentID,
		Active:       req.Active,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": operatorResponse(op)})
}

// GetOperator GET /operators/:id.
func (h *DirectoryHandler) GetOperator(c *fiber.Ctx) error {
	op, err := h.service.GetOperator(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": operatorResponse(op)})
}

func departmentResponse(dept *domain.Department) dto.DepartmentResponse {
	return dto.DepartmentResponse{
		ID:          dept.ID,
		Name:        dept.Name,
		IsBranch:    dept.IsBranch,
		SLAHours:    dept.SLAHours,
		Description: dept.Description,
		CreatedAt:   dept.CreatedAt,
		UpdatedAt:   dept.UpdatedAt,
	}
}

func categoryResponse(cat *domain.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:          cat.ID,
		Name:        cat.Name,
		IsActive:    cat.IsActive,
		Description: cat.Description,
	}
}

func operatorResponse(op *domain.Operator) dto.OperatorResponse {
	return dto.OperatorResponse{
		ID:           op.ID,
		Name:         op.Name,
		Email:        op.Email,
		DepartmentID: op.DepartmentID,
		Active:       op.Active,
	}
}
