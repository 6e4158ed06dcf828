package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/workflow-service/internal/domain"
	"github.com/spec-kit/workflow-service/internal/repository"
	apperrors "github.com/spec-kit/workflow-service/pkg/util/errorutil"
)

const (
	departmentCacheKey = "directory:department:"
	departmentCacheTTL = 10 * time.Minute
)

// DirectoryService manages the department directory, categories and
// operators. Department reads go through a Redis cache; writes
// invalidate it.
type DirectoryService struct {
	store  repository.Store
	cache  *redis.Client
	logger *zap.Logger
}

// DirectoryDependencies bundles collaborators. Cache is optional; with
// a nil client every read hits the database.
type DirectoryDependencies struct {
	Store  repository.Store
	Cache  *redis.Client
	Logger *zap.Logger
}

// NewDirectoryService constructs the service.
func NewDirectoryService(deps DirectoryDependencies) *DirectoryService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{
		store:  deps.Store,
		cache:  deps.Cache,
		logger: logger,
	}
}

// DepartmentInput describes department creation or update payload.
type DepartmentInput struct {
	Name        string
	IsBranch    bool
	SLAHours    int
	Description string
}

// CategoryInput describes category payload.
type CategoryInput struct {
	Name        string
	IsActive    bool
	Description string
}

// OperatorInput describes operator payload.
type OperatorInput struct {
	Name         string
	Email        string
	DepartmentID *string
	Active       bool
}

// CreateDepartment adds a directory entry.
func (s *DirectoryService) CreateDepartment(ctx context.Context, input DepartmentInput) (*domain.Department, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	sla := input.SLAHours
	if sla <= 0 {
		sla = domain.DefaultSLAHours
	}
	dept := &domain.Department{
		Name:        strings.TrimSpace(input.Name),
		IsBranch:    input.IsBranch,
		SLAHours:    sla,
		Description: input.Description,
	}
	if err := s.store.Repos().Departments.Create(ctx, dept); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("department name already exists", map[string]any{"name": dept.Name})
		}
		return nil, err
	}
	return dept, nil
}

// UpdateDepartment edits a directory entry and drops its cache slot.
// Changing SLAHours affects future tickets only; existing due dates
// keep the value computed at creation.
func (s *DirectoryService) UpdateDepartment(ctx context.Context, id string, input DepartmentInput) (*domain.Department, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	dept, err := s.store.Repos().Departments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dept.Name = strings.TrimSpace(input.Name)
	dept.IsBranch = input.IsBranch
	if input.SLAHours > 0 {
		dept.SLAHours = input.SLAHours
	}
	dept.Description = input.Description
	if err := s.store.Repos().Departments.Update(ctx, dept); err != nil {
		return nil, err
	}
	s.invalidateDepartment(ctx, id)
	return dept, nil
}

// DeleteDepartment removes a directory entry. Departments referenced by
// tickets or change requests are protected.
func (s *DirectoryService) DeleteDepartment(ctx context.Context, id string) error {
	err := s.store.WithinTx(ctx, func(r repository.Set) error {
		refs, err := r.Departments.ReferenceCount(ctx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return apperrors.NewReferentialIntegrity("department", map[string]any{
				"department_id": id,
				"references":    refs,
			})
		}
		if err := r.Departments.Delete(ctx, id); err != nil {
			if repository.IsForeignKeyViolation(err) {
				return apperrors.NewReferentialIntegrity("department", map[string]any{"department_id": id})
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidateDepartment(ctx, id)
	return nil
}

// GetDepartment reads through the cache.
func (s *DirectoryService) GetDepartment(ctx context.Context, id string) (*domain.Department, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, departmentCacheKey+id).Result()
		if err == nil {
			var dept domain.Department
			if jsonErr := json.Unmarshal([]byte(raw), &dept); jsonErr == nil {
				return &dept, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("department cache read failed", zap.Error(err))
		}
	}

	dept, err := s.store.Repos().Departments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if raw, jsonErr := json.Marshal(dept); jsonErr == nil {
			if err := s.cache.Set(ctx, departmentCacheKey+id, raw, departmentCacheTTL).Err(); err != nil {
				s.logger.Warn("department cache write failed", zap.Error(err))
			}
		}
	}
	return dept, nil
}

// ListDepartments returns all departments.
func (s *DirectoryService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	return s.store.Repos().Departments.List(ctx)
}

// CreateCategory adds a ticket category.
func (s *DirectoryService) CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	cat := &domain.Category{
		Name:        strings.TrimSpace(input.Name),
		IsActive:    input.IsActive,
		Description: input.Description,
	}
	if err := s.store.Repos().Categories.Create(ctx, cat); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("category name already exists", map[string]any{"name": cat.Name})
		}
		return nil, err
	}
	return cat, nil
}

// UpdateCategory edits a category.
func (s *DirectoryService) UpdateCategory(ctx context.Context, id string, input CategoryInput) (*domain.Category, error) {
	cat, err := s.store.Repos().Categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) != "" {
		cat.Name = strings.TrimSpace(input.Name)
	}
	cat.IsActive = input.IsActive
	cat.Description = input.Description
	if err := s.store.Repos().Categories.Update(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// DeleteCategory removes a category unless tickets reference it.
func (s *DirectoryService) DeleteCategory(ctx context.Context, id string) error {
	return s.store.WithinTx(ctx, func(r repository.Set) error {
		refs, err := r.Categories.ReferenceCount(ctx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return apperrors.NewReferentialIntegrity("category", map[string]any{
				"category_id": id,
				"references":  refs,
			})
		}
		return r.Categories.Delete(ctx, id)
	})
}

// ListActiveCategories returns categories available for new tickets.
func (s *DirectoryService) ListActiveCategories(ctx context.Context) ([]domain.Category, error) {
	return s.store.Repos().Categories.ListActive(ctx)
}

// CreateOperator registers a staff member.
func (s *DirectoryService) CreateOperator(ctx context.Context, input OperatorInput) (*domain.Operator, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, apperrors.NewValidationError("email required", nil)
	}
	op := &domain.Operator{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		DepartmentID: input.DepartmentID,
		Active:       input.Active,
	}
	if err := s.store.Repos().Operators.Create(ctx, op); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("operator email already exists", map[string]any{"email": op.Email})
		}
		return nil, err
	}
	return op, nil
}

// UpdateOperator edits a staff member.
func (s *DirectoryService) UpdateOperator(ctx context.Context, id string, input OperatorInput) (*domain.Operator, error) {
	op, err := s.store.Repos().Operators.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) != "" {
		op.Name = strings.TrimSpace(input.Name)
	}
	if strings.TrimSpace(input.Email) != "" {
		op.Email = strings.ToLower(strings.TrimSpace(input.Email))
	}
	op.DepartmentID = input.DepartmentID
	op.Active = input.Active
	if err := s.store.Repos().Operators.Update(ctx, op); err != nil {
		return nil, err
	}
	return op, nil
}

// GetOperator returns a staff member by ID.
func (s *DirectoryService) GetOperator(ctx context.Context, id string) (*domain.Operator, error) {
	return s.store.Repos().Operators.GetByID(ctx, id)
}

// DepartmentFor satisfies DepartmentResolver using operator records.
func (s *DirectoryService) DepartmentFor(ctx context.Context, operatorID string) (*string, error) {
	return s.store.Repos().Operators.DepartmentFor(ctx, operatorID)
}

func (s *DirectoryService) invalidateDepartment(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, departmentCacheKey+id).Err(); err != nil {
		s.logger.Warn("department cache invalidation failed",
			zap.String("department_id", id),
			zap.Error(err))
	}
}

var _ DepartmentResolver = (*DirectoryService)(nil)
