// Package identity resolves the acting operator for audit attribution.
// It is not authentication; upstream infrastructure is expected to have
// authenticated the caller before the request reaches this service.
package identity

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workflow-service/internal/domain"
	"github.com/spec-kit/workflow-service/internal/service"
	apperrors "github.com/spec-kit/workflow-service/pkg/util/errorutil"
)

const operatorLocalKey = "operator"

// Middleware resolves the operator named by X-Operator-ID and stores it
// on the request. Unknown or inactive operators are rejected.
func Middleware(directory *service.DirectoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		operatorID := c.Get("X-Operator-ID")
		if operatorID == "" {
			return apperrors.NewValidationError("X-Operator-ID header required", nil)
		}
		operator, err := directory.GetOperator(c.UserContext(), operatorID)
		if err != nil {
			return err
		}
		if !operator.Active {
			return apperrors.NewValidationError("operator is inactive", map[string]any{"operator_id": operatorID})
		}
		c.Locals(operatorLocalKey, operator)
		return c.Next()
	}
}

// FromContext returns the operator resolved by Middleware.
func FromContext(c *fiber.Ctx) (*domain.Operator, bool) {
	operator, ok := c.Locals(operatorLocalKey).(*domain.Operator)
	return operator, ok
}
