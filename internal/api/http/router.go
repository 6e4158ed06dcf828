package http

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/workflow-service/internal/api/http/handlers"
	"github.com/spec-kit/workflow-service/internal/api/identity"
	"github.com/spec-kit/workflow-service/internal/observability"
	"github.com/spec-kit/workflow-service/internal/service"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	ChangeRequests *handlers.ChangeRequestsHandler
	Directory      *handlers.DirectoryHandler
	DirectoryStore *service.DirectoryService
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))

	api := app.Group("/api/v1", identity.Middleware(cfg.DirectoryStore))

	tickets := api.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/status", cfg.Tickets.ChangeStatus)
	tickets.Post("/:id/transfer", cfg.Tickets.Transfer)
	tickets.Post("/:id/assign", cfg.Tickets.Assign)
	tickets.Post("/:id/discussions", cfg.Tickets.AddDiscussion)
	tickets.Patch("/:id/discussions/:discussionId", cfg.Tickets.EditDiscussion)
	tickets.Get("/:id/steps", cfg.Tickets.ListWorkflowSteps)
	tickets.Post("/:id/steps", cfg.Tickets.AddWorkflowStep)
	tickets.Patch("/:id/steps/:stepId", cfg.Tickets.UpdateWorkflowStep)

	requests := api.Group("/change-requests")
	requests.Post("", cfg.ChangeRequests.CreateRequest)
	requests.Get("", cfg.ChangeRequests.ListRequests)
	requests.Get("/:id", cfg.ChangeRequests.GetRequest)
	requests.Patch("/:id", cfg.ChangeRequests.UpdateRequest)
	requests.Post("/:id/actions/:action", cfg.ChangeRequests.Action)
	requests.Post("/:id/assign", cfg.ChangeRequests.Assign)
	requests.Post("/:id/comments", cfg.ChangeRequests.AddComment)
	requests.Post("/:id/attachments", cfg.ChangeRequests.AddAttachment)

	departments := api.Group("/departments")
	departments.Post("", cfg.Directory.CreateDepartment)
	departments.Get("", cfg.Directory.ListDepartments)
	departments.Get("/:id", cfg.Directory.GetDepartment)
	departments.Patch("/:id", cfg.Directory.UpdateDepartment)
	departments.Delete("/:id", cfg.Directory.DeleteDepartment)

	categories := api.Group("/categories")
	categories.Post("", cfg.Directory.CreateCategory)
	categories.Get("", cfg.Directory.ListCategories)
	categories.Patch("/:id", cfg.Directory.UpdateCategory)
	categories.Delete("/:id", cfg.Directory.DeleteCategory)

	operators := api.Group("/operators")
	operators.Post("", cfg.Directory.CreateOperator)
	operators.Get("/:id", cfg.Directory.GetOperator)
	operators.Patch("/:id", cfg.Directory.UpdateOperator)
}
