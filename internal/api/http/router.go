package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tsystem/tracker/internal/api/http/handlers"
	"github.com/tsystem/tracker/internal/auth"
	"github.com/tsystem/tracker/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Projects       *handlers.ProjectsHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	Registry       *prometheus.Registry
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	app.Get("/tickets/assigned", cfg.AuthMiddleware.Handle, cfg.Tickets.ListAssigned)

	projects := app.Group("/projects", cfg.AuthMiddleware.Handle, auth.RequireCapability(domain.CapabilityProjectManage))
	projects.Post("/", cfg.Projects.Create)
	projects.Get("/", cfg.Projects.List)
	projects.Get("/:projectId", cfg.Projects.Get)
	projects.Put("/:projectId", cfg.Projects.Update)
	projects.Delete("/:projectId", cfg.Projects.Delete)

	tickets := projects.Group("/:projectId/tickets", auth.RequireCapability(domain.CapabilityTicketManage))
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/", cfg.Tickets.List)
	tickets.Get("/:ticketId", cfg.Tickets.Get)
	tickets.Put("/:ticketId", cfg.Tickets.Replace)
	tickets.Patch("/:ticketId", cfg.Tickets.Patch)
	tickets.Post("/:ticketId/assign", cfg.Tickets.Assign)
	tickets.Delete("/:ticketId", cfg.Tickets.Delete)
	tickets.Get("/:ticketId/history", cfg.Tickets.History)

	comments := tickets.Group("/:ticketId/comments")
	comments.Get("/", cfg.Comments.List)
	comments.Post("/", cfg.Comments.Create)
	comments.Put("/:commentId", cfg.Comments.Update)
	comments.Delete("/:commentId", cfg.Comments.Delete)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle)
	admin.Get("/export", auth.RequireCapability(domain.CapabilityExport), cfg.Admin.Export)
	admin.Post("/generate", auth.RequireCapability(domain.CapabilityGenerate), cfg.Admin.Generate)
}
