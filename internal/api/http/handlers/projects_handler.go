package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/tsystem/tracker/internal/api/dto"
	"github.com/tsystem/tracker/internal/service"
)

// ProjectsHandler serves owner-scoped project CRUD.
type ProjectsHandler struct {
	service *service.ProjectService
}

// NewProjectsHandler constructs the handler.
func NewProjectsHandler(projectService *service.ProjectService) *ProjectsHandler {
	return &ProjectsHandler{service: projectService}
}

// Create POST /projects.
func (h *ProjectsHandler) Create(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateProjectRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	project, err := h.service.Create(c.UserContext(), service.ProjectCreateInput{
		Name:        req.Name,
		Description: req.Description,
	}, principal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewProjectResponse(project)})
}

// List GET /projects.
func (h *ProjectsHandler) List(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	projects, err := h.service.ListMine(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProjectResponses(projects)})
}

// Get GET /projects/:projectId.
func (h *ProjectsHandler) Get(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	project, err := h.service.Get(c.UserContext(), c.Params("projectId"), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProjectResponse(project)})
}

// Update PUT /projects/:projectId.
func (h *ProjectsHandler) Update(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProjectRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	project, err := h.service.Update(c.UserContext(), c.Params("projectId"), service.ProjectUpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	}, principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProjectResponse(project)})
}

// Delete DELETE /projects/:projectId.
func (h *ProjectsHandler) Delete(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), c.Params("projectId"), principal); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
