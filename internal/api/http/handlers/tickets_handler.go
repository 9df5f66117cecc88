package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/tsystem/tracker/internal/api/dto"
	"github.com/tsystem/tracker/internal/service"
)

// TicketsHandler serves ticket endpoints nested under a project.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create POST /projects/:projectId/tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.Create(c.UserContext(), c.Params("projectId"), service.TicketCreateInput{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Priority:    req.Priority,
		State:       req.State,
		AssigneeID:  req.AssigneeID,
	}, principal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// List GET /projects/:projectId/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.List(c.UserContext(), c.Params("projectId"), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// ListAssigned GET /tickets/assigned.
func (h *TicketsHandler) ListAssigned(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListAssigned(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// Get GET /projects/:projectId/tickets/:ticketId.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Get(c.UserContext(), c.Params("projectId"), c.Params("ticketId"), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Replace PUT /projects/:projectId/tickets/:ticketId.
func (h *TicketsHandler) Replace(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.ReplaceTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.Replace(c.UserContext(), c.Params("projectId"), c.Params("ticketId"), service.TicketReplaceInput{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Priority:    req.Priority,
		State:       req.State,
		AssigneeID:  req.AssigneeID,
	}, principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Patch PATCH /projects/:projectId/tickets/:ticketId.
func (h *TicketsHandler) Patch(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.PatchTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.Patch(c.UserContext(), c.Params("projectId"), c.Params("ticketId"), service.TicketPatchInput{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Priority:    req.Priority,
		State:       req.State,
		AssigneeID:  req.AssigneeID,
	}, principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Assign POST /projects/:projectId/tickets/:ticketId/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.Assign(c.UserContext(), c.Params("projectId"), c.Params("ticketId"), req.AssigneeID, principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Delete DELETE /projects/:projectId/tickets/:ticketId.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), c.Params("projectId"), c.Params("ticketId"), principal); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// History GET /projects/:projectId/tickets/:ticketId/history.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	entries, err := h.service.History(c.UserContext(), c.Params("projectId"), c.Params("ticketId"), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketHistoryResponses(entries)})
}
