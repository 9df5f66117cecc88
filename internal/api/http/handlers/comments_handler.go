package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/tsystem/tracker/internal/api/dto"
	"github.com/tsystem/tracker/internal/service"
)

// CommentsHandler serves ticket comment endpoints.
type CommentsHandler struct {
	service *service.CommentService
}

// NewCommentsHandler constructs the handler.
func NewCommentsHandler(commentService *service.CommentService) *CommentsHandler {
	return &CommentsHandler{service: commentService}
}

// List GET /projects/:projectId/tickets/:ticketId/comments.
func (h *CommentsHandler) List(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	comments, err := h.service.List(c.UserContext(), c.Params("projectId"), c.Params("ticketId"), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCommentResponses(comments)})
}

// Create POST /projects/:projectId/tickets/:ticketId/comments.
func (h *CommentsHandler) Create(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	comment, err := h.service.Add(c.UserContext(), c.Params("projectId"), c.Params("ticketId"), req.Body, principal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCommentResponse(comment)})
}

// Update PUT /projects/:projectId/tickets/:ticketId/comments/:commentId.
func (h *CommentsHandler) Update(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	comment, err := h.service.Update(c.UserContext(), c.Params("projectId"), c.Params("ticketId"), c.Params("commentId"), req.Body, principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCommentResponse(comment)})
}

// Delete DELETE /projects/:projectId/tickets/:ticketId/comments/:commentId.
func (h *CommentsHandler) Delete(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), c.Params("projectId"), c.Params("ticketId"), c.Params("commentId"), principal); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
