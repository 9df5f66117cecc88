package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/tsystem/tracker/internal/api/dto"
	"github.com/tsystem/tracker/internal/service"
)

// AdminHandler serves administrative endpoints: the full data export and
// the demo data generator.
type AdminHandler struct {
	export    *service.ExportService
	generator *service.GeneratorService
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(export *service.ExportService, generator *service.GeneratorService) *AdminHandler {
	return &AdminHandler{export: export, generator: generator}
}

// Export GET /admin/export.
func (h *AdminHandler) Export(c *fiber.Ctx) error {
	data, err := h.export.Export(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": data})
}

// Generate POST /admin/generate.
func (h *AdminHandler) Generate(c *fiber.Ctx) error {
	var req dto.GenerateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	summary, err := h.generator.Generate(c.UserContext(), service.GenerateInput{
		Users:          req.Users,
		Projects:       req.Projects,
		TicketsPerUser: req.TicketsPerUser,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": summary})
}
