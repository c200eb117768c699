package transcript

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterAdminRoutes expects a router already guarded by the admin JWT middleware.
func (h *Handler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Get("/chat-logs", h.getChatLogs)
	admin.Get("/chat-logs/:id/export", h.exportChatLog)
}

func (h *Handler) getChatLogs(c *fiber.Ctx) error {
	return c.JSON(h.service.Search(c.UserContext(), c.Query("q")))
}

func (h *Handler) exportChatLog(c *fiber.Ctx) error {
	t, err := h.service.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "chat log not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, t.ExportFilename()))
	c.Type("txt", "utf-8")
	return c.SendString(t.Export())
}
