package catalog

import (
	"bytes"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/xinchao-storefront/internal/apperr"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/api/v1/products", h.getProducts)
	app.Get("/api/v1/products/:id", h.getProduct)
}

// RegisterAdminRoutes expects a router already guarded by the admin JWT middleware.
func (h *Handler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Post("/products", h.createProduct)
	admin.Put("/products", h.resetProducts)
	admin.Put("/products/:id", h.updateProduct)
	admin.Patch("/products/:id/video", h.updateVideo)
	admin.Delete("/products/:id", h.deleteProduct)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	return c.JSON(h.service.List(c.UserContext()))
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	it, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
	}
	return c.JSON(it)
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	it := new(Item)
	if err := c.BodyParser(it); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	created, err := h.service.Create(c.UserContext(), *it)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := h.service.GetByID(c.UserContext(), id); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
	}

	it := new(Item)
	if err := c.BodyParser(it); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	updated, err := h.service.Update(c.UserContext(), id, *it)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(updated)
}

type videoRequest struct {
	VideoURL string `json:"videoUrl"`
}

func (h *Handler) updateVideo(c *fiber.Ctx) error {
	payload := new(videoRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	updated, err := h.service.UpdateVideo(c.UserContext(), c.Params("id"), payload.VideoURL)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// resetProducts replaces the catalog with the posted list; an empty array
// clears it. An empty body or ?seed=default reseeds the built-in catalog. A
// body that is not a product array is rejected and nothing is saved.
func (h *Handler) resetProducts(c *fiber.Ctx) error {
	var items []Item
	if c.Query("seed") == "default" || len(bytes.TrimSpace(c.Body())) == 0 {
		items = DefaultItems()
	} else {
		if err := c.BodyParser(&items); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		}
		if items == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "expected a list of products"})
		}
	}
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return writeError(c, err)
		}
	}

	if err := h.service.Reset(c.UserContext(), items); err != nil {
		return writeError(c, err)
	}
	return c.JSON(items)
}

func writeError(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
	}
	if fields := apperr.Fields(err); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}
	return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"message": err.Error()})
}
