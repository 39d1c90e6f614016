package category

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/api/v1/product/category", h.getCategories)
	app.Get("/api/v1/product/tags", h.getTags)
}

func (h *Handler) getCategories(c *fiber.Ctx) error {
	return c.JSON(h.service.List(queryLimit(c, 100)))
}

func (h *Handler) getTags(c *fiber.Ctx) error {
	return c.JSON(h.service.Tags(queryLimit(c, 20)))
}

func queryLimit(c *fiber.Ctx, def int) int {
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			return v
		}
	}
	return def
}
