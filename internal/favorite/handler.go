package favorite

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/pet-shop-storefront/internal/session"
)

// Handler serves favourites for the current cart owner, signed in or not.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/api/v1/favorites", h.getFavorites)
	app.Post("/api/v1/favorites", h.addFavorite)
	app.Delete("/api/v1/favorites/:id<[0-9]+>", h.removeFavorite)
}

type favoriteRequest struct {
	ProductID int `json:"productId"`
}

func (h *Handler) getFavorites(c *fiber.Ctx) error {
	owner, ok := session.OwnerFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "no cart session"})
	}
	products, err := h.service.GetFavorites(c.UserContext(), owner)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(products)
}

func (h *Handler) addFavorite(c *fiber.Ctx) error {
	owner, ok := session.OwnerFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "no cart session"})
	}
	payload := new(favoriteRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	fav, err := h.service.AddFavorite(c.UserContext(), owner, payload.ProductID)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownProduct):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
		case errors.Is(err, ErrAlreadyFavorite):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "product already in favorites"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"productId": payload.ProductID, "favoriteProductId": fav})
}

func (h *Handler) removeFavorite(c *fiber.Ctx) error {
	owner, ok := session.OwnerFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "no cart session"})
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	fav, err := h.service.RemoveFavorite(c.UserContext(), owner, id)
	if err != nil {
		if errors.Is(err, ErrNotFavorite) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not in favorites"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{"productId": id, "favoriteProductId": fav})
}
