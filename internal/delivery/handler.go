package delivery

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/pet-shop-storefront/internal/cart"
	"github.com/wichananm65/pet-shop-storefront/internal/metrics"
	"github.com/wichananm65/pet-shop-storefront/internal/session"
)

// CartReader loads an owner's current cart.
type CartReader interface {
	Get(ctx context.Context, owner string) ([]cart.Line, error)
}

type Handler struct {
	carts    CartReader
	defaults Options
	metrics  *metrics.Recorder
}

func NewHandler(carts CartReader, defaults Options, m *metrics.Recorder) *Handler {
	return &Handler{carts: carts, defaults: defaults, metrics: m}
}

func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/api/v1/cart/delivery", h.getDelivery)
}

type deliveryResponse struct {
	Boxes    []Box `json:"boxes"`
	BoxCount int   `json:"boxCount"`
}

func (h *Handler) getDelivery(c *fiber.Ctx) error {
	owner, ok := session.OwnerFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "no cart session"})
	}

	opts := h.defaults
	for key, dst := range map[string]*float64{
		"maxWeightKg":  &opts.MaxWeightKg,
		"maxVolumeCm3": &opts.MaxVolumeCm3,
	} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid " + key})
		}
		*dst = v
	}

	lines, err := h.carts.Get(c.UserContext(), owner)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to load cart"})
	}
	boxes := Pack(lines, opts)
	h.metrics.BoxesPacked(len(boxes))
	return c.JSON(deliveryResponse{Boxes: boxes, BoxCount: len(boxes)})
}
