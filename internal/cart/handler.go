package cart

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/tidwall/gjson"

	"github.com/wichananm65/pet-shop-storefront/internal/product"
	"github.com/wichananm65/pet-shop-storefront/internal/session"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the cart endpoints. Callers put session.Owner ahead of them.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/api/v1/cart", h.getCart)
	app.Post("/api/v1/cart/items", h.addItem)
	app.Patch("/api/v1/cart/items/:id", h.updateItem)
	app.Delete("/api/v1/cart/items/:id", h.removeItem)
	app.Delete("/api/v1/cart", h.clearCart)

	// legacy storefront path
	app.Post("/api/v1/product/cart", h.addItem)
}

type cartResponse struct {
	Items         []Line  `json:"items"`
	TotalQuantity int     `json:"totalQuantity"`
	TotalPrice    float64 `json:"totalPrice"`
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	owner, ok := session.OwnerFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "no cart session"})
	}
	lines, err := h.service.Get(c.UserContext(), owner)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to load cart"})
	}
	qty, price := Totals(lines)
	return c.JSON(cartResponse{Items: lines, TotalQuantity: qty, TotalPrice: price})
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	owner, ok := session.OwnerFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "no cart session"})
	}

	body := c.Body()
	if !gjson.ValidBytes(body) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid body"})
	}
	item, err := parseItem(gjson.ParseBytes(body))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	qty := int(gjson.GetBytes(body, "quantity").Int())
	if qty < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "quantity must not be negative"})
	}
	if qty > MaxLineQuantity {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": ErrQuantityTooLarge.Error()})
	}

	res, err := h.service.Add(c.UserContext(), owner, item, qty)
	if err != nil {
		return h.mutationError(c, err)
	}
	return c.JSON(res)
}

func (h *Handler) updateItem(c *fiber.Ctx) error {
	owner, ok := session.OwnerFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "no cart session"})
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil || req.Quantity == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "quantity is required"})
	}
	if *req.Quantity > MaxLineQuantity {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": ErrQuantityTooLarge.Error()})
	}

	res, err := h.service.Update(c.UserContext(), owner, id, *req.Quantity)
	if err != nil {
		return h.mutationError(c, err)
	}
	return c.JSON(res)
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	owner, ok := session.OwnerFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "no cart session"})
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	res, err := h.service.Remove(c.UserContext(), owner, id)
	if err != nil {
		return h.mutationError(c, err)
	}
	return c.JSON(res)
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	owner, ok := session.OwnerFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "no cart session"})
	}
	if _, err := h.service.Clear(c.UserContext(), owner); err != nil {
		return h.mutationError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) mutationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotInCart):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrInvalidItem), errors.Is(err, ErrQuantityTooLarge):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to update cart"})
	}
}

// parseItem reads either {"product": {...}} or {"productId": n}. The product id is kept
// loosely typed so NormalizeID decides what to do with it.
func parseItem(body gjson.Result) (Item, error) {
	p := body.Get("product")
	if !p.Exists() {
		id := body.Get("productId")
		if !id.Exists() {
			return Item{}, errors.New("product or productId is required")
		}
		return Item{ID: rawID(id)}, nil
	}
	if !p.IsObject() {
		return Item{}, errors.New("product must be an object")
	}

	item := Item{
		ID:       rawID(p.Get("productId")),
		Name:     p.Get("productName").String(),
		Price:    p.Get("productPrice").Float(),
		Category: p.Get("category").String(),
		Tags:     product.ParseTags(p.Get("tags")),
	}
	if w := p.Get("weightKg"); w.Type == gjson.Number {
		v := w.Float()
		item.WeightKg = &v
	}
	if v := p.Get("volumeCm3"); v.Type == gjson.Number {
		f := v.Float()
		item.VolumeCm3 = &f
	}
	return item, nil
}

func rawID(v gjson.Result) any {
	switch v.Type {
	case gjson.Number:
		return json.Number(v.Raw)
	case gjson.String:
		return v.Str
	default:
		return nil
	}
}
