package recommended

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wichananm65/pet-shop-storefront/internal/cart"
	"github.com/wichananm65/pet-shop-storefront/internal/logging"
	"github.com/wichananm65/pet-shop-storefront/internal/product"
	"github.com/wichananm65/pet-shop-storefront/internal/session"
)

type CartReader interface {
	Get(ctx context.Context, owner string) ([]cart.Line, error)
}

type Catalog interface {
	List() []product.Product
}

// PurchaseHistory lists product ids a user has already ordered.
type PurchaseHistory interface {
	PurchasedIDs(ctx context.Context, userID int) ([]int, error)
}

// Favorites lists the product ids a shopper saved; they count as browsing history.
type Favorites interface {
	IDs(ctx context.Context, owner string) ([]int, error)
}

type HandlerDeps struct {
	Scorer    *Scorer
	Carts     CartReader
	Catalog   Catalog
	Purchases PurchaseHistory
	Favorites Favorites
	Logger    *zap.Logger
}

type Handler struct {
	scorer    *Scorer
	carts     CartReader
	catalog   Catalog
	purchases PurchaseHistory
	favorites Favorites
	logger    *zap.Logger
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		scorer:    deps.Scorer,
		carts:     deps.Carts,
		catalog:   deps.Catalog,
		purchases: deps.Purchases,
		favorites: deps.Favorites,
		logger:    logging.OrNop(deps.Logger),
	}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/api/v1/product/recommended", h.getRecommended)
}

// getRecommended supports ?history=1,2&purchased=5&min=3&max=8. Saved favourites extend
// the history and the signed-in user's past orders extend purchased.
func (h *Handler) getRecommended(c *fiber.Ctx) error {
	owner, ok := session.OwnerFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "no cart session"})
	}

	opts := Options{}
	var err error
	if opts.BrowsingHistory, err = parseIDs(c.Query("history")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid history"})
	}
	if opts.PurchasedIDs, err = parseIDs(c.Query("purchased")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid purchased"})
	}
	if v := c.Query("min"); v != "" {
		if opts.MinRecommendations, err = strconv.Atoi(v); err != nil || opts.MinRecommendations < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid min"})
		}
	}
	if v := c.Query("max"); v != "" {
		if opts.MaxRecommendations, err = strconv.Atoi(v); err != nil || opts.MaxRecommendations < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid max"})
		}
	}

	var (
		lines     []cart.Line
		catalog   []product.Product
		purchased []int
		favorites []int
	)
	ctx := c.UserContext()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lines, err = h.carts.Get(gctx, owner)
		return err
	})
	g.Go(func() error {
		catalog = h.catalog.List()
		return nil
	})
	if userID, err := session.UserIDFromCtx(c); err == nil && h.purchases != nil {
		g.Go(func() error {
			ids, err := h.purchases.PurchasedIDs(gctx, userID)
			if err != nil {
				h.logger.Warn("purchase history unavailable", zap.Int("userID", userID), zap.Error(err))
				return nil
			}
			purchased = ids
			return nil
		})
	}
	if h.favorites != nil {
		g.Go(func() error {
			ids, err := h.favorites.IDs(gctx, owner)
			if err != nil {
				h.logger.Warn("favorites unavailable", zap.String("owner", owner), zap.Error(err))
				return nil
			}
			favorites = ids
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to load cart"})
	}
	opts.PurchasedIDs = append(opts.PurchasedIDs, purchased...)
	opts.BrowsingHistory = appendUnique(opts.BrowsingHistory, favorites...)

	return c.JSON(h.scorer.Recommend(ctx, lines, catalog, opts))
}

func parseIDs(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func appendUnique(ids []int, more ...int) []int {
	seen := make(map[int]bool, len(ids)+len(more))
	for _, id := range ids {
		seen[id] = true
	}
	for _, id := range more {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
