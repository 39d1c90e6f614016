package order

import (
	"context"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/wichananm65/pet-shop-storefront/internal/cart"
	"github.com/wichananm65/pet-shop-storefront/internal/delivery"
	"github.com/wichananm65/pet-shop-storefront/internal/logging"
	"github.com/wichananm65/pet-shop-storefront/internal/metrics"
)

// Carts is the part of the cart service checkout needs. Drain must hold the owner's cart
// lock while fn runs and delete the cart only when fn succeeds.
type Carts interface {
	Drain(ctx context.Context, owner string, fn func([]cart.Line) error) error
}

type ServiceDeps struct {
	Repo           Repository
	Carts          Carts
	Packing        delivery.Options
	ShippingPerBox float64
	Logger         *zap.Logger
	Metrics        *metrics.Recorder
	Clock          func() time.Time
}

// Service provides business logic for orders.
type Service struct {
	repo           Repository
	carts          Carts
	packing        delivery.Options
	shippingPerBox float64
	logger         *zap.Logger
	metrics        *metrics.Recorder
	now            func() time.Time
}

func NewService(deps ServiceDeps) *Service {
	if deps.Repo == nil {
		deps.Repo = NewInMemoryRepository()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Service{
		repo:           deps.Repo,
		carts:          deps.Carts,
		packing:        deps.Packing,
		shippingPerBox: deps.ShippingPerBox,
		logger:         logging.OrNop(deps.Logger),
		metrics:        deps.Metrics,
		now:            deps.Clock,
	}
}

// OwnerKey is the cart owner key of a signed-in user.
func OwnerKey(userID int) string {
	return "user:" + strconv.Itoa(userID)
}

// Checkout turns the user's cart into an order: it packs the cart into boxes, prices goods
// and shipping, stores the order and empties the cart.
func (s *Service) Checkout(ctx context.Context, userID int) (Order, error) {
	if userID <= 0 {
		return Order{}, ErrInvalidUser
	}
	owner := OwnerKey(userID)

	var created Order
	placed := false
	err := s.carts.Drain(ctx, owner, func(lines []cart.Line) error {
		if len(lines) == 0 {
			return ErrEmptyCart
		}
		boxes := delivery.Pack(lines, s.packing)
		s.metrics.BoxesPacked(len(boxes))
		qty, total := cart.Totals(lines)
		shipping := float64(len(boxes)) * s.shippingPerBox
		ts := s.now().UTC().Format(time.RFC3339)

		ord, err := s.repo.Create(ctx, Order{
			UserID:        userID,
			Lines:         lines,
			Quantity:      qty,
			Boxes:         len(boxes),
			TotalPrice:    roundCents(total),
			ShippingPrice: roundCents(shipping),
			GrandPrice:    roundCents(total + shipping),
			Status:        StatusPlaced,
			CreatedAt:     ts,
			UpdatedAt:     ts,
		})
		if err != nil {
			return err
		}
		created, placed = ord, true
		return nil
	})
	if err != nil {
		if !placed {
			return Order{}, err
		}
		s.logger.Warn("order placed but cart not cleared", zap.Int("orderID", created.OrderID), zap.Error(err))
	}
	s.logger.Info("order placed", zap.Int("orderID", created.OrderID), zap.Int("userID", userID),
		zap.Int("boxes", created.Boxes), zap.Float64("grandPrice", created.GrandPrice))
	return created, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// PurchasedIDs lists every product id the user has ordered, most recent orders first.
func (s *Service) PurchasedIDs(ctx context.Context, userID int) ([]int, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]bool)
	out := make([]int, 0)
	for _, ord := range orders {
		for _, l := range ord.Lines {
			if !seen[l.ID] {
				seen[l.ID] = true
				out = append(out, l.ID)
			}
		}
	}
	return out, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
