package cart

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wichananm65/pet-shop-storefront/internal/logging"
	"github.com/wichananm65/pet-shop-storefront/internal/metrics"
	"github.com/wichananm65/pet-shop-storefront/internal/product"
)

const lockStripes = 64

// Catalog is the read side of the product catalog the cart needs.
type Catalog interface {
	GetByID(id int) (product.Product, error)
}

// ServiceDeps wires the cart service.
type ServiceDeps struct {
	Store   Store
	Catalog Catalog
	Logger  *zap.Logger
	Metrics *metrics.Recorder
	Clock   func() time.Time
}

// Service loads an owner's snapshot, applies one mutation, normalises and persists it.
type Service struct {
	store   Store
	catalog Catalog
	logger  *zap.Logger
	metrics *metrics.Recorder
	now     func() time.Time
	locks   [lockStripes]sync.Mutex
}

func NewService(deps ServiceDeps) *Service {
	if deps.Store == nil {
		deps.Store = NewMemoryStore()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Service{
		store:   deps.Store,
		catalog: deps.Catalog,
		logger:  logging.OrNop(deps.Logger),
		metrics: deps.Metrics,
		now:     deps.Clock,
	}
}

// Get returns the owner's cart. Unreadable snapshots are logged and read as empty.
func (s *Service) Get(ctx context.Context, owner string) ([]Line, error) {
	return s.load(ctx, owner)
}

// Add merges qty units of item into the cart. Items whose id matches a catalog product
// take the catalog's name and price.
func (s *Service) Add(ctx context.Context, owner string, item Item, qty int) (Result, error) {
	if qty > MaxLineQuantity {
		return Result{}, ErrQuantityTooLarge
	}
	item = s.resolve(item)
	if item.Price < 0 || (item.WeightKg != nil && *item.WeightKg < 0) || (item.VolumeCm3 != nil && *item.VolumeCm3 < 0) {
		return Result{}, ErrInvalidItem
	}

	name := item.Name
	if name == "" {
		name = "Item"
	}
	return s.mutate(ctx, owner, "add", func(lines []Line) ([]Line, *Notice, error) {
		return AddToCart(lines, item, qty, s.now()), &Notice{Level: NoticeSuccess, Message: name + " added to cart"}, nil
	})
}

// Update sets a line's quantity; qty <= 0 removes the line.
func (s *Service) Update(ctx context.Context, owner string, id int, qty int) (Result, error) {
	if qty <= 0 {
		return s.Remove(ctx, owner, id)
	}
	if qty > MaxLineQuantity {
		return Result{}, ErrQuantityTooLarge
	}
	return s.mutate(ctx, owner, "update", func(lines []Line) ([]Line, *Notice, error) {
		if indexOf(lines, id) < 0 {
			return nil, nil, ErrNotInCart
		}
		return UpdateQuantity(lines, id, qty), &Notice{Level: NoticeInfo, Message: "Cart updated"}, nil
	})
}

// Remove drops a line from the cart.
func (s *Service) Remove(ctx context.Context, owner string, id int) (Result, error) {
	return s.mutate(ctx, owner, "remove", func(lines []Line) ([]Line, *Notice, error) {
		i := indexOf(lines, id)
		if i < 0 {
			return nil, nil, ErrNotInCart
		}
		name := lines[i].Name
		if name == "" {
			name = "Item"
		}
		return RemoveFromCart(lines, id), &Notice{Level: NoticeInfo, Message: name + " removed from cart"}, nil
	})
}

// Clear deletes the owner's snapshot entirely.
func (s *Service) Clear(ctx context.Context, owner string) (Result, error) {
	mu := s.lock(owner)
	mu.Lock()
	defer mu.Unlock()

	if err := s.store.Delete(ctx, owner); err != nil {
		return Result{}, err
	}
	s.metrics.CartMutation("clear")
	return Result{Items: []Line{}, Notice: &Notice{Level: NoticeInfo, Message: "Cart cleared"}}, nil
}

// Drain hands the owner's cart to fn and deletes the snapshot once fn succeeds. The owner's
// lock is held throughout, so no mutation can land between the read and the delete.
// An error from fn leaves the cart untouched and is returned as is.
func (s *Service) Drain(ctx context.Context, owner string, fn func([]Line) error) error {
	mu := s.lock(owner)
	mu.Lock()
	defer mu.Unlock()

	lines, err := s.load(ctx, owner)
	if err != nil {
		return err
	}
	if err := fn(lines); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, owner); err != nil {
		return fmt.Errorf("%w: %w", ErrCartNotCleared, err)
	}
	s.metrics.CartMutation("drain")
	return nil
}

func (s *Service) mutate(ctx context.Context, owner, op string, fn func([]Line) ([]Line, *Notice, error)) (Result, error) {
	mu := s.lock(owner)
	mu.Lock()
	defer mu.Unlock()

	lines, err := s.load(ctx, owner)
	if err != nil {
		return Result{}, err
	}
	next, notice, err := fn(lines)
	if err != nil {
		return Result{}, err
	}
	payload, err := Encode(next)
	if err != nil {
		return Result{}, fmt.Errorf("encode cart: %w", err)
	}
	if err := s.store.Set(ctx, owner, payload); err != nil {
		return Result{}, err
	}
	s.metrics.CartMutation(op)
	s.logger.Debug("cart mutated", zap.String("owner", owner), zap.String("op", op), zap.Int("lines", len(next)))
	return Result{Items: next, Notice: notice}, nil
}

func (s *Service) load(ctx context.Context, owner string) ([]Line, error) {
	payload, err := s.store.Get(ctx, owner)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			return []Line{}, nil
		}
		return nil, err
	}
	lines, err := Decode(payload)
	if err != nil {
		s.logger.Warn("discarding unreadable cart snapshot", zap.String("owner", owner), zap.Error(err))
		return []Line{}, nil
	}
	return lines, nil
}

func (s *Service) resolve(item Item) Item {
	if s.catalog == nil {
		return item
	}
	id, ok := NormalizeID(item.ID)
	if !ok {
		return item
	}
	p, err := s.catalog.GetByID(id)
	if err != nil {
		return item
	}
	return FromProduct(p)
}

func (s *Service) lock(owner string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(owner))
	return &s.locks[h.Sum32()%lockStripes]
}
