package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wichananm65/pet-shop-storefront/internal/metrics"
	"github.com/wichananm65/pet-shop-storefront/internal/product"
)

type failingStore struct{ err error }

func (s failingStore) Get(context.Context, string) ([]byte, error) { return nil, s.err }
func (s failingStore) Set(context.Context, string, []byte) error   { return s.err }
func (s failingStore) Delete(context.Context, string) error        { return s.err }

func newTestService(store Store, logger *zap.Logger) *Service {
	sale := 199.0
	catalog := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Kibble", Price: 590, Category: "Animal Food"},
		{ID: 3, Name: "Scratcher", Price: 250, SalePrice: &sale},
	})
	return NewService(ServiceDeps{
		Store:   store,
		Catalog: catalog,
		Logger:  logger,
		Metrics: metrics.New(),
		Clock:   func() time.Time { return fixedNow },
	})
}

func TestService_AddUsesCatalogValues(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewMemoryStore(), nil)

	res, err := svc.Add(ctx, "anon:x", Item{ID: "3", Name: "spoofed", Price: 1}, 2)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Scratcher", res.Items[0].Name)
	assert.Equal(t, 199.0, res.Items[0].Price)
	require.NotNil(t, res.Notice)
	assert.Equal(t, NoticeSuccess, res.Notice.Level)

	lines, err := svc.Get(ctx, "anon:x")
	require.NoError(t, err)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestService_AddUnknownItemKeepsPayload(t *testing.T) {
	svc := newTestService(NewMemoryStore(), nil)
	res, err := svc.Add(context.Background(), "anon:x", Item{ID: 77, Name: "Hamster Wheel", Price: 320}, 1)
	require.NoError(t, err)
	assert.Equal(t, "Hamster Wheel", res.Items[0].Name)

	_, err = svc.Add(context.Background(), "anon:x", Item{ID: 78, Price: -1}, 1)
	assert.ErrorIs(t, err, ErrInvalidItem)
}

func TestService_UpdateRemoveClear(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewMemoryStore(), nil)
	owner := "user:5"

	_, err := svc.Add(ctx, owner, Item{ID: 1}, 1)
	require.NoError(t, err)

	res, err := svc.Update(ctx, owner, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Items[0].Quantity)
	assert.Equal(t, NoticeInfo, res.Notice.Level)

	_, err = svc.Update(ctx, owner, 42, 1)
	assert.ErrorIs(t, err, ErrNotInCart)

	res, err = svc.Update(ctx, owner, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Items)

	_, err = svc.Remove(ctx, owner, 1)
	assert.ErrorIs(t, err, ErrNotInCart)

	_, err = svc.Add(ctx, owner, Item{ID: 1}, 1)
	require.NoError(t, err)
	_, err = svc.Clear(ctx, owner)
	require.NoError(t, err)
	lines, err := svc.Get(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestService_MalformedSnapshotReadsEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, "anon:bad", []byte("{oops")))

	core, logs := observer.New(zap.WarnLevel)
	svc := newTestService(store, zap.New(core))

	lines, err := svc.Get(ctx, "anon:bad")
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Equal(t, 1, logs.FilterMessage("discarding unreadable cart snapshot").Len())

	res, err := svc.Add(ctx, "anon:bad", Item{ID: 1}, 1)
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
}

func TestService_StoreFailurePropagates(t *testing.T) {
	boom := errors.New("store down")
	svc := newTestService(failingStore{err: boom}, nil)

	_, err := svc.Get(context.Background(), "anon:x")
	assert.ErrorIs(t, err, boom)
	_, err = svc.Add(context.Background(), "anon:x", Item{ID: 1}, 1)
	assert.ErrorIs(t, err, boom)
}

func TestService_OwnersAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewMemoryStore(), nil)

	_, err := svc.Add(ctx, "anon:a", Item{ID: 1}, 1)
	require.NoError(t, err)

	lines, err := svc.Get(ctx, "anon:b")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestService_RejectsOversizedQuantity(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewMemoryStore(), nil)

	_, err := svc.Add(ctx, "anon:x", Item{ID: 1}, MaxLineQuantity+1)
	assert.ErrorIs(t, err, ErrQuantityTooLarge)

	_, err = svc.Add(ctx, "anon:x", Item{ID: 1}, MaxLineQuantity)
	require.NoError(t, err)
	_, err = svc.Update(ctx, "anon:x", 1, MaxLineQuantity+1)
	assert.ErrorIs(t, err, ErrQuantityTooLarge)

	res, err := svc.Add(ctx, "anon:x", Item{ID: 1}, 5)
	require.NoError(t, err)
	assert.Equal(t, MaxLineQuantity, res.Items[0].Quantity)
}

func TestService_DrainHoldsOwnerLock(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewMemoryStore(), nil)
	_, err := svc.Add(ctx, "user:9", Item{ID: 1}, 1)
	require.NoError(t, err)

	added := make(chan error, 1)
	var drained []Line
	err = svc.Drain(ctx, "user:9", func(lines []Line) error {
		drained = lines
		go func() {
			_, err := svc.Add(ctx, "user:9", Item{ID: 3}, 1)
			added <- err
		}()
		select {
		case <-added:
			t.Error("add completed while the cart was being drained")
		case <-time.After(50 * time.Millisecond):
		}
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, <-added)
	assert.Equal(t, []int{1}, IDs(drained))

	lines, err := svc.Get(ctx, "user:9")
	require.NoError(t, err)
	assert.Equal(t, []int{3}, IDs(lines), "the add that waited on the drain lands in the fresh cart")
}

func TestService_DrainKeepsCartWhenFnFails(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewMemoryStore(), nil)
	_, err := svc.Add(ctx, "user:9", Item{ID: 1}, 2)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = svc.Drain(ctx, "user:9", func([]Line) error { return boom })
	assert.ErrorIs(t, err, boom)

	lines, err := svc.Get(ctx, "user:9")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, IDs(lines))
}

func TestService_DrainReportsDeleteFailure(t *testing.T) {
	svc := newTestService(failingStore{err: ErrSnapshotNotFound}, nil)
	err := svc.Drain(context.Background(), "user:9", func([]Line) error { return nil })
	assert.ErrorIs(t, err, ErrCartNotCleared)
}
