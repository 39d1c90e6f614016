package favorite

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrAlreadyFavorite = errors.New("product already in favorites")
	ErrNotFavorite     = errors.New("product not in favorites")
)

// Repository stores favourite product ids per cart owner, oldest first.
type Repository interface {
	Add(ctx context.Context, owner string, productID int) ([]int, error)
	Remove(ctx context.Context, owner string, productID int) ([]int, error)
	List(ctx context.Context, owner string) ([]int, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu   sync.RWMutex
	favs map[string][]int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{favs: make(map[string][]int)}
}

func (r *InMemoryRepository) Add(_ context.Context, owner string, productID int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pid := range r.favs[owner] {
		if pid == productID {
			return nil, ErrAlreadyFavorite
		}
	}
	r.favs[owner] = append(r.favs[owner], productID)
	return copyIDs(r.favs[owner]), nil
}

func (r *InMemoryRepository) Remove(_ context.Context, owner string, productID int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := false
	next := make([]int, 0, len(r.favs[owner]))
	for _, pid := range r.favs[owner] {
		if pid == productID {
			found = true
			continue
		}
		next = append(next, pid)
	}
	if !found {
		return nil, ErrNotFavorite
	}
	r.favs[owner] = next
	return copyIDs(next), nil
}

func (r *InMemoryRepository) List(_ context.Context, owner string) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyIDs(r.favs[owner]), nil
}

func copyIDs(ids []int) []int {
	out := make([]int, len(ids))
	copy(out, ids)
	return out
}
