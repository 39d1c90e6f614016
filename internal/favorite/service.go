package favorite

import (
	"context"
	"errors"

	"github.com/wichananm65/pet-shop-storefront/internal/product"
)

var ErrUnknownProduct = errors.New("unknown product")

type Catalog interface {
	GetByID(id int) (product.Product, error)
	ListByIDs(ids []int) ([]product.Product, error)
}

type Service struct {
	repo    Repository
	catalog Catalog
}

func NewService(repo Repository, catalog Catalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

func (s *Service) AddFavorite(ctx context.Context, owner string, productID int) ([]int, error) {
	if productID <= 0 {
		return nil, ErrUnknownProduct
	}
	if _, err := s.catalog.GetByID(productID); err != nil {
		return nil, ErrUnknownProduct
	}
	return s.repo.Add(ctx, owner, productID)
}

func (s *Service) RemoveFavorite(ctx context.Context, owner string, productID int) ([]int, error) {
	return s.repo.Remove(ctx, owner, productID)
}

// IDs lists the owner's favourite product ids; the recommendation route treats them as
// browsing history.
func (s *Service) IDs(ctx context.Context, owner string) ([]int, error) {
	return s.repo.List(ctx, owner)
}

// GetFavorites returns the favourite products that still exist in the catalog, in the
// order they were added.
func (s *Service) GetFavorites(ctx context.Context, owner string) ([]product.Product, error) {
	ids, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	products, err := s.catalog.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
