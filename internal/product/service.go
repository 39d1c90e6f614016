package product

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List() []Product {
	return s.repo.List()
}

// ListByCategory filters the catalog by exact category name.
func (s *Service) ListByCategory(category string) []Product {
	all := s.repo.List()
	out := make([]Product, 0)
	for _, p := range all {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

func (s *Service) GetByID(id int) (Product, error) {
	return s.repo.GetByID(id)
}

func (s *Service) ListByIDs(ids []int) ([]Product, error) {
	return s.repo.ListByIDs(ids)
}

func (s *Service) Create(p Product) (Product, error) {
	p.Tags = NormalizeTags(p.Tags...)
	return s.repo.Create(p)
}

func (s *Service) Update(id int, p Product) (Product, error) {
	p.Tags = NormalizeTags(p.Tags...)
	return s.repo.Update(id, p)
}

func (s *Service) Delete(id int) error {
	return s.repo.Delete(id)
}

// ResetProducts replaces all products with the given list (used for dev / seeding).
func (s *Service) ResetProducts(products []Product) error {
	return s.repo.Reset(products)
}
