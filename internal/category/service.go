package category

import (
	"sort"

	"github.com/wichananm65/pet-shop-storefront/internal/product"
)

const tagsPerCategory = 5

type Catalog interface {
	List() []product.Product
}

// Service derives category and tag facets from the catalog.
type Service struct {
	catalog Catalog
}

func NewService(catalog Catalog) *Service {
	return &Service{catalog: catalog}
}

// List returns up to limit categories: the known storefront categories first, in their
// usual order, then any other category found in the catalog by name.
func (s *Service) List(limit int) []Item {
	products := s.catalog.List()

	counts := map[string]int{}
	tagFreq := map[string]map[string]int{}
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		counts[p.Category]++
		if tagFreq[p.Category] == nil {
			tagFreq[p.Category] = map[string]int{}
		}
		for _, t := range p.Tags {
			tagFreq[p.Category][t]++
		}
	}

	names := make([]string, 0, len(product.AllowedCategories)+len(counts))
	known := map[string]bool{}
	for _, name := range product.AllowedCategories {
		known[name] = true
		names = append(names, name)
	}
	extra := make([]string, 0)
	for name := range counts {
		if !known[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	names = append(names, extra...)

	out := make([]Item, 0, len(names))
	for _, name := range names {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, Item{Name: name, ProductCount: counts[name], Tags: rankTags(tagFreq[name], tagsPerCategory)})
	}
	return out
}

// Tags returns up to limit catalog tags, most used first.
func (s *Service) Tags(limit int) []TagCount {
	freq := map[string]int{}
	for _, p := range s.catalog.List() {
		for _, t := range p.Tags {
			freq[t]++
		}
	}
	out := make([]TagCount, 0, len(freq))
	for _, t := range rankTags(freq, limit) {
		out = append(out, TagCount{Tag: t, Count: freq[t]})
	}
	return out
}

// rankTags orders tags by frequency, then name. limit <= 0 keeps all.
func rankTags(freq map[string]int, limit int) []string {
	tags := make([]string, 0, len(freq))
	for t := range freq {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool {
		if freq[tags[i]] != freq[tags[j]] {
			return freq[tags[i]] > freq[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if limit > 0 && len(tags) > limit {
		tags = tags[:limit]
	}
	return tags
}
