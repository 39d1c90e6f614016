package recommended

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wichananm65/pet-shop-storefront/internal/cart"
	"github.com/wichananm65/pet-shop-storefront/internal/logging"
	"github.com/wichananm65/pet-shop-storefront/internal/metrics"
	"github.com/wichananm65/pet-shop-storefront/internal/product"
)

const (
	sameCategoryScore = 0.5
	sameTagScore      = 1.0
	perTagLimit       = 2
	topTagCount       = 3
)

type ScorerDeps struct {
	Baskets [][]int
	Remote  Remote
	// Rand drives the shuffle on the empty-cart path. Nil seeds from the clock.
	Rand    *rand.Rand
	Logger  *zap.Logger
	Metrics *metrics.Recorder
}

// Scorer ranks catalog products for a cart. It prefers a Remote when one is configured
// and answers, and otherwise uses the local affinity rules.
type Scorer struct {
	baskets [][]int
	remote  Remote
	logger  *zap.Logger
	metrics *metrics.Recorder

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewScorer(deps ScorerDeps) *Scorer {
	if deps.Baskets == nil {
		deps.Baskets = DefaultBaskets()
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Scorer{
		baskets: deps.Baskets,
		remote:  deps.Remote,
		rng:     deps.Rand,
		logger:  logging.OrNop(deps.Logger),
		metrics: deps.Metrics,
	}
}

// Recommend never fails: remote problems fall back to the local ranking. Products in the
// cart or in opts.PurchasedIDs are never returned and no product appears twice.
func (s *Scorer) Recommend(ctx context.Context, lines []cart.Line, catalog []product.Product, opts Options) []Recommendation {
	opts = opts.withDefaults()
	cartIDs := cart.IDs(lines)

	excluded := make(map[int]bool, len(cartIDs)+len(opts.PurchasedIDs))
	for _, id := range cartIDs {
		excluded[id] = true
	}
	for _, id := range opts.PurchasedIDs {
		excluded[id] = true
	}
	byID := make(map[int]product.Product, len(catalog))
	for _, p := range catalog {
		if _, ok := byID[p.ID]; !ok {
			byID[p.ID] = p
		}
	}

	local := s.local(lines, catalog, byID, excluded, opts)

	if s.remote != nil {
		req := Request{CartIDs: cartIDs, BrowsingHistory: opts.BrowsingHistory, PurchasedIDs: opts.PurchasedIDs}
		if out, ok := s.fromRemote(ctx, req, byID, excluded, opts.MaxRecommendations); ok {
			s.metrics.RecommendationServed("remote")
			return out
		}
	}
	s.metrics.RecommendationServed("local")
	return local
}

type remoteReply struct {
	suggestions []Suggestion
	err         error
}

func (s *Scorer) fromRemote(ctx context.Context, req Request, byID map[int]product.Product, excluded map[int]bool, limit int) ([]Recommendation, bool) {
	replies := make(chan remoteReply, 1)
	go func() {
		sug, err := s.remote.Recommend(ctx, req)
		replies <- remoteReply{suggestions: sug, err: err}
	}()

	var reply remoteReply
	select {
	case <-ctx.Done():
		s.fallback("cancelled", ctx.Err())
		return nil, false
	case reply = <-replies:
	}
	if reply.err != nil {
		s.fallback("error", reply.err)
		return nil, false
	}

	out := make([]Recommendation, 0, len(reply.suggestions))
	seen := make(map[int]bool, len(reply.suggestions))
	for _, sug := range reply.suggestions {
		p, ok := byID[sug.ID]
		if !ok || excluded[sug.ID] || seen[sug.ID] {
			continue
		}
		seen[sug.ID] = true
		rec := Recommendation{Product: p, Reason: sug.Reason, Score: 0}
		if rec.Reason == "" {
			rec.Reason = ReasonServer
		}
		if sug.Score != nil {
			rec.Score = *sug.Score
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	if len(out) == 0 {
		s.fallback("empty", nil)
		return nil, false
	}
	return out, true
}

func (s *Scorer) fallback(reason string, err error) {
	s.metrics.RemoteFallback(reason)
	s.logger.Debug("remote recommender unavailable, using local ranking", zap.String("reason", reason), zap.Error(err))
}

func (s *Scorer) local(lines []cart.Line, catalog []product.Product, byID map[int]product.Product, excluded map[int]bool, opts Options) []Recommendation {
	picked := newPicker(excluded)
	if len(lines) > 0 {
		s.boughtTogether(picked, lines, byID)
		if len(opts.BrowsingHistory) > 0 {
			browsingOverlap(picked, catalog, historyTags(opts.BrowsingHistory, byID))
		}
		if len(picked.out) < opts.MinRecommendations {
			sameCategory(picked, lines, catalog, opts.MinRecommendations)
		}
	} else {
		seeds := historyTags(opts.BrowsingHistory, byID)
		if len(seeds) == 0 {
			seeds = topTags(catalog, topTagCount)
		}
		s.sameTag(picked, catalog, seeds, opts.MaxRecommendations)
	}

	out := picked.out
	rank(out)
	if len(out) > opts.MaxRecommendations {
		out = out[:opts.MaxRecommendations]
	}
	return out
}

func (s *Scorer) boughtTogether(picked *picker, lines []cart.Line, byID map[int]product.Product) {
	inCart := make(map[int]bool, len(lines))
	for _, l := range lines {
		inCart[l.ID] = true
	}

	counts := make(map[int]int)
	order := make([]int, 0)
	for _, basket := range s.baskets {
		shared := false
		for _, id := range basket {
			if inCart[id] {
				shared = true
				break
			}
		}
		if !shared {
			continue
		}
		seen := make(map[int]bool, len(basket))
		for _, id := range basket {
			if seen[id] {
				continue
			}
			seen[id] = true
			if _, ok := counts[id]; !ok {
				order = append(order, id)
			}
			counts[id]++
		}
	}
	for _, id := range order {
		if p, ok := byID[id]; ok {
			picked.add(p, ReasonBoughtTogether, float64(counts[id]))
		}
	}
}

func browsingOverlap(picked *picker, catalog []product.Product, tags []string) {
	if len(tags) == 0 {
		return
	}
	wanted := make(map[string]bool, len(tags))
	for _, t := range tags {
		wanted[t] = true
	}
	for _, p := range catalog {
		shared := 0
		for _, t := range p.Tags {
			if wanted[t] {
				shared++
			}
		}
		if shared > 0 {
			picked.add(p, ReasonBrowsingHistory, float64(shared))
		}
	}
}

func sameCategory(picked *picker, lines []cart.Line, catalog []product.Product, floor int) {
	categories := make(map[string]bool, len(lines))
	for _, l := range lines {
		if l.Category != "" {
			categories[l.Category] = true
		}
	}
	for _, p := range catalog {
		if len(picked.out) >= floor {
			return
		}
		if categories[p.Category] {
			picked.add(p, ReasonSameCategory, sameCategoryScore)
		}
	}
}

func (s *Scorer) sameTag(picked *picker, catalog []product.Product, seeds []string, limit int) {
	for _, tag := range seeds {
		if len(picked.out) >= limit {
			return
		}
		candidates := make([]product.Product, 0)
		for _, p := range catalog {
			if p.Tags.Has(tag) && picked.eligible(p.ID) {
				candidates = append(candidates, p)
			}
		}
		s.shuffle(candidates)
		taken := 0
		for _, p := range candidates {
			if taken == perTagLimit || len(picked.out) >= limit {
				break
			}
			if picked.add(p, ReasonSameTag, sameTagScore) {
				taken++
			}
		}
	}
}

func (s *Scorer) shuffle(ps []product.Product) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	s.rng.Shuffle(len(ps), func(i, j int) { ps[i], ps[j] = ps[j], ps[i] })
}

// historyTags returns the tags of the browsed products in first-seen order.
func historyTags(history []int, byID map[int]product.Product) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, id := range history {
		p, ok := byID[id]
		if !ok {
			continue
		}
		for _, t := range p.Tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// topTags returns the n most frequent catalog tags, ties broken lexically.
func topTags(catalog []product.Product, n int) []string {
	freq := make(map[string]int)
	for _, p := range catalog {
		for _, t := range p.Tags {
			freq[t]++
		}
	}
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
	if len(tags) > n {
		tags = tags[:n]
	}
	return tags
}

func rank(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if ra, rb := rankOf(a.Reason), rankOf(b.Reason); ra != rb {
			return ra < rb
		}
		return a.Product.Name < b.Product.Name
	})
}

func rankOf(reason string) int {
	if r, ok := reasonRank[reason]; ok {
		return r
	}
	return len(reasonRank)
}

// picker collects recommendations, refusing excluded and already picked products.
type picker struct {
	excluded map[int]bool
	seen     map[int]bool
	out      []Recommendation
}

func newPicker(excluded map[int]bool) *picker {
	return &picker{excluded: excluded, seen: make(map[int]bool), out: make([]Recommendation, 0)}
}

func (p *picker) eligible(id int) bool {
	return !p.excluded[id] && !p.seen[id]
}

func (p *picker) add(prod product.Product, reason string, score float64) bool {
	if !p.eligible(prod.ID) {
		return false
	}
	p.seen[prod.ID] = true
	p.out = append(p.out, Recommendation{Product: prod, Reason: reason, Score: score})
	return true
}
