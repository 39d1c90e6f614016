package recommended

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/pet-shop-storefront/internal/cart"
	"github.com/wichananm65/pet-shop-storefront/internal/product"
)

func testCatalog() []product.Product {
	return []product.Product{
		{ID: 1, Name: "Kibble", Price: 590, Category: "Food", Tags: product.Tags{"cat", "food"}},
		{ID: 2, Name: "Bowl", Price: 420, Category: "Supplies", Tags: product.Tags{"bowl", "food"}},
		{ID: 3, Name: "Treats", Price: 120, Category: "Food", Tags: product.Tags{"cat", "snack"}},
		{ID: 4, Name: "Leash", Price: 150, Category: "Supplies", Tags: product.Tags{"dog"}},
		{ID: 5, Name: "Litter", Price: 250, Category: "Bathroom", Tags: product.Tags{"cat", "litter"}},
		{ID: 6, Name: "Ball", Price: 60, Category: "Toys", Tags: product.Tags{"dog", "toy"}},
		{ID: 7, Name: "Brush", Price: 90, Category: "Food", Tags: product.Tags{"cat", "grooming"}},
	}
}

func lineFor(p product.Product) cart.Line {
	return cart.Line{ID: p.ID, Name: p.Name, Price: p.Price, Quantity: 1, Category: p.Category, Tags: p.Tags}
}

func ids(recs []Recommendation) []int {
	out := make([]int, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Product.ID)
	}
	return out
}

func newTestScorer(baskets [][]int, remote Remote, seed int64) *Scorer {
	return NewScorer(ScorerDeps{Baskets: baskets, Remote: remote, Rand: rand.New(rand.NewSource(seed))})
}

func TestRecommend_BoughtTogether(t *testing.T) {
	catalog := testCatalog()
	s := newTestScorer([][]int{{1, 2, 3}, {1, 3}, {2, 4}}, nil, 1)

	recs := s.Recommend(context.Background(), []cart.Line{lineFor(catalog[0])}, catalog, Options{MinRecommendations: 1})

	require.Equal(t, []int{3, 2}, ids(recs))
	assert.Equal(t, ReasonBoughtTogether, recs[0].Reason)
	assert.Equal(t, 2.0, recs[0].Score)
	assert.Equal(t, 1.0, recs[1].Score)
}

func TestRecommend_BrowsingHistoryOverlap(t *testing.T) {
	catalog := testCatalog()
	s := newTestScorer([][]int{}, nil, 1)

	recs := s.Recommend(context.Background(), []cart.Line{lineFor(catalog[0])}, catalog,
		Options{BrowsingHistory: []int{6}, MinRecommendations: 1})

	require.Equal(t, []int{6, 4}, ids(recs))
	assert.Equal(t, ReasonBrowsingHistory, recs[0].Reason)
	assert.Equal(t, 2.0, recs[0].Score)
}

func TestRecommend_ReasonBreaksScoreTies(t *testing.T) {
	catalog := testCatalog()
	s := newTestScorer([][]int{{1, 3}}, nil, 1)

	recs := s.Recommend(context.Background(), []cart.Line{lineFor(catalog[0])}, catalog,
		Options{BrowsingHistory: []int{5}, MinRecommendations: 1})

	require.Equal(t, []int{5, 3, 7}, ids(recs))
	assert.Equal(t, []string{ReasonBrowsingHistory, ReasonBoughtTogether, ReasonBrowsingHistory},
		[]string{recs[0].Reason, recs[1].Reason, recs[2].Reason})
}

func TestRecommend_NameBreaksTiesCaseSensitively(t *testing.T) {
	catalog := append(testCatalog(),
		product.Product{ID: 10, Name: "apple", Price: 30, Category: "Treats"},
		product.Product{ID: 11, Name: "Zebra", Price: 80, Category: "Toys"},
	)
	s := newTestScorer([][]int{{1, 10}, {1, 11}}, nil, 1)

	recs := s.Recommend(context.Background(), []cart.Line{lineFor(catalog[0])}, catalog, Options{MinRecommendations: 1})

	require.Equal(t, []int{11, 10}, ids(recs))
	assert.Equal(t, recs[0].Score, recs[1].Score)
	assert.Equal(t, recs[0].Reason, recs[1].Reason)
}

func TestRank_NameOrderIsByteWise(t *testing.T) {
	recs := []Recommendation{
		{Product: product.Product{ID: 1, Name: "apple"}, Reason: ReasonSameTag, Score: 1},
		{Product: product.Product{ID: 2, Name: "Zebra"}, Reason: ReasonSameTag, Score: 1},
		{Product: product.Product{ID: 3, Name: "Apple"}, Reason: ReasonSameTag, Score: 1},
	}
	rank(recs)
	assert.Equal(t, []int{3, 2, 1}, ids(recs))
}

func TestRecommend_SameCategoryBackfill(t *testing.T) {
	catalog := testCatalog()
	s := newTestScorer([][]int{}, nil, 1)

	recs := s.Recommend(context.Background(), []cart.Line{lineFor(catalog[0])}, catalog, Options{})

	require.Equal(t, []int{7, 3}, ids(recs), "flat scores fall back to name order")
	for _, r := range recs {
		assert.Equal(t, ReasonSameCategory, r.Reason)
		assert.Equal(t, 0.5, r.Score)
	}
}

func TestRecommend_BackfillStopsAtMin(t *testing.T) {
	catalog := testCatalog()
	s := newTestScorer([][]int{{1, 2}}, nil, 1)

	recs := s.Recommend(context.Background(), []cart.Line{lineFor(catalog[0])}, catalog,
		Options{MinRecommendations: 2, MaxRecommendations: 2})
	require.Len(t, recs, 2)
	assert.Equal(t, 2, recs[0].Product.ID)
	assert.Equal(t, ReasonSameCategory, recs[1].Reason)
}

func TestRecommend_EmptyCartTopTags(t *testing.T) {
	catalog := testCatalog()
	first := newTestScorer(nil, nil, 99).Recommend(context.Background(), nil, catalog, Options{})
	second := newTestScorer(nil, nil, 99).Recommend(context.Background(), nil, catalog, Options{})

	assert.Equal(t, first, second, "a seeded source gives a reproducible shuffle")
	assert.GreaterOrEqual(t, len(first), 5)
	assert.LessOrEqual(t, len(first), 6)

	byTag := map[string]int{}
	for _, r := range first {
		assert.Equal(t, ReasonSameTag, r.Reason)
		assert.Equal(t, 1.0, r.Score)
		if r.Product.Tags.Has("dog") {
			byTag["dog"]++
		}
	}
	assert.Equal(t, 2, byTag["dog"])

	limited := newTestScorer(nil, nil, 3).Recommend(context.Background(), nil, catalog, Options{MaxRecommendations: 3})
	assert.Len(t, limited, 3)
}

func TestRecommend_EmptyCartHistorySeeds(t *testing.T) {
	catalog := testCatalog()
	recs := newTestScorer(nil, nil, 5).Recommend(context.Background(), nil, catalog, Options{BrowsingHistory: []int{4}})

	assert.ElementsMatch(t, []int{4, 6}, ids(recs))
	assert.Equal(t, []int{6, 4}, ids(recs), "ties sort by name")
}

func TestTopTags(t *testing.T) {
	assert.Equal(t, []string{"cat", "dog", "food"}, topTags(testCatalog(), 3))
	assert.Empty(t, topTags(nil, 3))
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Equal(t, 5, o.MinRecommendations)
	assert.Equal(t, 10, o.MaxRecommendations)

	o = Options{MinRecommendations: 8, MaxRecommendations: 3}.withDefaults()
	assert.Equal(t, 3, o.MinRecommendations)
}

func TestRecommend_NeverReturnsCartOrPurchased(t *testing.T) {
	catalog := testCatalog()[:6]
	cartLines := []cart.Line{lineFor(catalog[1])}
	for seed := int64(0); seed < 50; seed++ {
		s := newTestScorer(DefaultBaskets(), nil, seed)
		for _, lines := range [][]cart.Line{cartLines, nil} {
			for _, history := range [][]int{nil, {1, 2, 5}, {6}} {
				recs := s.Recommend(context.Background(), lines, catalog,
					Options{BrowsingHistory: history, PurchasedIDs: []int{5}})
				seen := map[int]bool{}
				for _, r := range recs {
					if lines != nil {
						require.NotEqual(t, 2, r.Product.ID)
					}
					require.NotEqual(t, 5, r.Product.ID)
					require.False(t, seen[r.Product.ID], "duplicate %d", r.Product.ID)
					seen[r.Product.ID] = true
				}
			}
		}
	}
}

type fakeRemote struct {
	suggestions []Suggestion
	err         error
	calls       int
	got         Request
}

func (f *fakeRemote) Recommend(_ context.Context, req Request) ([]Suggestion, error) {
	f.calls++
	f.got = req
	return f.suggestions, f.err
}

func score(v float64) *float64 { return &v }

func TestRecommend_RemoteUsedInOrder(t *testing.T) {
	catalog := testCatalog()
	remote := &fakeRemote{suggestions: []Suggestion{
		{ID: 6, Reason: "trending", Score: score(0.9)},
		{ID: 1},
		{ID: 5},
		{ID: 6},
		{ID: 42},
		{ID: 3},
	}}
	s := newTestScorer(nil, remote, 1)

	recs := s.Recommend(context.Background(), []cart.Line{lineFor(catalog[0])}, catalog, Options{PurchasedIDs: []int{5}})

	require.Equal(t, []int{6, 3}, ids(recs))
	assert.Equal(t, "trending", recs[0].Reason)
	assert.Equal(t, 0.9, recs[0].Score)
	assert.Equal(t, ReasonServer, recs[1].Reason)
	assert.Equal(t, 0.0, recs[1].Score)
	assert.Equal(t, []int{1}, remote.got.CartIDs)
	assert.Equal(t, []int{5}, remote.got.PurchasedIDs)
}

func TestRecommend_RemoteTruncatesToMax(t *testing.T) {
	catalog := testCatalog()
	remote := &fakeRemote{suggestions: []Suggestion{{ID: 2}, {ID: 3}, {ID: 4}}}
	recs := newTestScorer(nil, remote, 1).Recommend(context.Background(), nil, catalog, Options{MaxRecommendations: 2})
	assert.Equal(t, []int{2, 3}, ids(recs))
}

func TestRecommend_RemoteFailureFallsBack(t *testing.T) {
	catalog := testCatalog()
	lines := []cart.Line{lineFor(catalog[0])}
	local := newTestScorer([][]int{{1, 3}}, nil, 1).Recommend(context.Background(), lines, catalog, Options{})

	for name, remote := range map[string]*fakeRemote{
		"error":       {err: errors.New("connection refused")},
		"empty":       {},
		"all-unknown": {suggestions: []Suggestion{{ID: 99}, {ID: 1}}},
	} {
		t.Run(name, func(t *testing.T) {
			got := newTestScorer([][]int{{1, 3}}, remote, 1).Recommend(context.Background(), lines, catalog, Options{})
			assert.Equal(t, local, got)
			assert.Equal(t, 1, remote.calls)
		})
	}
}

type blockingRemote struct {
	release chan struct{}
}

func (b blockingRemote) Recommend(context.Context, Request) ([]Suggestion, error) {
	<-b.release
	return []Suggestion{{ID: 4}}, nil
}

func TestRecommend_CancelledContextDiscardsRemote(t *testing.T) {
	catalog := testCatalog()
	remote := blockingRemote{release: make(chan struct{})}
	defer close(remote.release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	recs := newTestScorer([][]int{{1, 3}}, remote, 1).Recommend(ctx, []cart.Line{lineFor(catalog[0])}, catalog, Options{MinRecommendations: 1})
	assert.Equal(t, []int{3}, ids(recs))
}
