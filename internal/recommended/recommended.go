package recommended

import (
	"context"

	"github.com/wichananm65/pet-shop-storefront/internal/product"
)

const (
	ReasonBoughtTogether  = "bought together"
	ReasonBrowsingHistory = "browsing history"
	ReasonSameTag         = "same tag"
	ReasonSameCategory    = "same category"
	ReasonServer          = "server"
)

const (
	DefaultMinRecommendations = 5
	DefaultMaxRecommendations = 10
)

// reasonRank orders ties on score; unknown reasons sort last.
var reasonRank = map[string]int{
	ReasonBoughtTogether:  0,
	ReasonBrowsingHistory: 1,
	ReasonSameTag:         2,
	ReasonSameCategory:    3,
	ReasonServer:          4,
}

// Recommendation is one ranked suggestion for the storefront.
type Recommendation struct {
	Product product.Product `json:"product"`
	Reason  string          `json:"reason"`
	Score   float64         `json:"score"`
}

// Options tune a single Recommend call. Zero min/max use the defaults.
type Options struct {
	BrowsingHistory    []int
	PurchasedIDs       []int
	MinRecommendations int
	MaxRecommendations int
}

func (o Options) withDefaults() Options {
	if o.MaxRecommendations <= 0 {
		o.MaxRecommendations = DefaultMaxRecommendations
	}
	if o.MinRecommendations <= 0 {
		o.MinRecommendations = DefaultMinRecommendations
	}
	if o.MinRecommendations > o.MaxRecommendations {
		o.MinRecommendations = o.MaxRecommendations
	}
	return o
}

// Request is what a Remote recommender is asked.
type Request struct {
	CartIDs         []int `json:"cartIds"`
	BrowsingHistory []int `json:"browsingHistory"`
	PurchasedIDs    []int `json:"purchasedIds"`
}

// Suggestion is one entry returned by a Remote. Reason and Score are optional.
type Suggestion struct {
	ID     int
	Reason string
	Score  *float64
}

// Remote is an external recommendation service. A nil Remote means the capability is absent.
type Remote interface {
	Recommend(ctx context.Context, req Request) ([]Suggestion, error)
}
