package cart

import (
	"errors"

	"github.com/wichananm65/pet-shop-storefront/internal/product"
)

// MaxLineQuantity bounds the quantity of a single cart line.
const MaxLineQuantity = 999

var (
	ErrInvalidItem      = errors.New("invalid cart item")
	ErrNotInCart        = errors.New("product not in cart")
	ErrQuantityTooLarge = errors.New("quantity exceeds 999")
	ErrCartNotCleared   = errors.New("cart not cleared")
)

// Line is one product-quantity entry in the cart. The authoritative list holds at most
// one Line per ID and every Quantity is positive.
type Line struct {
	ID        int          `json:"productId"`
	Name      string       `json:"productName"`
	Price     float64      `json:"productPrice"`
	Quantity  int          `json:"quantity"`
	WeightKg  *float64     `json:"weightKg,omitempty"`
	VolumeCm3 *float64     `json:"volumeCm3,omitempty"`
	Category  string       `json:"category,omitempty"`
	Tags      product.Tags `json:"tags,omitempty"`
}

// Item is what a shopper asks to add. ID is loosely typed because storefront clients send
// numbers, numeric strings, or garbage.
type Item struct {
	ID        any
	Name      string
	Price     float64
	WeightKg  *float64
	VolumeCm3 *float64
	Category  string
	Tags      product.Tags
}

// FromProduct builds an Item priced at the product's current effective price.
func FromProduct(p product.Product) Item {
	return Item{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.EffectivePrice(),
		WeightKg:  p.WeightKg,
		VolumeCm3: p.VolumeCm3,
		Category:  p.Category,
		Tags:      p.Tags,
	}
}

// Notice is the user-facing message attached to a successful mutation.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

const (
	NoticeSuccess = "success"
	NoticeInfo    = "info"
)

// Result is the cart after a mutation plus the message to show.
type Result struct {
	Items  []Line  `json:"items"`
	Notice *Notice `json:"notice,omitempty"`
}

// Totals sums quantities and price × quantity.
func Totals(lines []Line) (quantity int, price float64) {
	for _, l := range lines {
		quantity += l.Quantity
		price += l.Price * float64(l.Quantity)
	}
	return quantity, price
}

// IDs returns the product ids in list order.
func IDs(lines []Line) []int {
	out := make([]int, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.ID)
	}
	return out
}
