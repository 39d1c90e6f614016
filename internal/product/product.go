package product

// Product is a catalog entry. Optional packing attributes stay nil when unknown so the
// delivery packer can tell "zero" from "not measured".
type Product struct {
	ID          int      `json:"productId"`
	Name        string   `json:"productName"`
	Price       float64  `json:"productPrice"`
	SalePrice   *float64 `json:"salePrice,omitempty"`
	Description string   `json:"productDesc"`
	Category    string   `json:"category,omitempty"`
	Tags        Tags     `json:"tags,omitempty"`
	WeightKg    *float64 `json:"weightKg,omitempty"`
	VolumeCm3   *float64 `json:"volumeCm3,omitempty"`
	CreatedAt   *string  `json:"createdAt,omitempty"`
	UpdatedAt   *string  `json:"updatedAt,omitempty"`
}

// EffectivePrice is the price a shopper pays right now.
func (p Product) EffectivePrice() float64 {
	if p.SalePrice != nil && *p.SalePrice >= 0 && *p.SalePrice < p.Price {
		return *p.SalePrice
	}
	return p.Price
}

// AllowedCategories contains the supported product categories used across the app.
var AllowedCategories = []string{
	"Animal Food",
	"Pet Supplies",
	"Clothes and accessories",
	"Cleaning equipment",
	"Sand and bathroom",
	"Hygiene care",
	"Cat snacks",
	"Cat exercise",
}
