package order

import (
	"errors"

	"github.com/wichananm65/pet-shop-storefront/internal/cart"
)

const StatusPlaced = "placed"

var (
	ErrEmptyCart   = errors.New("cart is empty")
	ErrInvalidUser = errors.New("invalid user")
)

// Order represents a purchase made by a user. Lines is the cart as it was at checkout.
type Order struct {
	OrderID       int         `json:"orderID"`
	UserID        int         `json:"userID"`
	Lines         []cart.Line `json:"lines"`
	Quantity      int         `json:"quantity"`
	Boxes         int         `json:"boxes"`
	TotalPrice    float64     `json:"totalPrice"`
	ShippingPrice float64     `json:"shippingPrice"`
	GrandPrice    float64     `json:"grandPrice"`
	Status        string      `json:"status"`
	CreatedAt     string      `json:"createdAt"`
	UpdatedAt     string      `json:"updatedAt"`
}
