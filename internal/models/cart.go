package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart represents a customer cart, keyed by an opaque client-held token
// (the storefront has no customer accounts).
type Cart struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Token     string     `json:"token" gorm:"not null;uniqueIndex"`
	Items     []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartItem is a single product line in a cart.
type CartItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CartID    uuid.UUID `json:"cartId" gorm:"type:uuid;not null;index:idx_cart_items_cart_product,unique"`
	ProductID uuid.UUID `json:"productId" gorm:"type:uuid;not null;index:idx_cart_items_cart_product,unique"`
	Quantity  int       `json:"quantity" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AddCartItemRequest adds a product to the cart
type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest changes the quantity of a cart line; zero removes it
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// CartResponse is the cart with product details joined in for display
type CartResponse struct {
	Token    string             `json:"token"`
	Items    []CartItemResponse `json:"items"`
	Subtotal float64            `json:"subtotal"`
}

// CartItemResponse is a cart line with its product resolved
type CartItemResponse struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Price     float64   `json:"price"`
	Unit      string    `json:"unit"`
	Stock     int       `json:"stock"`
	Quantity  int       `json:"quantity"`
	LineTotal float64   `json:"lineTotal"`
}
