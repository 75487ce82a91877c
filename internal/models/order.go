package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the delivery lifecycle of an order
type OrderStatus string

const (
	OrderStatusPlaced         OrderStatus = "PLACED"
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusPacked         OrderStatus = "PACKED"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
)

// PaymentStatus represents the payment lifecycle of an order
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// PaymentMethod is how the customer pays
type PaymentMethod string

const (
	PaymentMethodCOD      PaymentMethod = "COD"
	PaymentMethodRazorpay PaymentMethod = "RAZORPAY"
)

// Order represents a customer order.
type Order struct {
	ID              uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderNumber     string        `json:"orderNumber" gorm:"not null;uniqueIndex"`
	CustomerName    string        `json:"customerName" gorm:"not null"`
	Phone           string        `json:"phone" gorm:"not null;index"`
	Email           *string       `json:"email,omitempty"`
	Address         string        `json:"address" gorm:"not null"`
	Pincode         *string       `json:"pincode,omitempty"`
	Items           []OrderItem   `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Subtotal        float64       `json:"subtotal" gorm:"not null"`
	DeliveryFee     float64       `json:"deliveryFee" gorm:"not null;default:0"`
	Total           float64       `json:"total" gorm:"not null"`
	Status          OrderStatus   `json:"status" gorm:"not null;default:'PLACED';index"`
	PaymentStatus   PaymentStatus `json:"paymentStatus" gorm:"not null;default:'PENDING';index"`
	PaymentMethod   PaymentMethod `json:"paymentMethod" gorm:"not null;default:'COD'"`
	RazorpayOrderID *string       `json:"razorpayOrderId,omitempty"`
	Notes           *string       `json:"notes,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// OrderItem is a product line frozen at checkout time. Name/price/unit are
// snapshots so later catalog edits don't rewrite order history.
type OrderItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID   uuid.UUID `json:"orderId" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `json:"productId" gorm:"type:uuid;not null"`
	Name      string    `json:"name" gorm:"not null"`
	Price     float64   `json:"price" gorm:"not null"`
	Unit      string    `json:"unit" gorm:"not null"`
	Quantity  int       `json:"quantity" gorm:"not null"`
}

// PlaceOrderRequest is the checkout payload
type PlaceOrderRequest struct {
	CustomerName  string                  `json:"customerName" binding:"required"`
	Phone         string                  `json:"phone" binding:"required"`
	Email         *string                 `json:"email"`
	Address       string                  `json:"address" binding:"required"`
	Pincode       *string                 `json:"pincode"`
	PaymentMethod PaymentMethod           `json:"paymentMethod" binding:"required"`
	Items         []PlaceOrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes         *string                 `json:"notes"`
}

// PlaceOrderItemRequest is a single checkout line
type PlaceOrderItemRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// UpdateOrderStatusRequest moves an order along its lifecycle
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

// ListOrdersRequest carries admin order listing filters
type ListOrdersRequest struct {
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	Phone         string        `json:"phone"`
	Page          int           `json:"page"`
	Limit         int           `json:"limit"`
}

// OrderStats aggregates counts for the admin dashboard
type OrderStats struct {
	TotalOrders     int64   `json:"totalOrders"`
	PlacedOrders    int64   `json:"placedOrders"`
	DeliveredOrders int64   `json:"deliveredOrders"`
	CancelledOrders int64   `json:"cancelledOrders"`
	TotalRevenue    float64 `json:"totalRevenue"`
}
