package models

import (
	"time"

	"github.com/google/uuid"
)

// TimeSlot tags a product as available during a part of the day.
type TimeSlot string

const (
	TimeSlotMorning   TimeSlot = "MORNING"
	TimeSlotAfternoon TimeSlot = "AFTERNOON"
	TimeSlotEvening   TimeSlot = "EVENING"
	TimeSlotNight     TimeSlot = "NIGHT"
	TimeSlotAllDay    TimeSlot = "ALL_DAY"
)

// DefaultUnit is applied to products created without an explicit unit.
const DefaultUnit = "1 piece"

// Product represents a catalog product.
// Product names are treated as unique case-insensitively by the inventory
// reconciliation flow; slugs are globally unique.
type Product struct {
	ID            uuid.UUID   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name          string      `json:"name" gorm:"not null;index"`
	Slug          string      `json:"slug" gorm:"not null;uniqueIndex"`
	CategoryID    uuid.UUID   `json:"categoryId" gorm:"type:uuid;not null;index"`
	Description   *string     `json:"description,omitempty"`
	Price         float64     `json:"price" gorm:"not null;default:0"`
	OriginalPrice *float64    `json:"originalPrice,omitempty"`
	Discount      int         `json:"discount" gorm:"not null;default:0"`
	Stock         int         `json:"stock" gorm:"not null;default:0"`
	Unit          string      `json:"unit" gorm:"not null;default:'1 piece'"`
	IsActive      bool        `json:"isActive" gorm:"not null;default:true;index"`
	IsFeatured    bool        `json:"isFeatured" gorm:"not null;default:false;index"`
	Images        StringArray `json:"images" gorm:"type:jsonb;default:'[]'"`
	Tags          StringArray `json:"tags" gorm:"type:jsonb;default:'[]'"`
	TimeSlots     StringArray `json:"timeSlots" gorm:"type:jsonb;default:'[\"ALL_DAY\"]'"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// ComputeDiscount returns the derived discount percentage for a price pair.
// Zero when originalPrice is absent or does not exceed price.
func ComputeDiscount(price float64, originalPrice *float64) int {
	if originalPrice == nil || *originalPrice <= price || *originalPrice <= 0 {
		return 0
	}
	return int((*originalPrice-price)/(*originalPrice)*100 + 0.5)
}

// CreateProductRequest is the admin product-creation payload
type CreateProductRequest struct {
	Name          string    `json:"name" binding:"required"`
	CategoryID    uuid.UUID `json:"categoryId" binding:"required"`
	Description   *string   `json:"description"`
	Price         float64   `json:"price" binding:"required"`
	OriginalPrice *float64  `json:"originalPrice"`
	Stock         int       `json:"stock"`
	Unit          string    `json:"unit"`
	IsActive      *bool     `json:"isActive"`
	IsFeatured    *bool     `json:"isFeatured"`
	Images        []string  `json:"images"`
	Tags          []string  `json:"tags"`
	TimeSlots     []string  `json:"timeSlots"`
}

// UpdateProductRequest is the admin product-update payload; nil fields are left untouched
type UpdateProductRequest struct {
	Name          *string    `json:"name"`
	CategoryID    *uuid.UUID `json:"categoryId"`
	Description   *string    `json:"description"`
	Price         *float64   `json:"price"`
	OriginalPrice *float64   `json:"originalPrice"`
	Stock         *int       `json:"stock"`
	Unit          *string    `json:"unit"`
	IsActive      *bool      `json:"isActive"`
	IsFeatured    *bool      `json:"isFeatured"`
	Images        []string   `json:"images"`
	Tags          []string   `json:"tags"`
	TimeSlots     []string   `json:"timeSlots"`
}

// ListProductsRequest carries catalog listing filters
type ListProductsRequest struct {
	CategoryID *uuid.UUID `json:"categoryId"`
	Search     string     `json:"search"`
	TimeSlot   string     `json:"timeSlot"`
	Featured   *bool      `json:"featured"`
	Active     *bool      `json:"active"`
	SortBy     string     `json:"sortBy"`
	SortOrder  string     `json:"sortOrder"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
}
