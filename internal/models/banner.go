package models

import (
	"time"

	"github.com/google/uuid"
)

// Banner represents a storefront promotional banner managed from the admin
// back-office.
type Banner struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title     string    `json:"title" gorm:"not null"`
	Image     string    `json:"image" gorm:"not null"`
	Link      *string   `json:"link,omitempty"`
	Position  int       `json:"position" gorm:"not null;default:0"`
	IsActive  bool      `json:"isActive" gorm:"not null;default:true;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateBannerRequest is the admin banner-creation payload
type CreateBannerRequest struct {
	Title    string  `json:"title" binding:"required"`
	Image    string  `json:"image" binding:"required"`
	Link     *string `json:"link"`
	Position int     `json:"position"`
	IsActive *bool   `json:"isActive"`
}

// UpdateBannerRequest is the admin banner-update payload; nil fields are left untouched
type UpdateBannerRequest struct {
	Title    *string `json:"title"`
	Image    *string `json:"image"`
	Link     *string `json:"link"`
	Position *int    `json:"position"`
	IsActive *bool   `json:"isActive"`
}
