package models

import (
	"time"

	"github.com/google/uuid"
)

// Category represents a catalog category. Categories may be nested one level
// via ParentID; hierarchical names in spreadsheet imports ("Dairy > Milk")
// resolve to the leaf segment.
type Category struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name         string     `json:"name" gorm:"not null;index"`
	Slug         string     `json:"slug" gorm:"not null;uniqueIndex"`
	ParentID     *uuid.UUID `json:"parentId,omitempty" gorm:"type:uuid;index"`
	Image        *string    `json:"image,omitempty"`
	DisplayOrder int        `json:"displayOrder" gorm:"not null;default:0"`
	IsActive     bool       `json:"isActive" gorm:"not null;default:true;index"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// CreateCategoryRequest is the admin category-creation payload
type CreateCategoryRequest struct {
	Name         string     `json:"name" binding:"required"`
	ParentID     *uuid.UUID `json:"parentId"`
	Image        *string    `json:"image"`
	DisplayOrder int        `json:"displayOrder"`
	IsActive     *bool      `json:"isActive"`
}

// UpdateCategoryRequest is the admin category-update payload; nil fields are left untouched
type UpdateCategoryRequest struct {
	Name         *string    `json:"name"`
	ParentID     *uuid.UUID `json:"parentId"`
	Image        *string    `json:"image"`
	DisplayOrder *int       `json:"displayOrder"`
	IsActive     *bool      `json:"isActive"`
}
