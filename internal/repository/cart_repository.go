package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront-service/internal/models"
)

type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// GetOrCreateByToken loads the cart for a client token, creating it on first
// use.
func (r *CartRepository) GetOrCreateByToken(token string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Preload("Items").Where("token = ?", token).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{
			ID:        uuid.New(),
			Token:     token,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := r.db.Create(&cart).Error; err != nil {
			return nil, err
		}
		return &cart, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItem adds a product line, merging quantity with an existing line.
func (r *CartRepository) AddItem(cartID, productID uuid.UUID, quantity int) error {
	var item models.CartItem
	err := r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		item = models.CartItem{
			ID:        uuid.New(),
			CartID:    cartID,
			ProductID: productID,
			Quantity:  quantity,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		return r.db.Create(&item).Error
	}
	if err != nil {
		return err
	}
	return r.db.Model(&item).Updates(map[string]interface{}{
		"quantity":   item.Quantity + quantity,
		"updated_at": time.Now(),
	}).Error
}

// SetItemQuantity sets a line's quantity; zero removes the line.
func (r *CartRepository) SetItemQuantity(cartID, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return r.RemoveItem(cartID, productID)
	}
	result := r.db.Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Updates(map[string]interface{}{"quantity": quantity, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RemoveItem deletes a product line from the cart
func (r *CartRepository) RemoveItem(cartID, productID uuid.UUID) error {
	return r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{}).Error
}

// Clear empties the cart (used after a successful checkout)
func (r *CartRepository) Clear(cartID uuid.UUID) error {
	return r.db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}
