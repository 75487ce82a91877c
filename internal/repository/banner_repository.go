package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront-service/internal/models"
)

type BannerRepository struct {
	db *gorm.DB
}

func NewBannerRepository(db *gorm.DB) *BannerRepository {
	return &BannerRepository{db: db}
}

// ListActive returns active banners in display order for the storefront
func (r *BannerRepository) ListActive() ([]models.Banner, error) {
	var banners []models.Banner
	err := r.db.Where("is_active = ?", true).Order("position ASC").Find(&banners).Error
	return banners, err
}

// ListAll returns every banner for the admin back-office
func (r *BannerRepository) ListAll() ([]models.Banner, error) {
	var banners []models.Banner
	err := r.db.Order("position ASC").Find(&banners).Error
	return banners, err
}

func (r *BannerRepository) Create(banner *models.Banner) error {
	if banner.ID == uuid.Nil {
		banner.ID = uuid.New()
	}
	banner.CreatedAt = time.Now()
	banner.UpdatedAt = time.Now()
	return r.db.Create(banner).Error
}

func (r *BannerRepository) Update(id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.Model(&models.Banner{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *BannerRepository) Delete(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&models.Banner{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
