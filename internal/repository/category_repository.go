package repository

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"storefront-service/internal/importer"
	"storefront-service/internal/models"
)

// CategoryCache is an explicit in-process cache of the category list with an
// injected TTL and explicit invalidation, owned by the repository rather than
// living as a package-level variable.
type CategoryCache struct {
	mu        sync.RWMutex
	ttl       time.Duration
	fetchedAt time.Time
	list      []models.Category
}

// NewCategoryCache creates a cache with the given TTL.
func NewCategoryCache(ttl time.Duration) *CategoryCache {
	return &CategoryCache{ttl: ttl}
}

func (c *CategoryCache) get() ([]models.Category, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.list == nil || time.Since(c.fetchedAt) > c.ttl {
		return nil, false
	}
	return c.list, true
}

func (c *CategoryCache) set(list []models.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = list
	c.fetchedAt = time.Now()
}

// Invalidate drops the cached list; the next read refetches.
func (c *CategoryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = nil
}

type CategoryRepository struct {
	db     *gorm.DB
	cache  *CategoryCache
	logger *logrus.Entry
}

func NewCategoryRepository(db *gorm.DB, cache *CategoryCache, logger *logrus.Logger) *CategoryRepository {
	return &CategoryRepository{
		db:     db,
		cache:  cache,
		logger: logger.WithField("component", "category-repository"),
	}
}

// All returns every category, served from the TTL cache when fresh.
func (r *CategoryRepository) All() ([]models.Category, error) {
	if list, ok := r.cache.get(); ok {
		return list, nil
	}
	var categories []models.Category
	if err := r.db.Order("display_order ASC, name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	r.cache.set(categories)
	return categories, nil
}

// ListActive returns active categories for the storefront
func (r *CategoryRepository) ListActive() ([]models.Category, error) {
	all, err := r.All()
	if err != nil {
		return nil, err
	}
	active := make([]models.Category, 0, len(all))
	for _, c := range all {
		if c.IsActive {
			active = append(active, c)
		}
	}
	return active, nil
}

// GetByID retrieves a category by ID
func (r *CategoryRepository) GetByID(id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Create creates a category with a derived unique slug
func (r *CategoryRepository) Create(category *models.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	category.CreatedAt = time.Now()
	category.UpdatedAt = time.Now()

	if category.Slug == "" {
		slug, err := r.ensureUniqueSlug(importer.Slugify(category.Name))
		if err != nil {
			return err
		}
		category.Slug = slug
	}

	if err := r.db.Create(category).Error; err != nil {
		return err
	}
	r.cache.Invalidate()
	return nil
}

func (r *CategoryRepository) ensureUniqueSlug(base string) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		var count int64
		if err := r.db.Model(&models.Category{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// Update applies a partial column update
func (r *CategoryRepository) Update(id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.Model(&models.Category{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.cache.Invalidate()
	return nil
}

// Delete removes a category. Products keep their category id; the storefront
// hides products whose category no longer resolves.
func (r *CategoryRepository) Delete(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&models.Category{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.cache.Invalidate()
	return nil
}
