package repository

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"storefront-service/internal/importer"
	"storefront-service/internal/models"
)

type ProductRepository struct {
	db     *gorm.DB
	redis  *redis.Client
	logger *logrus.Entry
}

func NewProductRepository(db *gorm.DB, redisClient *redis.Client, logger *logrus.Logger) *ProductRepository {
	return &ProductRepository{
		db:     db,
		redis:  redisClient,
		logger: logger.WithField("component", "product-repository"),
	}
}

// generateListCacheKey creates a deterministic cache key for list queries
func generateListCacheKey(req *models.ListProductsRequest) string {
	data, _ := json.Marshal(req)
	hash := md5.Sum(data)
	return ProductCachePrefix + "list:" + hex.EncodeToString(hash[:])
}

// InvalidateCache drops every cached product read. Failures are logged and
// swallowed: a stale cache entry expires on its own TTL.
func (r *ProductRepository) InvalidateCache(ctx context.Context) {
	if err := deleteByPrefix(ctx, r.redis, ProductCachePrefix); err != nil {
		r.logger.WithError(err).Warn("Failed to invalidate product caches")
	}
}

// List retrieves products with filters and pagination, read-through cached.
func (r *ProductRepository) List(ctx context.Context, req *models.ListProductsRequest) ([]models.Product, int64, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	cacheKey := generateListCacheKey(req)
	type cachedList struct {
		Products []models.Product `json:"products"`
		Total    int64            `json:"total"`
	}
	if r.redis != nil {
		if val, err := r.redis.Get(ctx, cacheKey).Result(); err == nil {
			var cached cachedList
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached.Products, cached.Total, nil
			}
		}
	}

	var products []models.Product
	var total int64

	query := r.db.Model(&models.Product{})
	if req.CategoryID != nil {
		query = query.Where("category_id = ?", *req.CategoryID)
	}
	if req.Search != "" {
		like := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ?", like)
	}
	if req.TimeSlot != "" {
		query = query.Where("time_slots @> ? OR time_slots @> ?",
			fmt.Sprintf(`["%s"]`, req.TimeSlot), `["ALL_DAY"]`)
	}
	if req.Featured != nil {
		query = query.Where("is_featured = ?", *req.Featured)
	}
	if req.Active != nil {
		query = query.Where("is_active = ?", *req.Active)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := "created_at"
	switch req.SortBy {
	case "name", "price", "stock", "discount", "updated_at":
		sortBy = req.SortBy
	}
	sortOrder := "DESC"
	if strings.EqualFold(req.SortOrder, "ASC") {
		sortOrder = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(cachedList{Products: products, Total: total}); err == nil {
			r.redis.Set(ctx, cacheKey, data, ProductListCacheTTL)
		}
	}

	return products, total, nil
}

// GetBySlug retrieves a product by slug with caching
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	cacheKey := ProductCachePrefix + "slug:" + slug

	if r.redis != nil {
		if val, err := r.redis.Get(ctx, cacheKey).Result(); err == nil {
			var product models.Product
			if err := json.Unmarshal([]byte(val), &product); err == nil {
				return &product, nil
			}
		}
	}

	var product models.Product
	if err := r.db.Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(product); err == nil {
			r.redis.Set(ctx, cacheKey, data, ProductCacheTTL)
		}
	}

	return &product, nil
}

// GetByID retrieves a product by ID (uncached; admin path)
func (r *ProductRepository) GetByID(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetByIDs retrieves multiple products in a single query
func (r *ProductRepository) GetByIDs(ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Create creates a new product, deriving a unique slug from the name when
// none is supplied.
func (r *ProductRepository) Create(product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	if product.Slug == "" {
		slug, err := r.ensureUniqueSlug(importer.Slugify(product.Name))
		if err != nil {
			return err
		}
		product.Slug = slug
	}

	if err := r.db.Create(product).Error; err != nil {
		return err
	}
	r.InvalidateCache(context.Background())
	return nil
}

// ensureUniqueSlug appends numeric suffixes until the slug is free.
func (r *ProductRepository) ensureUniqueSlug(base string) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		var count int64
		if err := r.db.Model(&models.Product{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// Update applies a partial column update and invalidates caches
func (r *ProductRepository) Update(id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.Model(&models.Product{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.InvalidateCache(context.Background())
	return nil
}

// Delete removes a product
func (r *ProductRepository) Delete(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&models.Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.InvalidateCache(context.Background())
	return nil
}

// GetAllForReconciliation fetches the full catalog once per upload so the
// reconciler resolves rows with map lookups instead of per-row queries.
func (r *ProductRepository) GetAllForReconciliation() ([]models.Product, error) {
	var products []models.Product
	err := r.db.
		Select("id", "name", "slug", "price", "original_price", "discount", "stock").
		Find(&products).Error
	return products, err
}

// Count returns the number of products, optionally only active ones
func (r *ProductRepository) Count(activeOnly bool) (int64, error) {
	var count int64
	query := r.db.Model(&models.Product{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Count(&count).Error
	return count, err
}
