package repository

import (
	"context"
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

// WriteBatchSize bounds each grouped write: big enough to amortize round
// trips, small enough to avoid long-running transactions.
const WriteBatchSize = 50

type InventoryRepository struct {
	db     *gorm.DB
	redis  *redis.Client
	logger *logrus.Entry
}

func NewInventoryRepository(db *gorm.DB, redisClient *redis.Client, logger *logrus.Logger) *InventoryRepository {
	return &InventoryRepository{
		db:     db,
		redis:  redisClient,
		logger: logger.WithField("component", "inventory-repository"),
	}
}

// ApplyUpdates applies update instructions in fixed-size batches, each batch
// one transaction. Batches already committed stay committed when a later
// batch fails; the count of applied updates is returned either way.
func (r *InventoryRepository) ApplyUpdates(updates []importer.UpdateInstruction) (int, error) {
	applied := 0
	for start := 0; start < len(updates); start += WriteBatchSize {
		end := start + WriteBatchSize
		if end > len(updates) {
			end = len(updates)
		}
		batch := updates[start:end]

		err := r.db.Transaction(func(tx *gorm.DB) error {
			for _, u := range batch {
				fields := make(map[string]interface{}, len(u.Fields)+1)
				for k, v := range u.Fields {
					fields[k] = v
				}
				fields["updated_at"] = time.Now()
				if err := tx.Model(&models.Product{}).Where("id = ?", u.ProductID).Updates(fields).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			r.invalidateProductCaches()
			return applied, fmt.Errorf("update batch starting at %d failed: %w", start, err)
		}
		applied += len(batch)
	}

	if applied > 0 {
		r.invalidateProductCaches()
	}
	return applied, nil
}

// ApplyCreates inserts create instructions in fixed-size batches. Target
// slugs are re-checked against persisted rows first: the in-batch check in
// the reconciler cannot see concurrent uploads or rows written since the
// catalog was prefetched. A batch that still hits a uniqueness conflict is
// re-resolved once and retried; a second conflict becomes row-level errors.
func (r *InventoryRepository) ApplyCreates(creates []importer.CreateInstruction) (int, []string, error) {
	if len(creates) == 0 {
		return 0, nil, nil
	}

	if err := r.reResolveSlugs(creates); err != nil {
		return 0, nil, err
	}

	created := 0
	var rowErrors []string
	for start := 0; start < len(creates); start += WriteBatchSize {
		end := start + WriteBatchSize
		if end > len(creates) {
			end = len(creates)
		}
		batch := creates[start:end]

		err := r.insertBatch(batch)
		if err != nil && isUniqueViolation(err) {
			// Another upload won the race; re-resolve against fresh state and retry once
			if rerr := r.reResolveSlugs(batch); rerr == nil {
				err = r.insertBatch(batch)
			}
		}
		if err != nil {
			if isUniqueViolation(err) {
				for _, c := range batch {
					rowErrors = append(rowErrors, fmt.Sprintf("Row %d: Conflict creating product '%s'", c.Line, c.Product.Name))
				}
				continue
			}
			r.invalidateProductCaches()
			return created, rowErrors, fmt.Errorf("create batch starting at %d failed: %w", start, err)
		}
		created += len(batch)
	}

	if created > 0 {
		r.invalidateProductCaches()
	}
	return created, rowErrors, nil
}

func (r *InventoryRepository) insertBatch(batch []importer.CreateInstruction) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i := range batch {
			product := &batch[i].Product
			if product.ID == uuid.Nil {
				product.ID = uuid.New()
			}
			product.CreatedAt = time.Now()
			product.UpdatedAt = time.Now()
			if err := tx.Create(product).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// reResolveSlugs replays slug collision resolution against currently
// persisted slugs plus the slugs assigned earlier in this list.
func (r *InventoryRepository) reResolveSlugs(creates []importer.CreateInstruction) error {
	bases := make([]string, 0, len(creates))
	for i := range creates {
		bases = append(bases, importer.Slugify(creates[i].Product.Name))
	}

	// One query covers every candidate and its suffixed variants
	var existing []string
	query := r.db.Model(&models.Product{}).Select("slug")
	conditions := make([]string, 0, len(bases))
	args := make([]interface{}, 0, len(bases))
	for _, base := range bases {
		conditions = append(conditions, "slug = ? OR slug LIKE ?")
		args = append(args, base, base+"-%")
	}
	if err := query.Where(strings.Join(conditions, " OR "), args...).Pluck("slug", &existing).Error; err != nil {
		return err
	}

	used := make(map[string]bool, len(existing))
	for _, slug := range existing {
		used[slug] = true
	}
	for i := range creates {
		slug := importer.UniqueSlug(bases[i], used)
		used[slug] = true
		creates[i].Product.Slug = slug
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "SQLSTATE 23505")
}

func (r *InventoryRepository) invalidateProductCaches() {
	if err := deleteByPrefix(context.Background(), r.redis, ProductCachePrefix); err != nil {
		r.logger.WithError(err).Warn("Failed to invalidate product caches")
	}
}

// TakeSnapshot captures the mutable fields of every product immediately
// before an upload's first write.
func (r *InventoryRepository) TakeSnapshot(filename string) (*models.InventorySnapshot, error) {
	var products []models.Product
	if err := r.db.Select("id", "name", "price", "original_price", "stock").Find(&products).Error; err != nil {
		return nil, err
	}

	records := make(models.SnapshotProducts, 0, len(products))
	for _, p := range products {
		records = append(records, models.SnapshotProduct{
			ID:            p.ID,
			Name:          p.Name,
			Price:         p.Price,
			OriginalPrice: p.OriginalPrice,
			Stock:         p.Stock,
		})
	}

	snapshot := &models.InventorySnapshot{
		ID:           uuid.New(),
		Name:         fmt.Sprintf("%s — %s", filename, time.Now().Format("02 Jan 2006 15:04")),
		Products:     records,
		ProductCount: len(records),
		CreatedAt:    time.Now(),
	}
	if err := r.db.Create(snapshot).Error; err != nil {
		return nil, err
	}
	return snapshot, nil
}

// RecordUploadLog appends an audit entry for one upload with the full error
// list (responses truncate, the log does not).
func (r *InventoryRepository) RecordUploadLog(filename string, snapshotID *uuid.UUID, updated, created int, rowErrors []string) error {
	log := &models.InventoryUploadLog{
		ID:         uuid.New(),
		Filename:   filename,
		SnapshotID: snapshotID,
		Updated:    updated,
		Created:    created,
		Errors:     rowErrors,
		CreatedAt:  time.Now(),
	}
	return r.db.Create(log).Error
}

// ListUploadLogs returns the most recent upload log entries
func (r *InventoryRepository) ListUploadLogs(limit int) ([]models.InventoryUploadLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var logs []models.InventoryUploadLog
	err := r.db.Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

// ListSnapshots returns recent snapshots without their product payloads
func (r *InventoryRepository) ListSnapshots(limit int) ([]models.InventorySnapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	var snapshots []models.InventorySnapshot
	err := r.db.Select("id", "name", "product_count", "created_at").
		Order("created_at DESC").Limit(limit).Find(&snapshots).Error
	return snapshots, err
}

// GetSnapshot loads a snapshot with its product records
func (r *InventoryRepository) GetSnapshot(id uuid.UUID) (*models.InventorySnapshot, error) {
	var snapshot models.InventorySnapshot
	if err := r.db.First(&snapshot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Rollback restores every recorded product's price/originalPrice/stock to the
// snapshot values and recreates products present in the snapshot but missing
// now. Recreated products come back inactive and uncategorized: the snapshot
// records only the mutable fields, so an admin must re-categorize before they
// surface in the storefront.
func (r *InventoryRepository) Rollback(snapshotID uuid.UUID) (*models.RollbackResult, error) {
	snapshot, err := r.GetSnapshot(snapshotID)
	if err != nil {
		return nil, err
	}

	result := &models.RollbackResult{}
	records := snapshot.Products

	for start := 0; start < len(records); start += WriteBatchSize {
		end := start + WriteBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		err := r.db.Transaction(func(tx *gorm.DB) error {
			for _, rec := range batch {
				fields := map[string]interface{}{
					"price":          rec.Price,
					"original_price": rec.OriginalPrice,
					"stock":          rec.Stock,
					"discount":       models.ComputeDiscount(rec.Price, rec.OriginalPrice),
					"updated_at":     time.Now(),
				}
				res := tx.Model(&models.Product{}).Where("id = ?", rec.ID).Updates(fields)
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected > 0 {
					result.Restored++
					continue
				}

				product := models.Product{
					ID:            rec.ID,
					Name:          rec.Name,
					Price:         rec.Price,
					OriginalPrice: rec.OriginalPrice,
					Discount:      models.ComputeDiscount(rec.Price, rec.OriginalPrice),
					Stock:         rec.Stock,
					Unit:          models.DefaultUnit,
					IsActive:      false,
					Images:        models.StringArray{},
					Tags:          models.StringArray{},
					TimeSlots:     models.StringArray{string(models.TimeSlotAllDay)},
					CreatedAt:     time.Now(),
					UpdatedAt:     time.Now(),
				}
				slug, serr := r.freeSlugTx(tx, importer.Slugify(rec.Name))
				if serr != nil {
					return serr
				}
				product.Slug = slug
				if cerr := tx.Create(&product).Error; cerr != nil {
					return cerr
				}
				result.Created++
			}
			return nil
		})
		if err != nil {
			r.invalidateProductCaches()
			return result, fmt.Errorf("rollback batch starting at %d failed: %w", start, err)
		}
	}

	r.invalidateProductCaches()
	return result, nil
}

func (r *InventoryRepository) freeSlugTx(tx *gorm.DB, base string) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		var count int64
		if err := tx.Model(&models.Product{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
