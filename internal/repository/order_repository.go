package repository

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"storefront-service/internal/models"
)

// ErrInsufficientStock is returned when a checkout line exceeds available
// stock; the whole order transaction rolls back.
type ErrInsufficientStock struct {
	ProductID uuid.UUID
	Name      string
}

func (e ErrInsufficientStock) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.Name)
}

type OrderRepository struct {
	db     *gorm.DB
	redis  *redis.Client
	logger *logrus.Entry
}

func NewOrderRepository(db *gorm.DB, redisClient *redis.Client, logger *logrus.Logger) *OrderRepository {
	return &OrderRepository{
		db:     db,
		redis:  redisClient,
		logger: logger.WithField("component", "order-repository"),
	}
}

// generateOrderNumber builds a human-readable unique order number
func generateOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%04d", time.Now().Format("20060102-150405"), rand.Intn(10000))
}

// Create persists the order and decrements product stock atomically: the
// conditional update refuses to take stock below zero, and any short line
// rolls back the whole order.
func (r *OrderRepository) Create(order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.OrderNumber == "" {
		order.OrderNumber = generateOrderNumber()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()

	err := r.db.Transaction(func(tx *gorm.DB) error {
		for i := range order.Items {
			item := &order.Items[i]
			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				Updates(map[string]interface{}{
					"stock":      gorm.Expr("stock - ?", item.Quantity),
					"updated_at": time.Now(),
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrInsufficientStock{ProductID: item.ProductID, Name: item.Name}
			}
		}
		return tx.Create(order).Error
	})
	if err != nil {
		return err
	}

	// Stock changed, catalog caches are stale
	if cacheErr := deleteByPrefix(context.Background(), r.redis, ProductCachePrefix); cacheErr != nil {
		r.logger.WithError(cacheErr).Warn("Failed to invalidate product caches after order")
	}
	return nil
}

// GetByNumber retrieves an order with its items
func (r *OrderRepository) GetByNumber(orderNumber string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").Where("order_number = ?", orderNumber).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByID retrieves an order with its items
func (r *OrderRepository) GetByID(id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// List retrieves orders with filters and pagination for the admin back-office
func (r *OrderRepository) List(req *models.ListOrdersRequest) ([]models.Order, int64, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	var orders []models.Order
	var total int64

	query := r.db.Model(&models.Order{})
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.PaymentStatus != "" {
		query = query.Where("payment_status = ?", req.PaymentStatus)
	}
	if req.Phone != "" {
		query = query.Where("phone = ?", req.Phone)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (req.Page - 1) * req.Limit
	err := query.Preload("Items").Order("created_at DESC").
		Offset(offset).Limit(req.Limit).Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus moves an order along its lifecycle, enforcing the transition
// table, and reports the status the order moved from. Cancelling restores the
// order's stock.
func (r *OrderRepository) UpdateStatus(id uuid.UUID, to models.OrderStatus) (*models.Order, models.OrderStatus, error) {
	var order models.Order
	var from models.OrderStatus

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
			return err
		}
		from = order.Status
		if err := models.ValidateOrderStatusTransition(order.Status, to); err != nil {
			return err
		}

		if to == models.OrderStatusCancelled {
			for _, item := range order.Items {
				result := tx.Model(&models.Product{}).
					Where("id = ?", item.ProductID).
					Updates(map[string]interface{}{
						"stock":      gorm.Expr("stock + ?", item.Quantity),
						"updated_at": time.Now(),
					})
				if result.Error != nil {
					return result.Error
				}
			}
		}

		order.Status = to
		order.UpdatedAt = time.Now()
		return tx.Model(&models.Order{}).Where("id = ?", id).
			Updates(map[string]interface{}{"status": to, "updated_at": order.UpdatedAt}).Error
	})
	if err != nil {
		return nil, "", err
	}

	if to == models.OrderStatusCancelled {
		if cacheErr := deleteByPrefix(context.Background(), r.redis, ProductCachePrefix); cacheErr != nil {
			r.logger.WithError(cacheErr).Warn("Failed to invalidate product caches after cancellation")
		}
	}
	return &order, from, nil
}

// UpdatePaymentStatus moves the payment status, enforcing the transition table
func (r *OrderRepository) UpdatePaymentStatus(id uuid.UUID, to models.PaymentStatus) error {
	var order models.Order
	if err := r.db.First(&order, "id = ?", id).Error; err != nil {
		return err
	}
	if err := models.ValidatePaymentStatusTransition(order.PaymentStatus, to); err != nil {
		return err
	}
	return r.db.Model(&models.Order{}).Where("id = ?", id).
		Updates(map[string]interface{}{"payment_status": to, "updated_at": time.Now()}).Error
}

// SetRazorpayOrderID records the gateway order created at checkout
func (r *OrderRepository) SetRazorpayOrderID(id uuid.UUID, razorpayOrderID string) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).
		Updates(map[string]interface{}{"razorpay_order_id": razorpayOrderID, "updated_at": time.Now()}).Error
}

// GetByRazorpayOrderID finds the order a gateway callback refers to
func (r *OrderRepository) GetByRazorpayOrderID(razorpayOrderID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Where("razorpay_order_id = ?", razorpayOrderID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// Stats aggregates order counts and revenue for the admin dashboard
func (r *OrderRepository) Stats() (*models.OrderStats, error) {
	stats := &models.OrderStats{}

	if err := r.db.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Order{}).Where("status = ?", models.OrderStatusPlaced).Count(&stats.PlacedOrders).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Order{}).Where("status = ?", models.OrderStatusDelivered).Count(&stats.DeliveredOrders).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Order{}).Where("status = ?", models.OrderStatusCancelled).Count(&stats.CancelledOrders).Error; err != nil {
		return nil, err
	}
	err := r.db.Model(&models.Order{}).
		Where("status != ?", models.OrderStatusCancelled).
		Select("COALESCE(SUM(total), 0)").Scan(&stats.TotalRevenue).Error
	return stats, err
}
