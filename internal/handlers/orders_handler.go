package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"storefront-service/internal/events"
	"storefront-service/internal/models"
	"storefront-service/internal/payments"
	"storefront-service/internal/repository"
)

// DeliveryFee is the flat fee added below the free-delivery threshold
const (
	DeliveryFee           = 25.0
	FreeDeliveryThreshold = 199.0
)

// OrderStore is the slice of the order repository checkout and the admin
// back-office use. Implemented by repository.OrderRepository.
type OrderStore interface {
	Create(order *models.Order) error
	GetByNumber(orderNumber string) (*models.Order, error)
	List(req *models.ListOrdersRequest) ([]models.Order, int64, error)
	UpdateStatus(id uuid.UUID, to models.OrderStatus) (*models.Order, models.OrderStatus, error)
	SetRazorpayOrderID(id uuid.UUID, razorpayOrderID string) error
	Stats() (*models.OrderStats, error)
}

type OrdersHandler struct {
	orders    OrderStore
	products  *repository.ProductRepository
	carts     *repository.CartRepository
	gateway   *payments.RazorpayGateway
	publisher EventPublisher
	logger    *logrus.Entry
}

func NewOrdersHandler(
	orders OrderStore,
	products *repository.ProductRepository,
	carts *repository.CartRepository,
	gateway *payments.RazorpayGateway,
	publisher EventPublisher,
	logger *logrus.Logger,
) *OrdersHandler {
	return &OrdersHandler{
		orders:    orders,
		products:  products,
		carts:     carts,
		gateway:   gateway,
		publisher: publisher,
		logger:    logger.WithField("component", "orders-handler"),
	}
}

// PlaceOrder handles checkout. Prices come from the catalog, never the
// client; stock is decremented atomically with order creation. For Razorpay
// orders a gateway order is created and its id returned for the client-side
// payment flow.
func (h *OrdersHandler) PlaceOrder(c *gin.Context) {
	var req models.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	if req.PaymentMethod != models.PaymentMethodCOD && req.PaymentMethod != models.PaymentMethodRazorpay {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: "Unsupported payment method", Field: "paymentMethod"},
		})
		return
	}
	if req.PaymentMethod == models.PaymentMethodRazorpay && !h.gateway.Enabled() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "PAYMENTS_DISABLED", Message: "Online payment is not available"},
		})
		return
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := h.products.GetByIDs(ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FETCH_FAILED", Message: "Failed to resolve products"},
		})
		return
	}
	byID := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	order := models.Order{
		CustomerName:  req.CustomerName,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		Pincode:       req.Pincode,
		PaymentMethod: req.PaymentMethod,
		Status:        models.OrderStatusPlaced,
		PaymentStatus: models.PaymentStatusPending,
		Notes:         req.Notes,
	}
	for _, line := range req.Items {
		product, ok := byID[line.ProductID]
		if !ok || !product.IsActive {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "PRODUCT_UNAVAILABLE", Message: "One or more products are unavailable"},
			})
			return
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Unit:      product.Unit,
			Quantity:  line.Quantity,
		})
		order.Subtotal += product.Price * float64(line.Quantity)
	}
	if order.Subtotal < FreeDeliveryThreshold {
		order.DeliveryFee = DeliveryFee
	}
	order.Total = order.Subtotal + order.DeliveryFee

	if err := h.orders.Create(&order); err != nil {
		var stockErr repository.ErrInsufficientStock
		if errors.As(err, &stockErr) {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "INSUFFICIENT_STOCK", Message: stockErr.Error()},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "CREATE_FAILED", Message: "Failed to place order"},
		})
		return
	}

	response := gin.H{"success": true, "data": order}
	if req.PaymentMethod == models.PaymentMethodRazorpay {
		razorpayOrderID, err := h.gateway.CreateOrder(order.Total, order.OrderNumber)
		if err != nil {
			h.logger.WithError(err).WithField("orderNumber", order.OrderNumber).Error("Failed to create gateway order")
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "GATEWAY_ERROR", Message: "Failed to initiate payment"},
			})
			return
		}
		if err := h.orders.SetRazorpayOrderID(order.ID, razorpayOrderID); err != nil {
			h.logger.WithError(err).Warn("Failed to record gateway order id")
		}
		response["razorpayOrderId"] = razorpayOrderID
		response["razorpayKeyId"] = h.gateway.KeyID()
	}

	if token := c.GetHeader(CartTokenHeader); token != "" {
		if cart, err := h.carts.GetOrCreateByToken(token); err == nil {
			if err := h.carts.Clear(cart.ID); err != nil {
				h.logger.WithError(err).Warn("Failed to clear cart after checkout")
			}
		}
	}

	h.publisher.PublishOrderCreated(c.Request.Context(), events.OrderCreatedEvent{
		OrderID:       order.ID.String(),
		OrderNumber:   order.OrderNumber,
		Total:         order.Total,
		ItemCount:     len(order.Items),
		PaymentMethod: string(order.PaymentMethod),
	})

	c.JSON(http.StatusCreated, response)
}

// GetOrder retrieves an order by its human-readable number
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetByNumber(c.Param("orderNumber"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "NOT_FOUND", Message: "Order not found"},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FETCH_FAILED", Message: "Failed to retrieve order"},
		})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: order})
}

// GetOrderStatus is the lightweight polling endpoint for order tracking
func (h *OrdersHandler) GetOrderStatus(c *gin.Context) {
	order, err := h.orders.GetByNumber(c.Param("orderNumber"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "NOT_FOUND", Message: "Order not found"},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FETCH_FAILED", Message: "Failed to retrieve order"},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"orderNumber":   order.OrderNumber,
			"status":        order.Status,
			"paymentStatus": order.PaymentStatus,
			"updatedAt":     order.UpdatedAt,
		},
	})
}

// ListOrders returns orders for the admin back-office
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	req := &models.ListOrdersRequest{
		Status:        models.OrderStatus(c.Query("status")),
		PaymentStatus: models.PaymentStatus(c.Query("paymentStatus")),
		Phone:         c.Query("phone"),
		Page:          page,
		Limit:         limit,
	}

	orders, total, err := h.orders.List(req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FETCH_FAILED", Message: "Failed to retrieve orders"},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       orders,
		"pagination": models.NewPaginationInfo(req.Page, req.Limit, total),
	})
}

// UpdateOrderStatus moves an order along its lifecycle from the admin
// back-office. Invalid transitions are rejected.
func (h *OrdersHandler) UpdateOrderStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: "Invalid order id"},
		})
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	order, from, err := h.orders.UpdateStatus(id, req.Status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "NOT_FOUND", Message: "Order not found"},
			})
			return
		}
		var transitionErr *models.InvalidTransitionError
		if errors.As(err, &transitionErr) {
			c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "INVALID_TRANSITION", Message: err.Error()},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "UPDATE_FAILED", Message: "Failed to update order status"},
		})
		return
	}

	h.publisher.PublishOrderStatusChanged(c.Request.Context(), events.OrderStatusChangedEvent{
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		From:        string(from),
		To:          string(order.Status),
	})

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: order})
}

// GetOrderStats aggregates counts and revenue for the admin dashboard
func (h *OrdersHandler) GetOrderStats(c *gin.Context) {
	stats, err := h.orders.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FETCH_FAILED", Message: "Failed to retrieve order stats"},
		})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: stats})
}
