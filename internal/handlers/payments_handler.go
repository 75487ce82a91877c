package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"storefront-service/internal/models"
	"storefront-service/internal/payments"
	"storefront-service/internal/repository"
)

type PaymentsHandler struct {
	orders  *repository.OrderRepository
	gateway *payments.RazorpayGateway
	logger  *logrus.Entry
}

func NewPaymentsHandler(orders *repository.OrderRepository, gateway *payments.RazorpayGateway, logger *logrus.Logger) *PaymentsHandler {
	return &PaymentsHandler{
		orders:  orders,
		gateway: gateway,
		logger:  logger.WithField("component", "payments-handler"),
	}
}

// VerifyPaymentRequest is the client-side callback payload after a Razorpay
// checkout completes.
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpayOrderId" binding:"required"`
	RazorpayPaymentID string `json:"razorpayPaymentId" binding:"required"`
	RazorpaySignature string `json:"razorpaySignature" binding:"required"`
}

// VerifyPayment validates the gateway signature and marks the order paid.
// An invalid signature marks the payment failed and returns 400.
func (h *PaymentsHandler) VerifyPayment(c *gin.Context) {
	if !h.gateway.Enabled() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "PAYMENTS_DISABLED", Message: "Online payment is not available"},
		})
		return
	}

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	order, err := h.orders.GetByRazorpayOrderID(req.RazorpayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "NOT_FOUND", Message: "Order not found for payment"},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FETCH_FAILED", Message: "Failed to resolve order"},
		})
		return
	}

	if err := h.gateway.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature); err != nil {
		h.logger.WithFields(logrus.Fields{
			"orderNumber":     order.OrderNumber,
			"razorpayOrderId": req.RazorpayOrderID,
		}).Warn("Payment signature verification failed")

		if err := h.orders.UpdatePaymentStatus(order.ID, models.PaymentStatusFailed); err != nil {
			h.logger.WithError(err).Warn("Failed to mark payment failed")
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_SIGNATURE", Message: "Payment verification failed"},
		})
		return
	}

	if err := h.orders.UpdatePaymentStatus(order.ID, models.PaymentStatusPaid); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "UPDATE_FAILED", Message: "Failed to record payment"},
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"orderNumber":       order.OrderNumber,
		"razorpayPaymentId": req.RazorpayPaymentID,
	}).Info("Payment verified")

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Payment verified",
		Data:    gin.H{"orderNumber": order.OrderNumber, "paymentStatus": models.PaymentStatusPaid},
	})
}
