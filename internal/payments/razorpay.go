package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/sirupsen/logrus"
)

var ErrInvalidSignature = errors.New("payment signature verification failed")

// RazorpayGateway wraps the Razorpay SDK for checkout: creates gateway orders
// in the smallest currency unit and verifies payment callbacks.
type RazorpayGateway struct {
	client    *razorpay.Client
	keyID     string
	keySecret string
	logger    *logrus.Entry
}

func NewRazorpayGateway(keyID, keySecret string, logger *logrus.Logger) *RazorpayGateway {
	return &RazorpayGateway{
		client:    razorpay.NewClient(keyID, keySecret),
		keyID:     keyID,
		keySecret: keySecret,
		logger:    logger.WithField("component", "razorpay"),
	}
}

// Enabled reports whether gateway credentials are configured. COD-only
// deployments leave them empty.
func (g *RazorpayGateway) Enabled() bool {
	return g != nil && g.keyID != "" && g.keySecret != ""
}

// KeyID exposes the publishable key for checkout clients
func (g *RazorpayGateway) KeyID() string {
	return g.keyID
}

// CreateOrder creates a Razorpay order for the given amount in rupees.
// Returns the gateway order id to hand to the checkout client.
func (g *RazorpayGateway) CreateOrder(amount float64, receipt string) (string, error) {
	paise := int64(math.Round(amount * 100))
	data := map[string]interface{}{
		"amount":   paise,
		"currency": "INR",
		"receipt":  receipt,
	}
	order, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create razorpay order: %w", err)
	}

	orderID, ok := order["id"].(string)
	if !ok || orderID == "" {
		return "", errors.New("razorpay order response missing id")
	}

	g.logger.WithFields(logrus.Fields{
		"razorpay_order_id": orderID,
		"amount_paise":      paise,
		"receipt":           receipt,
	}).Info("Created razorpay order")
	return orderID, nil
}

// VerifyPaymentSignature checks the HMAC-SHA256 signature Razorpay sends with
// a successful payment. The signed message is "<orderID>|<paymentID>".
func (g *RazorpayGateway) VerifyPaymentSignature(orderID, paymentID, signature string) error {
	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return ErrInvalidSignature
	}
	return nil
}

// VerifyWebhookSignature checks the signature on a webhook delivery body
func (g *RazorpayGateway) VerifyWebhookSignature(body []byte, signature, webhookSecret string) error {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return ErrInvalidSignature
	}
	return nil
}
