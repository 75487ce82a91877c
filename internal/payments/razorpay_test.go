package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func sign(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaymentSignature(t *testing.T) {
	gateway := NewRazorpayGateway("rzp_test_key", "secret123", logrus.New())

	orderID := "order_ABC123"
	paymentID := "pay_XYZ789"
	valid := sign("secret123", orderID+"|"+paymentID)

	assert.NoError(t, gateway.VerifyPaymentSignature(orderID, paymentID, valid))
	assert.ErrorIs(t, gateway.VerifyPaymentSignature(orderID, paymentID, "tampered"), ErrInvalidSignature)
	assert.ErrorIs(t, gateway.VerifyPaymentSignature(orderID, "pay_other", valid), ErrInvalidSignature)
}

func TestVerifyWebhookSignature(t *testing.T) {
	gateway := NewRazorpayGateway("rzp_test_key", "secret123", logrus.New())

	body := []byte(`{"event":"payment.captured"}`)
	valid := sign("whsecret", string(body))

	assert.NoError(t, gateway.VerifyWebhookSignature(body, valid, "whsecret"))
	assert.Error(t, gateway.VerifyWebhookSignature(body, valid, "wrong-secret"))
}

func TestEnabled(t *testing.T) {
	assert.True(t, NewRazorpayGateway("key", "secret", logrus.New()).Enabled())
	assert.False(t, NewRazorpayGateway("", "", logrus.New()).Enabled())

	var nilGateway *RazorpayGateway
	assert.False(t, nilGateway.Enabled())
}
