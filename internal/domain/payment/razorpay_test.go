// internal/domain/payment/razorpay_test.go
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "test_secret_key"
	orderID := "order_MkWq3GQvD2upHB"
	paymentID := "pay_MkWrJHzto2xWxR"

	valid := sign(secret, orderID, paymentID)
	assert.True(t, verifySignature(secret, orderID, paymentID, valid))

	// Tampered payment id
	assert.False(t, verifySignature(secret, orderID, "pay_other", valid))
	// Tampered signature
	assert.False(t, verifySignature(secret, orderID, paymentID, valid[:len(valid)-1]+"0"))
	// Wrong secret
	assert.False(t, verifySignature("other_secret", orderID, paymentID, valid))
}

func TestVerifySignatureRejectsEmptyFields(t *testing.T) {
	secret := "test_secret_key"
	assert.False(t, verifySignature(secret, "", "pay_1", sign(secret, "", "pay_1")))
	assert.False(t, verifySignature(secret, "order_1", "", sign(secret, "order_1", "")))
	assert.False(t, verifySignature(secret, "order_1", "pay_1", ""))
}
