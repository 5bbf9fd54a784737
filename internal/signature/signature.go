package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verify checks providedSignature against the HMAC-SHA256 of message keyed
// by secret, rendered as lowercase hex. Comparison is constant-time.
func Verify(message []byte, secret, providedSignature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(providedSignature))
}

// Sign returns the lowercase hex HMAC-SHA256 of message keyed by secret.
func Sign(message []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPayment checks a checkout confirmation signature. Razorpay signs
// the string "<order_id>|<payment_id>" with the API key secret.
func VerifyPayment(orderID, paymentID, secret, providedSignature string) bool {
	return Verify([]byte(orderID+"|"+paymentID), secret, providedSignature)
}

// VerifyWebhook checks a webhook delivery signature. The signature covers
// the raw request body exactly as received, so callers must not parse or
// re-serialize the body before verification.
func VerifyWebhook(rawBody []byte, secret, providedSignature string) bool {
	return Verify(rawBody, secret, providedSignature)
}
