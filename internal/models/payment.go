package models

import "encoding/json"

type CreateOrderRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Receipt  string  `json:"receipt"`
}

type CreateOrderResponse struct {
	Success  bool   `json:"success"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// WebhookEvent is the envelope Razorpay posts to the webhook endpoint. The
// payload is keyed by entity type (payment, refund, order, ...), each
// carrying an entity with at least an id.
type WebhookEvent struct {
	Event   string                    `json:"event"`
	Payload map[string]WebhookPayload `json:"payload"`
}

type WebhookPayload struct {
	Entity WebhookEntity `json:"entity"`
}

type WebhookEntity struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Notes  json.RawMessage `json:"notes,omitempty"`
}

// EntityID returns the id of the entity stored under the given payload key,
// or "" when the event carries no such entity.
func (e *WebhookEvent) EntityID(key string) string {
	if p, ok := e.Payload[key]; ok {
		return p.Entity.ID
	}
	return ""
}
