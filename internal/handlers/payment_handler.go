package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Piyush-always/amble-ind/internal/config"
	"github.com/Piyush-always/amble-ind/internal/interfaces"
	"github.com/Piyush-always/amble-ind/internal/models"
	"github.com/Piyush-always/amble-ind/internal/razorpay"
	"github.com/Piyush-always/amble-ind/internal/signature"
	"github.com/Piyush-always/amble-ind/internal/telemetry"
)

type PaymentHandler struct {
	orders        interfaces.OrderClient
	keyID         string
	keySecret     string
	webhookSecret string

	webhookHandlers map[string]func(event *models.WebhookEvent)
}

func NewPaymentHandler(orders interfaces.OrderClient, cfg *config.Config) *PaymentHandler {
	h := &PaymentHandler{
		orders:        orders,
		keyID:         cfg.RazorpayKeyID,
		keySecret:     cfg.RazorpayKeySecret,
		webhookSecret: cfg.RazorpayWebhookSecret,
	}

	h.webhookHandlers = map[string]func(event *models.WebhookEvent){
		"payment.captured": h.onPaymentCaptured,
		"payment.failed":   h.onPaymentFailed,
		"order.paid":       h.onOrderPaid,
		"refund.processed": h.onRefundProcessed,
	}

	return h
}

func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		telemetry.Logger.Warn("Invalid order request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount is required"})
		return
	}

	if req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount is required"})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	receipt := req.Receipt
	if receipt == "" {
		receipt = fmt.Sprintf("receipt_%d", time.Now().UnixMilli())
	}

	// Razorpay expects the amount in minor units (paise for INR),
	// rounded to the nearest integer.
	amount := decimal.NewFromFloat(req.Amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	order, err := h.orders.CreateOrder(c.Request.Context(), razorpay.OrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		telemetry.Logger.Error("Failed to create order with processor",
			zap.Int64("amount", amount),
			zap.String("currency", currency),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	telemetry.OrdersCreated.Inc()
	telemetry.Logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.Int64("amount", order.Amount),
		zap.String("currency", order.Currency),
	)

	c.JSON(http.StatusOK, models.CreateOrderResponse{
		Success:  true,
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    h.keyID,
	})
}

func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req models.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		telemetry.Logger.Error("Failed to read verification request", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Payment verification failed"})
		return
	}

	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing payment details"})
		return
	}

	if !signature.VerifyPayment(req.OrderID, req.PaymentID, h.keySecret, req.Signature) {
		telemetry.PaymentVerifications.WithLabelValues("invalid_signature").Inc()
		telemetry.Logger.Warn("Payment signature mismatch",
			zap.String("order_id", req.OrderID),
			zap.String("payment_id", req.PaymentID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid payment signature"})
		return
	}

	// TODO: mark the order paid once an order store exists.
	telemetry.PaymentVerifications.WithLabelValues("verified").Inc()
	telemetry.Logger.Info("Payment verified",
		zap.String("order_id", req.OrderID),
		zap.String("payment_id", req.PaymentID),
	)

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Payment verified successfully",
		"payment_id": req.PaymentID,
		"order_id":   req.OrderID,
	})
}

// Webhook verifies the delivery signature over the raw body before any
// parsing, then dispatches by event name. A valid signature always ends in
// 200 so the processor does not redeliver events we merely don't handle.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		telemetry.Logger.Error("Failed to read webhook body", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process webhook"})
		return
	}

	sig := c.GetHeader("X-Razorpay-Signature")
	if !signature.VerifyWebhook(body, h.webhookSecret, sig) {
		telemetry.Logger.Warn("Webhook signature mismatch")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook signature"})
		return
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		telemetry.Logger.Error("Failed to parse webhook payload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process webhook"})
		return
	}

	telemetry.WebhookEvents.WithLabelValues(event.Event).Inc()

	if handle, ok := h.webhookHandlers[event.Event]; ok {
		handle(&event)
	} else {
		telemetry.Logger.Info("Unhandled webhook event", zap.String("event", event.Event))
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *PaymentHandler) onPaymentCaptured(event *models.WebhookEvent) {
	// Fulfillment would run here once an order store exists.
	telemetry.Logger.Info("Payment captured",
		zap.String("payment_id", event.EntityID("payment")),
	)
}

func (h *PaymentHandler) onPaymentFailed(event *models.WebhookEvent) {
	telemetry.Logger.Info("Payment failed",
		zap.String("payment_id", event.EntityID("payment")),
	)
}

func (h *PaymentHandler) onOrderPaid(event *models.WebhookEvent) {
	telemetry.Logger.Info("Order paid",
		zap.String("order_id", event.EntityID("order")),
	)
}

func (h *PaymentHandler) onRefundProcessed(event *models.WebhookEvent) {
	telemetry.Logger.Info("Refund processed",
		zap.String("refund_id", event.EntityID("refund")),
	)
}
