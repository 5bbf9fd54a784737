package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Piyush-always/amble-ind/internal/config"
	"github.com/Piyush-always/amble-ind/internal/models"
	"github.com/Piyush-always/amble-ind/internal/razorpay"
	"github.com/Piyush-always/amble-ind/internal/signature"
	"github.com/Piyush-always/amble-ind/internal/telemetry"
)

func TestMain(m *testing.M) {
	if err := telemetry.InitTelemetry("payment-relay-test", ""); err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeOrderClient struct {
	calls []razorpay.OrderRequest
	order *razorpay.Order
	err   error
}

func (f *fakeOrderClient) CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.order != nil {
		return f.order, nil
	}
	return &razorpay.Order{
		ID:       "order_test123",
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		RazorpayKeyID:         "rzp_test_key",
		RazorpayKeySecret:     "key_secret",
		RazorpayWebhookSecret: "webhook_secret",
		Port:                  "3000",
	}
}

func newTestRouter(orders *fakeOrderClient) *gin.Engine {
	h := NewPaymentHandler(orders, testConfig())
	r := gin.New()
	r.POST("/api/create-order", h.CreateOrder)
	r.POST("/api/verify-payment", h.VerifyPayment)
	r.POST("/api/webhook", h.Webhook)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateOrder(t *testing.T) {
	orders := &fakeOrderClient{}
	r := newTestRouter(orders)

	w := postJSON(t, r, "/api/create-order", `{"amount":499,"currency":"INR","receipt":"rcpt_1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.CreateOrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "order_test123", resp.OrderID)
	assert.Equal(t, int64(49900), resp.Amount)
	assert.Equal(t, "INR", resp.Currency)
	assert.Equal(t, "rzp_test_key", resp.KeyID)

	require.Len(t, orders.calls, 1)
	assert.Equal(t, int64(49900), orders.calls[0].Amount)
	assert.Equal(t, "rcpt_1", orders.calls[0].Receipt)
}

func TestCreateOrderMinorUnitRounding(t *testing.T) {
	cases := []struct {
		amount string
		want   int64
	}{
		{"1", 100},
		{"99.99", 9999},
		{"99.995", 10000},
		{"0.01", 1},
		{"123.456", 12346},
	}

	for _, tc := range cases {
		orders := &fakeOrderClient{}
		r := newTestRouter(orders)

		w := postJSON(t, r, "/api/create-order", `{"amount":`+tc.amount+`}`)
		require.Equal(t, http.StatusOK, w.Code, "amount %s", tc.amount)
		require.Len(t, orders.calls, 1)
		assert.Equal(t, tc.want, orders.calls[0].Amount, "amount %s", tc.amount)
	}
}

func TestCreateOrderDefaults(t *testing.T) {
	orders := &fakeOrderClient{}
	r := newTestRouter(orders)

	w := postJSON(t, r, "/api/create-order", `{"amount":10}`)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, orders.calls, 1)
	assert.Equal(t, "INR", orders.calls[0].Currency)
	assert.True(t, strings.HasPrefix(orders.calls[0].Receipt, "receipt_"))
}

func TestCreateOrderMissingAmount(t *testing.T) {
	orders := &fakeOrderClient{}
	r := newTestRouter(orders)

	for _, body := range []string{`{}`, `{"amount":0}`, `{"amount":-5}`, `{"currency":"INR"}`} {
		w := postJSON(t, r, "/api/create-order", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
		assert.JSONEq(t, `{"error":"Amount is required"}`, w.Body.String(), "body %s", body)
	}

	assert.Empty(t, orders.calls, "processor must not be called without an amount")
}

func TestCreateOrderProcessorFailure(t *testing.T) {
	orders := &fakeOrderClient{err: errors.New("razorpay: unexpected status code 502")}
	r := newTestRouter(orders)

	w := postJSON(t, r, "/api/create-order", `{"amount":100}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to create order"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "502")
}

func TestVerifyPayment(t *testing.T) {
	r := newTestRouter(&fakeOrderClient{})

	sig := signature.Sign([]byte("order_1|pay_1"), "key_secret")
	body, _ := json.Marshal(gin.H{
		"razorpay_order_id":   "order_1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  sig,
	})

	w := postJSON(t, r, "/api/verify-payment", string(body))
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Payment verified successfully", resp["message"])
	assert.Equal(t, "pay_1", resp["payment_id"])
	assert.Equal(t, "order_1", resp["order_id"])
}

func TestVerifyPaymentInvalidSignature(t *testing.T) {
	r := newTestRouter(&fakeOrderClient{})

	// signed with the wrong secret
	sig := signature.Sign([]byte("order_1|pay_1"), "wrong_secret")
	body, _ := json.Marshal(gin.H{
		"razorpay_order_id":   "order_1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  sig,
	})

	w := postJSON(t, r, "/api/verify-payment", string(body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Invalid payment signature"}`, w.Body.String())
}

func TestVerifyPaymentMissingFields(t *testing.T) {
	r := newTestRouter(&fakeOrderClient{})

	bodies := []string{
		`{}`,
		`{"razorpay_order_id":"order_1"}`,
		`{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1"}`,
		`{"razorpay_payment_id":"pay_1","razorpay_signature":"abc"}`,
	}
	for _, body := range bodies {
		w := postJSON(t, r, "/api/verify-payment", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
		assert.JSONEq(t, `{"success":false,"error":"Missing payment details"}`, w.Body.String(), "body %s", body)
	}
}

func TestVerifyPaymentMalformedBody(t *testing.T) {
	r := newTestRouter(&fakeOrderClient{})

	w := postJSON(t, r, "/api/verify-payment", `{"razorpay_order_id":`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "key_secret")
}

func postWebhook(t *testing.T, r *gin.Engine, body []byte, sig string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sig != "" {
		req.Header.Set("X-Razorpay-Signature", sig)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookRecognizedEvent(t *testing.T) {
	r := newTestRouter(&fakeOrderClient{})

	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","status":"captured"}}}}`)
	sig := signature.Sign(body, "webhook_secret")

	w := postWebhook(t, r, body, sig)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
}

func TestWebhookUnknownEventAcknowledged(t *testing.T) {
	r := newTestRouter(&fakeOrderClient{})

	body := []byte(`{"event":"subscription.activated","payload":{}}`)
	sig := signature.Sign(body, "webhook_secret")

	w := postWebhook(t, r, body, sig)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
}

func TestWebhookInvalidSignature(t *testing.T) {
	r := newTestRouter(&fakeOrderClient{})

	body := []byte(`{"event":"payment.captured","payload":{}}`)
	sig := signature.Sign(body, "wrong_secret")

	w := postWebhook(t, r, body, sig)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid webhook signature"}`, w.Body.String())

	w = postWebhook(t, r, body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookTamperedBody(t *testing.T) {
	r := newTestRouter(&fakeOrderClient{})

	body := []byte(`{"event":"order.paid","payload":{"order":{"entity":{"id":"order_1"}}}}`)
	sig := signature.Sign(body, "webhook_secret")

	tampered := bytes.Replace(body, []byte("order_1"), []byte("order_2"), 1)
	w := postWebhook(t, r, tampered, sig)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookMalformedJSONWithValidSignature(t *testing.T) {
	r := newTestRouter(&fakeOrderClient{})

	body := []byte(`{"event":"payment.captured",`)
	sig := signature.Sign(body, "webhook_secret")

	w := postWebhook(t, r, body, sig)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to process webhook"}`, w.Body.String())
}
