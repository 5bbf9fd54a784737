package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Piyush-always/amble-ind/internal/api"
	"github.com/Piyush-always/amble-ind/internal/config"
	"github.com/Piyush-always/amble-ind/internal/razorpay"
	"github.com/Piyush-always/amble-ind/internal/telemetry"
)

func main() {
	cfg := config.Load()

	// Initialize telemetry
	if err := telemetry.InitTelemetry("payment-relay", cfg.OTLPEndpoint); err != nil {
		panic(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	}
	defer telemetry.Shutdown(context.Background())

	telemetry.Logger.Info("Starting payment relay")

	if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
		telemetry.Logger.Fatal("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET must be set")
	}
	if cfg.RazorpayWebhookSecret == "" {
		telemetry.Logger.Warn("RAZORPAY_WEBHOOK_SECRET not set, webhook deliveries will be rejected")
	}

	orders := razorpay.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	r := api.NewRouter(cfg, orders)

	// Setup HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		telemetry.Logger.Info("Payment relay starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	telemetry.Logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		telemetry.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	telemetry.Logger.Info("Server exited")
}
