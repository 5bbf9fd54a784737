package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Piyush-always/amble-ind/internal/config"
	"github.com/Piyush-always/amble-ind/internal/handlers"
	"github.com/Piyush-always/amble-ind/internal/interfaces"
	"github.com/Piyush-always/amble-ind/internal/middleware"
	"github.com/Piyush-always/amble-ind/internal/telemetry"
)

func NewRouter(cfg *config.Config, orders interfaces.OrderClient) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(telemetry.TracingMiddleware())
	r.Use(middleware.RequestLogger())
	r.Use(cors.New(corsConfig(cfg)))

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "payment-relay"})
	})

	// Payment routes
	paymentHandler := handlers.NewPaymentHandler(orders, cfg)
	apiRoutes := r.Group("/api")
	{
		apiRoutes.POST("/create-order", paymentHandler.CreateOrder)
		apiRoutes.POST("/verify-payment", paymentHandler.VerifyPayment)
		apiRoutes.POST("/webhook", paymentHandler.Webhook)
	}

	return r
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Content-Type"},
	}
	if cfg.FrontendURL != "" {
		corsCfg.AllowOrigins = []string{cfg.FrontendURL}
	} else {
		corsCfg.AllowAllOrigins = true
	}
	return corsCfg
}
