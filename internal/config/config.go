package config

import "github.com/spf13/viper"

type Config struct {
	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string
	FrontendURL           string
	Port                  string
	OTLPEndpoint          string
}

func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "3000")

	return &Config{
		RazorpayKeyID:         v.GetString("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:     v.GetString("RAZORPAY_KEY_SECRET"),
		RazorpayWebhookSecret: v.GetString("RAZORPAY_WEBHOOK_SECRET"),
		FrontendURL:           v.GetString("FRONTEND_URL"),
		Port:                  v.GetString("PORT"),
		OTLPEndpoint:          v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
}
