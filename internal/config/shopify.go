package config

import (
	"os"
	"strconv"
	"time"
)

// ShopifyConfig holds process-wide Shopify settings. Per-store credentials
// live on the tenant record, not here.
type ShopifyConfig struct {
	APIVersion    string
	WebhookSecret string
	Timeout       time.Duration
}

func LoadShopifyConfig() ShopifyConfig {
	cfg := ShopifyConfig{
		APIVersion:    getEnv("SHOPIFY_API_VERSION", "2024-07"),
		WebhookSecret: os.Getenv("SHOPIFY_WEBHOOK_SECRET"),
		Timeout:       10 * time.Second,
	}
	if raw := os.Getenv("SHOPIFY_TIMEOUT_SECONDS"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			cfg.Timeout = time.Duration(v) * time.Second
		}
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
