package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is a single onboarded Shopify store. The subdomain is assigned at
// onboarding and never changes.
type Tenant struct {
	ID                   uuid.UUID `json:"id" db:"id"`
	Name                 string    `json:"name" db:"name"`
	Subdomain            string    `json:"subdomain" db:"subdomain"`
	ShopifyAppURL        *string   `json:"shopify_app_url" db:"shopify_app_url"`
	ShopifyAccessToken   *string   `json:"-" db:"shopify_access_token"`
	ShopifyWebhookSecret *string   `json:"-" db:"shopify_webhook_secret"`
	IsActive             bool      `json:"is_active" db:"is_active"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// ShopifyConfigured reports whether the tenant can talk to its store.
func (t *Tenant) ShopifyConfigured() bool {
	return t.ShopifyAppURL != nil && *t.ShopifyAppURL != "" &&
		t.ShopifyAccessToken != nil && *t.ShopifyAccessToken != ""
}
