package models

import "relist/internal/shopify"

// VerificationResult records the outcome of checking a submitted listing
// against the tenant's store.
type VerificationResult struct {
	IsVerified         bool             `json:"is_verified"`
	ProductInfo        *shopify.Product `json:"product_info,omitempty"`
	VerificationMethod string           `json:"verification_method,omitempty"` // "sku" or "barcode"
	Error              string           `json:"error,omitempty"`
}
