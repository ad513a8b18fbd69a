package models

import (
	"time"

	"github.com/google/uuid"
)

// Verification statuses for a second-hand listing.
const (
	VerificationUnverified = "unverified"
	VerificationVerified   = "verified"
	VerificationRejected   = "rejected"
)

// Approval statuses for a second-hand listing.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Conditions a seller can declare for a listing.
var ValidConditions = map[string]bool{
	"new": true, "like_new": true, "good": true, "fair": true, "poor": true,
}

// SecondHandProduct is a seller-submitted listing of a used item that must
// match a product variant in the tenant's Shopify store. Invariant enforced
// by the service layer: approval_status can only be "approved" while
// verification_status is "verified".
type SecondHandProduct struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	TenantID           uuid.UUID `json:"tenant_id" db:"tenant_id"`
	SellerID           uuid.UUID `json:"seller_id" db:"seller_id"`
	Name               string    `json:"name" db:"name"`
	Description        *string   `json:"description" db:"description"`
	Price              float64   `json:"price" db:"price"`
	Condition          string    `json:"condition" db:"condition"`
	OriginalSKU        string    `json:"original_sku" db:"original_sku"`
	Barcode            *string   `json:"barcode" db:"barcode"`
	Size               *string   `json:"size" db:"size"`
	Color              *string   `json:"color" db:"color"`
	ShopifyProductRef  *string   `json:"shopify_product_ref" db:"shopify_product_ref"`
	VerificationStatus string    `json:"verification_status" db:"verification_status"`
	ApprovalStatus     string    `json:"approval_status" db:"approval_status"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`

	Images []*SecondHandProductImage `json:"images,omitempty" db:"-"`
}

// ListingRef identifies a listing together with the tenant that owns it.
// Returned by cross-tenant mutations so callers can invalidate per-tenant
// state.
type ListingRef struct {
	TenantID uuid.UUID `json:"tenant_id" db:"tenant_id"`
	ID       uuid.UUID `json:"id" db:"id"`
}

type SecondHandProductImage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TenantID  uuid.UUID `json:"tenant_id" db:"tenant_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	ImageURL  string    `json:"image_url" db:"image_url"`
	IsPrimary bool      `json:"is_primary" db:"is_primary"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SecondHandSearchFilter holds filter criteria for the public listing search.
// Only approved and verified listings are ever returned.
type SecondHandSearchFilter struct {
	Query     string   `json:"query,omitempty"`     // Free text across name and description
	Condition *string  `json:"condition,omitempty"` // Exact condition match
	Size      *string  `json:"size,omitempty"`
	Color     *string  `json:"color,omitempty"`
	MinPrice  *float64 `json:"min_price,omitempty"`
	MaxPrice  *float64 `json:"max_price,omitempty"`
	Limit     int      `json:"limit,omitempty"`
	Offset    int      `json:"offset,omitempty"`
}

// SecondHandProductUpdate carries owner-editable fields; nil means unchanged.
type SecondHandProductUpdate struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Condition   *string  `json:"condition,omitempty"`
	Size        *string  `json:"size,omitempty"`
	Color       *string  `json:"color,omitempty"`
}
