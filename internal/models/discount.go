package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

type Discount struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TenantID     uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name         string    `json:"name" db:"name"`
	Description  *string   `json:"description" db:"description"`
	DiscountType string    `json:"discount_type" db:"discount_type"`
	Value        float64   `json:"value" db:"value"`
	MinPurchase  *float64  `json:"min_purchase" db:"min_purchase"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
