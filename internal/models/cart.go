package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	CartActive    = "active"
	CartCompleted = "completed"
	CartAbandoned = "abandoned"
)

type Cart struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	TenantID   uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	Status     string     `json:"status" db:"status"`
	DiscountID *uuid.UUID `json:"discount_id" db:"discount_id"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`

	Items []*CartItem `json:"items,omitempty" db:"-"`
}

type CartItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CartID    uuid.UUID `json:"cart_id" db:"cart_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
}

// CartTotals is the computed price summary for a cart.
type CartTotals struct {
	Subtotal      float64 `json:"subtotal"`
	DiscountValue float64 `json:"discount_value"`
	Total         float64 `json:"total"`
}
