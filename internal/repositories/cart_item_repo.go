package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"relist/internal/models"
)

type CartItemRepository interface {
	AddItem(ctx context.Context, item *models.CartItem) error
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error
	ListByCart(ctx context.Context, cartID uuid.UUID) ([]*models.CartItem, error)
	DeleteByCart(ctx context.Context, cartID uuid.UUID) error
	SubtotalByCart(ctx context.Context, cartID uuid.UUID) (float64, error)
}

type cartItemRepository struct {
	db DB
}

func NewCartItemRepository(db DB) CartItemRepository {
	return &cartItemRepository{db: db}
}

// AddItem increments quantity when the product is already in the cart.
func (r *cartItemRepository) AddItem(ctx context.Context, item *models.CartItem) error {
	query := `INSERT INTO cart_items (id, cart_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, quantity`
	err := r.db.QueryRow(ctx, query, item.ID, item.CartID, item.ProductID, item.Quantity).
		Scan(&item.ID, &item.Quantity)
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

func (r *cartItemRepository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *cartItemRepository) ListByCart(ctx context.Context, cartID uuid.UUID) ([]*models.CartItem, error) {
	query := `SELECT id, cart_id, product_id, quantity FROM cart_items WHERE cart_id = $1 ORDER BY id`
	rows, err := r.db.Query(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	var items []*models.CartItem
	for rows.Next() {
		var it models.CartItem
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func (r *cartItemRepository) DeleteByCart(ctx context.Context, cartID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}
	return nil
}

// SubtotalByCart prices the cart in the database so quantities and current
// product prices never drift apart in application code.
func (r *cartItemRepository) SubtotalByCart(ctx context.Context, cartID uuid.UUID) (float64, error) {
	query := `SELECT COALESCE(SUM(ci.quantity * p.price), 0)
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1`
	var subtotal float64
	if err := r.db.QueryRow(ctx, query, cartID).Scan(&subtotal); err != nil {
		return 0, fmt.Errorf("failed to compute cart subtotal: %w", err)
	}
	return subtotal, nil
}
