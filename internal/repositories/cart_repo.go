package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"relist/internal/models"
)

type CartRepository interface {
	Create(ctx context.Context, cart *models.Cart) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Cart, error)
	GetActiveByUser(ctx context.Context, tenantID, userID uuid.UUID) (*models.Cart, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error
	SetDiscount(ctx context.Context, tenantID, id uuid.UUID, discountID *uuid.UUID) error
	History(ctx context.Context, tenantID, userID uuid.UUID, limit, offset int) ([]*models.Cart, error)
}

type cartRepository struct {
	db DB
}

func NewCartRepository(db DB) CartRepository {
	return &cartRepository{db: db}
}

const cartColumns = `id, tenant_id, user_id, status, discount_id, created_at, updated_at`

func scanCart(row pgx.Row) (*models.Cart, error) {
	var c models.Cart
	err := row.Scan(&c.ID, &c.TenantID, &c.UserID, &c.Status, &c.DiscountID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cartRepository) Create(ctx context.Context, cart *models.Cart) error {
	query := `INSERT INTO carts (id, tenant_id, user_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query, cart.ID, cart.TenantID, cart.UserID, cart.Status).
		Scan(&cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

func (r *cartRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE tenant_id = $1 AND id = $2`
	cart, err := scanCart(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return cart, nil
}

// GetActiveByUser returns the user's single open cart, or nil.
func (r *cartRepository) GetActiveByUser(ctx context.Context, tenantID, userID uuid.UUID) (*models.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts
		WHERE tenant_id = $1 AND user_id = $2 AND status = 'active'
		ORDER BY created_at DESC LIMIT 1`
	cart, err := scanCart(r.db.QueryRow(ctx, query, tenantID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active cart: %w", err)
	}
	return cart, nil
}

func (r *cartRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	query := `UPDATE carts SET status = $3, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, tenantID, id, status)
	if err != nil {
		return fmt.Errorf("failed to update cart status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *cartRepository) SetDiscount(ctx context.Context, tenantID, id uuid.UUID, discountID *uuid.UUID) error {
	query := `UPDATE carts SET discount_id = $3, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, tenantID, id, discountID)
	if err != nil {
		return fmt.Errorf("failed to set cart discount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *cartRepository) History(ctx context.Context, tenantID, userID uuid.UUID, limit, offset int) ([]*models.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts
		WHERE tenant_id = $1 AND user_id = $2 AND status != 'active'
		ORDER BY updated_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.db.Query(ctx, query, tenantID, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart history: %w", err)
	}
	defer rows.Close()

	var carts []*models.Cart
	for rows.Next() {
		c, err := scanCart(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart: %w", err)
		}
		carts = append(carts, c)
	}
	return carts, rows.Err()
}
