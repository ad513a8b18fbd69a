package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"relist/internal/models"
)

type DiscountRepository interface {
	Create(ctx context.Context, discount *models.Discount) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Discount, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Discount, error)
	ListActive(ctx context.Context, tenantID uuid.UUID) ([]*models.Discount, error)
	Update(ctx context.Context, discount *models.Discount) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type discountRepository struct {
	db DB
}

func NewDiscountRepository(db DB) DiscountRepository {
	return &discountRepository{db: db}
}

const discountColumns = `id, tenant_id, name, description, discount_type, value, min_purchase, active, created_at, updated_at`

func scanDiscount(row pgx.Row) (*models.Discount, error) {
	var d models.Discount
	err := row.Scan(&d.ID, &d.TenantID, &d.Name, &d.Description, &d.DiscountType,
		&d.Value, &d.MinPurchase, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *discountRepository) Create(ctx context.Context, discount *models.Discount) error {
	query := `INSERT INTO discounts (id, tenant_id, name, description, discount_type, value, min_purchase, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query, discount.ID, discount.TenantID, discount.Name,
		discount.Description, discount.DiscountType, discount.Value, discount.MinPurchase, discount.Active).
		Scan(&discount.CreatedAt, &discount.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create discount: %w", err)
	}
	return nil
}

func (r *discountRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Discount, error) {
	query := `SELECT ` + discountColumns + ` FROM discounts WHERE tenant_id = $1 AND id = $2`
	discount, err := scanDiscount(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get discount: %w", err)
	}
	return discount, nil
}

func (r *discountRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Discount, error) {
	query := `SELECT ` + discountColumns + ` FROM discounts WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list discounts: %w", err)
	}
	defer rows.Close()
	return collectDiscounts(rows)
}

func (r *discountRepository) ListActive(ctx context.Context, tenantID uuid.UUID) ([]*models.Discount, error) {
	query := `SELECT ` + discountColumns + ` FROM discounts WHERE tenant_id = $1 AND active = TRUE ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active discounts: %w", err)
	}
	defer rows.Close()
	return collectDiscounts(rows)
}

func collectDiscounts(rows pgx.Rows) ([]*models.Discount, error) {
	var discounts []*models.Discount
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan discount: %w", err)
		}
		discounts = append(discounts, d)
	}
	return discounts, rows.Err()
}

func (r *discountRepository) Update(ctx context.Context, discount *models.Discount) error {
	query := `UPDATE discounts
		SET name = $3, description = $4, discount_type = $5, value = $6, min_purchase = $7, active = $8, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, discount.TenantID, discount.ID, discount.Name,
		discount.Description, discount.DiscountType, discount.Value, discount.MinPurchase, discount.Active)
	if err != nil {
		return fmt.Errorf("failed to update discount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *discountRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM discounts WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete discount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
