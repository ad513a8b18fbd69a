package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"relist/internal/models"
)

type SecondHandProductRepository interface {
	Create(ctx context.Context, product *models.SecondHandProduct) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.SecondHandProduct, error)
	Update(ctx context.Context, product *models.SecondHandProduct) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	ListApproved(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.SecondHandProduct, error)
	ListBySeller(ctx context.Context, tenantID, sellerID uuid.UUID, limit, offset int) ([]*models.SecondHandProduct, error)
	ListPending(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.SecondHandProduct, error)
	ListVerified(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.SecondHandProduct, error)
	Search(ctx context.Context, tenantID uuid.UUID, filter *models.SecondHandSearchFilter) ([]*models.SecondHandProduct, error)
	SetApprovalStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error
	SetVerification(ctx context.Context, tenantID, id uuid.UUID, verificationStatus string, shopifyRef *string) error
	DemoteByShopifyRef(ctx context.Context, shopifyRef string) ([]models.ListingRef, error)
	FindBySKUOrBarcode(ctx context.Context, sku, barcode string) ([]*models.SecondHandProduct, error)
}

type secondHandProductRepository struct {
	db DB
}

func NewSecondHandProductRepository(db DB) SecondHandProductRepository {
	return &secondHandProductRepository{db: db}
}

const secondHandColumns = `id, tenant_id, seller_id, name, description, price, condition, original_sku, barcode, size, color, shopify_product_ref, verification_status, approval_status, created_at, updated_at`

func scanSecondHand(row pgx.Row) (*models.SecondHandProduct, error) {
	var p models.SecondHandProduct
	err := row.Scan(&p.ID, &p.TenantID, &p.SellerID, &p.Name, &p.Description, &p.Price,
		&p.Condition, &p.OriginalSKU, &p.Barcode, &p.Size, &p.Color, &p.ShopifyProductRef,
		&p.VerificationStatus, &p.ApprovalStatus, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectSecondHand(rows pgx.Rows) ([]*models.SecondHandProduct, error) {
	var products []*models.SecondHandProduct
	for rows.Next() {
		p, err := scanSecondHand(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan second-hand product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *secondHandProductRepository) Create(ctx context.Context, product *models.SecondHandProduct) error {
	query := `INSERT INTO second_hand_products
		(id, tenant_id, seller_id, name, description, price, condition, original_sku, barcode, size, color, shopify_product_ref, verification_status, approval_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query, product.ID, product.TenantID, product.SellerID,
		product.Name, product.Description, product.Price, product.Condition,
		product.OriginalSKU, product.Barcode, product.Size, product.Color,
		product.ShopifyProductRef, product.VerificationStatus, product.ApprovalStatus).
		Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create second-hand product: %w", err)
	}
	return nil
}

func (r *secondHandProductRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.SecondHandProduct, error) {
	query := `SELECT ` + secondHandColumns + ` FROM second_hand_products WHERE tenant_id = $1 AND id = $2`
	product, err := scanSecondHand(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get second-hand product: %w", err)
	}
	return product, nil
}

func (r *secondHandProductRepository) Update(ctx context.Context, product *models.SecondHandProduct) error {
	query := `UPDATE second_hand_products
		SET name = $3, description = $4, price = $5, condition = $6, size = $7, color = $8, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, product.TenantID, product.ID, product.Name,
		product.Description, product.Price, product.Condition, product.Size, product.Color)
	if err != nil {
		return fmt.Errorf("failed to update second-hand product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *secondHandProductRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM second_hand_products WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete second-hand product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListApproved returns the public storefront view: approved and still
// verified.
func (r *secondHandProductRepository) ListApproved(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.SecondHandProduct, error) {
	query := `SELECT ` + secondHandColumns + ` FROM second_hand_products
		WHERE tenant_id = $1 AND approval_status = 'approved' AND verification_status = 'verified'
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved products: %w", err)
	}
	defer rows.Close()
	return collectSecondHand(rows)
}

func (r *secondHandProductRepository) ListBySeller(ctx context.Context, tenantID, sellerID uuid.UUID, limit, offset int) ([]*models.SecondHandProduct, error) {
	query := `SELECT ` + secondHandColumns + ` FROM second_hand_products
		WHERE tenant_id = $1 AND seller_id = $2
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.db.Query(ctx, query, tenantID, sellerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list seller products: %w", err)
	}
	defer rows.Close()
	return collectSecondHand(rows)
}

func (r *secondHandProductRepository) ListPending(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.SecondHandProduct, error) {
	query := `SELECT ` + secondHandColumns + ` FROM second_hand_products
		WHERE tenant_id = $1 AND approval_status = 'pending'
		ORDER BY created_at ASC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending products: %w", err)
	}
	defer rows.Close()
	return collectSecondHand(rows)
}

// ListVerified feeds the periodic re-verification sweep.
func (r *secondHandProductRepository) ListVerified(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.SecondHandProduct, error) {
	query := `SELECT ` + secondHandColumns + ` FROM second_hand_products
		WHERE tenant_id = $1 AND verification_status = 'verified'
		ORDER BY updated_at ASC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list verified products: %w", err)
	}
	defer rows.Close()
	return collectSecondHand(rows)
}

// Search builds the WHERE clause dynamically from whichever filters are set.
// Results are always restricted to approved and verified listings.
func (r *secondHandProductRepository) Search(ctx context.Context, tenantID uuid.UUID, filter *models.SecondHandSearchFilter) ([]*models.SecondHandProduct, error) {
	query := `SELECT ` + secondHandColumns + ` FROM second_hand_products
		WHERE tenant_id = $1 AND approval_status = 'approved' AND verification_status = 'verified'`
	args := []any{tenantID}
	conditionCount := 2

	if filter.Query != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", conditionCount, conditionCount)
		args = append(args, "%"+filter.Query+"%")
		conditionCount++
	}
	if filter.Condition != nil && *filter.Condition != "" {
		query += fmt.Sprintf(" AND condition = $%d", conditionCount)
		args = append(args, *filter.Condition)
		conditionCount++
	}
	if filter.Size != nil && *filter.Size != "" {
		query += fmt.Sprintf(" AND size = $%d", conditionCount)
		args = append(args, *filter.Size)
		conditionCount++
	}
	if filter.Color != nil && *filter.Color != "" {
		query += fmt.Sprintf(" AND color = $%d", conditionCount)
		args = append(args, *filter.Color)
		conditionCount++
	}
	if filter.MinPrice != nil {
		query += fmt.Sprintf(" AND price >= $%d", conditionCount)
		args = append(args, *filter.MinPrice)
		conditionCount++
	}
	if filter.MaxPrice != nil {
		query += fmt.Sprintf(" AND price <= $%d", conditionCount)
		args = append(args, *filter.MaxPrice)
		conditionCount++
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", conditionCount, conditionCount+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()
	return collectSecondHand(rows)
}

func (r *secondHandProductRepository) SetApprovalStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	query := `UPDATE second_hand_products SET approval_status = $3, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, tenantID, id, status)
	if err != nil {
		return fmt.Errorf("failed to set approval status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *secondHandProductRepository) SetVerification(ctx context.Context, tenantID, id uuid.UUID, verificationStatus string, shopifyRef *string) error {
	query := `UPDATE second_hand_products SET verification_status = $3, shopify_product_ref = $4, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, tenantID, id, verificationStatus, shopifyRef)
	if err != nil {
		return fmt.Errorf("failed to set verification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DemoteByShopifyRef is cross-tenant on purpose: webhook payloads carry no
// tenant context, only the store product reference. Demoted listings lose
// both verification and approval and the stale reference is cleared. The
// affected (tenant, listing) pairs come back so callers can drop cached
// copies.
func (r *secondHandProductRepository) DemoteByShopifyRef(ctx context.Context, shopifyRef string) ([]models.ListingRef, error) {
	query := `UPDATE second_hand_products
		SET verification_status = 'rejected', approval_status = 'rejected', shopify_product_ref = NULL, updated_at = NOW()
		WHERE shopify_product_ref = $1
		RETURNING tenant_id, id`
	rows, err := r.db.Query(ctx, query, shopifyRef)
	if err != nil {
		return nil, fmt.Errorf("failed to demote by shopify ref: %w", err)
	}
	defer rows.Close()

	var refs []models.ListingRef
	for rows.Next() {
		var ref models.ListingRef
		if err := rows.Scan(&ref.TenantID, &ref.ID); err != nil {
			return nil, fmt.Errorf("failed to scan demoted listing: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// FindBySKUOrBarcode matches listings by either identifier across tenants,
// used when a webhook re-activates a product and listings must be re-linked.
func (r *secondHandProductRepository) FindBySKUOrBarcode(ctx context.Context, sku, barcode string) ([]*models.SecondHandProduct, error) {
	var clauses []string
	var args []any
	i := 1
	if sku != "" {
		clauses = append(clauses, fmt.Sprintf("original_sku = $%d", i))
		args = append(args, sku)
		i++
	}
	if barcode != "" {
		clauses = append(clauses, fmt.Sprintf("barcode = $%d", i))
		args = append(args, barcode)
		i++
	}
	if len(clauses) == 0 {
		return nil, nil
	}
	query := `SELECT ` + secondHandColumns + ` FROM second_hand_products WHERE ` + strings.Join(clauses, " OR ")
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find products by variant: %w", err)
	}
	defer rows.Close()
	return collectSecondHand(rows)
}
