package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"relist/internal/models"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error)
	GetByShopifyDomain(ctx context.Context, domain string) (*models.Tenant, error)
	Update(ctx context.Context, tenant *models.Tenant) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
	ListActive(ctx context.Context) ([]*models.Tenant, error)
}

type tenantRepository struct {
	db DB
}

func NewTenantRepository(db DB) TenantRepository {
	return &tenantRepository{db: db}
}

const tenantColumns = `id, name, subdomain, shopify_app_url, shopify_access_token, shopify_webhook_secret, is_active, created_at, updated_at`

func scanTenant(row pgx.Row) (*models.Tenant, error) {
	var t models.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Subdomain, &t.ShopifyAppURL, &t.ShopifyAccessToken,
		&t.ShopifyWebhookSecret, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `INSERT INTO tenants (id, name, subdomain, shopify_app_url, shopify_access_token, shopify_webhook_secret, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query, tenant.ID, tenant.Name, tenant.Subdomain,
		tenant.ShopifyAppURL, tenant.ShopifyAccessToken, tenant.ShopifyWebhookSecret, tenant.IsActive).
		Scan(&tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

func (r *tenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	tenant, err := scanTenant(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return tenant, nil
}

func (r *tenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE subdomain = $1`
	tenant, err := scanTenant(r.db.QueryRow(ctx, query, subdomain))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tenant by subdomain: %w", err)
	}
	return tenant, nil
}

// GetByShopifyDomain matches a tenant by its store domain, tolerating a
// stored scheme prefix or trailing slash. Webhooks identify the sender with
// the X-Shopify-Shop-Domain header, which carries the bare domain.
func (r *tenantRepository) GetByShopifyDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants
		WHERE trim(trailing '/' from replace(replace(shopify_app_url, 'https://', ''), 'http://', '')) = $1`
	tenant, err := scanTenant(r.db.QueryRow(ctx, query, domain))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tenant by shopify domain: %w", err)
	}
	return tenant, nil
}

func (r *tenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	query := `UPDATE tenants
		SET name = $2, shopify_app_url = $3, shopify_access_token = $4, shopify_webhook_secret = $5, is_active = $6, updated_at = NOW()
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, tenant.ID, tenant.Name, tenant.ShopifyAppURL,
		tenant.ShopifyAccessToken, tenant.ShopifyWebhookSecret, tenant.IsActive)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *tenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *tenantRepository) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()
	return collectTenants(rows)
}

// ListActive returns every active tenant. Used by background jobs, so no
// pagination.
func (r *tenantRepository) ListActive(ctx context.Context) ([]*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE is_active = TRUE ORDER BY created_at`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active tenants: %w", err)
	}
	defer rows.Close()
	return collectTenants(rows)
}

func collectTenants(rows pgx.Rows) ([]*models.Tenant, error) {
	var tenants []*models.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}
