package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relist/internal/models"
	"relist/internal/repositories"
	"relist/internal/services"
	"relist/internal/shopify"
)

type fixedFinder struct {
	product *shopify.Product
	err     error
}

func (f *fixedFinder) FindProductBySKUOrBarcode(ctx context.Context, sku, barcode string) (*shopify.Product, string, error) {
	return f.product, "sku", f.err
}

type fakeTenantRepo struct {
	repositories.TenantRepository
	tenants []*models.Tenant
}

func (f *fakeTenantRepo) ListActive(ctx context.Context) ([]*models.Tenant, error) {
	return f.tenants, nil
}

type fakeListingRepo struct {
	repositories.SecondHandProductRepository
	verified        []*models.SecondHandProduct
	served          bool
	demotedApproval []uuid.UUID
	demotedVerify   []uuid.UUID
}

func (f *fakeListingRepo) ListVerified(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.SecondHandProduct, error) {
	if f.served {
		return nil, nil
	}
	f.served = true
	return f.verified, nil
}

func (f *fakeListingRepo) SetApprovalStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	f.demotedApproval = append(f.demotedApproval, id)
	return nil
}

func (f *fakeListingRepo) SetVerification(ctx context.Context, tenantID, id uuid.UUID, verificationStatus string, shopifyRef *string) error {
	f.demotedVerify = append(f.demotedVerify, id)
	return nil
}

func configuredTenant() *models.Tenant {
	appURL := "store.myshopify.com"
	token := "shpat_test"
	return &models.Tenant{
		ID:                 uuid.New(),
		Subdomain:          "store",
		ShopifyAppURL:      &appURL,
		ShopifyAccessToken: &token,
		IsActive:           true,
	}
}

func verifiedListing(tenantID uuid.UUID) *models.SecondHandProduct {
	return &models.SecondHandProduct{
		ID:                 uuid.New(),
		TenantID:           tenantID,
		Name:               "Listing",
		OriginalSKU:        "SKU-1",
		VerificationStatus: models.VerificationVerified,
		ApprovalStatus:     models.ApprovalApproved,
	}
}

type recordingCache struct {
	deleted []uuid.UUID
}

func (r *recordingCache) DeleteListing(ctx context.Context, tenantID, productID uuid.UUID) error {
	r.deleted = append(r.deleted, productID)
	return nil
}

func newJob(tenants *fakeTenantRepo, listings *fakeListingRepo, finder *fixedFinder) *ReverificationJob {
	factory := func(t *models.Tenant) shopify.ProductFinder { return finder }
	return NewReverificationJob(tenants, listings, services.FinderFactory(factory), nil, 100)
}

func TestSweepDemotesMissingProducts(t *testing.T) {
	tenant := configuredTenant()
	listings := &fakeListingRepo{verified: []*models.SecondHandProduct{verifiedListing(tenant.ID)}}
	job := newJob(&fakeTenantRepo{tenants: []*models.Tenant{tenant}}, listings, &fixedFinder{product: nil})

	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, listings.demotedApproval, 1)
	assert.Len(t, listings.demotedVerify, 1)
}

func TestSweepDemotesInactiveProducts(t *testing.T) {
	tenant := configuredTenant()
	listings := &fakeListingRepo{verified: []*models.SecondHandProduct{verifiedListing(tenant.ID)}}
	finder := &fixedFinder{product: &shopify.Product{ID: "gid://shopify/Product/1", Status: "ARCHIVED"}}
	job := newJob(&fakeTenantRepo{tenants: []*models.Tenant{tenant}}, listings, finder)

	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, listings.demotedVerify, 1)
}

func TestSweepKeepsActiveProducts(t *testing.T) {
	tenant := configuredTenant()
	listings := &fakeListingRepo{verified: []*models.SecondHandProduct{verifiedListing(tenant.ID)}}
	finder := &fixedFinder{product: &shopify.Product{ID: "gid://shopify/Product/1", Status: "ACTIVE"}}
	job := newJob(&fakeTenantRepo{tenants: []*models.Tenant{tenant}}, listings, finder)

	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, listings.demotedVerify)
}

func TestSweepSkipsOnStoreOutage(t *testing.T) {
	// A lookup failure is not proof the product is gone, so nothing is
	// demoted.
	tenant := configuredTenant()
	listings := &fakeListingRepo{verified: []*models.SecondHandProduct{verifiedListing(tenant.ID)}}
	job := newJob(&fakeTenantRepo{tenants: []*models.Tenant{tenant}}, listings, &fixedFinder{err: errors.New("timeout")})

	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, listings.demotedVerify)
}

func TestSweepInvalidatesDemotedListingCache(t *testing.T) {
	tenant := configuredTenant()
	listing := verifiedListing(tenant.ID)
	listings := &fakeListingRepo{verified: []*models.SecondHandProduct{listing}}
	cache := &recordingCache{}
	factory := func(tn *models.Tenant) shopify.ProductFinder { return &fixedFinder{product: nil} }
	job := NewReverificationJob(&fakeTenantRepo{tenants: []*models.Tenant{tenant}},
		listings, services.FinderFactory(factory), cache, 100)

	require.NoError(t, job.Run(context.Background()))
	require.Len(t, cache.deleted, 1)
	assert.Equal(t, listing.ID, cache.deleted[0])
}

func TestSweepSkipsUnconfiguredTenants(t *testing.T) {
	tenant := &models.Tenant{ID: uuid.New(), Subdomain: "bare", IsActive: true}
	listings := &fakeListingRepo{verified: []*models.SecondHandProduct{verifiedListing(tenant.ID)}}
	job := newJob(&fakeTenantRepo{tenants: []*models.Tenant{tenant}}, listings, &fixedFinder{})

	require.NoError(t, job.Run(context.Background()))
	assert.False(t, listings.served, "unconfigured tenants are never queried")
}
