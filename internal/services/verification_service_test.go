package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relist/internal/apperrors"
	"relist/internal/models"
	"relist/internal/shopify"
)

type stubFinder struct {
	product *shopify.Product
	method  string
	err     error
	calls   int
}

func (f *stubFinder) FindProductBySKUOrBarcode(ctx context.Context, sku, barcode string) (*shopify.Product, string, error) {
	f.calls++
	return f.product, f.method, f.err
}

func configuredTenant() *models.Tenant {
	appURL := "store.myshopify.com"
	token := "shpat_test"
	return &models.Tenant{
		ID:                 uuid.New(),
		Name:               "Store",
		Subdomain:          "store",
		ShopifyAppURL:      &appURL,
		ShopifyAccessToken: &token,
		IsActive:           true,
	}
}

func newVerificationService(finder *stubFinder) *VerificationService {
	return NewVerificationService(func(t *models.Tenant) shopify.ProductFinder { return finder }, nil)
}

func TestVerifyEligibilityRequiresIdentifier(t *testing.T) {
	svc := newVerificationService(&stubFinder{})
	_, err := svc.VerifyEligibility(context.Background(), configuredTenant(), "", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestVerifyEligibilityRequiresConfiguredTenant(t *testing.T) {
	svc := newVerificationService(&stubFinder{})
	tenant := &models.Tenant{ID: uuid.New(), Name: "Bare", Subdomain: "bare"}
	_, err := svc.VerifyEligibility(context.Background(), tenant, "SKU-1", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestVerifyEligibilityActiveProduct(t *testing.T) {
	finder := &stubFinder{
		product: &shopify.Product{ID: "gid://shopify/Product/42", Status: "ACTIVE"},
		method:  "sku",
	}
	svc := newVerificationService(finder)

	result, err := svc.VerifyEligibility(context.Background(), configuredTenant(), "SKU-1", "")
	require.NoError(t, err)
	assert.True(t, result.IsVerified)
	assert.Equal(t, "sku", result.VerificationMethod)
	require.NotNil(t, result.ProductInfo)
	assert.Equal(t, "gid://shopify/Product/42", result.ProductInfo.ID)
}

func TestVerifyEligibilityMissingProduct(t *testing.T) {
	svc := newVerificationService(&stubFinder{})

	result, err := svc.VerifyEligibility(context.Background(), configuredTenant(), "SKU-1", "")
	require.NoError(t, err)
	assert.False(t, result.IsVerified)
	assert.Equal(t, "product not found in store inventory", result.Error)
}

func TestVerifyEligibilityInactiveProduct(t *testing.T) {
	finder := &stubFinder{
		product: &shopify.Product{ID: "gid://shopify/Product/42", Status: "DRAFT"},
		method:  "sku",
	}
	svc := newVerificationService(finder)

	result, err := svc.VerifyEligibility(context.Background(), configuredTenant(), "SKU-1", "")
	require.NoError(t, err)
	assert.False(t, result.IsVerified)
	assert.Equal(t, "product is not active in the store", result.Error)
}

func TestVerifyEligibilityStoreOutage(t *testing.T) {
	finder := &stubFinder{err: errors.New("connection refused")}
	svc := newVerificationService(finder)

	_, err := svc.VerifyEligibility(context.Background(), configuredTenant(), "SKU-1", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindExternalService))
}
