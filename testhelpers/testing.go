// Package testhelpers provides fixtures for integration tests that run
// against a real database. Tests skip themselves when TEST_DATABASE_URL is
// unset.
package testhelpers

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"relist/internal/models"
	"relist/internal/repositories"
	"relist/pkg/database"
)

func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database test")
	}
	pool, err := database.NewPool(context.Background(), dsn)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func SetupTestTenant(t *testing.T, db repositories.DB) *models.Tenant {
	t.Helper()
	repo := repositories.NewTenantRepository(db)
	appURL := "test-store.myshopify.com"
	token := "shpat_test_token"
	tenant := &models.Tenant{
		ID:                 uuid.New(),
		Name:               "Test Store",
		Subdomain:          "test-" + uuid.NewString()[:8],
		ShopifyAppURL:      &appURL,
		ShopifyAccessToken: &token,
		IsActive:           true,
	}
	if err := repo.Create(context.Background(), tenant); err != nil {
		t.Fatalf("failed to create test tenant: %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Delete(context.Background(), tenant.ID)
	})
	return tenant
}

func SetupTestUser(t *testing.T, db repositories.DB, tenantID uuid.UUID, role string) *models.User {
	t.Helper()
	repo := repositories.NewUserRepository(db)
	user := &models.User{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Username:     "user-" + uuid.NewString()[:8],
		Email:        uuid.NewString()[:8] + "@example.com",
		PasswordHash: "$2a$10$invalidhashforfixtureonly",
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Delete(context.Background(), tenantID, user.ID)
	})
	return user
}

func SetupTestListing(t *testing.T, db repositories.DB, tenantID, sellerID uuid.UUID) *models.SecondHandProduct {
	t.Helper()
	repo := repositories.NewSecondHandProductRepository(db)
	ref := "gid://shopify/Product/123456"
	listing := &models.SecondHandProduct{
		ID:                 uuid.New(),
		TenantID:           tenantID,
		SellerID:           sellerID,
		Name:               "Test Listing",
		Price:              49.99,
		Condition:          "good",
		OriginalSKU:        "SKU-" + uuid.NewString()[:8],
		ShopifyProductRef:  &ref,
		VerificationStatus: models.VerificationVerified,
		ApprovalStatus:     models.ApprovalPending,
	}
	if err := repo.Create(context.Background(), listing); err != nil {
		t.Fatalf("failed to create test listing: %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Delete(context.Background(), tenantID, listing.ID)
	})
	return listing
}
