package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relist/internal/common"
	"relist/internal/models"
	"relist/internal/repositories"
)

type fakeTenantRepo struct {
	repositories.TenantRepository
	bySubdomain map[string]*models.Tenant
}

func (f *fakeTenantRepo) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	return f.bySubdomain[subdomain], nil
}

func activeTenant(subdomain string) *models.Tenant {
	return &models.Tenant{ID: uuid.New(), Subdomain: subdomain, IsActive: true}
}

// runResolve sends a request through ResolveTenant with an optional tenant
// claim already bound to the request context, the way the JWT middleware
// leaves it on authenticated routes.
func runResolve(t *testing.T, repo repositories.TenantRepository, subdomain string, claimedTenant uuid.UUID) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/listings", nil)
	if subdomain != "" {
		req.Header.Set("X-Tenant-Subdomain", subdomain)
	}
	if claimedTenant != uuid.Nil {
		req = req.WithContext(context.WithValue(req.Context(), common.TenantIDKey, claimedTenant))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	handler := ResolveTenant(repo)(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, reached
}

func TestResolveTenantRejectsForeignToken(t *testing.T) {
	// A valid token from tenant A must not reach a handler under tenant B
	// just because the subdomain header names B.
	tenantA := activeTenant("alpha")
	tenantB := activeTenant("beta")
	repo := &fakeTenantRepo{bySubdomain: map[string]*models.Tenant{
		"alpha": tenantA,
		"beta":  tenantB,
	}}

	rec, reached := runResolve(t, repo, "beta", tenantA.ID)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, reached, "cross-tenant request must not reach the handler")
}

func TestResolveTenantAcceptsMatchingToken(t *testing.T) {
	tenant := activeTenant("alpha")
	repo := &fakeTenantRepo{bySubdomain: map[string]*models.Tenant{"alpha": tenant}}

	rec, reached := runResolve(t, repo, "alpha", tenant.ID)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
}

func TestResolveTenantWithoutToken(t *testing.T) {
	tenant := activeTenant("alpha")
	repo := &fakeTenantRepo{bySubdomain: map[string]*models.Tenant{"alpha": tenant}}

	rec, reached := runResolve(t, repo, "alpha", uuid.Nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
}

func TestResolveTenantUnknownSubdomain(t *testing.T) {
	repo := &fakeTenantRepo{bySubdomain: map[string]*models.Tenant{}}

	rec, reached := runResolve(t, repo, "ghost", uuid.Nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, reached)
}

func TestResolveTenantInactiveTenant(t *testing.T) {
	tenant := activeTenant("alpha")
	tenant.IsActive = false
	repo := &fakeTenantRepo{bySubdomain: map[string]*models.Tenant{"alpha": tenant}}

	rec, reached := runResolve(t, repo, "alpha", uuid.Nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, reached)
}
