package services

import (
	"context"
	"regexp"

	"github.com/google/uuid"

	"relist/internal/apperrors"
	"relist/internal/models"
	"relist/internal/repositories"
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// TenantService manages store onboarding and credential rotation.
type TenantService struct {
	tenants repositories.TenantRepository
}

func NewTenantService(tenants repositories.TenantRepository) *TenantService {
	return &TenantService{tenants: tenants}
}

func (s *TenantService) Create(ctx context.Context, tenant *models.Tenant) error {
	if tenant.Name == "" {
		return apperrors.Validation("name is required")
	}
	if !subdomainPattern.MatchString(tenant.Subdomain) {
		return apperrors.Validation("subdomain must be lowercase alphanumeric with optional hyphens")
	}
	existing, err := s.tenants.GetBySubdomain(ctx, tenant.Subdomain)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperrors.Validation("subdomain is already in use")
	}
	tenant.ID = uuid.New()
	tenant.IsActive = true
	return s.tenants.Create(ctx, tenant)
}

func (s *TenantService) Get(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, apperrors.NotFound("tenant not found")
	}
	return tenant, nil
}

func (s *TenantService) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	tenant, err := s.tenants.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, apperrors.NotFound("tenant not found")
	}
	return tenant, nil
}

func (s *TenantService) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	return s.tenants.List(ctx, limit, offset)
}

// Update changes tenant settings. The subdomain is immutable after
// onboarding.
func (s *TenantService) Update(ctx context.Context, tenant *models.Tenant) error {
	if tenant.Name == "" {
		return apperrors.Validation("name is required")
	}
	existing, err := s.tenants.GetByID(ctx, tenant.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperrors.NotFound("tenant not found")
	}
	tenant.Subdomain = existing.Subdomain
	return s.tenants.Update(ctx, tenant)
}

func (s *TenantService) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperrors.NotFound("tenant not found")
	}
	return s.tenants.Delete(ctx, id)
}
