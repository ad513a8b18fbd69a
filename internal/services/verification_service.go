package services

import (
	"context"
	"log"

	"relist/internal/apperrors"
	"relist/internal/caching"
	"relist/internal/models"
	"relist/internal/shopify"
)

// FinderFactory builds a store client from a tenant's own credentials.
type FinderFactory func(tenant *models.Tenant) shopify.ProductFinder

// VerificationService checks a submitted listing against the tenant's store
// catalog. Results are cached per tenant and identifier pair; store outages
// surface as external service errors rather than silent rejections.
type VerificationService struct {
	newFinder FinderFactory
	cache     *caching.CacheService
}

func NewVerificationService(newFinder FinderFactory, cache *caching.CacheService) *VerificationService {
	return &VerificationService{newFinder: newFinder, cache: cache}
}

// VerifyEligibility decides whether a listing identified by sku and/or
// barcode may be sold. A product must exist in the store and be ACTIVE.
func (s *VerificationService) VerifyEligibility(ctx context.Context, tenant *models.Tenant, sku, barcode string) (*models.VerificationResult, error) {
	if sku == "" && barcode == "" {
		return nil, apperrors.Validation("either sku or barcode is required")
	}
	if !tenant.ShopifyConfigured() {
		return nil, apperrors.Validation("tenant store is not configured for verification")
	}

	if s.cache != nil {
		cached, err := s.cache.GetVerification(ctx, tenant.ID, sku, barcode)
		if err != nil {
			log.Printf("verification cache read failed for tenant %s: %v", tenant.ID, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	finder := s.newFinder(tenant)
	product, method, err := finder.FindProductBySKUOrBarcode(ctx, sku, barcode)
	if err != nil {
		return nil, apperrors.ExternalService("store lookup failed", err)
	}

	result := &models.VerificationResult{}
	switch {
	case product == nil:
		result.Error = "product not found in store inventory"
	case product.Status != "ACTIVE":
		result.ProductInfo = product
		result.Error = "product is not active in the store"
	default:
		result.IsVerified = true
		result.ProductInfo = product
		result.VerificationMethod = method
	}

	if s.cache != nil {
		if err := s.cache.SetVerification(ctx, tenant.ID, sku, barcode, result); err != nil {
			log.Printf("verification cache write failed for tenant %s: %v", tenant.ID, err)
		}
	}
	return result, nil
}
