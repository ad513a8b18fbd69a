package jobs

import (
	"context"
	"log"

	"github.com/google/uuid"

	"relist/internal/models"
	"relist/internal/repositories"
	"relist/internal/services"
)

// ListingCache lets the sweep drop cached copies of listings it demotes.
type ListingCache interface {
	DeleteListing(ctx context.Context, tenantID, productID uuid.UUID) error
}

// ReverificationJob sweeps verified listings and demotes any whose store
// product has disappeared or gone inactive. It closes the gap left by
// missed webhooks.
type ReverificationJob struct {
	tenants   repositories.TenantRepository
	listings  repositories.SecondHandProductRepository
	newFinder services.FinderFactory
	cache     ListingCache
	batchSize int
}

func NewReverificationJob(
	tenants repositories.TenantRepository,
	listings repositories.SecondHandProductRepository,
	newFinder services.FinderFactory,
	cache ListingCache,
	batchSize int,
) *ReverificationJob {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ReverificationJob{
		tenants:   tenants,
		listings:  listings,
		newFinder: newFinder,
		cache:     cache,
		batchSize: batchSize,
	}
}

func (j *ReverificationJob) Run(ctx context.Context) error {
	tenants, err := j.tenants.ListActive(ctx)
	if err != nil {
		return err
	}
	for _, tenant := range tenants {
		if !tenant.ShopifyConfigured() {
			continue
		}
		if err := j.sweepTenant(ctx, tenant); err != nil {
			log.Printf("re-verification sweep failed for tenant %s: %v", tenant.ID, err)
		}
	}
	return nil
}

func (j *ReverificationJob) sweepTenant(ctx context.Context, tenant *models.Tenant) error {
	finder := j.newFinder(tenant)
	offset := 0
	for {
		listings, err := j.listings.ListVerified(ctx, tenant.ID, j.batchSize, offset)
		if err != nil {
			return err
		}
		if len(listings) == 0 {
			return nil
		}
		demoted := 0
		for _, listing := range listings {
			barcode := ""
			if listing.Barcode != nil {
				barcode = *listing.Barcode
			}
			product, _, err := finder.FindProductBySKUOrBarcode(ctx, listing.OriginalSKU, barcode)
			if err != nil {
				// Store outage is not evidence the product is gone.
				log.Printf("skipping listing %s, store lookup failed: %v", listing.ID, err)
				continue
			}
			if product != nil && product.Status == "ACTIVE" {
				continue
			}
			if err := j.listings.SetApprovalStatus(ctx, tenant.ID, listing.ID, models.ApprovalRejected); err != nil {
				return err
			}
			if err := j.listings.SetVerification(ctx, tenant.ID, listing.ID, models.VerificationRejected, nil); err != nil {
				return err
			}
			if j.cache != nil {
				if err := j.cache.DeleteListing(ctx, tenant.ID, listing.ID); err != nil {
					log.Printf("failed to invalidate listing cache %s: %v", listing.ID, err)
				}
			}
			demoted++
		}
		if demoted > 0 {
			log.Printf("re-verification demoted %d listing(s) for tenant %s", demoted, tenant.ID)
		}
		// Demoted rows leave the verified set, so only advance past the
		// survivors.
		offset += len(listings) - demoted
		if len(listings) < j.batchSize {
			return nil
		}
	}
}
