package services

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"relist/internal/apperrors"
	"relist/internal/models"
	"relist/internal/repositories"
)

// ImageUpload is one file from a multipart listing submission.
type ImageUpload struct {
	Filename string
	Reader   io.Reader
	Size     int64
}

// ImageStorage is the object store surface the listing workflow needs.
// MinioService is the production implementation.
type ImageStorage interface {
	UploadImage(ctx context.Context, tenantID, productID uuid.UUID, filename string, reader io.Reader, size int64) (string, error)
	GetPresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
	DeleteImage(ctx context.Context, objectKey string) error
}

// ListingCache is the cache surface the listing workflow needs.
// caching.CacheService is the production implementation.
type ListingCache interface {
	GetListing(ctx context.Context, tenantID, productID uuid.UUID) (*models.SecondHandProduct, error)
	SetListing(ctx context.Context, product *models.SecondHandProduct) error
	DeleteListing(ctx context.Context, tenantID, productID uuid.UUID) error
}

// SecondHandService owns the listing lifecycle: verified submission, admin
// approval, seller edits, public search, and webhook-driven demotion.
type SecondHandService struct {
	products     repositories.SecondHandProductRepository
	images       repositories.SecondHandImageRepository
	verification *VerificationService
	storage      ImageStorage
	cache        ListingCache
}

func NewSecondHandService(
	products repositories.SecondHandProductRepository,
	images repositories.SecondHandImageRepository,
	verification *VerificationService,
	storage ImageStorage,
	cache ListingCache,
) *SecondHandService {
	return &SecondHandService{
		products:     products,
		images:       images,
		verification: verification,
		storage:      storage,
		cache:        cache,
	}
}

// CreateListingInput carries a seller's submission.
type CreateListingInput struct {
	Name        string
	Description *string
	Price       float64
	Condition   string
	OriginalSKU string
	Barcode     *string
	Size        *string
	Color       *string
	Images      []ImageUpload
}

func (in *CreateListingInput) validate() error {
	if in.Name == "" {
		return apperrors.Validation("name is required")
	}
	if in.Price <= 0 {
		return apperrors.Validation("price must be greater than zero")
	}
	if !models.ValidConditions[in.Condition] {
		return apperrors.Validation("condition must be one of: new, like_new, good, fair, poor")
	}
	barcode := ""
	if in.Barcode != nil {
		barcode = *in.Barcode
	}
	if in.OriginalSKU == "" && barcode == "" {
		return apperrors.Validation("either original_sku or barcode is required")
	}
	if len(in.Images) == 0 {
		return apperrors.Validation("at least one image is required")
	}
	for _, img := range in.Images {
		if _, err := ValidateImageFilename(img.Filename); err != nil {
			return err
		}
		if img.Size > MaxImageSize {
			return apperrors.Validation("image exceeds the 5MB size limit")
		}
	}
	return nil
}

// Create verifies the submission against the store before anything is
// persisted. A listing that fails verification is rejected outright and
// never written.
func (s *SecondHandService) Create(ctx context.Context, tenant *models.Tenant, sellerID uuid.UUID, in *CreateListingInput) (*models.SecondHandProduct, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	barcode := ""
	if in.Barcode != nil {
		barcode = *in.Barcode
	}
	result, err := s.verification.VerifyEligibility(ctx, tenant, in.OriginalSKU, barcode)
	if err != nil {
		return nil, err
	}
	if !result.IsVerified {
		return nil, apperrors.Validation("product verification failed: " + result.Error)
	}

	product := &models.SecondHandProduct{
		ID:                 uuid.New(),
		TenantID:           tenant.ID,
		SellerID:           sellerID,
		Name:               in.Name,
		Description:        in.Description,
		Price:              in.Price,
		Condition:          in.Condition,
		OriginalSKU:        in.OriginalSKU,
		Barcode:            in.Barcode,
		Size:               in.Size,
		Color:              in.Color,
		VerificationStatus: models.VerificationVerified,
		ApprovalStatus:     models.ApprovalPending,
	}
	if result.ProductInfo != nil {
		ref := result.ProductInfo.ID
		product.ShopifyProductRef = &ref
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	for i, img := range in.Images {
		key, err := s.storage.UploadImage(ctx, tenant.ID, product.ID, img.Filename, img.Reader, img.Size)
		if err != nil {
			return nil, err
		}
		record := &models.SecondHandProductImage{
			ID:        uuid.New(),
			TenantID:  tenant.ID,
			ProductID: product.ID,
			ImageURL:  key,
			IsPrimary: i == 0,
		}
		if err := s.images.Create(ctx, record); err != nil {
			return nil, err
		}
		product.Images = append(product.Images, record)
	}
	return product, nil
}

// Get loads a listing with its images, going through the cache for the
// listing row.
func (s *SecondHandService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.SecondHandProduct, error) {
	var product *models.SecondHandProduct
	if s.cache != nil {
		cached, err := s.cache.GetListing(ctx, tenantID, id)
		if err != nil {
			log.Printf("listing cache read failed: %v", err)
		} else {
			product = cached
		}
	}
	if product == nil {
		loaded, err := s.products.GetByID(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		if loaded == nil {
			return nil, apperrors.NotFound("listing not found")
		}
		product = loaded
		if s.cache != nil {
			if err := s.cache.SetListing(ctx, product); err != nil {
				log.Printf("listing cache write failed: %v", err)
			}
		}
	}
	images, err := s.images.GetByProductID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	product.Images = images
	return product, nil
}

// Update applies owner edits. Only the seller who created the listing may
// change it; identity fields like the SKU stay immutable after verification.
func (s *SecondHandService) Update(ctx context.Context, tenantID, sellerID, id uuid.UUID, in *models.SecondHandProductUpdate) (*models.SecondHandProduct, error) {
	product, err := s.products.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperrors.NotFound("listing not found")
	}
	if product.SellerID != sellerID {
		return nil, apperrors.Authorization("only the listing owner can modify it")
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, apperrors.Validation("name cannot be empty")
		}
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = in.Description
	}
	if in.Price != nil {
		if *in.Price <= 0 {
			return nil, apperrors.Validation("price must be greater than zero")
		}
		product.Price = *in.Price
	}
	if in.Condition != nil {
		if !models.ValidConditions[*in.Condition] {
			return nil, apperrors.Validation("condition must be one of: new, like_new, good, fair, poor")
		}
		product.Condition = *in.Condition
	}
	if in.Size != nil {
		product.Size = in.Size
	}
	if in.Color != nil {
		product.Color = in.Color
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	s.invalidateListing(ctx, tenantID, id)
	return product, nil
}

// Delete removes a listing, its image records and its stored objects. Only
// the owner may delete.
func (s *SecondHandService) Delete(ctx context.Context, tenantID, sellerID, id uuid.UUID) error {
	product, err := s.products.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if product == nil {
		return apperrors.NotFound("listing not found")
	}
	if product.SellerID != sellerID {
		return apperrors.Authorization("only the listing owner can delete it")
	}

	images, err := s.images.GetByProductID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	for _, img := range images {
		if err := s.storage.DeleteImage(ctx, img.ImageURL); err != nil {
			log.Printf("failed to delete stored image %s: %v", img.ImageURL, err)
		}
	}
	if err := s.images.DeleteAllByProductID(ctx, tenantID, id); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.invalidateListing(ctx, tenantID, id)
	return nil
}

// Approve marks a verified listing sellable. Approving an already approved
// listing is a no-op; approving an unverified one is an error.
func (s *SecondHandService) Approve(ctx context.Context, tenantID, id uuid.UUID) (*models.SecondHandProduct, error) {
	product, err := s.products.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperrors.NotFound("listing not found")
	}
	if product.ApprovalStatus == models.ApprovalApproved {
		return product, nil
	}
	if product.VerificationStatus != models.VerificationVerified {
		return nil, apperrors.Validation("only verified listings can be approved")
	}
	if err := s.products.SetApprovalStatus(ctx, tenantID, id, models.ApprovalApproved); err != nil {
		return nil, err
	}
	product.ApprovalStatus = models.ApprovalApproved
	s.invalidateListing(ctx, tenantID, id)
	return product, nil
}

// Reject marks a listing as rejected by the admin.
func (s *SecondHandService) Reject(ctx context.Context, tenantID, id uuid.UUID) (*models.SecondHandProduct, error) {
	product, err := s.products.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperrors.NotFound("listing not found")
	}
	if product.ApprovalStatus == models.ApprovalRejected {
		return product, nil
	}
	if err := s.products.SetApprovalStatus(ctx, tenantID, id, models.ApprovalRejected); err != nil {
		return nil, err
	}
	product.ApprovalStatus = models.ApprovalRejected
	s.invalidateListing(ctx, tenantID, id)
	return product, nil
}

func (s *SecondHandService) ListApproved(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.SecondHandProduct, error) {
	return s.products.ListApproved(ctx, tenantID, limit, offset)
}

func (s *SecondHandService) ListBySeller(ctx context.Context, tenantID, sellerID uuid.UUID, limit, offset int) ([]*models.SecondHandProduct, error) {
	return s.products.ListBySeller(ctx, tenantID, sellerID, limit, offset)
}

func (s *SecondHandService) ListPending(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.SecondHandProduct, error) {
	return s.products.ListPending(ctx, tenantID, limit, offset)
}

func (s *SecondHandService) Search(ctx context.Context, tenantID uuid.UUID, filter *models.SecondHandSearchFilter) ([]*models.SecondHandProduct, error) {
	return s.products.Search(ctx, tenantID, filter)
}

// ImageURL returns a presigned download URL for one of the listing's
// images.
func (s *SecondHandService) ImageURL(ctx context.Context, tenantID, imageID uuid.UUID) (string, error) {
	img, err := s.images.GetByID(ctx, tenantID, imageID)
	if err != nil {
		return "", err
	}
	if img == nil {
		return "", apperrors.NotFound("image not found")
	}
	return s.storage.GetPresignedURL(ctx, img.ImageURL, time.Hour)
}

// DemoteByShopifyRef strips verification and approval from every listing
// pointing at the given store product, then drops each demoted listing from
// the cache so stale verified copies stop being served. Called on product
// deletion webhooks.
func (s *SecondHandService) DemoteByShopifyRef(ctx context.Context, shopifyRef string) (int64, error) {
	refs, err := s.products.DemoteByShopifyRef(ctx, shopifyRef)
	if err != nil {
		return 0, err
	}
	for _, ref := range refs {
		s.invalidateListing(ctx, ref.TenantID, ref.ID)
	}
	if len(refs) > 0 {
		log.Printf("demoted %d listing(s) for store product %s", len(refs), shopifyRef)
	}
	return int64(len(refs)), nil
}

// ReconcileProductUpdate reacts to a product update webhook. Draft or
// archived products demote their listings; active products re-attach any
// listing that matches one of the product's variants.
func (s *SecondHandService) ReconcileProductUpdate(ctx context.Context, shopifyRef, status string, variants []WebhookVariant) error {
	switch status {
	case "active":
		return s.relinkActiveProduct(ctx, shopifyRef, variants)
	case "draft", "archived":
		_, err := s.DemoteByShopifyRef(ctx, shopifyRef)
		return err
	default:
		log.Printf("ignoring product update with status %q for %s", status, shopifyRef)
		return nil
	}
}

// WebhookVariant is the identifier pair carried in a product webhook
// payload.
type WebhookVariant struct {
	SKU     string
	Barcode string
}

func (s *SecondHandService) relinkActiveProduct(ctx context.Context, shopifyRef string, variants []WebhookVariant) error {
	for _, v := range variants {
		if v.SKU == "" && v.Barcode == "" {
			continue
		}
		listings, err := s.products.FindBySKUOrBarcode(ctx, v.SKU, v.Barcode)
		if err != nil {
			return err
		}
		for _, listing := range listings {
			if listing.VerificationStatus == models.VerificationVerified &&
				listing.ShopifyProductRef != nil && *listing.ShopifyProductRef == shopifyRef {
				continue
			}
			ref := shopifyRef
			if err := s.products.SetVerification(ctx, listing.TenantID, listing.ID, models.VerificationVerified, &ref); err != nil {
				return err
			}
			s.invalidateListing(ctx, listing.TenantID, listing.ID)
		}
	}
	return nil
}

func (s *SecondHandService) invalidateListing(ctx context.Context, tenantID, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteListing(ctx, tenantID, id); err != nil {
		log.Printf("failed to invalidate listing cache %s: %v", id, err)
	}
}
