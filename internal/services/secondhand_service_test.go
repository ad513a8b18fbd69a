package services

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"relist/internal/apperrors"
	"relist/internal/models"
	"relist/internal/shopify"
)

type mockListingRepo struct {
	mock.Mock
}

func (m *mockListingRepo) Create(ctx context.Context, product *models.SecondHandProduct) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockListingRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.SecondHandProduct, error) {
	args := m.Called(ctx, tenantID, id)
	if p := args.Get(0); p != nil {
		return p.(*models.SecondHandProduct), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockListingRepo) Update(ctx context.Context, product *models.SecondHandProduct) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockListingRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *mockListingRepo) ListApproved(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.SecondHandProduct, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.SecondHandProduct), args.Error(1)
}

func (m *mockListingRepo) ListBySeller(ctx context.Context, tenantID, sellerID uuid.UUID, limit, offset int) ([]*models.SecondHandProduct, error) {
	args := m.Called(ctx, tenantID, sellerID, limit, offset)
	return args.Get(0).([]*models.SecondHandProduct), args.Error(1)
}

func (m *mockListingRepo) ListPending(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.SecondHandProduct, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.SecondHandProduct), args.Error(1)
}

func (m *mockListingRepo) ListVerified(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.SecondHandProduct, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.SecondHandProduct), args.Error(1)
}

func (m *mockListingRepo) Search(ctx context.Context, tenantID uuid.UUID, filter *models.SecondHandSearchFilter) ([]*models.SecondHandProduct, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*models.SecondHandProduct), args.Error(1)
}

func (m *mockListingRepo) SetApprovalStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	return m.Called(ctx, tenantID, id, status).Error(0)
}

func (m *mockListingRepo) SetVerification(ctx context.Context, tenantID, id uuid.UUID, verificationStatus string, shopifyRef *string) error {
	return m.Called(ctx, tenantID, id, verificationStatus, shopifyRef).Error(0)
}

func (m *mockListingRepo) DemoteByShopifyRef(ctx context.Context, shopifyRef string) ([]models.ListingRef, error) {
	args := m.Called(ctx, shopifyRef)
	if refs := args.Get(0); refs != nil {
		return refs.([]models.ListingRef), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockListingRepo) FindBySKUOrBarcode(ctx context.Context, sku, barcode string) ([]*models.SecondHandProduct, error) {
	args := m.Called(ctx, sku, barcode)
	return args.Get(0).([]*models.SecondHandProduct), args.Error(1)
}

type mockImageRepo struct {
	mock.Mock
}

func (m *mockImageRepo) Create(ctx context.Context, image *models.SecondHandProductImage) error {
	return m.Called(ctx, image).Error(0)
}

func (m *mockImageRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.SecondHandProductImage, error) {
	args := m.Called(ctx, tenantID, id)
	if img := args.Get(0); img != nil {
		return img.(*models.SecondHandProductImage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockImageRepo) GetByProductID(ctx context.Context, tenantID, productID uuid.UUID) ([]*models.SecondHandProductImage, error) {
	args := m.Called(ctx, tenantID, productID)
	return args.Get(0).([]*models.SecondHandProductImage), args.Error(1)
}

func (m *mockImageRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *mockImageRepo) DeleteAllByProductID(ctx context.Context, tenantID, productID uuid.UUID) error {
	return m.Called(ctx, tenantID, productID).Error(0)
}

type stubListingCache struct {
	deleted []uuid.UUID
}

func (s *stubListingCache) GetListing(ctx context.Context, tenantID, productID uuid.UUID) (*models.SecondHandProduct, error) {
	return nil, nil
}

func (s *stubListingCache) SetListing(ctx context.Context, product *models.SecondHandProduct) error {
	return nil
}

func (s *stubListingCache) DeleteListing(ctx context.Context, tenantID, productID uuid.UUID) error {
	s.deleted = append(s.deleted, productID)
	return nil
}

type stubStorage struct {
	uploads []string
	deleted []string
}

func (s *stubStorage) UploadImage(ctx context.Context, tenantID, productID uuid.UUID, filename string, reader io.Reader, size int64) (string, error) {
	key := tenantID.String() + "/" + productID.String() + "/" + filename
	s.uploads = append(s.uploads, key)
	return key, nil
}

func (s *stubStorage) GetPresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	return "https://storage.example.com/" + objectKey, nil
}

func (s *stubStorage) DeleteImage(ctx context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	return nil
}

type SecondHandServiceSuite struct {
	suite.Suite
	listings *mockListingRepo
	images   *mockImageRepo
	finder   *stubFinder
	storage  *stubStorage
	svc      *SecondHandService
	tenant   *models.Tenant
	sellerID uuid.UUID
}

func (s *SecondHandServiceSuite) SetupTest() {
	s.listings = new(mockListingRepo)
	s.images = new(mockImageRepo)
	s.finder = &stubFinder{}
	s.storage = &stubStorage{}
	verification := newVerificationService(s.finder)
	s.svc = NewSecondHandService(s.listings, s.images, verification, s.storage, nil)
	s.tenant = configuredTenant()
	s.sellerID = uuid.New()
}

func validInput() *CreateListingInput {
	return &CreateListingInput{
		Name:        "Vintage Jacket",
		Price:       79.0,
		Condition:   "good",
		OriginalSKU: "SKU-1",
		Images: []ImageUpload{
			{Filename: "front.jpg", Reader: strings.NewReader("img"), Size: 3},
		},
	}
}

func (s *SecondHandServiceSuite) TestCreateRejectedListingIsNotPersisted() {
	// Verification finds nothing, so nothing may be written.
	_, err := s.svc.Create(context.Background(), s.tenant, s.sellerID, validInput())
	s.Require().Error(err)
	s.True(apperrors.IsKind(err, apperrors.KindValidation))
	s.listings.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
	s.images.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *SecondHandServiceSuite) TestCreateVerifiedListing() {
	s.finder.product = &shopify.Product{ID: "gid://shopify/Product/42", Status: "ACTIVE"}
	s.finder.method = "sku"
	s.listings.On("Create", mock.Anything, mock.MatchedBy(func(p *models.SecondHandProduct) bool {
		return p.VerificationStatus == models.VerificationVerified &&
			p.ApprovalStatus == models.ApprovalPending &&
			p.ShopifyProductRef != nil && *p.ShopifyProductRef == "gid://shopify/Product/42"
	})).Return(nil)
	s.images.On("Create", mock.Anything, mock.MatchedBy(func(img *models.SecondHandProductImage) bool {
		return img.IsPrimary
	})).Return(nil)

	product, err := s.svc.Create(context.Background(), s.tenant, s.sellerID, validInput())
	s.Require().NoError(err)
	s.Equal(models.VerificationVerified, product.VerificationStatus)
	s.Equal(models.ApprovalPending, product.ApprovalStatus)
	s.Len(s.storage.uploads, 1)
	s.Len(product.Images, 1)
	s.True(product.Images[0].IsPrimary)
	s.listings.AssertExpectations(s.T())
	s.images.AssertExpectations(s.T())
}

func (s *SecondHandServiceSuite) TestCreateRequiresAnImage() {
	in := validInput()
	in.Images = nil
	_, err := s.svc.Create(context.Background(), s.tenant, s.sellerID, in)
	s.Require().Error(err)
	s.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func (s *SecondHandServiceSuite) TestCreateValidatesCondition() {
	in := validInput()
	in.Condition = "worn"
	_, err := s.svc.Create(context.Background(), s.tenant, s.sellerID, in)
	s.Require().Error(err)
	s.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func (s *SecondHandServiceSuite) TestApproveVerifiedListing() {
	id := uuid.New()
	listing := &models.SecondHandProduct{
		ID: id, TenantID: s.tenant.ID, SellerID: s.sellerID,
		VerificationStatus: models.VerificationVerified,
		ApprovalStatus:     models.ApprovalPending,
	}
	s.listings.On("GetByID", mock.Anything, s.tenant.ID, id).Return(listing, nil)
	s.listings.On("SetApprovalStatus", mock.Anything, s.tenant.ID, id, models.ApprovalApproved).Return(nil)

	approved, err := s.svc.Approve(context.Background(), s.tenant.ID, id)
	s.Require().NoError(err)
	s.Equal(models.ApprovalApproved, approved.ApprovalStatus)
}

func (s *SecondHandServiceSuite) TestApproveIsIdempotent() {
	id := uuid.New()
	listing := &models.SecondHandProduct{
		ID: id, TenantID: s.tenant.ID,
		VerificationStatus: models.VerificationVerified,
		ApprovalStatus:     models.ApprovalApproved,
	}
	s.listings.On("GetByID", mock.Anything, s.tenant.ID, id).Return(listing, nil)

	approved, err := s.svc.Approve(context.Background(), s.tenant.ID, id)
	s.Require().NoError(err)
	s.Equal(models.ApprovalApproved, approved.ApprovalStatus)
	s.listings.AssertNotCalled(s.T(), "SetApprovalStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *SecondHandServiceSuite) TestApproveUnverifiedListingFails() {
	id := uuid.New()
	listing := &models.SecondHandProduct{
		ID: id, TenantID: s.tenant.ID,
		VerificationStatus: models.VerificationRejected,
		ApprovalStatus:     models.ApprovalPending,
	}
	s.listings.On("GetByID", mock.Anything, s.tenant.ID, id).Return(listing, nil)

	_, err := s.svc.Approve(context.Background(), s.tenant.ID, id)
	s.Require().Error(err)
	s.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func (s *SecondHandServiceSuite) TestApproveMissingListing() {
	id := uuid.New()
	s.listings.On("GetByID", mock.Anything, s.tenant.ID, id).Return(nil, nil)

	_, err := s.svc.Approve(context.Background(), s.tenant.ID, id)
	s.Require().Error(err)
	s.True(apperrors.IsKind(err, apperrors.KindNotFound))
}

func (s *SecondHandServiceSuite) TestUpdateByNonOwnerIsForbidden() {
	id := uuid.New()
	listing := &models.SecondHandProduct{ID: id, TenantID: s.tenant.ID, SellerID: uuid.New()}
	s.listings.On("GetByID", mock.Anything, s.tenant.ID, id).Return(listing, nil)

	name := "New Name"
	_, err := s.svc.Update(context.Background(), s.tenant.ID, s.sellerID, id, &models.SecondHandProductUpdate{Name: &name})
	s.Require().Error(err)
	s.True(apperrors.IsKind(err, apperrors.KindAuthorization))
	s.listings.AssertNotCalled(s.T(), "Update", mock.Anything, mock.Anything)
}

func (s *SecondHandServiceSuite) TestReconcileDraftDemotesListings() {
	ref := "gid://shopify/Product/42"
	refs := []models.ListingRef{
		{TenantID: s.tenant.ID, ID: uuid.New()},
		{TenantID: uuid.New(), ID: uuid.New()},
	}
	s.listings.On("DemoteByShopifyRef", mock.Anything, ref).Return(refs, nil)

	err := s.svc.ReconcileProductUpdate(context.Background(), ref, "draft", nil)
	s.Require().NoError(err)
	s.listings.AssertExpectations(s.T())
}

func (s *SecondHandServiceSuite) TestDemoteInvalidatesCachedListings() {
	// Without invalidation a demoted listing would keep serving from the
	// cache as verified until its TTL ran out.
	ref := "gid://shopify/Product/42"
	refs := []models.ListingRef{
		{TenantID: s.tenant.ID, ID: uuid.New()},
		{TenantID: uuid.New(), ID: uuid.New()},
	}
	cache := &stubListingCache{}
	svc := NewSecondHandService(s.listings, s.images, nil, s.storage, cache)
	s.listings.On("DemoteByShopifyRef", mock.Anything, ref).Return(refs, nil)

	count, err := svc.DemoteByShopifyRef(context.Background(), ref)
	s.Require().NoError(err)
	s.Equal(int64(2), count)
	s.Require().Len(cache.deleted, 2)
	s.Equal(refs[0].ID, cache.deleted[0])
	s.Equal(refs[1].ID, cache.deleted[1])
}

func (s *SecondHandServiceSuite) TestReconcileActiveRelinksListings() {
	ref := "gid://shopify/Product/42"
	demoted := &models.SecondHandProduct{
		ID: uuid.New(), TenantID: s.tenant.ID,
		VerificationStatus: models.VerificationRejected,
	}
	s.listings.On("FindBySKUOrBarcode", mock.Anything, "SKU-1", "").
		Return([]*models.SecondHandProduct{demoted}, nil)
	s.listings.On("SetVerification", mock.Anything, demoted.TenantID, demoted.ID,
		models.VerificationVerified, mock.MatchedBy(func(r *string) bool { return r != nil && *r == ref })).
		Return(nil)

	err := s.svc.ReconcileProductUpdate(context.Background(), ref, "active",
		[]WebhookVariant{{SKU: "SKU-1"}})
	s.Require().NoError(err)
	s.listings.AssertExpectations(s.T())
}

func (s *SecondHandServiceSuite) TestReconcileActiveSkipsAlreadyLinked() {
	ref := "gid://shopify/Product/42"
	linked := &models.SecondHandProduct{
		ID: uuid.New(), TenantID: s.tenant.ID,
		VerificationStatus: models.VerificationVerified,
		ShopifyProductRef:  &ref,
	}
	s.listings.On("FindBySKUOrBarcode", mock.Anything, "SKU-1", "").
		Return([]*models.SecondHandProduct{linked}, nil)

	err := s.svc.ReconcileProductUpdate(context.Background(), ref, "active",
		[]WebhookVariant{{SKU: "SKU-1"}})
	s.Require().NoError(err)
	s.listings.AssertNotCalled(s.T(), "SetVerification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSecondHandServiceSuite(t *testing.T) {
	suite.Run(t, new(SecondHandServiceSuite))
}

func TestValidateImageFilename(t *testing.T) {
	for _, name := range []string{"a.jpg", "b.JPEG", "c.png", "d.webp"} {
		_, err := ValidateImageFilename(name)
		require.NoError(t, err, name)
	}
	for _, name := range []string{"a.gif", "b.pdf", "noext"} {
		_, err := ValidateImageFilename(name)
		require.Error(t, err, name)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	}
}
