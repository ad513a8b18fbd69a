package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"relist/internal/apperrors"
	"relist/internal/models"
)

type mockCartRepo struct {
	mock.Mock
}

func (m *mockCartRepo) Create(ctx context.Context, cart *models.Cart) error {
	return m.Called(ctx, cart).Error(0)
}

func (m *mockCartRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, tenantID, id)
	if c := args.Get(0); c != nil {
		return c.(*models.Cart), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCartRepo) GetActiveByUser(ctx context.Context, tenantID, userID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, tenantID, userID)
	if c := args.Get(0); c != nil {
		return c.(*models.Cart), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCartRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	return m.Called(ctx, tenantID, id, status).Error(0)
}

func (m *mockCartRepo) SetDiscount(ctx context.Context, tenantID, id uuid.UUID, discountID *uuid.UUID) error {
	return m.Called(ctx, tenantID, id, discountID).Error(0)
}

func (m *mockCartRepo) History(ctx context.Context, tenantID, userID uuid.UUID, limit, offset int) ([]*models.Cart, error) {
	args := m.Called(ctx, tenantID, userID, limit, offset)
	return args.Get(0).([]*models.Cart), args.Error(1)
}

type mockCartItemRepo struct {
	mock.Mock
}

func (m *mockCartItemRepo) AddItem(ctx context.Context, item *models.CartItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockCartItemRepo) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	return m.Called(ctx, cartID, productID).Error(0)
}

func (m *mockCartItemRepo) ListByCart(ctx context.Context, cartID uuid.UUID) ([]*models.CartItem, error) {
	args := m.Called(ctx, cartID)
	return args.Get(0).([]*models.CartItem), args.Error(1)
}

func (m *mockCartItemRepo) DeleteByCart(ctx context.Context, cartID uuid.UUID) error {
	return m.Called(ctx, cartID).Error(0)
}

func (m *mockCartItemRepo) SubtotalByCart(ctx context.Context, cartID uuid.UUID) (float64, error) {
	args := m.Called(ctx, cartID)
	return args.Get(0).(float64), args.Error(1)
}

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Create(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if p := args.Get(0); p != nil {
		return p.(*models.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Product, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *mockProductRepo) Update(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

type mockDiscountRepo struct {
	mock.Mock
}

func (m *mockDiscountRepo) Create(ctx context.Context, discount *models.Discount) error {
	return m.Called(ctx, discount).Error(0)
}

func (m *mockDiscountRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Discount, error) {
	args := m.Called(ctx, tenantID, id)
	if d := args.Get(0); d != nil {
		return d.(*models.Discount), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDiscountRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Discount, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Discount), args.Error(1)
}

func (m *mockDiscountRepo) ListActive(ctx context.Context, tenantID uuid.UUID) ([]*models.Discount, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]*models.Discount), args.Error(1)
}

func (m *mockDiscountRepo) Update(ctx context.Context, discount *models.Discount) error {
	return m.Called(ctx, discount).Error(0)
}

func (m *mockDiscountRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

type CartServiceSuite struct {
	suite.Suite
	carts     *mockCartRepo
	items     *mockCartItemRepo
	products  *mockProductRepo
	discounts *mockDiscountRepo
	svc       *CartService
	tenantID  uuid.UUID
	userID    uuid.UUID
}

func (s *CartServiceSuite) SetupTest() {
	s.carts = new(mockCartRepo)
	s.items = new(mockCartItemRepo)
	s.products = new(mockProductRepo)
	s.discounts = new(mockDiscountRepo)
	s.svc = NewCartService(s.carts, s.items, s.products, s.discounts)
	s.tenantID = uuid.New()
	s.userID = uuid.New()
}

func (s *CartServiceSuite) activeCart(discountID *uuid.UUID) *models.Cart {
	return &models.Cart{
		ID:         uuid.New(),
		TenantID:   s.tenantID,
		UserID:     s.userID,
		Status:     models.CartActive,
		DiscountID: discountID,
	}
}

func (s *CartServiceSuite) TestAddItemCreatesCartOnDemand() {
	productID := uuid.New()
	s.products.On("GetByID", mock.Anything, s.tenantID, productID).
		Return(&models.Product{ID: productID, TenantID: s.tenantID, Name: "Tee", Price: 10}, nil)
	s.carts.On("GetActiveByUser", mock.Anything, s.tenantID, s.userID).Return(nil, nil)
	s.carts.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Cart) bool {
		return c.Status == models.CartActive && c.UserID == s.userID
	})).Return(nil)
	s.items.On("AddItem", mock.Anything, mock.MatchedBy(func(it *models.CartItem) bool {
		return it.ProductID == productID && it.Quantity == 2
	})).Return(nil)
	s.items.On("ListByCart", mock.Anything, mock.Anything).
		Return([]*models.CartItem{{ProductID: productID, Quantity: 2}}, nil)

	cart, err := s.svc.AddItem(context.Background(), s.tenantID, s.userID, productID, 2)
	s.Require().NoError(err)
	s.Len(cart.Items, 1)
	s.carts.AssertExpectations(s.T())
}

func (s *CartServiceSuite) TestAddItemRejectsUnknownProduct() {
	productID := uuid.New()
	s.products.On("GetByID", mock.Anything, s.tenantID, productID).Return(nil, nil)

	_, err := s.svc.AddItem(context.Background(), s.tenantID, s.userID, productID, 1)
	s.Require().Error(err)
	s.True(apperrors.IsKind(err, apperrors.KindNotFound))
}

func (s *CartServiceSuite) TestTotalsWithoutDiscount() {
	cart := s.activeCart(nil)
	s.carts.On("GetActiveByUser", mock.Anything, s.tenantID, s.userID).Return(cart, nil)
	s.items.On("SubtotalByCart", mock.Anything, cart.ID).Return(100.0, nil)

	totals, err := s.svc.Totals(context.Background(), s.tenantID, s.userID)
	s.Require().NoError(err)
	s.Equal(100.0, totals.Subtotal)
	s.Equal(0.0, totals.DiscountValue)
	s.Equal(100.0, totals.Total)
}

func (s *CartServiceSuite) TestTotalsPercentageDiscount() {
	discountID := uuid.New()
	cart := s.activeCart(&discountID)
	s.carts.On("GetActiveByUser", mock.Anything, s.tenantID, s.userID).Return(cart, nil)
	s.items.On("SubtotalByCart", mock.Anything, cart.ID).Return(200.0, nil)
	s.discounts.On("GetByID", mock.Anything, s.tenantID, discountID).Return(&models.Discount{
		ID: discountID, TenantID: s.tenantID,
		DiscountType: models.DiscountPercentage, Value: 10, Active: true,
	}, nil)

	totals, err := s.svc.Totals(context.Background(), s.tenantID, s.userID)
	s.Require().NoError(err)
	s.Equal(200.0, totals.Subtotal)
	s.Equal(20.0, totals.DiscountValue)
	s.Equal(180.0, totals.Total)
}

func (s *CartServiceSuite) TestTotalsFixedDiscountIsCappedAtSubtotal() {
	discountID := uuid.New()
	cart := s.activeCart(&discountID)
	s.carts.On("GetActiveByUser", mock.Anything, s.tenantID, s.userID).Return(cart, nil)
	s.items.On("SubtotalByCart", mock.Anything, cart.ID).Return(30.0, nil)
	s.discounts.On("GetByID", mock.Anything, s.tenantID, discountID).Return(&models.Discount{
		ID: discountID, TenantID: s.tenantID,
		DiscountType: models.DiscountFixed, Value: 50, Active: true,
	}, nil)

	totals, err := s.svc.Totals(context.Background(), s.tenantID, s.userID)
	s.Require().NoError(err)
	s.Equal(30.0, totals.DiscountValue)
	s.Equal(0.0, totals.Total)
}

func (s *CartServiceSuite) TestTotalsIgnoreDiscountBelowMinPurchase() {
	discountID := uuid.New()
	minPurchase := 100.0
	cart := s.activeCart(&discountID)
	s.carts.On("GetActiveByUser", mock.Anything, s.tenantID, s.userID).Return(cart, nil)
	s.items.On("SubtotalByCart", mock.Anything, cart.ID).Return(60.0, nil)
	s.discounts.On("GetByID", mock.Anything, s.tenantID, discountID).Return(&models.Discount{
		ID: discountID, TenantID: s.tenantID,
		DiscountType: models.DiscountPercentage, Value: 25, MinPurchase: &minPurchase, Active: true,
	}, nil)

	totals, err := s.svc.Totals(context.Background(), s.tenantID, s.userID)
	s.Require().NoError(err)
	s.Equal(0.0, totals.DiscountValue)
	s.Equal(60.0, totals.Total)
}

func (s *CartServiceSuite) TestApplyDiscountBelowMinimumFails() {
	discountID := uuid.New()
	minPurchase := 100.0
	cart := s.activeCart(nil)
	s.carts.On("GetActiveByUser", mock.Anything, s.tenantID, s.userID).Return(cart, nil)
	s.discounts.On("GetByID", mock.Anything, s.tenantID, discountID).Return(&models.Discount{
		ID: discountID, TenantID: s.tenantID,
		DiscountType: models.DiscountPercentage, Value: 25, MinPurchase: &minPurchase, Active: true,
	}, nil)
	s.items.On("SubtotalByCart", mock.Anything, cart.ID).Return(60.0, nil)

	_, err := s.svc.ApplyDiscount(context.Background(), s.tenantID, s.userID, discountID)
	s.Require().Error(err)
	s.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func (s *CartServiceSuite) TestCheckoutEmptyCartFails() {
	cart := s.activeCart(nil)
	s.carts.On("GetActiveByUser", mock.Anything, s.tenantID, s.userID).Return(cart, nil)
	s.items.On("ListByCart", mock.Anything, cart.ID).Return([]*models.CartItem{}, nil)

	_, _, err := s.svc.Checkout(context.Background(), s.tenantID, s.userID)
	s.Require().Error(err)
	s.True(apperrors.IsKind(err, apperrors.KindValidation))
	s.carts.AssertNotCalled(s.T(), "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *CartServiceSuite) TestCheckoutCompletesCart() {
	cart := s.activeCart(nil)
	items := []*models.CartItem{{ID: uuid.New(), CartID: cart.ID, ProductID: uuid.New(), Quantity: 1}}
	s.carts.On("GetActiveByUser", mock.Anything, s.tenantID, s.userID).Return(cart, nil)
	s.items.On("ListByCart", mock.Anything, cart.ID).Return(items, nil)
	s.items.On("SubtotalByCart", mock.Anything, cart.ID).Return(25.0, nil)
	s.carts.On("UpdateStatus", mock.Anything, s.tenantID, cart.ID, models.CartCompleted).Return(nil)

	done, totals, err := s.svc.Checkout(context.Background(), s.tenantID, s.userID)
	s.Require().NoError(err)
	s.Equal(models.CartCompleted, done.Status)
	s.Equal(25.0, totals.Total)
}

func (s *CartServiceSuite) TestAbandonClosesActiveCart() {
	cart := s.activeCart(nil)
	s.carts.On("GetActiveByUser", mock.Anything, s.tenantID, s.userID).Return(cart, nil)
	s.carts.On("UpdateStatus", mock.Anything, s.tenantID, cart.ID, models.CartAbandoned).Return(nil)

	s.Require().NoError(s.svc.Abandon(context.Background(), s.tenantID, s.userID))
	s.carts.AssertExpectations(s.T())
}

func (s *CartServiceSuite) TestAbandonWithoutCartFails() {
	s.carts.On("GetActiveByUser", mock.Anything, s.tenantID, s.userID).Return(nil, nil)

	err := s.svc.Abandon(context.Background(), s.tenantID, s.userID)
	s.Require().Error(err)
	s.True(apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestCartServiceSuite(t *testing.T) {
	suite.Run(t, new(CartServiceSuite))
}
