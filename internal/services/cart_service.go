package services

import (
	"context"

	"github.com/google/uuid"

	"relist/internal/apperrors"
	"relist/internal/models"
	"relist/internal/repositories"
)

// CartService manages the per-user shopping cart. A user has at most one
// active cart; adding an item creates it on demand.
type CartService struct {
	carts     repositories.CartRepository
	items     repositories.CartItemRepository
	products  repositories.ProductRepository
	discounts repositories.DiscountRepository
}

func NewCartService(
	carts repositories.CartRepository,
	items repositories.CartItemRepository,
	products repositories.ProductRepository,
	discounts repositories.DiscountRepository,
) *CartService {
	return &CartService{carts: carts, items: items, products: products, discounts: discounts}
}

func (s *CartService) getOrCreateActive(ctx context.Context, tenantID, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.carts.GetActiveByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}
	cart = &models.Cart{
		ID:       uuid.New(),
		TenantID: tenantID,
		UserID:   userID,
		Status:   models.CartActive,
	}
	if err := s.carts.Create(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem puts a catalog product into the user's active cart, creating the
// cart if needed.
func (s *CartService) AddItem(ctx context.Context, tenantID, userID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, apperrors.Validation("quantity must be greater than zero")
	}
	product, err := s.products.GetByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperrors.NotFound("product not found")
	}

	cart, err := s.getOrCreateActive(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	item := &models.CartItem{
		ID:        uuid.New(),
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := s.items.AddItem(ctx, item); err != nil {
		return nil, err
	}
	return s.loadItems(ctx, cart)
}

// RemoveItem drops a product from the active cart entirely.
func (s *CartService) RemoveItem(ctx context.Context, tenantID, userID, productID uuid.UUID) (*models.Cart, error) {
	cart, err := s.carts.GetActiveByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, apperrors.NotFound("no active cart")
	}
	if err := s.items.RemoveItem(ctx, cart.ID, productID); err != nil {
		return nil, apperrors.NotFound("item not in cart")
	}
	return s.loadItems(ctx, cart)
}

// GetActive returns the user's open cart with items, or a not found error.
func (s *CartService) GetActive(ctx context.Context, tenantID, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.carts.GetActiveByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, apperrors.NotFound("no active cart")
	}
	return s.loadItems(ctx, cart)
}

// ApplyDiscount attaches an active discount to the cart. The minimum
// purchase threshold is checked against the current subtotal.
func (s *CartService) ApplyDiscount(ctx context.Context, tenantID, userID, discountID uuid.UUID) (*models.Cart, error) {
	cart, err := s.carts.GetActiveByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, apperrors.NotFound("no active cart")
	}
	discount, err := s.discounts.GetByID(ctx, tenantID, discountID)
	if err != nil {
		return nil, err
	}
	if discount == nil || !discount.Active {
		return nil, apperrors.NotFound("discount not found")
	}
	subtotal, err := s.items.SubtotalByCart(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	if discount.MinPurchase != nil && subtotal < *discount.MinPurchase {
		return nil, apperrors.Validation("cart subtotal does not meet the discount minimum purchase")
	}
	if err := s.carts.SetDiscount(ctx, tenantID, cart.ID, &discountID); err != nil {
		return nil, err
	}
	cart.DiscountID = &discountID
	return s.loadItems(ctx, cart)
}

// Totals prices the cart, applying any attached discount. Percentage
// discounts take value percent off the subtotal; fixed discounts subtract
// value but never push the total below zero.
func (s *CartService) Totals(ctx context.Context, tenantID, userID uuid.UUID) (*models.CartTotals, error) {
	cart, err := s.carts.GetActiveByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, apperrors.NotFound("no active cart")
	}
	subtotal, err := s.items.SubtotalByCart(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	totals := &models.CartTotals{Subtotal: subtotal, Total: subtotal}
	if cart.DiscountID == nil {
		return totals, nil
	}
	discount, err := s.discounts.GetByID(ctx, tenantID, *cart.DiscountID)
	if err != nil {
		return nil, err
	}
	if discount == nil || !discount.Active {
		return totals, nil
	}
	if discount.MinPurchase != nil && subtotal < *discount.MinPurchase {
		return totals, nil
	}

	switch discount.DiscountType {
	case models.DiscountPercentage:
		totals.DiscountValue = subtotal * discount.Value / 100
	case models.DiscountFixed:
		totals.DiscountValue = discount.Value
		if totals.DiscountValue > subtotal {
			totals.DiscountValue = subtotal
		}
	}
	totals.Total = subtotal - totals.DiscountValue
	return totals, nil
}

// Checkout finalizes the active cart. An empty cart cannot be checked out.
func (s *CartService) Checkout(ctx context.Context, tenantID, userID uuid.UUID) (*models.Cart, *models.CartTotals, error) {
	cart, err := s.carts.GetActiveByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, nil, err
	}
	if cart == nil {
		return nil, nil, apperrors.NotFound("no active cart")
	}
	items, err := s.items.ListByCart(ctx, cart.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(items) == 0 {
		return nil, nil, apperrors.Validation("cannot check out an empty cart")
	}
	totals, err := s.Totals(ctx, tenantID, userID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.carts.UpdateStatus(ctx, tenantID, cart.ID, models.CartCompleted); err != nil {
		return nil, nil, err
	}
	cart.Status = models.CartCompleted
	cart.Items = items
	return cart, totals, nil
}

// Abandon closes the active cart without checking out. Items are kept for
// the history view.
func (s *CartService) Abandon(ctx context.Context, tenantID, userID uuid.UUID) error {
	cart, err := s.carts.GetActiveByUser(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if cart == nil {
		return apperrors.NotFound("no active cart")
	}
	return s.carts.UpdateStatus(ctx, tenantID, cart.ID, models.CartAbandoned)
}

// History lists the user's completed and abandoned carts.
func (s *CartService) History(ctx context.Context, tenantID, userID uuid.UUID, limit, offset int) ([]*models.Cart, error) {
	return s.carts.History(ctx, tenantID, userID, limit, offset)
}

func (s *CartService) loadItems(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	items, err := s.items.ListByCart(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	return cart, nil
}
