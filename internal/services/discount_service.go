package services

import (
	"context"

	"github.com/google/uuid"

	"relist/internal/apperrors"
	"relist/internal/models"
	"relist/internal/repositories"
)

type DiscountService struct {
	discounts repositories.DiscountRepository
}

func NewDiscountService(discounts repositories.DiscountRepository) *DiscountService {
	return &DiscountService{discounts: discounts}
}

func validateDiscount(d *models.Discount) error {
	if d.Name == "" {
		return apperrors.Validation("name is required")
	}
	switch d.DiscountType {
	case models.DiscountPercentage:
		if d.Value <= 0 || d.Value > 100 {
			return apperrors.Validation("percentage value must be between 0 and 100")
		}
	case models.DiscountFixed:
		if d.Value <= 0 {
			return apperrors.Validation("fixed discount value must be greater than zero")
		}
	default:
		return apperrors.Validation("discount_type must be percentage or fixed")
	}
	if d.MinPurchase != nil && *d.MinPurchase < 0 {
		return apperrors.Validation("min_purchase cannot be negative")
	}
	return nil
}

func (s *DiscountService) Create(ctx context.Context, discount *models.Discount) error {
	if err := validateDiscount(discount); err != nil {
		return err
	}
	discount.ID = uuid.New()
	return s.discounts.Create(ctx, discount)
}

func (s *DiscountService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Discount, error) {
	discount, err := s.discounts.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if discount == nil {
		return nil, apperrors.NotFound("discount not found")
	}
	return discount, nil
}

func (s *DiscountService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Discount, error) {
	return s.discounts.List(ctx, tenantID, limit, offset)
}

func (s *DiscountService) ListActive(ctx context.Context, tenantID uuid.UUID) ([]*models.Discount, error) {
	return s.discounts.ListActive(ctx, tenantID)
}

func (s *DiscountService) Update(ctx context.Context, discount *models.Discount) error {
	if err := validateDiscount(discount); err != nil {
		return err
	}
	existing, err := s.discounts.GetByID(ctx, discount.TenantID, discount.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperrors.NotFound("discount not found")
	}
	return s.discounts.Update(ctx, discount)
}

func (s *DiscountService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	existing, err := s.discounts.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperrors.NotFound("discount not found")
	}
	return s.discounts.Delete(ctx, tenantID, id)
}
