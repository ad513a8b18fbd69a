package services

import (
	"context"

	"github.com/google/uuid"

	"relist/internal/apperrors"
	"relist/internal/models"
	"relist/internal/repositories"
)

// ProductService handles the tenant's first-hand catalog.
type ProductService struct {
	products repositories.ProductRepository
}

func NewProductService(products repositories.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

func validateProduct(p *models.Product) error {
	if p.Name == "" {
		return apperrors.Validation("name is required")
	}
	if p.Price < 0 {
		return apperrors.Validation("price cannot be negative")
	}
	if p.Stock < 0 {
		return apperrors.Validation("stock cannot be negative")
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, product *models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	product.ID = uuid.New()
	return s.products.Create(ctx, product)
}

func (s *ProductService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperrors.NotFound("product not found")
	}
	return product, nil
}

func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Product, error) {
	return s.products.List(ctx, tenantID, limit, offset)
}

func (s *ProductService) Update(ctx context.Context, product *models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	existing, err := s.products.GetByID(ctx, product.TenantID, product.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperrors.NotFound("product not found")
	}
	return s.products.Update(ctx, product)
}

func (s *ProductService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	existing, err := s.products.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperrors.NotFound("product not found")
	}
	return s.products.Delete(ctx, tenantID, id)
}
