package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"relist/internal/models"
)

type SecondHandImageRepository interface {
	Create(ctx context.Context, image *models.SecondHandProductImage) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.SecondHandProductImage, error)
	GetByProductID(ctx context.Context, tenantID, productID uuid.UUID) ([]*models.SecondHandProductImage, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	DeleteAllByProductID(ctx context.Context, tenantID, productID uuid.UUID) error
}

type secondHandImageRepository struct {
	db DB
}

func NewSecondHandImageRepository(db DB) SecondHandImageRepository {
	return &secondHandImageRepository{db: db}
}

const imageColumns = `id, tenant_id, product_id, image_url, is_primary, created_at`

func (r *secondHandImageRepository) Create(ctx context.Context, image *models.SecondHandProductImage) error {
	query := `INSERT INTO second_hand_product_images (id, tenant_id, product_id, image_url, is_primary)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	err := r.db.QueryRow(ctx, query, image.ID, image.TenantID, image.ProductID, image.ImageURL, image.IsPrimary).
		Scan(&image.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product image: %w", err)
	}
	return nil
}

func (r *secondHandImageRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.SecondHandProductImage, error) {
	query := `SELECT ` + imageColumns + ` FROM second_hand_product_images WHERE tenant_id = $1 AND id = $2`
	var img models.SecondHandProductImage
	err := r.db.QueryRow(ctx, query, tenantID, id).
		Scan(&img.ID, &img.TenantID, &img.ProductID, &img.ImageURL, &img.IsPrimary, &img.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product image: %w", err)
	}
	return &img, nil
}

func (r *secondHandImageRepository) GetByProductID(ctx context.Context, tenantID, productID uuid.UUID) ([]*models.SecondHandProductImage, error) {
	query := `SELECT ` + imageColumns + ` FROM second_hand_product_images
		WHERE tenant_id = $1 AND product_id = $2
		ORDER BY is_primary DESC, created_at ASC`
	rows, err := r.db.Query(ctx, query, tenantID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list product images: %w", err)
	}
	defer rows.Close()

	var images []*models.SecondHandProductImage
	for rows.Next() {
		var img models.SecondHandProductImage
		if err := rows.Scan(&img.ID, &img.TenantID, &img.ProductID, &img.ImageURL, &img.IsPrimary, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product image: %w", err)
		}
		images = append(images, &img)
	}
	return images, rows.Err()
}

func (r *secondHandImageRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM second_hand_product_images WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete product image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *secondHandImageRepository) DeleteAllByProductID(ctx context.Context, tenantID, productID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM second_hand_product_images WHERE tenant_id = $1 AND product_id = $2`, tenantID, productID)
	if err != nil {
		return fmt.Errorf("failed to delete product images: %w", err)
	}
	return nil
}
