package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"relist/internal/models"
)

// CacheService fronts Redis for verification results, listing reads and
// refresh token storage. Misses are returned as (nil, nil) so callers fall
// through to the source of truth.
type CacheService struct {
	client *redis.Client
}

func NewCacheService(client *redis.Client) *CacheService {
	return &CacheService{client: client}
}

const (
	verificationTTL = 15 * time.Minute
	listingTTL      = 5 * time.Minute
)

func verificationKey(tenantID uuid.UUID, sku, barcode string) string {
	return fmt.Sprintf("relist:verify:%s:%s:%s", tenantID, sku, barcode)
}

func listingKey(tenantID, productID uuid.UUID) string {
	return fmt.Sprintf("relist:listing:%s:%s", tenantID, productID)
}

func (s *CacheService) GetVerification(ctx context.Context, tenantID uuid.UUID, sku, barcode string) (*models.VerificationResult, error) {
	data, err := s.client.Get(ctx, verificationKey(tenantID, sku, barcode)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get verification: %w", err)
	}
	var result models.VerificationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("cache decode verification: %w", err)
	}
	return &result, nil
}

func (s *CacheService) SetVerification(ctx context.Context, tenantID uuid.UUID, sku, barcode string, result *models.VerificationResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache encode verification: %w", err)
	}
	return s.client.Set(ctx, verificationKey(tenantID, sku, barcode), data, verificationTTL).Err()
}

func (s *CacheService) InvalidateVerification(ctx context.Context, tenantID uuid.UUID, sku, barcode string) error {
	return s.client.Del(ctx, verificationKey(tenantID, sku, barcode)).Err()
}

func (s *CacheService) GetListing(ctx context.Context, tenantID, productID uuid.UUID) (*models.SecondHandProduct, error) {
	data, err := s.client.Get(ctx, listingKey(tenantID, productID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get listing: %w", err)
	}
	var product models.SecondHandProduct
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("cache decode listing: %w", err)
	}
	return &product, nil
}

func (s *CacheService) SetListing(ctx context.Context, product *models.SecondHandProduct) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("cache encode listing: %w", err)
	}
	return s.client.Set(ctx, listingKey(product.TenantID, product.ID), data, listingTTL).Err()
}

func (s *CacheService) DeleteListing(ctx context.Context, tenantID, productID uuid.UUID) error {
	return s.client.Del(ctx, listingKey(tenantID, productID)).Err()
}

// SetString and GetString back the refresh token store.

func (s *CacheService) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *CacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("cache get: %w", err)
	}
	return val, nil
}

func (s *CacheService) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// IsRateLimited increments a fixed-window counter and reports whether the
// caller crossed the limit.
func (s *CacheService) IsRateLimited(ctx context.Context, key string, limit int64, window time.Duration) (bool, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return count > limit, nil
}
