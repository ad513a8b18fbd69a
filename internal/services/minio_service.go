package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"relist/internal/apperrors"
)

// MaxImageSize caps listing image uploads at 5 MiB.
const MaxImageSize = 5 << 20

var allowedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// MinioService stores listing images. Objects are keyed
// {tenant}/{product}/{uuid}{ext} so tenant data never collides.
type MinioService struct {
	client     *minio.Client
	bucketName string
}

func NewMinioService(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinioService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &MinioService{client: client, bucketName: bucketName}, nil
}

func (s *MinioService) EnsureBucketExists(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		log.Printf("created bucket %s", s.bucketName)
	}
	return nil
}

// ValidateImageFilename rejects anything outside the jpg/jpeg/png/webp
// allow-list. Returns the detected content type.
func ValidateImageFilename(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := allowedImageExtensions[ext]
	if !ok {
		return "", apperrors.Validation(fmt.Sprintf("unsupported image type %q, allowed: jpg, jpeg, png, webp", ext))
	}
	return contentType, nil
}

// UploadImage stores one listing image and returns its object key.
func (s *MinioService) UploadImage(ctx context.Context, tenantID, productID uuid.UUID, filename string, reader io.Reader, size int64) (string, error) {
	contentType, err := ValidateImageFilename(filename)
	if err != nil {
		return "", err
	}
	if size > MaxImageSize {
		return "", apperrors.Validation("image exceeds the 5MB size limit")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectKey := fmt.Sprintf("%s/%s/%s%s", tenantID, productID, uuid.New(), ext)

	_, err = s.client.PutObject(ctx, s.bucketName, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return objectKey, nil
}

// GetPresignedURL returns a temporary download URL for an object key.
func (s *MinioService) GetPresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucketName, objectKey, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign url: %w", err)
	}
	return u.String(), nil
}

func (s *MinioService) DeleteImage(ctx context.Context, objectKey string) error {
	if err := s.client.RemoveObject(ctx, s.bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
