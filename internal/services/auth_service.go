package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/gommon/random"

	"relist/internal/apperrors"
	"relist/internal/caching"
	"relist/internal/middleware"
	"relist/internal/models"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

// AuthService mints and rotates token pairs. Refresh tokens are opaque
// random strings stored hashed in Redis, so a cache dump never leaks usable
// tokens.
type AuthService struct {
	jwtSecret []byte
	cache     *caching.CacheService
}

func NewAuthService(jwtSecret string, cache *caching.CacheService) *AuthService {
	return &AuthService{jwtSecret: []byte(jwtSecret), cache: cache}
}

func refreshKey(tokenHash string) string {
	return "relist:refresh:" + tokenHash
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// GenerateTokens returns a signed access token plus a fresh refresh token
// for the user.
func (s *AuthService) GenerateTokens(ctx context.Context, user *models.User) (*models.TokenResponse, error) {
	now := time.Now()
	claims := &middleware.JWTCustomClaims{
		UserID:   user.ID.String(),
		TenantID: user.TenantID.String(),
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken := random.String(64)
	// Value format: userID|tenantID so refresh can rebuild the claim set.
	value := user.ID.String() + "|" + user.TenantID.String()
	if err := s.cache.SetString(ctx, refreshKey(hashToken(refreshToken)), value, refreshTokenTTL); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.TokenResponse{
		AccessToken:  signed,
		TokenType:    "Bearer",
		ExpiresIn:    int(accessTokenTTL.Seconds()),
		RefreshToken: refreshToken,
		UserID:       user.ID.String(),
		TenantID:     user.TenantID.String(),
		Role:         user.Role,
		IssuedAt:     now,
	}, nil
}

// ValidateRefreshToken checks the token against the store and consumes it.
// Returns the stored "userID|tenantID" value.
func (s *AuthService) ValidateRefreshToken(ctx context.Context, refreshToken string) (string, error) {
	key := refreshKey(hashToken(refreshToken))
	value, err := s.cache.GetString(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if value == "" {
		return "", apperrors.Authorization("invalid or expired refresh token")
	}
	// Single use: rotate on every refresh.
	if err := s.cache.Delete(ctx, key); err != nil {
		return "", fmt.Errorf("failed to consume refresh token: %w", err)
	}
	return value, nil
}

// RevokeRefreshToken drops a refresh token on logout.
func (s *AuthService) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	return s.cache.Delete(ctx, refreshKey(hashToken(refreshToken)))
}

// ParseAccessToken validates a raw JWT and returns its claims. Used outside
// the echo-jwt middleware path (background tooling, tests).
func (s *AuthService) ParseAccessToken(tokenString string) (*middleware.JWTCustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &middleware.JWTCustomClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, apperrors.Authorization("invalid access token")
	}
	claims, ok := token.Claims.(*middleware.JWTCustomClaims)
	if !ok || !token.Valid {
		return nil, apperrors.Authorization("invalid access token")
	}
	return claims, nil
}
