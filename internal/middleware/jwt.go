package middleware

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"relist/internal/common"
	"relist/internal/models"
)

// JWTCustomClaims is the access token payload. Tenant and role ride along so
// authorization never needs a database round trip.
type JWTCustomClaims struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// BindClaims runs as the echo-jwt SuccessHandler and copies the validated
// claims into the request context under the keys the services read.
func BindClaims(c echo.Context) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return
	}
	claims, ok := token.Claims.(*JWTCustomClaims)
	if !ok {
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return
	}
	ctx := c.Request().Context()
	ctx = context.WithValue(ctx, common.UserIDKey, userID)
	ctx = context.WithValue(ctx, common.TenantIDKey, tenantID)
	ctx = context.WithValue(ctx, common.RoleKey, claims.Role)
	c.SetRequest(c.Request().WithContext(ctx))
}

// RequireAdmin rejects any request whose token does not carry the admin
// role.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, err := common.GetRoleFromContext(c.Request().Context())
		if err != nil {
			return common.SendUnauthorizedError(c, "missing authentication")
		}
		if role != models.RoleAdmin {
			return common.SendForbiddenError(c, "admin access required")
		}
		return next(c)
	}
}
