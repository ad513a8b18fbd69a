package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"relist/internal/common"
	"relist/internal/repositories"
)

// ResolveTenant identifies the tenant a request addresses. It prefers the
// X-Tenant-Subdomain header and falls back to the first label of the Host.
// Unknown or inactive tenants get a 404 so subdomains cannot be enumerated
// apart from real ones. On routes that also carry a JWT the resolved tenant
// must match the token's tenant claim.
func ResolveTenant(tenantRepo repositories.TenantRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subdomain := c.Request().Header.Get("X-Tenant-Subdomain")
			if subdomain == "" {
				host := c.Request().Host
				if i := strings.Index(host, ":"); i >= 0 {
					host = host[:i]
				}
				if i := strings.Index(host, "."); i > 0 {
					subdomain = host[:i]
				}
			}
			if subdomain == "" {
				return common.SendBadRequestError(c, "tenant subdomain is required")
			}

			ctx := c.Request().Context()
			tenant, err := tenantRepo.GetBySubdomain(ctx, subdomain)
			if err != nil {
				return common.SendInternalServerError(c, "failed to resolve tenant")
			}
			if tenant == nil || !tenant.IsActive {
				return common.SendNotFoundError(c, "tenant not found")
			}

			// An authenticated caller is locked to the tenant its token
			// names; the subdomain cannot move it into another tenant.
			if claimed, err := common.GetTenantIDFromContext(ctx); err == nil && claimed != tenant.ID {
				return common.SendForbiddenError(c, "token does not belong to this tenant")
			}

			ctx = context.WithValue(ctx, common.TenantKey, tenant)
			ctx = context.WithValue(ctx, common.TenantIDKey, tenant.ID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
