package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"relist/internal/common"
	"relist/internal/models"
	"relist/internal/services"
)

// TenantHandlers exposes admin-only tenant management.
type TenantHandlers struct {
	tenants *services.TenantService
}

func NewTenantHandlers(tenants *services.TenantService) *TenantHandlers {
	return &TenantHandlers{tenants: tenants}
}

type tenantRequest struct {
	Name                 string  `json:"name"`
	Subdomain            string  `json:"subdomain"`
	ShopifyAppURL        *string `json:"shopify_app_url"`
	ShopifyAccessToken   *string `json:"shopify_access_token"`
	ShopifyWebhookSecret *string `json:"shopify_webhook_secret"`
	IsActive             *bool   `json:"is_active"`
}

func (h *TenantHandlers) Create(c echo.Context) error {
	var req tenantRequest
	if err := c.Bind(&req); err != nil {
		return common.SendBadRequestError(c, "invalid request body")
	}
	tenant := &models.Tenant{
		Name:                 req.Name,
		Subdomain:            req.Subdomain,
		ShopifyAppURL:        req.ShopifyAppURL,
		ShopifyAccessToken:   req.ShopifyAccessToken,
		ShopifyWebhookSecret: req.ShopifyWebhookSecret,
	}
	if err := h.tenants.Create(c.Request().Context(), tenant); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, tenant)
}

func (h *TenantHandlers) Get(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendBadRequestError(c, err.Error())
	}
	tenant, err := h.tenants.Get(c.Request().Context(), id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, tenant)
}

func (h *TenantHandlers) List(c echo.Context) error {
	limit, offset := common.ParsePagination(c, 20, 100)
	tenants, err := h.tenants.List(c.Request().Context(), limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, tenants)
}

func (h *TenantHandlers) Update(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendBadRequestError(c, err.Error())
	}
	ctx := c.Request().Context()
	existing, err := h.tenants.Get(ctx, id)
	if err != nil {
		return common.RespondError(c, err)
	}

	var req tenantRequest
	if err := c.Bind(&req); err != nil {
		return common.SendBadRequestError(c, "invalid request body")
	}
	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.ShopifyAppURL != nil {
		existing.ShopifyAppURL = req.ShopifyAppURL
	}
	if req.ShopifyAccessToken != nil {
		existing.ShopifyAccessToken = req.ShopifyAccessToken
	}
	if req.ShopifyWebhookSecret != nil {
		existing.ShopifyWebhookSecret = req.ShopifyWebhookSecret
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	if err := h.tenants.Update(ctx, existing); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, existing)
}

func (h *TenantHandlers) Delete(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendBadRequestError(c, err.Error())
	}
	if err := h.tenants.Delete(c.Request().Context(), id); err != nil {
		return common.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
