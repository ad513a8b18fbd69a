package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"relist/internal/common"
	"relist/internal/models"
	"relist/internal/services"
)

type DiscountHandlers struct {
	discounts *services.DiscountService
}

func NewDiscountHandlers(discounts *services.DiscountService) *DiscountHandlers {
	return &DiscountHandlers{discounts: discounts}
}

type discountRequest struct {
	Name         string   `json:"name"`
	Description  *string  `json:"description"`
	DiscountType string   `json:"discount_type"`
	Value        float64  `json:"value"`
	MinPurchase  *float64 `json:"min_purchase"`
	Active       *bool    `json:"active"`
}

func (h *DiscountHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	var req discountRequest
	if err := c.Bind(&req); err != nil {
		return common.SendBadRequestError(c, "invalid request body")
	}
	discount := &models.Discount{
		TenantID:     tenantID,
		Name:         req.Name,
		Description:  req.Description,
		DiscountType: req.DiscountType,
		Value:        req.Value,
		MinPurchase:  req.MinPurchase,
		Active:       true,
	}
	if req.Active != nil {
		discount.Active = *req.Active
	}
	if err := h.discounts.Create(ctx, discount); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, discount)
}

func (h *DiscountHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendBadRequestError(c, err.Error())
	}
	discount, err := h.discounts.Get(ctx, tenantID, id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, discount)
}

func (h *DiscountHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	if c.QueryParam("active") == "true" {
		discounts, err := h.discounts.ListActive(ctx, tenantID)
		if err != nil {
			return common.RespondError(c, err)
		}
		return c.JSON(http.StatusOK, discounts)
	}
	limit, offset := common.ParsePagination(c, 20, 100)
	discounts, err := h.discounts.List(ctx, tenantID, limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, discounts)
}

func (h *DiscountHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendBadRequestError(c, err.Error())
	}
	existing, err := h.discounts.Get(ctx, tenantID, id)
	if err != nil {
		return common.RespondError(c, err)
	}

	var req discountRequest
	if err := c.Bind(&req); err != nil {
		return common.SendBadRequestError(c, "invalid request body")
	}
	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Description != nil {
		existing.Description = req.Description
	}
	if req.DiscountType != "" {
		existing.DiscountType = req.DiscountType
	}
	if req.Value != 0 {
		existing.Value = req.Value
	}
	if req.MinPurchase != nil {
		existing.MinPurchase = req.MinPurchase
	}
	if req.Active != nil {
		existing.Active = *req.Active
	}
	if err := h.discounts.Update(ctx, existing); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, existing)
}

func (h *DiscountHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendBadRequestError(c, err.Error())
	}
	if err := h.discounts.Delete(ctx, tenantID, id); err != nil {
		return common.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
