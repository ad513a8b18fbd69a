package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"relist/internal/common"
	"relist/internal/models"
	"relist/internal/services"
)

type ProductHandlers struct {
	products *services.ProductService
}

func NewProductHandlers(products *services.ProductService) *ProductHandlers {
	return &ProductHandlers{products: products}
}

type productRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

func (h *ProductHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return common.SendBadRequestError(c, "invalid request body")
	}
	product := &models.Product{
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	}
	if err := h.products.Create(ctx, product); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendBadRequestError(c, err.Error())
	}
	product, err := h.products.Get(ctx, tenantID, id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	limit, offset := common.ParsePagination(c, 20, 100)
	products, err := h.products.List(ctx, tenantID, limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendBadRequestError(c, err.Error())
	}
	existing, err := h.products.Get(ctx, tenantID, id)
	if err != nil {
		return common.RespondError(c, err)
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return common.SendBadRequestError(c, "invalid request body")
	}
	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Description != nil {
		existing.Description = req.Description
	}
	if req.Price != 0 {
		existing.Price = req.Price
	}
	if req.Stock != 0 {
		existing.Stock = req.Stock
	}
	if err := h.products.Update(ctx, existing); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, existing)
}

func (h *ProductHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendBadRequestError(c, err.Error())
	}
	if err := h.products.Delete(ctx, tenantID, id); err != nil {
		return common.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
