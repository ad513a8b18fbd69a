package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"relist/internal/common"
	"relist/internal/services"
)

type CartHandlers struct {
	carts *services.CartService
}

func NewCartHandlers(carts *services.CartService) *CartHandlers {
	return &CartHandlers{carts: carts}
}

func cartIdentity(c echo.Context) (tenantID, userID uuid.UUID, err error) {
	ctx := c.Request().Context()
	tenantID, err = common.GetTenantIDFromContext(ctx)
	if err != nil {
		return
	}
	userID, err = common.GetUserIDFromContext(ctx)
	return
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandlers) AddItem(c echo.Context) error {
	tenantID, userID, err := cartIdentity(c)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return common.SendBadRequestError(c, "invalid request body")
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return common.SendBadRequestError(c, "invalid product_id")
	}
	cart, err := h.carts.AddItem(c.Request().Context(), tenantID, userID, productID, req.Quantity)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandlers) RemoveItem(c echo.Context) error {
	tenantID, userID, err := cartIdentity(c)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	productID, err := common.ParseUUIDParam(c, "productID")
	if err != nil {
		return common.SendBadRequestError(c, err.Error())
	}
	cart, err := h.carts.RemoveItem(c.Request().Context(), tenantID, userID, productID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandlers) Get(c echo.Context) error {
	tenantID, userID, err := cartIdentity(c)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	cart, err := h.carts.GetActive(c.Request().Context(), tenantID, userID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, cart)
}

type applyDiscountRequest struct {
	DiscountID string `json:"discount_id"`
}

func (h *CartHandlers) ApplyDiscount(c echo.Context) error {
	tenantID, userID, err := cartIdentity(c)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	var req applyDiscountRequest
	if err := c.Bind(&req); err != nil {
		return common.SendBadRequestError(c, "invalid request body")
	}
	discountID, err := uuid.Parse(req.DiscountID)
	if err != nil {
		return common.SendBadRequestError(c, "invalid discount_id")
	}
	cart, err := h.carts.ApplyDiscount(c.Request().Context(), tenantID, userID, discountID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandlers) Totals(c echo.Context) error {
	tenantID, userID, err := cartIdentity(c)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	totals, err := h.carts.Totals(c.Request().Context(), tenantID, userID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, totals)
}

func (h *CartHandlers) Checkout(c echo.Context) error {
	tenantID, userID, err := cartIdentity(c)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	cart, totals, err := h.carts.Checkout(c.Request().Context(), tenantID, userID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"cart": cart, "totals": totals})
}

func (h *CartHandlers) Abandon(c echo.Context) error {
	tenantID, userID, err := cartIdentity(c)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	if err := h.carts.Abandon(c.Request().Context(), tenantID, userID); err != nil {
		return common.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandlers) History(c echo.Context) error {
	tenantID, userID, err := cartIdentity(c)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	limit, offset := common.ParsePagination(c, 20, 100)
	carts, err := h.carts.History(c.Request().Context(), tenantID, userID, limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, carts)
}
