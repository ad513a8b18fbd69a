package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"relist/internal/common"
	"relist/internal/services"
)

// UserHandlers exposes admin-only user management within the tenant.
type UserHandlers struct {
	users *services.UserService
}

func NewUserHandlers(users *services.UserService) *UserHandlers {
	return &UserHandlers{users: users}
}

func (h *UserHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	var in services.SignupInput
	if err := c.Bind(&in); err != nil {
		return common.SendBadRequestError(c, "invalid request body")
	}
	user, err := h.users.Register(ctx, tenantID, &in)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendBadRequestError(c, err.Error())
	}
	user, err := h.users.Get(ctx, tenantID, id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	limit, offset := common.ParsePagination(c, 20, 100)
	users, err := h.users.List(ctx, tenantID, limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

type userUpdateRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
}

func (h *UserHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendBadRequestError(c, err.Error())
	}
	user, err := h.users.Get(ctx, tenantID, id)
	if err != nil {
		return common.RespondError(c, err)
	}

	var req userUpdateRequest
	if err := c.Bind(&req); err != nil {
		return common.SendBadRequestError(c, "invalid request body")
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if err := h.users.Update(ctx, user); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendBadRequestError(c, err.Error())
	}
	if err := h.users.Delete(ctx, tenantID, id); err != nil {
		return common.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
