package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"relist/internal/common"
	"relist/internal/services"
)

type AuthHandlers struct {
	users *services.UserService
	auth  *services.AuthService
}

func NewAuthHandlers(users *services.UserService, auth *services.AuthService) *AuthHandlers {
	return &AuthHandlers{users: users, auth: auth}
}

// Signup registers a client account under the resolved tenant and returns a
// token pair.
func (h *AuthHandlers) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	tenant, err := common.GetTenantFromContext(ctx)
	if err != nil {
		return common.SendBadRequestError(c, "tenant could not be resolved")
	}

	var in services.SignupInput
	if err := c.Bind(&in); err != nil {
		return common.SendBadRequestError(c, "invalid request body")
	}
	in.Role = "" // Public signup never assigns roles.

	user, err := h.users.Register(ctx, tenant.ID, &in)
	if err != nil {
		return common.RespondError(c, err)
	}
	tokens, err := h.auth.GenerateTokens(ctx, user)
	if err != nil {
		return common.SendInternalServerError(c, "failed to issue tokens")
	}
	return c.JSON(http.StatusCreated, tokens)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()
	tenant, err := common.GetTenantFromContext(ctx)
	if err != nil {
		return common.SendBadRequestError(c, "tenant could not be resolved")
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendBadRequestError(c, "invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return common.SendBadRequestError(c, "username and password are required")
	}

	user, err := h.users.Authenticate(ctx, tenant.ID, req.Username, req.Password)
	if err != nil {
		return common.SendUnauthorizedError(c, "invalid credentials")
	}
	tokens, err := h.auth.GenerateTokens(ctx, user)
	if err != nil {
		return common.SendInternalServerError(c, "failed to issue tokens")
	}
	return c.JSON(http.StatusOK, tokens)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh rotates a refresh token into a new token pair.
func (h *AuthHandlers) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	tenant, err := common.GetTenantFromContext(ctx)
	if err != nil {
		return common.SendBadRequestError(c, "tenant could not be resolved")
	}

	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return common.SendBadRequestError(c, "refresh_token is required")
	}

	value, err := h.auth.ValidateRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return common.SendUnauthorizedError(c, "invalid or expired refresh token")
	}
	parts := strings.SplitN(value, "|", 2)
	if len(parts) != 2 {
		return common.SendUnauthorizedError(c, "invalid or expired refresh token")
	}
	userID, err := uuid.Parse(parts[0])
	if err != nil {
		return common.SendUnauthorizedError(c, "invalid or expired refresh token")
	}

	user, err := h.users.Get(ctx, tenant.ID, userID)
	if err != nil {
		return common.SendUnauthorizedError(c, "account no longer exists")
	}
	tokens, err := h.auth.GenerateTokens(ctx, user)
	if err != nil {
		return common.SendInternalServerError(c, "failed to issue tokens")
	}
	return c.JSON(http.StatusOK, tokens)
}

func (h *AuthHandlers) Logout(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return common.SendBadRequestError(c, "refresh_token is required")
	}
	if err := h.auth.RevokeRefreshToken(c.Request().Context(), req.RefreshToken); err != nil {
		return common.SendInternalServerError(c, "failed to revoke token")
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user's profile.
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := common.GetUserIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	user, err := h.users.Get(ctx, tenantID, userID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
