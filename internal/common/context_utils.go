package common

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"relist/internal/apperrors"
	"relist/internal/models"
)

type contextKey string

const (
	UserIDKey   contextKey = "userID"
	TenantIDKey contextKey = "tenantID"
	RoleKey     contextKey = "role"
	TenantKey   contextKey = "tenant"
)

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctx.Value(UserIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("user ID not found in context")
	}
	return id, nil
}

func GetTenantIDFromContext(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctx.Value(TenantIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("tenant ID not found in context")
	}
	return id, nil
}

func GetRoleFromContext(ctx context.Context) (string, error) {
	role, ok := ctx.Value(RoleKey).(string)
	if !ok {
		return "", errors.New("role not found in context")
	}
	return role, nil
}

// GetTenantFromContext returns the tenant resolved by the subdomain
// middleware, when present on the route.
func GetTenantFromContext(ctx context.Context) (*models.Tenant, error) {
	tenant, ok := ctx.Value(TenantKey).(*models.Tenant)
	if !ok || tenant == nil {
		return nil, errors.New("tenant not found in context")
	}
	return tenant, nil
}

// ErrorResponse is the uniform error envelope for every endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

func CreateErrorResponse(code int, errMsg, message string) ErrorResponse {
	return ErrorResponse{Error: errMsg, Message: message, Code: code}
}

func SendBadRequestError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse(http.StatusBadRequest, "Bad Request", message))
}

func SendUnauthorizedError(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse(http.StatusUnauthorized, "Unauthorized", message))
}

func SendForbiddenError(c echo.Context, message string) error {
	return c.JSON(http.StatusForbidden, CreateErrorResponse(http.StatusForbidden, "Forbidden", message))
}

func SendNotFoundError(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, CreateErrorResponse(http.StatusNotFound, "Not Found", message))
}

func SendInternalServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse(http.StatusInternalServerError, "Internal Server Error", message))
}

// RespondError maps a service-layer error onto the API error contract.
func RespondError(c echo.Context, err error) error {
	status := apperrors.HTTPStatus(err)
	var appErr *apperrors.Error
	message := "an unexpected error occurred"
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	return c.JSON(status, CreateErrorResponse(status, http.StatusText(status), message))
}

// ParsePagination reads limit/offset query params with sane bounds.
func ParsePagination(c echo.Context, defaultLimit, maxLimit int) (limit, offset int) {
	limit = defaultLimit
	if raw := c.QueryParam("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if raw := c.QueryParam("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}

func ParseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errors.New("invalid " + name)
	}
	return id, nil
}
