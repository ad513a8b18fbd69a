package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"relist/internal/common"
	"relist/internal/models"
	"relist/internal/services"
)

// SecondHandHandlers covers the full listing lifecycle: seller submission,
// public browsing and search, and the admin approval queue.
type SecondHandHandlers struct {
	listings     *services.SecondHandService
	verification *services.VerificationService
}

func NewSecondHandHandlers(listings *services.SecondHandService, verification *services.VerificationService) *SecondHandHandlers {
	return &SecondHandHandlers{listings: listings, verification: verification}
}

type verifyRequest struct {
	SKU     string `json:"sku"`
	Barcode string `json:"barcode"`
}

// Verify performs a dry-run eligibility check without creating anything.
func (h *SecondHandHandlers) Verify(c echo.Context) error {
	ctx := c.Request().Context()
	tenant, err := common.GetTenantFromContext(ctx)
	if err != nil {
		return common.SendBadRequestError(c, "tenant could not be resolved")
	}
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return common.SendBadRequestError(c, "invalid request body")
	}
	result, err := h.verification.VerifyEligibility(ctx, tenant, req.SKU, req.Barcode)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func optionalForm(c echo.Context, field string) *string {
	if v := c.FormValue(field); v != "" {
		return &v
	}
	return nil
}

// Create accepts a multipart submission with listing fields plus one or
// more image files under the "images" key.
func (h *SecondHandHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()
	tenant, err := common.GetTenantFromContext(ctx)
	if err != nil {
		return common.SendBadRequestError(c, "tenant could not be resolved")
	}
	sellerID, err := common.GetUserIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}

	price, err := strconv.ParseFloat(c.FormValue("price"), 64)
	if err != nil {
		return common.SendBadRequestError(c, "price must be a number")
	}
	in := &services.CreateListingInput{
		Name:        c.FormValue("name"),
		Description: optionalForm(c, "description"),
		Price:       price,
		Condition:   c.FormValue("condition"),
		OriginalSKU: c.FormValue("original_sku"),
		Barcode:     optionalForm(c, "barcode"),
		Size:        optionalForm(c, "size"),
		Color:       optionalForm(c, "color"),
	}

	form, err := c.MultipartForm()
	if err != nil {
		return common.SendBadRequestError(c, "multipart form is required")
	}
	files := form.File["images"]
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return common.SendBadRequestError(c, "could not read uploaded image")
		}
		defer f.Close()
		in.Images = append(in.Images, services.ImageUpload{
			Filename: fh.Filename,
			Reader:   f,
			Size:     fh.Size,
		})
	}

	product, err := h.listings.Create(ctx, tenant, sellerID, in)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

func (h *SecondHandHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendBadRequestError(c, err.Error())
	}
	product, err := h.listings.Get(ctx, tenantID, id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *SecondHandHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	sellerID, err := common.GetUserIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendBadRequestError(c, err.Error())
	}
	var in models.SecondHandProductUpdate
	if err := c.Bind(&in); err != nil {
		return common.SendBadRequestError(c, "invalid request body")
	}
	product, err := h.listings.Update(ctx, tenantID, sellerID, id, &in)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *SecondHandHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	sellerID, err := common.GetUserIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendBadRequestError(c, err.Error())
	}
	if err := h.listings.Delete(ctx, tenantID, sellerID, id); err != nil {
		return common.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListApproved is the public storefront view of sellable listings.
func (h *SecondHandHandlers) ListApproved(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendBadRequestError(c, "tenant could not be resolved")
	}
	limit, offset := common.ParsePagination(c, 20, 100)
	products, err := h.listings.ListApproved(ctx, tenantID, limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// MyListings shows the seller everything they submitted, whatever the
// status.
func (h *SecondHandHandlers) MyListings(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	sellerID, err := common.GetUserIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	limit, offset := common.ParsePagination(c, 20, 100)
	products, err := h.listings.ListBySeller(ctx, tenantID, sellerID, limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func parseFloatParam(c echo.Context, name string) *float64 {
	if raw := c.QueryParam(name); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return &v
		}
	}
	return nil
}

func optionalQuery(c echo.Context, name string) *string {
	if v := c.QueryParam(name); v != "" {
		return &v
	}
	return nil
}

// Search filters approved listings by text, condition, size, color and
// price range.
func (h *SecondHandHandlers) Search(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendBadRequestError(c, "tenant could not be resolved")
	}
	limit, offset := common.ParsePagination(c, 20, 100)
	filter := &models.SecondHandSearchFilter{
		Query:     c.QueryParam("q"),
		Condition: optionalQuery(c, "condition"),
		Size:      optionalQuery(c, "size"),
		Color:     optionalQuery(c, "color"),
		MinPrice:  parseFloatParam(c, "min_price"),
		MaxPrice:  parseFloatParam(c, "max_price"),
		Limit:     limit,
		Offset:    offset,
	}
	products, err := h.listings.Search(ctx, tenantID, filter)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// ListPending is the admin approval queue, oldest first.
func (h *SecondHandHandlers) ListPending(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	limit, offset := common.ParsePagination(c, 20, 100)
	products, err := h.listings.ListPending(ctx, tenantID, limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *SecondHandHandlers) Approve(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendBadRequestError(c, err.Error())
	}
	product, err := h.listings.Approve(ctx, tenantID, id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *SecondHandHandlers) Reject(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendBadRequestError(c, err.Error())
	}
	product, err := h.listings.Reject(ctx, tenantID, id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// ImageURL redirects through a presigned storage URL.
func (h *SecondHandHandlers) ImageURL(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := common.GetTenantIDFromContext(ctx)
	if err != nil {
		return common.SendUnauthorizedError(c, "missing authentication")
	}
	imageID, err := common.ParseUUIDParam(c, "imageID")
	if err != nil {
		return common.SendBadRequestError(c, err.Error())
	}
	url, err := h.listings.ImageURL(ctx, tenantID, imageID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
