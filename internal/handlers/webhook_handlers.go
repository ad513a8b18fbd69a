package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"relist/internal/caching"
	"relist/internal/common"
	"relist/internal/repositories"
	"relist/internal/services"
)

// WebhookHandlers receives store lifecycle events. Every request is
// authenticated with an HMAC before the body is trusted; a bad signature
// changes nothing and returns 401. The sending store is identified by the
// X-Shopify-Shop-Domain header and verified with that tenant's own webhook
// secret when one is configured, falling back to the shared secret.
type WebhookHandlers struct {
	listings      *services.SecondHandService
	cache         *caching.CacheService
	tenants       repositories.TenantRepository
	webhookSecret string
}

func NewWebhookHandlers(listings *services.SecondHandService, cache *caching.CacheService, tenants repositories.TenantRepository, webhookSecret string) *WebhookHandlers {
	return &WebhookHandlers{listings: listings, cache: cache, tenants: tenants, webhookSecret: webhookSecret}
}

// secretFor picks the webhook secret for the sending store: the tenant's
// own secret when the shop domain resolves to a tenant that has one, the
// process-wide secret otherwise.
func (h *WebhookHandlers) secretFor(c echo.Context) string {
	domain := c.Request().Header.Get("X-Shopify-Shop-Domain")
	if h.tenants == nil || domain == "" {
		return h.webhookSecret
	}
	tenant, err := h.tenants.GetByShopifyDomain(c.Request().Context(), domain)
	if err != nil {
		log.Printf("webhook tenant lookup failed for %s: %v", domain, err)
		return h.webhookSecret
	}
	if tenant != nil && tenant.ShopifyWebhookSecret != nil && *tenant.ShopifyWebhookSecret != "" {
		return *tenant.ShopifyWebhookSecret
	}
	return h.webhookSecret
}

// verifySignature checks X-Shopify-Hmac-Sha256 against the body. Both
// base64 and hex digests are accepted, with or without a "sha256=" prefix.
func verifySignature(secret, header string, body []byte) bool {
	if secret == "" || header == "" {
		return false
	}
	header = strings.TrimPrefix(header, "sha256=")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := mac.Sum(nil)

	if decoded, err := base64.StdEncoding.DecodeString(header); err == nil {
		if hmac.Equal(decoded, expected) {
			return true
		}
	}
	if decoded, err := hex.DecodeString(header); err == nil {
		if hmac.Equal(decoded, expected) {
			return true
		}
	}
	return false
}

func (h *WebhookHandlers) authenticate(c echo.Context) ([]byte, error) {
	if h.cache != nil {
		limited, err := h.cache.IsRateLimited(c.Request().Context(),
			"relist:webhook:rl:"+c.RealIP(), 120, time.Minute)
		if err != nil {
			log.Printf("webhook rate limit check failed: %v", err)
		} else if limited {
			return nil, echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		}
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "could not read body")
	}
	if !verifySignature(h.secretFor(c), c.Request().Header.Get("X-Shopify-Hmac-Sha256"), body) {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid webhook signature")
	}
	return body, nil
}

// ShopifyProductPayload is the subset of the product webhook body we act
// on.
type ShopifyProductPayload struct {
	ID       int64  `json:"id"`
	Status   string `json:"status"`
	Variants []struct {
		SKU     string `json:"sku"`
		Barcode string `json:"barcode"`
	} `json:"variants"`
}

func productGID(id int64) string {
	return fmt.Sprintf("gid://shopify/Product/%d", id)
}

// HandleProductDelete demotes every listing tied to the deleted store
// product.
func (h *WebhookHandlers) HandleProductDelete(c echo.Context) error {
	body, err := h.authenticate(c)
	if err != nil {
		return err
	}
	var payload ShopifyProductPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.ID == 0 {
		return common.SendBadRequestError(c, "invalid webhook payload")
	}

	count, err := h.listings.DemoteByShopifyRef(c.Request().Context(), productGID(payload.ID))
	if err != nil {
		return common.SendInternalServerError(c, "failed to reconcile deletion")
	}
	return c.JSON(http.StatusOK, map[string]any{"demoted": count})
}

// HandleProductUpdate reconciles listings against the product's new status.
func (h *WebhookHandlers) HandleProductUpdate(c echo.Context) error {
	body, err := h.authenticate(c)
	if err != nil {
		return err
	}
	var payload ShopifyProductPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.ID == 0 {
		return common.SendBadRequestError(c, "invalid webhook payload")
	}

	variants := make([]services.WebhookVariant, 0, len(payload.Variants))
	for _, v := range payload.Variants {
		variants = append(variants, services.WebhookVariant{SKU: v.SKU, Barcode: v.Barcode})
	}
	status := strings.ToLower(payload.Status)
	if err := h.listings.ReconcileProductUpdate(c.Request().Context(), productGID(payload.ID), status, variants); err != nil {
		return common.SendInternalServerError(c, "failed to reconcile update")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "reconciled"})
}
