package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("test-store.myshopify.com", "shpat_test", "2024-07", 5*time.Second)
	c.baseURL = srv.URL
	return c
}

func productResponse(sku, barcode, status string) map[string]any {
	return map[string]any{
		"data": map[string]any{
			"products": map[string]any{
				"edges": []any{
					map[string]any{"node": map[string]any{
						"id":     "gid://shopify/Product/42",
						"title":  "Vintage Jacket",
						"status": status,
						"variants": map[string]any{
							"edges": []any{
								map[string]any{"node": map[string]any{
									"id":      "gid://shopify/ProductVariant/1",
									"sku":     sku,
									"barcode": barcode,
									"price":   "79.00",
								}},
							},
						},
					}},
				},
			},
		},
	}
}

func TestFindProductBySKU(t *testing.T) {
	var gotToken string
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		var req struct {
			Variables map[string]string `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotQuery = req.Variables["query"]
		require.NoError(t, json.NewEncoder(w).Encode(productResponse("SKU-1", "", "ACTIVE")))
	})

	product, method, err := client.FindProductBySKUOrBarcode(context.Background(), "SKU-1", "")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "sku", method)
	assert.Equal(t, "gid://shopify/Product/42", product.ID)
	assert.Equal(t, "ACTIVE", product.Status)
	require.Len(t, product.Variants, 1)
	assert.Equal(t, "SKU-1", product.Variants[0].SKU)
	assert.Equal(t, "shpat_test", gotToken)
	assert.Equal(t, "sku:SKU-1", gotQuery)
}

func TestFindProductFallsBackToBarcode(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			// No SKU match on the first lookup.
			empty := map[string]any{"data": map[string]any{"products": map[string]any{"edges": []any{}}}}
			require.NoError(t, json.NewEncoder(w).Encode(empty))
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(productResponse("", "123456789", "ACTIVE")))
	})

	product, method, err := client.FindProductBySKUOrBarcode(context.Background(), "MISSING", "123456789")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "barcode", method)
	assert.Equal(t, 2, calls)
}

func TestFindProductNoMatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		empty := map[string]any{"data": map[string]any{"products": map[string]any{"edges": []any{}}}}
		require.NoError(t, json.NewEncoder(w).Encode(empty))
	})

	product, method, err := client.FindProductBySKUOrBarcode(context.Background(), "MISSING", "")
	require.NoError(t, err)
	assert.Nil(t, product)
	assert.Empty(t, method)
}

func TestGraphQLErrorsSurface(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{"errors": []any{map[string]any{"message": "throttled"}}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	_, _, err := client.FindProductBySKUOrBarcode(context.Background(), "SKU-1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestNonOKStatusIsAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, _, err := client.FindProductBySKUOrBarcode(context.Background(), "SKU-1", "")
	require.Error(t, err)
}

func TestListProductsPagination(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"data": map[string]any{
				"products": map[string]any{
					"edges": []any{
						map[string]any{"node": map[string]any{"id": "gid://shopify/Product/1", "title": "One"}},
						map[string]any{"node": map[string]any{"id": "gid://shopify/Product/2", "title": "Two"}},
					},
					"pageInfo": map[string]any{"hasNextPage": true, "endCursor": "cursor-2"},
				},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	page, err := client.ListProducts(context.Background(), 2, "")
	require.NoError(t, err)
	assert.Len(t, page.Products, 2)
	assert.True(t, page.HasNextPage)
	assert.Equal(t, "cursor-2", page.EndCursor)
}

func TestDomainNormalization(t *testing.T) {
	c := NewClient("https://my-store.myshopify.com/", "token", "2024-07", time.Second)
	assert.Equal(t, "https://my-store.myshopify.com/admin/api/2024-07/graphql.json", c.baseURL)
}
