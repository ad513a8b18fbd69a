package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Product is a flattened view of a Shopify product node. Connection edges
// from the GraphQL response are unwrapped before it is returned.
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Handle      string    `json:"handle"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	ProductType string    `json:"product_type"`
	Vendor      string    `json:"vendor"`
	Images      []Image   `json:"images"`
	Variants    []Variant `json:"variants"`
}

type Image struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text"`
}

type Variant struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	SKU             string           `json:"sku"`
	Barcode         string           `json:"barcode"`
	Price           string           `json:"price"`
	SelectedOptions []SelectedOption `json:"selected_options"`
}

type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProductPage is one page of the store catalog with cursor pagination state.
type ProductPage struct {
	Products    []Product `json:"products"`
	HasNextPage bool      `json:"has_next_page"`
	EndCursor   string    `json:"end_cursor"`
}

// ProductFinder is the single capability the verification flow needs from a
// store client. Implementations return (nil, "", nil) when no variant
// matches either identifier.
type ProductFinder interface {
	FindProductBySKUOrBarcode(ctx context.Context, sku, barcode string) (*Product, string, error)
}

// Client talks to one store's Admin GraphQL endpoint. One client per tenant;
// construct via the service factory so the tenant's own credentials are used.
type Client struct {
	shopDomain  string
	accessToken string
	apiVersion  string
	httpClient  *http.Client
	baseURL     string
}

func NewClient(shopDomain, accessToken, apiVersion string, timeout time.Duration) *Client {
	domain := strings.TrimSuffix(shopDomain, "/")
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	c := &Client{
		shopDomain:  domain,
		accessToken: accessToken,
		apiVersion:  apiVersion,
		httpClient:  &http.Client{Timeout: timeout},
	}
	c.baseURL = fmt.Sprintf("https://%s/admin/api/%s/graphql.json", domain, apiVersion)
	return c
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

func (c *Client) execute(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("marshal graphql request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shopify request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read shopify response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shopify returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var gqlResp graphQLResponse
	if err := json.Unmarshal(raw, &gqlResp); err != nil {
		return nil, fmt.Errorf("decode shopify response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		msgs := make([]string, 0, len(gqlResp.Errors))
		for _, e := range gqlResp.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("shopify graphql errors: %s", strings.Join(msgs, "; "))
	}
	return gqlResp.Data, nil
}

// Wire shapes mirroring the GraphQL connection structure.

type productNode struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Handle      string `json:"handle"`
	Description string `json:"description"`
	Status      string `json:"status"`
	ProductType string `json:"productType"`
	Vendor      string `json:"vendor"`
	Images      struct {
		Edges []struct {
			Node struct {
				URL     string `json:"url"`
				AltText string `json:"altText"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"images"`
	Variants struct {
		Edges []struct {
			Node struct {
				ID              string `json:"id"`
				Title           string `json:"title"`
				SKU             string `json:"sku"`
				Barcode         string `json:"barcode"`
				Price           string `json:"price"`
				SelectedOptions []struct {
					Name  string `json:"name"`
					Value string `json:"value"`
				} `json:"selectedOptions"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

func (n *productNode) flatten() Product {
	p := Product{
		ID:          n.ID,
		Title:       n.Title,
		Handle:      n.Handle,
		Description: n.Description,
		Status:      n.Status,
		ProductType: n.ProductType,
		Vendor:      n.Vendor,
	}
	for _, e := range n.Images.Edges {
		p.Images = append(p.Images, Image{URL: e.Node.URL, AltText: e.Node.AltText})
	}
	for _, e := range n.Variants.Edges {
		v := Variant{
			ID:      e.Node.ID,
			Title:   e.Node.Title,
			SKU:     e.Node.SKU,
			Barcode: e.Node.Barcode,
			Price:   e.Node.Price,
		}
		for _, o := range e.Node.SelectedOptions {
			v.SelectedOptions = append(v.SelectedOptions, SelectedOption{Name: o.Name, Value: o.Value})
		}
		p.Variants = append(p.Variants, v)
	}
	return p
}

const productFields = `
	id
	title
	handle
	description
	status
	productType
	vendor
	images(first: 5) {
		edges { node { url altText } }
	}
	variants(first: 20) {
		edges {
			node {
				id
				title
				sku
				barcode
				price
				selectedOptions { name value }
			}
		}
	}`

const findProductQuery = `
query findProduct($query: String!) {
	products(first: 1, query: $query) {
		edges { node {` + productFields + `} }
	}
}`

func (c *Client) findOne(ctx context.Context, filter string) (*Product, error) {
	data, err := c.execute(ctx, findProductQuery, map[string]any{"query": filter})
	if err != nil {
		return nil, err
	}
	var out struct {
		Products struct {
			Edges []struct {
				Node productNode `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode product search: %w", err)
	}
	if len(out.Products.Edges) == 0 {
		return nil, nil
	}
	p := out.Products.Edges[0].Node.flatten()
	return &p, nil
}

// FindProductBySKUOrBarcode looks the product up by SKU first and falls back
// to barcode. The second return value names the identifier that matched.
func (c *Client) FindProductBySKUOrBarcode(ctx context.Context, sku, barcode string) (*Product, string, error) {
	if sku != "" {
		p, err := c.findOne(ctx, fmt.Sprintf("sku:%s", sku))
		if err != nil {
			return nil, "", err
		}
		if p != nil {
			return p, "sku", nil
		}
	}
	if barcode != "" {
		p, err := c.findOne(ctx, fmt.Sprintf("barcode:%s", barcode))
		if err != nil {
			return nil, "", err
		}
		if p != nil {
			return p, "barcode", nil
		}
	}
	return nil, "", nil
}

const getProductQuery = `
query getProduct($id: ID!) {
	product(id: $id) {` + productFields + `}
}`

// GetProductByID fetches a single product by its GraphQL global ID. Returns
// nil when the product no longer exists.
func (c *Client) GetProductByID(ctx context.Context, gid string) (*Product, error) {
	data, err := c.execute(ctx, getProductQuery, map[string]any{"id": gid})
	if err != nil {
		return nil, err
	}
	var out struct {
		Product *productNode `json:"product"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	if out.Product == nil {
		return nil, nil
	}
	p := out.Product.flatten()
	return &p, nil
}

const listProductsQuery = `
query listProducts($first: Int!, $after: String) {
	products(first: $first, after: $after) {
		edges { node {` + productFields + `} }
		pageInfo { hasNextPage endCursor }
	}
}`

// ListProducts walks the store catalog one cursor page at a time. Pass an
// empty cursor for the first page.
func (c *Client) ListProducts(ctx context.Context, first int, after string) (*ProductPage, error) {
	if first <= 0 || first > 250 {
		first = 50
	}
	vars := map[string]any{"first": first}
	if after != "" {
		vars["after"] = after
	}
	data, err := c.execute(ctx, listProductsQuery, vars)
	if err != nil {
		return nil, err
	}
	var out struct {
		Products struct {
			Edges []struct {
				Node productNode `json:"node"`
			} `json:"edges"`
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
		} `json:"products"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode product list: %w", err)
	}
	page := &ProductPage{
		HasNextPage: out.Products.PageInfo.HasNextPage,
		EndCursor:   out.Products.PageInfo.EndCursor,
	}
	for _, e := range out.Products.Edges {
		page.Products = append(page.Products, e.Node.flatten())
	}
	return page, nil
}
