// Package shopify implements the destination-marketplace client against the
// Admin REST API.
package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"sellmaster/internal/apperrors"
	"sellmaster/internal/config"
	"sellmaster/internal/credentials"
	"sellmaster/internal/logger"
	"sellmaster/internal/services/marketplace"
)

const apiVersion = "2023-10"

// AccessTokenAuth sets Shopify's access-token header. Tokens stored with a
// bearer prefix are normalized back to the raw value.
func AccessTokenAuth(token string) (string, string) {
	return "X-Shopify-Access-Token", strings.TrimPrefix(token, "Bearer ")
}

// Client issues authenticated Admin API requests for one shop. One client is
// constructed per sync run.
type Client struct {
	transport marketplace.Requester
	logger    *logger.Logger
}

func NewClient(cfg *config.Config, store credentials.Store, storeName string, logger *logger.Logger) *Client {
	baseURL := cfg.ShopifyAPIURL
	if baseURL == "" {
		cleanDomain := strings.TrimSuffix(storeName, ".myshopify.com")
		baseURL = fmt.Sprintf("https://%s.myshopify.com", cleanDomain)
	}

	return &Client{
		transport: marketplace.NewTransport(baseURL, credentials.PlatformShopify, storeName, store, AccessTokenAuth),
		logger:    logger,
	}
}

// NewClientWithTransport is used by tests to inject a fake transport.
func NewClientWithTransport(transport marketplace.Requester, logger *logger.Logger) *Client {
	return &Client{transport: transport, logger: logger}
}

func jsonHeaders() http.Header {
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")
	return headers
}

// GetProducts fetches a page of products from the shop.
func (c *Client) GetProducts(ctx context.Context, limit int, pageInfo string) (*ProductsResponse, error) {
	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", limit))
	if pageInfo != "" {
		query.Set("page_info", pageInfo)
	}

	body, err := c.transport.Request(ctx, http.MethodGet, fmt.Sprintf("/admin/api/%s/products.json", apiVersion), query, nil, jsonHeaders())
	if err != nil {
		return nil, err
	}

	var productsResp ProductsResponse
	if err := json.Unmarshal(body, &productsResp); err != nil {
		return nil, apperrors.Parse(err, "parsing products response")
	}
	return &productsResp, nil
}

// CreateProduct creates a product and returns it with Shopify's identifiers.
func (c *Client) CreateProduct(ctx context.Context, product *Product) (*Product, error) {
	payload, err := json.Marshal(struct {
		Product *Product `json:"product"`
	}{Product: product})
	if err != nil {
		return nil, apperrors.Parse(err, "encoding product")
	}

	body, err := c.transport.Request(ctx, http.MethodPost, fmt.Sprintf("/admin/api/%s/products.json", apiVersion), nil, payload, jsonHeaders())
	if err != nil {
		return nil, err
	}

	var productResp struct {
		Product Product `json:"product"`
	}
	if err := json.Unmarshal(body, &productResp); err != nil {
		return nil, apperrors.Parse(err, "parsing product response")
	}
	return &productResp.Product, nil
}

// UpdateProduct updates an existing product by its Shopify ID.
func (c *Client) UpdateProduct(ctx context.Context, product *Product) (*Product, error) {
	if product.ID == 0 {
		return nil, apperrors.API(0, "", "update requires a product ID")
	}

	payload, err := json.Marshal(struct {
		Product *Product `json:"product"`
	}{Product: product})
	if err != nil {
		return nil, apperrors.Parse(err, "encoding product")
	}

	body, err := c.transport.Request(ctx, http.MethodPut, fmt.Sprintf("/admin/api/%s/products/%d.json", apiVersion, product.ID), nil, payload, jsonHeaders())
	if err != nil {
		return nil, err
	}

	var productResp struct {
		Product Product `json:"product"`
	}
	if err := json.Unmarshal(body, &productResp); err != nil {
		return nil, apperrors.Parse(err, "parsing product response")
	}
	return &productResp.Product, nil
}

// GetShopInfo fetches shop information.
func (c *Client) GetShopInfo(ctx context.Context) (*Shop, error) {
	body, err := c.transport.Request(ctx, http.MethodGet, fmt.Sprintf("/admin/api/%s/shop.json", apiVersion), nil, nil, jsonHeaders())
	if err != nil {
		return nil, err
	}

	var shopResp struct {
		Shop Shop `json:"shop"`
	}
	if err := json.Unmarshal(body, &shopResp); err != nil {
		return nil, apperrors.Parse(err, "parsing shop response")
	}
	return &shopResp.Shop, nil
}
