package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sellmaster/internal/apperrors"
	"sellmaster/internal/config"
	"sellmaster/internal/credentials"
)

// ShopifyExchanger exchanges authorization codes at the shop's
// admin/oauth/access_token endpoint.
type ShopifyExchanger struct {
	clientID     string
	clientSecret string
	redirectURI  string
	scopes       string
	apiBase      string // test override; empty means the shop's real domain
	httpClient   *http.Client
}

func NewShopifyExchanger(cfg *config.Config) *ShopifyExchanger {
	return &ShopifyExchanger{
		clientID:     cfg.ShopifyClientID,
		clientSecret: cfg.ShopifyClientSecret,
		redirectURI:  cfg.ShopifyRedirectURI,
		scopes:       cfg.ShopifyScopes,
		apiBase:      cfg.ShopifyAPIURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (e *ShopifyExchanger) Platform() credentials.Platform {
	return credentials.PlatformShopify
}

func (e *ShopifyExchanger) baseURL(storeName string) string {
	if e.apiBase != "" {
		return e.apiBase
	}
	// Accept either a bare store name or a full myshopify domain.
	cleanDomain := strings.TrimSuffix(storeName, ".myshopify.com")
	return fmt.Sprintf("https://%s.myshopify.com", cleanDomain)
}

func (e *ShopifyExchanger) AuthURL(storeName, state string) (string, error) {
	if e.clientID == "" || e.clientSecret == "" {
		return "", apperrors.Config("shopify client credentials not configured")
	}

	return fmt.Sprintf(
		"%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s&state=%s",
		e.baseURL(storeName),
		e.clientID,
		e.scopes,
		url.QueryEscape(e.redirectURI),
		state,
	), nil
}

func (e *ShopifyExchanger) Exchange(ctx context.Context, storeName, code string) (string, error) {
	if e.clientID == "" || e.clientSecret == "" {
		return "", apperrors.Config("shopify client credentials not configured")
	}

	tokenURL := e.baseURL(storeName) + "/admin/oauth/access_token"

	data := url.Values{}
	data.Set("client_id", e.clientID)
	data.Set("client_secret", e.clientSecret)
	data.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", apperrors.Transport(err, "creating token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", apperrors.Transport(err, "shopify token exchange")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.Transport(err, "reading token response")
	}

	if resp.StatusCode != http.StatusOK {
		return "", &apperrors.Error{
			Kind:    apperrors.KindAuth,
			Message: "shopify rejected authorization code",
			Status:  resp.StatusCode,
			Body:    string(body),
		}
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		Scope       string `json:"scope"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", apperrors.Parse(err, "parsing token response")
	}
	if tokenResp.AccessToken == "" {
		return "", apperrors.Auth("shopify token response missing access_token")
	}

	return tokenResp.AccessToken, nil
}
