// Package marketplace provides the authenticated HTTP capability shared by
// the per-platform API clients: lazy one-time token resolution from the
// credential store, a normalized auth header, and uniform typed errors.
package marketplace

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"sellmaster/internal/apperrors"
	"sellmaster/internal/credentials"
)

// Requester is the platform-agnostic client capability. One instance is
// constructed per sync run; instances are never shared across runs.
type Requester interface {
	Request(ctx context.Context, method, path string, query url.Values, body []byte, headers http.Header) ([]byte, error)
}

// AuthHeaderFunc turns a stored token into the platform's auth header.
type AuthHeaderFunc func(token string) (key, value string)

// BearerAuth normalizes the stored token to a single "Bearer " prefix no
// matter how it was stored.
func BearerAuth(token string) (string, string) {
	return "Authorization", "Bearer " + strings.TrimPrefix(token, "Bearer ")
}

// Transport implements Requester against one marketplace for one store.
type Transport struct {
	BaseURL    string
	Platform   credentials.Platform
	StoreName  string
	Store      credentials.Store
	AuthHeader AuthHeaderFunc
	HTTPClient *http.Client

	mu    sync.Mutex
	token string
}

func NewTransport(baseURL string, platform credentials.Platform, storeName string, store credentials.Store, authHeader AuthHeaderFunc) *Transport {
	return &Transport{
		BaseURL:    baseURL,
		Platform:   platform,
		StoreName:  storeName,
		Store:      store,
		AuthHeader: authHeader,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// resolveToken loads the access token on first use and caches it for the
// lifetime of this transport. A missing token fails before any network I/O.
func (t *Transport) resolveToken(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" {
		return t.token, nil
	}

	token, ok, err := t.Store.Get(ctx, t.Platform, t.StoreName, credentials.KindToken)
	if err != nil {
		return "", apperrors.Transport(err, "resolving access token")
	}
	if !ok {
		return "", apperrors.ErrNotAuthenticated
	}

	t.token = token
	return token, nil
}

func (t *Transport) Request(ctx context.Context, method, path string, query url.Values, body []byte, headers http.Header) ([]byte, error) {
	token, err := t.resolveToken(ctx)
	if err != nil {
		return nil, err
	}

	reqURL := t.BaseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, apperrors.Transport(err, "creating request")
	}

	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	key, value := t.AuthHeader(token)
	req.Header.Set(key, value)

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return nil, apperrors.Transport(err, method+" "+path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Transport(err, "reading response body")
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, apperrors.Unauthorized(resp.StatusCode, string(respBody), method+" "+path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.API(resp.StatusCode, string(respBody), method+" "+path)
	}

	return respBody, nil
}
