package marketplace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellmaster/internal/apperrors"
	"sellmaster/internal/credentials"
)

func TestRequestWithoutTokenFailsBeforeNetworkIO(t *testing.T) {
	var called bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	transport := NewTransport(server.URL, credentials.PlatformEbay, "shop1", credentials.NewMemoryStore(), BearerAuth)

	_, err := transport.Request(context.Background(), http.MethodGet, "/x", nil, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
	assert.False(t, called)
}

func TestTokenResolvedOnceAndBearerNormalized(t *testing.T) {
	var gotAuth []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		w.Write([]byte(`ok`))
	}))
	defer server.Close()

	store := credentials.NewMemoryStore()
	ctx := context.Background()
	// Stored with an explicit prefix; the header must not double it.
	require.NoError(t, store.Put(ctx, credentials.PlatformEbay, "shop1", credentials.KindToken, "Bearer tok-1", 0))

	transport := NewTransport(server.URL, credentials.PlatformEbay, "shop1", store, BearerAuth)

	_, err := transport.Request(ctx, http.MethodGet, "/a", nil, nil, nil)
	require.NoError(t, err)

	// Token deleted after first call: the cached copy keeps serving this run.
	require.NoError(t, store.Delete(ctx, credentials.PlatformEbay, "shop1", credentials.KindToken))

	_, err = transport.Request(ctx, http.MethodGet, "/b", nil, nil, nil)
	require.NoError(t, err)

	require.Len(t, gotAuth, 2)
	assert.Equal(t, "Bearer tok-1", gotAuth[0])
	assert.Equal(t, "Bearer tok-1", gotAuth[1])
}

func TestUnauthorizedSurfacesAsAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors":"Invalid API key or access token"}`))
	}))
	defer server.Close()

	store := credentials.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, credentials.PlatformShopify, "shop1", credentials.KindToken, "tok", 0))

	transport := NewTransport(server.URL, credentials.PlatformShopify, "shop1", store, BearerAuth)

	_, err := transport.Request(ctx, http.MethodGet, "/x", nil, nil, nil)
	require.Error(t, err)

	// A rejected token is an auth failure, not an API failure: callers
	// invalidate the credential instead of retrying.
	assert.True(t, apperrors.IsAuth(err))

	var authErr *apperrors.Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, apperrors.KindAuth, authErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
	assert.Contains(t, authErr.Body, "Invalid API key")
}

func TestNon2xxSurfacesAsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"errors":"rate limited"}`))
	}))
	defer server.Close()

	store := credentials.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, credentials.PlatformShopify, "shop1", credentials.KindToken, "tok", 0))

	transport := NewTransport(server.URL, credentials.PlatformShopify, "shop1", store, BearerAuth)

	_, err := transport.Request(ctx, http.MethodGet, "/x", nil, nil, nil)
	require.Error(t, err)

	var apiErr *apperrors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apperrors.KindAPI, apiErr.Kind)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.Contains(t, apiErr.Body, "rate limited")
}
