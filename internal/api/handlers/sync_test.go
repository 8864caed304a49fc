package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellmaster/internal/api/middleware"
	"sellmaster/internal/config"
	"sellmaster/internal/credentials"
	"sellmaster/internal/events"
	"sellmaster/internal/logger"
	"sellmaster/internal/models"
	syncsvc "sellmaster/internal/sync"
)

type fakePublisher struct {
	published []events.SyncEvent
}

func (p *fakePublisher) Publish(ctx context.Context, event events.SyncEvent) (string, error) {
	p.published = append(p.published, event)
	return "event-1", nil
}

type memLinks struct{}

func (memLinks) Find(ctx context.Context, shopifyStore, ebayItemID string) (*models.ProductLink, error) {
	return nil, nil
}
func (memLinks) Save(ctx context.Context, link *models.ProductLink) error { return nil }

type memRuns struct {
	runs map[string]*models.SyncRun
}

func (r *memRuns) Create(ctx context.Context, run *models.SyncRun) error {
	if r.runs == nil {
		r.runs = map[string]*models.SyncRun{}
	}
	copied := *run
	r.runs[run.ID] = &copied
	return nil
}

func (r *memRuns) Update(ctx context.Context, run *models.SyncRun) error {
	return r.Create(ctx, run)
}

func (r *memRuns) Get(ctx context.Context, id string) (*models.SyncRun, error) {
	return r.runs[id], nil
}

type syncFixture struct {
	router    *gin.Engine
	creds     *credentials.MemoryStore
	publisher *fakePublisher
	runs      *memRuns
}

func newSyncFixture() *syncFixture {
	gin.SetMode(gin.TestMode)
	log := logger.New("error")
	cfg := &config.Config{}
	creds := credentials.NewMemoryStore()
	runs := &memRuns{}
	publisher := &fakePublisher{}
	service := syncsvc.NewService(cfg, creds, memLinks{}, runs, log)

	router := gin.New()
	router.Use(middleware.Session(middleware.NewSessionStore("test-session-key"), log))

	// Test-only login shortcut standing in for the OAuth redirects.
	router.GET("/test/login", func(c *gin.Context) {
		if shop := c.Query("ebay"); shop != "" {
			middleware.SetEbayStore(c, shop)
		}
		if shop := c.Query("shopify"); shop != "" {
			middleware.SetShopifyStore(c, shop)
		}
		c.String(http.StatusOK, middleware.SessionID(c))
	})

	handler := NewSyncHandler(cfg, creds, service, publisher, log)
	router.POST("/api/v1/requestEbay", handler.RequestEbay)
	router.POST("/api/v1/dumpToShopify", handler.DumpToShopify)
	router.GET("/api/v1/runs/:id", handler.GetRun)

	return &syncFixture{router: router, creds: creds, publisher: publisher, runs: runs}
}

// login links store names to a session and returns the cookie carrying it
// together with the session's identifier.
func (f *syncFixture) login(t *testing.T, ebayShop, shopifyShop string) (*http.Cookie, string) {
	t.Helper()

	target := "/test/login?ebay=" + ebayShop + "&shopify=" + shopifyShop
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	// Later saves re-issue the cookie with more values; keep the last.
	return cookies[len(cookies)-1], w.Body.String()
}

func (f *syncFixture) putToken(t *testing.T, platform credentials.Platform, storeName string) {
	t.Helper()
	err := f.creds.Put(context.Background(), platform, storeName, credentials.KindToken, "tok", 0)
	require.NoError(t, err)
}

func TestRequestEbayUnauthenticated(t *testing.T) {
	f := newSyncFixture()

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/requestEbay", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, f.publisher.published)
}

func TestRequestEbayMissingToken(t *testing.T) {
	f := newSyncFixture()
	cookie, _ := f.login(t, "store1", "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/requestEbay", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, f.publisher.published)
}

func TestRequestEbayQueuesEvent(t *testing.T) {
	f := newSyncFixture()
	cookie, _ := f.login(t, "store1", "")
	f.putToken(t, credentials.PlatformEbay, "store1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/requestEbay?limit=25", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "event-1", body["event_id"])

	require.Len(t, f.publisher.published, 1)
	event := f.publisher.published[0]
	assert.Equal(t, events.TypeFetchEbay, event.Type)
	assert.Equal(t, "store1", event.EbayStore)
	assert.Equal(t, 25, event.Limit)
	assert.NotEmpty(t, event.SessionID)
}

func TestRequestEbayDefaultsToUnlimited(t *testing.T) {
	f := newSyncFixture()
	cookie, _ := f.login(t, "store1", "")
	f.putToken(t, credentials.PlatformEbay, "store1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/requestEbay", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, f.publisher.published, 1)
	assert.Equal(t, 0, f.publisher.published[0].Limit)
}

func TestDumpToShopifyRequiresBothPlatforms(t *testing.T) {
	f := newSyncFixture()
	cookie, _ := f.login(t, "store1", "")
	f.putToken(t, credentials.PlatformEbay, "store1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dumpToShopify", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, f.publisher.published)
}

func TestDumpToShopifyQueuesFullSync(t *testing.T) {
	f := newSyncFixture()
	cookie, _ := f.login(t, "store1", "shop1")
	f.putToken(t, credentials.PlatformEbay, "store1")
	f.putToken(t, credentials.PlatformShopify, "shop1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dumpToShopify", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body["run_id"])

	require.Len(t, f.publisher.published, 1)
	event := f.publisher.published[0]
	assert.Equal(t, events.TypeFullSync, event.Type)
	assert.Equal(t, "store1", event.EbayStore)
	assert.Equal(t, "shop1", event.ShopifyStore)
	assert.Equal(t, body["run_id"], event.RunID)
	// No caller-supplied limit: the run covers the complete snapshot.
	assert.Equal(t, 0, event.Limit)
}

func TestGetRunNotFound(t *testing.T) {
	f := newSyncFixture()

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/runs/unknown", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRunReturnsCounters(t *testing.T) {
	f := newSyncFixture()
	cookie, sessionID := f.login(t, "store1", "shop1")
	require.NoError(t, f.runs.Create(context.Background(), &models.SyncRun{
		ID:        "run-1",
		SessionID: sessionID,
		Status:    models.SyncRunStatusPartial,
		Fetched:   10,
		Pushed:    8,
		Errors:    2,
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/run-1", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var run models.SyncRun
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	assert.Equal(t, models.SyncRunStatusPartial, run.Status)
	assert.Equal(t, 10, run.Fetched)
	assert.Equal(t, 8, run.Pushed)
}

func TestGetRunHiddenFromOtherSessions(t *testing.T) {
	f := newSyncFixture()
	cookie, _ := f.login(t, "store1", "shop1")
	require.NoError(t, f.runs.Create(context.Background(), &models.SyncRun{
		ID:        "run-1",
		SessionID: "someone-else",
		Status:    models.SyncRunStatusSuccess,
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/run-1", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
