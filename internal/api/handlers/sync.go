package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sellmaster/internal/api/middleware"
	"sellmaster/internal/apperrors"
	"sellmaster/internal/config"
	"sellmaster/internal/credentials"
	"sellmaster/internal/events"
	"sellmaster/internal/logger"
	"sellmaster/internal/services/shopify"
	syncsvc "sellmaster/internal/sync"
)

// defaultListLimit caps synchronous listing endpoints so a large seller
// account cannot hold a request open for minutes.
const defaultListLimit = 50

// EventPublisher queues sync events for the background worker.
type EventPublisher interface {
	Publish(ctx context.Context, event events.SyncEvent) (string, error)
}

type SyncHandler struct {
	config    *config.Config
	creds     credentials.Store
	service   *syncsvc.Service
	publisher EventPublisher
	logger    *logger.Logger
}

func NewSyncHandler(cfg *config.Config, creds credentials.Store, service *syncsvc.Service, publisher EventPublisher, logger *logger.Logger) *SyncHandler {
	return &SyncHandler{
		config:    cfg,
		creds:     creds,
		service:   service,
		publisher: publisher,
		logger:    logger,
	}
}

// RequestEbay queues a background fetch of the session's eBay listings.
func (h *SyncHandler) RequestEbay(c *gin.Context) {
	ebayStore, ok := h.requireAuth(c, credentials.PlatformEbay)
	if !ok {
		return
	}

	eventID, err := h.publisher.Publish(c.Request.Context(), events.SyncEvent{
		Type:      events.TypeFetchEbay,
		SessionID: middleware.SessionID(c),
		EbayStore: ebayStore,
		Limit:     h.queueLimit(c),
	})
	if err != nil {
		h.logger.Error("Failed to publish fetch event: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue fetch"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":  "Fetch queued",
		"event_id": eventID,
	})
}

// DumpToShopify queues a full eBay to Shopify sync run for this session.
func (h *SyncHandler) DumpToShopify(c *gin.Context) {
	ebayStore, ok := h.requireAuth(c, credentials.PlatformEbay)
	if !ok {
		return
	}
	shopifyStore, ok := h.requireAuth(c, credentials.PlatformShopify)
	if !ok {
		return
	}

	// The run ID is minted here so the caller can poll /runs/:id while
	// the worker executes the run.
	runID := uuid.New().String()
	eventID, err := h.publisher.Publish(c.Request.Context(), events.SyncEvent{
		Type:         events.TypeFullSync,
		SessionID:    middleware.SessionID(c),
		RunID:        runID,
		EbayStore:    ebayStore,
		ShopifyStore: shopifyStore,
		Limit:        h.queueLimit(c),
	})
	if err != nil {
		h.logger.Error("Failed to publish sync event: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue sync"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":  "Sync queued",
		"event_id": eventID,
		"run_id":   runID,
	})
}

// EbayList fetches the session's active eBay listings synchronously.
func (h *SyncHandler) EbayList(c *gin.Context) {
	ebayStore, ok := h.requireAuth(c, credentials.PlatformEbay)
	if !ok {
		return
	}

	listings, err := h.service.FetchListings(c.Request.Context(), middleware.SessionID(c), ebayStore, h.limit(c))
	if err != nil {
		h.logger.Error("Failed to fetch eBay listings for %s: %v", ebayStore, err)
		c.JSON(statusFor(err), gin.H{"error": "Failed to fetch listings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": listings,
		"count":    len(listings),
	})
}

// ShopifyList returns the products currently in the session's Shopify shop.
func (h *SyncHandler) ShopifyList(c *gin.Context) {
	shopifyStore, ok := h.requireAuth(c, credentials.PlatformShopify)
	if !ok {
		return
	}

	client := shopify.NewClient(h.config, h.creds, shopifyStore, h.logger)
	resp, err := client.GetProducts(c.Request.Context(), h.limit(c), "")
	if err != nil {
		h.logger.Error("Failed to list Shopify products for %s: %v", shopifyStore, err)
		c.JSON(statusFor(err), gin.H{"error": "Failed to list products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": resp.Products,
		"count":    len(resp.Products),
	})
}

// GetRun returns the state and counters of a sync run.
func (h *SyncHandler) GetRun(c *gin.Context) {
	run, err := h.service.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load run"})
		return
	}
	// Runs are scoped to the session that queued them; a foreign run is
	// indistinguishable from an unknown one.
	if run == nil || run.SessionID != middleware.SessionID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}

	c.JSON(http.StatusOK, run)
}

// requireAuth resolves the session's store name for platform and confirms a
// token is on file. Responds 401 and returns ok=false otherwise.
func (h *SyncHandler) requireAuth(c *gin.Context, platform credentials.Platform) (string, bool) {
	storeName := middleware.EbayStore(c)
	if platform == credentials.PlatformShopify {
		storeName = middleware.ShopifyStore(c)
	}
	if storeName == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated with " + string(platform) + ", re-authenticate"})
		return "", false
	}

	_, ok, err := h.creds.Get(c.Request.Context(), platform, storeName, credentials.KindToken)
	if err != nil {
		h.logger.Error("Failed to check %s token for %s: %v", platform, storeName, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check credentials"})
		return "", false
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated with " + string(platform) + ", re-authenticate"})
		return "", false
	}

	return storeName, true
}

func (h *SyncHandler) limit(c *gin.Context) int {
	if limit := parseLimit(c); limit > 0 {
		return limit
	}
	return defaultListLimit
}

// queueLimit is for the queued runs: no limit unless the caller asks for
// one, so a full sync covers the complete snapshot.
func (h *SyncHandler) queueLimit(c *gin.Context) int {
	return parseLimit(c)
}

func parseLimit(c *gin.Context) int {
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			return limit
		}
	}
	return 0
}

func statusFor(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindAuth:
		return http.StatusUnauthorized
	case apperrors.KindAPI, apperrors.KindTransport, apperrors.KindParse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
