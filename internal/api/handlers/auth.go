package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sellmaster/internal/api/middleware"
	"sellmaster/internal/apperrors"
	"sellmaster/internal/auth"
	"sellmaster/internal/config"
	"sellmaster/internal/credentials"
	"sellmaster/internal/logger"
	"sellmaster/internal/services/shopify"
)

type AuthHandler struct {
	config *config.Config
	creds  credentials.Store
	logger *logger.Logger
	flows  map[credentials.Platform]*auth.Flow
}

func NewAuthHandler(cfg *config.Config, creds credentials.Store, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		config: cfg,
		creds:  creds,
		logger: logger,
		flows: map[credentials.Platform]*auth.Flow{
			credentials.PlatformEbay:    auth.NewFlow(auth.NewEbayExchanger(cfg), creds, logger),
			credentials.PlatformShopify: auth.NewFlow(auth.NewShopifyExchanger(cfg), creds, logger),
		},
	}
}

// Initiate begins the OAuth handshake for the given platform and redirects
// the merchant to the platform's consent page.
func (h *AuthHandler) Initiate(c *gin.Context) {
	flow, ok := h.flows[credentials.Platform(c.Param("platform"))]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown platform"})
		return
	}

	storeName := c.Query("shop")
	if storeName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing shop parameter"})
		return
	}

	if err := h.rememberStore(c, flow.Platform(), storeName); err != nil {
		h.logger.Error("Failed to save session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}

	authURL, err := flow.Initiate(c.Request.Context(), storeName)
	if err != nil {
		h.logger.Error("Failed to initiate %s auth for %s: %v", flow.Platform(), storeName, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authorization URL"})
		return
	}

	c.Redirect(http.StatusFound, authURL)
}

// Callback completes the handshake: it verifies the returned state, trades
// the code for a token and stores it.
func (h *AuthHandler) Callback(c *gin.Context) {
	platform := credentials.Platform(c.Param("platform"))
	flow, ok := h.flows[platform]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown platform"})
		return
	}

	storeName := c.Query("shop")
	if storeName == "" {
		storeName = h.sessionStore(c, platform)
	}
	if storeName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing shop parameter"})
		return
	}

	query := auth.CallbackQuery{
		State: c.Query("state"),
		Code:  c.Query("code"),
	}

	if err := flow.HandleCallback(c.Request.Context(), storeName, query); err != nil {
		h.logger.Error("%s callback failed for %s: %v", platform, storeName, err)
		if apperrors.KindOf(err) == apperrors.KindAuth {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Authorization failed"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete authorization"})
		}
		return
	}

	if platform == credentials.PlatformShopify {
		// Best effort: confirms the token works and logs which shop linked.
		client := shopify.NewClient(h.config, h.creds, storeName, h.logger)
		if info, err := client.GetShopInfo(c.Request.Context()); err != nil {
			h.logger.Error("Failed to get shop info for %s: %v", storeName, err)
		} else {
			h.logger.Info("Linked Shopify shop %s (%s)", info.Name, info.Domain)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Authorization complete",
		"shop":    storeName,
	})
}

func (h *AuthHandler) rememberStore(c *gin.Context, platform credentials.Platform, name string) error {
	if platform == credentials.PlatformEbay {
		return middleware.SetEbayStore(c, name)
	}
	return middleware.SetShopifyStore(c, name)
}

func (h *AuthHandler) sessionStore(c *gin.Context, platform credentials.Platform) string {
	if platform == credentials.PlatformEbay {
		return middleware.EbayStore(c)
	}
	return middleware.ShopifyStore(c)
}
