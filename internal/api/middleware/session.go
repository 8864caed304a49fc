package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"sellmaster/internal/logger"
)

// SessionName is the cookie name used for the browser session.
const SessionName = "sellmaster_session"

const sessionContextKey = "session"

const (
	sessionIDKey    = "session_id"
	ebayStoreKey    = "ebay_store"
	shopifyStoreKey = "shopify_store"
)

// NewSessionStore builds a cookie-backed session store. An empty auth key
// falls back to a random per-process key, which invalidates sessions on
// restart and is only suitable for development.
func NewSessionStore(authKey string) *sessions.CookieStore {
	key := []byte(authKey)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30, // 30 days
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Session loads (or creates) the session for each request and makes it
// available via GetSession. New sessions get a stable identifier so that
// background sync runs can be tied back to the browser that requested them.
func Session(store sessions.Store, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := store.Get(c.Request, SessionName)
		if err != nil {
			// Corrupt cookie; store.Get still returns a fresh session.
			logger.Debug("Resetting invalid session cookie: %v", err)
		}

		if _, ok := session.Values[sessionIDKey].(string); !ok {
			session.Values[sessionIDKey] = uuid.New().String()
			if err := session.Save(c.Request, c.Writer); err != nil {
				logger.Error("Failed to save session: %v", err)
			}
		}

		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// GetSession returns the request session installed by Session.
func GetSession(c *gin.Context) *sessions.Session {
	if s, ok := c.Get(sessionContextKey); ok {
		return s.(*sessions.Session)
	}
	return nil
}

// SessionID returns the stable identifier of the request session.
func SessionID(c *gin.Context) string {
	session := GetSession(c)
	if session == nil {
		return ""
	}
	id, _ := session.Values[sessionIDKey].(string)
	return id
}

// EbayStore returns the eBay store name linked to this session, if any.
func EbayStore(c *gin.Context) string {
	return storeName(c, ebayStoreKey)
}

// ShopifyStore returns the Shopify store name linked to this session, if any.
func ShopifyStore(c *gin.Context) string {
	return storeName(c, shopifyStoreKey)
}

// SetEbayStore links an eBay store name to this session and persists it.
func SetEbayStore(c *gin.Context, name string) error {
	return setStoreName(c, ebayStoreKey, name)
}

// SetShopifyStore links a Shopify store name to this session and persists it.
func SetShopifyStore(c *gin.Context, name string) error {
	return setStoreName(c, shopifyStoreKey, name)
}

func storeName(c *gin.Context, key string) string {
	session := GetSession(c)
	if session == nil {
		return ""
	}
	name, _ := session.Values[key].(string)
	return name
}

func setStoreName(c *gin.Context, key, name string) error {
	session := GetSession(c)
	if session == nil {
		return nil
	}
	session.Values[key] = name
	return session.Save(c.Request, c.Writer)
}
