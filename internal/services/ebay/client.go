// Package ebay implements the source-marketplace client. The Trading API
// speaks XML, so request parameters are serialized to the eBLBaseComponents
// schema and responses parsed back before anything is returned.
package ebay

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"sellmaster/internal/apperrors"
	"sellmaster/internal/config"
	"sellmaster/internal/credentials"
	"sellmaster/internal/logger"
	"sellmaster/internal/models"
	"sellmaster/internal/services/marketplace"
)

const (
	SandboxAPIBaseURL    = "https://api.sandbox.ebay.com"
	ProductionAPIBaseURL = "https://api.ebay.com"

	tradingAPIPath     = "/ws/api.dll"
	compatibilityLevel = "967"

	// MaximumGapDays bounds the listing window: GetSellerList only returns
	// listings started within the last 119 days. Older listings are out of
	// reach of a single run; this is a documented API limitation, not
	// something to widen.
	MaximumGapDays = 119

	// PageSize is the fixed GetSellerList page size.
	PageSize = 200

	// expiredTokenCode is the Trading API error code for a hard-expired
	// access token.
	expiredTokenCode = "21917053"

	xmlnsEbay = "urn:ebay:apis:eBLBaseComponents"
)

// TimeWindow bounds a listing-retrieval request.
type TimeWindow struct {
	From time.Time
	To   time.Time
}

// ListingWindow returns the maximal window ending at now.
func ListingWindow(now time.Time) TimeWindow {
	return TimeWindow{
		From: now.AddDate(0, 0, -MaximumGapDays),
		To:   now,
	}
}

// Page is one GetSellerList result page.
type Page struct {
	Listings []models.Listing
	HasMore  bool
}

// Client fetches a store's active listings. One client is constructed per
// sync run; the resolved token never leaks into another run.
type Client struct {
	transport marketplace.Requester
	logger    *logger.Logger
}

func NewClient(cfg *config.Config, store credentials.Store, storeName string, logger *logger.Logger) *Client {
	baseURL := ProductionAPIBaseURL
	if cfg.EbaySandbox {
		baseURL = SandboxAPIBaseURL
	}
	if cfg.EbayAPIURL != "" {
		baseURL = cfg.EbayAPIURL
	}

	return &Client{
		transport: marketplace.NewTransport(baseURL, credentials.PlatformEbay, storeName, store, marketplace.BearerAuth),
		logger:    logger,
	}
}

// NewClientWithTransport is used by tests to inject a fake transport.
func NewClientWithTransport(transport marketplace.Requester, logger *logger.Logger) *Client {
	return &Client{transport: transport, logger: logger}
}

// GetSellerList fetches one page of listings started within the window.
// An expired-token error code in the response surfaces as ErrTokenExpired so
// the caller can invalidate the stored credential and abort.
func (c *Client) GetSellerList(ctx context.Context, window TimeWindow, pageNumber int) (*Page, error) {
	reqBody := GetSellerListRequest{
		Xmlns:             xmlnsEbay,
		ErrorLanguage:     "en_US",
		WarningLevel:      "High",
		GranularityLevel:  "Fine",
		StartTimeFrom:     window.From.UTC().Format(ebayTimeFormat),
		StartTimeTo:       window.To.UTC().Format(ebayTimeFormat),
		IncludeWatchCount: true,
		Pagination: PaginationRequest{
			EntriesPerPage: PageSize,
			PageNumber:     pageNumber,
		},
	}

	payload, err := xml.MarshalIndent(reqBody, "", " ")
	if err != nil {
		return nil, apperrors.Parse(err, "encoding GetSellerList request")
	}
	payload = append([]byte(xml.Header), payload...)

	headers := http.Header{}
	headers.Set("Content-Type", "text/xml")
	headers.Set("X-EBAY-API-CALL-NAME", "GetSellerList")
	headers.Set("X-EBAY-API-COMPATIBILITY-LEVEL", compatibilityLevel)
	headers.Set("X-EBAY-API-SITEID", "0")

	respBody, err := c.transport.Request(ctx, http.MethodPost, tradingAPIPath, nil, payload, headers)
	if err != nil {
		return nil, err
	}

	var resp GetSellerListResponse
	if err := xml.Unmarshal(respBody, &resp); err != nil {
		return nil, apperrors.Parse(err, "parsing GetSellerList response")
	}

	for _, respErr := range resp.Errors {
		if respErr.ErrorCode == expiredTokenCode {
			return nil, apperrors.ErrTokenExpired
		}
	}
	if resp.Ack == "Failure" {
		msg := "GetSellerList failed"
		if len(resp.Errors) > 0 {
			msg = fmt.Sprintf("GetSellerList failed: %s", resp.Errors[0].LongMessage)
		}
		return nil, apperrors.API(http.StatusOK, string(respBody), msg)
	}

	listings := make([]models.Listing, 0, len(resp.Items))
	for _, item := range resp.Items {
		listings = append(listings, item.ToListing())
	}

	c.logger.Debug("GetSellerList page %d returned %d items (more=%v)", pageNumber, len(listings), resp.HasMoreItems)

	return &Page{
		Listings: listings,
		HasMore:  resp.HasMoreItems,
	}, nil
}
