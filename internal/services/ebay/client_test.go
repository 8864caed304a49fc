package ebay

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellmaster/internal/apperrors"
	"sellmaster/internal/config"
	"sellmaster/internal/credentials"
	"sellmaster/internal/logger"
)

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()

	store := credentials.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), credentials.PlatformEbay, "shop1", credentials.KindToken, "tok-1", 0))

	cfg := &config.Config{EbaySandbox: true, EbayAPIURL: serverURL}
	return NewClient(cfg, store, "shop1", logger.New("error"))
}

func TestGetSellerListRequestShape(t *testing.T) {
	var gotBody GetSellerListRequest
	var gotCallName, gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ws/api.dll", r.URL.Path)
		gotCallName = r.Header.Get("X-EBAY-API-CALL-NAME")
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, xml.Unmarshal(raw, &gotBody))

		w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<GetSellerListResponse xmlns="urn:ebay:apis:eBLBaseComponents">
  <Ack>Success</Ack>
  <HasMoreItems>false</HasMoreItems>
  <ItemArray>
    <Item>
      <ItemID>1100001</ItemID>
      <Title>Vintage Lamp</Title>
      <SKU>LAMP-1</SKU>
      <Quantity>3</Quantity>
      <WatchCount>7</WatchCount>
      <ListingDetails><StartTime>2026-08-01T10:00:00.000Z</StartTime></ListingDetails>
      <SellingStatus>
        <CurrentPrice currencyID="AUD">19.99</CurrentPrice>
        <QuantitySold>1</QuantitySold>
      </SellingStatus>
    </Item>
  </ItemArray>
</GetSellerListResponse>`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	window := ListingWindow(now)

	page, err := client.GetSellerList(context.Background(), window, 1)
	require.NoError(t, err)

	assert.Equal(t, "GetSellerList", gotCallName)
	assert.Equal(t, "Bearer tok-1", gotAuth)

	// Window covers exactly [now-119d, now].
	assert.Equal(t, now.AddDate(0, 0, -119).Format(ebayTimeFormat), gotBody.StartTimeFrom)
	assert.Equal(t, now.Format(ebayTimeFormat), gotBody.StartTimeTo)
	assert.Equal(t, 200, gotBody.Pagination.EntriesPerPage)
	assert.Equal(t, 1, gotBody.Pagination.PageNumber)

	require.Len(t, page.Listings, 1)
	listing := page.Listings[0]
	assert.Equal(t, "1100001", listing.ItemID)
	assert.Equal(t, "Vintage Lamp", listing.Title)
	assert.Equal(t, "LAMP-1", listing.SKU)
	assert.Equal(t, 19.99, listing.Price)
	assert.Equal(t, "AUD", listing.Currency)
	assert.Equal(t, 3, listing.Quantity)
	assert.Equal(t, 7, listing.WatchCount)
	assert.False(t, page.HasMore)
}

func TestGetSellerListExpiredTokenCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<GetSellerListResponse xmlns="urn:ebay:apis:eBLBaseComponents">
  <Ack>Failure</Ack>
  <Errors>
    <ShortMessage>Auth token is hard expired.</ShortMessage>
    <ErrorCode>21917053</ErrorCode>
    <SeverityCode>Error</SeverityCode>
  </Errors>
</GetSellerListResponse>`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	_, err := client.GetSellerList(context.Background(), ListingWindow(time.Now()), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestGetSellerListFailureAckIsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<GetSellerListResponse xmlns="urn:ebay:apis:eBLBaseComponents">
  <Ack>Failure</Ack>
  <Errors>
    <ShortMessage>Bad request.</ShortMessage>
    <LongMessage>Input data is invalid.</LongMessage>
    <ErrorCode>37</ErrorCode>
  </Errors>
</GetSellerListResponse>`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	_, err := client.GetSellerList(context.Background(), ListingWindow(time.Now()), 1)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindAPI, apperrors.KindOf(err))
}

func TestGetSellerListMalformedXMLIsParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"xml"}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	_, err := client.GetSellerList(context.Background(), ListingWindow(time.Now()), 1)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindParse, apperrors.KindOf(err))
}
