package ebay

import (
	"encoding/xml"
	"strconv"
	"time"

	"sellmaster/internal/models"
)

const ebayTimeFormat = "2006-01-02T15:04:05.000Z"

// GetSellerListRequest is the Trading API request envelope.
type GetSellerListRequest struct {
	XMLName           xml.Name          `xml:"GetSellerListRequest"`
	Xmlns             string            `xml:"xmlns,attr"`
	ErrorLanguage     string            `xml:"ErrorLanguage"`
	WarningLevel      string            `xml:"WarningLevel"`
	GranularityLevel  string            `xml:"GranularityLevel"`
	StartTimeFrom     string            `xml:"StartTimeFrom"`
	StartTimeTo       string            `xml:"StartTimeTo"`
	IncludeWatchCount bool              `xml:"IncludeWatchCount"`
	Pagination        PaginationRequest `xml:"Pagination"`
}

type PaginationRequest struct {
	EntriesPerPage int `xml:"EntriesPerPage"`
	PageNumber     int `xml:"PageNumber"`
}

// GetSellerListResponse is the Trading API response envelope.
type GetSellerListResponse struct {
	XMLName      xml.Name        `xml:"GetSellerListResponse"`
	Ack          string          `xml:"Ack"`
	Errors       []ResponseError `xml:"Errors"`
	HasMoreItems bool            `xml:"HasMoreItems"`
	PageNumber   int             `xml:"PageNumber"`
	Items        []SellerItem    `xml:"ItemArray>Item"`
}

type ResponseError struct {
	ShortMessage string `xml:"ShortMessage"`
	LongMessage  string `xml:"LongMessage"`
	ErrorCode    string `xml:"ErrorCode"`
	SeverityCode string `xml:"SeverityCode"`
}

type SellerItem struct {
	ItemID         string         `xml:"ItemID"`
	Title          string         `xml:"Title"`
	SKU            string         `xml:"SKU"`
	Quantity       int            `xml:"Quantity"`
	WatchCount     int            `xml:"WatchCount"`
	ListingDetails ListingDetails `xml:"ListingDetails"`
	SellingStatus  SellingStatus  `xml:"SellingStatus"`
}

type ListingDetails struct {
	StartTime string `xml:"StartTime"`
}

type SellingStatus struct {
	CurrentPrice Amount `xml:"CurrentPrice"`
	QuantitySold int    `xml:"QuantitySold"`
}

type Amount struct {
	CurrencyID string `xml:"currencyID,attr"`
	Value      string `xml:",chardata"`
}

// ToListing converts a Trading API item into the canonical representation.
func (i SellerItem) ToListing() models.Listing {
	price, _ := strconv.ParseFloat(i.SellingStatus.CurrentPrice.Value, 64)

	startTime, err := time.Parse(ebayTimeFormat, i.ListingDetails.StartTime)
	if err != nil {
		startTime, _ = time.Parse(time.RFC3339, i.ListingDetails.StartTime)
	}

	currency := i.SellingStatus.CurrentPrice.CurrencyID
	if currency == "" {
		currency = "USD"
	}

	return models.Listing{
		ItemID:     i.ItemID,
		Title:      i.Title,
		SKU:        i.SKU,
		Price:      price,
		Currency:   currency,
		Quantity:   i.Quantity,
		WatchCount: i.WatchCount,
		StartTime:  startTime,
	}
}
