package models

import "time"

// Listing is the canonical representation of an item fetched from the source
// marketplace. Listings are transient: fetched, transformed and pushed within
// a single sync run, never persisted.
type Listing struct {
	ItemID     string    `json:"item_id"`
	Title      string    `json:"title"`
	SKU        string    `json:"sku"`
	Price      float64   `json:"price"`
	Currency   string    `json:"currency"`
	Quantity   int       `json:"quantity"`
	WatchCount int       `json:"watch_count"`
	StartTime  time.Time `json:"start_time"`
}
