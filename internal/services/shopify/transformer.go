package shopify

import (
	"fmt"
	"strconv"

	"sellmaster/internal/models"
)

type Transformer struct{}

func NewTransformer() *Transformer {
	return &Transformer{}
}

// TransformListing converts a canonical listing into a Shopify product. The
// mapping is total: every field Shopify requires has a source or a default,
// so a listing never produces a half-formed product.
func (t *Transformer) TransformListing(listing models.Listing) (*Product, error) {
	if listing.ItemID == "" {
		return nil, fmt.Errorf("listing has no item id")
	}

	title := listing.Title
	if title == "" {
		title = "eBay item " + listing.ItemID
	}

	sku := listing.SKU
	if sku == "" {
		sku = "ebay-" + listing.ItemID
	}

	quantity := listing.Quantity
	if quantity < 0 {
		quantity = 0
	}

	return &Product{
		Title:    title,
		BodyHTML: fmt.Sprintf("<p>Imported from eBay listing %s.</p>", listing.ItemID),
		Vendor:   "eBay",
		Status:   "active",
		Tags:     "ebay-import",
		Variants: []Variant{
			{
				Title:               "Default",
				Price:               strconv.FormatFloat(listing.Price, 'f', 2, 64),
				Sku:                 sku,
				Position:            1,
				InventoryManagement: "shopify",
				InventoryQuantity:   quantity,
			},
		},
	}, nil
}
