package shopify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellmaster/internal/models"
)

func TestTransformListing(t *testing.T) {
	transformer := NewTransformer()

	product, err := transformer.TransformListing(models.Listing{
		ItemID:    "1100001",
		Title:     "Vintage Lamp",
		SKU:       "LAMP-1",
		Price:     19.9,
		Currency:  "AUD",
		Quantity:  3,
		StartTime: time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, "Vintage Lamp", product.Title)
	assert.Equal(t, "active", product.Status)
	require.Len(t, product.Variants, 1)
	assert.Equal(t, "19.90", product.Variants[0].Price)
	assert.Equal(t, "LAMP-1", product.Variants[0].Sku)
	assert.Equal(t, 3, product.Variants[0].InventoryQuantity)
}

func TestTransformListingDefaultsMissingFields(t *testing.T) {
	transformer := NewTransformer()

	product, err := transformer.TransformListing(models.Listing{
		ItemID:   "42",
		Quantity: -1,
	})
	require.NoError(t, err)

	assert.Equal(t, "eBay item 42", product.Title)
	assert.Equal(t, "ebay-42", product.Variants[0].Sku)
	assert.Equal(t, 0, product.Variants[0].InventoryQuantity)
	assert.Equal(t, "0.00", product.Variants[0].Price)
}

func TestTransformListingRequiresItemID(t *testing.T) {
	transformer := NewTransformer()

	_, err := transformer.TransformListing(models.Listing{Title: "no id"})
	require.Error(t, err)
}
