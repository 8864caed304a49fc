package shopify

import "time"

// Product represents a Shopify product
type Product struct {
	ID          int64      `json:"id,omitempty"`
	Title       string     `json:"title"`
	BodyHTML    string     `json:"body_html,omitempty"`
	Vendor      string     `json:"vendor,omitempty"`
	ProductType string     `json:"product_type,omitempty"`
	Handle      string     `json:"handle,omitempty"`
	Status      string     `json:"status,omitempty"`
	Tags        string     `json:"tags,omitempty"`
	Variants    []Variant  `json:"variants,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Variant represents a product variant
type Variant struct {
	ID                  int64  `json:"id,omitempty"`
	ProductID           int64  `json:"product_id,omitempty"`
	Title               string `json:"title,omitempty"`
	Price               string `json:"price"`
	Sku                 string `json:"sku,omitempty"`
	Position            int    `json:"position,omitempty"`
	InventoryManagement string `json:"inventory_management,omitempty"`
	InventoryQuantity   int    `json:"inventory_quantity"`
}

// Shop represents shop information
type Shop struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Domain   string `json:"domain"`
	Currency string `json:"currency"`
	Timezone string `json:"timezone"`
}

// ProductsResponse is the paginated products listing
type ProductsResponse struct {
	Products []Product `json:"products"`
}
