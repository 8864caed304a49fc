package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SyncRunStatus string

const (
	SyncRunStatusRunning    SyncRunStatus = "RUNNING"
	SyncRunStatusSuccess    SyncRunStatus = "SUCCESS"
	SyncRunStatusPartial    SyncRunStatus = "PARTIAL"
	SyncRunStatusAuthFailed SyncRunStatus = "AUTH_FAILED"
	SyncRunStatusFailed     SyncRunStatus = "FAILED"
)

// SyncRun records one end-to-end fetch-transform-push execution.
type SyncRun struct {
	ID           string        `json:"id" gorm:"type:uuid;primary_key"`
	SessionID    string        `json:"session_id" gorm:"not null"`
	EbayStore    string        `json:"ebay_store" gorm:"not null"`
	ShopifyStore string        `json:"shopify_store"`
	Status       SyncRunStatus `json:"status" gorm:"default:RUNNING"`
	Fetched      int           `json:"fetched"`
	Pushed       int           `json:"pushed"`
	Skipped      int           `json:"skipped"`
	Errors       int           `json:"errors"`
	ErrorMessage string        `json:"error_message"`
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  *time.Time    `json:"completed_at"`
}

func (r *SyncRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// ProductLink maps a source listing to the destination product it produced,
// so that repeated runs update instead of duplicating.
type ProductLink struct {
	ID               string    `json:"id" gorm:"type:uuid;primary_key"`
	ShopifyStore     string    `json:"shopify_store" gorm:"uniqueIndex:idx_store_item;not null"`
	EbayItemID       string    `json:"ebay_item_id" gorm:"uniqueIndex:idx_store_item;not null"`
	ShopifyProductID int64     `json:"shopify_product_id" gorm:"not null"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (l *ProductLink) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}
