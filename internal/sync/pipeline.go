// Package sync orchestrates one fetch-transform-push run between a linked
// eBay store and Shopify store.
package sync

import (
	"context"
	"errors"
	"time"

	"sellmaster/internal/apperrors"
	"sellmaster/internal/credentials"
	"sellmaster/internal/logger"
	"sellmaster/internal/models"
	"sellmaster/internal/services/ebay"
	"sellmaster/internal/services/shopify"
)

// EbayLister is the slice of the eBay client the pipeline consumes.
type EbayLister interface {
	GetSellerList(ctx context.Context, window ebay.TimeWindow, pageNumber int) (*ebay.Page, error)
}

// ShopifyPusher is the slice of the Shopify client the pipeline consumes.
type ShopifyPusher interface {
	CreateProduct(ctx context.Context, product *shopify.Product) (*shopify.Product, error)
	UpdateProduct(ctx context.Context, product *shopify.Product) (*shopify.Product, error)
}

// Pipeline is constructed once per sync run. Clients are never shared
// between runs, so a cached token from one run cannot leak into another.
type Pipeline struct {
	runID        string
	sessionID    string
	ebayStore    string
	shopifyStore string

	ebayClient    EbayLister
	shopifyClient ShopifyPusher
	creds         credentials.Store
	links         LinkRepo
	runs          RunRepo
	transformer   *shopify.Transformer
	logger        *logger.Logger
	now           func() time.Time
}

type PipelineParams struct {
	// RunID pre-assigns the sync run identifier so a caller that queued
	// the run asynchronously can hand its ID out before the run starts.
	RunID        string
	SessionID    string
	EbayStore    string
	ShopifyStore string
	Ebay         EbayLister
	Shopify      ShopifyPusher
	Creds        credentials.Store
	Links        LinkRepo
	Runs         RunRepo
	Logger       *logger.Logger
}

func NewPipeline(p PipelineParams) *Pipeline {
	return &Pipeline{
		runID:         p.RunID,
		sessionID:     p.SessionID,
		ebayStore:     p.EbayStore,
		shopifyStore:  p.ShopifyStore,
		ebayClient:    p.Ebay,
		shopifyClient: p.Shopify,
		creds:         p.Creds,
		links:         p.Links,
		runs:          p.Runs,
		transformer:   shopify.NewTransformer(),
		logger:        p.Logger,
		now:           time.Now,
	}
}

// FetchListings pages through the store's active listings, strictly in
// sequence: the next page is only requested after the previous page's
// expiry check passed. Accumulation follows API response order with
// duplicates dropped. A limit of 0 means no limit.
//
// The retrieval window covers exactly the last 119 days because the
// upstream API returns nothing older; a run is a time-bounded snapshot,
// not a full inventory dump.
func (p *Pipeline) FetchListings(ctx context.Context, limit int) ([]models.Listing, error) {
	window := ebay.ListingWindow(p.now())

	var listings []models.Listing
	seen := make(map[string]bool)

	for pageNumber := 1; ; pageNumber++ {
		page, err := p.ebayClient.GetSellerList(ctx, window, pageNumber)
		if err != nil {
			if errors.Is(err, apperrors.ErrTokenExpired) {
				// The stored token is dead; make the next run start from
				// a clean re-authentication instead of replaying it.
				if delErr := p.creds.Delete(ctx, credentials.PlatformEbay, p.ebayStore, credentials.KindToken); delErr != nil {
					p.logger.Error("deleting expired ebay token for %s: %v", p.ebayStore, delErr)
				}
			}
			return nil, err
		}

		for _, listing := range page.Listings {
			if seen[listing.ItemID] {
				continue
			}
			seen[listing.ItemID] = true
			listings = append(listings, listing)
			if limit > 0 && len(listings) >= limit {
				return listings, nil
			}
		}

		if !page.HasMore || len(page.Listings) < ebay.PageSize {
			return listings, nil
		}
	}
}

// Run executes the full pipeline and records the aggregate outcome. Partial
// failures are reported, never masked; an authentication failure invalidates
// the whole run.
func (p *Pipeline) Run(ctx context.Context, limit int) (*models.SyncRun, error) {
	run := &models.SyncRun{
		ID:           p.runID,
		SessionID:    p.sessionID,
		EbayStore:    p.ebayStore,
		ShopifyStore: p.shopifyStore,
		Status:       models.SyncRunStatusRunning,
		StartedAt:    p.now(),
	}
	if err := p.runs.Create(ctx, run); err != nil {
		return nil, apperrors.Transport(err, "recording sync run")
	}

	listings, err := p.FetchListings(ctx, limit)
	if err != nil {
		p.finalize(ctx, run, statusForError(err), err)
		return run, err
	}
	run.Fetched = len(listings)

	for _, listing := range listings {
		if err := p.push(ctx, listing); err != nil {
			if apperrors.IsAuth(err) {
				// The destination rejected the stored token; drop it so
				// the next run starts from re-authentication instead of
				// replaying it against every remaining listing.
				if delErr := p.creds.Delete(ctx, credentials.PlatformShopify, p.shopifyStore, credentials.KindToken); delErr != nil {
					p.logger.Error("deleting rejected shopify token for %s: %v", p.shopifyStore, delErr)
				}
				p.finalize(ctx, run, models.SyncRunStatusAuthFailed, err)
				return run, err
			}
			p.logger.Error("pushing listing %s: %v", listing.ItemID, err)
			run.Errors++
			continue
		}
		run.Pushed++
	}
	run.Skipped = run.Fetched - run.Pushed - run.Errors

	status := models.SyncRunStatusSuccess
	if run.Errors > 0 {
		status = models.SyncRunStatusPartial
	}
	p.finalize(ctx, run, status, nil)

	p.logger.Info("sync run %s: fetched=%d pushed=%d skipped=%d errors=%d",
		run.ID, run.Fetched, run.Pushed, run.Skipped, run.Errors)
	return run, nil
}

// push transforms one listing and creates or updates its destination
// product. Idempotent: a listing already linked to a product updates it
// rather than duplicating.
func (p *Pipeline) push(ctx context.Context, listing models.Listing) error {
	product, err := p.transformer.TransformListing(listing)
	if err != nil {
		return apperrors.Parse(err, "transforming listing "+listing.ItemID)
	}

	link, err := p.links.Find(ctx, p.shopifyStore, listing.ItemID)
	if err != nil {
		return apperrors.Transport(err, "looking up product link")
	}

	if link != nil {
		product.ID = link.ShopifyProductID
		_, err := p.shopifyClient.UpdateProduct(ctx, product)
		return err
	}

	created, err := p.shopifyClient.CreateProduct(ctx, product)
	if err != nil {
		return err
	}

	return p.links.Save(ctx, &models.ProductLink{
		ShopifyStore:     p.shopifyStore,
		EbayItemID:       listing.ItemID,
		ShopifyProductID: created.ID,
	})
}

func (p *Pipeline) finalize(ctx context.Context, run *models.SyncRun, status models.SyncRunStatus, cause error) {
	now := p.now()
	run.Status = status
	run.CompletedAt = &now
	if cause != nil {
		run.ErrorMessage = cause.Error()
	}
	if err := p.runs.Update(ctx, run); err != nil {
		p.logger.Error("updating sync run %s: %v", run.ID, err)
	}
}

func statusForError(err error) models.SyncRunStatus {
	if apperrors.IsAuth(err) {
		return models.SyncRunStatusAuthFailed
	}
	return models.SyncRunStatusFailed
}
