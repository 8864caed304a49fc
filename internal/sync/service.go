package sync

import (
	"context"

	"sellmaster/internal/config"
	"sellmaster/internal/credentials"
	"sellmaster/internal/logger"
	"sellmaster/internal/models"
	"sellmaster/internal/services/ebay"
	"sellmaster/internal/services/shopify"
)

// Service builds pipelines. Every run gets fresh marketplace clients so
// cached tokens never cross run boundaries.
type Service struct {
	cfg    *config.Config
	creds  credentials.Store
	links  LinkRepo
	runs   RunRepo
	logger *logger.Logger
}

func NewService(cfg *config.Config, creds credentials.Store, links LinkRepo, runs RunRepo, logger *logger.Logger) *Service {
	return &Service{
		cfg:    cfg,
		creds:  creds,
		links:  links,
		runs:   runs,
		logger: logger,
	}
}

// NewPipeline constructs a pipeline for one full sync run. An empty runID
// lets the run record generate its own identifier.
func (s *Service) NewPipeline(runID, sessionID, ebayStore, shopifyStore string) *Pipeline {
	return NewPipeline(PipelineParams{
		RunID:        runID,
		SessionID:    sessionID,
		EbayStore:    ebayStore,
		ShopifyStore: shopifyStore,
		Ebay:         ebay.NewClient(s.cfg, s.creds, ebayStore, s.logger),
		Shopify:      shopify.NewClient(s.cfg, s.creds, shopifyStore, s.logger),
		Creds:        s.creds,
		Links:        s.links,
		Runs:         s.runs,
		Logger:       s.logger,
	})
}

// FetchListings pulls the store's active listings without pushing anywhere.
func (s *Service) FetchListings(ctx context.Context, sessionID, ebayStore string, limit int) ([]models.Listing, error) {
	pipeline := NewPipeline(PipelineParams{
		SessionID: sessionID,
		EbayStore: ebayStore,
		Ebay:      ebay.NewClient(s.cfg, s.creds, ebayStore, s.logger),
		Creds:     s.creds,
		Links:     s.links,
		Runs:      s.runs,
		Logger:    s.logger,
	})
	return pipeline.FetchListings(ctx, limit)
}

// Run executes a full sync run for the given session and stores.
func (s *Service) Run(ctx context.Context, runID, sessionID, ebayStore, shopifyStore string, limit int) (*models.SyncRun, error) {
	return s.NewPipeline(runID, sessionID, ebayStore, shopifyStore).Run(ctx, limit)
}

// GetRun returns a recorded run, or nil when unknown.
func (s *Service) GetRun(ctx context.Context, id string) (*models.SyncRun, error) {
	return s.runs.Get(ctx, id)
}
