package sync

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sellmaster/internal/models"
)

// LinkRepo maps source listings to the destination products they produced.
type LinkRepo interface {
	Find(ctx context.Context, shopifyStore, ebayItemID string) (*models.ProductLink, error)
	Save(ctx context.Context, link *models.ProductLink) error
}

// RunRepo records sync-run outcomes.
type RunRepo interface {
	Create(ctx context.Context, run *models.SyncRun) error
	Update(ctx context.Context, run *models.SyncRun) error
	Get(ctx context.Context, id string) (*models.SyncRun, error)
}

type GormLinkRepo struct {
	db *gorm.DB
}

func NewGormLinkRepo(db *gorm.DB) *GormLinkRepo {
	return &GormLinkRepo{db: db}
}

func (r *GormLinkRepo) Find(ctx context.Context, shopifyStore, ebayItemID string) (*models.ProductLink, error) {
	var link models.ProductLink
	err := r.db.WithContext(ctx).
		Where("shopify_store = ? AND ebay_item_id = ?", shopifyStore, ebayItemID).
		First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *GormLinkRepo) Save(ctx context.Context, link *models.ProductLink) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "shopify_store"}, {Name: "ebay_item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"shopify_product_id", "updated_at"}),
	}).Create(link).Error
}

type GormRunRepo struct {
	db *gorm.DB
}

func NewGormRunRepo(db *gorm.DB) *GormRunRepo {
	return &GormRunRepo{db: db}
}

func (r *GormRunRepo) Create(ctx context.Context, run *models.SyncRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *GormRunRepo) Update(ctx context.Context, run *models.SyncRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

func (r *GormRunRepo) Get(ctx context.Context, id string) (*models.SyncRun, error) {
	var run models.SyncRun
	err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}
