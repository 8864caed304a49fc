package credentials

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type credentialRecord struct {
	ID        string `gorm:"type:uuid;primary_key"`
	Platform  string `gorm:"uniqueIndex:idx_platform_store_kind;not null"`
	StoreName string `gorm:"uniqueIndex:idx_platform_store_kind;not null"`
	Kind      string `gorm:"uniqueIndex:idx_platform_store_kind;not null"`
	Value     string `gorm:"not null"`
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (credentialRecord) TableName() string {
	return "credentials"
}

// GormStore persists credentials through the shared gorm connection.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

func (s *GormStore) Put(ctx context.Context, platform Platform, storeName string, kind Kind, value string, ttl time.Duration) error {
	var expiresAt *time.Time
	if ttl > 0 {
		t := s.now().Add(ttl)
		expiresAt = &t
	}

	rec := credentialRecord{
		ID:        uuid.New().String(),
		Platform:  string(platform),
		StoreName: storeName,
		Kind:      string(kind),
		Value:     value,
		ExpiresAt: expiresAt,
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "platform"}, {Name: "store_name"}, {Name: "kind"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&rec).Error
}

func (s *GormStore) Get(ctx context.Context, platform Platform, storeName string, kind Kind) (string, bool, error) {
	var rec credentialRecord
	err := s.db.WithContext(ctx).
		Where("platform = ? AND store_name = ? AND kind = ?", string(platform), storeName, string(kind)).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	if rec.ExpiresAt != nil && !s.now().Before(*rec.ExpiresAt) {
		// Expired entries read as absent; clean up opportunistically.
		_ = s.Delete(ctx, platform, storeName, kind)
		return "", false, nil
	}

	return rec.Value, true, nil
}

func (s *GormStore) Delete(ctx context.Context, platform Platform, storeName string, kind Kind) error {
	return s.db.WithContext(ctx).
		Where("platform = ? AND store_name = ? AND kind = ?", string(platform), storeName, string(kind)).
		Delete(&credentialRecord{}).Error
}
