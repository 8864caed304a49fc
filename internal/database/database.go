package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

func New(databaseURL string) (*Database, error) {
	var db *gorm.DB
	var err error

	if strings.HasPrefix(databaseURL, "sqlite://") {
		// SQLite for development
		dbPath := strings.TrimPrefix(databaseURL, "sqlite://")
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	} else {
		// PostgreSQL for production
		db, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Create tables manually with raw SQL
	createTablesSQL := `
	CREATE TABLE IF NOT EXISTS credentials (
		id TEXT PRIMARY KEY,
		platform TEXT NOT NULL,
		store_name TEXT NOT NULL,
		kind TEXT NOT NULL,
		value TEXT NOT NULL,
		expires_at TIMESTAMP,
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		UNIQUE (platform, store_name, kind)
	);

	CREATE TABLE IF NOT EXISTS product_links (
		id TEXT PRIMARY KEY,
		shopify_store TEXT NOT NULL,
		ebay_item_id TEXT NOT NULL,
		shopify_product_id BIGINT NOT NULL,
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		UNIQUE (shopify_store, ebay_item_id)
	);

	CREATE TABLE IF NOT EXISTS sync_runs (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		ebay_store TEXT NOT NULL,
		shopify_store TEXT,
		status TEXT DEFAULT 'RUNNING',
		fetched INTEGER DEFAULT 0,
		pushed INTEGER DEFAULT 0,
		skipped INTEGER DEFAULT 0,
		errors INTEGER DEFAULT 0,
		error_message TEXT,
		started_at TIMESTAMP,
		completed_at TIMESTAMP
	);
	`

	err = db.Exec(createTablesSQL).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
