package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Kafka
	KafkaBrokers string
	KafkaTopic   string

	// API Configuration
	APIPort string
	APIHost string

	// Sessions
	SessionAuthKey string

	// eBay
	EbayClientID     string
	EbayClientSecret string
	EbayRuName       string
	EbaySandbox      bool
	EbayAuthURL      string // optional override, defaults per environment
	EbayTokenURL     string
	EbayAPIURL       string

	// Shopify
	ShopifyClientID     string
	ShopifyClientSecret string
	ShopifyRedirectURI  string
	ShopifyScopes       string
	ShopifyAPIURL       string // optional override for tests

	// Environment
	Env      string
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		DatabaseURL:         getEnv("DATABASE_URL", "sqlite://sellmaster.db"),
		KafkaBrokers:        getEnv("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:          getEnv("KAFKA_TOPIC", "sync-events"),
		APIPort:             getEnv("API_PORT", "8080"),
		APIHost:             getEnv("API_HOST", "0.0.0.0"),
		SessionAuthKey:      getEnv("SESSION_AUTH_KEY", "sellmaster-dev-session-key"),
		EbayClientID:        getEnv("EBAY_CLIENT_ID", ""),
		EbayClientSecret:    getEnv("EBAY_CLIENT_SECRET", ""),
		EbayRuName:          getEnv("EBAY_RUNAME", ""),
		EbaySandbox:         getEnvAsBool("EBAY_SANDBOX", true),
		EbayAuthURL:         getEnv("EBAY_AUTH_URL", ""),
		EbayTokenURL:        getEnv("EBAY_TOKEN_URL", ""),
		EbayAPIURL:          getEnv("EBAY_API_URL", ""),
		ShopifyClientID:     getEnv("SHOPIFY_CLIENT_ID", ""),
		ShopifyClientSecret: getEnv("SHOPIFY_CLIENT_SECRET", ""),
		ShopifyRedirectURI:  getEnv("SHOPIFY_REDIRECT_URI", ""),
		ShopifyScopes:       getEnv("SHOPIFY_SCOPES", "read_products,write_products"),
		ShopifyAPIURL:       getEnv("SHOPIFY_API_URL", ""),
		Env:                 getEnv("ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
