package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint         string
	AccessKey        string
	SecretKey        string
	Bucket           string
	UseSSL           bool
	PresignExpiryMin int
}

// ShopifyConfig holds Admin GraphQL API settings.
type ShopifyConfig struct {
	Store       string
	Token       string
	APIVersion  string
	PageSize    int
	PageDelayMS int
	MaxRetries  int
	TimeoutSec  int
}

// Endpoint returns the Admin GraphQL URL of the store.
func (c ShopifyConfig) Endpoint() string {
	return "https://" + c.Store + ".myshopify.com/admin/api/" + c.APIVersion + "/graphql.json"
}

// ReconcileConfig holds reconciliation rules.
type ReconcileConfig struct {
	// SalesTimezone is the shop timezone used when grouping by shop dates.
	SalesTimezone      string
	Tolerance          string
	PayoutLookbackDays int
}

// CacheConfig controls the order cache.
type CacheConfig struct {
	Enabled     bool
	Dir         string
	MaxAgeHours int
}

// MaxAge returns the cache expiry as a duration.
func (c CacheConfig) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeHours) * time.Hour
}

// ViewerConfig controls which mismatch dates go into the workbook.
type ViewerConfig struct {
	StartDate     string
	DateRangeDays int
	MaxColumns    int
	Reverse       bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string
	Port      string
	Timezone  string
	LogLevel  string
	Database  DatabaseConfig
	MinIO     MinIOConfig
	Shopify   ShopifyConfig
	Reconcile ReconcileConfig
	Cache     CacheConfig
	Viewer    ViewerConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		Timezone: getEnv("APP_TIMEZONE", "UTC"),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:         getEnv("MINIO_ENDPOINT", ""),
			AccessKey:        getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:        getEnv("MINIO_SECRET_KEY", ""),
			Bucket:           getEnv("MINIO_BUCKET", ""),
			UseSSL:           getEnvBool("MINIO_USE_SSL", false),
			PresignExpiryMin: getEnvInt("MINIO_PRESIGN_EXPIRY_MIN", 15),
		},
		Shopify: ShopifyConfig{
			Store:       getEnv("SHOPIFY_STORE", ""),
			Token:       getEnv("SHOPIFY_TOKEN", ""),
			APIVersion:  getEnv("SHOPIFY_API_VERSION", "2024-10"),
			PageSize:    getEnvInt("SHOPIFY_PAGE_SIZE", 250),
			PageDelayMS: getEnvInt("SHOPIFY_PAGE_DELAY_MS", 100),
			MaxRetries:  getEnvInt("SHOPIFY_MAX_RETRIES", 3),
			TimeoutSec:  getEnvInt("SHOPIFY_TIMEOUT_SEC", 30),
		},
		Reconcile: ReconcileConfig{
			SalesTimezone:      getEnv("SALES_TIMEZONE", "US/Eastern"),
			Tolerance:          getEnv("RECONCILE_TOLERANCE", "0.01"),
			PayoutLookbackDays: getEnvInt("PAYOUT_LOOKBACK_DAYS", 7),
		},
		Cache: CacheConfig{
			Enabled:     getEnvBool("CACHE_ENABLED", true),
			Dir:         getEnv("CACHE_DIR", "cache"),
			MaxAgeHours: getEnvInt("CACHE_MAX_AGE_HOURS", 24),
		},
		Viewer: ViewerConfig{
			StartDate:     getEnv("VIEWER_START_DATE", ""),
			DateRangeDays: getEnvInt("VIEWER_DATE_RANGE_DAYS", 120),
			MaxColumns:    getEnvInt("VIEWER_MAX_COLUMNS", 20),
			Reverse:       getEnvBool("VIEWER_REVERSE", false),
		},
	}
}

// Location resolves the application log timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
