// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// RedisConfig provides settings for the Redis-backed durable key-value store
// and the async task queue.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// GeocodeConfig provides settings for the upstream geocode API.
type GeocodeConfig interface {
	GetGeocodeBaseURL() string
	GetGeocodeReverseURL() string
	GetGeocodeLang() string
	GetGeocodeResultLimit() int
}

// SearchConfig provides settings for the search engine.
type SearchConfig interface {
	GetSearchCacheTTL() time.Duration
	GetSearchCacheMaxEntries() int
	GetSearchHistoryMax() int
	GetSearchMinQueryLength() int
	GetSearchMaxDisplayedResults() int
}

// MapConfig provides settings for the map interaction core.
type MapConfig interface {
	GetNearbyRadiusKm() float64
	GetClusterRadiusPx() float64
	GetMapMaxZoom() int
	GetMapSearchZoom() int
	GetFitBoundsPadding() int
	GetFitBoundsMaxZoom() int
}

// WorkerConfig provides settings for the asynq worker.
type WorkerConfig interface {
	RedisConfig
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                       string
	Locale                    string
	HTTPAddr                  string
	DatabaseURL               string
	RedisURL                  string
	RedisTLSInsecure          bool
	CORSAllowAll              bool
	CORSOrigins               []string
	CORSAllowCreds            bool
	GeocodeBaseURL            string
	GeocodeReverseURL         string
	GeocodeLang               string
	GeocodeResultLimit        int
	SearchCacheTTL            time.Duration
	SearchCacheMaxEntries     int
	SearchHistoryMax          int
	SearchMinQueryLength      int
	SearchMaxDisplayedResults int
	NearbyRadiusKm            float64
	ClusterRadiusPx           float64
	MapMaxZoom                int
	MapSearchZoom             int
	FitBoundsPadding          int
	FitBoundsMaxZoom          int
	AsynqQueueName            string
	AsynqConcurrency          int
}

// =============================================================================
// Interface Implementations
// =============================================================================

func (c *Config) GetDatabaseURL() string      { return c.DatabaseURL }
func (c *Config) GetRedisURL() string         { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool   { return c.RedisTLSInsecure }
func (c *Config) GetHTTPAddr() string         { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool       { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string    { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool     { return c.CORSAllowCreds }
func (c *Config) GetGeocodeBaseURL() string   { return c.GeocodeBaseURL }
func (c *Config) GetGeocodeReverseURL() string { return c.GeocodeReverseURL }
func (c *Config) GetGeocodeLang() string      { return c.GeocodeLang }
func (c *Config) GetGeocodeResultLimit() int  { return c.GeocodeResultLimit }

func (c *Config) GetSearchCacheTTL() time.Duration    { return c.SearchCacheTTL }
func (c *Config) GetSearchCacheMaxEntries() int       { return c.SearchCacheMaxEntries }
func (c *Config) GetSearchHistoryMax() int            { return c.SearchHistoryMax }
func (c *Config) GetSearchMinQueryLength() int        { return c.SearchMinQueryLength }
func (c *Config) GetSearchMaxDisplayedResults() int   { return c.SearchMaxDisplayedResults }

func (c *Config) GetNearbyRadiusKm() float64  { return c.NearbyRadiusKm }
func (c *Config) GetClusterRadiusPx() float64 { return c.ClusterRadiusPx }
func (c *Config) GetMapMaxZoom() int          { return c.MapMaxZoom }
func (c *Config) GetMapSearchZoom() int       { return c.MapSearchZoom }
func (c *Config) GetFitBoundsPadding() int    { return c.FitBoundsPadding }
func (c *Config) GetFitBoundsMaxZoom() int    { return c.FitBoundsMaxZoom }

func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// =============================================================================
// Loading
// =============================================================================

// Load reads configuration from environment variables, applying defaults.
// A .env file is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                       getEnv("APP_ENV", "development"),
		Locale:                    getEnv("APP_LOCALE", "pt-br"),
		HTTPAddr:                  getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:               getEnv("DATABASE_URL", ""),
		RedisURL:                  getEnv("REDIS_URL", ""),
		RedisTLSInsecure:          strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		CORSAllowAll:              corsAllowAll,
		CORSOrigins:               corsOrigins,
		CORSAllowCreds:            strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		GeocodeBaseURL:            getEnv("GEOCODE_BASE_URL", "https://photon.komoot.io/api"),
		GeocodeReverseURL:         getEnv("GEOCODE_REVERSE_URL", "https://photon.komoot.io/reverse"),
		GeocodeLang:               getEnv("GEOCODE_LANG", "pt"),
		GeocodeResultLimit:        mustInt(getEnv("GEOCODE_RESULT_LIMIT", "10")),
		SearchCacheTTL:            mustDuration(getEnv("SEARCH_CACHE_TTL", "24h")),
		SearchCacheMaxEntries:     mustInt(getEnv("SEARCH_CACHE_MAX_ENTRIES", "50")),
		SearchHistoryMax:          mustInt(getEnv("SEARCH_HISTORY_MAX", "5")),
		SearchMinQueryLength:      mustInt(getEnv("SEARCH_MIN_QUERY_LENGTH", "3")),
		SearchMaxDisplayedResults: mustInt(getEnv("SEARCH_MAX_DISPLAYED_RESULTS", "5")),
		NearbyRadiusKm:            mustFloat(getEnv("MAP_NEARBY_RADIUS_KM", "0.05")),
		ClusterRadiusPx:           mustFloat(getEnv("MAP_CLUSTER_RADIUS_PX", "80")),
		MapMaxZoom:                mustInt(getEnv("MAP_MAX_ZOOM", "18")),
		MapSearchZoom:             mustInt(getEnv("MAP_SEARCH_ZOOM", "16")),
		FitBoundsPadding:          mustInt(getEnv("MAP_FIT_BOUNDS_PADDING", "50")),
		FitBoundsMaxZoom:          mustInt(getEnv("MAP_FIT_BOUNDS_MAX_ZOOM", "16")),
		AsynqQueueName:            getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:          mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.SearchMinQueryLength < 1 {
		return fmt.Errorf("SEARCH_MIN_QUERY_LENGTH must be at least 1")
	}
	if c.SearchCacheMaxEntries < 1 {
		return fmt.Errorf("SEARCH_CACHE_MAX_ENTRIES must be at least 1")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		panic("invalid duration value: " + value)
	}
	return d
}

func mustInt(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		panic("invalid integer value: " + value)
	}
	return n
}

func mustFloat(value string) float64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		panic("invalid float value: " + value)
	}
	return f
}
