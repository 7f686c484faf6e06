package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Site     SiteConfig     `yaml:"site"`
	Surface  SurfaceConfig  `yaml:"surface"`
	Store    StoreConfig    `yaml:"store"`
	Cache    CacheConfig    `yaml:"cache"`
	Schedule ScheduleConfig `yaml:"schedule"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
	CORS         CORSConfig      `yaml:"cors"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// CORSConfig lists origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// SiteConfig fixes the analysed location.
type SiteConfig struct {
	Latitude       float64 `yaml:"latitude"`
	Longitude      float64 `yaml:"longitude"`
	UTCOffsetHours float64 `yaml:"utcOffsetHours"`
	Scale          float64 `yaml:"scale"`
}

// UTCOffset returns the site offset as a duration.
func (s SiteConfig) UTCOffset() time.Duration {
	return time.Duration(s.UTCOffsetHours * float64(time.Hour))
}

// SurfaceConfig locates the .npy surface model. Bucket selects object storage
// over the local Path.
type SurfaceConfig struct {
	Path      string `yaml:"path"`
	Bucket    string `yaml:"bucket"`
	ObjectKey string `yaml:"objectKey"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Region    string `yaml:"region"`
}

// StoreConfig selects and configures the record store.
type StoreConfig struct {
	Driver           string        `yaml:"driver"`
	ConnectionString string        `yaml:"connectionString"`
	Database         string        `yaml:"database"`
	Collection       string        `yaml:"collection"`
	DSN              string        `yaml:"dsn"`
	Table            string        `yaml:"table"`
	ConnectTimeout   time.Duration `yaml:"connectTimeout"`
}

// CacheConfig controls the rendered image cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Addr    string        `yaml:"addr"`
	Prefix  string        `yaml:"prefix"`
	TTL     time.Duration `yaml:"ttl"`
}

// ScheduleConfig controls periodic analyses.
type ScheduleConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Cron         string        `yaml:"cron"`
	DaylightOnly bool          `yaml:"daylightOnly"`
	RunTimeout   time.Duration `yaml:"runTimeout"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString("HTTP_ADDRESS", &cfg.HTTP.Address)
	setBool("HTTP_RATE_LIMIT_ENABLED", &cfg.HTTP.RateLimit.Enabled)
	setInt("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	setInt("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)
	if v := os.Getenv("HTTP_CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.CORS.AllowedOrigins = splitList(v)
	}

	setFloat("SITE_LATITUDE", &cfg.Site.Latitude)
	setFloat("SITE_LONGITUDE", &cfg.Site.Longitude)
	setFloat("SITE_UTC_OFFSET_HOURS", &cfg.Site.UTCOffsetHours)
	setFloat("SITE_SCALE", &cfg.Site.Scale)

	setString("SURFACE_PATH", &cfg.Surface.Path)
	setString("SURFACE_BUCKET", &cfg.Surface.Bucket)
	setString("SURFACE_OBJECT_KEY", &cfg.Surface.ObjectKey)
	setString("SURFACE_ENDPOINT", &cfg.Surface.Endpoint)
	setString("SURFACE_ACCESS_KEY", &cfg.Surface.AccessKey)
	setString("SURFACE_SECRET_KEY", &cfg.Surface.SecretKey)
	setString("SURFACE_REGION", &cfg.Surface.Region)

	setString("STORE_DRIVER", &cfg.Store.Driver)
	setString("CONNECTION_STRING", &cfg.Store.ConnectionString)
	setString("DB_NAME", &cfg.Store.Database)
	setString("COLLECTION_NAME", &cfg.Store.Collection)
	setString("POSTGRES_DSN", &cfg.Store.DSN)
	setString("POSTGRES_TABLE", &cfg.Store.Table)
	setDuration("STORE_CONNECT_TIMEOUT", &cfg.Store.ConnectTimeout)

	setBool("CACHE_ENABLED", &cfg.Cache.Enabled)
	setString("CACHE_ADDR", &cfg.Cache.Addr)
	setString("CACHE_PREFIX", &cfg.Cache.Prefix)
	setDuration("CACHE_TTL", &cfg.Cache.TTL)

	setBool("SCHEDULE_ENABLED", &cfg.Schedule.Enabled)
	setString("SCHEDULE_CRON", &cfg.Schedule.Cron)
	setBool("SCHEDULE_DAYLIGHT_ONLY", &cfg.Schedule.DaylightOnly)
	setDuration("SCHEDULE_RUN_TIMEOUT", &cfg.Schedule.RunTimeout)
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func setInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address: ":4000",
			// shadow casting over a full surface model can take a while
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 2 * time.Minute,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
		},
		Site: SiteConfig{
			Latitude:       29.73463,
			Longitude:      -95.30052,
			UTCOffsetHours: -6,
			Scale:          1,
		},
		Surface: SurfaceConfig{
			Path: "data/dsm_local_array.npy",
		},
		Store: StoreConfig{
			Driver:           DriverMongo,
			ConnectionString: "mongodb://localhost:27017",
			Database:         "shadow_analysis",
			Collection:       "shadow_records",
			Table:            "shadow_records",
			ConnectTimeout:   10 * time.Second,
		},
		Cache: CacheConfig{
			Prefix: "shadowcast",
			TTL:    24 * time.Hour,
		},
		Schedule: ScheduleConfig{
			Cron:         "*/15 * * * *",
			DaylightOnly: true,
			RunTimeout:   2 * time.Minute,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}

	if math.Abs(c.Site.Latitude) > 90 {
		return errors.New("site.latitude must be within [-90, 90]")
	}
	if math.Abs(c.Site.Longitude) > 180 {
		return errors.New("site.longitude must be within [-180, 180]")
	}
	if math.Abs(c.Site.UTCOffsetHours) > 14 {
		return errors.New("site.utcOffsetHours must be within [-14, 14]")
	}
	if c.Site.Scale <= 0 {
		return errors.New("site.scale must be positive")
	}

	if strings.TrimSpace(c.Surface.Bucket) != "" {
		if strings.TrimSpace(c.Surface.ObjectKey) == "" {
			return errors.New("surface.objectKey cannot be empty when surface.bucket is set")
		}
		if strings.TrimSpace(c.Surface.Endpoint) == "" {
			return errors.New("surface.endpoint cannot be empty when surface.bucket is set")
		}
	} else if strings.TrimSpace(c.Surface.Path) == "" {
		return errors.New("surface.path cannot be empty")
	}

	switch c.Store.Driver {
	case DriverMongo:
		if strings.TrimSpace(c.Store.ConnectionString) == "" {
			return errors.New("store.connectionString cannot be empty for the mongo driver")
		}
		if c.Store.Database == "" || c.Store.Collection == "" {
			return errors.New("store.database and store.collection cannot be empty for the mongo driver")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.Store.DSN) == "" {
			return errors.New("store.dsn cannot be empty for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("store.driver %q is not one of mongo, postgres, memory", c.Store.Driver)
	}
	if c.Store.ConnectTimeout < 0 {
		return errors.New("store.connectTimeout cannot be negative")
	}

	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Addr) == "" {
		return errors.New("cache.addr cannot be empty when the image cache is enabled")
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl cannot be negative")
	}

	if c.Schedule.Enabled {
		if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
			return fmt.Errorf("schedule.cron is invalid: %w", err)
		}
	}
	return nil
}
