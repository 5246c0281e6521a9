package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration for the ops listener
	Server struct {
		Port            string
		Env             string
		ShutdownTimeout time.Duration
		Version         string
	}

	// Database configuration
	Database struct {
		URL          string
		Host         string
		Port         string
		User         string
		Password     string
		Name         string
		SSLMode      string
		MaxConns     int
		MaxIdleConns int
		Timeout      time.Duration
		Retries      int
		RetryDelay   time.Duration
	}

	// Object storage configuration
	Storage struct {
		URL            string
		Key            string
		ServiceRoleKey string
		Bucket         string
		Timeout        time.Duration
		MaxRetries     int
		RateLimit      float64
		RateBurst      int
		BreakerErrors  int
		BreakerTimeout time.Duration
	}

	// Logging configuration
	Logging struct {
		Level      string
		Format     string
		File       string
		MaxSizeMB  int
		MaxBackups int
		MaxAgeDays int
	}

	// Cache settings
	Cache struct {
		Enabled     bool
		RedisURL    string
		TTL         time.Duration
		PurgeWindow time.Duration
	}

	// Observability settings
	Observability struct {
		MetricsEnabled bool
		TracingEnabled bool
		ServiceName    string
	}

	// Vault settings; secrets fall back to the environment when disabled
	Vault struct {
		Enabled bool
		Address string
		Token   string
		Mount   string
		Path    string
	}

	// Keys for downstream integrations. Declared so deployments can share one
	// env file; this module does not call these services.
	Integrations struct {
		ApifyAPIKey      string
		OpenAIAPIKey     string
		HeyGenAPIKey     string
		ElevenLabsAPIKey string
		JWTSecretKey     string
	}
}

var (
	instance *Config
	once     sync.Once
)

// New creates a new Config instance with values from environment variables
// Uses singleton pattern to ensure only one instance exists
func New() *Config {
	once.Do(func() {
		// Load .env file if exists
		_ = godotenv.Load()

		instance = Load()
	})

	return instance
}

// Get returns the singleton Config instance
func Get() *Config {
	if instance == nil {
		return New()
	}
	return instance
}

// Load reads a fresh Config from the current environment without touching
// the singleton.
func Load() *Config {
	cfg := &Config{}

	cfg.Server.Port = getEnvString("OPS_PORT", "8090")
	cfg.Server.Env = getEnvString("APP_ENV", "development")
	cfg.Server.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	cfg.Server.Version = getEnvString("APP_VERSION", "dev")

	cfg.Database.URL = getEnvString("DATABASE_URL", "")
	cfg.Database.Host = getEnvString("DB_HOST", "localhost")
	cfg.Database.Port = getEnvString("DB_PORT", "5432")
	cfg.Database.User = getEnvString("DB_USER", "postgres")
	cfg.Database.Password = getEnvString("DB_PASSWORD", "postgres")
	cfg.Database.Name = getEnvString("DB_NAME", "influencers")
	cfg.Database.SSLMode = getEnvString("DB_SSL_MODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 20)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 10)
	cfg.Database.Timeout = getEnvDuration("DB_TIMEOUT", 5*time.Second)
	cfg.Database.Retries = getEnvInt("DB_CONNECT_RETRIES", 5)
	cfg.Database.RetryDelay = getEnvDuration("DB_CONNECT_RETRY_DELAY", 5*time.Second)

	cfg.Storage.URL = strings.TrimRight(getEnvString("SUPABASE_URL", ""), "/")
	cfg.Storage.Key = getEnvString("SUPABASE_KEY", "")
	cfg.Storage.ServiceRoleKey = getEnvString("SUPABASE_SERVICE_ROLE_KEY", "")
	cfg.Storage.Bucket = getEnvString("STORAGE_BUCKET", "influencer-assets")
	cfg.Storage.Timeout = getEnvDuration("STORAGE_TIMEOUT", 30*time.Second)
	cfg.Storage.MaxRetries = getEnvInt("STORAGE_MAX_RETRIES", 3)
	cfg.Storage.RateLimit = getEnvFloat("STORAGE_RATE_LIMIT", 20)
	cfg.Storage.RateBurst = getEnvInt("STORAGE_RATE_BURST", 40)
	cfg.Storage.BreakerErrors = getEnvInt("STORAGE_BREAKER_ERRORS", 5)
	cfg.Storage.BreakerTimeout = getEnvDuration("STORAGE_BREAKER_TIMEOUT", 30*time.Second)

	cfg.Logging.Level = getEnvString("LOG_LEVEL", "info")
	cfg.Logging.Format = getEnvString("LOG_FORMAT", "json")
	cfg.Logging.File = getEnvString("LOG_FILE", "")
	cfg.Logging.MaxSizeMB = getEnvInt("LOG_MAX_SIZE_MB", 100)
	cfg.Logging.MaxBackups = getEnvInt("LOG_MAX_BACKUPS", 7)
	cfg.Logging.MaxAgeDays = getEnvInt("LOG_MAX_AGE_DAYS", 30)

	cfg.Cache.Enabled = getEnvBool("CACHE_ENABLED", true)
	cfg.Cache.RedisURL = getEnvString("REDIS_URL", "")
	cfg.Cache.TTL = getEnvDuration("CACHE_TTL", 5*time.Minute)
	cfg.Cache.PurgeWindow = getEnvDuration("CACHE_PURGE_WINDOW", 10*time.Minute)

	cfg.Observability.MetricsEnabled = getEnvBool("METRICS_ENABLED", true)
	cfg.Observability.TracingEnabled = getEnvBool("TRACING_ENABLED", false)
	cfg.Observability.ServiceName = getEnvString("SERVICE_NAME", "influencerd")

	cfg.Vault.Enabled = getEnvBool("VAULT_ENABLED", false)
	cfg.Vault.Address = getEnvString("VAULT_ADDR", "http://127.0.0.1:8200")
	cfg.Vault.Token = getEnvString("VAULT_TOKEN", "")
	cfg.Vault.Mount = getEnvString("VAULT_MOUNT", "secret")
	cfg.Vault.Path = getEnvString("VAULT_PATH", "influencer-platform")

	cfg.Integrations.ApifyAPIKey = getEnvString("APIFY_API_KEY", "")
	cfg.Integrations.OpenAIAPIKey = getEnvString("OPENAI_API_KEY", "")
	cfg.Integrations.HeyGenAPIKey = getEnvString("HEYGEN_API_KEY", "")
	cfg.Integrations.ElevenLabsAPIKey = getEnvString("ELEVEN_LABS_API_KEY", "")
	cfg.Integrations.JWTSecretKey = getEnvString("JWT_SECRET_KEY", "default-secret-key")

	return cfg
}

// DSN returns the Postgres connection URL. DATABASE_URL wins over the DB_*
// parts. The URL form is accepted by both gorm and the migrate driver.
func (c *Config) DSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Database.User, c.Database.Password),
		Host:   c.Database.Host + ":" + c.Database.Port,
		Path:   "/" + c.Database.Name,
	}
	q := u.Query()
	q.Set("sslmode", c.Database.SSLMode)
	if c.Database.Timeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(c.Database.Timeout.Seconds())))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// StorageKey returns the key used against the storage API, preferring the
// service role key.
func (c *Config) StorageKey() string {
	if c.Storage.ServiceRoleKey != "" {
		return c.Storage.ServiceRoleKey
	}
	return c.Storage.Key
}

// IsDevelopment reports whether the app runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
