package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/policy"
)

// EnvPrefix prefixes environment overrides, e.g. YTMANIFEST_SERVER_PORT
const EnvPrefix = "YTMANIFEST"

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Extractor ExtractorConfig
	Settings  policy.Settings
	Manifest  ManifestConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Queue     QueueConfig
	Database  DatabaseConfig
	Tracing   TracingConfig
	Metrics   MetricsConfig
	RateLimit RateLimitConfig
	Webhooks  WebhookConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// ExtractorConfig holds extraction engine configuration
type ExtractorConfig struct {
	Path          string
	Timeout       time.Duration
	ExtraArgs     []string
	Cookies       string
	NoPlaylist    bool
	ExtractorArgs []string
	CacheTTL      time.Duration
}

// ManifestConfig selects where rendered manifests are kept
type ManifestConfig struct {
	Store           string // file, redis, s3
	Dir             string
	BaseURL         string
	TTL             time.Duration
	DisplayLanguage string
}

// Manifest stores
const (
	ManifestStoreFile  = "file"
	ManifestStoreRedis = "redis"
	ManifestStoreS3    = "s3"
)

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	UseSSL          bool
	Prefix          string
	PresignExpiry   time.Duration
}

// QueueConfig holds message queue configuration
type QueueConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Vhost    string
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled      bool
	ServiceName  string
	Endpoint     string
	SamplerParam float64
}

// MetricsConfig holds metrics server configuration
type MetricsConfig struct {
	Enabled bool
	Port    int
}

// RateLimitConfig holds API rate limiting configuration
type RateLimitConfig struct {
	Enabled bool
	RPS     int
	Burst   int
	Shared  bool
	Window  time.Duration
	Limit   int64
}

// WebhookConfig holds outbound notification configuration
type WebhookConfig struct {
	URLs    []string
	Secret  string
	Timeout time.Duration
	Retries int
	Backoff time.Duration
}

// Load reads configuration from file and environment variables. An empty
// path loads defaults and environment overrides only.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// LoadSettings reads only the settings section
func LoadSettings(configPath string) (policy.Settings, error) {
	cfg, err := Load(configPath)
	if err != nil {
		return policy.Settings{}, err
	}
	return cfg.Settings, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.readTimeout", "30s")
	v.SetDefault("server.writeTimeout", "60s")
	v.SetDefault("server.shutdownTimeout", "10s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	// Extractor defaults
	v.SetDefault("extractor.path", "yt-dlp")
	v.SetDefault("extractor.timeout", "45s")
	v.SetDefault("extractor.noPlaylist", true)
	v.SetDefault("extractor.cacheTTL", "5m")

	// Settings defaults
	defaults := policy.DefaultSettings()
	v.SetDefault("settings.captions", defaults.Captions)
	v.SetDefault("settings.fpsLimit", defaults.FpsLimit)
	v.SetDefault("settings.excludeCodecs", []string{})
	v.SetDefault("settings.fpsHint", defaults.FpsHint)
	v.SetDefault("settings.preferredHeight", 1080)
	v.SetDefault("settings.inputStream", defaults.InputStream)
	v.SetDefault("settings.manifestType", defaults.ManifestType)

	// Manifest defaults
	v.SetDefault("manifest.store", ManifestStoreFile)
	v.SetDefault("manifest.dir", "/tmp/ytmanifest")
	v.SetDefault("manifest.baseURL", "http://localhost:8080/api/v1/manifests")
	v.SetDefault("manifest.ttl", "6h")
	v.SetDefault("manifest.displayLanguage", "en")

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "ytmanifest")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxConns", 10)
	v.SetDefault("database.minConns", 2)

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Storage defaults
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.accessKeyID", "minioadmin")
	v.SetDefault("storage.secretAccessKey", "minioadmin")
	v.SetDefault("storage.bucketName", "manifests")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.useSSL", false)
	v.SetDefault("storage.prefix", "manifests")
	v.SetDefault("storage.presignExpiry", "6h")

	// Queue defaults
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.host", "localhost")
	v.SetDefault("queue.port", 5672)
	v.SetDefault("queue.user", "guest")
	v.SetDefault("queue.password", "guest")
	v.SetDefault("queue.vhost", "/")

	// Tracing defaults
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.serviceName", "ytmanifest")
	v.SetDefault("tracing.endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("tracing.samplerParam", 1.0)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	// Rate limit defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.rps", 5)
	v.SetDefault("rateLimit.burst", 10)
	v.SetDefault("rateLimit.shared", false)
	v.SetDefault("rateLimit.window", "1m")
	v.SetDefault("rateLimit.limit", 120)

	// Webhook defaults
	v.SetDefault("webhooks.urls", []string{})
	v.SetDefault("webhooks.timeout", "30s")
	v.SetDefault("webhooks.retries", 3)
	v.SetDefault("webhooks.backoff", "1s")
}
