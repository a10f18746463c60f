// Package config loads and validates the cookbook backend configuration using Viper.
//
// Configuration is layered: built-in defaults < YAML config file < environment
// variables. Environment variables use the CBK_ prefix (e.g., CBK_DATABASE_HOST
// overrides database.host in the YAML). This layering allows the same binary to
// run with a config.yaml in local development and with pure environment variables
// in containerized deployments.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Uploads   UploadsConfig   `mapstructure:"uploads"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds service identity metadata returned by the landing route.
type AppConfig struct {
	Title   string `mapstructure:"title"`
	Version string `mapstructure:"version"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	BaseURL      string        `mapstructure:"base_url"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORS         CORSConfig    `mapstructure:"cors"`
}

// CORSConfig holds cross-origin settings for the browser clients
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode"`
	MaxConnections     int    `mapstructure:"max_connections"`
	MinIdleConnections int    `mapstructure:"min_idle_connections"`
}

// DSN builds the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode)
}

// StorageConfig holds blob storage backend configuration
type StorageConfig struct {
	DefaultBackend string             `mapstructure:"default_backend"`
	GCS            GCSStorageConfig   `mapstructure:"gcs"`
	S3             S3StorageConfig    `mapstructure:"s3"`
	Local          LocalStorageConfig `mapstructure:"local"`
}

// GCSStorageConfig holds Google Cloud Storage configuration
type GCSStorageConfig struct {
	Bucket string `mapstructure:"bucket"`
	// AuthMethod: "default" (Application Default Credentials) or "service_account"
	AuthMethod      string `mapstructure:"auth_method"`
	CredentialsFile string `mapstructure:"credentials_file"`
	CredentialsJSON string `mapstructure:"credentials_json"`
	// Endpoint overrides the API endpoint for emulators
	Endpoint string `mapstructure:"endpoint"`
}

// S3StorageConfig holds S3-compatible storage configuration
type S3StorageConfig struct {
	// Endpoint is an S3-compatible endpoint URL (MinIO, DigitalOcean Spaces, ...)
	Endpoint string `mapstructure:"endpoint"`
	Region   string `mapstructure:"region"`
	Bucket   string `mapstructure:"bucket"`
	// AuthMethod: "default" (AWS credential chain) or "static"
	AuthMethod      string `mapstructure:"auth_method"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// LocalStorageConfig holds local filesystem storage configuration
type LocalStorageConfig struct {
	BasePath string `mapstructure:"base_path"`
}

// AuthConfig holds token signing and identity provider configuration
type AuthConfig struct {
	// TokenSecret is the shared symmetric secret signing both credential kinds.
	// Process-wide, process-lifetime; injected here rather than read from a global.
	TokenSecret string `mapstructure:"token_secret"`
	// SessionTTL bounds the lifetime of public session tokens
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	Google     GoogleConfig  `mapstructure:"google"`
}

// GoogleConfig holds the Google identity provider settings
type GoogleConfig struct {
	IssuerURL    string `mapstructure:"issuer_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// UploadsConfig holds image upload limits
type UploadsConfig struct {
	// MaxImageMB caps uploads before the blob store is ever invoked
	MaxImageMB int `mapstructure:"max_image_mb"`
}

// MaxImageBytes returns the upload ceiling in bytes.
func (u *UploadsConfig) MaxImageBytes() int64 {
	return int64(u.MaxImageMB) * 1024 * 1024
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds metrics configuration
type TelemetryConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// MetricsConfig holds Prometheus metrics configuration
type MetricsConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	PrometheusPort int  `mapstructure:"prometheus_port"`
}

// bindEnvVars explicitly binds environment variables to config keys.
// This is necessary because AutomaticEnv() doesn't work well with nested
// structs during Unmarshal. viper.BindEnv only errors when called with zero
// keys; every key here is a non-empty hardcoded string.
func bindEnvVars(v *viper.Viper) error {
	keys := []string{
		"app.title",
		"app.version",

		"server.host",
		"server.port",
		"server.base_url",
		"server.read_timeout",
		"server.write_timeout",
		"server.cors.allowed_origins",

		"database.host",
		"database.port",
		"database.name",
		"database.user",
		"database.password",
		"database.ssl_mode",
		"database.max_connections",
		"database.min_idle_connections",

		"storage.default_backend",
		"storage.gcs.bucket",
		"storage.gcs.auth_method",
		"storage.gcs.credentials_file",
		"storage.gcs.credentials_json",
		"storage.gcs.endpoint",
		"storage.s3.endpoint",
		"storage.s3.region",
		"storage.s3.bucket",
		"storage.s3.auth_method",
		"storage.s3.access_key_id",
		"storage.s3.secret_access_key",
		"storage.local.base_path",

		"auth.token_secret",
		"auth.session_ttl",
		"auth.google.issuer_url",
		"auth.google.client_id",
		"auth.google.client_secret",

		"uploads.max_image_mb",

		"logging.level",
		"logging.format",

		"telemetry.metrics.enabled",
		"telemetry.metrics.prometheus_port",
	}
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env var %q: %w", key, err)
		}
	}
	return nil
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/cookbook")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults and environment variables
	}

	v.SetEnvPrefix("CBK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Expand environment variables in sensitive fields
	cfg.Database.Password = expandEnv(cfg.Database.Password)
	cfg.Auth.TokenSecret = expandEnv(cfg.Auth.TokenSecret)
	cfg.Auth.Google.ClientSecret = expandEnv(cfg.Auth.Google.ClientSecret)
	cfg.Storage.S3.SecretAccessKey = expandEnv(cfg.Storage.S3.SecretAccessKey)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.title", "Cookbook API")
	v.SetDefault("app.version", "1.0.0")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.cors.allowed_origins", []string{"*"})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "cookbook")
	v.SetDefault("database.user", "cookbook")
	v.SetDefault("database.ssl_mode", "require")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_idle_connections", 5)

	v.SetDefault("storage.default_backend", "local")
	v.SetDefault("storage.local.base_path", "./storage")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.auth_method", "default")
	v.SetDefault("storage.gcs.auth_method", "default")

	// Session tokens live for ten days, matching the public client's
	// remember-me window.
	v.SetDefault("auth.session_ttl", "240h")
	v.SetDefault("auth.google.issuer_url", "https://accounts.google.com")

	v.SetDefault("uploads.max_image_mb", 5)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("telemetry.metrics.enabled", false)
	v.SetDefault("telemetry.metrics.prometheus_port", 9090)
}

// expandEnv expands ${VAR} references so secrets can be injected indirectly
// (e.g. database.password: ${DB_PASSWORD} in a committed YAML).
func expandEnv(value string) string {
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		return os.Getenv(strings.TrimSuffix(strings.TrimPrefix(value, "${"), "}"))
	}
	return value
}

// Validate checks the configuration for fatal misconfiguration. The token
// secret is required: without it neither credential kind can be signed or
// verified, and a silently generated secret would invalidate every issued
// static token on restart.
func (c *Config) Validate() error {
	if c.Auth.TokenSecret == "" {
		return fmt.Errorf("auth.token_secret is required (set CBK_AUTH_TOKEN_SECRET)")
	}
	if len(c.Auth.TokenSecret) < 32 {
		return fmt.Errorf("auth.token_secret must be at least 32 characters")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be positive")
	}
	if c.Uploads.MaxImageMB <= 0 {
		return fmt.Errorf("uploads.max_image_mb must be positive")
	}
	switch c.Storage.DefaultBackend {
	case "local":
		if c.Storage.Local.BasePath == "" {
			return fmt.Errorf("storage.local.base_path is required for the local backend")
		}
	case "gcs":
		if c.Storage.GCS.Bucket == "" {
			return fmt.Errorf("storage.gcs.bucket is required for the gcs backend")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown storage.default_backend %q", c.Storage.DefaultBackend)
	}
	return nil
}
