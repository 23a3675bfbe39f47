package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/chatterbox/pkg/observability"
)

// ConfigEnv names an explicit config file.
const ConfigEnv = "CHAT_CONFIG"

// DefaultConfigPaths are tried in order when ConfigEnv is unset.
var DefaultConfigPaths = []string{"app.yml", "/etc/config/app.yml"}

// Config holds all application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Auth          AuthConfig          `yaml:"auth"`
	Cache         CacheConfig         `yaml:"cache"`
	Observability ObservabilityConfig `yaml:"observability"`

	// Source is the file the config was read from, empty for env only.
	Source string `yaml:"-"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	BaseDir         string        `yaml:"base_dir"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
}

// Addr is host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds the PostgreSQL pool settings
type DatabaseConfig struct {
	URL         string        `yaml:"url"`
	MaxConns    int           `yaml:"max_conns"`
	MinConns    int           `yaml:"min_conns"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxLifetime time.Duration `yaml:"max_lifetime"`
	MaxIdleTime time.Duration `yaml:"max_idle_time"`
}

// AuthConfig holds the Ed25519 key pair, inline PEM or a path to one.
type AuthConfig struct {
	PrivateKey     string `yaml:"sk"`
	PublicKey      string `yaml:"pk"`
	PrivateKeyFile string `yaml:"sk_file"`
	PublicKeyFile  string `yaml:"pk_file"`
}

// KeyPEMs returns the private and public key PEM. Inline values win over files.
func (a AuthConfig) KeyPEMs() (privatePEM, publicPEM []byte, err error) {
	privatePEM, err = readKey(a.PrivateKey, a.PrivateKeyFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read private key: %w", err)
	}
	publicPEM, err = readKey(a.PublicKey, a.PublicKeyFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read public key: %w", err)
	}
	return privatePEM, publicPEM, nil
}

func readKey(inline, path string) ([]byte, error) {
	if inline != "" {
		return []byte(inline), nil
	}
	return os.ReadFile(path)
}

// CacheConfig holds the membership cache settings
type CacheConfig struct {
	MembershipTTL  time.Duration `yaml:"membership_ttl"`
	MembershipSize int           `yaml:"membership_size"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       string `yaml:"log_level"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

// Level parses LogLevel.
func (o ObservabilityConfig) Level() observability.LogLevel {
	return observability.ParseLogLevel(o.LogLevel)
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            6688,
			BaseDir:         "/tmp/chat_server",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxUploadBytes:  100 << 20,
		},
		Database: DatabaseConfig{
			MaxConns:    20,
			MinConns:    2,
			Timeout:     10 * time.Second,
			MaxLifetime: 30 * time.Minute,
			MaxIdleTime: 5 * time.Minute,
		},
		Cache: CacheConfig{
			MembershipTTL:  30 * time.Second,
			MembershipSize: 10000,
		},
		Observability: ObservabilityConfig{
			LogLevel:       "info",
			MetricsEnabled: true,
		},
	}
}

// LoadConfig reads the config file, if any, applies CHAT_* environment overrides and validates.
//
// The file is CHAT_CONFIG when set, else the first of DefaultConfigPaths that exists.
// Without a file the configuration comes from defaults and the environment alone.
func LoadConfig() (*Config, error) {
	cfg := Default()

	path, err := locateConfigFile()
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func locateConfigFile() (string, error) {
	if path := os.Getenv(ConfigEnv); path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("failed to open config file %s: %w", path, err)
		}
		return path, nil
	}

	for _, path := range DefaultConfigPaths {
		_, err := os.Stat(path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to stat config file %s: %w", path, err)
		}
	}
	return "", nil
}

// loadFile decodes path over the current values. Unknown keys are rejected.
func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.Source = path
	return nil
}

// applyEnv overrides every field that has a CHAT_* variable set.
func (c *Config) applyEnv() {
	c.Server.Host = getEnv("CHAT_HOST", c.Server.Host)
	c.Server.Port = getEnvInt("CHAT_PORT", c.Server.Port)
	c.Server.BaseDir = getEnv("CHAT_BASE_DIR", c.Server.BaseDir)
	c.Server.ReadTimeout = getEnvDuration("CHAT_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("CHAT_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration("CHAT_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("CHAT_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.MaxUploadBytes = getEnvInt64("CHAT_MAX_UPLOAD_BYTES", c.Server.MaxUploadBytes)

	c.Database.URL = getEnv("CHAT_DB_URL", c.Database.URL)
	c.Database.MaxConns = getEnvInt("CHAT_DB_MAX_CONNS", c.Database.MaxConns)
	c.Database.MinConns = getEnvInt("CHAT_DB_MIN_CONNS", c.Database.MinConns)
	c.Database.Timeout = getEnvDuration("CHAT_DB_TIMEOUT", c.Database.Timeout)
	c.Database.MaxLifetime = getEnvDuration("CHAT_DB_MAX_LIFETIME", c.Database.MaxLifetime)
	c.Database.MaxIdleTime = getEnvDuration("CHAT_DB_MAX_IDLE_TIME", c.Database.MaxIdleTime)

	c.Auth.PrivateKey = getEnv("CHAT_AUTH_SK", c.Auth.PrivateKey)
	c.Auth.PublicKey = getEnv("CHAT_AUTH_PK", c.Auth.PublicKey)
	c.Auth.PrivateKeyFile = getEnv("CHAT_AUTH_SK_FILE", c.Auth.PrivateKeyFile)
	c.Auth.PublicKeyFile = getEnv("CHAT_AUTH_PK_FILE", c.Auth.PublicKeyFile)

	c.Cache.MembershipTTL = getEnvDuration("CHAT_MEMBERSHIP_CACHE_TTL", c.Cache.MembershipTTL)
	c.Cache.MembershipSize = getEnvInt("CHAT_MEMBERSHIP_CACHE_SIZE", c.Cache.MembershipSize)


	c.Observability.LogLevel = getEnv("CHAT_LOG_LEVEL", c.Observability.LogLevel)
	c.Observability.MetricsEnabled = getEnvBool("CHAT_METRICS_ENABLED", c.Observability.MetricsEnabled)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.BaseDir == "" {
		return fmt.Errorf("server base dir is required")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("database URL is required")
	}
	if c.Database.MaxConns < 0 || c.Database.MinConns < 0 {
		return fmt.Errorf("database connection limits must not be negative")
	}
	if c.Database.MaxConns > 0 && c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database min conns (%d) exceeds max conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}

	if c.Auth.PrivateKey == "" && c.Auth.PrivateKeyFile == "" {
		return fmt.Errorf("auth private key is required (sk or sk_file)")
	}
	if c.Auth.PublicKey == "" && c.Auth.PublicKeyFile == "" {
		return fmt.Errorf("auth public key is required (pk or pk_file)")
	}

	if c.Cache.MembershipTTL < 0 {
		return fmt.Errorf("membership cache TTL must not be negative")
	}

	switch strings.ToLower(c.Observability.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Observability.LogLevel)
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
