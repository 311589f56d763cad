package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Env       string          `mapstructure:"env"`
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Routing   RoutingConfig   `mapstructure:"routing"`
	Landmarks LandmarksConfig `mapstructure:"landmarks"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type StorageConfig struct {
	Backend      string `mapstructure:"backend"`
	Path         string `mapstructure:"path"`
	DSN          string `mapstructure:"dsn"`
	RedisAddr    string `mapstructure:"redis_addr"`
	LandmarksKey string `mapstructure:"landmarks_key"`
	HomesKey     string `mapstructure:"homes_key"`
	PersistHomes bool   `mapstructure:"persist_homes"`
}

type RoutingConfig struct {
	Provider       string `mapstructure:"provider"`
	ORSAPIKey      string `mapstructure:"ors_api_key"`
	ORSBaseURL     string `mapstructure:"ors_base_url"`
	ORSCountry     string `mapstructure:"ors_country"`
	MaxConcurrency int    `mapstructure:"max_concurrency"`
	CachePath      string `mapstructure:"cache_path"`
}

type LandmarksConfig struct {
	DefaultName string `mapstructure:"default_name"`
}

const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"

	ProviderORS  = "ors"
	ProviderMock = "mock"
)

// IsDevelopment reports whether programming errors should fail loudly.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads configuration from an optional config file and HOWFAR_*
// environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("env", "production")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("server.port", 8080)
	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.path", "data/state")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.landmarks_key", "key-locations")
	v.SetDefault("storage.homes_key", "how-far-is-it:homes")
	v.SetDefault("storage.persist_homes", true)
	v.SetDefault("routing.provider", ProviderORS)
	v.SetDefault("routing.ors_api_key", "")
	v.SetDefault("routing.ors_base_url", "https://api.openrouteservice.org")
	v.SetDefault("routing.ors_country", "")
	v.SetDefault("routing.max_concurrency", 8)
	v.SetDefault("routing.cache_path", "")
	v.SetDefault("landmarks.default_name", "")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if path := os.Getenv("HOWFAR_CONFIG"); path != "" {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// Environment variables: HOWFAR_STORAGE_BACKEND -> storage.backend
	v.SetEnvPrefix("HOWFAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}

	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			errs = append(errs, fmt.Sprintf("storage.path is required for the %s backend", c.Storage.Backend))
		}
	case BackendPostgres:
		if strings.TrimSpace(c.Storage.DSN) == "" {
			errs = append(errs, "storage.dsn is required for the postgres backend")
		}
	case BackendRedis:
		if strings.TrimSpace(c.Storage.RedisAddr) == "" {
			errs = append(errs, "storage.redis_addr is required for the redis backend")
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Sprintf("storage.backend %q is not supported", c.Storage.Backend))
	}

	if strings.TrimSpace(c.Storage.LandmarksKey) == "" {
		errs = append(errs, "storage.landmarks_key is required")
	}
	if c.Storage.PersistHomes && strings.TrimSpace(c.Storage.HomesKey) == "" {
		errs = append(errs, "storage.homes_key is required when storage.persist_homes is set")
	}
	if c.Storage.LandmarksKey != "" && c.Storage.LandmarksKey == c.Storage.HomesKey {
		errs = append(errs, "storage.landmarks_key and storage.homes_key must differ")
	}

	switch c.Routing.Provider {
	case ProviderORS:
		if strings.TrimSpace(c.Routing.ORSAPIKey) == "" {
			errs = append(errs, "routing.ors_api_key is required for the ors provider")
		}
		if !validCountry(c.Routing.ORSCountry) {
			errs = append(errs, fmt.Sprintf("routing.ors_country %q must be an ISO 3166 alpha-2 or alpha-3 code", c.Routing.ORSCountry))
		}
	case ProviderMock:
	default:
		errs = append(errs, fmt.Sprintf("routing.provider %q is not supported", c.Routing.Provider))
	}

	if c.Routing.MaxConcurrency < 1 {
		errs = append(errs, fmt.Sprintf("routing.max_concurrency must be positive, got %d", c.Routing.MaxConcurrency))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// validCountry accepts "" (worldwide) or a two or three letter code.
func validCountry(code string) bool {
	if code == "" {
		return true
	}
	if len(code) != 2 && len(code) != 3 {
		return false
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}
