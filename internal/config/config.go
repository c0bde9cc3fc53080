package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	RPC      RPCConfig      `mapstructure:"rpc"`
	Explorer ExplorerConfig `mapstructure:"explorer"`
	Chains   ChainsConfig   `mapstructure:"chains"`
	Checker  CheckerConfig  `mapstructure:"checker"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// RPCConfig holds JSON-RPC transport settings.
type RPCConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// ExplorerConfig holds block-explorer settings.
type ExplorerConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ChainsConfig tells where chain descriptors and token lists come from.
type ChainsConfig struct {
	File      string   `mapstructure:"file"`
	URL       string   `mapstructure:"url"`
	Include   []string `mapstructure:"include"`
	TokenDirs []string `mapstructure:"token_dirs"`
}

// CheckerConfig holds settings related to the RPC checking process.
type CheckerConfig struct {
	CheckTimeout time.Duration `mapstructure:"check_timeout"`
	MaxWorkers   int           `mapstructure:"max_workers"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

// CacheConfig holds settings for the caching layer.
type CacheConfig struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

// StorageConfig holds settings of the optional transaction sink.
type StorageConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	// a missing .env is fine, the environment may come from elsewhere
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("app.name", "wallet-aggregator")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("rpc.timeout", "10s")
	v.SetDefault("explorer.url", "https://api.etherscan.io/v2/api")
	v.SetDefault("explorer.api_key", "")
	v.SetDefault("explorer.timeout", "15s")
	v.SetDefault("chains.file", "config/chains.json")
	v.SetDefault("chains.url", "")
	v.SetDefault("chains.include", []string{})
	v.SetDefault("chains.token_dirs", []string{"config"})
	v.SetDefault("checker.check_timeout", "5s")
	v.SetDefault("checker.max_workers", 20)
	v.SetDefault("checker.cache_ttl", "5m")
	v.SetDefault("cache.default_expiration", "5m")
	v.SetDefault("cache.cleanup_interval", "10m")
	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.dsn", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		fmt.Printf("Warning: Config file not found in %s or '.', using defaults/env vars\n", configPath)
	}

	v.SetEnvPrefix("WALLET_AGGREGATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("explorer.api_key", "WALLET_AGGREGATOR_EXPLORER_API_KEY", "ETHERSCAN_API_KEY")
	_ = v.BindEnv("storage.dsn", "WALLET_AGGREGATOR_STORAGE_DSN", "DATABASE_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func (c CheckerConfig) GetTimeout() time.Duration {
	return c.CheckTimeout
}

func (c CheckerConfig) GetCacheTTL() time.Duration {
	return c.CacheTTL
}

func (c CacheConfig) GetDefaultExpiration() time.Duration {
	return c.DefaultExpiration
}

func (c CacheConfig) GetCleanupInterval() time.Duration {
	return c.CleanupInterval
}
