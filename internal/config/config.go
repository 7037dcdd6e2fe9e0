package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string         `mapstructure:"environment"`
	LogLevel    string         `mapstructure:"log_level"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Upstream    UpstreamConfig `mapstructure:"upstream"`
	Model       ModelConfig    `mapstructure:"model"`
	Cache       CacheConfig    `mapstructure:"cache"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// UpstreamConfig describes the external data sources the collector talks
// to. BlockchainURL serves collectible and ownership lookups, MarketURL
// serves market trends, sentiment and the collection list, RarityURL
// serves rarity lookups.
type UpstreamConfig struct {
	BlockchainURL     string `mapstructure:"blockchain_url"`
	MarketURL         string `mapstructure:"market_url"`
	RarityURL         string `mapstructure:"rarity_url"`
	APIKey            string `mapstructure:"api_key" json:"-" yaml:"-"`
	Timeout           string `mapstructure:"timeout"`
	RequestsPerSecond int    `mapstructure:"requests_per_second"`
	Burst             int    `mapstructure:"burst"`
	CollectionsTTL    string `mapstructure:"collections_ttl"`
}

type ModelConfig struct {
	Path string `mapstructure:"path"`
}

type CacheConfig struct {
	ValuationTTLSeconds int `mapstructure:"valuation_ttl_seconds"`
	SnapshotTTLSeconds  int `mapstructure:"snapshot_ttl_seconds"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.BindEnv("upstream.api_key", "UPSTREAM_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind UPSTREAM_API_KEY environment variable: %w", err)
	}

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	if config.Model.Path == "" {
		return nil, errors.New("model.path is required: the scorer cannot start without a model artifact")
	}
	if _, err := time.ParseDuration(config.Upstream.Timeout); err != nil {
		return nil, fmt.Errorf("invalid upstream timeout: %w", err)
	}
	if _, err := time.ParseDuration(config.Upstream.CollectionsTTL); err != nil {
		return nil, fmt.Errorf("invalid collections TTL: %w", err)
	}
	if config.Cache.ValuationTTLSeconds <= 0 {
		return nil, fmt.Errorf("cache valuation TTL must be positive, got %d", config.Cache.ValuationTTLSeconds)
	}

	return &config, nil
}

// UpstreamTimeout returns the parsed upstream timeout. Load has already
// validated the duration string.
func (c *Config) UpstreamTimeout() time.Duration {
	d, err := time.ParseDuration(c.Upstream.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// CollectionsTTL returns the parsed memoization TTL for the collection list.
func (c *Config) CollectionsTTL() time.Duration {
	d, err := time.ParseDuration(c.Upstream.CollectionsTTL)
	if err != nil {
		return 10 * time.Minute
	}
	return d
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "nft_advisor")
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("upstream.blockchain_url", "http://localhost:3001")
	viper.SetDefault("upstream.market_url", "http://localhost:3002")
	viper.SetDefault("upstream.rarity_url", "http://localhost:3003")
	viper.SetDefault("upstream.api_key", "")
	viper.SetDefault("upstream.timeout", "10s")
	viper.SetDefault("upstream.requests_per_second", 20)
	viper.SetDefault("upstream.burst", 40)
	viper.SetDefault("upstream.collections_ttl", "10m")

	viper.SetDefault("model.path", "data/models/model_v1.json")

	viper.SetDefault("cache.valuation_ttl_seconds", 3600)
	viper.SetDefault("cache.snapshot_ttl_seconds", 600)
}
