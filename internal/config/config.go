package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sametyasit/cryptobuddy/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Providers    ProvidersConfig    `mapstructure:"providers"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Retry        RetryConfig        `mapstructure:"retry"`
	Connectivity ConnectivityConfig `mapstructure:"connectivity"`
	Archive      ArchiveConfig      `mapstructure:"archive"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// ProvidersConfig carries per-upstream credentials and the listing
// cascade order. An empty key disables the auth header/parameter for that
// provider; it does not disable the provider itself.
type ProvidersConfig struct {
	CoinGeckoAPIKey     string `mapstructure:"coingecko_api_key"`
	CoinMarketCapAPIKey string `mapstructure:"coinmarketcap_api_key"`
	CryptoCompareAPIKey string `mapstructure:"cryptocompare_api_key"`
	CoinCapAPIKey       string `mapstructure:"coincap_api_key"`
	CryptoPanicAPIKey   string `mapstructure:"cryptopanic_api_key"`

	// ListingOrder overrides the default cascade order by provider name.
	ListingOrder []string `mapstructure:"listing_order"`
}

// CacheConfig holds per-capability TTLs.
type CacheConfig struct {
	ListingTTL time.Duration `mapstructure:"listing_ttl"`
	DetailTTL  time.Duration `mapstructure:"detail_ttl"`
	HistoryTTL time.Duration `mapstructure:"history_ttl"`
	NewsTTL    time.Duration `mapstructure:"news_ttl"`
}

// RetryConfig tunes the per-provider retry policies. Backoff stays linear
// in the attempt index; the step is what differs between the primary and
// the lower-priority providers.
type RetryConfig struct {
	PrimaryAttempts   int           `mapstructure:"primary_attempts"`
	SecondaryAttempts int           `mapstructure:"secondary_attempts"`
	BackoffStep       time.Duration `mapstructure:"backoff_step"`
	SecondaryBackoff  time.Duration `mapstructure:"secondary_backoff"`
	TimeoutDelay      time.Duration `mapstructure:"timeout_delay"`
}

type ConnectivityConfig struct {
	ProbeTarget string `mapstructure:"probe_target"`
	Disabled    bool   `mapstructure:"disabled"`
}

// ArchiveConfig configures best-effort listing snapshots.
type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"` // For localfs
	S3      S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Cache: CacheConfig{
			ListingTTL: 60 * time.Second,
			DetailTTL:  120 * time.Second,
			HistoryTTL: 120 * time.Second,
			NewsTTL:    180 * time.Second,
		},
		Retry: RetryConfig{
			PrimaryAttempts:   3,
			SecondaryAttempts: 2,
			BackoffStep:       2 * time.Second,
			SecondaryBackoff:  1 * time.Second,
			TimeoutDelay:      1 * time.Second,
		},
		Connectivity: ConnectivityConfig{
			ProbeTarget: "1.1.1.1:443",
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Type:    "localfs",
			Path:    "data/snapshots",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	for name, ttl := range map[string]time.Duration{
		"listing_ttl": c.Cache.ListingTTL,
		"detail_ttl":  c.Cache.DetailTTL,
		"history_ttl": c.Cache.HistoryTTL,
		"news_ttl":    c.Cache.NewsTTL,
	} {
		if ttl <= 0 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("%s must be positive, got %v", name, ttl))
		}
	}

	if c.Retry.PrimaryAttempts < 1 || c.Retry.SecondaryAttempts < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("retry attempts must be at least 1"))
	}
	if c.Retry.BackoffStep < 0 || c.Retry.SecondaryBackoff < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("backoff durations cannot be negative"))
	}

	switch c.Archive.Type {
	case "", "localfs", "s3":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("archive type must be localfs or s3, got %q", c.Archive.Type))
	}
	if c.Archive.Enabled && c.Archive.Type == "s3" && c.Archive.S3.Bucket == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("archive.s3.bucket is required for s3 archive"))
	}

	return nil
}
