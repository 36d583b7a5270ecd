package config

import (
	"fmt"
	"time"

	"github.com/Veraticus/spice-report/internal/common"
	"github.com/spf13/viper"
)

// Default locations and endpoints.
const (
	DefaultLedgerPath       = "data/operations.xlsx"
	DefaultReportDir        = "data"
	DefaultCategoryReport   = "data/report.json"
	DefaultSettingsPath     = "user_settings.json"
	DefaultArchivePath      = "$HOME/.local/share/spice/reports.db"
	DefaultCBRURL           = "https://www.cbr-xml-daily.ru/daily_json.js"
	DefaultAlphaVantageURL  = "https://www.alphavantage.co/query"
	DefaultRequestsPerMin   = 5
	DefaultMarketTimeout    = 15 * time.Second
	DefaultQuoteCacheTTL    = 15 * time.Minute
	DefaultSavingsLimit     = 50
	alphaVantageKeyEnv      = "ALPHA_VANTAGE_API_KEY"
	defaultWindowMode       = "90d"
	defaultWindowField      = "operation"
	defaultReferenceMode    = "latest"
	defaultMarketRetryCount = 3
)

// Config is the resolved application configuration.
type Config struct {
	Ledger   LedgerConfig
	Reports  ReportsConfig
	Window   WindowConfig
	Market   MarketConfig
	Archive  ArchiveConfig
	Settings string
	Savings  SavingsConfig
}

// LedgerConfig locates the transaction ledger.
type LedgerConfig struct {
	Path string
}

// ReportsConfig controls where JSON reports are written.
type ReportsConfig struct {
	Dir            string
	CategoryReport string
}

// WindowConfig selects the category window variant.
type WindowConfig struct {
	Mode      string
	Field     string
	Reference string
}

// SavingsConfig holds round-up defaults.
type SavingsConfig struct {
	Limit int64
}

// MarketConfig configures the currency and stock providers.
type MarketConfig struct {
	CBRURL            string
	AlphaVantageURL   string
	AlphaVantageKey   string
	Timeout           time.Duration
	CacheTTL          time.Duration
	RequestsPerMinute int
	RetryAttempts     int
}

// ArchiveConfig configures the SQLite report archive.
type ArchiveConfig struct {
	Path    string
	Enabled bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("ledger.path", DefaultLedgerPath)
	v.SetDefault("reports.dir", DefaultReportDir)
	v.SetDefault("reports.category_report", DefaultCategoryReport)
	v.SetDefault("window.mode", defaultWindowMode)
	v.SetDefault("window.field", defaultWindowField)
	v.SetDefault("window.reference", defaultReferenceMode)
	v.SetDefault("savings.limit", DefaultSavingsLimit)
	v.SetDefault("settings.path", DefaultSettingsPath)
	v.SetDefault("market.cbr_url", DefaultCBRURL)
	v.SetDefault("market.alphavantage_url", DefaultAlphaVantageURL)
	v.SetDefault("market.requests_per_minute", DefaultRequestsPerMin)
	v.SetDefault("market.timeout", DefaultMarketTimeout)
	v.SetDefault("market.cache_ttl", DefaultQuoteCacheTTL)
	v.SetDefault("market.retry_attempts", defaultMarketRetryCount)
	v.SetDefault("archive.path", DefaultArchivePath)
	v.SetDefault("archive.enabled", false)

	// The Alpha Vantage key traditionally lives in .env without the SPICE_ prefix.
	_ = v.BindEnv("market.alphavantage_key", alphaVantageKeyEnv)
}

// Load resolves and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Ledger: LedgerConfig{Path: ExpandPath(v.GetString("ledger.path"))},
		Reports: ReportsConfig{
			Dir:            ExpandPath(v.GetString("reports.dir")),
			CategoryReport: ExpandPath(v.GetString("reports.category_report")),
		},
		Window: WindowConfig{
			Mode:      v.GetString("window.mode"),
			Field:     v.GetString("window.field"),
			Reference: v.GetString("window.reference"),
		},
		Savings:  SavingsConfig{Limit: v.GetInt64("savings.limit")},
		Settings: ExpandPath(v.GetString("settings.path")),
		Market: MarketConfig{
			CBRURL:            v.GetString("market.cbr_url"),
			AlphaVantageURL:   v.GetString("market.alphavantage_url"),
			AlphaVantageKey:   v.GetString("market.alphavantage_key"),
			RequestsPerMinute: v.GetInt("market.requests_per_minute"),
			Timeout:           v.GetDuration("market.timeout"),
			CacheTTL:          v.GetDuration("market.cache_ttl"),
			RetryAttempts:     v.GetInt("market.retry_attempts"),
		},
		Archive: ArchiveConfig{
			Path:    ExpandPath(v.GetString("archive.path")),
			Enabled: v.GetBool("archive.enabled"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the reports cannot work with.
func (c *Config) Validate() error {
	if c.Ledger.Path == "" {
		return fmt.Errorf("%w: ledger.path", common.ErrMissingConfig)
	}
	if c.Savings.Limit <= 0 {
		return fmt.Errorf("%w: savings.limit must be positive, got %d", common.ErrInvalidConfig, c.Savings.Limit)
	}
	if c.Market.RequestsPerMinute <= 0 {
		return fmt.Errorf("%w: market.requests_per_minute must be positive", common.ErrInvalidConfig)
	}
	if c.Market.Timeout <= 0 {
		return fmt.Errorf("%w: market.timeout must be positive", common.ErrInvalidConfig)
	}
	if c.Market.RetryAttempts < 0 {
		return fmt.Errorf("%w: market.retry_attempts cannot be negative", common.ErrInvalidConfig)
	}
	if c.Archive.Enabled && c.Archive.Path == "" {
		return fmt.Errorf("%w: archive.path", common.ErrMissingConfig)
	}
	return nil
}
