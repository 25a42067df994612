package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Audit      AuditConfig      `yaml:"audit" mapstructure:"audit"`
	Places     PlacesConfig     `yaml:"places" mapstructure:"places"`
	CompanyData CompanyDataConfig `yaml:"company_data" mapstructure:"company_data"`
	Firecrawl  FirecrawlConfig  `yaml:"firecrawl" mapstructure:"firecrawl"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Resilience ResilienceConfig `yaml:"resilience" mapstructure:"resilience"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// AuditConfig configures the audit-row persistence backend.
type AuditConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "postgres" or "sqlite"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// PlacesConfig holds Google Places API settings.
type PlacesConfig struct {
	APIKey    string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// CompanyDataConfig holds the company-data enrichment API settings.
type CompanyDataConfig struct {
	APIKey    string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// FirecrawlConfig holds Firecrawl API settings, used by the web-tech adapter
// to fetch raw HTML for tracker-fingerprint detection.
type FirecrawlConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// SalesforceConfig holds Salesforce JWT auth settings for the CRM writer.
type SalesforceConfig struct {
	ClientID string  `yaml:"client_id" mapstructure:"client_id"`
	Username string  `yaml:"username" mapstructure:"username"`
	KeyPath  string  `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string  `yaml:"login_url" mapstructure:"login_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ResilienceConfig holds the shared retry/circuit-breaker defaults applied
// to every outbound adapter (Places, CompanyData, WebTech, Salesforce).
type ResilienceConfig struct {
	MaxAttempts          int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMillis  int     `yaml:"initial_backoff_millis" mapstructure:"initial_backoff_millis"`
	MaxBackoffMillis      int     `yaml:"max_backoff_millis" mapstructure:"max_backoff_millis"`
	JitterFraction        float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
	FailureThreshold      int     `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs      int     `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
	MonitoringWindowSecs  int     `yaml:"monitoring_window_secs" mapstructure:"monitoring_window_secs"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port        int    `yaml:"port" mapstructure:"port"`
	IngressKey  string `yaml:"ingress_key" mapstructure:"ingress_key"`
	MaxInFlight int    `yaml:"max_in_flight" mapstructure:"max_in_flight"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks required configuration fields based on run mode.
// Supported modes: "enrich" (one-shot CLI) and "serve" (webhook server).
func (c *Config) Validate(mode string) error {
	var errs []string

	if c.Audit.DatabaseURL == "" {
		errs = append(errs, "audit.database_url is required")
	}
	if c.Places.APIKey == "" {
		errs = append(errs, "places.api_key is required")
	}
	if c.Firecrawl.Key == "" {
		errs = append(errs, "firecrawl.key is required")
	}
	if c.Salesforce.ClientID == "" {
		errs = append(errs, "salesforce.client_id is required")
	}

	switch mode {
	case "enrich":
		// No additional requirements beyond the common set above.
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.IngressKey == "" {
			errs = append(errs, "server.ingress_key is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Resilience.FailureThreshold < 1 {
		errs = append(errs, "resilience.failure_threshold must be >= 1")
	}
	if c.Resilience.MaxAttempts < 1 {
		errs = append(errs, "resilience.max_attempts must be >= 1")
	}

	if len(errs) > 0 {
		return eris.New(fmt.Sprintf("config: validation failed: %s", strings.Join(errs, "; ")))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FITENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("audit.driver", "postgres")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 4900)
	v.SetDefault("server.max_in_flight", 20)
	v.SetDefault("places.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v2")
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("salesforce.rate_limit", 10.0)
	v.SetDefault("places.rate_limit", 10.0)
	v.SetDefault("company_data.rate_limit", 10.0)
	v.SetDefault("resilience.max_attempts", 3)
	v.SetDefault("resilience.initial_backoff_millis", 1000)
	v.SetDefault("resilience.max_backoff_millis", 10000)
	v.SetDefault("resilience.jitter_fraction", 0.25)
	v.SetDefault("resilience.failure_threshold", 5)
	v.SetDefault("resilience.reset_timeout_secs", 60)
	v.SetDefault("resilience.monitoring_window_secs", 60)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
