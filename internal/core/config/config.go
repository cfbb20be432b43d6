package config

import (
	"fmt"
	"time"

	redisclient "github.com/orbitwallet/linkdispatch/internal/infra/redis"
	"github.com/orbitwallet/linkdispatch/internal/infra/storage/postgres"
)

// Duration wraps time.Duration so YAML values can use the "500ms" /
// "1h" forms.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Redis    redisclient.Config `yaml:"redis"`
	Database postgres.Config    `yaml:"database"`
	Logging  LoggingConfig      `yaml:"logging"`
	Registry RegistryConfig     `yaml:"registry"`
	Dispatch DispatchConfig     `yaml:"dispatch"`
	Wallets  []WalletConfig     `yaml:"wallets"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// RegistryConfig holds payment-name registry settings. An empty
// base_url disables name resolution.
type RegistryConfig struct {
	BaseURL  string   `yaml:"base_url"`
	Timeout  Duration `yaml:"timeout"`
	CacheTTL Duration `yaml:"cache_ttl"`
}

// DispatchConfig tunes the dispatch pipeline.
type DispatchConfig struct {
	AlertDelay       Duration `yaml:"alert_delay"`
	ConfirmDelay     Duration `yaml:"confirm_delay"`
	MaxRedirectDepth int      `yaml:"max_redirect_depth"`
	AppName          string   `yaml:"app_name"`
	BuyCryptoChains  []string `yaml:"buy_crypto_chains"`
	RetentionPeriod  Duration `yaml:"retention_period"` // 0 = infinite
	EventsChannel    string   `yaml:"events_channel"`
	DeliveryTimeout  Duration `yaml:"delivery_timeout"`
}

// WalletConfig describes one wallet of the built-in demo engine, used
// by the scan command when no real engine is attached.
type WalletConfig struct {
	ID           string            `yaml:"id"`
	Name         string            `yaml:"name"`
	PluginID     string            `yaml:"plugin_id"`
	CurrencyCode string            `yaml:"currency_code"`
	Address      string            `yaml:"address"`
	Tokens       []string          `yaml:"tokens"`
	Balances     map[string]string `yaml:"balances"`
	Selected     bool              `yaml:"selected"`
}
