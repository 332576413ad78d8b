package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
	"github.com/sneakshop-lab/sneakshop/internal/cart"
	"github.com/sneakshop-lab/sneakshop/internal/experiment"
)

// Config represents the top-level application config.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Experiment ExperimentConfig `koanf:"experiment"`
	Store      StoreConfig      `koanf:"store"`
	Analytics  AnalyticsConfig  `koanf:"analytics"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port          int    `koanf:"port"`
	Host          string `koanf:"host"`
	MaxBodySizeMB int    `koanf:"max_body_size_mb"`
	Mode          string `koanf:"mode"` // debug | release
}

// ExperimentConfig holds the assignment gate configuration.
type ExperimentConfig struct {
	// DefaultArm is the fail-open arm used when no random source is
	// available at assignment time.
	DefaultArm string `koanf:"default_arm"`
}

// StoreConfig holds the storefront's locale and pricing rules. Money values
// are decimal strings to keep them exact through config parsing.
type StoreConfig struct {
	Currency         string `koanf:"currency"`
	FreeShippingOver string `koanf:"free_shipping_over"`
	ShippingFee      string `koanf:"shipping_fee"`
}

// AnalyticsConfig holds the dispatch configuration.
type AnalyticsConfig struct {
	// RelayEndpoint is where the relay channel posts events. Defaults to
	// this server's own ingestion endpoint.
	RelayEndpoint string `koanf:"relay_endpoint"`
}

// Pricing converts the configured money strings into checkout pricing rules.
func (c StoreConfig) Pricing() (cart.Pricing, error) {
	threshold, err := decimal.NewFromString(c.FreeShippingOver)
	if err != nil {
		return cart.Pricing{}, fmt.Errorf("invalid store.free_shipping_over %q: %w", c.FreeShippingOver, err)
	}
	fee, err := decimal.NewFromString(c.ShippingFee)
	if err != nil {
		return cart.Pricing{}, fmt.Errorf("invalid store.shipping_fee %q: %w", c.ShippingFee, err)
	}
	return cart.Pricing{FreeShippingOver: threshold, ShippingFee: fee}, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.MaxBodySizeMB <= 0 {
		return fmt.Errorf("server.max_body_size_mb must be > 0")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if _, ok := experiment.ParseVariant(c.Experiment.DefaultArm); !ok {
		return fmt.Errorf("invalid experiment.default_arm %q", c.Experiment.DefaultArm)
	}

	if len(c.Store.Currency) != 3 || c.Store.Currency != strings.ToUpper(c.Store.Currency) {
		return fmt.Errorf("invalid store.currency %q (must be a 3-letter ISO code)", c.Store.Currency)
	}
	if _, err := c.Store.Pricing(); err != nil {
		return err
	}

	if strings.TrimSpace(c.Analytics.RelayEndpoint) == "" {
		return fmt.Errorf("analytics.relay_endpoint is required")
	}

	return nil
}

// Load parses config from defaults + optional file + env, then validates it.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":              8080,
		"server.host":              "0.0.0.0",
		"server.max_body_size_mb":  1,
		"server.mode":              "release",
		"experiment.default_arm":   string(experiment.VariantControl),
		"store.currency":           "BRL",
		"store.free_shipping_over": "200",
		"store.shipping_fee":       "15.99",
		"analytics.relay_endpoint": "http://localhost:8080/api/track",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("SNEAKSHOP_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "SNEAKSHOP_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
