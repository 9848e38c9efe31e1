package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const EnvPrefix = "STOREFRONT"

type Config struct {
	App     AppConfig
	Gateway GatewayConfig
	Cart    CartConfig
	Session SessionConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Gateway.ensureBaseURL(); err != nil {
		return nil, err
	}
	if err := cfg.Cart.ensureTaxRate(); err != nil {
		return nil, err
	}
	if err := cfg.Session.ensureTokenPath(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

type GatewayConfig struct {
	BaseURL string        `envconfig:"STOREFRONT_API_URL" default:"http://localhost:8000/api"`
	Timeout time.Duration `envconfig:"STOREFRONT_GATEWAY_TIMEOUT" default:"20s"`
}

func (g *GatewayConfig) ensureBaseURL() error {
	trimmed := strings.TrimRight(strings.TrimSpace(g.BaseURL), "/")
	if trimmed == "" {
		return fmt.Errorf("gateway base url is required")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("invalid gateway base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("gateway base url must be http or https, got %q", g.BaseURL)
	}
	g.BaseURL = trimmed
	return nil
}

type CartConfig struct {
	DefaultTaxRate string `envconfig:"STOREFRONT_DEFAULT_TAX_RATE" default:"0.10"`

	taxRate decimal.Decimal
}

func (c *CartConfig) ensureTaxRate() error {
	rate, err := decimal.NewFromString(strings.TrimSpace(c.DefaultTaxRate))
	if err != nil {
		return fmt.Errorf("invalid default tax rate %q: %w", c.DefaultTaxRate, err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("default tax rate must be a fraction in [0, 1), got %q", c.DefaultTaxRate)
	}
	c.taxRate = rate
	return nil
}

// TaxRate returns the parsed fallback tax rate applied when the gateway
// does not supply one.
func (c CartConfig) TaxRate() decimal.Decimal {
	return c.taxRate
}

type SessionConfig struct {
	TokenPath string `envconfig:"STOREFRONT_TOKEN_PATH"`
}

func (s *SessionConfig) ensureTokenPath() error {
	if strings.TrimSpace(s.TokenPath) != "" {
		return nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolving token path: %w", err)
	}
	s.TokenPath = filepath.Join(home, ".config", "storefront", "token")
	return nil
}
