package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STOREFRONT_API_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Gateway.BaseURL != "http://localhost:8000/api" {
		t.Fatalf("unexpected base url %q", cfg.Gateway.BaseURL)
	}
	if cfg.Gateway.Timeout != 20*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.Gateway.Timeout)
	}
	if got := cfg.Cart.TaxRate().String(); got != "0.1" {
		t.Fatalf("unexpected default tax rate %s", got)
	}
	if cfg.Session.TokenPath == "" {
		t.Fatal("expected a derived token path")
	}
}

func TestLoad_TrimsTrailingSlash(t *testing.T) {
	t.Setenv("STOREFRONT_API_URL", "https://shop.example.com/api/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Gateway.BaseURL != "https://shop.example.com/api" {
		t.Fatalf("expected trailing slash to be trimmed, got %q", cfg.Gateway.BaseURL)
	}
}

func TestLoad_RejectsBadScheme(t *testing.T) {
	t.Setenv("STOREFRONT_API_URL", "ftp://shop.example.com/api")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-http scheme")
	}
}

func TestLoad_RejectsBadTaxRate(t *testing.T) {
	t.Setenv("STOREFRONT_DEFAULT_TAX_RATE", "1.5")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for tax rate >= 1")
	}

	t.Setenv("STOREFRONT_DEFAULT_TAX_RATE", "banana")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unparseable tax rate")
	}
}

func TestLoad_ExplicitTokenPath(t *testing.T) {
	t.Setenv("STOREFRONT_TOKEN_PATH", "/tmp/storefront-test-token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Session.TokenPath != "/tmp/storefront-test-token" {
		t.Fatalf("unexpected token path %q", cfg.Session.TokenPath)
	}
}
