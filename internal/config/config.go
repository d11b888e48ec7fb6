// Package config loads pricr settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is looked up in the XDG config directory.
	FileName = "pricr.yaml"
	// EnvPrefix prefixes every environment override, e.g. PRICR_DEFAULTS_CURRENCY.
	EnvPrefix = "PRICR"

	DefaultCurrency = "usd"
)

type Defaults struct {
	Currency      string   `yaml:"currency"`
	ProviderOrder []string `yaml:"provider_order" split_words:"true"`
}

type CoinMarketCap struct {
	APIKey string `yaml:"api_key" envconfig:"COINMARKETCAP_API_KEY"`
}

type Server struct {
	Port           string        `yaml:"port" envconfig:"PORT"`
	RequestTimeout time.Duration `yaml:"request_timeout" split_words:"true"`
}

type HTTP struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent" split_words:"true"`
}

type Cache struct {
	Dir      string `yaml:"dir"`
	Disabled bool   `yaml:"disabled"`
}

type Logging struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" split_words:"true"`
	MaxBackups int    `yaml:"max_backups" split_words:"true"`
}

type Config struct {
	Defaults      Defaults            `yaml:"defaults"`
	CoinMarketCap CoinMarketCap       `yaml:"coinmarketcap"`
	Watchlists    map[string][]string `yaml:"watchlists" ignored:"true"`
	Server        Server              `yaml:"server"`
	HTTP          HTTP                `yaml:"http"`
	Cache         Cache               `yaml:"cache"`
	Logging       Logging             `yaml:"logging"`
}

func Default() Config {
	return Config{
		Defaults:   Defaults{Currency: DefaultCurrency},
		Watchlists: map[string][]string{},
		Server:     Server{Port: "8080", RequestTimeout: 15 * time.Second},
		HTTP:       HTTP{Timeout: 10 * time.Second, UserAgent: "pricr/1.0"},
		Logging:    Logging{MaxSizeMB: 10, MaxBackups: 3},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/pricr.yaml, else ~/.config/pricr.yaml.
// It is empty when neither location can be determined.
func DefaultPath() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, FileName)
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".config", FileName)
}

// Load reads the config file and applies environment overrides. With an
// empty path the default location is used and a missing file yields
// defaults; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if cfg, err = Parse(b); err != nil {
				return cfg, fmt.Errorf("failed to parse config file '%s': %w", path, err)
			}
		case explicit || !errors.Is(err, os.ErrNotExist):
			return cfg, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("environment overrides: %w", err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default.
func Parse(b []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Default(), err
	}
	if cfg.Watchlists == nil {
		cfg.Watchlists = map[string][]string{}
	}
	return cfg, nil
}

// Watchlist finds a watchlist by case-insensitive name.
func (c Config) Watchlist(name string) ([]string, bool) {
	for k, v := range c.Watchlists {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}
