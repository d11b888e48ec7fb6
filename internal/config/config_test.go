package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParse_EmptyUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Parse(nil)

	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Empty(t, cfg.Defaults.ProviderOrder)
	require.Empty(t, cfg.CoinMarketCap.APIKey)
}

func TestParse_AllSections(t *testing.T) {
	t.Parallel()
	// Arrange:
	raw := []byte(`
defaults:
  currency: eur
  provider_order: [yahoo, coingecko, stooq]
coinmarketcap:
  api_key: abc123
watchlists:
  Metals: ["GC=F", "SI=F"]
server:
  port: "9090"
  request_timeout: 30s
http:
  timeout: 4s
cache:
  disabled: true
logging:
  level: debug
  file: /tmp/pricr.log
`)

	// Act:
	cfg, err := Parse(raw)

	// Assert:
	require.NoError(t, err)
	require.Equal(t, "eur", cfg.Defaults.Currency)
	require.Equal(t, []string{"yahoo", "coingecko", "stooq"}, cfg.Defaults.ProviderOrder)
	require.Equal(t, "abc123", cfg.CoinMarketCap.APIKey)
	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	require.Equal(t, 4*time.Second, cfg.HTTP.Timeout)
	require.Equal(t, "pricr/1.0", cfg.HTTP.UserAgent)
	require.True(t, cfg.Cache.Disabled)
	require.Equal(t, "debug", cfg.Logging.Level)

	metals, ok := cfg.Watchlist("metals")
	require.True(t, ok)
	require.Equal(t, []string{"GC=F", "SI=F"}, metals)
	_, ok = cfg.Watchlist("unknown")
	require.False(t, ok)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("defaults: [not, a, map"))

	require.Error(t, err)
}

func TestLoad_MissingDefaultFileGivesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")

	require.NoError(t, err)
	require.Equal(t, DefaultCurrency, cfg.Defaults.Currency)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	t.Parallel()
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	_, err := Load(missing)

	require.ErrorContains(t, err, "failed to read config file")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_ParseErrorNamesFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [1"), 0o600))

	_, err := Load(path)

	require.ErrorContains(t, err, "failed to parse config file '"+path+"'")
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	// Arrange:
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("defaults:\n  currency: gbp\ncoinmarketcap:\n  api_key: from-file\n"), 0o600))
	t.Setenv("PRICR_DEFAULTS_CURRENCY", "jpy")
	t.Setenv("PRICR_DEFAULTS_PROVIDER_ORDER", "stooq,yahoo")
	t.Setenv("COINMARKETCAP_API_KEY", "from-env")
	t.Setenv("PRICR_HTTP_TIMEOUT", "2s")

	// Act:
	cfg, err := Load("")

	// Assert:
	require.NoError(t, err)
	require.Equal(t, "jpy", cfg.Defaults.Currency)
	require.Equal(t, []string{"stooq", "yahoo"}, cfg.Defaults.ProviderOrder)
	require.Equal(t, "from-env", cfg.CoinMarketCap.APIKey)
	require.Equal(t, 2*time.Second, cfg.HTTP.Timeout)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	require.Equal(t, filepath.Join("/xdg", FileName), DefaultPath())

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/alice")
	require.Equal(t, filepath.Join("/home/alice", ".config", FileName), DefaultPath())
}
