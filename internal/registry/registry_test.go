package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pricr/internal/provider"
	"pricr/internal/provider/cache"
)

func defaultProviders(t *testing.T) *Registry {
	t.Helper()
	return Default(Options{Store: cache.New(cache.Disabled())})
}

func TestDefault_RegistrationOrderAndCapabilities(t *testing.T) {
	t.Parallel()
	reg := defaultProviders(t)

	ids := reg.IDs([]int{0, 1, 2, 3})

	require.Equal(t, []string{"coingecko", "cmc", "yahoo", "stooq"}, ids)
	caps := provider.Capabilities(reg.Providers()[2])
	require.True(t, caps.Has(provider.CapHistoryWindow|provider.CapSearch))
	require.False(t, provider.Capabilities(reg.Providers()[0]).Has(provider.CapSearch))
}

func TestResolve_ConfiguredOrderThenRemaining(t *testing.T) {
	t.Parallel()
	// Arrange:
	reg := defaultProviders(t)

	// Act:
	idx, err := Resolve(reg.Providers(), nil, []string{" Yahoo ", "coingecko", "yahoo", ""})

	// Assert:
	require.NoError(t, err)
	require.Equal(t, []string{"yahoo", "coingecko", "cmc", "stooq"}, reg.IDs(idx))
}

func TestResolve_NoConfigurationUsesRegistrationOrder(t *testing.T) {
	t.Parallel()
	reg := defaultProviders(t)

	idx, err := Resolve(reg.Providers(), nil, nil)

	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2, 3}, idx)
}

func TestResolve_ExplicitPinsSingleProvider(t *testing.T) {
	t.Parallel()
	reg := defaultProviders(t)
	explicit := " stooq "

	idx, err := Resolve(reg.Providers(), &explicit, []string{"yahoo"})

	require.NoError(t, err)
	require.Equal(t, []string{"stooq"}, reg.IDs(idx))
}

func TestResolve_Errors(t *testing.T) {
	t.Parallel()
	reg := defaultProviders(t)
	empty, typo := "  ", "stoq"

	cases := []struct {
		name       string
		explicit   *string
		configured []string
		providers  []provider.Provider
		code       provider.Code
		contains   string
	}{
		{"empty explicit", &empty, nil, reg.Providers(), provider.CodeInvalidInput, "provider cannot be empty"},
		{"unknown explicit", &typo, nil, reg.Providers(), provider.CodeUnknownProvider, "unknown provider 'stoq'"},
		{"unknown configured", nil, []string{"yahoo", "not-a-provider"}, reg.Providers(), provider.CodeUnknownConfiguredProvider, "[defaults].provider_order"},
		{"no providers", nil, nil, nil, provider.CodeNoProviders, "no providers available"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Resolve(tc.providers, tc.explicit, tc.configured)
			require.True(t, provider.HasCode(err, tc.code), "got %v", err)
			require.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()
	reg := defaultProviders(t)

	i, ok := reg.Lookup("cmc")
	require.True(t, ok)
	require.Equal(t, "CoinMarketCap", reg.Providers()[i].Name())

	_, ok = reg.Lookup("CMC")
	require.False(t, ok)
}
