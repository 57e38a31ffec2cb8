package cmd

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/w3link/internal/contract"
	"github.com/Mohsinsiddi/w3link/internal/network"
	"github.com/Mohsinsiddi/w3link/internal/provider"
	"github.com/Mohsinsiddi/w3link/internal/wallet"
)

func TestToWei(t *testing.T) {
	cases := map[string]string{
		"1":                    "1000000000000000000",
		"0.001":                "1000000000000000",
		"0":                    "0",
		"0.000000000000000001": "1",
		"12.5":                 "12500000000000000000",
	}
	for in, want := range cases {
		got, err := toWei(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got.String(), in)
	}
}

func TestToWeiRejects(t *testing.T) {
	for _, in := range []string{"", "abc", "-1", "0.0000000000000000001"} {
		_, err := toWei(in)
		assert.Error(t, err, in)
	}
}

func TestFromWei(t *testing.T) {
	assert.Equal(t, "0.0015", fromWei(big.NewInt(1_500_000_000_000_000)))
	assert.Equal(t, "0", fromWei(nil))
}

func TestLookupChain(t *testing.T) {
	c, err := lookupChain("31")
	require.NoError(t, err)
	assert.Equal(t, "RSK Testnet", c.DisplayName)

	c, err = lookupChain("rsk")
	require.NoError(t, err)
	assert.Equal(t, int64(30), c.ChainID)

	_, err = lookupChain("1")
	assert.ErrorContains(t, err, "not supported")
	_, err = lookupChain("ethereum")
	assert.ErrorContains(t, err, "unknown network")
}

func TestWalletTypeLabel(t *testing.T) {
	assert.Equal(t, "read-write", walletTypeLabel(wallet.TypeSigning))
	assert.Equal(t, "watch-only", walletTypeLabel(wallet.TypeWatchOnly))
}

func TestErrLineHints(t *testing.T) {
	line := errLine(fmt.Errorf("%w: chain 1", network.ErrUnsupportedChain))
	assert.Contains(t, line, "unsupported network: chain 1")
	assert.Contains(t, line, "w3link networks")

	line = errLine(fmt.Errorf("%w: %s", contract.ErrMissingContractInstance, "ETH-lending"))
	assert.Contains(t, line, "w3link contracts")

	line = errLine(fmt.Errorf("%w: USD-lending (%w)", contract.ErrMissingContractInstance, network.ErrNotConnected))
	assert.Contains(t, line, "w3link connect")

	line = errLine(fmt.Errorf("%w: %w", network.ErrProviderAcquisition, provider.ErrCancelled))
	assert.Contains(t, line, "Cancelled.")

	line = errLine(errors.New("boom"))
	assert.Contains(t, line, "boom")
	assert.NotContains(t, line, "→")
}

func TestProviderLabelsCoverEveryKind(t *testing.T) {
	for _, k := range []provider.Kind{provider.KindInjected, provider.KindPairing} {
		assert.NotEmpty(t, providerLabels[k][0], k)
	}
}
