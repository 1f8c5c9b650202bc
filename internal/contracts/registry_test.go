package contracts

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChains() []ChainContracts {
	return []ChainContracts{
		{
			Name:         "Ethereum",
			ChainID:      1,
			Domain:       DomainEthereum,
			USDC:         common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
			FastTransfer: true,
		},
		{
			Name:    "Base",
			ChainID: 8453,
			Domain:  DomainBase,
			USDC:    common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"),
		},
	}
}

func TestNewRegistry(t *testing.T) {
	t.Run("builds both indexes", func(t *testing.T) {
		r, err := NewRegistry(testChains())
		require.NoError(t, err)

		byChain, err := r.ByChainID(8453)
		require.NoError(t, err)
		assert.Equal(t, DomainBase, byChain.Domain)

		byDomain, err := r.ByDomain(DomainEthereum)
		require.NoError(t, err)
		assert.Equal(t, int64(1), byDomain.ChainID)
		assert.True(t, byDomain.FastTransfer)
	})

	t.Run("rejects missing chain id", func(t *testing.T) {
		_, err := NewRegistry([]ChainContracts{{Name: "broken"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing chain id")
	})

	t.Run("rejects duplicate chain id", func(t *testing.T) {
		chains := testChains()
		chains[1].ChainID = chains[0].ChainID
		_, err := NewRegistry(chains)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate chain id")
	})

	t.Run("rejects duplicate domain", func(t *testing.T) {
		chains := testChains()
		chains[1].Domain = chains[0].Domain
		_, err := NewRegistry(chains)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate domain")
	})
}

func TestRegistryLookups(t *testing.T) {
	r, err := NewRegistry(testChains())
	require.NoError(t, err)

	t.Run("unknown chain id", func(t *testing.T) {
		_, err := r.ByChainID(42161)
		assert.Error(t, err)
	})

	t.Run("unknown domain", func(t *testing.T) {
		_, err := r.ByDomain(DomainPolygon)
		assert.Error(t, err)
	})

	t.Run("supports registered routes only", func(t *testing.T) {
		assert.True(t, r.Supports(1, 8453))
		assert.True(t, r.Supports(8453, 1))
		assert.False(t, r.Supports(1, 42161))
		assert.False(t, r.Supports(42161, 8453))
	})

	t.Run("chain ids cover every table", func(t *testing.T) {
		assert.ElementsMatch(t, []int64{1, 8453}, r.ChainIDs())
	})
}
