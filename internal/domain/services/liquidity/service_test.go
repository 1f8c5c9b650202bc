package liquidity

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bridgeport-service/bridgeport/internal/domain/errors"
	"github.com/bridgeport-service/bridgeport/internal/infrastructure/adapters/evm"
	"github.com/bridgeport-service/bridgeport/pkg/logger"
)

var (
	pairAddr = "0x00000000000000000000000000000000000000a1"
	poolAddr = "0x00000000000000000000000000000000000000b1"
	token0   = common.HexToAddress("0x0000000000000000000000000000000000000001")
	token1   = common.HexToAddress("0x0000000000000000000000000000000000000002")
)

type fakePoolReader struct {
	pair *evm.V2PairState
	pool *evm.V3PoolState
}

func (r *fakePoolReader) V2Pair(_ context.Context, _ common.Address) (*evm.V2PairState, error) {
	if r.pair == nil {
		return nil, fmt.Errorf("unknown pair")
	}
	return r.pair, nil
}

func (r *fakePoolReader) V3Pool(_ context.Context, _ common.Address) (*evm.V3PoolState, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("unknown pool")
	}
	return r.pool, nil
}

type fakePoolGateway struct {
	reader *fakePoolReader
}

func (g *fakePoolGateway) PoolReaderFor(chainID int64) (PoolReader, error) {
	if chainID != 1 {
		return nil, fmt.Errorf("chain id %d: no connected client", chainID)
	}
	return g.reader, nil
}

func newLiquidityService(reader *fakePoolReader) *Service {
	return NewService(&fakePoolGateway{reader: reader}, logger.NewNop())
}

func TestQuoteV2(t *testing.T) {
	reader := &fakePoolReader{pair: &evm.V2PairState{
		Token0:   token0,
		Token1:   token1,
		Reserve0: big.NewInt(1_000_000),
		Reserve1: big.NewInt(2_000_000),
	}}
	svc := newLiquidityService(reader)

	t.Run("counterpart follows the reserve ratio", func(t *testing.T) {
		quote, err := svc.QuoteV2(context.Background(), &V2QuoteRequest{
			ChainID: 1,
			Pair:    pairAddr,
			Token:   token0.Hex(),
			Amount:  "10",
		})
		require.NoError(t, err)
		assert.Equal(t, "20", quote.CounterpartAmount)
		assert.Equal(t, "0x0000000000000000000000000000000000000002", quote.CounterpartToken)
	})

	t.Run("quoting from the other side inverts the ratio", func(t *testing.T) {
		quote, err := svc.QuoteV2(context.Background(), &V2QuoteRequest{
			ChainID: 1,
			Pair:    pairAddr,
			Token:   token1.Hex(),
			Amount:  "10",
		})
		require.NoError(t, err)
		assert.Equal(t, "5", quote.CounterpartAmount)
	})

	t.Run("token outside the pair", func(t *testing.T) {
		_, err := svc.QuoteV2(context.Background(), &V2QuoteRequest{
			ChainID: 1,
			Pair:    pairAddr,
			Token:   "0x0000000000000000000000000000000000000099",
			Amount:  "10",
		})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		for _, amount := range []string{"0", "-5", "abc", "1.5"} {
			_, err := svc.QuoteV2(context.Background(), &V2QuoteRequest{
				ChainID: 1,
				Pair:    pairAddr,
				Token:   token0.Hex(),
				Amount:  amount,
			})
			assert.ErrorIs(t, err, domainerrors.ErrInvalidInput, "amount %q", amount)
		}
	})

	t.Run("empty reserves", func(t *testing.T) {
		svc := newLiquidityService(&fakePoolReader{pair: &evm.V2PairState{
			Token0:   token0,
			Token1:   token1,
			Reserve0: big.NewInt(0),
			Reserve1: big.NewInt(0),
		}})
		_, err := svc.QuoteV2(context.Background(), &V2QuoteRequest{
			ChainID: 1,
			Pair:    pairAddr,
			Token:   token0.Hex(),
			Amount:  "10",
		})
		assert.ErrorIs(t, err, domainerrors.ErrConflict)
	})
}

func TestQuoteV3(t *testing.T) {
	priceAtTickZero, ok := new(big.Int).SetString("79228162514264337593543950336", 10)
	require.True(t, ok)

	reader := &fakePoolReader{pool: &evm.V3PoolState{
		Token0:       token0,
		Token1:       token1,
		Fee:          500,
		SqrtPriceX96: priceAtTickZero,
		Tick:         0,
		Liquidity:    big.NewInt(1),
	}}
	svc := newLiquidityService(reader)

	t.Run("in-range position holds both tokens", func(t *testing.T) {
		quote, err := svc.QuoteV3(context.Background(), &V3QuoteRequest{
			ChainID:   1,
			Pool:      poolAddr,
			TickLower: -60,
			TickUpper: 60,
			Liquidity: "1000000000000",
		})
		require.NoError(t, err)
		assert.True(t, quote.InRange)
		assert.NotEqual(t, "0", quote.Amount0)
		assert.NotEqual(t, "0", quote.Amount1)
		assert.Equal(t, int32(0), quote.CurrentTick)
	})

	t.Run("range above the price holds only token0", func(t *testing.T) {
		quote, err := svc.QuoteV3(context.Background(), &V3QuoteRequest{
			ChainID:   1,
			Pool:      poolAddr,
			TickLower: 60,
			TickUpper: 120,
			Liquidity: "1000000000000",
		})
		require.NoError(t, err)
		assert.False(t, quote.InRange)
		assert.Equal(t, "0", quote.Amount1)
	})

	t.Run("rejects inverted ranges", func(t *testing.T) {
		_, err := svc.QuoteV3(context.Background(), &V3QuoteRequest{
			ChainID:   1,
			Pool:      poolAddr,
			TickLower: 60,
			TickUpper: -60,
			Liquidity: "1000000000000",
		})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	})

	t.Run("rejects zero liquidity", func(t *testing.T) {
		_, err := svc.QuoteV3(context.Background(), &V3QuoteRequest{
			ChainID:   1,
			Pool:      poolAddr,
			TickLower: -60,
			TickUpper: 60,
			Liquidity: "0",
		})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	})
}
