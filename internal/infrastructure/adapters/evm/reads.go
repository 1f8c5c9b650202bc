package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bridgeport-service/bridgeport/internal/contracts"
)

// V2PairCount returns the number of pairs registered with the V2 factory.
func (c *ChainClient) V2PairCount(ctx context.Context) (*big.Int, error) {
	out, err := c.call(ctx, c.chain.V2Factory, contracts.V2Factory, "allPairsLength")
	if err != nil {
		return nil, fmt.Errorf("read pair count: %w", err)
	}
	return out[0].(*big.Int), nil
}

// V2PairAt returns the pair address at a factory index.
func (c *ChainClient) V2PairAt(ctx context.Context, index *big.Int) (common.Address, error) {
	out, err := c.call(ctx, c.chain.V2Factory, contracts.V2Factory, "allPairs", index)
	if err != nil {
		return common.Address{}, fmt.Errorf("read pair at %s: %w", index, err)
	}
	return out[0].(common.Address), nil
}

// V2PairState holds one constant-product pair's reads.
type V2PairState struct {
	Token0      common.Address
	Token1      common.Address
	Reserve0    *big.Int
	Reserve1    *big.Int
	TotalSupply *big.Int
}

// V2Pair reads a pair's tokens, reserves and LP supply.
func (c *ChainClient) V2Pair(ctx context.Context, pair common.Address) (*V2PairState, error) {
	state := &V2PairState{}

	out, err := c.call(ctx, pair, contracts.V2Pair, "token0")
	if err != nil {
		return nil, fmt.Errorf("read token0: %w", err)
	}
	state.Token0 = out[0].(common.Address)

	out, err = c.call(ctx, pair, contracts.V2Pair, "token1")
	if err != nil {
		return nil, fmt.Errorf("read token1: %w", err)
	}
	state.Token1 = out[0].(common.Address)

	out, err = c.call(ctx, pair, contracts.V2Pair, "getReserves")
	if err != nil {
		return nil, fmt.Errorf("read reserves: %w", err)
	}
	state.Reserve0 = out[0].(*big.Int)
	state.Reserve1 = out[1].(*big.Int)

	out, err = c.call(ctx, pair, contracts.V2Pair, "totalSupply")
	if err != nil {
		return nil, fmt.Errorf("read total supply: %w", err)
	}
	state.TotalSupply = out[0].(*big.Int)

	return state, nil
}

// V3PoolFor looks up the pool for a token pair and fee tier. Returns the
// zero address when no pool exists.
func (c *ChainClient) V3PoolFor(ctx context.Context, tokenA, tokenB common.Address, fee uint32) (common.Address, error) {
	out, err := c.call(ctx, c.chain.V3Factory, contracts.V3Factory, "getPool", tokenA, tokenB, big.NewInt(int64(fee)))
	if err != nil {
		return common.Address{}, fmt.Errorf("read pool for fee %d: %w", fee, err)
	}
	return out[0].(common.Address), nil
}

// V3PoolState holds one concentrated-liquidity pool's reads.
type V3PoolState struct {
	Token0       common.Address
	Token1       common.Address
	Fee          uint32
	SqrtPriceX96 *big.Int
	Tick         int32
	Liquidity    *big.Int
}

// V3Pool reads a pool's slot0, liquidity, fee and tokens.
func (c *ChainClient) V3Pool(ctx context.Context, pool common.Address) (*V3PoolState, error) {
	state := &V3PoolState{}

	out, err := c.call(ctx, pool, contracts.V3Pool, "slot0")
	if err != nil {
		return nil, fmt.Errorf("read slot0: %w", err)
	}
	state.SqrtPriceX96 = out[0].(*big.Int)
	state.Tick = int32(out[1].(*big.Int).Int64())

	out, err = c.call(ctx, pool, contracts.V3Pool, "liquidity")
	if err != nil {
		return nil, fmt.Errorf("read liquidity: %w", err)
	}
	state.Liquidity = out[0].(*big.Int)

	out, err = c.call(ctx, pool, contracts.V3Pool, "fee")
	if err != nil {
		return nil, fmt.Errorf("read fee: %w", err)
	}
	state.Fee = uint32(out[0].(*big.Int).Int64())

	out, err = c.call(ctx, pool, contracts.V3Pool, "token0")
	if err != nil {
		return nil, fmt.Errorf("read token0: %w", err)
	}
	state.Token0 = out[0].(common.Address)

	out, err = c.call(ctx, pool, contracts.V3Pool, "token1")
	if err != nil {
		return nil, fmt.Errorf("read token1: %w", err)
	}
	state.Token1 = out[0].(common.Address)

	return state, nil
}
