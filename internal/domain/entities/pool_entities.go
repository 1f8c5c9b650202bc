package entities

import "time"

// V2PoolSnapshot is a point-in-time read of a constant-product pair.
type V2PoolSnapshot struct {
	ChainID     int64     `json:"chain_id"`
	Address     string    `json:"address"`
	Token0      string    `json:"token0"`
	Token1      string    `json:"token1"`
	Reserve0    string    `json:"reserve0"`
	Reserve1    string    `json:"reserve1"`
	TotalSupply string    `json:"total_supply"`
	ObservedAt  time.Time `json:"observed_at"`
}

// V3PoolSnapshot is a point-in-time read of a concentrated-liquidity pool.
type V3PoolSnapshot struct {
	ChainID      int64     `json:"chain_id"`
	Address      string    `json:"address"`
	Token0       string    `json:"token0"`
	Token1       string    `json:"token1"`
	FeeTier      uint32    `json:"fee_tier"`
	SqrtPriceX96 string    `json:"sqrt_price_x96"`
	Tick         int32     `json:"tick"`
	Liquidity    string    `json:"liquidity"`
	ObservedAt   time.Time `json:"observed_at"`
}
