package liquidity

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// Tick bounds of the concentrated-liquidity price grid.
const (
	MinTick int32 = -887272
	MaxTick int32 = 887272
)

var (
	q96        = uint256.MustFromHex("0x1000000000000000000000000")
	uint160Max = uint256.MustFromHex("0xffffffffffffffffffffffffffffffffffffffff")
	uint256Max = new(uint256.Int).SubUint64(new(uint256.Int), 1)
	oneShift32 = new(uint256.Int).Lsh(uint256.NewInt(1), 32)

	ratioSeedOdd  = uint256.MustFromHex("0xfffcb933bd6fad37aa2d162d1a594001")
	ratioSeedEven = uint256.MustFromHex("0x100000000000000000000000000000000")

	// Per-bit multipliers of the sqrt ratio, applied for each set bit of
	// |tick| starting at bit 1.
	ratioMultipliers = [19]*uint256.Int{
		uint256.MustFromHex("0xfff97272373d413259a46990580e213a"),
		uint256.MustFromHex("0xfff2e50f5f656932ef12357cf3c7fdcc"),
		uint256.MustFromHex("0xffe5caca7e10e4e61c3624eaa0941cd0"),
		uint256.MustFromHex("0xffcb9843d60f6159c9db58835c926644"),
		uint256.MustFromHex("0xff973b41fa98c081472e6896dfb254c0"),
		uint256.MustFromHex("0xff2ea16466c96a3843ec78b326b52861"),
		uint256.MustFromHex("0xfe5dee046a99a2a811c461f1969c3053"),
		uint256.MustFromHex("0xfcbe86c7900a88aedcffc83b479aa3a4"),
		uint256.MustFromHex("0xf987a7253ac413176f2b074cf7815e54"),
		uint256.MustFromHex("0xf3392b0822b70005940c7a398e4b70f3"),
		uint256.MustFromHex("0xe7159475a2c29b7443b29c7fa6e889d9"),
		uint256.MustFromHex("0xd097f3bdfd2022b8845ad8f792aa5825"),
		uint256.MustFromHex("0xa9f746462d870fdf8a65dc1f90e061e5"),
		uint256.MustFromHex("0x70d869a156d2a1b890bb3df62baf32f7"),
		uint256.MustFromHex("0x31be135f97d08fd981231505542fcfa6"),
		uint256.MustFromHex("0x9aa508b5b7a84e1c677de54f3e99bc9"),
		uint256.MustFromHex("0x5d6af8dedb81196699c329225ee604"),
		uint256.MustFromHex("0x2216e584f5fa1ea926041bedfe98"),
		uint256.MustFromHex("0x48a170391f7dc42444e8fa2"),
	}
)

// SqrtRatioAtTick returns sqrt(1.0001^tick) in Q64.96 fixed point.
func SqrtRatioAtTick(tick int32) (*uint256.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, fmt.Errorf("tick %d out of range [%d, %d]", tick, MinTick, MaxTick)
	}

	absTick := uint64(tick)
	if tick < 0 {
		absTick = uint64(-int64(tick))
	}

	ratio := new(uint256.Int)
	if absTick&1 != 0 {
		ratio.Set(ratioSeedOdd)
	} else {
		ratio.Set(ratioSeedEven)
	}
	for i := 0; i < len(ratioMultipliers); i++ {
		if absTick&(1<<(i+1)) != 0 {
			ratio.Mul(ratio, ratioMultipliers[i])
			ratio.Rsh(ratio, 128)
		}
	}
	if tick > 0 {
		ratio.Div(uint256Max, ratio)
	}

	// Q128.128 -> Q64.96, rounding up.
	var adjust uint64 = 1
	if new(uint256.Int).Mod(ratio, oneShift32).IsZero() {
		adjust = 0
	}
	ratio.Rsh(ratio, 32)
	ratio.AddUint64(ratio, adjust)
	ratio.And(ratio, uint160Max)
	return ratio, nil
}

// mulDiv computes a*b/denom through a big.Int intermediate so the product
// may exceed 256 bits.
func mulDiv(a, b, denom *uint256.Int) *uint256.Int {
	product := new(big.Int).Mul(a.ToBig(), b.ToBig())
	product.Div(product, denom.ToBig())
	out, _ := uint256.FromBig(product)
	return out
}

// amount0Delta is the token0 amount between two sqrt prices for a given
// liquidity, rounded down.
func amount0Delta(sqrtA, sqrtB, liquidity *uint256.Int) *uint256.Int {
	if sqrtA.Gt(sqrtB) {
		sqrtA, sqrtB = sqrtB, sqrtA
	}
	numerator1 := new(uint256.Int).Lsh(liquidity, 96)
	numerator2 := new(uint256.Int).Sub(sqrtB, sqrtA)
	out := mulDiv(numerator1, numerator2, sqrtB)
	return out.Div(out, sqrtA)
}

// amount1Delta is the token1 amount between two sqrt prices for a given
// liquidity, rounded down.
func amount1Delta(sqrtA, sqrtB, liquidity *uint256.Int) *uint256.Int {
	if sqrtA.Gt(sqrtB) {
		sqrtA, sqrtB = sqrtB, sqrtA
	}
	diff := new(uint256.Int).Sub(sqrtB, sqrtA)
	return mulDiv(liquidity, diff, q96)
}

// AmountsForLiquidity returns the token amounts a position of the given
// liquidity holds between two ticks at the current pool price.
func AmountsForLiquidity(sqrtPriceX96 *uint256.Int, tickLower, tickUpper int32, liquidity *uint256.Int) (amount0, amount1 *uint256.Int, err error) {
	if tickLower >= tickUpper {
		return nil, nil, fmt.Errorf("tick range [%d, %d) is empty", tickLower, tickUpper)
	}

	sqrtLower, err := SqrtRatioAtTick(tickLower)
	if err != nil {
		return nil, nil, err
	}
	sqrtUpper, err := SqrtRatioAtTick(tickUpper)
	if err != nil {
		return nil, nil, err
	}

	switch {
	case sqrtPriceX96.Lt(sqrtLower):
		// Entirely above the current price: all token0.
		return amount0Delta(sqrtLower, sqrtUpper, liquidity), uint256.NewInt(0), nil
	case !sqrtPriceX96.Lt(sqrtUpper):
		// Entirely below the current price: all token1.
		return uint256.NewInt(0), amount1Delta(sqrtLower, sqrtUpper, liquidity), nil
	default:
		return amount0Delta(sqrtPriceX96, sqrtUpper, liquidity),
			amount1Delta(sqrtLower, sqrtPriceX96, liquidity), nil
	}
}
