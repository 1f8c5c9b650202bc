package liquidity

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ratio(t *testing.T, tick int32) *uint256.Int {
	t.Helper()
	out, err := SqrtRatioAtTick(tick)
	require.NoError(t, err)
	return out
}

func TestSqrtRatioAtTick(t *testing.T) {
	t.Run("known values", func(t *testing.T) {
		cases := []struct {
			tick int32
			want string
		}{
			{0, "79228162514264337593543950336"}, // 2^96
			{1, "79232123823359799118286999568"},
			{-1, "79224201403219477170569942574"},
			{MinTick, "4295128739"},
			{MaxTick, "1461446703485210103287273052203988822378723970342"},
		}
		for _, tc := range cases {
			got := ratio(t, tc.tick)
			assert.Equal(t, tc.want, got.Dec(), "tick %d", tc.tick)
		}
	})

	t.Run("monotonic in the tick", func(t *testing.T) {
		prev := ratio(t, -1000)
		for _, tick := range []int32{-100, -10, 0, 10, 100, 1000} {
			cur := ratio(t, tick)
			assert.True(t, prev.Lt(cur), "ratio at %d should exceed the previous", tick)
			prev = cur
		}
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := SqrtRatioAtTick(MaxTick + 1)
		assert.Error(t, err)
		_, err = SqrtRatioAtTick(MinTick - 1)
		assert.Error(t, err)
	})
}

func TestAmountsForLiquidity(t *testing.T) {
	priceAtTickZero := ratio(t, 0)
	liquidity := uint256.NewInt(1_000_000_000_000) // 1e12

	t.Run("in range holds both tokens", func(t *testing.T) {
		amount0, amount1, err := AmountsForLiquidity(priceAtTickZero, -60, 60, liquidity)
		require.NoError(t, err)
		assert.False(t, amount0.IsZero())
		assert.False(t, amount1.IsZero())
		// A symmetric range around the current price holds near-equal
		// sides at price 1.
		diff := new(uint256.Int)
		if amount0.Gt(amount1) {
			diff.Sub(amount0, amount1)
		} else {
			diff.Sub(amount1, amount0)
		}
		assert.True(t, diff.Lt(uint256.NewInt(1_000_000)), "amounts %s and %s should be close", amount0.Dec(), amount1.Dec())
	})

	t.Run("below range is all token0", func(t *testing.T) {
		amount0, amount1, err := AmountsForLiquidity(priceAtTickZero, 60, 120, liquidity)
		require.NoError(t, err)
		assert.False(t, amount0.IsZero())
		assert.True(t, amount1.IsZero())
	})

	t.Run("above range is all token1", func(t *testing.T) {
		amount0, amount1, err := AmountsForLiquidity(priceAtTickZero, -120, -60, liquidity)
		require.NoError(t, err)
		assert.True(t, amount0.IsZero())
		assert.False(t, amount1.IsZero())
	})

	t.Run("empty range", func(t *testing.T) {
		_, _, err := AmountsForLiquidity(priceAtTickZero, 60, 60, liquidity)
		assert.Error(t, err)
	})
}
