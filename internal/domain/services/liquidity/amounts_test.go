package liquidity

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bridgeport-service/bridgeport/internal/domain/errors"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals int32
		want     string
		wantErr  bool
	}{
		{name: "whole usdc", amount: "10", decimals: 6, want: "10000000"},
		{name: "fractional usdc", amount: "10.5", decimals: 6, want: "10500000"},
		{name: "smallest unit", amount: "0.000001", decimals: 6, want: "1"},
		{name: "full precision weth", amount: "1.000000000000000001", decimals: 18, want: "1000000000000000001"},
		{name: "zero", amount: "0", decimals: 6, want: "0"},
		{name: "too many places", amount: "1.0000001", decimals: 6, wantErr: true},
		{name: "sub unit", amount: "0.0000001", decimals: 6, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			got, err := ToBaseUnits(amount, tt.decimals)
			if tt.wantErr {
				require.ErrorIs(t, err, domainerrors.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestFromBaseUnits(t *testing.T) {
	units, ok := new(big.Int).SetString("10500000", 10)
	require.True(t, ok)
	assert.Equal(t, "10.5", FromBaseUnits(units, 6).String())

	wei, ok := new(big.Int).SetString("1000000000000000001", 10)
	require.True(t, ok)
	assert.Equal(t, "1.000000000000000001", FromBaseUnits(wei, 18).String())
}

func TestToBaseUnitsRoundTrip(t *testing.T) {
	amount := decimal.RequireFromString("1234.567891")
	units, err := ToBaseUnits(amount, 6)
	require.NoError(t, err)
	assert.True(t, amount.Equal(FromBaseUnits(units, 6)))
}

func TestParseBaseUnits(t *testing.T) {
	v, err := ParseBaseUnits("1000000")
	require.NoError(t, err)
	assert.Equal(t, "1000000", v.String())

	for _, bad := range []string{"", "0", "-5", "1.5", "abc"} {
		_, err := ParseBaseUnits(bad)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidInput, "input %q", bad)
	}
}
