package liquidity

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	domainerrors "github.com/bridgeport-service/bridgeport/internal/domain/errors"
)

// ToBaseUnits converts a human-readable decimal amount to the token's
// fixed-point integer representation. Amounts with more fractional digits
// than the token carries are rejected rather than silently truncated.
func ToBaseUnits(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	shifted := amount.Shift(decimals)
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("%w: amount has more than %d decimal places", domainerrors.ErrInvalidInput, decimals)
	}
	return shifted.BigInt(), nil
}

// FromBaseUnits converts fixed-point units back to a decimal amount.
func FromBaseUnits(units *big.Int, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(units, -decimals)
}

// ParseBaseUnits parses a positive base-unit integer string.
func ParseBaseUnits(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be a positive integer", domainerrors.ErrInvalidInput)
	}
	return v, nil
}
