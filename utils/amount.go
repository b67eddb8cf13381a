package utils

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// FromBaseUnits converts a raw integer amount to a human decimal by scaling
// down by 10^decimals. A nil amount converts to zero.
func FromBaseUnits(amount *big.Int, decimals int32) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -decimals)
}

// ToBaseUnits converts a human decimal amount to the raw integer
// representation, scaling up by 10^decimals.
func ToBaseUnits(amount decimal.Decimal, decimals int32) *big.Int {
	return amount.Shift(decimals).BigInt()
}

// ParseAmount parses a decimal amount string, rejecting negatives.
func ParseAmount(amount string) (decimal.Decimal, error) {
	if amount == "" {
		return decimal.Zero, fmt.Errorf("amount cannot be empty")
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount format: %w", err)
	}
	if dec.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount cannot be negative")
	}
	return dec, nil
}
