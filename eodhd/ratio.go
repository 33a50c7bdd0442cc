package eodhd

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// simplifyDecimalRatio converts a ratio of decimals into a simplified integer fraction.
func simplifyDecimalRatio(numDecimal, denDecimal decimal.Decimal) (num, den int64) {
	// Scale both terms by the largest number of fractional digits.
	exp := max(-numDecimal.Exponent(), -denDecimal.Exponent(), 0)
	multiplier := decimal.New(1, exp)

	numInt := numDecimal.Mul(multiplier).BigInt()
	denInt := denDecimal.Mul(multiplier).BigInt()

	commonDivisor := new(big.Int).GCD(nil, nil, numInt, denInt)

	num = new(big.Int).Div(numInt, commonDivisor).Int64()
	den = new(big.Int).Div(denInt, commonDivisor).Int64()
	return
}
