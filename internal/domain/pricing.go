package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Discount is subtotal * percent / 100 rounded to cents.
func Discount(subtotal, percent decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(percent).Div(hundred).Round(2)
}

// MinorUnits converts an amount to integer cents.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
