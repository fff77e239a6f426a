package service

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// SalePrice marks cost up by margin percent, rounded to two decimals.
func SalePrice(cost, margin decimal.Decimal) decimal.Decimal {
	return cost.Mul(decimal.NewFromInt(1).Add(margin.Div(hundred))).Round(2)
}
