package domain

import "github.com/shopspring/decimal"

// Prices are stored as float64 and computed as decimals, rounded to cents at every stored
// boundary.
const moneyPlaces = 2

// Money converts a stored amount into a decimal rounded to cents.
func Money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(moneyPlaces)
}

// IsWholeCents reports whether v has at most two decimal places, so Money(v) is exact.
func IsWholeCents(v float64) bool {
	return decimal.NewFromFloat(v).Equal(Money(v))
}

// HasDiscount reports whether discount is a real markdown of price.
func HasDiscount(price, discount float64) bool {
	return discount > 0 && discount < price
}

// EffectivePrice is the unit price a buyer pays.
func EffectivePrice(price, discount float64) decimal.Decimal {
	if HasDiscount(price, discount) {
		return Money(discount)
	}
	return Money(price)
}

// Commission splits revenue into the platform's cut and the supplier's net. The cut is
// rounded to cents and net is derived by subtraction, so cut + net == revenue exactly.
func Commission(revenue decimal.Decimal, ratePercent float64) (cut, net decimal.Decimal) {
	cut = revenue.Mul(decimal.NewFromFloat(ratePercent)).Div(decimal.NewFromInt(100)).Round(moneyPlaces)
	net = revenue.Sub(cut)
	return cut, net
}
