package engine

import "github.com/shopspring/decimal"

// Play time is sold in 15-minute blocks.  The first block costs 300,
// the first half hour 500, and every further started 15-minute block
// adds 250.  All amounts are decimal to keep discount arithmetic
// exact; the only rounding happens once, at discount application.
var (
	priceFirstBlock = decimal.NewFromInt(300)
	priceHalfHour   = decimal.NewFromInt(500)
	pricePerBlock   = decimal.NewFromInt(250)

	one = decimal.NewFromInt(1)
)

// TierPrice returns the price of playing for the given number of
// minutes.  The function is a step function on the 15-minute grid and
// is monotonically non-decreasing:
//
//	minutes <= 15        -> 300
//	15 < minutes <= 30   -> 500
//	minutes > 30         -> 500 + ceil((minutes-30)/15) * 250
func TierPrice(minutes int) decimal.Decimal {
	switch {
	case minutes <= 15:
		return priceFirstBlock
	case minutes <= 30:
		return priceHalfHour
	default:
		blocks := int64((minutes - 30 + 14) / 15)
		return priceHalfHour.Add(pricePerBlock.Mul(decimal.NewFromInt(blocks)))
	}
}

// ExtensionPrice returns the price of extending a session by the
// given number of minutes.  An extension is billed as a fresh block
// of time in isolation, not as a recomputation of the whole duration:
// extending a 30-minute session by 15 minutes costs TierPrice(15),
// not TierPrice(45)-TierPrice(30).
func ExtensionPrice(additionalMinutes int) decimal.Decimal {
	return TierPrice(additionalMinutes)
}

// ApplyDiscount reduces a raw amount by the given rate in [0,1] and
// rounds the result to 2 decimal places, half up.  Rounding happens
// here and nowhere else so repeated arithmetic cannot drift.
func ApplyDiscount(raw, rate decimal.Decimal) decimal.Decimal {
	return raw.Mul(one.Sub(rate)).Round(2)
}
