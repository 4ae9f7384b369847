// Package money holds the fixed-point arithmetic used for all card and
// wallet amounts. Amounts are stored as int64 kobo (NGN minor units); rates
// are stored in basis points. Fractional results are rounded half-up before
// they are stored or compared.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RateScale is the denominator for basis-point rates: 10000 bps = 100%.
const RateScale = 10000

// Total computes unitAmount x quantity x rate in kobo, rounded half-up.
func Total(unitAmountKobo int64, quantity int, rateBps int64) int64 {
	total := decimal.NewFromInt(unitAmountKobo).
		Mul(decimal.NewFromInt(int64(quantity))).
		Mul(decimal.NewFromInt(rateBps)).
		Div(decimal.NewFromInt(RateScale))
	// decimal.Round rounds half away from zero, which is half-up for the
	// non-negative amounts this system deals in.
	return total.Round(0).IntPart()
}

// FormatNaira renders a kobo amount as a naira string for descriptions.
func FormatNaira(kobo int64) string {
	return fmt.Sprintf("NGN %s", decimal.NewFromInt(kobo).Div(decimal.NewFromInt(100)).StringFixed(2))
}
