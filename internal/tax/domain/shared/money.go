// Package shared holds the money and validation primitives used by every tax
// evaluator.
package shared

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	dErrors "taxcalc/pkg/domain-errors"
)

var (
	hundred  = decimal.NewFromInt(100)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
	grouping = message.NewPrinter(language.English)
)

// Round rounds to the nearest whole naira, halves away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// EffectiveRate returns total / base × 100 to two decimal places, or zero when
// the base is zero.
func EffectiveRate(total, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return total.Div(base).Mul(hundred).Round(2)
}

// RequireNonNegative rejects negative monetary input with a validation error.
func RequireNonNegative(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s cannot be negative", field))
	}
	return nil
}

// FormatNaira renders a whole-naira amount with the currency sign and
// thousands separators, e.g. ₦1,800,000.
func FormatNaira(d decimal.Decimal) string {
	r := Round(d)
	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Neg()
	}
	return sign + "₦" + grouping.Sprintf("%d", r.IntPart())
}

// FormatNairaShort renders round millions and billions compactly (₦100M,
// ₦2B) and falls back to FormatNaira otherwise.
func FormatNairaShort(d decimal.Decimal) string {
	switch {
	case d.GreaterThanOrEqual(billion) && d.Mod(billion).IsZero():
		return "₦" + d.Div(billion).String() + "B"
	case d.GreaterThanOrEqual(million) && d.Mod(million).IsZero():
		return "₦" + d.Div(million).String() + "M"
	default:
		return FormatNaira(d)
	}
}
