// Package bands implements the progressive band engine used for personal
// income tax.
package bands

import (
	"github.com/shopspring/decimal"

	"taxcalc/internal/tax/domain/shared"
	"taxcalc/internal/tax/models"
	"taxcalc/internal/tax/ratetable"
)

// Result is the outcome of a band computation. Total always equals the sum of
// the rounded per-band taxes in Entries.
type Result struct {
	Total   decimal.Decimal
	Entries []models.BreakdownEntry
}

// Compute allocates amount across the ordered bands and taxes each slice at
// its band rate. Each band's tax is rounded to the nearest naira before being
// summed. Amounts at or below zero produce a zero total and no entries; any
// amount beyond the last bounded band falls into the terminal band.
func Compute(amount decimal.Decimal, bs []ratetable.Band) Result {
	res := Result{Total: decimal.Zero, Entries: []models.BreakdownEntry{}}
	if !amount.IsPositive() {
		return res
	}

	remaining := amount
	for _, b := range bs {
		if !remaining.IsPositive() {
			break
		}

		allocated := remaining
		if !b.Unbounded() {
			allocated = decimal.Min(remaining, b.Width())
		}

		tax := shared.Round(allocated.Mul(b.Rate))
		res.Entries = append(res.Entries, models.BreakdownEntry{
			Band:          b.Label,
			Rate:          b.Rate,
			TaxableAmount: allocated,
			TaxDue:        tax,
		})
		res.Total = res.Total.Add(tax)
		remaining = remaining.Sub(allocated)
	}

	return res
}
