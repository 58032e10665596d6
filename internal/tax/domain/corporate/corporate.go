// Package corporate is the local fixed-rate engine for companies income tax,
// the development levy and capital gains tax.
package corporate

import (
	"github.com/shopspring/decimal"

	"taxcalc/internal/tax/domain/shared"
	"taxcalc/internal/tax/ratetable"
)

// CIT is the companies income tax outcome on a profit figure.
type CIT struct {
	CITDue          decimal.Decimal
	DevelopmentLevy decimal.Decimal
	Total           decimal.Decimal
}

// ComputeCIT taxes profit at the flat CIT rate and, when requested, adds the
// development levy. Each component is rounded before summing.
func ComputeCIT(profit decimal.Decimal, b ratetable.Business, includeLevy bool) CIT {
	if !profit.IsPositive() {
		return CIT{CITDue: decimal.Zero, DevelopmentLevy: decimal.Zero, Total: decimal.Zero}
	}
	cit := shared.Round(profit.Mul(b.CITRate))
	levy := decimal.Zero
	if includeLevy {
		levy = shared.Round(profit.Mul(b.DevelopmentLevyRate))
	}
	return CIT{CITDue: cit, DevelopmentLevy: levy, Total: cit.Add(levy)}
}

// ComputeCGT taxes chargeable gains at the company CGT rate.
func ComputeCGT(gains decimal.Decimal, b ratetable.Business) decimal.Decimal {
	if !gains.IsPositive() {
		return decimal.Zero
	}
	return shared.Round(gains.Mul(b.CGTCompanyRate))
}
