// Package relief evaluates the statutory deductions allowed against gross
// income before banding.
package relief

import (
	"fmt"

	"github.com/shopspring/decimal"

	"taxcalc/internal/tax/domain/shared"
	"taxcalc/internal/tax/models"
	"taxcalc/internal/tax/ratetable"
)

const (
	NamePension       = "Pension Contribution"
	NameLifeInsurance = "Life Insurance Premium"
	NameHousingFund   = "National Housing Fund"
)

// Input carries the annual relief figures. Missing values are zero.
type Input struct {
	AnnualRent    decimal.Decimal `json:"annual_rent"`
	Pension       decimal.Decimal `json:"pension"`
	LifeInsurance decimal.Decimal `json:"life_insurance"`
	HousingFund   decimal.Decimal `json:"housing_fund"`
}

// Validate rejects negative relief figures.
func (in Input) Validate() error {
	checks := []struct {
		field string
		v     decimal.Decimal
	}{
		{"annual rent", in.AnnualRent},
		{"pension", in.Pension},
		{"life insurance", in.LifeInsurance},
		{"housing fund", in.HousingFund},
	}
	for _, c := range checks {
		if err := shared.RequireNonNegative(c.field, c.v); err != nil {
			return err
		}
	}
	return nil
}

// Result is the applied reliefs. Total equals the sum of Items.
type Result struct {
	Total decimal.Decimal
	Items []models.ReliefItem
}

// RentReliefName describes the rent relief rule for display, e.g.
// "Rent Relief (20% of rent, max ₦500,000)".
func RentReliefName(cfg ratetable.Reliefs) string {
	pct := cfg.RentRate.Mul(decimal.NewFromInt(100))
	return fmt.Sprintf("Rent Relief (%s%% of rent, max %s)", pct.String(), shared.FormatNaira(cfg.RentCap))
}

// Evaluate applies the relief rules. Rent relief is capped; the other reliefs
// are allowed at face value. Only non-zero reliefs are listed.
func Evaluate(in Input, cfg ratetable.Reliefs) Result {
	res := Result{Total: decimal.Zero, Items: []models.ReliefItem{}}

	add := func(name string, amount decimal.Decimal) {
		amount = shared.Round(amount)
		if !amount.IsPositive() {
			return
		}
		res.Items = append(res.Items, models.ReliefItem{Name: name, Amount: amount})
		res.Total = res.Total.Add(amount)
	}

	add(RentReliefName(cfg), decimal.Min(in.AnnualRent.Mul(cfg.RentRate), cfg.RentCap))
	add(NamePension, in.Pension)
	add(NameLifeInsurance, in.LifeInsurance)
	add(NameHousingFund, in.HousingFund)

	return res
}

// Taxable is the income left for banding once reliefs are deducted.
type Taxable struct {
	Gross   decimal.Decimal
	Reliefs Result
	Income  decimal.Decimal
}

// TaxableIncome deducts the evaluated reliefs from gross income, floored at
// zero.
func TaxableIncome(gross decimal.Decimal, in Input, cfg ratetable.Reliefs) Taxable {
	r := Evaluate(in, cfg)
	return Taxable{
		Gross:   gross,
		Reliefs: r,
		Income:  decimal.Max(decimal.Zero, gross.Sub(r.Total)),
	}
}
