package handler

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"taxcalc/internal/tax/domain/relief"
	"taxcalc/internal/tax/orchestrator"
	"taxcalc/internal/tax/remote"
	"taxcalc/internal/tax/service"
)

// Amounts accept JSON numbers or numeric strings. Negative amounts are left
// to the calculation layer, which reports them as validation errors.

// IndividualRequest is the body of POST /v1/tax/individual.
type IndividualRequest struct {
	TaxYear          int              `json:"tax_year"`
	GrossIncome      *decimal.Decimal `json:"gross_income"`
	AnnualRent       decimal.Decimal  `json:"annual_rent"`
	Pension          decimal.Decimal  `json:"pension"`
	LifeInsurance    decimal.Decimal  `json:"life_insurance"`
	HousingFund      decimal.Decimal  `json:"housing_fund"`
	State            string           `json:"state"`
	EmploymentStatus string           `json:"employment_status"`
}

func (r *IndividualRequest) Normalize() {
	r.State = strings.TrimSpace(r.State)
	r.EmploymentStatus = strings.ToLower(strings.TrimSpace(r.EmploymentStatus))
}

func (r *IndividualRequest) Validate() error {
	if r.GrossIncome == nil {
		return errors.New("gross_income is required")
	}
	switch remote.EmploymentStatus(r.EmploymentStatus) {
	case "", remote.EmploymentEmployed, remote.EmploymentSelfEmployed, remote.EmploymentMixed:
	default:
		return errors.New("employment_status must be employed, self_employed or mixed")
	}
	return nil
}

func (r *IndividualRequest) input() orchestrator.IndividualInput {
	return orchestrator.IndividualInput{
		TaxYear:     r.TaxYear,
		GrossIncome: *r.GrossIncome,
		Reliefs: relief.Input{
			AnnualRent:    r.AnnualRent,
			Pension:       r.Pension,
			LifeInsurance: r.LifeInsurance,
			HousingFund:   r.HousingFund,
		},
		State:            r.State,
		EmploymentStatus: remote.EmploymentStatus(r.EmploymentStatus),
	}
}

// BusinessRequest is the body of POST /v1/tax/business.
type BusinessRequest struct {
	TaxYear      int              `json:"tax_year"`
	Profit       *decimal.Decimal `json:"profit"`
	CapitalGains decimal.Decimal  `json:"capital_gains"`
	Turnover     *decimal.Decimal `json:"turnover"`
	FixedAssets  decimal.Decimal  `json:"fixed_assets"`
}

func (r *BusinessRequest) Validate() error {
	if r.Profit == nil {
		return errors.New("profit is required")
	}
	if r.Turnover == nil {
		return errors.New("turnover is required")
	}
	return nil
}

func (r *BusinessRequest) input() orchestrator.BusinessInput {
	return orchestrator.BusinessInput{
		TaxYear:      r.TaxYear,
		Profit:       *r.Profit,
		CapitalGains: r.CapitalGains,
		Turnover:     *r.Turnover,
		Assets:       r.FixedAssets,
	}
}

// ExemptionRequest is the body of POST /v1/tax/exemption/business.
type ExemptionRequest struct {
	TaxYear     int              `json:"tax_year"`
	Turnover    *decimal.Decimal `json:"turnover"`
	FixedAssets decimal.Decimal  `json:"fixed_assets"`
}

func (r *ExemptionRequest) Validate() error {
	if r.Turnover == nil {
		return errors.New("turnover is required")
	}
	return nil
}

func (r *ExemptionRequest) input() service.ExemptionInput {
	return service.ExemptionInput{
		TaxYear:  r.TaxYear,
		Turnover: *r.Turnover,
		Assets:   r.FixedAssets,
	}
}
