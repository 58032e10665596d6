package remote

import (
	"errors"
	"fmt"
	"math"
)

// Wire types for the remote calculation service. Amounts travel as JSON
// numbers in whole or fractional naira. Responses are untrusted; each
// response type has a Validate method that rejects shapes the calculators
// cannot use.

type TaxpayerType string

const (
	TaxpayerIndividual TaxpayerType = "individual"
	TaxpayerCompany    TaxpayerType = "company"
)

type EmploymentStatus string

const (
	EmploymentEmployed     EmploymentStatus = "employed"
	EmploymentSelfEmployed EmploymentStatus = "self_employed"
	EmploymentMixed        EmploymentStatus = "mixed"
)

// Placeholder contact addresses. The service requires a syntactically valid
// address but nothing is sent to it.
const (
	IndividualEmail = "user@example.com"
	CompanyEmail    = "company@example.com"
)

// breakdownTolerance is the naira slack allowed between a reported total and
// the sum of its parts.
const breakdownTolerance = 1.0

type TaxpayerProfile struct {
	EmploymentStatus EmploymentStatus `json:"employment_status"`
	HasPAYEEmployer  *bool            `json:"has_paye_employer,omitempty"`
	EmployerTIN      *string          `json:"employer_tin,omitempty"`
}

type PITRequest struct {
	Email               string          `json:"email"`
	AnnualTaxableIncome float64         `json:"annual_taxable_income"`
	TaxpayerProfile     TaxpayerProfile `json:"taxpayer_profile"`
	StateOfResidence    string          `json:"state_of_residence"`
}

type BreakdownEntry struct {
	Band          string  `json:"band"`
	Rate          float64 `json:"rate"`
	TaxableAmount float64 `json:"taxable_amount"`
	TaxDue        float64 `json:"tax_due"`
}

type RoutingInfo struct {
	RouteType          string  `json:"route_type"`
	RemittingAuthority string  `json:"remitting_authority"`
	State              string  `json:"state"`
	Notes              *string `json:"notes,omitempty"`
}

type PITResponse struct {
	Email                string           `json:"email"`
	AnnualTaxableIncome  float64          `json:"annual_taxable_income"`
	PITBreakdown         []BreakdownEntry `json:"pit_breakdown"`
	TotalPITDue          float64          `json:"total_pit_due"`
	Routing              RoutingInfo      `json:"routing"`
	AnnualReturnRequired *bool            `json:"annual_return_required,omitempty"`
	LegalBasis           string           `json:"legal_basis,omitempty"`
}

// Validate requires a non-empty breakdown of entries with rates in [0,1],
// non-negative amounts and a tax no larger than the band's share, summing to
// the reported total within one naira.
func (r *PITResponse) Validate() error {
	if len(r.PITBreakdown) == 0 {
		return errors.New("pit response: empty breakdown")
	}
	if r.TotalPITDue < 0 {
		return fmt.Errorf("pit response: negative total %v", r.TotalPITDue)
	}
	sum := 0.0
	for i, e := range r.PITBreakdown {
		if e.TaxDue < 0 || e.TaxableAmount < 0 {
			return fmt.Errorf("pit response: negative value in breakdown entry %d", i)
		}
		if !validRate(e.Rate) {
			return fmt.Errorf("pit response: rate %v out of range in breakdown entry %d", e.Rate, i)
		}
		if e.TaxDue > e.TaxableAmount*e.Rate+breakdownTolerance {
			return fmt.Errorf("pit response: entry %d taxes %v at %v but reports %v", i, e.TaxableAmount, e.Rate, e.TaxDue)
		}
		sum += e.TaxDue
	}
	if math.Abs(sum-r.TotalPITDue) > breakdownTolerance {
		return fmt.Errorf("pit response: breakdown sums to %v, total is %v", sum, r.TotalPITDue)
	}
	return nil
}

// ValidateFor checks the response against the request that produced it: the
// bands may not cover, and the total may not exceed, more income than was sent.
func (r *PITResponse) ValidateFor(req PITRequest) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.TotalPITDue > req.AnnualTaxableIncome+breakdownTolerance {
		return fmt.Errorf("pit response: total %v exceeds taxable income %v", r.TotalPITDue, req.AnnualTaxableIncome)
	}
	covered := 0.0
	for _, e := range r.PITBreakdown {
		covered += e.TaxableAmount
	}
	if covered > req.AnnualTaxableIncome+breakdownTolerance {
		return fmt.Errorf("pit response: bands cover %v of taxable income %v", covered, req.AnnualTaxableIncome)
	}
	return nil
}

type CITRequest struct {
	CompanyEmail               string  `json:"company_email"`
	AnnualProfit               float64 `json:"annual_profit"`
	CompanyType                string  `json:"company_type"`
	IsPetroleumUpstreamCompany bool    `json:"is_petroleum_upstream_company"`
	TaxYear                    int     `json:"tax_year,omitempty"`
}

type CITResponse struct {
	CompanyEmail         string  `json:"company_email"`
	AnnualProfit         float64 `json:"annual_profit"`
	CITRate              float64 `json:"cit_rate"`
	CITDue               float64 `json:"cit_due"`
	DevelopmentLevyRate  float64 `json:"development_levy_rate"`
	DevelopmentLevyDue   float64 `json:"development_levy_due"`
	TotalTaxDue          float64 `json:"total_tax_due"`
	AnnualReturnRequired *bool   `json:"annual_return_required,omitempty"`
	RemittingAuthority   string  `json:"remitting_authority,omitempty"`
	LegalBasis           string  `json:"legal_basis,omitempty"`
}

// Validate requires non-negative figures, rates in [0,1] and a total equal to
// CIT plus the levy within one naira.
func (r *CITResponse) Validate() error {
	if r.CITDue < 0 || r.DevelopmentLevyDue < 0 || r.TotalTaxDue < 0 {
		return errors.New("cit response: negative amount")
	}
	if !validRate(r.CITRate) || !validRate(r.DevelopmentLevyRate) {
		return fmt.Errorf("cit response: rate out of range (cit %v, levy %v)", r.CITRate, r.DevelopmentLevyRate)
	}
	if math.Abs(r.TotalTaxDue-(r.CITDue+r.DevelopmentLevyDue)) > breakdownTolerance {
		return fmt.Errorf("cit response: total %v is not cit %v plus levy %v",
			r.TotalTaxDue, r.CITDue, r.DevelopmentLevyDue)
	}
	return nil
}

// ValidateFor rejects a total larger than the profit that was sent.
func (r *CITResponse) ValidateFor(req CITRequest) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.TotalTaxDue > req.AnnualProfit+breakdownTolerance {
		return fmt.Errorf("cit response: total %v exceeds profit %v", r.TotalTaxDue, req.AnnualProfit)
	}
	return nil
}

type CGTRequest struct {
	TaxpayerEmail  string       `json:"taxpayer_email"`
	TaxpayerType   TaxpayerType `json:"taxpayer_type"`
	ChargeableGain float64      `json:"chargeable_gain"`
	TaxYear        int          `json:"tax_year,omitempty"`
	CompanyType    string       `json:"company_type,omitempty"`
}

type CGTRouting struct {
	RemittingAuthority string  `json:"remitting_authority"`
	Notes              *string `json:"notes,omitempty"`
}

type CGTResponse struct {
	TaxpayerEmail        string           `json:"taxpayer_email"`
	TaxpayerType         TaxpayerType     `json:"taxpayer_type"`
	ChargeableGain       float64          `json:"chargeable_gain"`
	CGTDue               float64          `json:"cgt_due"`
	Method               string           `json:"method"`
	Breakdown            []BreakdownEntry `json:"breakdown"`
	AnnualReturnRequired *bool            `json:"annual_return_required,omitempty"`
	Routing              CGTRouting       `json:"routing"`
	LegalBasis           string           `json:"legal_basis,omitempty"`
}

func (r *CGTResponse) Validate() error {
	if r.CGTDue < 0 {
		return fmt.Errorf("cgt response: negative cgt_due %v", r.CGTDue)
	}
	return nil
}

// ValidateFor rejects a tax larger than the gain that was sent.
func (r *CGTResponse) ValidateFor(req CGTRequest) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.CGTDue > req.ChargeableGain+breakdownTolerance {
		return fmt.Errorf("cgt response: cgt_due %v exceeds gain %v", r.CGTDue, req.ChargeableGain)
	}
	return nil
}

type IndividualDeductions struct {
	PensionContribution  float64 `json:"pension_contribution,omitempty"`
	NHFContribution      float64 `json:"nhf_contribution,omitempty"`
	LifeAssurancePremium float64 `json:"life_assurance_premium,omitempty"`
	AnnualRentPaid       float64 `json:"annual_rent_paid,omitempty"`
}

type TaxableIncomeRequest struct {
	TaxpayerType         TaxpayerType          `json:"taxpayer_type"`
	GrossIncome          float64               `json:"gross_income"`
	IndividualDeductions *IndividualDeductions `json:"individual_deductions,omitempty"`
}

type DeductionDetail struct {
	Name            string  `json:"name"`
	RequestedAmount float64 `json:"requested_amount"`
	AppliedAmount   float64 `json:"applied_amount"`
	Cap             *string `json:"cap,omitempty"`
	Note            *string `json:"note,omitempty"`
}

type TaxableIncomeResponse struct {
	TaxpayerType       TaxpayerType      `json:"taxpayer_type"`
	GrossIncome        float64           `json:"gross_income"`
	TotalDeductions    float64           `json:"total_deductions"`
	TaxableIncome      float64           `json:"taxable_income"`
	DeductionBreakdown []DeductionDetail `json:"deduction_breakdown"`
}

// Validate requires non-negative figures with taxable income not above gross.
func (r *TaxableIncomeResponse) Validate() error {
	if r.GrossIncome < 0 || r.TotalDeductions < 0 || r.TaxableIncome < 0 {
		return errors.New("taxable income response: negative amount")
	}
	if r.TaxableIncome > r.GrossIncome+breakdownTolerance {
		return fmt.Errorf("taxable income response: taxable %v exceeds gross %v", r.TaxableIncome, r.GrossIncome)
	}
	return nil
}

func validRate(r float64) bool {
	return r >= 0 && r <= 1
}
