// Package models defines the calculation results handed to presentation and
// export collaborators. No other shape leaves the tax core.
package models

import "github.com/shopspring/decimal"

// CompanyType classifies a business for the remote CIT/CGT endpoints.
type CompanyType string

const (
	CompanyTypeSmall  CompanyType = "small"
	CompanyTypeMedium CompanyType = "medium"
	CompanyTypeLarge  CompanyType = "large"
)

// BreakdownEntry is the tax attributed to a single band. Entries mirror band
// order and their TaxDue values sum exactly to the reported total.
type BreakdownEntry struct {
	Band          string          `json:"band"`
	Rate          decimal.Decimal `json:"rate"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	TaxDue        decimal.Decimal `json:"tax_due"`
}

// ReliefItem is a relief actually counted, after any cap.
type ReliefItem struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// ExemptionVerdict carries the strict verdict alongside one informational
// reason per criterion, whatever the outcome.
type ExemptionVerdict struct {
	IsExempt          bool     `json:"is_exempt"`
	Reasons           []string `json:"reasons"`
	TurnoverQualified bool     `json:"turnover_qualified"`
	AssetsQualified   bool     `json:"assets_qualified"`
}

// IndividualResult is the personal income tax outcome.
type IndividualResult struct {
	TaxYear         int              `json:"tax_year"`
	GrossIncome     decimal.Decimal  `json:"gross_income"`
	TotalReliefs    decimal.Decimal  `json:"total_reliefs"`
	TaxableIncome   decimal.Decimal  `json:"taxable_income"`
	TaxDue          decimal.Decimal  `json:"tax_due"`
	EffectiveRate   decimal.Decimal  `json:"effective_rate"`
	Breakdown       []BreakdownEntry `json:"breakdown"`
	ReliefBreakdown []ReliefItem     `json:"relief_breakdown"`
	State           string           `json:"state"`
	IsExempt        bool             `json:"is_exempt"`
}

// BusinessResult is the companies income tax, capital gains tax and
// development levy outcome.
type BusinessResult struct {
	TaxYear         int              `json:"tax_year"`
	Profit          decimal.Decimal  `json:"profit"`
	CITDue          decimal.Decimal  `json:"cit_due"`
	CGTDue          decimal.Decimal  `json:"cgt_due"`
	DevelopmentLevy decimal.Decimal  `json:"development_levy"`
	TotalTaxDue     decimal.Decimal  `json:"total_tax_due"`
	EffectiveRate   decimal.Decimal  `json:"effective_rate"`
	IsExempt        bool             `json:"is_exempt"`
	CompanyType     CompanyType      `json:"company_type"`
	Exemption       ExemptionVerdict `json:"exemption"`
}

// Calculation wraps a result with the path that produced it. UsingFallback is
// true when any part of the result came from the local engine.
type Calculation[T any] struct {
	Result        T    `json:"result"`
	UsingFallback bool `json:"using_fallback"`
}

// BusinessExemption is the standalone small-company exemption check.
type BusinessExemption struct {
	TaxYear     int              `json:"tax_year"`
	CompanyType CompanyType      `json:"company_type"`
	Exemption   ExemptionVerdict `json:"exemption"`
}
