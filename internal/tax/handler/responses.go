package handler

import (
	"github.com/shopspring/decimal"

	"taxcalc/internal/tax/ratetable"
)

type BandResponse struct {
	Label string           `json:"label"`
	Lower decimal.Decimal  `json:"lower"`
	Upper *decimal.Decimal `json:"upper"`
	Rate  decimal.Decimal  `json:"rate"`
}

type ReliefRatesResponse struct {
	RentRate decimal.Decimal `json:"rent_rate"`
	RentCap  decimal.Decimal `json:"rent_cap"`
}

type BusinessRatesResponse struct {
	CITRate             decimal.Decimal `json:"cit_rate"`
	DevelopmentLevyRate decimal.Decimal `json:"development_levy_rate"`
	CGTCompanyRate      decimal.Decimal `json:"cgt_company_rate"`
	TurnoverThreshold   decimal.Decimal `json:"turnover_threshold"`
	AssetsThreshold     decimal.Decimal `json:"assets_threshold"`
}

// RatesResponse is the body of GET /v1/tax/rates/{year}.
type RatesResponse struct {
	TaxYear                      int                   `json:"tax_year"`
	Version                      string                `json:"version"`
	Description                  string                `json:"description"`
	IndividualExemptionThreshold decimal.Decimal       `json:"individual_exemption_threshold"`
	Bands                        []BandResponse        `json:"bands"`
	Reliefs                      ReliefRatesResponse   `json:"reliefs"`
	Business                     BusinessRatesResponse `json:"business"`
	SupportedYears               []int                 `json:"supported_years"`
}

func formatRates(t *ratetable.Table, years []int) RatesResponse {
	bands := make([]BandResponse, 0, len(t.Bands))
	for _, b := range t.Bands {
		bands = append(bands, BandResponse{Label: b.Label, Lower: b.Lower, Upper: b.Upper, Rate: b.Rate})
	}
	return RatesResponse{
		TaxYear:                      t.Year,
		Version:                      t.Version,
		Description:                  t.Description,
		IndividualExemptionThreshold: t.IndividualExemptionThreshold,
		Bands:                        bands,
		Reliefs: ReliefRatesResponse{
			RentRate: t.Reliefs.RentRate,
			RentCap:  t.Reliefs.RentCap,
		},
		Business: BusinessRatesResponse{
			CITRate:             t.Business.CITRate,
			DevelopmentLevyRate: t.Business.DevelopmentLevyRate,
			CGTCompanyRate:      t.Business.CGTCompanyRate,
			TurnoverThreshold:   t.Business.TurnoverThreshold,
			AssetsThreshold:     t.Business.AssetsThreshold,
		},
		SupportedYears: years,
	}
}
