// Package service is the entry point collaborators use for tax calculations.
// It fronts the orchestrators and exposes the rate tables they run on.
package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"taxcalc/internal/tax/domain/exemption"
	"taxcalc/internal/tax/domain/shared"
	"taxcalc/internal/tax/models"
	"taxcalc/internal/tax/orchestrator"
	"taxcalc/internal/tax/ratetable"
)

// IndividualCalculator runs personal income tax calculations.
type IndividualCalculator interface {
	Calculate(ctx context.Context, in orchestrator.IndividualInput) (*models.Calculation[models.IndividualResult], error)
}

// BusinessCalculator runs company tax calculations.
type BusinessCalculator interface {
	Calculate(ctx context.Context, in orchestrator.BusinessInput) (*models.Calculation[models.BusinessResult], error)
}

// ExemptionInput is a standalone small-company exemption query.
type ExemptionInput struct {
	TaxYear  int
	Turnover decimal.Decimal
	Assets   decimal.Decimal
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type Service struct {
	individual IndividualCalculator
	business   BusinessCalculator
	rates      *ratetable.Registry
	logger     *slog.Logger
}

func New(individual IndividualCalculator, business BusinessCalculator, rates *ratetable.Registry, opts ...Option) *Service {
	svc := &Service{
		individual: individual,
		business:   business,
		rates:      rates,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *Service) CalculateIndividual(ctx context.Context, in orchestrator.IndividualInput) (*models.Calculation[models.IndividualResult], error) {
	res, err := s.individual.Calculate(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "individual_tax_calculated",
		"tax_year", res.Result.TaxYear,
		"is_exempt", res.Result.IsExempt,
		"using_fallback", res.UsingFallback,
	)
	return res, nil
}

func (s *Service) CalculateBusiness(ctx context.Context, in orchestrator.BusinessInput) (*models.Calculation[models.BusinessResult], error) {
	res, err := s.business.Calculate(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "business_tax_calculated",
		"tax_year", res.Result.TaxYear,
		"company_type", string(res.Result.CompanyType),
		"is_exempt", res.Result.IsExempt,
		"using_fallback", res.UsingFallback,
	)
	return res, nil
}

// BusinessExemption evaluates the small-company thresholds without running a
// calculation. It never contacts the remote service.
func (s *Service) BusinessExemption(_ context.Context, in ExemptionInput) (*models.BusinessExemption, error) {
	if err := shared.RequireNonNegative("turnover", in.Turnover); err != nil {
		return nil, err
	}
	if err := shared.RequireNonNegative("fixed assets", in.Assets); err != nil {
		return nil, err
	}
	table, err := s.rates.Get(in.TaxYear)
	if err != nil {
		return nil, err
	}
	return &models.BusinessExemption{
		TaxYear:     table.Year,
		CompanyType: exemption.CompanyType(in.Turnover, in.Assets, table),
		Exemption:   exemption.EvaluateBusiness(in.Turnover, in.Assets, table),
	}, nil
}

// Rates returns the schedule for year; 0 selects the default year. An unknown
// year is reported as not found.
func (s *Service) Rates(_ context.Context, year int) (*ratetable.Table, error) {
	return s.rates.Get(year)
}

// Years lists the supported tax years.
func (s *Service) Years() []int {
	return s.rates.Years()
}
