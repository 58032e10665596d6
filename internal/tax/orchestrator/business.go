package orchestrator

import (
	"context"

	"github.com/shopspring/decimal"

	"taxcalc/internal/tax/domain/corporate"
	"taxcalc/internal/tax/domain/exemption"
	"taxcalc/internal/tax/domain/shared"
	"taxcalc/internal/tax/metrics"
	"taxcalc/internal/tax/models"
	"taxcalc/internal/tax/ratetable"
	"taxcalc/internal/tax/remote"
	"taxcalc/internal/tax/tracer"
)

// BusinessInput is a company tax request. TaxYear zero selects the default
// table.
type BusinessInput struct {
	TaxYear      int
	Profit       decimal.Decimal
	CapitalGains decimal.Decimal
	Turnover     decimal.Decimal
	Assets       decimal.Decimal
}

// Business orchestrates companies income tax, development levy and capital
// gains tax calculations.
type Business struct {
	deps
}

func NewBusiness(rates *ratetable.Registry, calc Calculator, opts ...Option) *Business {
	return &Business{deps: newDeps(rates, calc, opts)}
}

type businessRun struct {
	table  *ratetable.Table
	in     BusinessInput
	result models.BusinessResult
}

// Calculate returns the company tax for in. When CIT comes back from the
// remote service but CGT does not, only CGT is computed locally and the
// result is still flagged as a fallback.
func (b *Business) Calculate(ctx context.Context, in BusinessInput) (*models.Calculation[models.BusinessResult], error) {
	ctx, span := b.tracer.Start(ctx, tracer.SpanBusiness, tracer.Int64(tracer.AttrTaxYear, int64(in.TaxYear)))

	var (
		run      businessRun
		fallback bool
	)

	state := StatePreprocess
	for state != StateDone {
		b.enter(ctx, span, kindBusiness, state)

		switch state {
		case StatePreprocess:
			var err error
			run, err = b.preprocess(in)
			if err != nil {
				span.End(err)
				return nil, err
			}
			if run.result.IsExempt {
				b.record(kindBusiness, metrics.SourceExempt)
				state = StateDone
				continue
			}
			state = StateRemoteAttempt

		case StateRemoteAttempt:
			partial, err := b.attemptRemote(ctx, &run)
			if err != nil {
				b.remoteFailed(ctx, kindBusiness, err)
				state = StateRemoteFailed
				continue
			}
			fallback = partial
			state = StateSuccess

		case StateSuccess:
			source := metrics.SourceRemote
			if fallback {
				source = metrics.SourceLocal
			}
			b.record(kindBusiness, source)
			state = StateDone

		case StateRemoteFailed:
			state = StateLocalFallback

		case StateLocalFallback:
			b.computeLocal(&run)
			fallback = true
			b.record(kindBusiness, metrics.SourceLocal)
			state = StateDone
		}
	}
	b.enter(ctx, span, kindBusiness, StateDone)

	span.SetAttributes(
		tracer.Bool(tracer.AttrUsingFallback, fallback),
		tracer.Bool(tracer.AttrExempt, run.result.IsExempt),
	)
	span.End(nil)

	return &models.Calculation[models.BusinessResult]{Result: run.result, UsingFallback: fallback}, nil
}

func (b *Business) preprocess(in BusinessInput) (businessRun, error) {
	checks := []struct {
		field string
		v     decimal.Decimal
	}{
		{"profit", in.Profit},
		{"capital gains", in.CapitalGains},
		{"turnover", in.Turnover},
		{"fixed assets", in.Assets},
	}
	for _, c := range checks {
		if err := shared.RequireNonNegative(c.field, c.v); err != nil {
			return businessRun{}, err
		}
	}
	table, err := b.table(in.TaxYear)
	if err != nil {
		return businessRun{}, err
	}

	verdict := exemption.EvaluateBusiness(in.Turnover, in.Assets, table)
	return businessRun{
		table: table,
		in:    in,
		result: models.BusinessResult{
			TaxYear:         table.Year,
			Profit:          in.Profit,
			CITDue:          decimal.Zero,
			CGTDue:          decimal.Zero,
			DevelopmentLevy: decimal.Zero,
			TotalTaxDue:     decimal.Zero,
			EffectiveRate:   decimal.Zero,
			IsExempt:        verdict.IsExempt,
			CompanyType:     exemption.CompanyType(in.Turnover, in.Assets, table),
			Exemption:       verdict,
		},
	}, nil
}

// attemptRemote fills CIT and the levy from the remote service. A CGT
// failure is absorbed locally and reported through partial.
func (b *Business) attemptRemote(ctx context.Context, run *businessRun) (partial bool, err error) {
	companyType := string(run.result.CompanyType)

	req := remote.CITRequest{
		CompanyEmail:               remote.CompanyEmail,
		AnnualProfit:               run.in.Profit.InexactFloat64(),
		CompanyType:                companyType,
		IsPetroleumUpstreamCompany: false,
		TaxYear:                    run.table.Year,
	}
	cit, err := b.calc.CalculateCIT(ctx, req)
	if err != nil {
		return false, err
	}
	if cit == nil {
		return false, remote.NewError(remote.CategoryBadData, remote.EndpointCIT, "empty response", nil)
	}
	if err := cit.ValidateFor(req); err != nil {
		return false, remote.NewError(remote.CategoryBadData, remote.EndpointCIT, "invalid response", err)
	}

	citDue := shared.Round(decimal.NewFromFloat(cit.CITDue))
	levy := shared.Round(decimal.NewFromFloat(cit.DevelopmentLevyDue))
	citTotal := citDue.Add(levy)

	cgtDue := decimal.Zero
	if run.in.CapitalGains.IsPositive() {
		cgtDue, err = b.remoteCGT(ctx, run, companyType)
		if err != nil {
			b.logger.WarnContext(ctx, "tax_cgt_remote_failed_using_fallback",
				"category", string(remote.GetCategory(err)),
				"error", err,
			)
			cgtDue = corporate.ComputeCGT(run.in.CapitalGains, run.table.Business)
			partial = true
		}
	}

	b.fill(run, citDue, levy, citTotal, cgtDue)
	return partial, nil
}

func (b *Business) remoteCGT(ctx context.Context, run *businessRun, companyType string) (decimal.Decimal, error) {
	req := remote.CGTRequest{
		TaxpayerEmail:  remote.CompanyEmail,
		TaxpayerType:   remote.TaxpayerCompany,
		ChargeableGain: run.in.CapitalGains.InexactFloat64(),
		TaxYear:        run.table.Year,
		CompanyType:    companyType,
	}
	resp, err := b.calc.CalculateCGT(ctx, req)
	if err != nil {
		return decimal.Zero, err
	}
	if resp == nil {
		return decimal.Zero, remote.NewError(remote.CategoryBadData, remote.EndpointCGT, "empty response", nil)
	}
	if err := resp.ValidateFor(req); err != nil {
		return decimal.Zero, remote.NewError(remote.CategoryBadData, remote.EndpointCGT, "invalid response", err)
	}
	return shared.Round(decimal.NewFromFloat(resp.CGTDue)), nil
}

func (b *Business) computeLocal(run *businessRun) {
	cit := corporate.ComputeCIT(run.in.Profit, run.table.Business, true)
	cgt := corporate.ComputeCGT(run.in.CapitalGains, run.table.Business)
	b.fill(run, cit.CITDue, cit.DevelopmentLevy, cit.Total, cgt)
}

func (b *Business) fill(run *businessRun, citDue, levy, citTotal, cgtDue decimal.Decimal) {
	total := citTotal.Add(cgtDue)
	run.result.CITDue = citDue
	run.result.DevelopmentLevy = levy
	run.result.CGTDue = cgtDue
	run.result.TotalTaxDue = total
	run.result.EffectiveRate = shared.EffectiveRate(total, run.in.Profit)
}
