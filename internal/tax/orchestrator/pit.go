package orchestrator

import (
	"context"

	"github.com/shopspring/decimal"

	"taxcalc/internal/tax/domain/bands"
	"taxcalc/internal/tax/domain/exemption"
	"taxcalc/internal/tax/domain/relief"
	"taxcalc/internal/tax/domain/shared"
	"taxcalc/internal/tax/metrics"
	"taxcalc/internal/tax/models"
	"taxcalc/internal/tax/ratetable"
	"taxcalc/internal/tax/remote"
	"taxcalc/internal/tax/tracer"
)

// IndividualInput is a personal income tax request. TaxYear zero selects the
// default table; an empty State means FCT.
type IndividualInput struct {
	TaxYear          int
	GrossIncome      decimal.Decimal
	Reliefs          relief.Input
	State            string
	EmploymentStatus remote.EmploymentStatus
}

// PIT orchestrates personal income tax calculations.
type PIT struct {
	deps
}

func NewPIT(rates *ratetable.Registry, calc Calculator, opts ...Option) *PIT {
	return &PIT{deps: newDeps(rates, calc, opts)}
}

// pitRun carries the figures computed in PREPROCESS through the later states.
type pitRun struct {
	table   *ratetable.Table
	taxable relief.Taxable
	result  models.IndividualResult
}

// Calculate returns the personal income tax for in. The only errors returned
// are input validation failures and unknown tax years.
func (p *PIT) Calculate(ctx context.Context, in IndividualInput) (*models.Calculation[models.IndividualResult], error) {
	ctx, span := p.tracer.Start(ctx, tracer.SpanPIT, tracer.Int64(tracer.AttrTaxYear, int64(in.TaxYear)))

	var (
		run      pitRun
		fallback bool
	)

	state := StatePreprocess
	for state != StateDone {
		p.enter(ctx, span, kindPIT, state)

		switch state {
		case StatePreprocess:
			var err error
			run, err = p.preprocess(in)
			if err != nil {
				span.End(err)
				return nil, err
			}
			if run.result.IsExempt {
				p.record(kindPIT, metrics.SourceExempt)
				state = StateDone
				continue
			}
			state = StateRemoteAttempt

		case StateRemoteAttempt:
			if err := p.attemptRemote(ctx, in, &run); err != nil {
				p.remoteFailed(ctx, kindPIT, err)
				state = StateRemoteFailed
				continue
			}
			state = StateSuccess

		case StateSuccess:
			p.record(kindPIT, metrics.SourceRemote)
			state = StateDone

		case StateRemoteFailed:
			state = StateLocalFallback

		case StateLocalFallback:
			p.computeLocal(&run)
			fallback = true
			p.record(kindPIT, metrics.SourceLocal)
			state = StateDone
		}
	}
	p.enter(ctx, span, kindPIT, StateDone)

	span.SetAttributes(
		tracer.Bool(tracer.AttrUsingFallback, fallback),
		tracer.Bool(tracer.AttrExempt, run.result.IsExempt),
	)
	span.End(nil)

	return &models.Calculation[models.IndividualResult]{Result: run.result, UsingFallback: fallback}, nil
}

func (p *PIT) preprocess(in IndividualInput) (pitRun, error) {
	if err := shared.RequireNonNegative("gross income", in.GrossIncome); err != nil {
		return pitRun{}, err
	}
	if err := in.Reliefs.Validate(); err != nil {
		return pitRun{}, err
	}
	stateName, err := shared.ParseState(in.State)
	if err != nil {
		return pitRun{}, err
	}
	table, err := p.table(in.TaxYear)
	if err != nil {
		return pitRun{}, err
	}

	taxable := relief.TaxableIncome(in.GrossIncome, in.Reliefs, table.Reliefs)
	run := pitRun{
		table:   table,
		taxable: taxable,
		result: models.IndividualResult{
			TaxYear:         table.Year,
			GrossIncome:     in.GrossIncome,
			TotalReliefs:    taxable.Reliefs.Total,
			TaxableIncome:   taxable.Income,
			TaxDue:          decimal.Zero,
			EffectiveRate:   decimal.Zero,
			Breakdown:       []models.BreakdownEntry{},
			ReliefBreakdown: taxable.Reliefs.Items,
			State:           stateName,
		},
	}
	run.result.IsExempt = exemption.IsIndividualExempt(taxable.Income, table)
	return run, nil
}

func (p *PIT) attemptRemote(ctx context.Context, in IndividualInput, run *pitRun) error {
	status := in.EmploymentStatus
	if status == "" {
		status = remote.EmploymentMixed
	}

	req := remote.PITRequest{
		Email:               remote.IndividualEmail,
		AnnualTaxableIncome: run.taxable.Income.InexactFloat64(),
		TaxpayerProfile:     remote.TaxpayerProfile{EmploymentStatus: status},
		StateOfResidence:    run.result.State,
	}
	resp, err := p.calc.CalculatePIT(ctx, req)
	if err != nil {
		return err
	}
	if resp == nil {
		return remote.NewError(remote.CategoryBadData, remote.EndpointPIT, "empty response", nil)
	}
	if err := resp.ValidateFor(req); err != nil {
		return remote.NewError(remote.CategoryBadData, remote.EndpointPIT, "invalid response", err)
	}

	// The total is the sum of the rounded band taxes, as in the local engine.
	entries := make([]models.BreakdownEntry, 0, len(resp.PITBreakdown))
	taxDue := decimal.Zero
	for _, e := range resp.PITBreakdown {
		due := shared.Round(decimal.NewFromFloat(e.TaxDue))
		entries = append(entries, models.BreakdownEntry{
			Band:          e.Band,
			Rate:          decimal.NewFromFloat(e.Rate),
			TaxableAmount: decimal.NewFromFloat(e.TaxableAmount),
			TaxDue:        due,
		})
		taxDue = taxDue.Add(due)
	}

	run.result.TaxDue = taxDue
	run.result.Breakdown = entries
	run.result.EffectiveRate = shared.EffectiveRate(taxDue, run.taxable.Income)
	return nil
}

func (p *PIT) computeLocal(run *pitRun) {
	res := bands.Compute(run.taxable.Income, run.table.Bands)
	run.result.TaxDue = res.Total
	run.result.Breakdown = res.Entries
	run.result.EffectiveRate = shared.EffectiveRate(res.Total, run.taxable.Income)
}
