package orchestrator

//go:generate mockgen -source=orchestrator.go -destination=mocks/mocks.go -package=mocks Calculator

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"taxcalc/internal/tax/domain/relief"
	"taxcalc/internal/tax/metrics"
	"taxcalc/internal/tax/orchestrator/mocks"
	"taxcalc/internal/tax/ratetable"
	"taxcalc/internal/tax/remote"
	dErrors "taxcalc/pkg/domain-errors"
)

func n(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

var unreachable = remote.NewError(remote.CategoryNetwork, remote.EndpointPIT, "request failed", io.ErrUnexpectedEOF)

type OrchestratorSuite struct {
	suite.Suite
	ctx      context.Context
	ctrl     *gomock.Controller
	calc     *mocks.MockCalculator
	metrics  *metrics.Metrics
	pit      *PIT
	business *Business
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func (s *OrchestratorSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.calc = mocks.NewMockCalculator(s.ctrl)
	s.metrics = metrics.NewWithRegistry(prometheus.NewRegistry())

	rates, err := ratetable.Load(0, "")
	s.Require().NoError(err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts := []Option{WithLogger(logger), WithMetrics(s.metrics)}
	s.pit = NewPIT(rates, s.calc, opts...)
	s.business = NewBusiness(rates, s.calc, opts...)
}

func (s *OrchestratorSuite) TearDownTest() {
	s.ctrl.Finish()
}

func remotePIT() *remote.PITResponse {
	return &remote.PITResponse{
		AnnualTaxableIncome: 1_500_000,
		PITBreakdown: []remote.BreakdownEntry{
			{Band: "₦0 - ₦800,000", Rate: 0, TaxableAmount: 800_000, TaxDue: 0},
			{Band: "₦800,001 - ₦1,100,000", Rate: 0.07, TaxableAmount: 300_000, TaxDue: 21_000},
			{Band: "₦1,100,001 - ₦1,440,000", Rate: 0.11, TaxableAmount: 340_000, TaxDue: 37_400},
			{Band: "₦1,440,001 - ₦1,800,000", Rate: 0.15, TaxableAmount: 60_000, TaxDue: 9_000},
		},
		TotalPITDue: 67_400,
	}
}

func (s *OrchestratorSuite) TestPIT_RemoteSuccess() {
	s.calc.EXPECT().CalculatePIT(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req remote.PITRequest) (*remote.PITResponse, error) {
			s.Equal(1_500_000.0, req.AnnualTaxableIncome, "taxable, not gross, income is sent")
			s.Equal("Lagos", req.StateOfResidence)
			s.Equal(remote.EmploymentMixed, req.TaxpayerProfile.EmploymentStatus)
			return remotePIT(), nil
		})

	got, err := s.pit.Calculate(s.ctx, IndividualInput{
		GrossIncome: n(2_000_000),
		Reliefs:     relief.Input{AnnualRent: n(2_500_000)},
		State:       "lagos",
	})
	s.Require().NoError(err)
	s.False(got.UsingFallback)

	r := got.Result
	s.Equal(2026, r.TaxYear)
	s.True(r.GrossIncome.Equal(n(2_000_000)))
	s.True(r.TotalReliefs.Equal(n(500_000)))
	s.True(r.TaxableIncome.Equal(n(1_500_000)))
	s.True(r.TaxDue.Equal(n(67_400)))
	s.Equal("4.49", r.EffectiveRate.String())
	s.Len(r.Breakdown, 4)
	s.Len(r.ReliefBreakdown, 1)
	s.Equal("Lagos", r.State)
	s.False(r.IsExempt)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CalculationsTotal.WithLabelValues(kindPIT, metrics.SourceRemote)))
}

func (s *OrchestratorSuite) TestPIT_RemoteUnreachableFallsBack() {
	s.calc.EXPECT().CalculatePIT(gomock.Any(), gomock.Any()).Return(nil, unreachable)

	got, err := s.pit.Calculate(s.ctx, IndividualInput{GrossIncome: n(1_500_000)})
	s.Require().NoError(err)
	s.True(got.UsingFallback)

	r := got.Result
	s.True(r.TaxDue.Equal(n(67_400)), "fallback must match the remote figure, got %s", r.TaxDue)
	s.Require().Len(r.Breakdown, 4)
	sum := decimal.Zero
	for _, e := range r.Breakdown {
		sum = sum.Add(e.TaxDue)
	}
	s.True(sum.Equal(r.TaxDue))
	s.Equal("FCT", r.State)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CalculationsTotal.WithLabelValues(kindPIT, metrics.SourceLocal)))
}

func (s *OrchestratorSuite) TestPIT_InvalidRemoteResponseFallsBack() {
	tests := []struct {
		name string
		resp *remote.PITResponse
	}{
		{"nil response", nil},
		{"empty breakdown", &remote.PITResponse{TotalPITDue: 67_400}},
		{"total disagrees with breakdown", func() *remote.PITResponse {
			r := remotePIT()
			r.TotalPITDue = 1
			return r
		}()},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.calc.EXPECT().CalculatePIT(gomock.Any(), gomock.Any()).Return(tt.resp, nil)

			got, err := s.pit.Calculate(s.ctx, IndividualInput{GrossIncome: n(1_500_000)})
			s.Require().NoError(err)
			s.True(got.UsingFallback)
			s.True(got.Result.TaxDue.Equal(n(67_400)))
		})
	}
}

func (s *OrchestratorSuite) TestPIT_RemoteTotalIsSumOfRoundedBands() {
	s.calc.EXPECT().CalculatePIT(gomock.Any(), gomock.Any()).Return(&remote.PITResponse{
		AnnualTaxableIncome: 1_500_000,
		PITBreakdown: []remote.BreakdownEntry{
			{Band: "₦0 - ₦800,000", Rate: 0, TaxableAmount: 800_000, TaxDue: 0},
			{Band: "₦800,001 - ₦1,100,000", Rate: 0.07, TaxableAmount: 300_000, TaxDue: 21_000.4},
			{Band: "₦1,100,001 - ₦1,440,000", Rate: 0.11, TaxableAmount: 340_000, TaxDue: 37_400.4},
		},
		TotalPITDue: 58_400.8,
	}, nil)

	got, err := s.pit.Calculate(s.ctx, IndividualInput{GrossIncome: n(1_500_000)})
	s.Require().NoError(err)
	s.False(got.UsingFallback)

	sum := decimal.Zero
	for _, e := range got.Result.Breakdown {
		s.True(e.TaxDue.Equal(e.TaxDue.Round(0)), "band tax %s not whole naira", e.TaxDue)
		sum = sum.Add(e.TaxDue)
	}
	s.True(got.Result.TaxDue.Equal(n(58_400)), "got %s", got.Result.TaxDue)
	s.True(sum.Equal(got.Result.TaxDue))
}

func (s *OrchestratorSuite) TestPIT_OutOfRangeRemoteFallsBack() {
	tests := []struct {
		name   string
		mutate func(r *remote.PITResponse)
	}{
		{"rate above one", func(r *remote.PITResponse) {
			r.PITBreakdown = []remote.BreakdownEntry{{Band: "all", Rate: 5, TaxableAmount: 1_500_000, TaxDue: 45_000_000}}
			r.TotalPITDue = 45_000_000
		}},
		{"band tax above its share", func(r *remote.PITResponse) {
			r.PITBreakdown[1].TaxDue = 200_000
			r.TotalPITDue = 246_400
		}},
		{"bands cover more than the income sent", func(r *remote.PITResponse) {
			r.PITBreakdown[0].TaxableAmount = 5_000_000
		}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp := remotePIT()
			tt.mutate(resp)
			s.calc.EXPECT().CalculatePIT(gomock.Any(), gomock.Any()).Return(resp, nil)

			got, err := s.pit.Calculate(s.ctx, IndividualInput{GrossIncome: n(1_500_000)})
			s.Require().NoError(err)
			s.True(got.UsingFallback)
			s.True(got.Result.TaxDue.Equal(n(67_400)))
		})
	}
}

func (s *OrchestratorSuite) TestPIT_ExemptSkipsRemote() {
	// no CalculatePIT expectation: a call fails the test
	got, err := s.pit.Calculate(s.ctx, IndividualInput{
		GrossIncome: n(1_000_000),
		Reliefs:     relief.Input{Pension: n(250_000)},
	})
	s.Require().NoError(err)
	s.False(got.UsingFallback)
	s.True(got.Result.IsExempt)
	s.True(got.Result.TaxDue.IsZero())
	s.Empty(got.Result.Breakdown)
	s.True(got.Result.EffectiveRate.IsZero())
	s.True(got.Result.TaxableIncome.Equal(n(750_000)))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CalculationsTotal.WithLabelValues(kindPIT, metrics.SourceExempt)))
}

func (s *OrchestratorSuite) TestPIT_ValidationErrors() {
	tests := []struct {
		name string
		in   IndividualInput
	}{
		{"negative income", IndividualInput{GrossIncome: n(-1)}},
		{"negative relief", IndividualInput{GrossIncome: n(1), Reliefs: relief.Input{Pension: n(-5)}}},
		{"unknown state", IndividualInput{GrossIncome: n(1), State: "Gotham"}},
		{"unsupported year", IndividualInput{GrossIncome: n(1), TaxYear: 1999}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			got, err := s.pit.Calculate(s.ctx, tt.in)
			s.Nil(got)
			s.Require().Error(err)
			s.True(dErrors.IsValidation(err), "got %v", err)
		})
	}
}

func (s *OrchestratorSuite) TestBusiness_ExemptSkipsRemote() {
	got, err := s.business.Calculate(s.ctx, BusinessInput{
		Profit:   n(50_000_000),
		Turnover: n(80_000_000),
		Assets:   n(100_000_000),
	})
	s.Require().NoError(err)
	s.False(got.UsingFallback)

	r := got.Result
	s.True(r.IsExempt)
	s.True(r.TotalTaxDue.IsZero())
	s.True(r.EffectiveRate.IsZero())
	s.Len(r.Exemption.Reasons, 2)
	s.Equal("small", string(r.CompanyType))
}

func (s *OrchestratorSuite) TestBusiness_RemoteSuccess() {
	s.calc.EXPECT().CalculateCIT(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req remote.CITRequest) (*remote.CITResponse, error) {
			s.Equal(50_000_000.0, req.AnnualProfit)
			s.Equal("medium", req.CompanyType)
			s.Equal(2026, req.TaxYear)
			return &remote.CITResponse{CITDue: 15_000_000, DevelopmentLevyDue: 2_000_000, TotalTaxDue: 17_000_000}, nil
		})
	s.calc.EXPECT().CalculateCGT(gomock.Any(), gomock.Any()).
		Return(&remote.CGTResponse{CGTDue: 3_000_000}, nil)

	got, err := s.business.Calculate(s.ctx, BusinessInput{
		Profit:       n(50_000_000),
		CapitalGains: n(10_000_000),
		Turnover:     n(150_000_000),
	})
	s.Require().NoError(err)
	s.False(got.UsingFallback)

	r := got.Result
	s.True(r.CITDue.Equal(n(15_000_000)))
	s.True(r.DevelopmentLevy.Equal(n(2_000_000)))
	s.True(r.CGTDue.Equal(n(3_000_000)))
	s.True(r.TotalTaxDue.Equal(n(20_000_000)))
	s.Equal("40", r.EffectiveRate.String())
}

func (s *OrchestratorSuite) TestBusiness_RemoteFailureFallsBack() {
	s.calc.EXPECT().CalculateCIT(gomock.Any(), gomock.Any()).
		Return(nil, remote.NewError(remote.CategoryServerError, remote.EndpointCIT, "unexpected status (503)", nil))

	got, err := s.business.Calculate(s.ctx, BusinessInput{
		Profit:   n(50_000_000),
		Turnover: n(150_000_000),
	})
	s.Require().NoError(err)
	s.True(got.UsingFallback)

	r := got.Result
	s.False(r.IsExempt)
	s.True(r.CITDue.Equal(n(15_000_000)))
	s.True(r.DevelopmentLevy.Equal(n(2_000_000)))
	s.True(r.CGTDue.IsZero())
	s.True(r.TotalTaxDue.Equal(n(17_000_000)))
	s.Equal("34", r.EffectiveRate.String())
}

func (s *OrchestratorSuite) TestBusiness_OnlyCGTFallsBack() {
	s.calc.EXPECT().CalculateCIT(gomock.Any(), gomock.Any()).
		Return(&remote.CITResponse{CITDue: 15_000_000, DevelopmentLevyDue: 2_000_000, TotalTaxDue: 17_000_000}, nil)
	s.calc.EXPECT().CalculateCGT(gomock.Any(), gomock.Any()).
		Return(nil, remote.NewError(remote.CategoryTimeout, remote.EndpointCGT, "request timeout", nil))

	got, err := s.business.Calculate(s.ctx, BusinessInput{
		Profit:       n(50_000_000),
		CapitalGains: n(10_000_000),
		Turnover:     n(150_000_000),
	})
	s.Require().NoError(err)
	s.True(got.UsingFallback)
	s.True(got.Result.CGTDue.Equal(n(3_000_000)))
	s.True(got.Result.TotalTaxDue.Equal(n(20_000_000)))
}

func (s *OrchestratorSuite) TestBusiness_InvalidCITResponseFallsBack() {
	s.calc.EXPECT().CalculateCIT(gomock.Any(), gomock.Any()).
		Return(&remote.CITResponse{CITDue: 15_000_000, DevelopmentLevyDue: 2_000_000, TotalTaxDue: 10}, nil)

	got, err := s.business.Calculate(s.ctx, BusinessInput{Profit: n(50_000_000), Turnover: n(150_000_000)})
	s.Require().NoError(err)
	s.True(got.UsingFallback)
	s.True(got.Result.TotalTaxDue.Equal(n(17_000_000)))
}

func (s *OrchestratorSuite) TestBusiness_OutOfRangeCITFallsBack() {
	tests := []struct {
		name string
		resp *remote.CITResponse
	}{
		{"total above parts", &remote.CITResponse{CITDue: 15_000_000, DevelopmentLevyDue: 2_000_000, TotalTaxDue: 40_000_000}},
		{"total above profit", &remote.CITResponse{CITDue: 60_000_000, DevelopmentLevyDue: 0, TotalTaxDue: 60_000_000}},
		{"rate above one", &remote.CITResponse{CITRate: 30, CITDue: 15_000_000, DevelopmentLevyDue: 2_000_000, TotalTaxDue: 17_000_000}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.calc.EXPECT().CalculateCIT(gomock.Any(), gomock.Any()).Return(tt.resp, nil)

			got, err := s.business.Calculate(s.ctx, BusinessInput{Profit: n(50_000_000), Turnover: n(150_000_000)})
			s.Require().NoError(err)
			s.True(got.UsingFallback)
			s.True(got.Result.TotalTaxDue.Equal(n(17_000_000)))
		})
	}
}

func (s *OrchestratorSuite) TestBusiness_CGTAboveGainFallsBackLocally() {
	s.calc.EXPECT().CalculateCIT(gomock.Any(), gomock.Any()).
		Return(&remote.CITResponse{CITDue: 15_000_000, DevelopmentLevyDue: 2_000_000, TotalTaxDue: 17_000_000}, nil)
	s.calc.EXPECT().CalculateCGT(gomock.Any(), gomock.Any()).
		Return(&remote.CGTResponse{CGTDue: 25_000_000}, nil)

	got, err := s.business.Calculate(s.ctx, BusinessInput{
		Profit:       n(50_000_000),
		CapitalGains: n(10_000_000),
		Turnover:     n(150_000_000),
	})
	s.Require().NoError(err)
	s.True(got.UsingFallback)
	s.True(got.Result.CGTDue.Equal(n(3_000_000)))
	s.True(got.Result.TotalTaxDue.Equal(n(20_000_000)))
}

func (s *OrchestratorSuite) TestBusiness_ZeroProfit() {
	s.calc.EXPECT().CalculateCIT(gomock.Any(), gomock.Any()).Return(nil, unreachable)

	got, err := s.business.Calculate(s.ctx, BusinessInput{Turnover: n(150_000_000)})
	s.Require().NoError(err)
	s.True(got.Result.TotalTaxDue.IsZero())
	s.True(got.Result.EffectiveRate.IsZero())
}

func (s *OrchestratorSuite) TestBusiness_ValidationErrors() {
	for _, in := range []BusinessInput{
		{Profit: n(-1)},
		{CapitalGains: n(-1)},
		{Turnover: n(-1)},
		{Assets: n(-1)},
		{TaxYear: 2001},
	} {
		_, err := s.business.Calculate(s.ctx, in)
		s.True(dErrors.IsValidation(err), "input %+v: got %v", in, err)
	}
}
