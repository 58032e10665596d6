package relief

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"taxcalc/internal/tax/ratetable"
	dErrors "taxcalc/pkg/domain-errors"
)

type ReliefSuite struct {
	suite.Suite
	cfg ratetable.Reliefs
}

func TestReliefSuite(t *testing.T) {
	suite.Run(t, new(ReliefSuite))
}

func (s *ReliefSuite) SetupTest() {
	s.cfg = ratetable.Reliefs{
		RentRate: decimal.RequireFromString("0.20"),
		RentCap:  decimal.NewFromInt(500_000),
	}
}

func n(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func (s *ReliefSuite) TestEvaluate() {
	s.Run("rent relief is a fifth of rent", func() {
		res := Evaluate(Input{AnnualRent: n(1_200_000)}, s.cfg)
		s.Require().Len(res.Items, 1)
		s.Equal("Rent Relief (20% of rent, max ₦500,000)", res.Items[0].Name)
		s.True(res.Items[0].Amount.Equal(n(240_000)))
		s.True(res.Total.Equal(n(240_000)))
	})

	s.Run("rent relief is capped", func() {
		res := Evaluate(Input{AnnualRent: n(5_000_000)}, s.cfg)
		s.True(res.Total.Equal(n(500_000)))
	})

	s.Run("other reliefs at face value", func() {
		res := Evaluate(Input{
			AnnualRent:    n(1_000_000),
			Pension:       n(150_000),
			LifeInsurance: n(40_000),
			HousingFund:   n(25_000),
		}, s.cfg)
		s.Require().Len(res.Items, 4)
		s.Equal(NamePension, res.Items[1].Name)
		s.Equal(NameLifeInsurance, res.Items[2].Name)
		s.Equal(NameHousingFund, res.Items[3].Name)
		s.True(res.Total.Equal(n(415_000)))
	})

	s.Run("zero reliefs are omitted", func() {
		res := Evaluate(Input{Pension: n(10_000)}, s.cfg)
		s.Require().Len(res.Items, 1)
		s.Equal(NamePension, res.Items[0].Name)
	})

	s.Run("no reliefs", func() {
		res := Evaluate(Input{}, s.cfg)
		s.Empty(res.Items)
		s.True(res.Total.IsZero())
	})
}

func (s *ReliefSuite) TestTaxableIncome() {
	s.Run("gross minus reliefs", func() {
		got := TaxableIncome(n(2_000_000), Input{AnnualRent: n(2_500_000)}, s.cfg)
		s.True(got.Income.Equal(n(1_500_000)))
		s.True(got.Reliefs.Total.Equal(n(500_000)))
	})

	s.Run("floored at zero", func() {
		got := TaxableIncome(n(100_000), Input{Pension: n(300_000)}, s.cfg)
		s.True(got.Income.IsZero())
	})
}

func (s *ReliefSuite) TestValidate() {
	s.NoError(Input{}.Validate())

	err := Input{LifeInsurance: n(-1)}.Validate()
	s.Require().Error(err)
	s.True(dErrors.IsValidation(err))
	s.Contains(err.Error(), "life insurance")
}
