package corporate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"taxcalc/internal/tax/ratetable"
)

var business = ratetable.Business{
	CITRate:             decimal.RequireFromString("0.30"),
	DevelopmentLevyRate: decimal.RequireFromString("0.04"),
	CGTCompanyRate:      decimal.RequireFromString("0.30"),
}

func TestComputeCIT(t *testing.T) {
	t.Run("fifty million profit", func(t *testing.T) {
		got := ComputeCIT(decimal.NewFromInt(50_000_000), business, true)
		assert.True(t, got.CITDue.Equal(decimal.NewFromInt(15_000_000)))
		assert.True(t, got.DevelopmentLevy.Equal(decimal.NewFromInt(2_000_000)))
		assert.True(t, got.Total.Equal(decimal.NewFromInt(17_000_000)))
	})

	t.Run("without levy", func(t *testing.T) {
		got := ComputeCIT(decimal.NewFromInt(1_000), business, false)
		assert.True(t, got.CITDue.Equal(decimal.NewFromInt(300)))
		assert.True(t, got.DevelopmentLevy.IsZero())
		assert.True(t, got.Total.Equal(decimal.NewFromInt(300)))
	})

	t.Run("loss yields zero", func(t *testing.T) {
		got := ComputeCIT(decimal.NewFromInt(-5), business, true)
		assert.True(t, got.Total.IsZero())
	})

	t.Run("components rounded before summing", func(t *testing.T) {
		got := ComputeCIT(decimal.NewFromInt(13), business, true)
		assert.True(t, got.CITDue.Equal(decimal.NewFromInt(4)))
		assert.True(t, got.DevelopmentLevy.Equal(decimal.NewFromInt(1)))
		assert.True(t, got.Total.Equal(decimal.NewFromInt(5)))
	})
}

func TestComputeCGT(t *testing.T) {
	assert.True(t, ComputeCGT(decimal.NewFromInt(10_000_000), business).Equal(decimal.NewFromInt(3_000_000)))
	assert.True(t, ComputeCGT(decimal.Zero, business).IsZero())
}
