package shared

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "taxcalc/pkg/domain-errors"
)

func TestRound(t *testing.T) {
	assert.True(t, Round(decimal.RequireFromString("8999.85")).Equal(decimal.NewFromInt(9000)))
	assert.True(t, Round(decimal.RequireFromString("0.5")).Equal(decimal.NewFromInt(1)))
	assert.True(t, Round(decimal.RequireFromString("10.49")).Equal(decimal.NewFromInt(10)))
}

func TestEffectiveRate(t *testing.T) {
	t.Run("zero base yields zero", func(t *testing.T) {
		assert.True(t, EffectiveRate(decimal.NewFromInt(100), decimal.Zero).IsZero())
	})

	t.Run("percentage of base", func(t *testing.T) {
		got := EffectiveRate(decimal.NewFromInt(17_000_000), decimal.NewFromInt(50_000_000))
		assert.Equal(t, "34", got.String())
	})

	t.Run("rounded to two places", func(t *testing.T) {
		got := EffectiveRate(decimal.NewFromInt(67_400), decimal.NewFromInt(1_500_000))
		assert.Equal(t, "4.49", got.String())
	})
}

func TestRequireNonNegative(t *testing.T) {
	require.NoError(t, RequireNonNegative("income", decimal.Zero))

	err := RequireNonNegative("income", decimal.NewFromInt(-1))
	require.Error(t, err)
	assert.True(t, dErrors.IsValidation(err))
	assert.Equal(t, "income cannot be negative", err.Error())
}

func TestFormatNaira(t *testing.T) {
	assert.Equal(t, "₦1,800,000", FormatNaira(decimal.NewFromInt(1_800_000)))
	assert.Equal(t, "₦0", FormatNaira(decimal.Zero))
	assert.Equal(t, "₦1,001", FormatNaira(decimal.RequireFromString("1000.6")))
	assert.Equal(t, "₦100M", FormatNairaShort(decimal.NewFromInt(100_000_000)))
	assert.Equal(t, "₦2B", FormatNairaShort(decimal.NewFromInt(2_000_000_000)))
	assert.Equal(t, "₦1,500,000", FormatNairaShort(decimal.NewFromInt(1_500_000)))
}

func TestParseState(t *testing.T) {
	got, err := ParseState("")
	require.NoError(t, err)
	assert.Equal(t, DefaultState, got)

	got, err = ParseState("  lagos ")
	require.NoError(t, err)
	assert.Equal(t, "Lagos", got)

	got, err = ParseState("AKWA IBOM")
	require.NoError(t, err)
	assert.Equal(t, "Akwa Ibom", got)

	_, err = ParseState("Atlantis")
	assert.True(t, dErrors.IsValidation(err))
}
