// Package exemption decides whether individuals and businesses fall outside
// the charge to tax.
package exemption

import (
	"fmt"

	"github.com/shopspring/decimal"

	"taxcalc/internal/tax/domain/shared"
	"taxcalc/internal/tax/models"
	"taxcalc/internal/tax/ratetable"
)

// IsIndividualExempt reports whether income is at or below the individual
// exemption threshold.
func IsIndividualExempt(income decimal.Decimal, t *ratetable.Table) bool {
	return income.LessThanOrEqual(t.IndividualExemptionThreshold)
}

// EvaluateBusiness applies the small-company test. A business is exempt only
// when both turnover and fixed assets are at or under their thresholds; a
// reason is produced for each criterion either way.
func EvaluateBusiness(turnover, assets decimal.Decimal, t *ratetable.Table) models.ExemptionVerdict {
	b := t.Business
	turnoverOK := turnover.LessThanOrEqual(b.TurnoverThreshold)
	assetsOK := assets.LessThanOrEqual(b.AssetsThreshold)

	reasons := make([]string, 0, 2)
	if turnoverOK {
		reasons = append(reasons, fmt.Sprintf("Turnover (%s) is under %s threshold",
			shared.FormatNaira(turnover), shared.FormatNairaShort(b.TurnoverThreshold)))
	} else {
		reasons = append(reasons, fmt.Sprintf("Turnover (%s) exceeds %s threshold",
			shared.FormatNaira(turnover), shared.FormatNairaShort(b.TurnoverThreshold)))
	}
	if assetsOK {
		reasons = append(reasons, fmt.Sprintf("Fixed assets (%s) are under %s threshold",
			shared.FormatNaira(assets), shared.FormatNairaShort(b.AssetsThreshold)))
	} else {
		reasons = append(reasons, fmt.Sprintf("Fixed assets (%s) exceed %s threshold",
			shared.FormatNaira(assets), shared.FormatNairaShort(b.AssetsThreshold)))
	}

	return models.ExemptionVerdict{
		IsExempt:          turnoverOK && assetsOK,
		Reasons:           reasons,
		TurnoverQualified: turnoverOK,
		AssetsQualified:   assetsOK,
	}
}

// CompanyType classifies a business for the remote CIT and CGT endpoints.
// Companies that pass the small-company test are small; all others are
// reported as medium.
func CompanyType(turnover, assets decimal.Decimal, t *ratetable.Table) models.CompanyType {
	if EvaluateBusiness(turnover, assets, t).IsExempt {
		return models.CompanyTypeSmall
	}
	return models.CompanyTypeMedium
}
