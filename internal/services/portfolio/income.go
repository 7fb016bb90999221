package portfolio

import (
	"github.com/bobmcallan/folio/internal/models"
)

// MonthlyIncome computes one month's income contribution for holding the given
// quantity of an asset. Dispatches on asset type; every intermediate result is
// sanitized so a NaN or Inf can never leak into portfolio totals.
func MonthlyIncome(def *models.AssetDefinition, quantity float64) float64 {
	if def == nil {
		return 0
	}

	switch def.Type {
	case models.AssetTypeStock:
		return models.SanitizeNumber(dividendMonthlyPerShare(def.DividendInfo) * quantity)

	case models.AssetTypeBond, models.AssetTypeCash:
		if def.BondInfo == nil {
			return 0
		}
		currentValue := quantity * def.CurrentPrice
		return models.SanitizeNumber(def.BondInfo.InterestRate * currentValue / 100 / 12)

	case models.AssetTypeRealEstate:
		if def.RentalInfo == nil {
			return 0
		}
		// BaseRent is already a monthly figure for the whole property; it is
		// not scaled by quantity.
		return models.SanitizeNumber(def.RentalInfo.BaseRent)

	default:
		return 0
	}
}

// AnnualIncome is the monthly figure over a full year.
func AnnualIncome(def *models.AssetDefinition, quantity float64) float64 {
	return models.SanitizeNumber(MonthlyIncome(def, quantity) * 12)
}

// dividendMonthlyPerShare normalizes a dividend schedule to a per-share
// monthly amount. Unknown or absent frequencies yield 0.
func dividendMonthlyPerShare(info *models.DividendInfo) float64 {
	if info == nil || info.Frequency == "" || info.Frequency == models.FrequencyNone {
		return 0
	}

	var monthly float64
	switch info.Frequency {
	case models.FrequencyMonthly:
		monthly = info.Amount
	case models.FrequencyQuarterly:
		monthly = info.Amount / 3
	case models.FrequencyAnnually:
		monthly = info.Amount / 12
	case models.FrequencyCustom:
		var total float64
		for month, amount := range info.CustomAmounts {
			if month < 1 || month > 12 {
				continue
			}
			total += models.SanitizeNumber(amount)
		}
		monthly = total / 12
	default:
		return 0
	}

	return models.SanitizeNumber(monthly)
}
