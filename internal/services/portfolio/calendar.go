package portfolio

import (
	"context"
	"time"

	"github.com/bobmcallan/folio/internal/models"
)

// GetIncomeCalendar computes per-month income across all positions for a
// rolling window of months starting at from, reconciling dividend forecasts
// against realized payments.
func (s *Service) GetIncomeCalendar(ctx context.Context, from time.Time, months int) ([]models.MonthIncome, error) {
	txs, defs, err := s.loadInputs(ctx)
	if err != nil {
		return nil, err
	}

	if months < 1 {
		months = 1
	}

	defsByID := make(map[string]*models.AssetDefinition, len(defs))
	for _, d := range defs {
		defsByID[d.ID] = d
	}

	// Group the transaction log by asset key once; each month replays the
	// per-asset slice up to its month end.
	txsByKey := make(map[models.AssetKey][]*models.Transaction)
	keyOrder := make([]models.AssetKey, 0)
	for _, t := range txs {
		key := models.KeyForTransaction(t)
		if _, ok := txsByKey[key]; !ok {
			keyOrder = append(keyOrder, key)
		}
		txsByKey[key] = append(txsByKey[key], t)
	}

	horizon := models.DayOf(s.now()).AddDate(s.cfg.ForecastHorizonYears, 0, 0)

	start := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	calendar := make([]models.MonthIncome, 0, months)

	for i := 0; i < months; i++ {
		monthStart := start.AddDate(0, i, 0)
		mi := models.MonthIncome{
			Year:  monthStart.Year(),
			Month: int(monthStart.Month()),
		}

		var forecastTotal float64
		for _, key := range keyOrder {
			def := defsByID[key.ID]
			pi := positionIncomeForMonth(def, key, txsByKey[key], mi.Year, mi.Month, horizon)
			if pi.Income == 0 {
				continue
			}
			mi.TotalIncome += pi.Income
			if pi.IsForecast {
				mi.HasForecast = true
				forecastTotal += pi.ForecastAmount
			}
			mi.Positions = append(mi.Positions, pi)
		}

		mi.TotalIncome = models.SanitizeNumber(mi.TotalIncome)
		if mi.TotalIncome > 0 {
			mi.ForecastShare = models.SanitizeNumber(forecastTotal / mi.TotalIncome)
		}
		calendar = append(calendar, mi)
	}

	return calendar, nil
}

// positionIncomeForMonth computes one position's income contribution for a
// calendar month. The quantity used is what the position actually held at
// month end, found by replaying its transactions up to that date.
func positionIncomeForMonth(def *models.AssetDefinition, key models.AssetKey, txs []*models.Transaction, year, month int, horizon time.Time) models.PositionIncome {
	pi := models.PositionIncome{AssetDefinitionID: key.ID}
	if def != nil {
		pi.Name = def.Name
	} else if len(txs) > 0 {
		pi.Name = txs[0].Name
	}

	monthEnd := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, 0).Add(-time.Nanosecond)

	quantity := quantityHeldAsOf(txs, monthEnd)
	if quantity <= 0 {
		return pi
	}

	pi.Income = MonthlyIncome(def, quantity)

	// Forecast overlay applies to stocks only: projected payments for this
	// exact month are added unless a realized dividend already covers it —
	// actuals always win over forecasts, never summed.
	if def != nil && def.Type == models.AssetTypeStock && def.DividendInfo != nil {
		monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		if !monthStart.After(horizon) && !hasRealizedDividend(def.DividendInfo, year, month) {
			var forecast float64
			for _, f := range def.DividendInfo.Forecast {
				if f.Year == year && f.Month == month {
					forecast += models.SanitizeNumber(f.Amount) * quantity
				}
			}
			forecast = models.SanitizeNumber(forecast)
			if forecast > 0 {
				pi.Income = models.SanitizeNumber(pi.Income + forecast)
				pi.IsForecast = true
				pi.ForecastAmount = forecast
			}
		}
	}

	pi.Income = models.SanitizeNumber(pi.Income)
	return pi
}

// quantityHeldAsOf replays a position's transactions up to cutoff: buys add,
// sells subtract.
func quantityHeldAsOf(txs []*models.Transaction, cutoff time.Time) float64 {
	var quantity float64
	for _, t := range txs {
		if t.Date.After(cutoff) {
			continue
		}
		quantity += t.SignedQuantity()
	}
	return quantity
}

// hasRealizedDividend reports whether a dividend was actually paid in the
// exact month/year with a positive amount.
func hasRealizedDividend(info *models.DividendInfo, year, month int) bool {
	for _, e := range info.History {
		if e.Year == year && e.Month == month && e.Amount > 0 {
			return true
		}
	}
	return false
}
