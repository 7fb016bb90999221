package portfolio

import (
	"context"
	"sort"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// positionState is the running replay state for one asset.
type positionState struct {
	Quantity    float64
	AvgBuyPrice float64
}

// positionLedger is an immutable snapshot of replay state keyed by asset.
// Each fold step returns a fresh ledger, leaving earlier snapshots untouched.
type positionLedger map[models.AssetKey]positionState

// step replays one day's transactions against the ledger and returns a new
// snapshot. Buys re-base the average buy price by weighted average; sells
// reduce quantity, floored at 0 — a sell can never drive a position negative
// during replay.
func (l positionLedger) step(txs []*models.Transaction) positionLedger {
	next := make(positionLedger, len(l)+len(txs))
	for k, v := range l {
		next[k] = v
	}

	for _, t := range txs {
		key := models.KeyForTransaction(t)
		state := next[key]

		switch t.Kind {
		case models.TransactionBuy:
			cost := t.GrossValue() + t.TransactionCosts
			newQty := state.Quantity + t.Quantity
			if newQty > 0 {
				state.AvgBuyPrice = (state.Quantity*state.AvgBuyPrice + cost) / newQty
			}
			state.Quantity = newQty
		case models.TransactionSell:
			state.Quantity -= t.Quantity
			if state.Quantity < 0 {
				state.Quantity = 0
			}
		}

		state.AvgBuyPrice = models.SanitizeNumber(state.AvgBuyPrice)
		next[key] = state
	}

	return next
}

// GetHistory reconstructs the portfolio value time series. Results are
// memoized against a content fingerprint of the inputs plus the storage
// generation, so unrelated re-requests do not trigger recomputation.
func (s *Service) GetHistory(ctx context.Context, opts interfaces.HistoryOptions) ([]models.PortfolioHistoryPoint, error) {
	txs, defs, err := s.loadInputs(ctx)
	if err != nil {
		return nil, err
	}

	today := s.now()

	var points []models.PortfolioHistoryPoint
	cacheKey := historyCacheKey(s.storage.Generation(), txs, defs, today)
	if cached, ok := s.cache.Get(cacheKey); ok {
		points = cached
	} else {
		points = ReconstructHistory(txs, defs, today, s.logger)
		s.cache.Set(cacheKey, points)
	}

	return filterHistory(points, opts), nil
}

// ReconstructHistory walks the union of all transaction dates and price-history
// dates (plus today), replaying buy/sell events in order and valuing the
// resulting positions at each date. Pure.
func ReconstructHistory(txs []*models.Transaction, defs []*models.AssetDefinition, today time.Time, logger *common.Logger) []models.PortfolioHistoryPoint {
	if len(txs) == 0 {
		return []models.PortfolioHistoryPoint{}
	}

	defsByID := make(map[string]*models.AssetDefinition, len(defs))
	for _, d := range defs {
		defsByID[d.ID] = d
	}

	// Union of relevant calendar days.
	daySet := make(map[time.Time]struct{})
	for _, t := range txs {
		daySet[t.Day()] = struct{}{}
	}
	for _, d := range defs {
		for _, p := range d.PriceHistory {
			if ts, ok := p.Timestamp(); ok {
				daySet[models.DayOf(ts)] = struct{}{}
			}
		}
	}
	todayDay := models.DayOf(today)
	daySet[todayDay] = struct{}{}

	days := make([]time.Time, 0, len(daySet))
	for d := range daySet {
		// Price-history days after today contribute nothing yet.
		if d.After(todayDay) {
			continue
		}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	// Transactions grouped by day for the fold.
	txsByDay := make(map[time.Time][]*models.Transaction, len(txs))
	for _, t := range txs {
		day := t.Day()
		txsByDay[day] = append(txsByDay[day], t)
	}
	for _, dayTxs := range txsByDay {
		sort.SliceStable(dayTxs, func(i, j int) bool { return dayTxs[i].Date.Before(dayTxs[j].Date) })
	}

	ledger := make(positionLedger)
	points := make([]models.PortfolioHistoryPoint, 0, len(days))

	for _, day := range days {
		ledger = ledger.step(txsByDay[day])
		points = append(points, valueLedger(ledger, defsByID, day, today, logger))
	}

	return points
}

// valueLedger prices every held position at the given day and sums the
// portfolio totals. Positions whose price cannot be resolved are skipped from
// the value sum for that day rather than zeroed, so a gap in one asset's
// history does not crater the whole curve.
func valueLedger(ledger positionLedger, defsByID map[string]*models.AssetDefinition, day, today time.Time, logger *common.Logger) models.PortfolioHistoryPoint {
	point := models.PortfolioHistoryPoint{Date: day}

	keys := make([]models.AssetKey, 0, len(ledger))
	for k := range ledger {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	for _, key := range keys {
		state := ledger[key]
		if state.Quantity <= 0 {
			continue
		}

		invested := models.SanitizeNumber(state.Quantity * state.AvgBuyPrice)
		hp := models.HistoricPosition{
			AssetDefinitionID: key.ID,
			Quantity:          state.Quantity,
			AvgBuyPrice:       state.AvgBuyPrice,
			Invested:          invested,
		}

		var def *models.AssetDefinition
		if key.ID != "" {
			def = defsByID[key.ID]
			if def == nil {
				// Stale reference: definition was removed after the
				// transaction was recorded. Drop the position from valuation.
				logger.Warn().Str("asset", key.ID).Msg("Dropping position with stale asset definition reference")
				continue
			}
		}

		if def != nil {
			price := PriceOn(def, day, today, logger)
			if models.IsValidPrice(price) {
				hp.Value = models.SanitizeNumber(state.Quantity * price)
				hp.PriceResolved = true
				point.TotalValue += hp.Value
			}
		}

		point.TotalInvested += invested
		point.Positions = append(point.Positions, hp)
	}

	point.TotalValue = models.SanitizeNumber(point.TotalValue)
	point.TotalInvested = models.SanitizeNumber(point.TotalInvested)
	point.TotalReturn = models.SanitizeNumber(point.TotalValue - point.TotalInvested)
	if point.TotalInvested != 0 {
		point.TotalReturnPct = models.SanitizeNumber(point.TotalReturn / absFloat(point.TotalInvested) * 100)
	}

	return point
}

// filterHistory applies range and shape options to a computed series.
func filterHistory(points []models.PortfolioHistoryPoint, opts interfaces.HistoryOptions) []models.PortfolioHistoryPoint {
	out := make([]models.PortfolioHistoryPoint, 0, len(points))
	for _, p := range points {
		if !opts.From.IsZero() && p.Date.Before(models.DayOf(opts.From)) {
			continue
		}
		if !opts.To.IsZero() && p.Date.After(models.DayOf(opts.To)) {
			continue
		}
		if !opts.IncludePositions {
			p.Positions = nil
		}
		out = append(out, p)
	}
	return out
}
