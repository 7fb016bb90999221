package portfolio

import (
	"context"
	"sort"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
)

// assetTimeline holds one asset's timestamped prices within the intraday
// window plus its full history for whole-day fallback.
type assetTimeline struct {
	def        *models.AssetDefinition
	timestamps []time.Time // ascending
	prices     map[time.Time]float64
}

// GetIntraday reconstructs the same-day portfolio value series from
// timestamped price entries in the trailing window.
func (s *Service) GetIntraday(ctx context.Context) ([]models.IntradayPoint, error) {
	txs, defs, err := s.loadInputs(ctx)
	if err != nil {
		return nil, err
	}

	positions := AggregatePositions(txs, defs, s.logger)
	return AggregateIntraday(defs, positions, IntradayOptions{
		Now:         s.now(),
		WindowDays:  s.cfg.IntradayWindowDays,
		MinCoverage: s.cfg.IntradayCoveragePct,
	}, s.logger), nil
}

// IntradayOptions tunes intraday aggregation.
type IntradayOptions struct {
	Now        time.Time
	WindowDays int
	// MinCoverage is the fraction (0..1) of positions that must be priced at
	// a timestamp before its point is published. Partial-coverage points are
	// misleading on a chart, so they are dropped entirely.
	MinCoverage float64
}

// AggregateIntraday computes portfolio value at each distinct intraday
// timestamp across all assets. Pure.
func AggregateIntraday(defs []*models.AssetDefinition, positions []models.Position, opts IntradayOptions, logger *common.Logger) []models.IntradayPoint {
	if len(positions) == 0 {
		return []models.IntradayPoint{}
	}

	windowStart := models.DayOf(opts.Now).AddDate(0, 0, -(opts.WindowDays - 1))

	timelines := make(map[string]*assetTimeline, len(defs))
	timestampSet := make(map[time.Time]struct{})

	for _, d := range defs {
		tl := &assetTimeline{def: d, prices: make(map[time.Time]float64)}
		for _, p := range d.PriceHistory {
			if !p.HasTime() || !models.IsValidPrice(p.Price) {
				continue
			}
			ts, ok := p.Timestamp()
			if !ok || ts.Before(windowStart) || ts.After(opts.Now) {
				continue
			}
			if _, seen := tl.prices[ts]; !seen {
				tl.timestamps = append(tl.timestamps, ts)
			}
			tl.prices[ts] = p.Price
			timestampSet[ts] = struct{}{}
		}
		sort.Slice(tl.timestamps, func(i, j int) bool { return tl.timestamps[i].Before(tl.timestamps[j]) })
		timelines[d.ID] = tl
	}

	if len(timestampSet) == 0 {
		return []models.IntradayPoint{}
	}

	timestamps := make([]time.Time, 0, len(timestampSet))
	for ts := range timestampSet {
		timestamps = append(timestamps, ts)
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i].Before(timestamps[j]) })

	points := make([]models.IntradayPoint, 0, len(timestamps))
	for _, ts := range timestamps {
		total := 0.0
		covered := 0

		for _, pos := range positions {
			tl := timelines[pos.AssetDefinitionID]
			if tl == nil {
				continue
			}
			price, ok := priceAtTimestamp(tl, ts)
			if !ok {
				continue
			}
			total += pos.TotalQuantity * price
			covered++
		}

		coverage := float64(covered) / float64(len(positions))
		total = models.SanitizeNumber(total)

		if coverage < opts.MinCoverage || !models.IsValidPrice(total) {
			logger.Debug().
				Time("timestamp", ts).
				Float64("coverage", coverage).
				Msg("Intraday point rejected below coverage gate")
			continue
		}

		points = append(points, models.IntradayPoint{
			Timestamp:  ts,
			TotalValue: total,
			Coverage:   coverage,
		})
	}

	return points
}

// priceAtTimestamp resolves an asset's price at a timestamp: exact match
// first, then the nearest earlier timestamp for the same asset, then the
// nearest earlier whole-day price.
func priceAtTimestamp(tl *assetTimeline, ts time.Time) (float64, bool) {
	if price, ok := tl.prices[ts]; ok {
		return price, true
	}

	// Nearest earlier intraday timestamp.
	idx := sort.Search(len(tl.timestamps), func(i int) bool {
		return tl.timestamps[i].After(ts)
	})
	if idx > 0 {
		return tl.prices[tl.timestamps[idx-1]], true
	}

	// Whole-day fallback: most recent daily price at or before the timestamp's day.
	if price, ok := latestPriceAtOrBefore(tl.def.PriceHistory, models.DayOf(ts).Format(dayFormat), false); ok {
		return price, true
	}

	return 0, false
}
