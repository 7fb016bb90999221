package portfolio

import (
	"sort"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
)

const dayFormat = "2006-01-02"

// PriceOn resolves the best available price for an asset on a calendar day.
// Resolution order, first success wins:
//  1. A price-history entry dated exactly on the target day.
//  2. If the target day is today and CurrentPrice is valid, CurrentPrice —
//     fresher than any older history entry.
//  3. The most recent history entry dated before the target day.
//  4. CurrentPrice regardless of date (stale, logged as a warning).
//  5. 0 (logged as an error).
//
// A price counts only when finite and strictly positive; zero or negative
// history entries are absent data, not real zero-value events.
func PriceOn(def *models.AssetDefinition, date time.Time, today time.Time, logger *common.Logger) float64 {
	if def == nil {
		return 0
	}

	targetDay := models.DayOf(date).Format(dayFormat)
	todayDay := models.DayOf(today).Format(dayFormat)

	if price, ok := latestPriceAtOrBefore(def.PriceHistory, targetDay, true); ok {
		return price
	}

	if targetDay == todayDay && def.HasValidCurrentPrice() {
		return def.CurrentPrice
	}

	if price, ok := latestPriceAtOrBefore(def.PriceHistory, targetDay, false); ok {
		return price
	}

	if def.HasValidCurrentPrice() {
		logger.Warn().
			Str("asset", def.ID).
			Str("date", targetDay).
			Msg("No historical price at or before date, falling back to current price")
		return def.CurrentPrice
	}

	logger.Error().
		Str("asset", def.ID).
		Str("date", targetDay).
		Msg("No price resolvable for date")
	return 0
}

// latestPriceAtOrBefore finds the most recent valid entry with day <= target.
// When exactOnly is set, only entries dated exactly on the target day match.
// History is scanned via binary search over a day-sorted view.
func latestPriceAtOrBefore(history []models.PricePoint, targetDay string, exactOnly bool) (float64, bool) {
	if len(history) == 0 {
		return 0, false
	}

	sorted := sortedByDay(history)

	// First index whose day is > targetDay; everything before it is eligible.
	idx := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].Day() > targetDay
	})

	for i := idx - 1; i >= 0; i-- {
		entry := sorted[i]
		if exactOnly && entry.Day() != targetDay {
			return 0, false
		}
		if models.IsValidPrice(entry.Price) {
			return entry.Price, true
		}
	}
	return 0, false
}

// sortedByDay returns the history ordered ascending by day, then by intraday
// timestamp, so the last matching entry for a day is its most recent price.
// Input is never mutated.
func sortedByDay(history []models.PricePoint) []models.PricePoint {
	if sort.SliceIsSorted(history, func(i, j int) bool {
		return history[i].Date < history[j].Date
	}) {
		return history
	}
	sorted := make([]models.PricePoint, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})
	return sorted
}
