package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
)

func TestPriceOnLookBackBeatsCurrentPrice(t *testing.T) {
	logger := common.NewSilentLogger()
	today := day(2024, 6, 10)

	def := &models.AssetDefinition{
		ID:           "a",
		Name:         "Acme",
		Type:         models.AssetTypeStock,
		CurrentPrice: 999,
		PriceHistory: []models.PricePoint{
			{Date: "2024-06-01", Price: 100},
			{Date: "2024-06-03", Price: 105},
		},
	}

	// Target D=2024-06-05 has no entry; D-2 (06-03) must win, not CurrentPrice.
	got := PriceOn(def, day(2024, 6, 5), today, logger)
	assert.Equal(t, 105.0, got)
}

func TestPriceOnExactMatch(t *testing.T) {
	logger := common.NewSilentLogger()
	def := &models.AssetDefinition{
		ID:           "a",
		Name:         "Acme",
		Type:         models.AssetTypeStock,
		CurrentPrice: 999,
		PriceHistory: []models.PricePoint{
			{Date: "2024-06-01", Price: 100},
			{Date: "2024-06-05", Price: 107},
		},
	}

	got := PriceOn(def, day(2024, 6, 5), day(2024, 6, 10), logger)
	assert.Equal(t, 107.0, got)
}

func TestPriceOnTodayPrefersCurrentPrice(t *testing.T) {
	logger := common.NewSilentLogger()
	today := day(2024, 6, 10)

	def := &models.AssetDefinition{
		ID:           "a",
		Name:         "Acme",
		Type:         models.AssetTypeStock,
		CurrentPrice: 120,
		PriceHistory: []models.PricePoint{
			{Date: "2024-06-08", Price: 100},
		},
	}

	// No entry for today itself: the live current price is fresher than the
	// 06-08 close.
	got := PriceOn(def, today, today, logger)
	assert.Equal(t, 120.0, got)
}

func TestPriceOnTodayExactEntryWins(t *testing.T) {
	logger := common.NewSilentLogger()
	today := day(2024, 6, 10)

	def := &models.AssetDefinition{
		ID:           "a",
		Name:         "Acme",
		Type:         models.AssetTypeStock,
		CurrentPrice: 120,
		PriceHistory: []models.PricePoint{
			{Date: "2024-06-10", Price: 118},
		},
	}

	got := PriceOn(def, today, today, logger)
	assert.Equal(t, 118.0, got)
}

func TestPriceOnStaleCurrentPriceFallback(t *testing.T) {
	logger := common.NewSilentLogger()

	def := &models.AssetDefinition{
		ID:           "a",
		Name:         "Acme",
		Type:         models.AssetTypeStock,
		CurrentPrice: 42,
		PriceHistory: []models.PricePoint{
			{Date: "2024-06-08", Price: 100},
		},
	}

	// Target before any history entry: stale-but-better-than-nothing.
	got := PriceOn(def, day(2024, 1, 1), day(2024, 6, 10), logger)
	assert.Equal(t, 42.0, got)
}

func TestPriceOnNothingResolvable(t *testing.T) {
	logger := common.NewSilentLogger()

	def := &models.AssetDefinition{
		ID:   "a",
		Name: "Acme",
		Type: models.AssetTypeStock,
	}

	assert.Equal(t, 0.0, PriceOn(def, day(2024, 1, 1), day(2024, 6, 10), logger))
	assert.Equal(t, 0.0, PriceOn(nil, day(2024, 1, 1), day(2024, 6, 10), logger))
}

func TestPriceOnInvalidEntriesTreatedAsAbsent(t *testing.T) {
	logger := common.NewSilentLogger()

	def := &models.AssetDefinition{
		ID:           "a",
		Name:         "Acme",
		Type:         models.AssetTypeStock,
		CurrentPrice: 0,
		PriceHistory: []models.PricePoint{
			{Date: "2024-06-01", Price: 90},
			{Date: "2024-06-04", Price: 0},  // absent data, not a crash to zero
			{Date: "2024-06-05", Price: -5}, // invalid
		},
	}

	got := PriceOn(def, day(2024, 6, 6), day(2024, 6, 10), logger)
	assert.Equal(t, 90.0, got)
}

func TestPriceOnUnsortedHistory(t *testing.T) {
	logger := common.NewSilentLogger()

	def := &models.AssetDefinition{
		ID:           "a",
		Name:         "Acme",
		Type:         models.AssetTypeStock,
		CurrentPrice: 999,
		PriceHistory: []models.PricePoint{
			{Date: "2024-06-05", Price: 105},
			{Date: "2024-06-01", Price: 100},
			{Date: "2024-06-03", Price: 103},
		},
	}

	got := PriceOn(def, day(2024, 6, 4), day(2024, 6, 10), logger)
	assert.Equal(t, 103.0, got)
}

func TestPriceOnIntradayEntriesCountForTheirDay(t *testing.T) {
	logger := common.NewSilentLogger()

	def := &models.AssetDefinition{
		ID:           "a",
		Name:         "Acme",
		Type:         models.AssetTypeStock,
		CurrentPrice: 999,
		PriceHistory: []models.PricePoint{
			{Date: "2024-06-03T10:00:00Z", Price: 101},
			{Date: "2024-06-03T15:30:00Z", Price: 102},
		},
	}

	// The latest intraday timestamp of the day is its canonical price.
	got := PriceOn(def, day(2024, 6, 3), day(2024, 6, 10), logger)
	assert.Equal(t, 102.0, got)
}

func TestDayOfStripsTime(t *testing.T) {
	ts := time.Date(2024, 6, 3, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, day(2024, 6, 3), models.DayOf(ts))
}
