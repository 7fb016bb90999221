package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func buyTx(id, defID string, qty, price float64, date time.Time) *models.Transaction {
	return &models.Transaction{
		ID:                id,
		AssetDefinitionID: defID,
		Name:              "Test Asset",
		AssetType:         models.AssetTypeStock,
		Kind:              models.TransactionBuy,
		Quantity:          qty,
		Price:             price,
		Date:              date,
	}
}

func sellTx(id, defID string, qty, price float64, date time.Time) *models.Transaction {
	t := buyTx(id, defID, qty, price, date)
	t.Kind = models.TransactionSell
	return t
}

func TestAggregatePositionsWorkedExample(t *testing.T) {
	logger := common.NewSilentLogger()

	def := &models.AssetDefinition{
		ID:           "def-1",
		Name:         "Acme Corp",
		Type:         models.AssetTypeStock,
		CurrentPrice: 150,
	}

	txs := []*models.Transaction{
		buyTx("t1", "def-1", 10, 100, day(2024, 1, 1)),
		sellTx("t2", "def-1", 4, 120, day(2024, 3, 1)),
	}

	positions := AggregatePositions(txs, []*models.AssetDefinition{def}, logger)
	require.Len(t, positions, 1)

	p := positions[0]
	assert.Equal(t, 6.0, p.TotalQuantity)
	assert.Equal(t, 100.0, p.AveragePurchasePrice)
	assert.Equal(t, 600.0, p.TotalInvestment)
	assert.Equal(t, 900.0, p.CurrentValue)
	assert.Equal(t, 300.0, p.TotalReturn)
	assert.Equal(t, 50.0, p.TotalReturnPct)
	assert.Equal(t, "Acme Corp", p.Name)
	assert.Equal(t, 2, p.TransactionCount)
}

func TestAggregatePositionsBuyCostsInAverage(t *testing.T) {
	logger := common.NewSilentLogger()

	def := &models.AssetDefinition{ID: "def-1", Name: "Acme", Type: models.AssetTypeStock, CurrentPrice: 10}
	tx := buyTx("t1", "def-1", 10, 10, day(2024, 1, 1))
	tx.TransactionCosts = 20

	positions := AggregatePositions([]*models.Transaction{tx}, []*models.AssetDefinition{def}, logger)
	require.Len(t, positions, 1)

	// (10×10 + 20) / 10 = 12
	assert.Equal(t, 12.0, positions[0].AveragePurchasePrice)
	assert.Equal(t, 120.0, positions[0].TotalInvestment)
}

func TestAggregatePositionsSellCostsIgnoredInAverage(t *testing.T) {
	logger := common.NewSilentLogger()

	def := &models.AssetDefinition{ID: "def-1", Name: "Acme", Type: models.AssetTypeStock, CurrentPrice: 10}
	sell := sellTx("t2", "def-1", 5, 11, day(2024, 2, 1))
	sell.TransactionCosts = 500 // must not touch cost basis

	positions := AggregatePositions([]*models.Transaction{
		buyTx("t1", "def-1", 10, 10, day(2024, 1, 1)),
		sell,
	}, []*models.AssetDefinition{def}, logger)
	require.Len(t, positions, 1)

	assert.Equal(t, 10.0, positions[0].AveragePurchasePrice)
	assert.Equal(t, 5.0, positions[0].TotalQuantity)
}

func TestAggregatePositionsEmptyInput(t *testing.T) {
	positions := AggregatePositions(nil, nil, common.NewSilentLogger())
	assert.Empty(t, positions)
	assert.NotNil(t, positions)
}

func TestAggregatePositionsFallbackKey(t *testing.T) {
	logger := common.NewSilentLogger()

	// Two transactions with no definition reference but identical name/type
	// merge into one position; display data comes from the first transaction.
	txs := []*models.Transaction{
		{ID: "t1", Name: "Gold Bars", AssetType: models.AssetTypeOther, Kind: models.TransactionBuy, Quantity: 2, Price: 1800, Date: day(2024, 1, 1)},
		{ID: "t2", Name: "Gold Bars", AssetType: models.AssetTypeOther, Kind: models.TransactionBuy, Quantity: 1, Price: 1900, Date: day(2024, 2, 1)},
	}

	positions := AggregatePositions(txs, nil, logger)
	require.Len(t, positions, 1)

	p := positions[0]
	assert.True(t, p.Key.IsFallback())
	assert.Equal(t, "Gold Bars", p.Name)
	assert.Equal(t, 3.0, p.TotalQuantity)
	assert.Equal(t, 0.0, p.CurrentPrice)
	assert.Equal(t, 0.0, p.CurrentValue)
}

func TestAggregatePositionsDistinctFallbackTypes(t *testing.T) {
	logger := common.NewSilentLogger()

	// Same name, different type: two distinct positions.
	txs := []*models.Transaction{
		{ID: "t1", Name: "Thing", AssetType: models.AssetTypeOther, Kind: models.TransactionBuy, Quantity: 1, Price: 10, Date: day(2024, 1, 1)},
		{ID: "t2", Name: "Thing", AssetType: models.AssetTypeCrypto, Kind: models.TransactionBuy, Quantity: 1, Price: 10, Date: day(2024, 1, 1)},
	}

	positions := AggregatePositions(txs, nil, logger)
	assert.Len(t, positions, 2)
}

func TestAggregatePositionsNetShort(t *testing.T) {
	logger := common.NewSilentLogger()

	def := &models.AssetDefinition{ID: "def-1", Name: "Acme", Type: models.AssetTypeStock, CurrentPrice: 50}
	positions := AggregatePositions([]*models.Transaction{
		buyTx("t1", "def-1", 5, 40, day(2024, 1, 1)),
		sellTx("t2", "def-1", 8, 45, day(2024, 2, 1)),
	}, []*models.AssetDefinition{def}, logger)
	require.Len(t, positions, 1)

	// Aggregation keeps the signed quantity for net-short display.
	assert.Equal(t, -3.0, positions[0].TotalQuantity)
	assert.Equal(t, -150.0, positions[0].CurrentValue)
}

func TestAggregatePositionsIdempotent(t *testing.T) {
	logger := common.NewSilentLogger()

	def := &models.AssetDefinition{ID: "def-1", Name: "Acme", Type: models.AssetTypeStock, CurrentPrice: 150}
	txs := []*models.Transaction{
		buyTx("t1", "def-1", 10, 100, day(2024, 1, 1)),
		sellTx("t2", "def-1", 4, 120, day(2024, 3, 1)),
	}
	defs := []*models.AssetDefinition{def}

	first := AggregatePositions(txs, defs, logger)
	second := AggregatePositions(txs, defs, logger)

	assert.Equal(t, first, second)
}

func TestAggregatePositionsQuantityConservation(t *testing.T) {
	logger := common.NewSilentLogger()

	txs := []*models.Transaction{
		buyTx("t1", "a", 10, 1, day(2024, 1, 1)),
		buyTx("t2", "b", 7, 1, day(2024, 1, 2)),
		sellTx("t3", "a", 3, 1, day(2024, 1, 3)),
		sellTx("t4", "b", 9, 1, day(2024, 1, 4)),
	}

	positions := AggregatePositions(txs, nil, logger)

	var total, expected float64
	for _, p := range positions {
		total += p.TotalQuantity
	}
	for _, tx := range txs {
		expected += tx.SignedQuantity()
	}
	assert.Equal(t, expected, total)
}

func TestAggregatePositionsZeroInvestmentGuard(t *testing.T) {
	logger := common.NewSilentLogger()

	// A sell-only history has no buy-side cost basis; return% must not blow up.
	def := &models.AssetDefinition{ID: "def-1", Name: "Acme", Type: models.AssetTypeStock, CurrentPrice: 10}
	positions := AggregatePositions([]*models.Transaction{
		sellTx("t1", "def-1", 5, 10, day(2024, 1, 1)),
	}, []*models.AssetDefinition{def}, logger)
	require.Len(t, positions, 1)

	assert.Equal(t, 0.0, positions[0].AveragePurchasePrice)
	assert.Equal(t, 0.0, positions[0].TotalInvestment)
	assert.Equal(t, 0.0, positions[0].TotalReturnPct)
}
