// Package portfolio derives positions, valuations, and income projections
// from the stored transaction log and asset definitions.
package portfolio

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// Service implements interfaces.PortfolioService.
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
	cfg     common.PortfolioConfig
	cache   *memoCache

	// now is swappable for tests — "today" matters to price resolution.
	now func() time.Time
}

// NewService creates a new portfolio service.
func NewService(storage interfaces.StorageManager, cfg common.PortfolioConfig, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
		cfg:     cfg,
		cache:   newMemoCache(),
		now:     time.Now,
	}
}

// InvalidateCache drops all memoized derived data.
func (s *Service) InvalidateCache() {
	s.cache.Clear()
	s.logger.Debug().Msg("Portfolio cache cleared")
}

// loadInputs fetches the full transaction log and definition set.
func (s *Service) loadInputs(ctx context.Context) ([]*models.Transaction, []*models.AssetDefinition, error) {
	txs, err := s.storage.Transactions().List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defs, err := s.storage.AssetDefinitions().List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list asset definitions: %w", err)
	}
	return txs, defs, nil
}

// GetPositions aggregates all stored transactions into current positions.
func (s *Service) GetPositions(ctx context.Context) ([]models.Position, error) {
	txs, defs, err := s.loadInputs(ctx)
	if err != nil {
		return nil, err
	}
	return AggregatePositions(txs, defs, s.logger), nil
}

// AggregatePositions folds transactions into one Position per asset key.
// Pure: identical inputs always yield structurally identical output.
func AggregatePositions(transactions []*models.Transaction, defs []*models.AssetDefinition, logger *common.Logger) []models.Position {
	if len(transactions) == 0 {
		return []models.Position{}
	}

	defsByID := make(map[string]*models.AssetDefinition, len(defs))
	for _, d := range defs {
		defsByID[d.ID] = d
	}

	type bucket struct {
		key models.AssetKey
		txs []*models.Transaction
	}

	buckets := make(map[models.AssetKey]*bucket)
	order := make([]models.AssetKey, 0)
	for _, t := range transactions {
		key := models.KeyForTransaction(t)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{key: key}
			buckets[key] = b
			order = append(order, key)
		}
		b.txs = append(b.txs, t)
	}

	positions := make([]models.Position, 0, len(buckets))
	for _, key := range order {
		b := buckets[key]
		def := defsByID[key.ID]
		if key.ID != "" && def == nil {
			logger.Warn().Str("key", key.String()).Msg("Transaction references unknown asset definition")
		}
		positions = append(positions, foldPosition(b.key, b.txs, def))
	}

	// Deterministic output order: by name, then key.
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Name != positions[j].Name {
			return positions[i].Name < positions[j].Name
		}
		return positions[i].Key.String() < positions[j].Key.String()
	})

	logger.Debug().
		Int("transactions", len(transactions)).
		Int("positions", len(positions)).
		Msg("Positions aggregated")

	return positions
}

// foldPosition computes a single position from its transactions.
// Average purchase price comes from buy-side transactions only — sells reduce
// quantity but never re-base the recorded cost of remaining shares.
func foldPosition(key models.AssetKey, txs []*models.Transaction, def *models.AssetDefinition) models.Position {
	var (
		buyQty, buyCost float64
		netQty          float64
		firstPurchase   time.Time
		lastTransaction time.Time
	)

	for _, t := range txs {
		netQty += t.SignedQuantity()
		if t.Kind == models.TransactionBuy {
			buyQty += t.Quantity
			buyCost += t.GrossValue() + t.TransactionCosts
			if firstPurchase.IsZero() || t.Date.Before(firstPurchase) {
				firstPurchase = t.Date
			}
		}
		if t.Date.After(lastTransaction) {
			lastTransaction = t.Date
		}
	}

	avgPrice := 0.0
	if buyQty > 0 {
		avgPrice = buyCost / buyQty
	}
	avgPrice = models.SanitizeNumber(avgPrice)

	// Cost basis of the remaining (absolute) quantity, not net cash flow.
	investment := models.SanitizeNumber(absFloat(netQty) * avgPrice)

	currentPrice := 0.0
	if def != nil {
		currentPrice = models.SanitizeNumber(def.CurrentPrice)
	}
	currentValue := models.SanitizeNumber(netQty * currentPrice)

	totalReturn := models.SanitizeNumber(currentValue - investment)
	returnPct := 0.0
	if investment != 0 {
		returnPct = models.SanitizeNumber(totalReturn / absFloat(investment) * 100)
	}

	pos := models.Position{
		Key:                  key,
		AssetDefinitionID:    key.ID,
		TotalQuantity:        netQty,
		AveragePurchasePrice: avgPrice,
		TotalInvestment:      investment,
		CurrentPrice:         currentPrice,
		CurrentValue:         currentValue,
		TotalReturn:          totalReturn,
		TotalReturnPct:       returnPct,
		TransactionCount:     len(txs),
		FirstPurchase:        firstPurchase,
		LastTransaction:      lastTransaction,
	}

	if def != nil {
		pos.Ticker = def.Ticker
		pos.Name = def.Name
		pos.Type = def.Type
		pos.MonthlyIncome = MonthlyIncome(def, netQty)
		pos.AnnualIncome = models.SanitizeNumber(pos.MonthlyIncome * 12)
	} else {
		// No definition: fall back to the first transaction's display data,
		// price stays 0.
		pos.Name = txs[0].Name
		pos.Type = txs[0].AssetType
	}

	return pos
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
