// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/folio/internal/models"
)

// PortfolioService derives positions, history, intraday series, and the
// income calendar from the stored transaction log and asset definitions.
type PortfolioService interface {
	// GetPositions aggregates all stored transactions into current positions.
	GetPositions(ctx context.Context) ([]models.Position, error)

	// GetHistory reconstructs the portfolio value time series across the union
	// of transaction and price-history dates.
	GetHistory(ctx context.Context, opts HistoryOptions) ([]models.PortfolioHistoryPoint, error)

	// GetIntraday reconstructs the same-day portfolio value series from
	// timestamped price entries within the trailing window.
	GetIntraday(ctx context.Context) ([]models.IntradayPoint, error)

	// GetIncomeCalendar computes per-month income with forecast reconciliation
	// for a rolling window of months starting at from.
	GetIncomeCalendar(ctx context.Context, from time.Time, months int) ([]models.MonthIncome, error)

	// RenderHistoryChart renders the history series as a PNG line chart.
	RenderHistoryChart(ctx context.Context) ([]byte, error)

	// InvalidateCache drops all memoized computations. Called by storage on
	// any transaction or definition mutation.
	InvalidateCache()
}

// HistoryOptions configures history reconstruction.
type HistoryOptions struct {
	From time.Time // zero = earliest transaction
	To   time.Time // zero = today
	// IncludePositions controls whether per-date position snapshots are
	// included in the response (they are always computed).
	IncludePositions bool
}
