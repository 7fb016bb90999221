package models

import "time"

// Position is the fold of all transactions sharing an asset key into one
// aggregate holding. Derived on demand — never persisted as source of truth.
type Position struct {
	AssetDefinitionID string    `json:"asset_definition_id,omitempty"`
	Key               AssetKey  `json:"key"`
	Ticker            string    `json:"ticker,omitempty"`
	Name              string    `json:"name"`
	Type              AssetType `json:"type"`

	// TotalQuantity is signed: buys add, sells subtract. Negative values are
	// kept for net-short bookkeeping display.
	TotalQuantity float64 `json:"total_quantity"`
	// AveragePurchasePrice is computed from buy-side transactions only,
	// including buy transaction costs. Sells never re-base it.
	AveragePurchasePrice float64 `json:"average_purchase_price"`
	// TotalInvestment is |TotalQuantity| × AveragePurchasePrice, so realized
	// sells do not retroactively change the cost basis of remaining shares.
	TotalInvestment float64 `json:"total_investment"`
	CurrentPrice    float64 `json:"current_price"`
	CurrentValue    float64 `json:"current_value"`
	TotalReturn     float64 `json:"total_return"`
	TotalReturnPct  float64 `json:"total_return_pct"`
	MonthlyIncome   float64 `json:"monthly_income"`
	AnnualIncome    float64 `json:"annual_income"`

	TransactionCount int       `json:"transaction_count"`
	FirstPurchase    time.Time `json:"first_purchase,omitzero"`
	LastTransaction  time.Time `json:"last_transaction,omitzero"`
}

// PortfolioHistoryPoint is the reconstructed portfolio state at a calendar day:
// the total value, invested amount, and the positions as they stood after
// processing all transactions dated on or before that day.
type PortfolioHistoryPoint struct {
	Date           time.Time          `json:"date"`
	TotalValue     float64            `json:"total_value"`
	TotalInvested  float64            `json:"total_invested"`
	TotalReturn    float64            `json:"total_return"`
	TotalReturnPct float64            `json:"total_return_pct"`
	Positions      []HistoricPosition `json:"positions,omitempty"`
}

// HistoricPosition is a single holding within a history point.
type HistoricPosition struct {
	AssetDefinitionID string  `json:"asset_definition_id"`
	Quantity          float64 `json:"quantity"`
	AvgBuyPrice       float64 `json:"avg_buy_price"`
	Invested          float64 `json:"invested"`
	Value             float64 `json:"value"`
	PriceResolved     bool    `json:"price_resolved"`
}

// IntradayPoint is a portfolio valuation at a specific timestamp, emitted only
// when enough positions had a resolvable price at that instant.
type IntradayPoint struct {
	Timestamp  time.Time `json:"timestamp"`
	TotalValue float64   `json:"total_value"`
	// Coverage is the fraction (0..1) of positions priced at this timestamp.
	Coverage float64 `json:"coverage"`
}

// MonthIncome is the projected/realized income for one calendar month across
// all positions, with a per-position breakdown and forecast attribution.
type MonthIncome struct {
	Year        int              `json:"year"`
	Month       int              `json:"month"` // 1-12
	TotalIncome float64          `json:"total_income"`
	Positions   []PositionIncome `json:"positions,omitempty"`
	// HasForecast is set when any contribution is an unrealized projection.
	HasForecast bool `json:"has_forecast"`
	// ForecastShare is the fraction (0..1) of TotalIncome that is forecast
	// rather than recorded.
	ForecastShare float64 `json:"forecast_share"`
}

// PositionIncome is one position's contribution to a month's income.
type PositionIncome struct {
	AssetDefinitionID string  `json:"asset_definition_id,omitempty"`
	Name              string  `json:"name"`
	Income            float64 `json:"income"`
	IsForecast        bool    `json:"is_forecast"`
	ForecastAmount    float64 `json:"forecast_amount,omitempty"`
}
