package models

import (
	"math"
	"strings"
	"time"
)

// DividendFrequency describes how often a stock pays dividends.
type DividendFrequency string

const (
	FrequencyNone      DividendFrequency = "none"
	FrequencyMonthly   DividendFrequency = "monthly"
	FrequencyQuarterly DividendFrequency = "quarterly"
	FrequencyAnnually  DividendFrequency = "annually"
	FrequencyCustom    DividendFrequency = "custom"
)

// DividendInfo holds a stock's payout schedule plus realized history and
// forward-looking forecast entries.
type DividendInfo struct {
	Frequency DividendFrequency `json:"frequency,omitempty"`
	// Amount is the payout per share per payment for the regular schedule.
	Amount float64 `json:"amount,omitempty"`
	// CustomAmounts maps calendar month (1-12) to payout per share, used when
	// Frequency is "custom".
	CustomAmounts map[int]float64 `json:"custom_amounts,omitempty"`
	// History records dividends actually paid.
	History []DividendEvent `json:"history,omitempty"`
	// Forecast holds projected payments not yet realized (up to 3 years ahead).
	Forecast []DividendEvent `json:"forecast,omitempty"`
}

// DividendEvent is a single per-share payment in a specific month, either
// realized (History) or projected (Forecast).
type DividendEvent struct {
	Year   int     `json:"year"`
	Month  int     `json:"month"` // 1-12
	Amount float64 `json:"amount"`
}

// BondInfo holds interest metadata for bonds and interest-bearing cash.
type BondInfo struct {
	InterestRate float64 `json:"interest_rate"` // annual, percent
}

// RentalInfo holds income metadata for real estate.
type RentalInfo struct {
	BaseRent float64 `json:"base_rent"` // monthly
}

// PricePoint is one entry in an asset's price history. Date is either a plain
// calendar day ("2006-01-02") or an RFC3339 timestamp for intraday entries.
type PricePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// Day returns just the "YYYY-MM-DD" portion of the entry date.
func (p PricePoint) Day() string {
	if idx := strings.IndexByte(p.Date, 'T'); idx == 10 {
		return p.Date[:10]
	}
	return p.Date
}

// HasTime reports whether the entry carries an intraday time component.
func (p PricePoint) HasTime() bool {
	return strings.IndexByte(p.Date, 'T') == 10
}

// Timestamp parses the entry date, returning false when it is malformed.
// Plain dates resolve to midnight UTC.
func (p PricePoint) Timestamp() (time.Time, bool) {
	if p.HasTime() {
		if ts, err := time.Parse(time.RFC3339, p.Date); err == nil {
			return ts.UTC(), true
		}
		// Tolerate timestamps without a zone suffix.
		if ts, err := time.Parse("2006-01-02T15:04:05", p.Date); err == nil {
			return ts.UTC(), true
		}
		return time.Time{}, false
	}
	if ts, err := time.Parse("2006-01-02", p.Date); err == nil {
		return ts, true
	}
	return time.Time{}, false
}

// AssetDefinition is the static/semi-static metadata for a tradable
// instrument: identity, current price, ordered price history, and
// type-specific income metadata.
type AssetDefinition struct {
	ID           string       `json:"id"`
	Ticker       string       `json:"ticker,omitempty"`
	Name         string       `json:"name"`
	Type         AssetType    `json:"type"`
	Currency     string       `json:"currency,omitempty"`
	CurrentPrice float64      `json:"current_price"`
	PriceHistory []PricePoint `json:"price_history,omitempty"`
	DividendInfo *DividendInfo `json:"dividend_info,omitempty"`
	BondInfo     *BondInfo     `json:"bond_info,omitempty"`
	RentalInfo   *RentalInfo   `json:"rental_info,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// HasValidCurrentPrice reports whether CurrentPrice is usable: finite and
// strictly positive. Zero and negative prices are treated as absent data.
func (a *AssetDefinition) HasValidCurrentPrice() bool {
	return IsValidPrice(a.CurrentPrice)
}

// IsValidPrice reports whether a price is finite and strictly positive.
func IsValidPrice(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p > 0
}

// SanitizeNumber clamps NaN and ±Inf to 0 so a single corrupt intermediate
// cannot poison downstream sums.
func SanitizeNumber(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
