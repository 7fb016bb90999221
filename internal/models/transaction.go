// Package models defines data structures for Folio
package models

import (
	"fmt"
	"strings"
	"time"
)

// TransactionKind identifies the direction of a transaction.
type TransactionKind string

const (
	TransactionBuy  TransactionKind = "buy"
	TransactionSell TransactionKind = "sell"
)

// AssetType categorizes tradable instruments.
type AssetType string

const (
	AssetTypeStock      AssetType = "stock"
	AssetTypeBond       AssetType = "bond"
	AssetTypeRealEstate AssetType = "real_estate"
	AssetTypeCrypto     AssetType = "crypto"
	AssetTypeCash       AssetType = "cash"
	AssetTypeOther      AssetType = "other"
)

// Transaction is an immutable append-only record of a buy or sell.
// It references an AssetDefinition by ID when one exists; otherwise the
// embedded Name/AssetType act as a loose fallback identity.
type Transaction struct {
	ID                string          `json:"id"`
	AssetDefinitionID string          `json:"asset_definition_id,omitempty"`
	Name              string          `json:"name"`
	AssetType         AssetType       `json:"asset_type"`
	Kind              TransactionKind `json:"kind"`
	Quantity          float64         `json:"quantity"`
	Price             float64         `json:"price"`
	TransactionCosts  float64         `json:"transaction_costs"`
	Date              time.Time       `json:"date"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// SignedQuantity returns the quantity with sell transactions negated.
func (t *Transaction) SignedQuantity() float64 {
	if t.Kind == TransactionSell {
		return -t.Quantity
	}
	return t.Quantity
}

// GrossValue returns quantity × price without transaction costs.
func (t *Transaction) GrossValue() float64 {
	return t.Quantity * t.Price
}

// NetValue returns the cash impact of the transaction: cost including fees for
// buys, proceeds net of fees for sells.
func (t *Transaction) NetValue() float64 {
	if t.Kind == TransactionSell {
		return t.Quantity*t.Price - t.TransactionCosts
	}
	return t.Quantity*t.Price + t.TransactionCosts
}

// Day returns the transaction date truncated to calendar-day granularity in UTC.
func (t *Transaction) Day() time.Time {
	return DayOf(t.Date)
}

// Validate checks the transaction for structural problems before storage.
func (t *Transaction) Validate() error {
	if t.Kind != TransactionBuy && t.Kind != TransactionSell {
		return fmt.Errorf("invalid transaction kind '%s'", t.Kind)
	}
	if t.Quantity <= 0 {
		return fmt.Errorf("transaction quantity must be positive, got %v", t.Quantity)
	}
	if t.Price < 0 {
		return fmt.Errorf("transaction price must not be negative, got %v", t.Price)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("transaction date is required")
	}
	if t.AssetDefinitionID == "" && strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("transaction needs an asset_definition_id or a name")
	}
	return nil
}

// AssetKey identifies the asset a transaction belongs to. Either ID is set
// (definition-backed) or Name/Type are set (fallback identity for transactions
// without a definition reference). The zero-field split replaces the old
// stringly "fallback_{name}_{type}" scheme with a comparable tagged key.
type AssetKey struct {
	ID   string    `json:"id,omitempty"`
	Name string    `json:"name,omitempty"`
	Type AssetType `json:"type,omitempty"`
}

// KeyByID builds an AssetKey for a definition-backed asset.
func KeyByID(id string) AssetKey {
	return AssetKey{ID: id}
}

// KeyByNameType builds a fallback AssetKey from display data.
func KeyByNameType(name string, assetType AssetType) AssetKey {
	return AssetKey{Name: name, Type: assetType}
}

// KeyForTransaction derives the grouping key for a transaction.
func KeyForTransaction(t *Transaction) AssetKey {
	if t.AssetDefinitionID != "" {
		return KeyByID(t.AssetDefinitionID)
	}
	return KeyByNameType(t.Name, t.AssetType)
}

// IsFallback reports whether the key was synthesized from name/type rather
// than a definition reference.
func (k AssetKey) IsFallback() bool {
	return k.ID == ""
}

// String renders the key for log output.
func (k AssetKey) String() string {
	if k.ID != "" {
		return k.ID
	}
	return fmt.Sprintf("%s/%s", k.Name, k.Type)
}

// DayOf truncates a timestamp to calendar-day granularity in UTC.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
