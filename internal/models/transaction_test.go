package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validTx() *Transaction {
	return &Transaction{
		ID:       "t1",
		Name:     "Acme",
		Kind:     TransactionBuy,
		Quantity: 10,
		Price:    100,
		Date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSignedQuantity(t *testing.T) {
	tx := validTx()
	assert.Equal(t, 10.0, tx.SignedQuantity())

	tx.Kind = TransactionSell
	assert.Equal(t, -10.0, tx.SignedQuantity())
}

func TestNetValue(t *testing.T) {
	tx := validTx()
	tx.TransactionCosts = 5

	// Buy: cost including fees.
	assert.Equal(t, 1005.0, tx.NetValue())

	// Sell: proceeds net of fees.
	tx.Kind = TransactionSell
	assert.Equal(t, 995.0, tx.NetValue())
}

func TestTransactionValidate(t *testing.T) {
	assert.NoError(t, validTx().Validate())

	tx := validTx()
	tx.Kind = "short"
	assert.Error(t, tx.Validate())

	tx = validTx()
	tx.Quantity = 0
	assert.Error(t, tx.Validate())

	tx = validTx()
	tx.Quantity = -1
	assert.Error(t, tx.Validate())

	tx = validTx()
	tx.Price = -0.01
	assert.Error(t, tx.Validate())

	tx = validTx()
	tx.Price = 0 // free grants are fine
	assert.NoError(t, tx.Validate())

	tx = validTx()
	tx.Date = time.Time{}
	assert.Error(t, tx.Validate())

	tx = validTx()
	tx.Name = "   "
	assert.Error(t, tx.Validate())

	tx.AssetDefinitionID = "def-1"
	assert.NoError(t, tx.Validate())
}

func TestKeyForTransaction(t *testing.T) {
	tx := validTx()
	tx.AssetDefinitionID = "def-1"
	key := KeyForTransaction(tx)
	assert.Equal(t, KeyByID("def-1"), key)
	assert.False(t, key.IsFallback())
	assert.Equal(t, "def-1", key.String())

	tx.AssetDefinitionID = ""
	tx.AssetType = AssetTypeOther
	key = KeyForTransaction(tx)
	assert.Equal(t, KeyByNameType("Acme", AssetTypeOther), key)
	assert.True(t, key.IsFallback())
	assert.Equal(t, "Acme/other", key.String())
}

func TestAssetKeyComparable(t *testing.T) {
	// Keys are used as map keys; identical identities must collide.
	m := map[AssetKey]int{}
	m[KeyByNameType("Gold", AssetTypeOther)]++
	m[KeyByNameType("Gold", AssetTypeOther)]++
	m[KeyByNameType("Gold", AssetTypeCrypto)]++
	assert.Len(t, m, 2)
	assert.Equal(t, 2, m[KeyByNameType("Gold", AssetTypeOther)])
}

func TestDayOf(t *testing.T) {
	ts := time.Date(2024, 3, 5, 23, 59, 59, 999999999, time.FixedZone("CET", 3600))
	got := DayOf(ts)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), got)

	tx := validTx()
	tx.Date = time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), tx.Day())
}
