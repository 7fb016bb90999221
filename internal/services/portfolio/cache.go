package portfolio

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/bobmcallan/folio/internal/models"
)

// memoCache memoizes history reconstruction, the most expensive derived
// computation. Entries are keyed by a content hash of the inputs plus the
// storage generation counter, so any mutation of the transaction log or
// definition set makes old keys unreachable. The cache is an optimization,
// never a source of truth.
type memoCache struct {
	mu      sync.RWMutex
	entries map[string][]models.PortfolioHistoryPoint
}

func newMemoCache() *memoCache {
	return &memoCache{entries: make(map[string][]models.PortfolioHistoryPoint)}
}

func (c *memoCache) Get(key string) ([]models.PortfolioHistoryPoint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	points, ok := c.entries[key]
	return points, ok
}

func (c *memoCache) Set(key string, points []models.PortfolioHistoryPoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Wholesale replacement: stale generations never get individual eviction,
	// they are dropped together whenever the key space moves on.
	if len(c.entries) >= maxCacheEntries {
		c.entries = make(map[string][]models.PortfolioHistoryPoint)
	}
	c.entries[key] = points
}

func (c *memoCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]models.PortfolioHistoryPoint)
}

const maxCacheEntries = 16

// historyCacheKey fingerprints the computation inputs. The hash covers every
// field that can change the output, including the calendar day ("today"
// shifts price resolution at midnight).
func historyCacheKey(generation uint64, txs []*models.Transaction, defs []*models.AssetDefinition, today time.Time) string {
	h := xxhash.New()

	writeField := func(s string) {
		h.WriteString(s)
		h.Write([]byte{0})
	}

	for _, t := range txs {
		writeField(t.ID)
		writeField(t.AssetDefinitionID)
		writeField(t.Name)
		writeField(string(t.AssetType))
		writeField(string(t.Kind))
		writeField(strconv.FormatFloat(t.Quantity, 'g', -1, 64))
		writeField(strconv.FormatFloat(t.Price, 'g', -1, 64))
		writeField(strconv.FormatFloat(t.TransactionCosts, 'g', -1, 64))
		writeField(t.Date.UTC().Format(time.RFC3339Nano))
	}
	writeField("|")
	for _, d := range defs {
		writeField(d.ID)
		writeField(strconv.FormatFloat(d.CurrentPrice, 'g', -1, 64))
		writeField(d.UpdatedAt.UTC().Format(time.RFC3339Nano))
		writeField(strconv.Itoa(len(d.PriceHistory)))
		if n := len(d.PriceHistory); n > 0 {
			last := d.PriceHistory[n-1]
			writeField(last.Date)
			writeField(strconv.FormatFloat(last.Price, 'g', -1, 64))
		}
	}
	writeField(models.DayOf(today).Format(dayFormat))

	return fmt.Sprintf("history:%d:%x", generation, h.Sum64())
}
