// Package storage wires the concrete storage backends behind the
// interfaces.StorageManager contract.
package storage

import (
	"sync"
	"sync/atomic"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/storage/badger"
)

// Manager coordinates the embedded store and tracks a mutation generation
// counter that derived-data caches key on.
type Manager struct {
	store        *badger.Store
	transactions interfaces.TransactionStore
	assets       interfaces.AssetDefinitionStore
	logger       *common.Logger

	generation atomic.Uint64

	mu       sync.RWMutex
	onMutate []func()
}

// NewManager opens the embedded store and builds the individual stores.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	store, err := badger.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		store:  store,
		logger: logger,
	}
	m.transactions = badger.NewTransactionStorage(store, logger, m.bumpGeneration)
	m.assets = badger.NewAssetStorage(store, logger, m.bumpGeneration)

	logger.Info().Str("path", config.Storage.Path).Msg("Storage initialized")
	return m, nil
}

// Transactions returns the transaction log store.
func (m *Manager) Transactions() interfaces.TransactionStore {
	return m.transactions
}

// AssetDefinitions returns the asset definition store.
func (m *Manager) AssetDefinitions() interfaces.AssetDefinitionStore {
	return m.assets
}

// Generation returns the current mutation generation.
func (m *Manager) Generation() uint64 {
	return m.generation.Load()
}

// OnMutate registers a callback invoked after every transaction or
// definition mutation. Used to invalidate derived-data caches.
func (m *Manager) OnMutate(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onMutate = append(m.onMutate, fn)
}

func (m *Manager) bumpGeneration() {
	m.generation.Add(1)

	m.mu.RLock()
	callbacks := m.onMutate
	m.mu.RUnlock()
	for _, fn := range callbacks {
		fn()
	}
}

// Close closes the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}
