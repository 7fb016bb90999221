package interfaces

import (
	"context"

	"github.com/bobmcallan/folio/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	Transactions() TransactionStore
	AssetDefinitions() AssetDefinitionStore

	// Generation returns a counter bumped on every mutation of transactions
	// or definitions. Derived-data caches key on it to detect staleness.
	Generation() uint64

	// Lifecycle
	Close() error
}

// TransactionStore persists the append-only transaction log.
type TransactionStore interface {
	Save(ctx context.Context, tx *models.Transaction) error
	Get(ctx context.Context, id string) (*models.Transaction, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.Transaction, error)
}

// AssetDefinitionStore persists asset metadata and price histories.
type AssetDefinitionStore interface {
	Save(ctx context.Context, def *models.AssetDefinition) error
	Get(ctx context.Context, id string) (*models.AssetDefinition, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.AssetDefinition, error)
}
