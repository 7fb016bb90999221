package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
)

type transactionStorage struct {
	store    *Store
	logger   *common.Logger
	onMutate func()
}

// NewTransactionStorage creates a TransactionStore backed by BadgerHold.
// onMutate is invoked after every successful write or delete.
func NewTransactionStorage(store *Store, logger *common.Logger, onMutate func()) *transactionStorage {
	return &transactionStorage{store: store, logger: logger, onMutate: onMutate}
}

func (s *transactionStorage) Save(_ context.Context, tx *models.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}

	now := time.Now().UTC()
	if tx.ID == "" {
		tx.ID = uuid.New().String()
		tx.CreatedAt = now
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	tx.UpdatedAt = now

	if err := s.store.db.Upsert(tx.ID, tx); err != nil {
		return fmt.Errorf("failed to save transaction '%s': %w", tx.ID, err)
	}

	s.logger.Debug().Str("id", tx.ID).Str("kind", string(tx.Kind)).Msg("Transaction saved")
	s.onMutate()
	return nil
}

func (s *transactionStorage) Get(_ context.Context, id string) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.store.db.Get(id, &tx)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("transaction '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to get transaction '%s': %w", id, err)
	}
	return &tx, nil
}

func (s *transactionStorage) Delete(_ context.Context, id string) error {
	err := s.store.db.Delete(id, models.Transaction{})
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("transaction '%s' not found", id)
		}
		return fmt.Errorf("failed to delete transaction '%s': %w", id, err)
	}
	s.onMutate()
	return nil
}

func (s *transactionStorage) List(_ context.Context) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	if err := s.store.db.Find(&txs, nil); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	// Stable order: by date, then ID.
	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.Before(txs[j].Date)
		}
		return txs[i].ID < txs[j].ID
	})
	return txs, nil
}
