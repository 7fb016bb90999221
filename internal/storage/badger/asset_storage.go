package badger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
)

type assetStorage struct {
	store    *Store
	logger   *common.Logger
	onMutate func()
}

// NewAssetStorage creates an AssetDefinitionStore backed by BadgerHold.
// onMutate is invoked after every successful write or delete.
func NewAssetStorage(store *Store, logger *common.Logger, onMutate func()) *assetStorage {
	return &assetStorage{store: store, logger: logger, onMutate: onMutate}
}

func (s *assetStorage) Save(_ context.Context, def *models.AssetDefinition) error {
	if strings.TrimSpace(def.Name) == "" {
		return fmt.Errorf("asset definition needs a name")
	}
	if def.Type == "" {
		return fmt.Errorf("asset definition needs a type")
	}

	now := time.Now().UTC()
	if def.ID == "" {
		def.ID = uuid.New().String()
		def.CreatedAt = now
	}
	if def.CreatedAt.IsZero() {
		def.CreatedAt = now
	}
	def.UpdatedAt = now

	if err := s.store.db.Upsert(def.ID, def); err != nil {
		return fmt.Errorf("failed to save asset definition '%s': %w", def.ID, err)
	}

	s.logger.Debug().Str("id", def.ID).Str("name", def.Name).Msg("Asset definition saved")
	s.onMutate()
	return nil
}

func (s *assetStorage) Get(_ context.Context, id string) (*models.AssetDefinition, error) {
	var def models.AssetDefinition
	err := s.store.db.Get(id, &def)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("asset definition '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to get asset definition '%s': %w", id, err)
	}
	return &def, nil
}

func (s *assetStorage) Delete(_ context.Context, id string) error {
	err := s.store.db.Delete(id, models.AssetDefinition{})
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("asset definition '%s' not found", id)
		}
		return fmt.Errorf("failed to delete asset definition '%s': %w", id, err)
	}
	s.onMutate()
	return nil
}

func (s *assetStorage) List(_ context.Context) ([]*models.AssetDefinition, error) {
	var defs []*models.AssetDefinition
	if err := s.store.db.Find(&defs, nil); err != nil {
		return nil, fmt.Errorf("failed to list asset definitions: %w", err)
	}
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Name != defs[j].Name {
			return defs[i].Name < defs[j].Name
		}
		return defs[i].ID < defs[j].ID
	})
	return defs, nil
}
