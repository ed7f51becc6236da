package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"price-table/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// priceRecordService implements PriceRecordService over an in-memory
// copy of the record collection, persisted in full after every mutation.
type priceRecordService struct {
	store    Store
	validate *validator.Validate
	logger   zerolog.Logger

	mu      sync.RWMutex
	records []model.PriceRecord
}

// NewPriceRecordService creates a price record service and hydrates it
// from storage. Construction fails if the stored collection cannot be
// read.
func NewPriceRecordService(ctx context.Context, store Store, logger zerolog.Logger) (PriceRecordService, error) {
	s := &priceRecordService{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With().Str("service", "price_record").Logger(),
	}

	if err := s.Reload(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

// Reload rehydrates the in-memory collection from storage.
func (s *priceRecordService) Reload(ctx context.Context) error {
	records, err := s.store.LoadPriceRecords(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load price records")
		return fmt.Errorf("failed to load price records: %w", err)
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	s.logger.Debug().Int("count", len(records)).Msg("loaded price records")
	return nil
}

// Add validates the input, creates the record and persists the updated
// collection. The record's product reference is not checked against the
// product collection.
func (s *priceRecordService) Add(ctx context.Context, in model.PriceRecordInput) (*model.PriceRecord, error) {
	in = in.Normalized()
	if err := s.validate.Struct(in); err != nil {
		s.logger.Warn().Err(err).Msg("invalid price record input")
		return nil, err
	}

	record := model.NewPriceRecord(in)

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.records
	s.records = append(slices.Clone(s.records), record)

	if err := s.store.SavePriceRecords(ctx, s.records); err != nil {
		s.records = snapshot
		s.logger.Error().Err(err).Str("record_id", record.ID).Msg("failed to persist new price record")
		return nil, fmt.Errorf("failed to persist price records: %w", err)
	}

	s.logger.Info().
		Str("record_id", record.ID).
		Str("product_id", record.ProductID).
		Str("store", record.Store).
		Float64("unit_price", record.UnitPrice).
		Msg("price record added")

	return &record, nil
}

// Update applies a partial update to the record with the given ID and
// persists. The merged record is revalidated against the creation
// rules, so a patch cannot blank out the store or zero the price or
// quantity. An unknown ID is a silent no-op returning (nil, nil).
func (s *priceRecordService) Update(ctx context.Context, id string, patch model.PriceRecordPatch) (*model.PriceRecord, error) {
	patch = patch.Normalized()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.records, func(r model.PriceRecord) bool { return r.ID == id })
	if idx < 0 {
		s.logger.Debug().Str("record_id", id).Msg("price record not found, update skipped")
		return nil, nil
	}

	merged := s.records[idx].Apply(patch)
	if err := s.validate.Struct(merged.Input()); err != nil {
		s.logger.Warn().Err(err).Str("record_id", id).Msg("invalid price record patch")
		return nil, err
	}

	snapshot := s.records
	updated := slices.Clone(s.records)
	updated[idx] = merged
	s.records = updated

	if err := s.store.SavePriceRecords(ctx, s.records); err != nil {
		s.records = snapshot
		s.logger.Error().Err(err).Str("record_id", id).Msg("failed to persist price record update")
		return nil, fmt.Errorf("failed to persist price records: %w", err)
	}

	record := updated[idx]
	s.logger.Info().Str("record_id", id).Msg("price record updated")
	return &record, nil
}

// Delete removes the record with the given ID and persists. An unknown
// ID is a silent no-op.
func (s *priceRecordService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.records, func(r model.PriceRecord) bool { return r.ID == id })
	if idx < 0 {
		s.logger.Debug().Str("record_id", id).Msg("price record not found, delete skipped")
		return nil
	}

	snapshot := s.records
	s.records = slices.Delete(slices.Clone(s.records), idx, idx+1)

	if err := s.store.SavePriceRecords(ctx, s.records); err != nil {
		s.records = snapshot
		s.logger.Error().Err(err).Str("record_id", id).Msg("failed to persist price record delete")
		return fmt.Errorf("failed to persist price records: %w", err)
	}

	s.logger.Info().Str("record_id", id).Msg("price record deleted")
	return nil
}

// DeleteByProduct removes all records for the given product and persists.
func (s *priceRecordService) DeleteByProduct(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := []model.PriceRecord{}
	for _, r := range s.records {
		if r.ProductID != productID {
			remaining = append(remaining, r)
		}
	}
	if len(remaining) == len(s.records) {
		return nil
	}

	snapshot := s.records
	removed := len(s.records) - len(remaining)
	s.records = remaining

	if err := s.store.SavePriceRecords(ctx, s.records); err != nil {
		s.records = snapshot
		s.logger.Error().Err(err).Str("product_id", productID).Msg("failed to persist cascading delete")
		return fmt.Errorf("failed to persist price records: %w", err)
	}

	s.logger.Info().
		Str("product_id", productID).
		Int("removed", removed).
		Msg("price records deleted for product")

	return nil
}

// Get returns the record with the given ID, or nil if absent.
func (s *priceRecordService) Get(id string) *model.PriceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.records {
		if s.records[i].ID == id {
			record := s.records[i]
			return &record
		}
	}
	return nil
}

// ByProduct returns all records for the given product, in insertion order.
func (s *priceRecordService) ByProduct(productID string) []model.PriceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byProductLocked(productID)
}

// ByStore returns all records observed at the given store.
func (s *priceRecordService) ByStore(store string) []model.PriceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := []model.PriceRecord{}
	for _, r := range s.records {
		if r.Store == store {
			matches = append(matches, r)
		}
	}
	return matches
}

// Cheapest returns the record with the minimum cached unit price among
// the product's records, or nil when there are none. Ties go to the
// first record in collection order.
func (s *priceRecordService) Cheapest(productID string) *model.PriceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cheapest *model.PriceRecord
	for i := range s.records {
		r := s.records[i]
		if r.ProductID != productID {
			continue
		}
		if cheapest == nil || r.UnitPrice < cheapest.UnitPrice {
			candidate := r
			cheapest = &candidate
		}
	}
	return cheapest
}

// History returns the product's records sorted by creation time
// descending, truncated to limit when limit > 0. The sort is stable, so
// records created in the same instant keep their collection order.
func (s *priceRecordService) History(productID string, limit int) []model.PriceRecord {
	s.mu.RLock()
	records := s.byProductLocked(productID)
	s.mu.RUnlock()

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}

// FrequentStores returns up to limit store names ranked by how many
// records reference them. Ties keep first-encounter order.
func (s *priceRecordService) FrequentStores(limit int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	stores := []string{}
	for _, r := range s.records {
		if counts[r.Store] == 0 {
			stores = append(stores, r.Store)
		}
		counts[r.Store]++
	}

	sort.SliceStable(stores, func(i, j int) bool {
		return counts[stores[i]] > counts[stores[j]]
	})

	if limit > 0 && len(stores) > limit {
		stores = stores[:limit]
	}
	return stores
}

// byProductLocked filters records by product. Caller must hold at least
// a read lock.
func (s *priceRecordService) byProductLocked(productID string) []model.PriceRecord {
	matches := []model.PriceRecord{}
	for _, r := range s.records {
		if r.ProductID == productID {
			matches = append(matches, r)
		}
	}
	return matches
}
