package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"price-table/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// productService implements ProductService. It owns an in-memory copy
// of the product collection, hydrated once at construction and kept in
// sync with storage by persisting the full collection after every
// mutation.
type productService struct {
	store    Store
	records  PriceRecordService
	validate *validator.Validate
	logger   zerolog.Logger

	mu       sync.RWMutex
	products []model.Product
}

// NewProductService creates a product service and hydrates it from
// storage. Construction fails if the stored collection cannot be read.
func NewProductService(ctx context.Context, store Store, records PriceRecordService, logger zerolog.Logger) (ProductService, error) {
	s := &productService{
		store:    store,
		records:  records,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With().Str("service", "product").Logger(),
	}

	if err := s.Reload(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

// Reload rehydrates the in-memory collection from storage.
func (s *productService) Reload(ctx context.Context) error {
	products, err := s.store.LoadProducts(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load products")
		return fmt.Errorf("failed to load products: %w", err)
	}

	s.mu.Lock()
	s.products = products
	s.mu.Unlock()

	s.logger.Debug().Int("count", len(products)).Msg("loaded products")
	return nil
}

// Add validates the input, creates the product and persists the updated
// collection. The in-memory mutation is rolled back if the persist fails.
func (s *productService) Add(ctx context.Context, in model.ProductInput) (*model.Product, error) {
	in = in.Normalized()
	if err := s.validate.Struct(in); err != nil {
		s.logger.Warn().Err(err).Msg("invalid product input")
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTakenLocked(in.Name, "") {
		s.logger.Warn().Str("name", in.Name).Msg("duplicate product name")
		return nil, model.ErrDuplicateName
	}

	product := model.NewProduct(in)
	snapshot := s.products
	s.products = append(slices.Clone(s.products), product)

	if err := s.store.SaveProducts(ctx, s.products); err != nil {
		s.products = snapshot
		s.logger.Error().Err(err).Str("product_id", product.ID).Msg("failed to persist new product")
		return nil, fmt.Errorf("failed to persist products: %w", err)
	}

	s.logger.Info().Str("product_id", product.ID).Str("name", product.Name).Msg("product added")
	return &product, nil
}

// Update applies a partial update to the product with the given ID and
// persists. The merged product is revalidated against the creation
// rules, so a patch cannot blank out the name or unit. An unknown ID is
// a silent no-op returning (nil, nil).
func (s *productService) Update(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error) {
	patch = patch.Normalized()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.products, func(p model.Product) bool { return p.ID == id })
	if idx < 0 {
		s.logger.Debug().Str("product_id", id).Msg("product not found, update skipped")
		return nil, nil
	}

	merged := s.products[idx].Apply(patch)
	if err := s.validate.Struct(merged.Input()); err != nil {
		s.logger.Warn().Err(err).Str("product_id", id).Msg("invalid product patch")
		return nil, err
	}

	if patch.Name != nil && s.nameTakenLocked(merged.Name, id) {
		s.logger.Warn().Str("product_id", id).Msg("duplicate product name on update")
		return nil, model.ErrDuplicateName
	}

	snapshot := s.products
	updated := slices.Clone(s.products)
	updated[idx] = merged
	s.products = updated

	if err := s.store.SaveProducts(ctx, s.products); err != nil {
		s.products = snapshot
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to persist product update")
		return nil, fmt.Errorf("failed to persist products: %w", err)
	}

	product := updated[idx]
	s.logger.Info().Str("product_id", id).Msg("product updated")
	return &product, nil
}

// Delete removes the product with the given ID and persists. An unknown
// ID is a silent no-op. Price records referencing the product are left
// in place.
func (s *productService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.products, func(p model.Product) bool { return p.ID == id })
	if idx < 0 {
		s.logger.Debug().Str("product_id", id).Msg("product not found, delete skipped")
		return nil
	}

	snapshot := s.products
	s.products = slices.Delete(slices.Clone(s.products), idx, idx+1)

	if err := s.store.SaveProducts(ctx, s.products); err != nil {
		s.products = snapshot
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to persist product delete")
		return fmt.Errorf("failed to persist products: %w", err)
	}

	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

// DeleteWithRecords deletes the product's price records first, then the
// product itself.
func (s *productService) DeleteWithRecords(ctx context.Context, id string) error {
	if err := s.records.DeleteByProduct(ctx, id); err != nil {
		return fmt.Errorf("failed to delete price records for product %s: %w", id, err)
	}
	return s.Delete(ctx, id)
}

// Get returns the product with the given ID, or nil if absent.
func (s *productService) Get(id string) *model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.products {
		if s.products[i].ID == id {
			product := s.products[i]
			return &product
		}
	}
	return nil
}

// Search returns products whose name contains the keyword,
// case-insensitively. An empty keyword returns all products.
func (s *productService) Search(keyword string) []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if keyword == "" {
		return slices.Clone(s.products)
	}

	lowered := strings.ToLower(keyword)
	matches := []model.Product{}
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), lowered) {
			matches = append(matches, p)
		}
	}
	return matches
}

// Exists reports whether a product with exactly this name exists.
func (s *productService) Exists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nameTakenLocked(name, "")
}

// nameTakenLocked reports whether any product other than excludeID
// already uses the name. Caller must hold at least a read lock.
func (s *productService) nameTakenLocked(name, excludeID string) bool {
	for _, p := range s.products {
		if p.Name == name && p.ID != excludeID {
			return true
		}
	}
	return false
}
