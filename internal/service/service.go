package service

import (
	"context"

	"price-table/internal/model"
)

// Store is the persistence surface the collection managers depend on.
// *storage.Gateway satisfies it; tests substitute a mock.
type Store interface {
	// SaveProducts persists the full product collection.
	SaveProducts(ctx context.Context, products []model.Product) error

	// LoadProducts loads the product collection.
	LoadProducts(ctx context.Context) ([]model.Product, error)

	// SavePriceRecords persists the full price record collection.
	SavePriceRecords(ctx context.Context, records []model.PriceRecord) error

	// LoadPriceRecords loads the price record collection.
	LoadPriceRecords(ctx context.Context) ([]model.PriceRecord, error)
}

// ProductService defines operations for product management.
type ProductService interface {
	// Add validates the input, creates the product and persists the
	// updated collection. Fails with model.ErrDuplicateName when a
	// product with the same name (case-sensitive exact match) exists.
	Add(ctx context.Context, in model.ProductInput) (*model.Product, error)

	// Update applies a partial update to the product with the given ID
	// and persists. An unknown ID is a silent no-op returning (nil, nil).
	Update(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error)

	// Delete removes the product with the given ID and persists. An
	// unknown ID is a silent no-op. Records referencing the product are
	// left in place; see DeleteWithRecords.
	Delete(ctx context.Context, id string) error

	// DeleteWithRecords deletes the product's price records and then
	// the product itself. This is the one coordinating operation for
	// the cascading-delete workflow.
	DeleteWithRecords(ctx context.Context, id string) error

	// Get returns the product with the given ID, or nil if absent.
	Get(id string) *model.Product

	// Search returns products whose name contains the keyword,
	// case-insensitively. An empty keyword returns all products.
	Search(keyword string) []model.Product

	// Exists reports whether a product with exactly this name exists.
	Exists(name string) bool

	// Reload rehydrates the in-memory collection from storage.
	Reload(ctx context.Context) error
}

// PriceRecordService defines operations for price record management.
type PriceRecordService interface {
	// Add validates the input, creates the record with its cached unit
	// price and persists the updated collection.
	Add(ctx context.Context, in model.PriceRecordInput) (*model.PriceRecord, error)

	// Update applies a partial update to the record with the given ID,
	// recomputing the unit price when price or quantity changed, and
	// persists. An unknown ID is a silent no-op returning (nil, nil).
	Update(ctx context.Context, id string, patch model.PriceRecordPatch) (*model.PriceRecord, error)

	// Delete removes the record with the given ID and persists. An
	// unknown ID is a silent no-op.
	Delete(ctx context.Context, id string) error

	// DeleteByProduct removes all records for the given product and
	// persists.
	DeleteByProduct(ctx context.Context, productID string) error

	// Get returns the record with the given ID, or nil if absent.
	Get(id string) *model.PriceRecord

	// ByProduct returns all records for the given product, in insertion
	// order.
	ByProduct(productID string) []model.PriceRecord

	// ByStore returns all records observed at the given store.
	ByStore(store string) []model.PriceRecord

	// Cheapest returns the record with the minimum cached unit price
	// among the product's records, or nil when there are none. Ties go
	// to the first record in collection order.
	Cheapest(productID string) *model.PriceRecord

	// History returns the product's records sorted by creation time
	// descending, truncated to limit when limit > 0.
	History(productID string, limit int) []model.PriceRecord

	// FrequentStores returns up to limit store names ranked by how many
	// records reference them, ties broken by first encounter order.
	FrequentStores(limit int) []string

	// Reload rehydrates the in-memory collection from storage.
	Reload(ctx context.Context) error
}
