package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"price-table/internal/model"

	"github.com/rs/zerolog"
)

// Storage keys for the three persisted collections. The key names are
// part of the on-disk format and must not change.
const (
	KeyProducts     = "price-table-products"
	KeyPriceRecords = "price-table-price-records"
	KeySettings     = "price-table-settings"
)

// ExportVersion is the format version stamped into every export.
const ExportVersion = "1.0.0"

var (
	// ErrStorageWrite indicates a serialization or underlying write
	// failure. It propagates to the caller and is not retried.
	ErrStorageWrite = errors.New("storage write failed")

	// ErrCorruptedData indicates a stored value that could not be
	// deserialized. A missing key is not corruption; it loads as an
	// empty collection.
	ErrCorruptedData = errors.New("stored data is corrupted")

	// ErrInvalidImport indicates an import payload missing the
	// mandatory products or priceRecords arrays, or unparseable JSON.
	ErrInvalidImport = errors.New("invalid import payload")
)

// Gateway persists whole collections as JSON arrays in a key/value
// store, and provides bulk export/import and size accounting. It is
// constructed explicitly and injected into the collection managers;
// there is no package-level instance.
type Gateway struct {
	kv     KV
	logger zerolog.Logger
}

// NewGateway creates a persistence gateway over the given key/value store.
func NewGateway(kv KV, logger zerolog.Logger) *Gateway {
	return &Gateway{
		kv:     kv,
		logger: logger.With().Str("component", "storage").Logger(),
	}
}

// saveCollection serializes items and writes them under key. Collections
// are always written in full; last full write wins.
func saveCollection[T any](ctx context.Context, g *Gateway, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		g.logger.Error().Err(err).Str("key", key).Msg("failed to serialise collection")
		return fmt.Errorf("%w: serialise %s: %v", ErrStorageWrite, key, err)
	}
	if err := g.kv.Set(ctx, key, string(data)); err != nil {
		g.logger.Error().Err(err).Str("key", key).Msg("failed to write collection")
		return fmt.Errorf("%w: write %s: %v", ErrStorageWrite, key, err)
	}
	return nil
}

// loadCollection reads and deserializes the collection stored under key.
// An absent key loads as an empty collection; an unparseable value is
// surfaced as ErrCorruptedData rather than silently treated as empty.
func loadCollection[T any](ctx context.Context, g *Gateway, key string) ([]T, error) {
	raw, ok, err := g.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if !ok {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		g.logger.Error().Err(err).Str("key", key).Msg("stored collection is unparseable")
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptedData, key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// SaveProducts persists the full product collection.
func (g *Gateway) SaveProducts(ctx context.Context, products []model.Product) error {
	return saveCollection(ctx, g, KeyProducts, products)
}

// LoadProducts loads the product collection.
func (g *Gateway) LoadProducts(ctx context.Context) ([]model.Product, error) {
	return loadCollection[model.Product](ctx, g, KeyProducts)
}

// SavePriceRecords persists the full price record collection.
func (g *Gateway) SavePriceRecords(ctx context.Context, records []model.PriceRecord) error {
	return saveCollection(ctx, g, KeyPriceRecords, records)
}

// LoadPriceRecords loads the price record collection.
func (g *Gateway) LoadPriceRecords(ctx context.Context) ([]model.PriceRecord, error) {
	return loadCollection[model.PriceRecord](ctx, g, KeyPriceRecords)
}

// SaveSettings persists the settings collection.
func (g *Gateway) SaveSettings(ctx context.Context, settings []model.Setting) error {
	return saveCollection(ctx, g, KeySettings, settings)
}

// LoadSettings loads the settings collection.
func (g *Gateway) LoadSettings(ctx context.Context) ([]model.Setting, error) {
	return loadCollection[model.Setting](ctx, g, KeySettings)
}

// Remove deletes the entry at key.
func (g *Gateway) Remove(ctx context.Context, key string) error {
	if err := g.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("%w: remove %s: %v", ErrStorageWrite, key, err)
	}
	return nil
}

// Clear removes all known collections unconditionally.
func (g *Gateway) Clear(ctx context.Context) error {
	for _, key := range []string{KeyProducts, KeyPriceRecords, KeySettings} {
		if err := g.Remove(ctx, key); err != nil {
			return err
		}
	}
	g.logger.Info().Msg("cleared all stored collections")
	return nil
}

// exportPayload is the bulk export/import format.
type exportPayload struct {
	Products     []model.Product     `json:"products"`
	PriceRecords []model.PriceRecord `json:"priceRecords"`
	Settings     []model.Setting     `json:"settings"`
	ExportedAt   time.Time           `json:"exportedAt"`
	Version      string              `json:"version"`
}

// importPayload mirrors exportPayload with pointer slices so that
// missing mandatory arrays can be told apart from empty ones.
type importPayload struct {
	Products     *[]model.Product     `json:"products"`
	PriceRecords *[]model.PriceRecord `json:"priceRecords"`
	Settings     []model.Setting      `json:"settings"`
}

// Export loads all collections and returns them as one indented JSON
// document stamped with the export time and format version.
func (g *Gateway) Export(ctx context.Context) (string, error) {
	products, err := g.LoadProducts(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to export products: %w", err)
	}
	records, err := g.LoadPriceRecords(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to export price records: %w", err)
	}
	settings, err := g.LoadSettings(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to export settings: %w", err)
	}

	payload := exportPayload{
		Products:     products,
		PriceRecords: records,
		Settings:     settings,
		ExportedAt:   time.Now().UTC(),
		Version:      ExportVersion,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialise export: %w", err)
	}

	g.logger.Info().
		Int("products", len(products)).
		Int("price_records", len(records)).
		Msg("exported all collections")

	return string(data), nil
}

// Import parses jsonText and overwrites each stored collection
// wholesale. The products and priceRecords arrays are mandatory;
// settings is optional. No merging with existing data takes place.
func (g *Gateway) Import(ctx context.Context, jsonText string) error {
	var payload importPayload
	if err := json.Unmarshal([]byte(jsonText), &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if payload.Products == nil || payload.PriceRecords == nil {
		return fmt.Errorf("%w: products and priceRecords are required", ErrInvalidImport)
	}

	if err := g.SaveProducts(ctx, *payload.Products); err != nil {
		return fmt.Errorf("failed to import products: %w", err)
	}
	if err := g.SavePriceRecords(ctx, *payload.PriceRecords); err != nil {
		return fmt.Errorf("failed to import price records: %w", err)
	}
	if payload.Settings != nil {
		if err := g.SaveSettings(ctx, payload.Settings); err != nil {
			return fmt.Errorf("failed to import settings: %w", err)
		}
	}

	g.logger.Info().
		Int("products", len(*payload.Products)).
		Int("price_records", len(*payload.PriceRecords)).
		Msg("imported collections")

	return nil
}

// Size returns the total byte length of all stored collections in
// megabytes, rounded to two decimal places. It is informational and
// best-effort: failures log and report zero rather than raising.
func (g *Gateway) Size(ctx context.Context) float64 {
	var total int
	for _, key := range []string{KeyProducts, KeyPriceRecords, KeySettings} {
		raw, ok, err := g.kv.Get(ctx, key)
		if err != nil {
			g.logger.Warn().Err(err).Str("key", key).Msg("failed to measure stored collection")
			return 0
		}
		if ok {
			total += len(raw)
		}
	}
	return math.Round(float64(total)/1024/1024*100) / 100
}
