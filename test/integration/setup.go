package integration

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"price-table/internal/config"
	"price-table/internal/database"
	"price-table/internal/handler"
	"price-table/internal/model"
	"price-table/internal/router"
	"price-table/internal/service"
	"price-table/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// TestApp wires the full application over a temporary SQLite file, the
// same composition cmd/api performs at startup.
type TestApp struct {
	Server   http.Handler
	Gateway  *storage.Gateway
	Products service.ProductService
	Records  service.PriceRecordService
}

// SetupTestApp builds the application against a database file under the
// test's temp directory. The file is removed with the directory when
// the test finishes.
func SetupTestApp(t *testing.T, apiKey string) *TestApp {
	t.Helper()

	ctx := context.Background()
	logger := zerolog.Nop()

	cfg := config.StorageConfig{
		Path: filepath.Join(t.TempDir(), "price-table-test.db"),
	}

	db, err := database.Open(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	kv, err := storage.NewSQLiteKV(db)
	require.NoError(t, err)

	gateway := storage.NewGateway(kv, logger)

	recordService, err := service.NewPriceRecordService(ctx, gateway, logger)
	require.NoError(t, err)

	productService, err := service.NewProductService(ctx, gateway, recordService, logger)
	require.NoError(t, err)

	productHandler := handler.NewProductHandler(productService, recordService, logger)
	recordHandler := handler.NewPriceRecordHandler(recordService, logger)
	backupHandler := handler.NewBackupHandler(gateway, productService, recordService, logger)

	return &TestApp{
		Server:   router.New(productHandler, recordHandler, backupHandler, apiKey, logger),
		Gateway:  gateway,
		Products: productService,
		Records:  recordService,
	}
}

// SeedProducts inserts a few products through the service layer and
// returns them keyed by name.
func SeedProducts(t *testing.T, app *TestApp) map[string]model.Product {
	t.Helper()

	ctx := context.Background()
	inputs := []model.ProductInput{
		{Name: "rice", Unit: "kg", Description: "long grain"},
		{Name: "milk", Unit: "litre"},
		{Name: "brown rice", Unit: "kg"},
	}

	products := make(map[string]model.Product, len(inputs))
	for _, in := range inputs {
		p, err := app.Products.Add(ctx, in)
		require.NoError(t, err)
		products[p.Name] = *p
	}
	return products
}

// SeedRecords inserts price records for the given product at several
// stores and prices.
func SeedRecords(t *testing.T, app *TestApp, productID string) []model.PriceRecord {
	t.Helper()

	ctx := context.Background()
	inputs := []model.PriceRecordInput{
		{ProductID: productID, Price: 100, Quantity: 2, Store: "GreenMart"},
		{ProductID: productID, Price: 45, Quantity: 1, Store: "CornerShop"},
		{ProductID: productID, Price: 300, Quantity: 10, Store: "BulkBarn"},
	}

	records := make([]model.PriceRecord, 0, len(inputs))
	for _, in := range inputs {
		r, err := app.Records.Add(ctx, in)
		require.NoError(t, err)
		records = append(records, *r)
	}
	return records
}
