package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"price-table/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newRecordService builds a price record service over the mock store
// with the given pre-loaded records.
func newRecordService(t *testing.T, store *MockStore, existing []model.PriceRecord) PriceRecordService {
	t.Helper()

	store.On("LoadPriceRecords", mock.Anything).Return(existing, nil).Once()
	svc, err := NewPriceRecordService(context.Background(), store, zerolog.Nop())
	require.NoError(t, err)
	return svc
}

// record builds a price record for a product with the given price,
// quantity, store and creation time.
func record(productID string, price, quantity float64, store string, createdAt time.Time) model.PriceRecord {
	r := model.NewPriceRecord(model.PriceRecordInput{
		ProductID: productID,
		Price:     price,
		Quantity:  quantity,
		Store:     store,
	})
	r.CreatedAt = createdAt
	r.UpdatedAt = createdAt
	return r
}

func TestNewPriceRecordService_LoadFailure(t *testing.T) {
	store := new(MockStore)
	store.On("LoadPriceRecords", mock.Anything).Return(nil, errors.New("corrupted"))

	_, err := NewPriceRecordService(context.Background(), store, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load price records")
}

func TestPriceRecordService_Add(t *testing.T) {
	store := new(MockStore)
	svc := newRecordService(t, store, []model.PriceRecord{})
	store.On("SavePriceRecords", mock.Anything, mock.Anything).Return(nil)

	added, err := svc.Add(context.Background(), model.PriceRecordInput{
		ProductID: "P001",
		Price:     100,
		Quantity:  2,
		Store:     "Store A",
		IsOnSale:  true,
	})

	require.NoError(t, err)
	require.NotNil(t, added)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, 50.0, added.UnitPrice)
	assert.Len(t, svc.ByProduct("P001"), 1)
}

func TestPriceRecordService_Add_Validation(t *testing.T) {
	store := new(MockStore)
	svc := newRecordService(t, store, []model.PriceRecord{})

	tests := []struct {
		name  string
		input model.PriceRecordInput
	}{
		{name: "Missing product", input: model.PriceRecordInput{Price: 10, Quantity: 1, Store: "A"}},
		{name: "Zero price", input: model.PriceRecordInput{ProductID: "P001", Price: 0, Quantity: 1, Store: "A"}},
		{name: "Negative price", input: model.PriceRecordInput{ProductID: "P001", Price: -5, Quantity: 1, Store: "A"}},
		{name: "Zero quantity", input: model.PriceRecordInput{ProductID: "P001", Price: 10, Quantity: 0, Store: "A"}},
		{name: "Missing store", input: model.PriceRecordInput{ProductID: "P001", Price: 10, Quantity: 1, Store: "  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(context.Background(), tt.input)
			require.Error(t, err)

			var validationErrs validator.ValidationErrors
			assert.ErrorAs(t, err, &validationErrs)
		})
	}

	store.AssertNotCalled(t, "SavePriceRecords", mock.Anything, mock.Anything)
}

func TestPriceRecordService_Add_PersistFailureRollsBack(t *testing.T) {
	store := new(MockStore)
	svc := newRecordService(t, store, []model.PriceRecord{})
	store.On("SavePriceRecords", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	_, err := svc.Add(context.Background(), model.PriceRecordInput{
		ProductID: "P001", Price: 10, Quantity: 1, Store: "A",
	})

	require.Error(t, err)
	assert.Empty(t, svc.ByProduct("P001"), "failed persist must roll back the in-memory mutation")
}

func TestPriceRecordService_Update(t *testing.T) {
	now := time.Now()
	existing := record("P001", 100, 2, "Store A", now)
	store := new(MockStore)
	svc := newRecordService(t, store, []model.PriceRecord{existing})
	store.On("SavePriceRecords", mock.Anything, mock.Anything).Return(nil)

	newPrice := 300.0
	newQuantity := 10.0
	updated, err := svc.Update(context.Background(), existing.ID, model.PriceRecordPatch{
		Price:    &newPrice,
		Quantity: &newQuantity,
	})

	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 300.0, updated.Price)
	assert.Equal(t, 10.0, updated.Quantity)
	assert.Equal(t, 30.0, updated.UnitPrice, "unit price recomputed on price/quantity change")
	assert.Equal(t, "Store A", updated.Store)
}

func TestPriceRecordService_Update_BlankOrInvalidRejected(t *testing.T) {
	existing := record("P001", 100, 2, "GreenMart", time.Now())
	store := new(MockStore)
	svc := newRecordService(t, store, []model.PriceRecord{existing})

	zero := 0.0
	negative := -5.0
	tests := []struct {
		name  string
		patch model.PriceRecordPatch
	}{
		{name: "Empty store", patch: model.PriceRecordPatch{Store: strPtr("")}},
		{name: "Whitespace store", patch: model.PriceRecordPatch{Store: strPtr("  ")}},
		{name: "Zero price", patch: model.PriceRecordPatch{Price: &zero}},
		{name: "Negative quantity", patch: model.PriceRecordPatch{Quantity: &negative}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), existing.ID, tt.patch)
			require.Error(t, err)

			var validationErrs validator.ValidationErrors
			assert.ErrorAs(t, err, &validationErrs)
		})
	}

	// The rejected patches left the record untouched
	unchanged := svc.Get(existing.ID)
	require.NotNil(t, unchanged)
	assert.Equal(t, "GreenMart", unchanged.Store)
	assert.Equal(t, 100.0, unchanged.Price)
	assert.Equal(t, 2.0, unchanged.Quantity)
	store.AssertNotCalled(t, "SavePriceRecords", mock.Anything, mock.Anything)
}

func TestPriceRecordService_Update_NotFoundIsNoOp(t *testing.T) {
	store := new(MockStore)
	svc := newRecordService(t, store, []model.PriceRecord{})

	updated, err := svc.Update(context.Background(), "missing", model.PriceRecordPatch{})

	assert.NoError(t, err)
	assert.Nil(t, updated)
	store.AssertNotCalled(t, "SavePriceRecords", mock.Anything, mock.Anything)
}

func TestPriceRecordService_Delete(t *testing.T) {
	now := time.Now()
	first := record("P001", 100, 2, "A", now)
	second := record("P001", 45, 1, "B", now)
	store := new(MockStore)
	svc := newRecordService(t, store, []model.PriceRecord{first, second})
	store.On("SavePriceRecords", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), first.ID))
	assert.Len(t, svc.ByProduct("P001"), 1)

	// Unknown ID is a no-op
	require.NoError(t, svc.Delete(context.Background(), "missing"))
	assert.Len(t, svc.ByProduct("P001"), 1)
}

func TestPriceRecordService_Cheapest(t *testing.T) {
	now := time.Now()
	records := []model.PriceRecord{
		record("P001", 100, 2, "A", now),  // unit price 50
		record("P001", 45, 1, "B", now),   // unit price 45
		record("P001", 300, 10, "C", now), // unit price 30
		record("P002", 1, 1, "D", now),    // other product
	}
	store := new(MockStore)
	svc := newRecordService(t, store, records)

	cheapest := svc.Cheapest("P001")
	require.NotNil(t, cheapest)
	assert.Equal(t, 30.0, cheapest.UnitPrice)
	assert.Equal(t, "C", cheapest.Store)

	assert.Nil(t, svc.Cheapest("P999"))
}

func TestPriceRecordService_Cheapest_TieKeepsFirst(t *testing.T) {
	now := time.Now()
	first := record("P001", 50, 1, "First", now)
	second := record("P001", 100, 2, "Second", now)
	store := new(MockStore)
	svc := newRecordService(t, store, []model.PriceRecord{first, second})

	cheapest := svc.Cheapest("P001")
	require.NotNil(t, cheapest)
	assert.Equal(t, "First", cheapest.Store)
}

func TestPriceRecordService_History(t *testing.T) {
	base := time.Now().Add(-time.Hour)
	oldest := record("P001", 10, 1, "A", base)
	middle := record("P001", 20, 1, "B", base.Add(10*time.Minute))
	newest := record("P001", 30, 1, "C", base.Add(20*time.Minute))
	store := new(MockStore)
	svc := newRecordService(t, store, []model.PriceRecord{oldest, newest, middle})

	history := svc.History("P001", 0)
	require.Len(t, history, 3)
	assert.Equal(t, newest.ID, history[0].ID)
	assert.Equal(t, middle.ID, history[1].ID)
	assert.Equal(t, oldest.ID, history[2].ID)

	limited := svc.History("P001", 2)
	require.Len(t, limited, 2)
	assert.Equal(t, newest.ID, limited[0].ID)
	assert.Equal(t, middle.ID, limited[1].ID)
}

func TestPriceRecordService_FrequentStores(t *testing.T) {
	now := time.Now()
	var records []model.PriceRecord
	for _, store := range []string{"A", "B", "A", "C", "A", "B"} {
		records = append(records, record("P001", 10, 1, store, now))
	}
	mockStore := new(MockStore)
	svc := newRecordService(t, mockStore, records)

	assert.Equal(t, []string{"A", "B"}, svc.FrequentStores(2))
	assert.Equal(t, []string{"A", "B", "C"}, svc.FrequentStores(10))
}

func TestPriceRecordService_FrequentStores_TieKeepsEncounterOrder(t *testing.T) {
	now := time.Now()
	var records []model.PriceRecord
	for _, store := range []string{"X", "Y", "X", "Y"} {
		records = append(records, record("P001", 10, 1, store, now))
	}
	mockStore := new(MockStore)
	svc := newRecordService(t, mockStore, records)

	assert.Equal(t, []string{"X", "Y"}, svc.FrequentStores(2))
}

func TestPriceRecordService_ByStore(t *testing.T) {
	now := time.Now()
	records := []model.PriceRecord{
		record("P001", 10, 1, "A", now),
		record("P002", 20, 1, "B", now),
		record("P003", 30, 1, "A", now),
	}
	store := new(MockStore)
	svc := newRecordService(t, store, records)

	matches := svc.ByStore("A")
	require.Len(t, matches, 2)
	assert.Equal(t, "P001", matches[0].ProductID)
	assert.Equal(t, "P003", matches[1].ProductID)
}

func TestPriceRecordService_DeleteByProduct(t *testing.T) {
	now := time.Now()
	records := []model.PriceRecord{
		record("P001", 10, 1, "A", now),
		record("P002", 20, 1, "B", now),
		record("P001", 30, 1, "C", now),
	}
	store := new(MockStore)
	svc := newRecordService(t, store, records)
	store.On("SavePriceRecords", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, svc.DeleteByProduct(context.Background(), "P001"))

	assert.Empty(t, svc.ByProduct("P001"))
	assert.Len(t, svc.ByProduct("P002"), 1)
}

func TestPriceRecordService_DeleteByProduct_NoMatchesIsNoOp(t *testing.T) {
	now := time.Now()
	store := new(MockStore)
	svc := newRecordService(t, store, []model.PriceRecord{record("P001", 10, 1, "A", now)})

	require.NoError(t, svc.DeleteByProduct(context.Background(), "P999"))
	store.AssertNotCalled(t, "SavePriceRecords", mock.Anything, mock.Anything)
}
