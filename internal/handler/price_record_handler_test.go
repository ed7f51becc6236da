package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"price-table/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPriceRecordService is a mock implementation of service.PriceRecordService.
type MockPriceRecordService struct {
	mock.Mock
}

func (m *MockPriceRecordService) Add(ctx context.Context, in model.PriceRecordInput) (*model.PriceRecord, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PriceRecord), args.Error(1)
}

func (m *MockPriceRecordService) Update(ctx context.Context, id string, patch model.PriceRecordPatch) (*model.PriceRecord, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PriceRecord), args.Error(1)
}

func (m *MockPriceRecordService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPriceRecordService) DeleteByProduct(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockPriceRecordService) Get(id string) *model.PriceRecord {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*model.PriceRecord)
}

func (m *MockPriceRecordService) ByProduct(productID string) []model.PriceRecord {
	args := m.Called(productID)
	return args.Get(0).([]model.PriceRecord)
}

func (m *MockPriceRecordService) ByStore(store string) []model.PriceRecord {
	args := m.Called(store)
	return args.Get(0).([]model.PriceRecord)
}

func (m *MockPriceRecordService) Cheapest(productID string) *model.PriceRecord {
	args := m.Called(productID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*model.PriceRecord)
}

func (m *MockPriceRecordService) History(productID string, limit int) []model.PriceRecord {
	args := m.Called(productID, limit)
	return args.Get(0).([]model.PriceRecord)
}

func (m *MockPriceRecordService) FrequentStores(limit int) []string {
	args := m.Called(limit)
	return args.Get(0).([]string)
}

func (m *MockPriceRecordService) Reload(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestPriceRecordHandler_Create(t *testing.T) {
	logger := zerolog.Nop()

	created := &model.PriceRecord{
		ID:        "R001",
		ProductID: "P001",
		Price:     100,
		Quantity:  2,
		UnitPrice: 50,
		Store:     "Store A",
		CreatedAt: time.Now(),
	}

	tests := []struct {
		name           string
		body           string
		mockReturn     *model.PriceRecord
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			body:           `{"productId":"P001","price":100,"quantity":2,"store":"Store A"}`,
			mockReturn:     created,
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Invalid JSON body",
			body:           `{"price":`,
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
		{
			name:           "Validation failure",
			body:           `{"price":0}`,
			mockError:      validationError(t),
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Service error",
			body:           `{"productId":"P001","price":100,"quantity":2,"store":"Store A"}`,
			mockError:      errors.New("storage write failed"),
			expectedStatus: http.StatusInternalServerError,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRecords := new(MockPriceRecordService)
			handler := NewPriceRecordHandler(mockRecords, logger)

			if tt.expectService {
				mockRecords.On("Add", mock.Anything, mock.Anything).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/records", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.Create(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectService {
				mockRecords.AssertExpectations(t)
			}
		})
	}
}

func TestPriceRecordHandler_Get(t *testing.T) {
	logger := zerolog.Nop()

	testRecord := &model.PriceRecord{ID: "R001", ProductID: "P001", UnitPrice: 50}

	tests := []struct {
		name           string
		path           string
		mockReturn     *model.PriceRecord
		expectedStatus int
		expectService  bool
		recordID       string
	}{
		{
			name:           "Success",
			path:           "/api/records/R001",
			mockReturn:     testRecord,
			expectedStatus: http.StatusOK,
			expectService:  true,
			recordID:       "R001",
		},
		{
			name:           "Record not found",
			path:           "/api/records/R999",
			mockReturn:     nil,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
			recordID:       "R999",
		},
		{
			name:           "Missing record ID",
			path:           "/api/records/",
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRecords := new(MockPriceRecordService)
			handler := NewPriceRecordHandler(mockRecords, logger)

			if tt.expectService {
				mockRecords.On("Get", tt.recordID).Return(tt.mockReturn)
			}

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()

			handler.Get(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectService {
				mockRecords.AssertExpectations(t)
			}
		})
	}
}

func TestPriceRecordHandler_Update(t *testing.T) {
	logger := zerolog.Nop()

	updated := &model.PriceRecord{ID: "R001", ProductID: "P001", Price: 300, Quantity: 10, UnitPrice: 30}

	tests := []struct {
		name           string
		path           string
		body           string
		mockReturn     *model.PriceRecord
		mockError      error
		expectedStatus int
		expectService  bool
		recordID       string
	}{
		{
			name:           "Success",
			path:           "/api/records/R001",
			body:           `{"price":300,"quantity":10}`,
			mockReturn:     updated,
			expectedStatus: http.StatusOK,
			expectService:  true,
			recordID:       "R001",
		},
		{
			name:           "Unknown record maps to not found",
			path:           "/api/records/R999",
			body:           `{"price":300}`,
			mockReturn:     nil,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
			recordID:       "R999",
		},
		{
			name:           "Invalid JSON body",
			path:           "/api/records/R001",
			body:           `{"price":`,
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
		{
			name:           "Missing record ID",
			path:           "/api/records/",
			body:           `{"price":300}`,
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRecords := new(MockPriceRecordService)
			handler := NewPriceRecordHandler(mockRecords, logger)

			if tt.expectService {
				mockRecords.On("Update", mock.Anything, tt.recordID, mock.Anything).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPut, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.Update(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectService {
				mockRecords.AssertExpectations(t)
			}
		})
	}
}

func TestPriceRecordHandler_Delete(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		path           string
		mockError      error
		expectedStatus int
		expectService  bool
		recordID       string
	}{
		{
			name:           "Success",
			path:           "/api/records/R001",
			expectedStatus: http.StatusNoContent,
			expectService:  true,
			recordID:       "R001",
		},
		{
			name:           "Missing record ID",
			path:           "/api/records/",
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
		{
			name:           "Service error",
			path:           "/api/records/R001",
			mockError:      errors.New("storage write failed"),
			expectedStatus: http.StatusInternalServerError,
			expectService:  true,
			recordID:       "R001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRecords := new(MockPriceRecordService)
			handler := NewPriceRecordHandler(mockRecords, logger)

			if tt.expectService {
				mockRecords.On("Delete", mock.Anything, tt.recordID).Return(tt.mockError)
			}

			req := httptest.NewRequest(http.MethodDelete, tt.path, nil)
			w := httptest.NewRecorder()

			handler.Delete(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectService {
				mockRecords.AssertExpectations(t)
			}
		})
	}
}

func TestPriceRecordHandler_FrequentStores(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		method         string
		queryParams    string
		limit          int
		mockReturn     []string
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success with default limit",
			method:         http.MethodGet,
			queryParams:    "",
			limit:          10,
			mockReturn:     []string{"A", "B"},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Success with custom limit",
			method:         http.MethodGet,
			queryParams:    "?limit=2",
			limit:          2,
			mockReturn:     []string{"A", "B"},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Invalid limit parameter",
			method:         http.MethodGet,
			queryParams:    "?limit=invalid",
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
		{
			name:           "Zero limit parameter",
			method:         http.MethodGet,
			queryParams:    "?limit=0",
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
		{
			name:           "Method not allowed",
			method:         http.MethodPost,
			queryParams:    "",
			expectedStatus: http.StatusMethodNotAllowed,
			expectService:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRecords := new(MockPriceRecordService)
			handler := NewPriceRecordHandler(mockRecords, logger)

			if tt.expectService {
				mockRecords.On("FrequentStores", tt.limit).Return(tt.mockReturn)
			}

			req := httptest.NewRequest(tt.method, "/api/stores/frequent"+tt.queryParams, nil)
			w := httptest.NewRecorder()

			handler.FrequentStores(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectService {
				mockRecords.AssertExpectations(t)
			}
		})
	}
}
