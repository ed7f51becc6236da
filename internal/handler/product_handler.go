package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"price-table/internal/model"
	"price-table/internal/service"

	"github.com/rs/zerolog"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	products service.ProductService
	records  service.PriceRecordService
	logger   zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(products service.ProductService, records service.PriceRecordService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		records:  records,
		logger:   logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products requests. The optional keyword query
// parameter narrows the result to a case-insensitive name search.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	keyword := r.URL.Query().Get("keyword")
	writeJSON(w, http.StatusOK, h.products.Search(keyword))
}

// Create handles POST /api/products requests.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var input model.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeInvalidJSON(w, h.logger)
		return
	}

	product, err := h.products.Add(r.Context(), input)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// Get handles GET /api/products/{id} requests.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := pathSegment(r.URL.Path, "/api/products")
	if id == "" {
		writeError(w, http.StatusBadRequest, "product ID is required", h.logger)
		return
	}

	product := h.products.Get(id)
	if product == nil {
		writeServiceError(w, model.ErrProductNotFound, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Update handles PUT /api/products/{id} requests.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := pathSegment(r.URL.Path, "/api/products")
	if id == "" {
		writeError(w, http.StatusBadRequest, "product ID is required", h.logger)
		return
	}

	var patch model.ProductPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeInvalidJSON(w, h.logger)
		return
	}

	product, err := h.products.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if product == nil {
		writeServiceError(w, model.ErrProductNotFound, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id} requests. Deletion cascades:
// the product's price records are removed in the same operation, so no
// orphaned records are left behind.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathSegment(r.URL.Path, "/api/products")
	if id == "" {
		writeError(w, http.StatusBadRequest, "product ID is required", h.logger)
		return
	}

	if err := h.products.DeleteWithRecords(r.Context(), id); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Records handles GET /api/products/{id}/records requests.
func (h *ProductHandler) Records(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	id := pathSegment(r.URL.Path, "/api/products")
	writeJSON(w, http.StatusOK, h.records.ByProduct(id))
}

// Cheapest handles GET /api/products/{id}/cheapest requests, returning
// the record with the lowest unit price for the product.
func (h *ProductHandler) Cheapest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	id := pathSegment(r.URL.Path, "/api/products")
	record := h.records.Cheapest(id)
	if record == nil {
		writeError(w, http.StatusNotFound, "no price records for product", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// History handles GET /api/products/{id}/history requests, returning
// the product's records newest first. The optional limit query
// parameter truncates the result.
func (h *ProductHandler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit parameter", h.logger)
			return
		}
	}

	id := pathSegment(r.URL.Path, "/api/products")
	writeJSON(w, http.StatusOK, h.records.History(id, limit))
}
