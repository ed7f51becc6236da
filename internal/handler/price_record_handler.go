package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"price-table/internal/model"
	"price-table/internal/service"

	"github.com/rs/zerolog"
)

// defaultFrequentStoreLimit caps the frequent-store ranking when the
// client does not ask for a specific length.
const defaultFrequentStoreLimit = 10

// PriceRecordHandler handles price-record-related HTTP requests.
type PriceRecordHandler struct {
	records service.PriceRecordService
	logger  zerolog.Logger
}

// NewPriceRecordHandler creates a new price record handler.
func NewPriceRecordHandler(records service.PriceRecordService, logger zerolog.Logger) *PriceRecordHandler {
	return &PriceRecordHandler{
		records: records,
		logger:  logger.With().Str("handler", "price_record").Logger(),
	}
}

// Create handles POST /api/records requests.
func (h *PriceRecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var input model.PriceRecordInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeInvalidJSON(w, h.logger)
		return
	}

	record, err := h.records.Add(r.Context(), input)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// Get handles GET /api/records/{id} requests.
func (h *PriceRecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := pathSegment(r.URL.Path, "/api/records")
	if id == "" {
		writeError(w, http.StatusBadRequest, "record ID is required", h.logger)
		return
	}

	record := h.records.Get(id)
	if record == nil {
		writeServiceError(w, model.ErrRecordNotFound, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// Update handles PUT /api/records/{id} requests. Changing price or
// quantity recomputes the cached unit price.
func (h *PriceRecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := pathSegment(r.URL.Path, "/api/records")
	if id == "" {
		writeError(w, http.StatusBadRequest, "record ID is required", h.logger)
		return
	}

	var patch model.PriceRecordPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeInvalidJSON(w, h.logger)
		return
	}

	record, err := h.records.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if record == nil {
		writeServiceError(w, model.ErrRecordNotFound, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// Delete handles DELETE /api/records/{id} requests.
func (h *PriceRecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathSegment(r.URL.Path, "/api/records")
	if id == "" {
		writeError(w, http.StatusBadRequest, "record ID is required", h.logger)
		return
	}

	if err := h.records.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// FrequentStores handles GET /api/stores/frequent requests, returning
// store names ranked by how many price records reference them.
func (h *PriceRecordHandler) FrequentStores(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	limit := defaultFrequentStoreLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit parameter", h.logger)
			return
		}
	}

	writeJSON(w, http.StatusOK, h.records.FrequentStores(limit))
}
