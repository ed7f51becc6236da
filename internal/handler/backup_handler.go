package handler

import (
	"context"
	"io"
	"net/http"

	"price-table/internal/service"

	"github.com/rs/zerolog"
)

// maxImportBytes bounds the import payload; the tracker's whole data
// set is a few hundred kilobytes at most.
const maxImportBytes = 16 << 20

// BackupStore is the bulk-transfer surface of the persistence gateway.
type BackupStore interface {
	// Export returns all collections as one JSON document.
	Export(ctx context.Context) (string, error)

	// Import overwrites the stored collections from a JSON document.
	Import(ctx context.Context, jsonText string) error

	// Clear removes all stored collections.
	Clear(ctx context.Context) error

	// Size returns the total stored size in megabytes, best-effort.
	Size(ctx context.Context) float64
}

// BackupHandler handles export, import, clear and size requests. After
// any operation that rewrites storage it reloads the collection
// managers so their in-memory state matches the new contents.
type BackupHandler struct {
	store    BackupStore
	products service.ProductService
	records  service.PriceRecordService
	logger   zerolog.Logger
}

// NewBackupHandler creates a new backup handler.
func NewBackupHandler(store BackupStore, products service.ProductService, records service.PriceRecordService, logger zerolog.Logger) *BackupHandler {
	return &BackupHandler{
		store:    store,
		products: products,
		records:  records,
		logger:   logger.With().Str("handler", "backup").Logger(),
	}
}

// Export handles GET /api/backup requests.
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.store.Export(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="price-table-backup.json"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, data); err != nil {
		h.logger.Error().Err(err).Msg("failed to write export response")
	}
}

// Import handles POST /api/backup requests. The stored collections are
// replaced wholesale; nothing is merged.
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body", h.logger)
		return
	}

	if err := h.store.Import(r.Context(), string(body)); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := h.reload(r.Context()); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "imported"})
}

// Clear handles DELETE /api/backup requests, removing all stored data.
func (h *BackupHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := h.reload(r.Context()); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Size handles GET /api/backup/size requests.
func (h *BackupHandler) Size(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]float64{"sizeMb": h.store.Size(r.Context())})
}

// reload rehydrates both collection managers from storage.
func (h *BackupHandler) reload(ctx context.Context) error {
	if err := h.products.Reload(ctx); err != nil {
		return err
	}
	return h.records.Reload(ctx)
}
