package router

import (
	"net/http"
	"strings"

	"price-table/internal/handler"
	"price-table/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	recordHandler *handler.PriceRecordHandler,
	backupHandler *handler.BackupHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Product routes: collection, item and item subresources
	productRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/products"), "/")

		switch {
		case rest == "":
			if r.Method == http.MethodPost {
				productHandler.Create(w, r)
				return
			}
			productHandler.List(w, r)

		case strings.HasSuffix(rest, "/records"):
			productHandler.Records(w, r)

		case strings.HasSuffix(rest, "/cheapest"):
			productHandler.Cheapest(w, r)

		case strings.HasSuffix(rest, "/history"):
			productHandler.History(w, r)

		default:
			switch r.Method {
			case http.MethodGet:
				productHandler.Get(w, r)
			case http.MethodPut:
				productHandler.Update(w, r)
			case http.MethodDelete:
				productHandler.Delete(w, r)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
		}
	}

	mux.HandleFunc("/api/products", productRouteHandler)
	mux.HandleFunc("/api/products/", productRouteHandler)

	// Price record routes
	recordRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/records"), "/")

		if rest == "" {
			recordHandler.Create(w, r)
			return
		}

		switch r.Method {
		case http.MethodGet:
			recordHandler.Get(w, r)
		case http.MethodPut:
			recordHandler.Update(w, r)
		case http.MethodDelete:
			recordHandler.Delete(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}

	mux.HandleFunc("/api/records", recordRouteHandler)
	mux.HandleFunc("/api/records/", recordRouteHandler)

	// Store ranking
	mux.HandleFunc("/api/stores/frequent", recordHandler.FrequentStores)

	// Backup: export, import, clear and size accounting
	mux.HandleFunc("/api/backup/size", backupHandler.Size)
	mux.HandleFunc("/api/backup", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			backupHandler.Export(w, r)
		case http.MethodPost:
			backupHandler.Import(w, r)
		case http.MethodDelete:
			backupHandler.Clear(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Apply middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth
	var h http.Handler = mux
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
