package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soender/kvittering/internal/ingest"
	"github.com/soender/kvittering/internal/receipt"
)

// Handler exposes the operator-only maintenance endpoints: clearing all
// relational data, repopulating it from the cache, and dumping the parsed
// cached responses.
type Handler struct {
	ingestSvc  *ingest.Service
	receiptSvc *receipt.Service
}

func NewHandler(ingestSvc *ingest.Service, receiptSvc *receipt.Service) *Handler {
	return &Handler{ingestSvc: ingestSvc, receiptSvc: receiptSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Delete("/data", h.clear)
	r.Put("/data", h.repopulate)
	r.Get("/cache", h.cacheDump)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.receiptSvc.Clear(r.Context()); err != nil {
		slog.Error("clearing data failed", "error", err)
		http.Error(w, "something went wrong", http.StatusInternalServerError)

		return
	}

	slog.Info("all data deleted from database")
	w.Write([]byte("All data has been deleted from DB"))
}

func (h *Handler) repopulate(w http.ResponseWriter, r *http.Request) {
	if err := h.ingestSvc.Repopulate(r.Context()); err != nil {
		slog.Error("repopulation failed", "error", err)
		http.Error(w, "something went wrong", http.StatusInternalServerError)

		return
	}

	w.Write([]byte("Successfully enqueued repopulation of DB data from cached analysis results. Results should be available shortly"))
}

func (h *Handler) cacheDump(w http.ResponseWriter, r *http.Request) {
	ops, err := h.ingestSvc.ParsedResults(r.Context())
	if err != nil {
		slog.Error("cache dump failed", "error", err)
		http.Error(w, "something went wrong", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(ops); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
