package export

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soender/kvittering/internal/export"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	content, err := h.svc.CSV(r.Context())
	if err != nil {
		slog.Error("csv export failed", "error", err)
		http.Error(w, "something went wrong", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="data.csv"`)

	if _, err := w.Write(content); err != nil {
		slog.Error("failed to write csv response", "error", err)
	}
}
