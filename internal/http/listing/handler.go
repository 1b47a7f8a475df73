package listing

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/soender/kvittering/internal/receipt"
)

type Handler struct {
	svc *receipt.Service
}

func NewHandler(svc *receipt.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
}

type lineResponse struct {
	Name         string    `json:"name"`
	UnitPrice    float64   `json:"unit_price"`
	Count        float64   `json:"count"`
	MerchantName string    `json:"merchant_name"`
	PaidAt       time.Time `json:"paid_at"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	lines, err := h.svc.List(r.Context())
	if err != nil {
		slog.Error("listing lines failed", "error", err)
		http.Error(w, "something went wrong", http.StatusInternalServerError)

		return
	}

	resp := make([]lineResponse, 0, len(lines))
	for _, line := range lines {
		resp = append(resp, lineResponse{
			Name:         line.ProductName,
			UnitPrice:    line.UnitPrice,
			Count:        line.Count,
			MerchantName: line.MerchantName,
			PaidAt:       line.PaidAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
