package upload

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soender/kvittering/internal/ingest"
)

const maxUploadBytes = 10 << 20 // 10 MB

type Handler struct {
	svc *ingest.Service
}

func NewHandler(svc *ingest.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.upload)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}

	operationURL, err := h.svc.Upload(r.Context(), data)
	if err != nil {
		if errors.Is(err, ingest.ErrAlreadyAnalyzed) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		slog.Error("upload failed", "error", err)
		http.Error(w, "something went wrong", http.StatusInternalServerError)

		return
	}

	fmt.Fprintf(w, "Successfully queued image analysis. Result will be available at: %s", operationURL)
}
