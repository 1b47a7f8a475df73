package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/soender/kvittering/internal/http/admin"
	"github.com/soender/kvittering/internal/http/auth"
	"github.com/soender/kvittering/internal/http/export"
	"github.com/soender/kvittering/internal/http/listing"
	"github.com/soender/kvittering/internal/http/upload"
)

func New(
	uploadV1 *upload.Handler,
	listingV1 *listing.Handler,
	exportV1 *export.Handler,
	adminV1 *admin.Handler,
	secret string,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Bearer(secret))

		r.Route("/receipts", func(r chi.Router) {
			listingV1.Routes(r)
			r.Route("/upload", uploadV1.Routes)
			r.Route("/export", exportV1.Routes)
		})

		r.Route("/admin", adminV1.Routes)
	})

	return router
}
