// Package http provides the HTTP delivery layer for the short URL service.
// It decodes and validates requests, calls the use case and maps its error
// categories onto status codes.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/short-url/pkg/middleware/recoverer"

	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter initializes a Chi router with middleware, the API routes and a ping
// endpoint that checks the storage behind p.
func NewRouter(logger *httplog.Logger, urlUseCase urlUseCase, p pinger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(newErrorResponse(http.StatusInternalServerError, "internal server error")))

	r.Get("/ping", handlePing(p))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./docs/swagger.yml")
	})

	r.Route("/api", func(r chi.Router) {
		h := newURLHandler(urlUseCase, validator.New())

		r.Post("/shorten", h.shortenURL)
		r.Get("/shorturls", h.listShortTokens)
		r.Get("/visitCount/{shortToken}", h.getVisitCount)
		r.Get("/details/{shortToken}", h.getURLDetails)
		r.Get("/{shortToken}", h.resolveShortToken)
	})

	return r
}
