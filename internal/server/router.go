package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"docqa/internal/api/handlers"
	"docqa/internal/api/middleware"
)

type RouterConfig struct {
	NotebookHandler *handlers.NotebookHandler
	MaxBodyBytes    int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(cfg.MaxBodyBytes))

	h := cfg.NotebookHandler
	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/run", h.Run)
		r.Post("/run-file", h.RunFile)

		r.Route("/notebooks", func(r chi.Router) {
			r.Post("/", h.Create)
			r.Get("/", h.List)
			r.Post("/query", h.Query)
			r.Get("/{id}", h.Get)
			r.Get("/{id}/questions", h.Questions)
			r.Delete("/{id}", h.Delete)
		})
	})

	return r
}
