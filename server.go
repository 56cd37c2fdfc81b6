package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/couy-victor/portal-academico-ai/internal/nlsql"
	"github.com/couy-victor/portal-academico-ai/internal/schema"
)

// ServerConfig holds configuration for the web server
type ServerConfig struct {
	Addr     string
	Pipeline *nlsql.Pipeline
	Catalog  *schema.Catalog
	DB       *Database
}

// StartServer initializes and starts the HTTP server
func StartServer(config ServerConfig) error {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// API handlers (JSON responses)
	apiHandler := &APIHandler{Pipeline: config.Pipeline, Catalog: config.Catalog, DB: config.DB}
	r.Route("/api", func(r chi.Router) {
		r.Post("/ask", apiHandler.Ask)
		r.Get("/schema", apiHandler.Schema)
		r.Get("/health", apiHandler.Health)
	})

	log.Printf("Starting server on http://localhost%s", config.Addr)
	return http.ListenAndServe(config.Addr, r)
}
