package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/couy-victor/portal-academico-ai/internal/nlsql"
	"github.com/couy-victor/portal-academico-ai/internal/schema"
)

// APIHandler handles JSON API requests
type APIHandler struct {
	Pipeline *nlsql.Pipeline
	Catalog  *schema.Catalog
	DB       *Database
}

// Ask handles a natural-language question. The caller context must carry
// the student's RA; it is bound as a query parameter, never interpolated.
func (h *APIHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req nlsql.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
		return
	}
	if req.Question == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Question is required",
		})
		return
	}
	if req.CallerContext["RA"] == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Caller context must include RA",
		})
		return
	}

	result, err := h.Pipeline.Answer(r.Context(), req)
	if err != nil {
		log.Printf("Pipeline error: %v", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Internal server error",
		})
		return
	}

	status := http.StatusOK
	if result.Failure != nil {
		status = http.StatusUnprocessableEntity
	}
	respondJSON(w, status, result)
}

// Schema returns the current schema snapshot; ?refresh=1 forces a reload.
func (h *APIHandler) Schema(w http.ResponseWriter, r *http.Request) {
	var snap *schema.Snapshot
	var err error
	if r.URL.Query().Get("refresh") != "" {
		snap, err = h.Catalog.Refresh(r.Context())
	} else {
		snap, err = h.Catalog.Get(r.Context())
	}
	if err != nil {
		log.Printf("Schema error: %v", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Schema unavailable",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tables":     snap.Tables,
		"fetched_at": snap.FetchedAt,
		"builtin":    snap.Builtin,
	})
}

// Health reports database reachability.
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.DB.Ping(ctx); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondJSON is a helper function to send JSON responses
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("JSON encoding error: %v", err)
	}
}
