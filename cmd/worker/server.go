package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"nba_stats/ingestion/internal/pipeline"
	"nba_stats/ingestion/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// store is the slice of the database the status server reads
type store interface {
	Health(ctx context.Context) error
	Counts(ctx context.Context) (repository.Counts, error)
}

// pinger is an optional dependency checked by /health
type pinger interface {
	HealthCheck(ctx context.Context) error
}

// trigger starts a background sync
type trigger interface {
	Trigger() error
}

type statusResponse struct {
	pipeline.StatusSnapshot
	Counts    *repository.Counts `json:"counts,omitempty"`
	NeedsSync bool               `json:"needs_sync"`
}

// newRouter builds the status, trigger and metrics routes. cache may be nil
// when the worker runs without Redis.
func newRouter(db store, cache pinger, status *pipeline.Status, syncs trigger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := db.Health(req.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
			return
		}
		if cache != nil {
			if err := cache.HealthCheck(req.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": "redis: " + err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		resp := statusResponse{StatusSnapshot: status.Snapshot()}
		counts, err := db.Counts(req.Context())
		if err != nil {
			log.Warn().Err(err).Msg("Failed to read table counts for status")
		} else {
			resp.Counts = &counts
			resp.NeedsSync = counts.NeedsSync()
		}
		writeJSON(w, http.StatusOK, resp)
	})

	r.Post("/sync", func(w http.ResponseWriter, req *http.Request) {
		err := syncs.Trigger()
		switch {
		case errors.Is(err, pipeline.ErrSyncInProgress):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case err != nil:
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		default:
			log.Info().Msg("Sync triggered over HTTP")
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
		}
	})

	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}
