package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/spellcheck/internal/task"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// healthResponse is the body of GET /health
type healthResponse struct {
	Status             string `json:"status"`
	DictionaryLoaded   bool   `json:"dictionary_loaded"`
	DictionaryLanguage string `json:"dictionary_language,omitempty"`
	InFlight           int    `json:"in_flight"`
	PendingReplies     int    `json:"pending_replies"`
}

// tasksResponse is the body of GET /tasks
type tasksResponse struct {
	Tasks []task.TaskInfo `json:"tasks"`
}

// setupRouter exposes metrics, health and in-flight requests for the
// lifetime of a command.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		stats := app.checker.Stats()
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(healthResponse{
			Status:             "ok",
			DictionaryLoaded:   stats.Dictionary.Loaded,
			DictionaryLanguage: stats.Dictionary.Language,
			InFlight:           stats.InFlight(),
			PendingReplies:     stats.PendingReplies,
		}); err != nil {
			app.logger.Error("failed to write health response", "error", err)
		}
	})
	r.Get("/tasks", func(w http.ResponseWriter, r *http.Request) {
		tasks, err := app.checker.InFlight(r.Context())
		if err != nil {
			app.logger.Error("failed to list in-flight tasks", "error", err)
			http.Error(w, "failed to list tasks", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(tasksResponse{Tasks: tasks}); err != nil {
			app.logger.Error("failed to write tasks response", "error", err)
		}
	})
	return r
}

// startOpsServer serves setupRouter on addr in the background.
func (app *application) startOpsServer(addr string) *http.Server {
	server := &http.Server{
		Addr:              addr,
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		app.logger.Info("starting ops server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("ops server failed", "error", err)
		}
	}()
	return server
}
