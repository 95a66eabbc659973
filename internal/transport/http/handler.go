// Package http exposes the sync trigger API: start a run, read the last
// run's summary, health and metrics.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mandata/internal/domain"
	"mandata/internal/reconcile"
	"mandata/internal/store"
	id "mandata/pkg/domain"
	dErrors "mandata/pkg/domain-errors"
)

// runTimeout bounds a triggered background run.
const runTimeout = 40 * time.Minute

// SyncRunner is the slice of the sync service the API needs.
type SyncRunner interface {
	Run(ctx context.Context, src id.Source, opts reconcile.Options) ([]domain.Summary, error)
}

// Handler serves the trigger API.
type Handler struct {
	syncs      SyncRunner
	runs       store.RunStore
	signingKey string
	logger     *slog.Logger
}

// NewHandler builds the API handler.
func NewHandler(syncs SyncRunner, runs store.RunStore, signingKey string, logger *slog.Logger) *Handler {
	return &Handler{syncs: syncs, runs: runs, signingKey: signingKey, logger: logger}
}

// Register mounts the routes.
func (h *Handler) Register(r chi.Router) {
	r.Use(middleware.RequestID)
	r.Get("/healthz", h.health)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/sync", func(r chi.Router) {
		r.With(RequireAuth(h.signingKey, h.logger)).Post("/{source}", h.trigger)
		r.Get("/{source}", h.lastRun)
	})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// trigger starts a sync. By default the run happens in the background and
// the request returns 202 immediately; ?wait=true runs it inline and returns
// the summaries, which is what the CLI-over-HTTP path uses.
func (h *Handler) trigger(w http.ResponseWriter, r *http.Request) {
	src, err := id.ParseSource(chi.URLParam(r, "source"))
	if err != nil {
		writeError(w, err)
		return
	}
	opts := reconcile.Options{
		Force:  r.URL.Query().Get("force") == "true",
		DryRun: r.URL.Query().Get("dryRun") == "true",
	}

	if r.URL.Query().Get("wait") == "true" {
		summaries, err := h.syncs.Run(r.Context(), src, opts)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summaries)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if _, err := h.syncs.Run(ctx, src, opts); err != nil {
			h.logger.Error("triggered sync failed", "source", src, "err", err)
		}
	}()
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
		"source": src.String(),
	})
}

// lastRun reports the most recent run summary for a source.
func (h *Handler) lastRun(w http.ResponseWriter, r *http.Request) {
	src, err := id.ParseSource(chi.URLParam(r, "source"))
	if err != nil {
		writeError(w, err)
		return
	}
	summary, err := h.runs.Last(r.Context(), src)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, dErrors.Newf(dErrors.CodeNotFound, "no runs recorded for %q", src))
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := dErrors.ToHTTPStatus(dErrors.CodeOf(err))
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
