// Package panel serves the toggle panel over HTTP: list and flip the five
// filter toggles, inspect the monitor, scrape metrics.
package panel

import (
	_ "embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hazyhaar/leanbrew/feedfilter/internal/toggles"
	"github.com/hazyhaar/leanbrew/feedfilter/verdict"
)

//go:embed index.html
var indexHTML []byte

// Config for creating the panel handler.
type Config struct {
	Store toggles.Store
	// Status returns the JSON document served at /api/status. Optional.
	Status func() any
	Logger *slog.Logger
}

// New returns the panel router.
func New(cfg Config) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	p := &panel{cfg: cfg}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(limitBody(maxToggleBody))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(indexHTML)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/api/toggles", p.listToggles)
	r.Put("/api/toggles/{key}", p.setToggle)
	r.Get("/api/status", p.status)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

type panel struct {
	cfg Config
}

func (p *panel) listToggles(w http.ResponseWriter, r *http.Request) {
	views, err := toggles.Views(r.Context(), p.cfg.Store)
	if err != nil {
		p.cfg.Logger.Error("panel: list toggles", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (p *panel) setToggle(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		writeError(w, http.StatusBadRequest, errors.New(`body must be {"enabled": true|false}`))
		return
	}

	err := toggles.SetToggle(r.Context(), p.cfg.Store, key, *req.Enabled)
	switch {
	case errors.Is(err, toggles.ErrUnknownKey):
		writeError(w, http.StatusNotFound, err)
		return
	case err != nil:
		p.cfg.Logger.Error("panel: set toggle", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	p.cfg.Logger.Info("panel: toggle set", "key", key, "enabled", *req.Enabled)

	spec, _ := verdict.LookupToggle(key)
	writeJSON(w, http.StatusOK, toggles.View{ToggleSpec: spec, Enabled: *req.Enabled})
}

func (p *panel) status(w http.ResponseWriter, _ *http.Request) {
	if p.cfg.Status == nil {
		writeJSON(w, http.StatusOK, map[string]string{"state": "unknown"})
		return
	}
	writeJSON(w, http.StatusOK, p.cfg.Status())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
