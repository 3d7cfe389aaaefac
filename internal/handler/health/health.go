package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Checker verifies that a dependency is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a plain function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

// Handler reports the state of required and optional dependencies.
// A failing required check turns the response into a 503; a failing
// optional check is reported as "degraded" and keeps the 200.
type Handler struct {
	required map[string]Checker
	optional map[string]Checker
	logger   *slog.Logger
}

func NewHandler(logger *slog.Logger, required, optional map[string]Checker) *Handler {
	return &Handler{required: required, optional: optional, logger: logger}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.check)
	return r
}

type result struct {
	Status string `json:"status"`
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	results := make(map[string]result, len(h.required)+len(h.optional))
	status := http.StatusOK

	for name, c := range h.required {
		if err := c.Check(ctx); err != nil {
			h.logger.Error("health check failed", "name", name, "error", err)
			results[name] = result{Status: "error"}
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = result{Status: "ok"}
	}

	for name, c := range h.optional {
		if err := c.Check(ctx); err != nil {
			h.logger.Warn("optional health check failed", "name", name, "error", err)
			results[name] = result{Status: "degraded"}
			continue
		}
		results[name] = result{Status: "ok"}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(results)
}
