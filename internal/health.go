package internal

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultHealthTimeout = 5 * time.Second

	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"

	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// CheckFunc is the health check function signature.
// It matches the closures returned by db.Healthcheck and session store Ping.
type CheckFunc func(ctx context.Context) error

// healthChecks is a map of named health check functions.
type healthChecks map[string]CheckFunc

// healthResponse represents a health check response.
type healthResponse struct {
	Checks map[string]healthCheck `json:"checks,omitempty"`
	Status string                 `json:"status"`
}

// healthCheck represents the status of a single health check.
type healthCheck struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// livenessHandler returns an http.HandlerFunc that always responds OK.
func livenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if wantsJSON(r) {
			writeHealthJSON(w, http.StatusOK, &healthResponse{Status: statusHealthy})
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// readinessHandler returns an http.HandlerFunc that runs all provided checks.
func readinessHandler(checks healthChecks, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := runChecks(r.Context(), checks, defaultHealthTimeout, logger)

		status := http.StatusOK
		if resp.Status == statusUnhealthy {
			status = http.StatusServiceUnavailable
		}

		if wantsJSON(r) {
			writeHealthJSON(w, status, resp)
			return
		}

		w.WriteHeader(status)
		if resp.Status == statusHealthy {
			_, _ = w.Write([]byte("OK"))
		} else {
			_, _ = w.Write([]byte("Service Unavailable"))
		}
	}
}

// runChecks executes all checks in parallel and returns the aggregated result.
// A failing check does not cancel the others.
func runChecks(ctx context.Context, checks healthChecks, timeout time.Duration, logger *slog.Logger) *healthResponse {
	if len(checks) == 0 {
		return &healthResponse{Status: statusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		g       errgroup.Group
		mu      sync.Mutex
		results = make(map[string]healthCheck, len(checks))
		status  = statusHealthy
	)

	for name, check := range checks {
		g.Go(func() error {
			result := healthCheck{Status: statusHealthy}
			if err := check(ctx); err != nil {
				result = healthCheck{Status: statusUnhealthy, Error: err.Error()}
				logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			results[name] = result
			if result.Status == statusUnhealthy {
				status = statusUnhealthy
			}
			return nil
		})
	}
	_ = g.Wait()

	return &healthResponse{
		Status: status,
		Checks: results,
	}
}

// wantsJSON checks if the client wants JSON response.
func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// writeHealthJSON writes a JSON response.
func writeHealthJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
