// Package health serves the liveness, readiness and status probes.
package health

import (
	"context"
	"maps"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"taxcalc/pkg/platform/httputil"
)

// Version is set at build time via ldflags.
var Version = "dev"

// DefaultCheckTimeout bounds each readiness check.
const DefaultCheckTimeout = 2 * time.Second

// CheckFunc reports whether a dependency is usable.
type CheckFunc func(ctx context.Context) error

// InfoFunc contributes a named value to the status endpoint.
type InfoFunc func() any

type Handler struct {
	startTime    time.Time
	environment  string
	checkTimeout time.Duration

	mu     sync.RWMutex
	checks map[string]CheckFunc
	info   map[string]InfoFunc
}

func New(environment string) *Handler {
	return &Handler{
		startTime:    time.Now(),
		environment:  environment,
		checkTimeout: DefaultCheckTimeout,
		checks:       make(map[string]CheckFunc),
		info:         make(map[string]InfoFunc),
	}
}

// RegisterCheck adds a named readiness check.
func (h *Handler) RegisterCheck(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// RegisterInfo adds a named value reported by GET /health, such as the
// circuit breaker state or the number of cached responses.
func (h *Handler) RegisterInfo(name string, fn InfoFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.info[name] = fn
}

// Register mounts health check routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleStatus)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

type LivenessResponse struct {
	Status string `json:"status"`
}

// HandleLiveness always answers 200 while the process is serving.
func (h *Handler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, LivenessResponse{Status: "alive"})
}

type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HandleReadiness runs every check concurrently and answers 503 if any fails.
// The remote calculation service is never registered as a check.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := make(map[string]CheckFunc, len(h.checks))
	maps.Copy(checks, h.checks)
	h.mu.RUnlock()

	ctx, cancel := context.WithTimeout(r.Context(), h.checkTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]string, len(checks))
		healthy = true
	)
	for name, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status := "up"
			if err := check(ctx); err != nil {
				status = "down: " + err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			results[name] = status
			if status != "up" {
				healthy = false
			}
		}()
	}
	wg.Wait()

	if !healthy {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, ReadinessResponse{Status: "not_ready", Checks: results})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ReadinessResponse{Status: "ready", Checks: results})
}

type StatusResponse struct {
	Status        string         `json:"status"`
	Version       string         `json:"version"`
	Environment   string         `json:"environment"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Timestamp     string         `json:"timestamp"`
	Components    map[string]any `json:"components,omitempty"`
}

// HandleStatus returns version, uptime and the registered component info.
func (h *Handler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	names := make([]string, 0, len(h.info))
	for name := range h.info {
		names = append(names, name)
	}
	sort.Strings(names)
	components := make(map[string]any, len(names))
	for _, name := range names {
		components[name] = h.info[name]()
	}
	h.mu.RUnlock()

	httputil.WriteJSON(w, http.StatusOK, StatusResponse{
		Status:        "healthy",
		Version:       Version,
		Environment:   h.environment,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Components:    components,
	})
}
