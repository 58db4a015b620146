// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/carterperez-dev/nexus/internal/core"
)

const probeTimeout = 3 * time.Second

type State string

const (
	StateOK           State = "ok"
	StateDegraded     State = "degraded"
	StateNotReady     State = "not_ready"
	StateShuttingDown State = "shutting_down"
)

type Checker interface {
	Ping(ctx context.Context) error
}

// Dependency is one backing store probed by readiness.
type Dependency struct {
	Name    string
	Checker Checker
}

type Check struct {
	Name      string `json:"name"`
	Healthy   bool   `json:"healthy"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type Report struct {
	Status State   `json:"status"`
	Checks []Check `json:"checks,omitempty"`
}

type Handler struct {
	deps     []Dependency
	ready    atomic.Bool
	draining atomic.Bool
}

func NewHandler(deps ...Dependency) *Handler {
	h := &Handler{deps: deps}
	h.ready.Store(true)
	return h
}

// RegisterRoutes mounts the orchestrator probes at the server root.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

// Banner is the public API heartbeat used by the dashboard frontend.
func (h *Handler) Banner(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, map[string]any{
		"message":   "Nexus API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	if h.draining.Load() {
		writeReport(w, http.StatusServiceUnavailable, Report{Status: StateShuttingDown})
		return
	}
	writeReport(w, http.StatusOK, Report{Status: StateOK})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	switch {
	case h.draining.Load():
		writeReport(w, http.StatusServiceUnavailable, Report{Status: StateShuttingDown})
		return
	case !h.ready.Load():
		writeReport(w, http.StatusServiceUnavailable, Report{Status: StateNotReady})
		return
	}

	report := Report{Status: StateOK, Checks: h.probeAll(r.Context())}
	code := http.StatusOK
	for _, c := range report.Checks {
		if !c.Healthy {
			report.Status = StateDegraded
			code = http.StatusServiceUnavailable
			break
		}
	}

	writeReport(w, code, report)
}

// probeAll pings every dependency concurrently; results keep registration order.
func (h *Handler) probeAll(ctx context.Context) []Check {
	checks := make([]Check, len(h.deps))

	var g errgroup.Group
	for i, dep := range h.deps {
		g.Go(func() error {
			checks[i] = probe(ctx, dep)
			core.ObserveDependency(dep.Name, checks[i].Healthy)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // probes never return errors

	return checks
}

func probe(ctx context.Context, dep Dependency) Check {
	if dep.Checker == nil {
		return Check{Name: dep.Name, Error: "not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	err := dep.Checker.Ping(ctx)
	check := Check{
		Name:      dep.Name,
		Healthy:   err == nil,
		LatencyMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		// driver errors can carry hosts and credentials
		check.Error = "unreachable"
	}
	return check
}

func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

// SetShutdown fails every probe so load balancers stop routing here.
func (h *Handler) SetShutdown(shutdown bool) {
	h.draining.Store(shutdown)
}

func writeReport(w http.ResponseWriter, code int, report Report) {
	w.Header().Set("Cache-Control", "no-store")
	core.JSON(w, code, report)
}
