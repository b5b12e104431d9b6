// Package health serves liveness, readiness and status probes.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"bridgeid/pkg/platform/httputil"
)

// Version is set at build time via ldflags.
var Version = "dev"

const checkTimeout = 2 * time.Second

// CheckFunc reports nil when a dependency is healthy.
type CheckFunc func(ctx context.Context) error

// ProtocolInfo is the instance summary shown on /health.
type ProtocolInfo struct {
	Instance  string `json:"instance"`
	Owner     string `json:"owner"`
	Responder string `json:"responder"`
	MockMode  bool   `json:"mock_mode"`
}

// ProtocolReporter reads the current protocol settings for the status probe.
type ProtocolReporter func(ctx context.Context) (ProtocolInfo, error)

type Handler struct {
	startTime   time.Time
	environment string

	mu       sync.RWMutex
	checks   map[string]CheckFunc
	protocol ProtocolReporter
}

func New(environment string) *Handler {
	return &Handler{
		startTime:   time.Now(),
		environment: environment,
		checks:      make(map[string]CheckFunc),
	}
}

// RegisterCheck adds a named dependency check to the readiness probe.
func (h *Handler) RegisterCheck(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// SetProtocolReporter attaches the settings summary once the service exists.
// Until then readiness fails with "settings: not initialized".
func (h *Handler) SetProtocolReporter(r ProtocolReporter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.protocol = r
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleStatus)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

type LivenessResponse struct {
	Status string `json:"status"`
}

func (h *Handler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, LivenessResponse{Status: "alive"})
}

type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HandleReadiness runs every dependency check concurrently plus the settings
// check, and answers 503 if any of them fails.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	checks := make([]CheckFunc, len(names))
	for i, name := range names {
		checks[i] = h.checks[name]
	}
	protocol := h.protocol
	h.mu.RUnlock()

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	results := make([]error, len(checks))
	var g errgroup.Group
	for i, check := range checks {
		g.Go(func() error {
			results[i] = check(ctx)
			return nil
		})
	}
	_ = g.Wait()

	response := ReadinessResponse{Status: "ready", Checks: make(map[string]string, len(names)+1)}
	for i, name := range names {
		response.Checks[name] = describe(results[i])
	}

	var settingsErr error
	if protocol == nil {
		settingsErr = errNotInitialized
	} else {
		_, settingsErr = protocol(ctx)
	}
	response.Checks["settings"] = describe(settingsErr)

	for _, state := range response.Checks {
		if state != "up" {
			response.Status = "not_ready"
			httputil.WriteJSON(w, http.StatusServiceUnavailable, response)
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, response)
}

type StatusResponse struct {
	Status        string        `json:"status"`
	Version       string        `json:"version"`
	Environment   string        `json:"environment"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	Timestamp     string        `json:"timestamp"`
	Protocol      *ProtocolInfo `json:"protocol,omitempty"`
}

// HandleStatus always answers 200; the protocol block is omitted when settings cannot be read.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	protocol := h.protocol
	h.mu.RUnlock()

	resp := StatusResponse{
		Status:        "healthy",
		Version:       Version,
		Environment:   h.environment,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
	if protocol != nil {
		if info, err := protocol(r.Context()); err == nil {
			resp.Protocol = &info
		}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

type healthError string

func (e healthError) Error() string { return string(e) }

const errNotInitialized = healthError("not initialized")

func describe(err error) string {
	if err == nil {
		return "up"
	}
	return "down: " + err.Error()
}
