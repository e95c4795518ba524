package handler

import (
	"context"
	"net/http"
	"time"

	"clinic-scheduling/pkg/response"

	"github.com/sirupsen/logrus"
)

// Pinger is a dependency whose reachability gates readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	log     *logrus.Logger
	checks  map[string]Pinger
	timeout time.Duration
}

func NewHealthHandler(log *logrus.Logger, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{log: log, checks: checks, timeout: 2 * time.Second}
}

func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "ok", map[string]string{"status": "ok"})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status := make(map[string]string, len(h.checks))
	ready := true
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			h.log.Warnf("Readiness check %s failed: %+v", name, err)
			status[name] = "down"
			ready = false
			continue
		}
		status[name] = "up"
	}

	if !ready {
		response.Error(w, http.StatusServiceUnavailable, "not ready", status)
		return
	}
	response.Success(w, http.StatusOK, "ready", status)
}
