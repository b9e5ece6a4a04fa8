// Package capture watches HTTP traffic bound for the spend.cloud API and
// turns bearer headers into stored token records.
package capture

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/spendcloudtools/spendlink/pkg/health"
	"github.com/spendcloudtools/spendlink/pkg/token"
)

// Recorder is the subset of the token store the interceptor needs.
type Recorder interface {
	Add(rec token.Record) (bool, error)
}

// Interceptor records bearer tokens seen on spend.cloud API requests.
type Interceptor struct {
	store   Recorder
	logger  *slog.Logger
	monitor *health.Monitor
	now     func() time.Time
}

// NewInterceptor wires an interceptor to the store. monitor may be nil.
func NewInterceptor(store Recorder, logger *slog.Logger, monitor *health.Monitor) *Interceptor {
	return &Interceptor{store: store, logger: logger, monitor: monitor, now: time.Now}
}

// headerToken pulls the raw credential off a request, preferring the
// dedicated X-Authorization-Token header over Authorization.
func headerToken(h http.Header) string {
	if v := h.Get("X-Authorization-Token"); v != "" {
		return v
	}
	return h.Get("Authorization")
}

// Inspect records the request's bearer token when rawURL targets the
// spend.cloud API and a credential header is present. Returns true when a new
// record was stored.
func (i *Interceptor) Inspect(rawURL string, h http.Header, source token.Source) bool {
	if !token.IsAPIRoute(rawURL) {
		return false
	}
	raw := headerToken(h)
	if raw == "" {
		return false
	}
	return i.Record(raw, rawURL, source)
}

// Record builds a token record from a raw credential and stores it. Store
// failures are logged, never surfaced; capture must not break the request
// path it is riding on.
func (i *Interceptor) Record(raw, rawURL string, source token.Source) bool {
	rec := token.NewRecord(raw, rawURL, source, i.now())
	added, err := i.store.Add(rec)
	if err != nil {
		i.logger.Warn("failed to persist captured token",
			"error", err, "tenant", rec.ClientEnvironment, "source", string(source))
		if i.monitor != nil {
			i.monitor.RecordError("capture", err)
		}
		return false
	}
	if added {
		i.logger.Info("captured token",
			"tenant", rec.ClientEnvironment, "env", rec.Environment(), "source", string(source))
		if i.monitor != nil {
			i.monitor.Count("tokens.captured")
		}
	}
	return added
}
