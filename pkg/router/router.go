// Package router dispatches the action-keyed JSON message envelopes used by
// spend.cloud page scripts, and serves them over loopback HTTP. Every message
// is answered with a {success: bool, ...} envelope; unknown actions get an
// explicit failure instead of a dangling reply channel.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spendcloudtools/spendlink/pkg/health"
)

// Response is the reply envelope. It always carries a "success" key.
type Response map[string]any

// Success builds a successful response with extra fields merged in.
func Success(extra map[string]any) Response {
	resp := Response{"success": true}
	for k, v := range extra {
		resp[k] = v
	}
	return resp
}

// Failure builds a failed response carrying the error message.
func Failure(err error) Response {
	return Response{"success": false, "error": err.Error()}
}

func failuref(format string, args ...any) Response {
	return Response{"success": false, "error": fmt.Sprintf(format, args...)}
}

// Envelope is a parsed inbound message: the action name plus the raw payload
// for handlers to bind their typed parameters from.
type Envelope struct {
	Action string
	raw    json.RawMessage
}

// ParseEnvelope validates the message frame and extracts the action.
func ParseEnvelope(data []byte) (Envelope, error) {
	var head struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Envelope{}, fmt.Errorf("malformed message: %w", err)
	}
	if head.Action == "" {
		return Envelope{}, errors.New("message has no action")
	}
	return Envelope{Action: head.Action, raw: append(json.RawMessage(nil), data...)}, nil
}

// Bind decodes the full envelope into a typed parameter struct.
func (e Envelope) Bind(v any) error {
	if err := json.Unmarshal(e.raw, v); err != nil {
		return fmt.Errorf("invalid parameters for %s: %w", e.Action, err)
	}
	return nil
}

// HandlerFunc handles one action.
type HandlerFunc func(ctx context.Context, msg Envelope) Response

// Router maps action names to handlers.
type Router struct {
	handlers map[string]HandlerFunc
	logger   *slog.Logger
	monitor  *health.Monitor
}

// New returns an empty router.
func New(logger *slog.Logger, monitor *health.Monitor) *Router {
	return &Router{
		handlers: map[string]HandlerFunc{},
		logger:   logger,
		monitor:  monitor,
	}
}

// Register adds a handler for action.
func (r *Router) Register(action string, h HandlerFunc) {
	r.handlers[action] = h
}

// Dispatch runs the handler for msg. Unknown actions are logged and answered
// with a failure response, and handler panics become failure responses, so
// the caller always hears back.
func (r *Router) Dispatch(ctx context.Context, msg Envelope) (resp Response) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("handler panicked", "action", msg.Action, "panic", rec)
			r.monitor.RecordError(msg.Action, fmt.Errorf("panic: %v", rec))
			resp = failuref("internal error handling %s", msg.Action)
		}
		r.monitor.RecordDuration(msg.Action, time.Since(start))
	}()

	h, ok := r.handlers[msg.Action]
	if !ok {
		r.logger.Warn("unknown action", "action", msg.Action)
		r.monitor.Count("messages.unknown")
		r.monitor.Debugf("unknown action %q", msg.Action)
		return failuref("unknown action: %s", msg.Action)
	}

	r.monitor.Count("messages.handled")
	r.monitor.Debugf("handling %s", msg.Action)
	resp = h(ctx, msg)
	if resp == nil {
		resp = failuref("handler for %s returned no response", msg.Action)
	}
	return resp
}
