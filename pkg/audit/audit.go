// Package audit records security events. The recorder is injected into the
// components that need it rather than looked up from ambient context, so the
// side effect stays testable.
package audit

import (
	"context"
	"log/slog"

	"github.com/dealdesk/dealdesk/pkg/store"
)

// EventWriter is the storage surface the recorder needs.
type EventWriter interface {
	InsertSecurityEvent(ctx context.Context, ev store.SecurityEvent) error
}

// Recorder writes security events to storage and to the log. Recording never
// fails the caller: a storage error is logged and dropped, an audit trail
// outage must not take user-facing operations down with it.
type Recorder struct {
	store  EventWriter
	logger *slog.Logger
}

// New builds a recorder.
func New(st EventWriter, logger *slog.Logger) *Recorder {
	return &Recorder{store: st, logger: logger}
}

// Record stores one security event attributed to an actor.
func (r *Recorder) Record(ctx context.Context, actor, action, route, detail string) {
	r.logger.Info("security event", "actor", actor, "action", action, "route", route, "detail", detail)
	if r.store == nil {
		return
	}
	ev := store.SecurityEvent{Actor: actor, Action: action, Route: route, Detail: detail}
	if err := r.store.InsertSecurityEvent(ctx, ev); err != nil {
		r.logger.Error("failed to persist security event", "action", action, "error", err)
	}
}

// SecurityEvent implements the access gate's audit sink for events with no
// user actor.
func (r *Recorder) SecurityEvent(ctx context.Context, action, route, detail string) {
	r.Record(ctx, "system", action, route, detail)
}
