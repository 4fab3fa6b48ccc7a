// Package audit emits structured audit events for every successful mutation.
package audit

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"skillbridge.org/internal/auth"
	"skillbridge.org/internal/obs"
)

type ctxKey string

const requestIDKey ctxKey = "audit_request_id"

// WithRequestID attaches the request identifier to the context for audit logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the audit request id if present.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// LogEvent writes an audit entry enriched with the acting identity and
// request id from the context.
func LogEvent(ctx context.Context, event, resourceType, resourceID string, fields map[string]string) {
	event = strings.TrimSpace(event)
	if event == "" {
		return
	}

	attrs := []zap.Field{
		zap.String("type", "audit"),
		zap.String("event", event),
		zap.String("resource_type", resourceType),
		zap.String("resource_id", resourceID),
	}
	if rid := RequestIDFromContext(ctx); rid != "" {
		attrs = append(attrs, zap.String("request_id", rid))
	}
	if actor, ok := auth.ActorFromContext(ctx); ok {
		attrs = append(attrs, zap.String("actor_id", actor.ID), zap.String("actor_role", string(actor.Role)))
	}
	for k, v := range fields {
		attrs = append(attrs, zap.String(k, v))
	}
	obs.Logger().Info("audit", attrs...)
}
