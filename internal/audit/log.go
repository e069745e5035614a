// Package audit records security-relevant events (logins, token refreshes,
// policy denials, resource writes) as structured JSON lines.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"adarshgram.org/internal/auth"
	"adarshgram.org/internal/obs"
)

type requestIDKey struct{}

// WithRequestID attaches the request identifier to the context for audit logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// Event is one audit record. The acting user and request id are filled in
// from context at log time.
type Event struct {
	Time      string         `json:"ts"`
	Type      string         `json:"type"`
	Name      string         `json:"event"`
	RequestID string         `json:"request_id,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
	Role      string         `json:"role,omitempty"`
	Fields    map[string]any `json:"fields"`
}

// LogEvent writes an audit record enriched with the request id and the
// authenticated identity carried in ctx.
func LogEvent(ctx context.Context, name string, fields map[string]any) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("event name is required")
	}

	ev := Event{
		Time:      time.Now().UTC().Format(time.RFC3339Nano),
		Type:      "audit",
		Name:      name,
		RequestID: requestIDFromContext(ctx),
		Fields:    map[string]any{},
	}
	if identity, ok := auth.IdentityFromContext(ctx); ok {
		ev.UserID = identity.UserID
		ev.Role = identity.Role.String()
	}
	for k, v := range fields {
		ev.Fields[k] = v
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	obs.WriteLine(data)
	return nil
}
