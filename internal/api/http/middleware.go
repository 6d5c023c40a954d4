package httpapi

import (
	"log"
	"net/http"

	"github.com/emberforge/armory/internal/observability/audit"
	"github.com/emberforge/armory/internal/observability/audit/events"
	"github.com/emberforge/armory/internal/platform/id"
	"github.com/emberforge/armory/internal/platform/requestctx"
	"github.com/emberforge/armory/internal/storage"
	"go.opentelemetry.io/otel/trace"
)

// Request headers carrying per-request identity.
const (
	HeaderCallerAddress = "X-Armory-Address"
	HeaderRequestID     = "X-Request-Id"
)

// WithIdentity stores the caller address and a request id in the request
// context. A missing request id gets a generated one so audit rows always
// correlate.
func WithIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestctx.WithCallerAddress(r.Context(), r.Header.Get(HeaderCallerAddress))

		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			generated, err := id.NewID()
			if err == nil {
				requestID = generated
			}
		}
		ctx = requestctx.WithRequestID(ctx, requestID)
		w.Header().Set(HeaderRequestID, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the response status for audit rows.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// WithAudit records one durable audit event per request, correlated with the
// active trace span when one exists.
func WithAudit(emitter *audit.Emitter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		eventName := events.HTTPRead
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			eventName = events.HTTPWrite
		}
		severity := audit.SeverityInfo
		if recorder.status >= http.StatusInternalServerError {
			severity = audit.SeverityError
		} else if recorder.status >= http.StatusBadRequest {
			severity = audit.SeverityWarn
		}

		evt := storage.AuditEvent{
			EventName:     eventName,
			Severity:      string(severity),
			CallerAddress: requestctx.CallerAddressFromContext(r.Context()),
			RequestID:     requestctx.RequestIDFromContext(r.Context()),
			Attributes: map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
				"status": recorder.status,
			},
		}
		if span := trace.SpanFromContext(r.Context()); span.SpanContext().IsValid() {
			evt.TraceID = span.SpanContext().TraceID().String()
			evt.SpanID = span.SpanContext().SpanID().String()
		}
		if err := emitter.Emit(r.Context(), evt); err != nil {
			log.Printf("append audit event %s: %v", eventName, err)
		}
	})
}
