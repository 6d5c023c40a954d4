package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/emberforge/armory/internal/storage"
)

func (s *Store) AppendAuditEvent(ctx context.Context, evt storage.AuditEvent) error {
	attrs := "{}"
	if len(evt.Attributes) > 0 {
		data, err := json.Marshal(evt.Attributes)
		if err != nil {
			return fmt.Errorf("marshal audit attributes: %w", err)
		}
		attrs = string(data)
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO audit_events
		 (event_name, severity, caller_address, request_id, trace_id, span_id, attributes, ts)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		evt.EventName, evt.Severity, evt.CallerAddress, evt.RequestID,
		evt.TraceID, evt.SpanID, attrs, toMillis(evt.Timestamp))
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}
