// Package events defines canonical armory audit event names.
//
// The names intentionally remain stable (`telemetry.*`) because operational
// consumers rely on these values.
package events

const (
	// HTTPRead captures durable audit events for read-only HTTP handlers.
	HTTPRead = "telemetry.http.read"
	// HTTPWrite captures durable audit events for write-path HTTP handlers.
	HTTPWrite = "telemetry.http.write"
	// MintDecision captures mint-capability allow/deny decisions.
	MintDecision = "telemetry.mint.decision"
)
