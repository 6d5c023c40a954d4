// Package audit records durable operational audit events for armory
// mutations, correlated with the active trace when one exists.
package audit
