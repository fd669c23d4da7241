package securityevent

import (
	"time"

	"github.com/google/uuid"

	"github.com/SafeField/FieldGate/pkg/threat"
)

// Event is one security-relevant finding emitted by the sanitization
// engine. Events are diagnostic data only; the engine never blocks on
// their delivery.
type Event struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Kind      string          `json:"kind"`
	Field     string          `json:"field,omitempty"`
	FieldType string          `json:"field_type,omitempty"`
	Severity  threat.Severity `json:"severity"`
	Message   string          `json:"message"`
	Match     string          `json:"match,omitempty"`
}

// NewEvent stamps a fresh event with an ID and the current time.
func NewEvent(kind, field, fieldType string, severity threat.Severity, message, match string) Event {
	if len(match) > 100 {
		match = match[:97] + "..."
	}
	return Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Kind:      kind,
		Field:     field,
		FieldType: fieldType,
		Severity:  severity,
		Message:   message,
		Match:     match,
	}
}
