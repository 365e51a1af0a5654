package events

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")

	// Errores de entrada del cliente; todos envuelven ErrInvalidInput.
	ErrInvalidWindow     = fmt.Errorf("%w: invalid date range", ErrInvalidInput)
	ErrInvalidDate       = fmt.Errorf("%w: invalid date format", ErrInvalidInput)
	ErrInvalidDatetime   = fmt.Errorf("%w: invalid datetime format", ErrInvalidInput)
	ErrNotRecurring      = fmt.Errorf("%w: this action is only available for recurring events", ErrInvalidInput)
	ErrMissingReschedule = fmt.Errorf("%w: new start and end times required", ErrInvalidInput)
	ErrUnknownAction     = fmt.Errorf("%w: unknown action", ErrInvalidInput)
)

// EventError describe por qué un evento concreto no pudo expandirse.
// Queda contenido a ese evento; el resto del lote sigue.
type EventError struct {
	EventID string
	Field   string // campo problemático (p.ej. recurrence_rule, start_time_of_day)
	Rule    string // regla cruda, si aplica
	Err     error
}

func (e *EventError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("event %s: %s %q: %v", e.EventID, e.Field, e.Rule, e.Err)
	}
	return fmt.Sprintf("event %s: %s: %v", e.EventID, e.Field, e.Err)
}

func (e *EventError) Unwrap() error { return e.Err }

var (
	errMissingField = errors.New("missing required field")
	errTruncated    = errors.New("occurrences truncated at cap")
	errPanicked     = errors.New("expansion panicked")
)
