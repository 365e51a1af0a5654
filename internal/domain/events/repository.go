package events

import (
	"context"
	"time"
)

// Repository es el colaborador de storage. Las lecturas devuelven los eventos
// con Ministry y Parish ya resueltos (sin una consulta extra por evento).
type Repository interface {
	Create(ctx context.Context, e Event) error
	GetByID(ctx context.Context, id string) (Event, error)
	Delete(ctx context.Context, id string) error

	// Eventos ad-hoc cuya fecha de inicio (en la zona del repo) cae en [from, to].
	ListAdHocStartingBetween(ctx context.Context, from, to time.Time) ([]Event, error)

	// Eventos recurrentes con serie activa en algún punto de [from, to]:
	// series_start_date <= to AND (series_end_date IS NULL OR series_end_date >= from).
	ListRecurringActiveBetween(ctx context.Context, from, to time.Time) ([]Event, error)

	// Todos los eventos recurrentes (auditoría de reglas).
	ListRecurring(ctx context.Context) ([]Event, error)

	// Excepciones de los eventos dados con fecha original en [from, to], en una sola lectura.
	ListExceptions(ctx context.Context, eventIDs []string, from, to time.Time) ([]Exception, error)

	// UpsertException crea o reemplaza por completo la excepción de
	// (EventID, OriginalOccurrenceDate). Atómico por clave: gana la última escritura.
	UpsertException(ctx context.Context, x Exception) error

	// DeleteException devuelve false si no había excepción para la clave.
	DeleteException(ctx context.Context, eventID string, date time.Time) (bool, error)

	GetException(ctx context.Context, eventID string, date time.Time) (Exception, error)
}
