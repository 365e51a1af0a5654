package events

import (
	"fmt"
	"time"
)

// Event es un evento de un ministerio. IsRecurring decide cuál de los dos
// sub-modelos es el vigente:
//   - ad-hoc: StartDateTime / EndDateTime
//   - recurrente: SeriesStartDate, SeriesEndDate (opcional), StartTimeOfDay,
//     EndTimeOfDay y RecurrenceRule
//
// Los campos del sub-modelo vigente deberían estar completos (lo valida la
// capa de escritura), pero el expansor no lo asume: hay datos históricos que no cumplen.
type Event struct {
	ID         string
	MinistryID string

	// Nombres denormalizados; el storage los resuelve en la misma consulta.
	Ministry string
	Parish   string

	Title       string
	Description string
	Location    string

	IsRecurring bool

	// Ad-hoc
	StartDateTime *time.Time
	EndDateTime   *time.Time

	// Recurrente
	SeriesStartDate *time.Time // fecha (00:00 UTC)
	SeriesEndDate   *time.Time // fecha (00:00 UTC); nil = serie sin fin
	StartTimeOfDay  *TimeOfDay
	EndTimeOfDay    *TimeOfDay
	RecurrenceRule  string
}

// Exception modifica una ocurrencia puntual de un evento recurrente.
// Clave única: (EventID, OriginalOccurrenceDate).
type Exception struct {
	ID      string
	EventID string

	OriginalOccurrenceDate time.Time // fecha (00:00 UTC), sin hora

	Status ExceptionStatus

	// Solo para StatusRescheduled.
	NewStartDateTime *time.Time
	NewEndDateTime   *time.Time

	UpdatedAt time.Time
}

// Occurrence es una instancia concreta de un evento dentro de la ventana pedida.
// No se persiste.
type Occurrence struct {
	ID          string
	EventID     string
	Title       string
	Start       time.Time
	End         time.Time
	Description string
	Location    string
	Ministry    string
	Parish      string
}

// TimeOfDay es una hora del día sin fecha ni zona.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

var timeOfDayLayouts = []string{"15:04:05", "15:04"}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range timeOfDayLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// On combina la fecha (año/mes/día de date) con esta hora en loc.
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, t.Second, 0, loc)
}

// Before compara solo la hora del día.
func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.seconds() < o.seconds()
}

func (t TimeOfDay) seconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

const dateLayout = "2006-01-02"

// DateOf normaliza un instante a su fecha calendario (00:00 UTC),
// tomando año/mes/día en la zona propia del instante.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parsea una fecha YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// FormatDate es la representación usada en ids y claves de excepciones.
func FormatDate(d time.Time) string {
	return d.Format(dateLayout)
}

func adhocOccurrenceID(eventID string) string {
	return "adhoc_" + eventID
}

func recurringOccurrenceID(eventID string, date time.Time) string {
	return "recurring_" + eventID + "_" + FormatDate(date)
}

const rescheduledSuffix = " (Rescheduled)"
