package events

import (
	"strings"
	"time"
)

// Window es el rango de fechas [Start, End], inclusivo en ambos extremos.
// Solo importa la fecha; Start y End se guardan como 00:00 UTC.
type Window struct {
	Start time.Time
	End   time.Time
}

func NewWindow(start, end time.Time) Window {
	return Window{Start: DateOf(start), End: DateOf(end)}
}

// Empty es true cuando End es anterior a Start: no puede haber ocurrencias.
func (w Window) Empty() bool {
	return w.End.Before(w.Start)
}

// Contains indica si la fecha de d cae dentro de la ventana.
func (w Window) Contains(d time.Time) bool {
	d = DateOf(d)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Bounds devuelve [Start 00:00:00, End 23:59:59.999999999] en loc.
func (w Window) Bounds(loc *time.Location) (time.Time, time.Time) {
	from := time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, loc)
	until := endOfDay(w.End, loc)
	return from, until
}

func endOfDay(d time.Time, loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), loc)
}

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	dateLayout,
}

// ParseInstant acepta instantes ISO-8601 con "Z", con offset, sin zona, o una fecha sola.
// Los valores sin zona se interpretan en loc (UTC si es nil).
func ParseInstant(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDatetime
}

// ParseWindow interpreta los parámetros start/end del calendario.
// ok=false si falta alguno (no es error: la respuesta es una lista vacía).
// La fecha se toma en el offset propio de cada valor, sin convertir zonas.
func ParseWindow(start, end string) (w Window, ok bool, err error) {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if start == "" || end == "" {
		return Window{}, false, nil
	}

	s, err := ParseInstant(start, time.UTC)
	if err != nil {
		return Window{}, false, ErrInvalidWindow
	}
	e, err := ParseInstant(end, time.UTC)
	if err != nil {
		return Window{}, false, ErrInvalidWindow
	}
	return NewWindow(s, e), true, nil
}
