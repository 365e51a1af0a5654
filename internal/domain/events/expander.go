package events

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/samber/mo"

	"parish-calendar/internal/recurrence"
)

const DefaultMaxOccurrencesPerEvent = 5000

// Diagnostic es un problema de datos de un evento concreto detectado al expandir.
// Va a logs para operadores; nunca llega al cliente.
type Diagnostic struct {
	EventID string
	Field   string
	Rule    string
	Message string
}

func (d Diagnostic) LogFields() map[string]any {
	f := map[string]any{
		"event_id": d.EventID,
		"field":    d.Field,
		"error":    d.Message,
	}
	if d.Rule != "" {
		f["rule"] = d.Rule
	}
	return f
}

func diagnosticFor(eventID string, err error) Diagnostic {
	var ee *EventError
	if errors.As(err, &ee) {
		return Diagnostic{EventID: ee.EventID, Field: ee.Field, Rule: ee.Rule, Message: ee.Err.Error()}
	}
	return Diagnostic{EventID: eventID, Message: err.Error()}
}

// Batch es el resultado de una expansión: lo que salió bien y lo que se descartó.
type Batch struct {
	Occurrences []Occurrence
	Diagnostics []Diagnostic
}

// ExceptionIndex agrupa excepciones por evento y fecha original (YYYY-MM-DD).
type ExceptionIndex map[string]map[string]Exception

func IndexExceptions(list []Exception) ExceptionIndex {
	idx := make(ExceptionIndex)
	for _, x := range list {
		byDate, ok := idx[x.EventID]
		if !ok {
			byDate = make(map[string]Exception)
			idx[x.EventID] = byDate
		}
		byDate[FormatDate(x.OriginalOccurrenceDate)] = x
	}
	return idx
}

type ExpanderOptions struct {
	// Location es la zona en la que se interpretan las horas de los eventos
	// recurrentes y en la que se toma la fecha de los ad-hoc. Default: UTC.
	Location *time.Location

	// Tope de ocurrencias por evento. Default: DefaultMaxOccurrencesPerEvent.
	MaxOccurrencesPerEvent int
}

// Expander convierte eventos + excepciones en ocurrencias dentro de una ventana.
// No guarda estado mutable: se puede usar concurrentemente.
type Expander struct {
	rules       recurrence.Evaluator
	loc         *time.Location
	maxPerEvent int
}

func NewExpander(rules recurrence.Evaluator, opts ExpanderOptions) *Expander {
	if rules == nil {
		rules = recurrence.NewRRuleEvaluator()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	limit := opts.MaxOccurrencesPerEvent
	if limit <= 0 {
		limit = DefaultMaxOccurrencesPerEvent
	}
	return &Expander{rules: rules, loc: loc, maxPerEvent: limit}
}

func (x *Expander) Location() *time.Location { return x.loc }

// eventResult es la salida de un evento: Ok(ocurrencias) o Err(motivo),
// más avisos que no impiden emitir (p.ej. truncado).
type eventResult struct {
	eventID string
	result  mo.Result[[]Occurrence]
	notes   []Diagnostic
}

// Expand procesa cada evento por separado; un evento con datos rotos
// se descarta con su diagnóstico y el resto del lote sigue.
func (x *Expander) Expand(w Window, adhoc, recurring []Event, exceptions ExceptionIndex) Batch {
	if w.Empty() {
		return Batch{Occurrences: []Occurrence{}}
	}

	results := make([]eventResult, 0, len(adhoc)+len(recurring))
	for _, e := range adhoc {
		results = append(results, x.contain(e, func() ([]Occurrence, []Diagnostic, error) {
			return x.passThrough(w, e)
		}))
	}
	for _, e := range recurring {
		byDate := exceptions[e.ID]
		results = append(results, x.contain(e, func() ([]Occurrence, []Diagnostic, error) {
			return x.expandRecurring(w, e, byDate)
		}))
	}

	return collect(results)
}

// contain ejecuta fn para un evento y convierte error o panic en un Err de ese evento.
func (x *Expander) contain(e Event, fn func() ([]Occurrence, []Diagnostic, error)) (r eventResult) {
	r.eventID = e.ID
	defer func() {
		if p := recover(); p != nil {
			r.notes = nil
			r.result = mo.Err[[]Occurrence](&EventError{
				EventID: e.ID,
				Field:   "recurrence_rule",
				Rule:    e.RecurrenceRule,
				Err:     fmt.Errorf("%w: %v", errPanicked, p),
			})
		}
	}()

	occ, notes, err := fn()
	if err != nil {
		r.result = mo.Err[[]Occurrence](err)
		return r
	}
	r.result = mo.Ok(occ)
	r.notes = notes
	return r
}

func collect(results []eventResult) Batch {
	b := Batch{Occurrences: make([]Occurrence, 0)}
	for _, r := range results {
		b.Diagnostics = append(b.Diagnostics, r.notes...)

		occ, err := r.result.Get()
		if err != nil {
			b.Diagnostics = append(b.Diagnostics, diagnosticFor(r.eventID, err))
			continue
		}
		b.Occurrences = append(b.Occurrences, occ...)
	}

	// Orden estable para clientes y tests: por inicio y luego por id.
	sort.SliceStable(b.Occurrences, func(i, j int) bool {
		a, c := b.Occurrences[i], b.Occurrences[j]
		if !a.Start.Equal(c.Start) {
			return a.Start.Before(c.Start)
		}
		return a.ID < c.ID
	})
	return b
}

func (x *Expander) passThrough(w Window, e Event) ([]Occurrence, []Diagnostic, error) {
	if e.IsRecurring {
		return nil, nil, &EventError{EventID: e.ID, Field: "is_recurring", Err: errors.New("recurring event in ad-hoc set")}
	}
	if err := Validate(e); err != nil {
		return nil, nil, err
	}

	// El filtro de storage compara la fecha del inicio, no el solapamiento con el fin.
	if !w.Contains(e.StartDateTime.In(x.loc)) {
		return []Occurrence{}, nil, nil
	}

	return []Occurrence{x.occurrence(e, adhocOccurrenceID(e.ID), e.Title, *e.StartDateTime, *e.EndDateTime)}, nil, nil
}

// expandRecurring enumera las fechas de la regla dentro de la ventana y aplica las excepciones.
// La enumeración también se corta al final del día de series_end_date, aunque la regla
// no tenga UNTIL ni COUNT: una serie cerrada no produce ocurrencias después de su fin.
func (x *Expander) expandRecurring(w Window, e Event, byDate map[string]Exception) ([]Occurrence, []Diagnostic, error) {
	if !e.IsRecurring {
		return nil, nil, &EventError{EventID: e.ID, Field: "is_recurring", Err: errors.New("ad-hoc event in recurring set")}
	}
	if err := Validate(e); err != nil {
		return nil, nil, err
	}

	anchor := e.StartTimeOfDay.On(*e.SeriesStartDate, x.loc)
	from, until := w.Bounds(x.loc)
	if e.SeriesEndDate != nil {
		if seriesEnd := endOfDay(*e.SeriesEndDate, x.loc); seriesEnd.Before(until) {
			until = seriesEnd
		}
	}

	starts, truncated, err := x.rules.Between(e.RecurrenceRule, anchor, from, until, x.maxPerEvent)
	if err != nil {
		return nil, nil, &EventError{EventID: e.ID, Field: "recurrence_rule", Rule: e.RecurrenceRule, Err: err}
	}

	var notes []Diagnostic
	if truncated || len(starts) > x.maxPerEvent {
		if len(starts) > x.maxPerEvent {
			starts = starts[:x.maxPerEvent]
		}
		notes = append(notes, Diagnostic{
			EventID: e.ID,
			Field:   "recurrence_rule",
			Rule:    e.RecurrenceRule,
			Message: fmt.Sprintf("%v (%d)", errTruncated, x.maxPerEvent),
		})
	}

	out := make([]Occurrence, 0, len(starts))
	for _, s := range starts {
		date := DateOf(s.In(x.loc))
		id := recurringOccurrenceID(e.ID, date)

		if ex, ok := byDate[FormatDate(date)]; ok {
			switch ex.Status {
			case StatusCancelled:
				continue
			case StatusRescheduled:
				if ex.NewStartDateTime != nil && ex.NewEndDateTime != nil {
					out = append(out, x.occurrence(e, id, e.Title+rescheduledSuffix, *ex.NewStartDateTime, *ex.NewEndDateTime))
					continue
				}
				// Reprogramación incompleta: se conserva el horario original.
				notes = append(notes, Diagnostic{
					EventID: e.ID,
					Field:   "exception",
					Message: "rescheduled exception for " + FormatDate(date) + " without new datetimes",
				})
			}
		}

		// Se asume que la ocurrencia no cruza la medianoche: el fin es la misma fecha.
		start := e.StartTimeOfDay.On(date, x.loc)
		end := e.EndTimeOfDay.On(date, x.loc)
		out = append(out, x.occurrence(e, id, e.Title, start, end))
	}

	return out, notes, nil
}

func (x *Expander) occurrence(e Event, id, title string, start, end time.Time) Occurrence {
	return Occurrence{
		ID:          id,
		EventID:     e.ID,
		Title:       title,
		Start:       start,
		End:         end,
		Description: e.Description,
		Location:    e.Location,
		Ministry:    e.Ministry,
		Parish:      e.Parish,
	}
}

// Check valida un evento recurrente sin expandirlo: campos requeridos y sintaxis de la regla.
func (x *Expander) Check(e Event) error {
	if err := Validate(e); err != nil {
		return err
	}
	if !e.IsRecurring {
		return nil
	}
	anchor := e.StartTimeOfDay.On(*e.SeriesStartDate, x.loc)
	if err := x.rules.Check(e.RecurrenceRule, anchor); err != nil {
		return &EventError{EventID: e.ID, Field: "recurrence_rule", Rule: e.RecurrenceRule, Err: err}
	}
	return nil
}

// DiagnosticFor convierte el error de Check en un Diagnostic.
func DiagnosticFor(eventID string, err error) Diagnostic {
	return diagnosticFor(eventID, err)
}
